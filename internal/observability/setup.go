package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
)

var (
	registry = prometheus.NewRegistry()

	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_decisions_total",
			Help: "Messages evaluated by the moderation engine, by final stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	actionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_actions_total",
			Help: "Moderation actions emitted to the platform",
		},
		[]string{"kind", "status"},
	)

	warnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_warns_total",
			Help: "Warnings issued, labelled by whether they escalated to a mute",
		},
		[]string{"escalated"},
	)

	decisionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moderation_decision_duration_seconds",
			Help:    "Time spent deciding and acting on a single message",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		decisionsTotal,
		actionsTotal,
		warnsTotal,
		decisionDuration,
	)
}

func RecordDecision(stage, outcome string, elapsed time.Duration) {
	decisionsTotal.WithLabelValues(stage, outcome).Inc()
	decisionDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func RecordAction(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	actionsTotal.WithLabelValues(kind, status).Inc()
}

func RecordWarn(escalated bool) {
	label := "false"
	if escalated {
		label = "true"
	}
	warnsTotal.WithLabelValues(label).Inc()
}

// Server exposes /metrics and owns the process tracer provider.
type Server struct {
	addr   string
	logger *log.Entry

	mu    sync.Mutex
	srv   *http.Server
	tp    *trace.TracerProvider
	bound string
}

func NewServer(addr string) *Server {
	return &Server{
		addr:   addr,
		logger: log.WithField("object", "Observability"),
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tp != nil {
		return nil
	}

	s.tp = trace.NewTracerProvider()
	otel.SetTracerProvider(s.tp)

	if s.addr == "" {
		return nil
	}
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	s.srv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func(srv *http.Server) {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("metrics server failed")
		}
	}(s.srv)
	s.bound = listener.Addr().String()
	s.logger.WithField("addr", s.bound).Info("metrics server listening")
	return nil
}

// Addr returns the bound listener address once started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}

func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, tp := s.srv, s.tp
	s.srv, s.tp, s.bound = nil, nil, ""
	s.mu.Unlock()

	var errs []error
	if srv != nil {
		errs = append(errs, srv.Shutdown(ctx))
	}
	if tp != nil {
		errs = append(errs, tp.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
