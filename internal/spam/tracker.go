package spam

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	log "github.com/sirupsen/logrus"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/infra"
)

const (
	DefaultWindow    = 6 * time.Second
	DefaultThreshold = 6
	DefaultSlack     = 3
	DefaultIdleTTL   = 5 * time.Minute
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Config struct {
	Window    time.Duration
	Threshold int
	Slack     int
	IdleTTL   time.Duration
}

type window struct {
	mu   sync.Mutex
	hits []time.Time
	seen time.Time
}

// Tracker is a sliding-window burst detector keyed by (chat, user).
// Keys live in a sharded concurrent map and each window has its own lock.
type Tracker struct {
	cfg     Config
	clock   Clock
	windows *xsync.MapOf[string, *window]
	logger  *log.Entry

	mu        sync.Mutex
	started   bool
	runCancel context.CancelFunc
	workersWg sync.WaitGroup
}

func NewTracker(cfg Config) *Tracker {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Threshold < 1 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Slack <= 0 {
		cfg.Slack = DefaultSlack
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	return &Tracker{
		cfg:     cfg,
		clock:   realClock{},
		windows: xsync.NewMapOf[string, *window](),
		logger:  log.WithField("object", "SpamTracker"),
	}
}

func (t *Tracker) WithClock(clock Clock) *Tracker {
	if clock != nil {
		t.clock = clock
	}
	return t
}

func (t *Tracker) Now() time.Time {
	return t.clock.Now()
}

// Record appends ts to the user's window and reports whether the number of
// entries within the window reached the threshold.
func (t *Tracker) Record(chatID, userID int64, ts time.Time) bool {
	w, _ := t.windows.LoadOrCompute(key(chatID, userID), func() *window {
		return &window{hits: make([]time.Time, 0, t.capacity())}
	})

	w.mu.Lock()
	defer w.mu.Unlock()

	if n := len(w.hits); n > 0 && ts.Before(w.hits[n-1]) {
		ts = w.hits[n-1]
	}
	w.hits = append(w.hits, ts)
	if overflow := len(w.hits) - t.capacity(); overflow > 0 {
		w.hits = append(w.hits[:0], w.hits[overflow:]...)
	}
	w.seen = ts

	recent := 0
	for i := len(w.hits) - 1; i >= 0; i-- {
		if ts.Sub(w.hits[i]) > t.cfg.Window {
			break
		}
		recent++
	}
	return recent >= t.cfg.Threshold
}

// Len returns the number of retained timestamps for the key.
func (t *Tracker) Len(chatID, userID int64) int {
	w, ok := t.windows.Load(key(chatID, userID))
	if !ok {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.hits)
}

func (t *Tracker) Size() int {
	return t.windows.Size()
}

// Sweep drops windows whose newest entry is older than the idle TTL.
func (t *Tracker) Sweep(now time.Time) int {
	removed := 0
	t.windows.Range(func(k string, w *window) bool {
		w.mu.Lock()
		idle := now.Sub(w.seen) > t.cfg.IdleTTL
		w.mu.Unlock()
		if idle {
			t.windows.Compute(k, func(current *window, loaded bool) (*window, bool) {
				if !loaded {
					return current, true
				}
				current.mu.Lock()
				defer current.mu.Unlock()
				stillIdle := now.Sub(current.seen) > t.cfg.IdleTTL
				if stillIdle {
					removed++
				}
				return current, stillIdle
			})
		}
		return true
	})
	return removed
}

func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return nil
	}
	runCtx, cancel := context.WithCancel(context.Background())
	t.runCancel = cancel
	t.started = true

	t.workersWg.Add(1)
	go func() {
		defer t.workersWg.Done()
		infra.GoRecoverable(3, "spam_sweeper", func() { t.sweepLoop(runCtx) })
	}()
	return nil
}

func (t *Tracker) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.started {
		t.mu.Unlock()
		return nil
	}
	t.started = false
	cancel := t.runCancel
	t.runCancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		t.workersWg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tracker) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(t.cfg.IdleTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := t.Sweep(t.clock.Now()); n > 0 {
				t.logger.WithFields(log.Fields{"removed": n, "remaining": t.Size()}).Debug("swept idle spam windows")
			}
		}
	}
}

func (t *Tracker) capacity() int {
	return t.cfg.Threshold + t.cfg.Slack
}

func key(chatID, userID int64) string {
	return strconv.FormatInt(chatID, 10) + ":" + strconv.FormatInt(userID, 10)
}
