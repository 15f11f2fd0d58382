package moderation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pborman/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/audit"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/db"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/i18n"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/observability"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/policy/permissions"
)

const (
	defaultActionTimeout = 10 * time.Second
	defaultWarnLimit     = 3
	defaultWarnMute      = 24 * time.Hour
	defaultHistorySize   = 2048
)

type (
	SettingsReader interface {
		Effective(ctx context.Context, chatID int64) *db.GroupSettings
	}

	FilterMatcher interface {
		Match(ctx context.Context, chatID int64, text string) (string, bool)
	}

	RateTracker interface {
		Record(chatID, userID int64, ts time.Time) bool
		Now() time.Time
	}

	AdminResolver interface {
		IsAdmin(ctx context.Context, s permissions.Subject) (bool, error)
	}

	InfractionLedger interface {
		Increment(ctx context.Context, chatID, userID int64) (int, error)
	}

	Auditor interface {
		Record(ctx context.Context, e audit.Entry)
	}
)

type Deps struct {
	Settings SettingsReader
	Filters  FilterMatcher
	Spam     RateTracker
	Admins   AdminResolver
	Ledger   InfractionLedger
	Sink     ActionSink
	Auditor  Auditor
}

type Options struct {
	ActionTimeout time.Duration
	WarnLimit     int
	WarnMute      time.Duration
	HistorySize   int
	Language      string
}

// Engine evaluates inbound messages against the group's policy and acts on them.
type Engine struct {
	settings SettingsReader
	filters  FilterMatcher
	spam     RateTracker
	admins   AdminResolver
	ledger   InfractionLedger
	sink     ActionSink
	auditor  Auditor

	opts    Options
	history *lru.Cache[string, *Decision]
	tracer  trace.Tracer
	logger  *log.Entry
	now     func() time.Time
}

func NewEngine(deps Deps, opts Options) (*Engine, error) {
	if deps.Settings == nil || deps.Filters == nil || deps.Spam == nil || deps.Admins == nil || deps.Sink == nil {
		return nil, fmt.Errorf("moderation engine: missing dependency")
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = defaultActionTimeout
	}
	if opts.WarnLimit < 1 {
		opts.WarnLimit = defaultWarnLimit
	}
	if opts.WarnMute <= 0 {
		opts.WarnMute = defaultWarnMute
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = defaultHistorySize
	}
	history, err := lru.New[string, *Decision](opts.HistorySize)
	if err != nil {
		return nil, fmt.Errorf("create decision history: %w", err)
	}
	auditor := deps.Auditor
	if auditor == nil {
		auditor = audit.New(nil)
	}
	return &Engine{
		settings: deps.Settings,
		filters:  deps.Filters,
		spam:     deps.Spam,
		admins:   deps.Admins,
		ledger:   deps.Ledger,
		sink:     deps.Sink,
		auditor:  auditor,
		opts:     opts,
		history:  history,
		tracer:   otel.Tracer("moderation"),
		logger:   log.WithField("object", "ModerationEngine"),
		now:      time.Now,
	}, nil
}

// Process runs the filter, link and spam checks for one message. It never
// fails: action errors are recorded on the returned decision.
func (e *Engine) Process(ctx context.Context, ev MessageEvent) *Decision {
	started := time.Now()
	d := &Decision{
		ID:        uuid.New(),
		ChatID:    ev.ChatID,
		MessageID: ev.MessageID,
		UserID:    ev.UserID,
		Stage:     StageReceived,
		At:        e.now(),
	}
	defer func() {
		observability.RecordDecision(string(d.Stage), d.Outcome(), time.Since(started))
	}()

	if ev.Text == "" {
		d.skip("no_text")
		return d
	}
	if !ev.IsGroup() {
		d.skip("not_group")
		return d
	}

	ctx, span := e.tracer.Start(ctx, "moderation.process", trace.WithAttributes(
		attribute.Int64("chat_id", ev.ChatID),
		attribute.Int("message_id", ev.MessageID),
		attribute.String("decision_id", d.ID),
	))
	defer func() {
		span.SetAttributes(attribute.String("stage", string(d.Stage)), attribute.String("outcome", d.Outcome()))
		span.End()
	}()
	defer e.remember(d)

	settings := e.settings.Effective(ctx, ev.ChatID)
	admin := e.adminCheck(ctx, ev, d)

	if reply, ok := e.filters.Match(ctx, ev.ChatID, ev.Text); ok {
		d.FilterMatched = true
		e.emit(ctx, d, ev, audit.ActionReply, "filter", func(ctx context.Context) error {
			return e.sink.SendMessage(ctx, ev.ChatID, reply, SendOptions{ReplyTo: ev.MessageID, ThreadID: ev.ThreadID})
		})
	}
	d.Stage = StageFilterChecked

	if settings.Antilink && ContainsLink(ev.Text) && !admin() {
		d.LinkFound = true
		d.Stage = StageLinkChecked
		e.deleteAndNotify(ctx, d, ev, "link", e.linkNotice(ev))
		return d
	}
	d.Stage = StageLinkChecked

	if settings.Antispam && !admin() {
		if e.spam.Record(ev.ChatID, ev.senderKey(), e.spam.Now()) {
			d.SpamDetected = true
			d.Stage = StageSpamChecked
			e.deleteAndNotify(ctx, d, ev, "spam", e.spamNotice(ev))
			return d
		}
	}
	d.Stage = StageDone
	return d
}

// LastDecision returns the decision recorded for a message, if still retained.
func (e *Engine) LastDecision(chatID int64, messageID int) (*Decision, bool) {
	return e.history.Get(historyKey(chatID, messageID))
}

func (e *Engine) remember(d *Decision) {
	e.history.Add(historyKey(d.ChatID, d.MessageID), d)
}

// adminCheck resolves the sender's bypass at most once, and only when asked.
func (e *Engine) adminCheck(ctx context.Context, ev MessageEvent, d *Decision) func() bool {
	resolved := false
	return func() bool {
		if resolved {
			return d.IsAdmin
		}
		resolved = true
		isAdmin, err := e.admins.IsAdmin(ctx, ev.Subject())
		if err != nil {
			e.logger.WithError(err).WithFields(log.Fields{
				"chat_id": ev.ChatID,
				"user_id": ev.UserID,
			}).Warn("cant resolve admin status, treating as member")
			isAdmin = false
		}
		d.IsAdmin = isAdmin
		return isAdmin
	}
}

func (e *Engine) deleteAndNotify(ctx context.Context, d *Decision, ev MessageEvent, reason, notice string) {
	e.emit(ctx, d, ev, audit.ActionDelete, reason, func(ctx context.Context) error {
		return e.sink.DeleteMessage(ctx, ev.ChatID, ev.MessageID)
	})
	e.emit(ctx, d, ev, audit.ActionNotice, reason, func(ctx context.Context) error {
		return e.sink.SendMessage(ctx, ev.ChatID, notice, SendOptions{ParseMode: ParseModeHTML, ThreadID: ev.ThreadID})
	})
}

// emit runs one action under its own deadline. A failure is logged and
// recorded but does not stop the caller from emitting further actions.
func (e *Engine) emit(ctx context.Context, d *Decision, ev MessageEvent, kind, reason string, action func(context.Context) error) {
	actx, cancel := context.WithTimeout(ctx, e.opts.ActionTimeout)
	defer cancel()

	err := action(actx)
	d.Actions = append(d.Actions, ActionRecord{Kind: kind, Err: err})
	observability.RecordAction(kind, err)
	e.auditor.Record(ctx, audit.Entry{
		DecisionID: d.ID,
		ChatID:     ev.ChatID,
		UserID:     ev.UserID,
		MessageID:  ev.MessageID,
		Action:     kind,
		Reason:     reason,
		Err:        err,
	})
	if err != nil {
		e.logger.WithError(err).WithFields(log.Fields{
			"chat_id":     ev.ChatID,
			"message_id":  ev.MessageID,
			"action":      kind,
			"decision_id": d.ID,
		}).Warn("moderation action failed")
	}
}

func (e *Engine) linkNotice(ev MessageEvent) string {
	mention := i18n.Get("Unknown", e.opts.Language)
	if ev.User() != nil {
		mention = MentionHTML(ev.UserID, ev.UserName)
	}
	return "🛑 " + fmt.Sprintf(i18n.Get("Links are not allowed here.\nUser: %s", e.opts.Language), mention)
}

func (e *Engine) spamNotice(ev MessageEvent) string {
	mention := i18n.Get("user", e.opts.Language)
	if ev.User() != nil {
		mention = MentionHTML(ev.UserID, ev.UserName)
	}
	return "🛡️ " + fmt.Sprintf(i18n.Get("Please slow down, %s.\nSpamming is not allowed.", e.opts.Language), mention)
}

func (e *Engine) actionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.opts.ActionTimeout)
}

func historyKey(chatID int64, messageID int) string {
	return strconv.FormatInt(chatID, 10) + ":" + strconv.Itoa(messageID)
}
