package moderation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/audit"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/db"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/policy/permissions"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/spam"
)

const (
	testChat  int64 = -1001
	testUser  int64 = 42
	testAdmin int64 = 7
)

type settingsFunc func(ctx context.Context, chatID int64) *db.GroupSettings

func (f settingsFunc) Effective(ctx context.Context, chatID int64) *db.GroupSettings {
	return f(ctx, chatID)
}

func fixedSettings(antilink, antispam bool) settingsFunc {
	return func(_ context.Context, chatID int64) *db.GroupSettings {
		gs := db.DefaultGroupSettings(chatID)
		gs.Antilink = antilink
		gs.Antispam = antispam
		return gs
	}
}

type mapFilters map[string]string

func (m mapFilters) Match(_ context.Context, _ int64, text string) (string, bool) {
	for k, v := range m {
		if k == text {
			return v, true
		}
	}
	return "", false
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type stubAdmins struct {
	mu     sync.Mutex
	admins map[int64]bool
	err    error
	calls  int
}

func (s *stubAdmins) IsAdmin(_ context.Context, subject permissions.Subject) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	return s.admins[subject.UserID], nil
}

type memLedger struct {
	mu     sync.Mutex
	counts map[[2]int64]int
	err    error
}

func (l *memLedger) Increment(_ context.Context, chatID, userID int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return 0, l.err
	}
	if l.counts == nil {
		l.counts = map[[2]int64]int{}
	}
	l.counts[[2]int64{chatID, userID}]++
	return l.counts[[2]int64{chatID, userID}], nil
}

type sinkCall struct {
	Kind      string
	ChatID    int64
	UserID    int64
	MessageID int
	Text      string
	Opts      SendOptions
	Perms     Permissions
	Until     *time.Time
}

type fakeSink struct {
	mu    sync.Mutex
	calls []sinkCall
	fail  map[string]error
}

func (f *fakeSink) record(c sinkCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.fail[c.Kind]
}

func (f *fakeSink) Calls() []sinkCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sinkCall(nil), f.calls...)
}

func (f *fakeSink) Kinds() []string {
	var kinds []string
	for _, c := range f.Calls() {
		kinds = append(kinds, c.Kind)
	}
	return kinds
}

func (f *fakeSink) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	return f.record(sinkCall{Kind: "delete", ChatID: chatID, MessageID: messageID})
}

func (f *fakeSink) SendMessage(_ context.Context, chatID int64, text string, opts SendOptions) error {
	return f.record(sinkCall{Kind: "send", ChatID: chatID, Text: text, Opts: opts})
}

func (f *fakeSink) RestrictMember(_ context.Context, chatID, userID int64, perms Permissions, until *time.Time) error {
	return f.record(sinkCall{Kind: "restrict", ChatID: chatID, UserID: userID, Perms: perms, Until: until})
}

func (f *fakeSink) BanMember(_ context.Context, chatID, userID int64) error {
	return f.record(sinkCall{Kind: "ban", ChatID: chatID, UserID: userID})
}

func (f *fakeSink) UnbanMember(_ context.Context, chatID, userID int64) error {
	return f.record(sinkCall{Kind: "unban", ChatID: chatID, UserID: userID})
}

func (f *fakeSink) GetMemberStatus(context.Context, int64, int64) (permissions.MemberStatus, error) {
	return permissions.StatusMember, nil
}

type recordingAuditor struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (a *recordingAuditor) Record(_ context.Context, e audit.Entry) {
	a.mu.Lock()
	a.entries = append(a.entries, e)
	a.mu.Unlock()
}

type harness struct {
	engine  *Engine
	sink    *fakeSink
	admins  *stubAdmins
	ledger  *memLedger
	clock   *fakeClock
	auditor *recordingAuditor
}

type harnessOption func(*Deps)

func withSettings(s SettingsReader) harnessOption {
	return func(d *Deps) { d.Settings = s }
}

func withFilters(f FilterMatcher) harnessOption {
	return func(d *Deps) { d.Filters = f }
}

func newHarness(opts ...harnessOption) *harness {
	h := &harness{
		sink:    &fakeSink{fail: map[string]error{}},
		admins:  &stubAdmins{admins: map[int64]bool{testAdmin: true}},
		ledger:  &memLedger{},
		clock:   &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)},
		auditor: &recordingAuditor{},
	}
	deps := Deps{
		Settings: fixedSettings(false, false),
		Filters:  mapFilters{},
		Spam:     spam.NewTracker(spam.Config{}).WithClock(h.clock),
		Admins:   h.admins,
		Ledger:   h.ledger,
		Sink:     h.sink,
		Auditor:  h.auditor,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	engine, err := NewEngine(deps, Options{ActionTimeout: time.Second, Language: "en"})
	if err != nil {
		panic(err)
	}
	engine.now = h.clock.Now
	h.engine = engine
	return h
}

func groupMessage(userID int64, messageID int, text string) MessageEvent {
	return MessageEvent{
		ChatID:    testChat,
		ChatType:  ChatTypeSupergroup,
		ChatTitle: "Room",
		MessageID: messageID,
		UserID:    userID,
		UserName:  "Al <b>",
		Text:      text,
	}
}

var errForbidden = errors.New("Forbidden: not enough rights to delete a message")
