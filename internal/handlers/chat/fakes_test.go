package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/audit"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/moderation"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/policy/permissions"
)

type platformCall struct {
	Kind      string
	ChatID    int64
	UserID    int64
	MessageID int
	Text      string
	Opts      moderation.SendOptions
	Perms     moderation.Permissions
	Until     *time.Time
}

type fakePlatform struct {
	mu     sync.Mutex
	calls  []platformCall
	fail   map[string]error
	admins []api.ChatMember
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{fail: map[string]error{}}
}

func (p *fakePlatform) add(c platformCall) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, c)
	return p.fail[c.Kind]
}

func (p *fakePlatform) Calls() []platformCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]platformCall(nil), p.calls...)
}

func (p *fakePlatform) Sent() []platformCall {
	var out []platformCall
	for _, c := range p.Calls() {
		if c.Kind == "send" {
			out = append(out, c)
		}
	}
	return out
}

func (p *fakePlatform) LastText() string {
	sent := p.Sent()
	if len(sent) == 0 {
		return ""
	}
	return sent[len(sent)-1].Text
}

func (p *fakePlatform) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	return p.add(platformCall{Kind: "delete", ChatID: chatID, MessageID: messageID})
}

func (p *fakePlatform) SendMessage(_ context.Context, chatID int64, text string, opts moderation.SendOptions) error {
	return p.add(platformCall{Kind: "send", ChatID: chatID, Text: text, Opts: opts})
}

func (p *fakePlatform) RestrictMember(_ context.Context, chatID, userID int64, perms moderation.Permissions, until *time.Time) error {
	return p.add(platformCall{Kind: "restrict", ChatID: chatID, UserID: userID, Perms: perms, Until: until})
}

func (p *fakePlatform) BanMember(_ context.Context, chatID, userID int64) error {
	return p.add(platformCall{Kind: "ban", ChatID: chatID, UserID: userID})
}

func (p *fakePlatform) UnbanMember(_ context.Context, chatID, userID int64) error {
	return p.add(platformCall{Kind: "unban", ChatID: chatID, UserID: userID})
}

func (p *fakePlatform) GetMemberStatus(_ context.Context, chatID, userID int64) (permissions.MemberStatus, error) {
	return permissions.StatusMember, p.add(platformCall{Kind: "status", ChatID: chatID, UserID: userID})
}

func (p *fakePlatform) SetChatPermissions(_ context.Context, chatID int64, perms moderation.Permissions) error {
	return p.add(platformCall{Kind: "chat_permissions", ChatID: chatID, Perms: perms})
}

func (p *fakePlatform) PinMessage(_ context.Context, chatID int64, messageID int) error {
	return p.add(platformCall{Kind: "pin", ChatID: chatID, MessageID: messageID})
}

func (p *fakePlatform) UnpinMessage(_ context.Context, chatID int64) error {
	return p.add(platformCall{Kind: "unpin", ChatID: chatID})
}

func (p *fakePlatform) ListAdmins(_ context.Context, chatID int64) ([]api.ChatMember, error) {
	if err := p.add(platformCall{Kind: "admins", ChatID: chatID}); err != nil {
		return nil, err
	}
	return p.admins, nil
}

func (p *fakePlatform) AnswerCallback(_ context.Context, callbackID, text string) error {
	return p.add(platformCall{Kind: "answer", Text: callbackID})
}

type fakeSettings struct {
	mu       sync.Mutex
	antilink bool
	antispam bool
	welcome  string
	goodbye  string
	rules    string
	err      error
}

func (s *fakeSettings) ToggleAntilink(context.Context, int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	s.antilink = !s.antilink
	return s.antilink, nil
}

func (s *fakeSettings) ToggleAntispam(context.Context, int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	s.antispam = !s.antispam
	return s.antispam, nil
}

func (s *fakeSettings) SetWelcomeTemplate(_ context.Context, _ int64, template string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.welcome = template
	return nil
}

func (s *fakeSettings) SetGoodbyeTemplate(_ context.Context, _ int64, template string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.goodbye = template
	return nil
}

func (s *fakeSettings) SetRulesText(_ context.Context, _ int64, rules string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.rules = rules
	return nil
}

func (s *fakeSettings) RulesText(context.Context, int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules, s.rules != ""
}

type fakeLedger struct {
	counts map[int64]int
	err    error
}

func (l *fakeLedger) Get(_ context.Context, _ int64, userID int64) (int, error) {
	return l.counts[userID], l.err
}

func (l *fakeLedger) Reset(_ context.Context, _ int64, userID int64) error {
	if l.err != nil {
		return l.err
	}
	delete(l.counts, userID)
	return nil
}

type fakeFilters struct {
	entries map[string]string
	err     error
}

func (f *fakeFilters) Put(_ context.Context, _ int64, key, reply string) error {
	if f.err != nil {
		return f.err
	}
	f.entries[key] = reply
	return nil
}

func (f *fakeFilters) Remove(_ context.Context, _ int64, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.entries[key]
	delete(f.entries, key)
	return ok, nil
}

func (f *fakeFilters) ListKeys(context.Context, int64) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	keys := make([]string, 0, len(f.entries))
	for k := range f.entries {
		keys = append(keys, k)
	}
	return keys, nil
}

type fakeModerator struct {
	outcome   *moderation.WarnOutcome
	err       error
	warned    []int64
	decisions map[int]*moderation.Decision
}

func (m *fakeModerator) Warn(_ context.Context, _ int64, targetID, _ int64) (*moderation.WarnOutcome, error) {
	m.warned = append(m.warned, targetID)
	return m.outcome, m.err
}

func (m *fakeModerator) WarnLimit() int { return 3 }

func (m *fakeModerator) LastDecision(_ int64, messageID int) (*moderation.Decision, bool) {
	d, ok := m.decisions[messageID]
	return d, ok
}

type fakeAdmins struct {
	admins      map[int64]bool
	err         error
	invalidated []int64
}

func (a *fakeAdmins) IsAdmin(_ context.Context, s permissions.Subject) (bool, error) {
	if a.err != nil {
		return false, a.err
	}
	return a.admins[s.UserID], nil
}

func (a *fakeAdmins) Invalidate(_ int64, userID int64) {
	a.invalidated = append(a.invalidated, userID)
}

type fakeAuditor struct {
	entries []audit.Entry
}

func (a *fakeAuditor) Record(_ context.Context, e audit.Entry) {
	a.entries = append(a.entries, e)
}

var errBoom = errors.New("boom")

const (
	testChatID  = int64(-100500)
	testAdminID = int64(7)
	testUserID  = int64(42)
)

type commandsHarness struct {
	platform  *fakePlatform
	settings  *fakeSettings
	ledger    *fakeLedger
	filters   *fakeFilters
	moderator *fakeModerator
	admins    *fakeAdmins
	auditor   *fakeAuditor
	commands  *Commands
}

func newCommandsHarness() *commandsHarness {
	h := &commandsHarness{
		platform:  newFakePlatform(),
		settings:  &fakeSettings{},
		ledger:    &fakeLedger{counts: map[int64]int{}},
		filters:   &fakeFilters{entries: map[string]string{}},
		moderator: &fakeModerator{decisions: map[int]*moderation.Decision{}},
		admins:    &fakeAdmins{admins: map[int64]bool{testAdminID: true}},
		auditor:   &fakeAuditor{},
	}
	h.commands = NewCommands(CommandsDeps{
		Platform:  h.platform,
		Settings:  h.settings,
		Ledger:    h.ledger,
		Filters:   h.filters,
		Moderator: h.moderator,
		Admins:    h.admins,
		Auditor:   h.auditor,
		Language:  "en",
	})
	return h
}

func groupChat() *api.Chat {
	return &api.Chat{ID: testChatID, Type: "supergroup", Title: "Test"}
}

func commandMessage(text string) *api.Message {
	length := len(text)
	for i, r := range text {
		if r == ' ' {
			length = i
			break
		}
	}
	return &api.Message{
		MessageID: 100,
		Text:      text,
		Entities: []api.MessageEntity{{
			Type:   "bot_command",
			Offset: 0,
			Length: length,
		}},
	}
}

func (h *commandsHarness) run(text string, from int64, reply *api.Message) (bool, error) {
	msg := commandMessage(text)
	user := &api.User{ID: from, FirstName: "Sender"}
	msg.From = user
	msg.ReplyToMessage = reply
	return h.commands.Handle(context.Background(), &api.Update{Message: msg}, groupChat(), user)
}

func replyTo(userID int64) *api.Message {
	return &api.Message{MessageID: 55, From: &api.User{ID: userID, FirstName: "Target"}}
}
