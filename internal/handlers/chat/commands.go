package chat

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	pderrors "github.com/Dillesh56/PrincessDainaBot-1/internal/errors"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/handlers/base"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/i18n"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/moderation"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/policy/permissions"
)

const rulesCallbackData = "pd_rules"

var muteDurationPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

type (
	SettingsStore interface {
		ToggleAntilink(ctx context.Context, chatID int64) (bool, error)
		ToggleAntispam(ctx context.Context, chatID int64) (bool, error)
		SetWelcomeTemplate(ctx context.Context, chatID int64, template string) error
		SetGoodbyeTemplate(ctx context.Context, chatID int64, template string) error
		SetRulesText(ctx context.Context, chatID int64, rules string) error
		RulesText(ctx context.Context, chatID int64) (string, bool)
	}

	WarnLedger interface {
		Get(ctx context.Context, chatID, userID int64) (int, error)
		Reset(ctx context.Context, chatID, userID int64) error
	}

	FilterStore interface {
		Put(ctx context.Context, chatID int64, key, reply string) error
		Remove(ctx context.Context, chatID int64, key string) (bool, error)
		ListKeys(ctx context.Context, chatID int64) ([]string, error)
	}

	Moderator interface {
		Warn(ctx context.Context, chatID, targetID, actorID int64) (*moderation.WarnOutcome, error)
		WarnLimit() int
		LastDecision(chatID int64, messageID int) (*moderation.Decision, bool)
	}

	AdminChecker interface {
		IsAdmin(ctx context.Context, s permissions.Subject) (bool, error)
		Invalidate(chatID, userID int64)
	}
)

type CommandsDeps struct {
	Platform  base.Platform
	Settings  SettingsStore
	Ledger    WarnLedger
	Filters   FilterStore
	Moderator Moderator
	Admins    AdminChecker
	Auditor   moderation.Auditor
	Language  string
}

type command struct {
	adminOnly bool
	run       func(ctx context.Context, c *commandContext) error
}

type commandContext struct {
	msg     *api.Message
	chat    *api.Chat
	user    *api.User
	payload string
	args    []string
}

// Commands routes slash commands; admin-only ones are gated per sender.
type Commands struct {
	*base.BaseHandler
	settings  SettingsStore
	ledger    WarnLedger
	filters   FilterStore
	moderator Moderator
	admins    AdminChecker
	auditor   moderation.Auditor
	routes    map[string]command
}

func NewCommands(deps CommandsDeps) *Commands {
	c := &Commands{
		BaseHandler: base.NewBaseHandler(deps.Platform, "commands", deps.Language),
		settings:    deps.Settings,
		ledger:      deps.Ledger,
		filters:     deps.Filters,
		moderator:   deps.Moderator,
		admins:      deps.Admins,
		auditor:     deps.Auditor,
	}
	c.routes = map[string]command{
		"start":       {run: c.start},
		"help":        {run: c.help},
		"about":       {run: c.about},
		"privacy":     {run: c.privacy},
		"ping":        {run: c.ping},
		"id":          {run: c.id},
		"debug":       {run: c.debug},
		"rules":       {run: c.rules},
		"rulesbutton": {run: c.rulesButton},
		"filters":     {run: c.listFilters},
		"warns":       {run: c.warns},
		"admins":      {run: c.listAdmins},

		"ban":        {adminOnly: true, run: c.ban},
		"unban":      {adminOnly: true, run: c.unban},
		"kick":       {adminOnly: true, run: c.kick},
		"mute":       {adminOnly: true, run: c.mute},
		"unmute":     {adminOnly: true, run: c.unmute},
		"warn":       {adminOnly: true, run: c.warn},
		"resetwarns": {adminOnly: true, run: c.resetWarns},
		"antilink":   {adminOnly: true, run: c.toggleAntilink},
		"antispam":   {adminOnly: true, run: c.toggleAntispam},
		"lock":       {adminOnly: true, run: c.lock},
		"unlock":     {adminOnly: true, run: c.unlock},
		"setwelcome": {adminOnly: true, run: c.setWelcome},
		"setgoodbye": {adminOnly: true, run: c.setGoodbye},
		"setrules":   {adminOnly: true, run: c.setRules},
		"filter":     {adminOnly: true, run: c.addFilter},
		"stop":       {adminOnly: true, run: c.stopFilter},
		"pin":        {adminOnly: true, run: c.pin},
		"unpin":      {adminOnly: true, run: c.unpin},
		"why":        {adminOnly: true, run: c.why},
	}
	return c
}

func (c *Commands) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if u == nil || chat == nil {
		return true, nil
	}
	if u.CallbackQuery != nil {
		return c.handleCallback(ctx, u.CallbackQuery, chat)
	}
	if u.Message == nil || !u.Message.IsCommand() {
		return true, nil
	}

	msg := u.Message
	name := strings.ToLower(msg.Command())
	cmd, ok := c.routes[name]
	if !ok {
		return true, nil
	}
	payload := strings.TrimSpace(msg.CommandArguments())
	cc := &commandContext{
		msg:     msg,
		chat:    chat,
		user:    user,
		payload: payload,
		args:    strings.Fields(payload),
	}
	entry := c.GetLogger().WithFields(log.Fields{
		"command": name,
		"chat_id": chat.ID,
	})
	entry.Debug("processing command")

	if cmd.adminOnly {
		if err := c.authorize(ctx, name, cc); err != nil {
			entry.WithError(err).Debug("command denied")
			c.Reply(ctx, msg, chat, "⛔ "+i18n.Get("Access Denied\nOnly group admins can use this command.", c.Language()), "")
			return false, nil
		}
	}
	if err := cmd.run(ctx, cc); err != nil {
		entry.WithError(err).Warn("command failed")
	}
	return false, nil
}

func (c *Commands) handleCallback(ctx context.Context, q *api.CallbackQuery, chat *api.Chat) (bool, error) {
	if q.Data != rulesCallbackData {
		return true, nil
	}
	if err := c.GetPlatform().AnswerCallback(ctx, q.ID, ""); err != nil {
		c.GetLogger().WithError(err).Debug("cant answer callback")
	}
	if q.Message == nil {
		return false, nil
	}
	c.sendRules(ctx, q.Message, chat)
	return false, nil
}

// authorize fails with ErrPermissionDenied unless the sender administers the group.
func (c *Commands) authorize(ctx context.Context, name string, cc *commandContext) error {
	if c.isAdmin(ctx, cc) {
		return nil
	}
	return fmt.Errorf("/%s in chat %d: %w", name, cc.chat.ID, pderrors.ErrPermissionDenied)
}

func (c *Commands) isAdmin(ctx context.Context, cc *commandContext) bool {
	if cc.chat.Type != moderation.ChatTypeGroup && cc.chat.Type != moderation.ChatTypeSupergroup {
		return false
	}
	subject := permissions.Subject{ChatID: cc.chat.ID}
	if cc.user != nil {
		subject.UserID = cc.user.ID
	}
	if cc.msg.SenderChat != nil {
		subject.SenderChatID = cc.msg.SenderChat.ID
	}
	ok, err := c.admins.IsAdmin(ctx, subject)
	if err != nil {
		c.GetLogger().WithError(err).WithField("chat_id", cc.chat.ID).Warn("cant check admin status")
		return false
	}
	return ok
}

// target is the replied-to user, else a positive numeric id in the first argument.
func (cc *commandContext) target() (int64, error) {
	if reply := cc.msg.ReplyToMessage; reply != nil && reply.From != nil && reply.From.ID != 0 {
		return reply.From.ID, nil
	}
	if len(cc.args) > 0 {
		if id, err := strconv.ParseInt(cc.args[0], 10, 64); err == nil && id > 0 && isDigits(cc.args[0]) {
			return id, nil
		}
	}
	return 0, pderrors.ErrTargetNotResolved
}

// muteUntil reads an optional duration such as 10m or 2d. The duration is the
// second argument when the first is a numeric target, otherwise the first.
func (cc *commandContext) muteUntil(now time.Time) *time.Time {
	if len(cc.args) == 0 {
		return nil
	}
	candidate := cc.args[0]
	if isDigits(cc.args[0]) {
		if len(cc.args) < 2 {
			return nil
		}
		candidate = cc.args[1]
	}
	d, ok := ParseMuteDuration(candidate)
	if !ok {
		return nil
	}
	until := now.Add(d)
	return &until
}

// ParseMuteDuration accepts <n><unit> with unit one of s, m, h, d.
func ParseMuteDuration(s string) (time.Duration, bool) {
	m := muteDurationPattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	unit := map[string]time.Duration{
		"s": time.Second,
		"m": time.Minute,
		"h": time.Hour,
		"d": 24 * time.Hour,
	}[m[2]]
	return time.Duration(n) * unit, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
