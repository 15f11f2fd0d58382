package chat

import (
	"context"
	"html"
	"strings"
	"unicode"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/audit"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/i18n"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/moderation"
)

func (c *Commands) toggleAntilink(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	enabled, err := c.settings.ToggleAntilink(ctx, cc.chat.ID)
	c.record(ctx, cc, 0, audit.ActionSetting, err)
	if err != nil {
		c.storageFailed(ctx, cc)
		return err
	}
	text := i18n.Get("Anti-link disabled.", lang)
	if enabled {
		text = i18n.Get("Anti-link enabled.", lang)
	}
	c.Reply(ctx, cc.msg, cc.chat, "🛑 "+text, "")
	return nil
}

func (c *Commands) toggleAntispam(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	enabled, err := c.settings.ToggleAntispam(ctx, cc.chat.ID)
	c.record(ctx, cc, 0, audit.ActionSetting, err)
	if err != nil {
		c.storageFailed(ctx, cc)
		return err
	}
	text := i18n.Get("Anti-spam disabled.", lang)
	if enabled {
		text = i18n.Get("Anti-spam enabled.", lang)
	}
	c.Reply(ctx, cc.msg, cc.chat, "🛡️ "+text, "")
	return nil
}

func (c *Commands) lock(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	if err := c.GetPlatform().SetChatPermissions(ctx, cc.chat.ID, moderation.MutedPermissions()); err != nil {
		c.failed(ctx, cc, i18n.Get("Failed to lock: %s", lang), err)
		return err
	}
	c.Reply(ctx, cc.msg, cc.chat, "🔒 "+i18n.Get("Chat locked. Only admins can talk.", lang), "")
	return nil
}

func (c *Commands) unlock(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	if err := c.GetPlatform().SetChatPermissions(ctx, cc.chat.ID, moderation.MemberPermissions()); err != nil {
		c.failed(ctx, cc, i18n.Get("Failed to unlock: %s", lang), err)
		return err
	}
	c.Reply(ctx, cc.msg, cc.chat, "🔓 "+i18n.Get("Chat unlocked.", lang), "")
	return nil
}

func (c *Commands) setWelcome(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	if cc.payload == "" {
		c.usage(ctx, cc, i18n.Get("Usage:\n/setwelcome Welcome {name}! 🎉\n\nPlaceholders: {name} {mention} {id} {chat}", lang))
		return nil
	}
	err := c.settings.SetWelcomeTemplate(ctx, cc.chat.ID, cc.payload)
	c.record(ctx, cc, 0, audit.ActionSetting, err)
	if err != nil {
		c.storageFailed(ctx, cc)
		return err
	}
	c.Reply(ctx, cc.msg, cc.chat, "🎉 "+i18n.Get("Welcome message updated successfully.", lang), "")
	return nil
}

func (c *Commands) setGoodbye(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	if cc.payload == "" {
		c.usage(ctx, cc, i18n.Get("Usage:\n/setgoodbye Goodbye {name}! 👋\n\nPlaceholders: {name} {mention} {id} {chat}", lang))
		return nil
	}
	err := c.settings.SetGoodbyeTemplate(ctx, cc.chat.ID, cc.payload)
	c.record(ctx, cc, 0, audit.ActionSetting, err)
	if err != nil {
		c.storageFailed(ctx, cc)
		return err
	}
	c.Reply(ctx, cc.msg, cc.chat, "👋 "+i18n.Get("Goodbye message updated successfully.", lang), "")
	return nil
}

func (c *Commands) setRules(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	if cc.payload == "" {
		c.usage(ctx, cc, i18n.Get("Usage:\n/setrules 1) Be respectful\n2) No spam\n3) No links", lang))
		return nil
	}
	err := c.settings.SetRulesText(ctx, cc.chat.ID, cc.payload)
	c.record(ctx, cc, 0, audit.ActionSetting, err)
	if err != nil {
		c.storageFailed(ctx, cc)
		return err
	}
	c.Reply(ctx, cc.msg, cc.chat, "📜 "+i18n.Get("Group rules updated.", lang), "")
	return nil
}

func (c *Commands) rules(ctx context.Context, cc *commandContext) error {
	c.sendRules(ctx, cc.msg, cc.chat)
	return nil
}

func (c *Commands) sendRules(ctx context.Context, msg *api.Message, chat *api.Chat) {
	lang := c.Language()
	rules, ok := c.settings.RulesText(ctx, chat.ID)
	if !ok {
		c.Reply(ctx, msg, chat, "📜 "+i18n.Get("No rules set yet. Admins can set them using /setrules", lang), "")
		return
	}
	text := "📜 <b>" + html.EscapeString(i18n.Get("Group Rules", lang)) + "</b>\n\n" + html.EscapeString(rules)
	c.Reply(ctx, msg, chat, text, moderation.ParseModeHTML)
}

func (c *Commands) rulesButton(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	opts := moderation.SendOptions{
		ReplyTo: cc.msg.MessageID,
		Buttons: []moderation.Button{{
			Text:         "📌 " + i18n.Get("View Rules", lang),
			CallbackData: rulesCallbackData,
		}},
	}
	if cc.chat.IsForum {
		opts.ThreadID = cc.msg.MessageThreadID
	}
	text := i18n.Get("Tap the button below to view group rules 👇", lang)
	return c.GetPlatform().SendMessage(ctx, cc.chat.ID, text, opts)
}

func (c *Commands) addFilter(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	key, reply := splitFirst(cc.payload)
	if key == "" || reply == "" {
		c.usage(ctx, cc, i18n.Get("Usage:\n/filter hello Hi! 😊\n/filter price Contact admin for pricing.", lang))
		return nil
	}
	if err := c.filters.Put(ctx, cc.chat.ID, key, reply); err != nil {
		c.storageFailed(ctx, cc)
		return err
	}
	text := "✅ " + html.EscapeString(i18n.Get("Filter saved for:", lang)) + " <b>" + html.EscapeString(key) + "</b>"
	c.Reply(ctx, cc.msg, cc.chat, text, moderation.ParseModeHTML)
	return nil
}

func (c *Commands) stopFilter(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	if len(cc.args) == 0 {
		c.usage(ctx, cc, i18n.Get("Usage:\n/stop <key>", lang))
		return nil
	}
	removed, err := c.filters.Remove(ctx, cc.chat.ID, cc.args[0])
	if err != nil {
		c.storageFailed(ctx, cc)
		return err
	}
	if removed {
		c.Reply(ctx, cc.msg, cc.chat, "✅ "+i18n.Get("Filter removed.", lang), "")
	} else {
		c.Reply(ctx, cc.msg, cc.chat, "ℹ️ "+i18n.Get("No such filter found.", lang), "")
	}
	return nil
}

func (c *Commands) listFilters(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	keys, err := c.filters.ListKeys(ctx, cc.chat.ID)
	if err != nil {
		c.Reply(ctx, cc.msg, cc.chat, "❌ "+i18n.Get("Filters are unavailable right now.", lang), "")
		return err
	}
	if len(keys) == 0 {
		c.Reply(ctx, cc.msg, cc.chat, "ℹ️ "+i18n.Get("No filters set.", lang), "")
		return nil
	}
	var b strings.Builder
	b.WriteString("🧠 <b>" + html.EscapeString(i18n.Get("Active Filters", lang)) + "</b>")
	for _, k := range keys {
		b.WriteString("\n• <code>" + html.EscapeString(k) + "</code>")
	}
	c.Reply(ctx, cc.msg, cc.chat, b.String(), moderation.ParseModeHTML)
	return nil
}

// storageFailed reports a write that did not persist; nothing was changed.
func (c *Commands) storageFailed(ctx context.Context, cc *commandContext) {
	c.Reply(ctx, cc.msg, cc.chat, "❌ "+i18n.Get("Could not save the change, try again later.", c.Language()), "")
}

func splitFirst(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}
