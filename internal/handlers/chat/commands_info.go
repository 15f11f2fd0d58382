package chat

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/i18n"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/moderation"
)

func (c *Commands) start(ctx context.Context, cc *commandContext) error {
	text := "👑 " + i18n.Get("*Princess Daina Bot*\nYour smart & elegant Telegram group assistant.\n\nUse /help to see commands.", c.Language())
	c.Reply(ctx, cc.msg, cc.chat, text, moderation.ParseModeMarkdown)
	return nil
}

func (c *Commands) help(ctx context.Context, cc *commandContext) error {
	text := "👑 " + i18n.Get("*Princess Daina Bot: Commands*\n\n"+
		"*Basic*\n"+
		"/start - Start the bot\n"+
		"/help - Show help\n"+
		"/about - About the bot\n"+
		"/privacy - Privacy policy\n\n"+
		"*Admin & Moderation*\n"+
		"/ban, /unban, /kick\n"+
		"/mute, /unmute\n"+
		"/warn, /warns, /resetwarns\n"+
		"/why - Explain a moderation decision\n\n"+
		"*Protection*\n"+
		"/antilink - Toggle link blocking\n"+
		"/antispam - Toggle spam protection\n"+
		"/lock, /unlock - Lock/unlock chat\n\n"+
		"*Messages & Filters*\n"+
		"/setwelcome, /setgoodbye\n"+
		"/filter <key> <reply>\n"+
		"/stop <key>\n"+
		"/filters\n\n"+
		"*Rules & Utilities*\n"+
		"/setrules, /rules, /rulesbutton\n"+
		"/admins, /id, /debug, /ping\n"+
		"/pin, /unpin (reply to a message)", c.Language())
	c.Reply(ctx, cc.msg, cc.chat, text, moderation.ParseModeMarkdown)
	return nil
}

func (c *Commands) about(ctx context.Context, cc *commandContext) error {
	text := "👑 " + i18n.Get("*Princess Daina Bot*\nSmart • Secure • Simple\nBuilt to keep Telegram communities clean & friendly.", c.Language())
	c.Reply(ctx, cc.msg, cc.chat, text, moderation.ParseModeMarkdown)
	return nil
}

func (c *Commands) privacy(ctx context.Context, cc *commandContext) error {
	text := "🔐 " + i18n.Get("*Privacy Policy*\n\n"+
		"• Uses minimal data needed for moderation (user/chat IDs, moderation context).\n"+
		"• Does not read private chats.\n"+
		"• Does not sell or share data.\n"+
		"• Data is stored only to provide features (warnings, settings, filters).\n\n"+
		"By using the bot, you agree to this policy.", c.Language())
	c.Reply(ctx, cc.msg, cc.chat, text, moderation.ParseModeMarkdown)
	return nil
}

func (c *Commands) ping(ctx context.Context, cc *commandContext) error {
	c.Reply(ctx, cc.msg, cc.chat, "🏓 "+i18n.Get("Pong! Bot is alive", c.Language())+" ✅", "")
	return nil
}

func (c *Commands) id(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	text := "👤 " + fmt.Sprintf(i18n.Get("User ID: `%d`", lang), cc.actorID()) +
		"\n💬 " + fmt.Sprintf(i18n.Get("Chat ID: `%d`", lang), cc.chat.ID)
	c.Reply(ctx, cc.msg, cc.chat, text, moderation.ParseModeMarkdown)
	return nil
}

func (c *Commands) debug(ctx context.Context, cc *commandContext) error {
	user, senderChat := "None", "None"
	if cc.user != nil {
		user = strconv.FormatInt(cc.user.ID, 10)
	}
	if cc.msg.SenderChat != nil {
		senderChat = strconv.FormatInt(cc.msg.SenderChat.ID, 10)
	}
	text := fmt.Sprintf("chat_id = %d\nuser_id = %s\nsender_chat_id = %s", cc.chat.ID, user, senderChat)
	c.Reply(ctx, cc.msg, cc.chat, text, "")
	return nil
}

func (c *Commands) listAdmins(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	admins, err := c.GetPlatform().ListAdmins(ctx, cc.chat.ID)
	if err != nil {
		c.failed(ctx, cc, i18n.Get("Failed: %s", lang), err)
		return err
	}
	var b strings.Builder
	b.WriteString("👮 <b>" + html.EscapeString(i18n.Get("Admins", lang)) + "</b>")
	for _, a := range admins {
		if a.User == nil {
			continue
		}
		if a.User.UserName != "" {
			b.WriteString("\n• @" + html.EscapeString(a.User.UserName))
		} else {
			b.WriteString("\n• " + html.EscapeString(a.User.FirstName))
		}
	}
	c.Reply(ctx, cc.msg, cc.chat, b.String(), moderation.ParseModeHTML)
	return nil
}

func (c *Commands) pin(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	if cc.msg.ReplyToMessage == nil {
		c.usage(ctx, cc, "⚠️ "+i18n.Get("Reply to a message to pin it.", lang))
		return nil
	}
	if err := c.GetPlatform().PinMessage(ctx, cc.chat.ID, cc.msg.ReplyToMessage.MessageID); err != nil {
		c.failed(ctx, cc, i18n.Get("Failed to pin: %s", lang), err)
		return err
	}
	c.Reply(ctx, cc.msg, cc.chat, "📌 "+i18n.Get("Pinned.", lang), "")
	return nil
}

func (c *Commands) unpin(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	if err := c.GetPlatform().UnpinMessage(ctx, cc.chat.ID); err != nil {
		c.failed(ctx, cc, i18n.Get("Failed to unpin: %s", lang), err)
		return err
	}
	c.Reply(ctx, cc.msg, cc.chat, "📍 "+i18n.Get("Unpinned.", lang), "")
	return nil
}

// why explains the recorded decision for the replied message, or for the
// message id given as the first argument.
func (c *Commands) why(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	var messageID int
	switch {
	case cc.msg.ReplyToMessage != nil:
		messageID = cc.msg.ReplyToMessage.MessageID
	case len(cc.args) > 0 && isDigits(cc.args[0]):
		messageID, _ = strconv.Atoi(cc.args[0])
	}
	if messageID == 0 {
		c.usage(ctx, cc, "⚠️ "+i18n.Get("Reply to a message (or pass its message id) to explain its moderation.", lang))
		return nil
	}
	d, ok := c.moderator.LastDecision(cc.chat.ID, messageID)
	if !ok {
		c.Reply(ctx, cc.msg, cc.chat, "ℹ️ "+i18n.Get("No moderation decision recorded for that message.", lang), "")
		return nil
	}
	c.Reply(ctx, cc.msg, cc.chat, d.Summary(), "")
	return nil
}
