package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/audit"
	pderrors "github.com/Dillesh56/PrincessDainaBot-1/internal/errors"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/i18n"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/moderation"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/observability"
)

func (c *Commands) ban(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	target, err := cc.target()
	if err != nil {
		c.usage(ctx, cc, "⚠️ "+i18n.Get("Reply to a user (or pass numeric user_id) to ban.", lang))
		return err
	}
	err = c.GetPlatform().BanMember(ctx, cc.chat.ID, target)
	c.record(ctx, cc, target, audit.ActionBan, err)
	if err != nil {
		c.failed(ctx, cc, i18n.Get("Failed to ban: %s", lang), err)
		return err
	}
	c.Reply(ctx, cc.msg, cc.chat, "🔨 "+i18n.Get("User banned successfully.", lang), "")
	return nil
}

func (c *Commands) unban(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	target, err := cc.target()
	if err != nil {
		c.usage(ctx, cc, "⚠️ "+i18n.Get("Reply to a user (or pass numeric user_id) to unban.", lang))
		return err
	}
	err = c.GetPlatform().UnbanMember(ctx, cc.chat.ID, target)
	c.record(ctx, cc, target, audit.ActionUnban, err)
	if err != nil {
		c.failed(ctx, cc, i18n.Get("Failed to unban: %s", lang), err)
		return err
	}
	c.Reply(ctx, cc.msg, cc.chat, "✅ "+i18n.Get("User unbanned successfully.", lang), "")
	return nil
}

// kick removes the target without leaving a ban behind.
func (c *Commands) kick(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	target, err := cc.target()
	if err != nil {
		c.usage(ctx, cc, "⚠️ "+i18n.Get("Reply to a user (or pass numeric user_id) to kick.", lang))
		return err
	}
	err = c.GetPlatform().BanMember(ctx, cc.chat.ID, target)
	if err == nil {
		err = c.GetPlatform().UnbanMember(ctx, cc.chat.ID, target)
	}
	c.record(ctx, cc, target, audit.ActionKick, err)
	if err != nil {
		c.failed(ctx, cc, i18n.Get("Failed to kick: %s", lang), err)
		return err
	}
	c.Reply(ctx, cc.msg, cc.chat, "🧹 "+i18n.Get("User removed from the group.", lang), "")
	return nil
}

func (c *Commands) mute(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	target, err := cc.target()
	if err != nil {
		c.usage(ctx, cc, "⚠️ "+i18n.Get("Reply to a user (or pass numeric user_id) to mute.", lang))
		return err
	}
	until := cc.muteUntil(time.Now())
	err = c.GetPlatform().RestrictMember(ctx, cc.chat.ID, target, moderation.MutedPermissions(), until)
	c.record(ctx, cc, target, audit.ActionMute, err)
	if err != nil {
		c.failed(ctx, cc, i18n.Get("Failed to mute: %s", lang), err)
		return err
	}
	c.Reply(ctx, cc.msg, cc.chat, "🔇 "+i18n.Get("User muted.", lang), "")
	return nil
}

func (c *Commands) unmute(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	target, err := cc.target()
	if err != nil {
		c.usage(ctx, cc, "⚠️ "+i18n.Get("Reply to a user (or pass numeric user_id) to unmute.", lang))
		return err
	}
	err = c.GetPlatform().RestrictMember(ctx, cc.chat.ID, target, moderation.MemberPermissions(), nil)
	c.record(ctx, cc, target, audit.ActionUnmute, err)
	if err != nil {
		c.failed(ctx, cc, i18n.Get("Failed to unmute: %s", lang), err)
		return err
	}
	c.Reply(ctx, cc.msg, cc.chat, "🔊 "+i18n.Get("User unmuted.", lang), "")
	return nil
}

func (c *Commands) warn(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	target, err := cc.target()
	if err != nil {
		c.usage(ctx, cc, "⚠️ "+i18n.Get("Reply to a user (or pass numeric user_id) to warn.", lang))
		return err
	}
	out, err := c.moderator.Warn(ctx, cc.chat.ID, target, cc.actorID())
	if err != nil {
		c.Reply(ctx, cc.msg, cc.chat, "❌ "+i18n.Get("Could not save the warning, try again later.", lang), "")
		return err
	}

	var text string
	switch {
	case out.Count == out.Limit && out.MuteErr != nil:
		text = "⚠️ " + fmt.Sprintf(i18n.Get("Warning issued: %d/%d", lang), out.Count, out.Limit) +
			"\n❌ " + fmt.Sprintf(i18n.Get("Auto-mute failed: %s", lang), pderrors.Reason(out.MuteErr))
		c.Reply(ctx, cc.msg, cc.chat, text, "")
		return nil
	case out.Muted:
		text = "⚠️ " + fmt.Sprintf(i18n.Get("Warning issued: *%d/%d*", lang), out.Count, out.Limit) +
			"\n🔇 " + fmt.Sprintf(i18n.Get("Reached %d warnings, user muted until %s.", lang), out.Limit, out.MutedUntil.UTC().Format("2006-01-02 15:04 MST"))
	default:
		text = "⚠️ " + fmt.Sprintf(i18n.Get("Warning issued.\nCurrent warnings: *%d/%d*", lang), out.Count, out.Limit)
	}
	c.Reply(ctx, cc.msg, cc.chat, text, moderation.ParseModeMarkdown)
	return nil
}

// warns shows the target's count, or the sender's own when no target is given.
func (c *Commands) warns(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	target, err := cc.target()
	if err != nil {
		target = cc.actorID()
	}
	count, err := c.ledger.Get(ctx, cc.chat.ID, target)
	if err != nil {
		c.Reply(ctx, cc.msg, cc.chat, "❌ "+i18n.Get("Warnings are unavailable right now.", lang), "")
		return err
	}
	text := "⚠️ " + fmt.Sprintf(i18n.Get("Warnings: *%d/%d*", lang), count, c.moderator.WarnLimit())
	c.Reply(ctx, cc.msg, cc.chat, text, moderation.ParseModeMarkdown)
	return nil
}

func (c *Commands) resetWarns(ctx context.Context, cc *commandContext) error {
	lang := c.Language()
	target, err := cc.target()
	if err != nil {
		c.usage(ctx, cc, "⚠️ "+i18n.Get("Reply to a user (or pass numeric user_id) to reset warnings.", lang))
		return err
	}
	err = c.ledger.Reset(ctx, cc.chat.ID, target)
	c.record(ctx, cc, target, audit.ActionReset, err)
	if err != nil {
		c.Reply(ctx, cc.msg, cc.chat, "❌ "+i18n.Get("Could not reset warnings, try again later.", lang), "")
		return err
	}
	c.Reply(ctx, cc.msg, cc.chat, "✅ "+i18n.Get("Warnings reset.", lang), "")
	return nil
}

func (c *Commands) usage(ctx context.Context, cc *commandContext, text string) {
	c.Reply(ctx, cc.msg, cc.chat, text, "")
}

// failed replies with a translated "Failed to X: %s" format filled with the platform reason.
func (c *Commands) failed(ctx context.Context, cc *commandContext, format string, err error) {
	text := "❌ " + fmt.Sprintf(format, pderrors.Reason(err))
	if pderrors.IsPrivilegeError(err) {
		text += "\n" + i18n.Get("The bot needs admin rights for this.", c.Language())
	}
	c.Reply(ctx, cc.msg, cc.chat, text, "")
}

func (c *Commands) record(ctx context.Context, cc *commandContext, target int64, action string, err error) {
	observability.RecordAction(action, err)
	if c.auditor == nil {
		return
	}
	c.auditor.Record(ctx, audit.Entry{
		ChatID:    cc.chat.ID,
		UserID:    target,
		ActorID:   cc.actorID(),
		MessageID: cc.msg.MessageID,
		Action:    action,
		Reason:    "command",
		Err:       err,
	})
}

func (cc *commandContext) actorID() int64 {
	if cc.user != nil {
		return cc.user.ID
	}
	if cc.msg.SenderChat != nil {
		return cc.msg.SenderChat.ID
	}
	return 0
}
