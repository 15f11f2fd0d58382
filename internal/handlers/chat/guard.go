package chat

import (
	"context"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/bot"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/handlers/base"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/moderation"
)

type MessageProcessor interface {
	Process(ctx context.Context, ev moderation.MessageEvent) *moderation.Decision
}

// Guard feeds plain text messages, new or edited, to the moderation engine.
type Guard struct {
	*base.BaseHandler
	engine MessageProcessor
}

func NewGuard(platform base.Platform, engine MessageProcessor, language string) *Guard {
	return &Guard{
		BaseHandler: base.NewBaseHandler(platform, "guard", language),
		engine:      engine,
	}
}

func (g *Guard) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if u == nil || chat == nil {
		return true, nil
	}
	msg := u.Message
	if msg == nil {
		msg = u.EditedMessage
	}
	if msg == nil {
		return true, nil
	}
	if msg.Text == "" || msg.IsCommand() {
		return true, nil
	}

	d := g.engine.Process(ctx, bot.NewMessageEvent(msg, chat))
	if d.Skipped {
		return true, nil
	}
	entry := g.GetLogger().WithFields(log.Fields{
		"chat_id":     chat.ID,
		"message_id":  msg.MessageID,
		"decision_id": d.ID,
		"stage":       d.Stage,
		"outcome":     d.Outcome(),
	})
	if failed := d.Failed(); len(failed) > 0 {
		entry.WithField("failed_actions", len(failed)).Warn("message handled with failed actions")
	} else {
		entry.Trace("message handled")
	}
	return !d.Deleted(), nil
}
