package chat

import (
	"context"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/bot"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/handlers/base"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/moderation"
)

type Greeter interface {
	Greet(ctx context.Context, ev moderation.MembershipEvent) (bool, error)
}

type StatusInvalidator interface {
	Invalidate(chatID, userID int64)
}

// Membership greets joining members and says goodbye to leaving ones.
type Membership struct {
	*base.BaseHandler
	greeter Greeter
	admins  StatusInvalidator
}

func NewMembership(platform base.Platform, greeter Greeter, admins StatusInvalidator, language string) *Membership {
	return &Membership{
		BaseHandler: base.NewBaseHandler(platform, "membership", language),
		greeter:     greeter,
		admins:      admins,
	}
}

func (m *Membership) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if u == nil || u.ChatMember == nil {
		return true, nil
	}
	ev := bot.NewMembershipEvent(u.ChatMember)
	if m.admins != nil && ev.UserID != 0 {
		m.admins.Invalidate(ev.ChatID, ev.UserID)
	}
	if _, err := m.greeter.Greet(ctx, ev); err != nil {
		m.GetLogger().WithError(err).WithField("chat_id", ev.ChatID).Debug("greeting not delivered")
	}
	return false, nil
}
