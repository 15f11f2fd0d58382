package bot

import (
	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/moderation"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/policy/permissions"
)

// NewMessageEvent converts msg, posted in chat, into the engine's event.
func NewMessageEvent(msg *api.Message, chat *api.Chat) moderation.MessageEvent {
	ev := moderation.MessageEvent{
		MessageID: msg.MessageID,
		Text:      msg.Text,
	}
	if chat != nil {
		ev.ChatID = chat.ID
		ev.ChatType = chat.Type
		ev.ChatTitle = chat.Title
		if chat.IsForum {
			ev.ThreadID = msg.MessageThreadID
		}
	}
	if msg.From != nil {
		ev.UserID = msg.From.ID
		ev.UserName = GetFullName(msg.From)
		ev.Username = msg.From.UserName
	}
	if msg.SenderChat != nil {
		ev.SenderChatID = msg.SenderChat.ID
		ev.SenderIsChannel = msg.SenderChat.IsChannel()
		if ev.UserName == "" || msg.From == nil {
			ev.UserName = msg.SenderChat.Title
		}
	}
	if msg.ReplyToMessage != nil {
		ev.ReplyTo = msg.ReplyToMessage.MessageID
	}
	return ev
}

func NewMembershipEvent(upd *api.ChatMemberUpdated) moderation.MembershipEvent {
	ev := moderation.MembershipEvent{
		ChatID:    upd.Chat.ID,
		ChatTitle: upd.Chat.Title,
		OldStatus: permissions.StatusOf(&upd.OldChatMember),
		NewStatus: permissions.StatusOf(&upd.NewChatMember),
	}
	if user := upd.NewChatMember.User; user != nil {
		ev.UserID = user.ID
		ev.UserName = GetFullName(user)
	}
	return ev
}
