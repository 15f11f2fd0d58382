package bot

import (
	"testing"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/policy/permissions"
)

func TestNewMessageEvent(t *testing.T) {
	t.Parallel()

	chat := &api.Chat{ID: -100, Type: "supergroup", Title: "Room", IsForum: true}
	msg := &api.Message{
		MessageID:       5,
		MessageThreadID: 3,
		Text:            "hello",
		From:            &api.User{ID: 42, FirstName: "Al", UserName: "al"},
		ReplyToMessage:  &api.Message{MessageID: 4},
	}
	ev := NewMessageEvent(msg, chat)
	if ev.ChatID != -100 || ev.ChatType != "supergroup" || ev.ThreadID != 3 {
		t.Fatalf("unexpected chat fields: %+v", ev)
	}
	if ev.UserID != 42 || ev.UserName != "Al" || ev.Username != "al" || ev.ReplyTo != 4 {
		t.Fatalf("unexpected user fields: %+v", ev)
	}
	if !ev.IsGroup() {
		t.Fatalf("supergroup should be a group")
	}

	anon := &api.Message{
		MessageID:  6,
		Text:       "hi",
		From:       &api.User{ID: 1087968824, FirstName: "Group"},
		SenderChat: &api.Chat{ID: -100, Type: "supergroup", Title: "Room"},
	}
	ev = NewMessageEvent(anon, chat)
	if ev.SenderChatID != -100 || ev.SenderIsChannel {
		t.Fatalf("unexpected sender chat fields: %+v", ev)
	}
}

func TestNewMembershipEvent(t *testing.T) {
	t.Parallel()

	upd := &api.ChatMemberUpdated{
		Chat:          api.Chat{ID: -100, Title: "Room"},
		OldChatMember: api.ChatMember{Status: "left"},
		NewChatMember: api.ChatMember{Status: "member", User: &api.User{ID: 42, FirstName: "Al"}},
	}
	ev := NewMembershipEvent(upd)
	if ev.OldStatus != permissions.StatusLeft || ev.NewStatus != permissions.StatusMember {
		t.Fatalf("unexpected statuses: %+v", ev)
	}
	if !ev.Joined() || ev.Left() {
		t.Fatalf("left -> member should be a join")
	}
	if ev.UserID != 42 || ev.UserName != "Al" || ev.ChatTitle != "Room" {
		t.Fatalf("unexpected fields: %+v", ev)
	}
}
