package moderation

import (
	"strconv"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/policy/permissions"
)

const (
	ChatTypeGroup      = "group"
	ChatTypeSupergroup = "supergroup"
)

// MessageEvent is one inbound text message as seen by the engine.
type MessageEvent struct {
	ChatID    int64
	ChatType  string
	ChatTitle string
	MessageID int
	ThreadID  int

	UserID   int64
	UserName string
	Username string

	Text    string
	ReplyTo int

	SenderChatID    int64
	SenderIsChannel bool
}

func (e MessageEvent) IsGroup() bool {
	return e.ChatType == ChatTypeGroup || e.ChatType == ChatTypeSupergroup
}

func (e MessageEvent) Subject() permissions.Subject {
	return permissions.Subject{
		ChatID:       e.ChatID,
		UserID:       e.UserID,
		SenderChatID: e.SenderChatID,
	}
}

// senderKey is the identity used for rate tracking: a chat posting on its own
// behalf is tracked separately from the relay user it arrives through.
func (e MessageEvent) senderKey() int64 {
	if e.SenderChatID != 0 {
		return e.SenderChatID
	}
	return e.UserID
}

// User returns template fields for the sender, nil when the sender is unknown.
func (e MessageEvent) User() *UserFields {
	if e.UserID == 0 && e.UserName == "" {
		return nil
	}
	return NewUserFields(e.UserID, e.UserName)
}

// MembershipEvent is a member status transition within a chat.
type MembershipEvent struct {
	ChatID    int64
	ChatTitle string
	UserID    int64
	UserName  string
	OldStatus permissions.MemberStatus
	NewStatus permissions.MemberStatus
}

func (e MembershipEvent) Joined() bool {
	return e.OldStatus.IsGone() && e.NewStatus.IsPresent()
}

func (e MembershipEvent) Left() bool {
	return e.OldStatus.IsPresent() && e.NewStatus.IsGone()
}

func (e MembershipEvent) User() *UserFields {
	if e.UserID == 0 && e.UserName == "" {
		return nil
	}
	return NewUserFields(e.UserID, e.UserName)
}

func (e MembershipEvent) Chat() *ChatFields {
	if e.ChatTitle == "" {
		return nil
	}
	return &ChatFields{Title: e.ChatTitle}
}

func NewUserFields(userID int64, name string) *UserFields {
	return &UserFields{
		Name:    name,
		Mention: MentionHTML(userID, name),
		ID:      strconv.FormatInt(userID, 10),
	}
}
