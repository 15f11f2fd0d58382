package moderation

import (
	"context"
	"time"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/policy/permissions"
)

const (
	ParseModeHTML     = "HTML"
	ParseModeMarkdown = "Markdown"
)

type SendOptions struct {
	ReplyTo             int
	ThreadID            int
	ParseMode           string
	DisableNotification bool
	Buttons             []Button
}

// Button is an inline keyboard button that answers with callback data.
type Button struct {
	Text         string
	CallbackData string
}

// Permissions is the set of member rights applied by a restriction.
type Permissions struct {
	CanSendMessages       bool
	CanSendPolls          bool
	CanSendOtherMessages  bool
	CanAddWebPagePreviews bool
	CanChangeInfo         bool
	CanInviteUsers        bool
	CanPinMessages        bool
}

func MutedPermissions() Permissions {
	return Permissions{}
}

func MemberPermissions() Permissions {
	return Permissions{
		CanSendMessages:       true,
		CanSendPolls:          true,
		CanSendOtherMessages:  true,
		CanAddWebPagePreviews: true,
		CanInviteUsers:        true,
	}
}

// ActionSink is the messaging platform as seen by moderation.
type ActionSink interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	SendMessage(ctx context.Context, chatID int64, text string, opts SendOptions) error
	RestrictMember(ctx context.Context, chatID, userID int64, perms Permissions, until *time.Time) error
	BanMember(ctx context.Context, chatID, userID int64) error
	UnbanMember(ctx context.Context, chatID, userID int64) error
	GetMemberStatus(ctx context.Context, chatID, userID int64) (permissions.MemberStatus, error)
}
