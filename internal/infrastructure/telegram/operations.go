package telegram

import (
	"context"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	pderrors "github.com/Dillesh56/PrincessDainaBot-1/internal/errors"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/moderation"
	"github.com/Dillesh56/PrincessDainaBot-1/internal/policy/permissions"
)

// Client is the subset of *api.BotAPI used for moderation calls.
type Client interface {
	Request(c api.Chattable) (*api.APIResponse, error)
	Send(c api.Chattable) (api.Message, error)
	GetChatMember(config api.GetChatMemberConfig) (api.ChatMember, error)
	GetChatAdministrators(config api.ChatAdministratorsConfig) ([]api.ChatMember, error)
	MakeRequest(endpoint string, params api.Params) (*api.APIResponse, error)
}

// Operations performs paced, time-bounded Telegram calls.
type Operations struct {
	bot     Client
	limiter *rate.Limiter
	timeout time.Duration
	logger  *log.Entry
}

func NewOperations(bot Client, requestsPerSecond float64, timeout time.Duration) *Operations {
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Operations{
		bot:     bot,
		limiter: rate.NewLimiter(limit, burst),
		timeout: timeout,
		logger:  log.WithField("object", "TelegramOperations"),
	}
}

func (o *Operations) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return o.call(ctx, "delete message", func() error {
		_, err := o.bot.Request(api.NewDeleteMessage(chatID, messageID))
		return err
	})
}

func (o *Operations) SendMessage(ctx context.Context, chatID int64, text string, opts moderation.SendOptions) error {
	msg := api.NewMessage(chatID, text)
	msg.ParseMode = opts.ParseMode
	msg.DisableNotification = opts.DisableNotification
	msg.LinkPreviewOptions.IsDisabled = true
	if opts.ThreadID != 0 {
		msg.MessageThreadID = opts.ThreadID
	}
	if opts.ReplyTo != 0 {
		msg.ReplyParameters.MessageID = opts.ReplyTo
		msg.ReplyParameters.ChatID = chatID
		msg.ReplyParameters.AllowSendingWithoutReply = true
	}
	if len(opts.Buttons) > 0 {
		row := make([]api.InlineKeyboardButton, 0, len(opts.Buttons))
		for _, b := range opts.Buttons {
			row = append(row, api.NewInlineKeyboardButtonData(b.Text, b.CallbackData))
		}
		msg.ReplyMarkup = api.NewInlineKeyboardMarkup(row)
	}
	return o.call(ctx, "send message", func() error {
		_, err := o.bot.Send(msg)
		return err
	})
}

func (o *Operations) RestrictMember(ctx context.Context, chatID, userID int64, perms moderation.Permissions, until *time.Time) error {
	config := api.RestrictChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{ChatID: chatID},
			UserID:     userID,
		},
		Permissions: chatPermissions(perms),
	}
	if until != nil {
		config.UntilDate = until.Unix()
	}
	return o.call(ctx, "restrict member", func() error {
		_, err := o.bot.Request(config)
		return err
	})
}

func (o *Operations) BanMember(ctx context.Context, chatID, userID int64) error {
	config := api.BanChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{ChatID: chatID},
			UserID:     userID,
		},
	}
	return o.call(ctx, "ban member", func() error {
		_, err := o.bot.Request(config)
		return err
	})
}

func (o *Operations) UnbanMember(ctx context.Context, chatID, userID int64) error {
	config := api.UnbanChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{ChatID: chatID},
			UserID:     userID,
		},
	}
	return o.call(ctx, "unban member", func() error {
		_, err := o.bot.Request(config)
		return err
	})
}

func (o *Operations) GetMemberStatus(ctx context.Context, chatID, userID int64) (permissions.MemberStatus, error) {
	var member api.ChatMember
	err := o.call(ctx, "get chat member", func() error {
		var err error
		member, err = o.bot.GetChatMember(api.GetChatMemberConfig{
			ChatConfigWithUser: api.ChatConfigWithUser{
				ChatConfig: api.ChatConfig{ChatID: chatID},
				UserID:     userID,
			},
		})
		return err
	})
	if err != nil {
		return "", err
	}
	return permissions.StatusOf(&member), nil
}

// SetChatPermissions changes the default rights of every non-admin member.
func (o *Operations) SetChatPermissions(ctx context.Context, chatID int64, perms moderation.Permissions) error {
	config := api.SetChatPermissionsConfig{
		ChatConfig:  api.ChatConfig{ChatID: chatID},
		Permissions: chatPermissions(perms),
	}
	return o.call(ctx, "set chat permissions", func() error {
		_, err := o.bot.Request(config)
		return err
	})
}

func (o *Operations) PinMessage(ctx context.Context, chatID int64, messageID int) error {
	params := make(api.Params)
	params.AddNonZero64("chat_id", chatID)
	params.AddNonZero("message_id", messageID)
	params.AddBool("disable_notification", true)
	return o.call(ctx, "pin message", func() error {
		_, err := o.bot.MakeRequest("pinChatMessage", params)
		return err
	})
}

// UnpinMessage unpins the most recent pinned message.
func (o *Operations) UnpinMessage(ctx context.Context, chatID int64) error {
	params := make(api.Params)
	params.AddNonZero64("chat_id", chatID)
	return o.call(ctx, "unpin message", func() error {
		_, err := o.bot.MakeRequest("unpinChatMessage", params)
		return err
	})
}

func (o *Operations) ListAdmins(ctx context.Context, chatID int64) ([]api.ChatMember, error) {
	var admins []api.ChatMember
	err := o.call(ctx, "get chat administrators", func() error {
		var err error
		admins, err = o.bot.GetChatAdministrators(api.ChatAdministratorsConfig{
			ChatConfig: api.ChatConfig{ChatID: chatID},
		})
		return err
	})
	return admins, err
}

func (o *Operations) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return o.call(ctx, "answer callback", func() error {
		_, err := o.bot.Request(api.NewCallback(callbackID, text))
		return err
	})
}

// call waits for the pacing limiter, then runs fn bounded by the operation
// timeout. A call abandoned on timeout finishes in the background.
func (o *Operations) call(ctx context.Context, action string, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if err := o.limiter.Wait(ctx); err != nil {
		return pderrors.PlatformAction(action, err)
	}
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()
	select {
	case err := <-done:
		if err != nil {
			o.logger.WithError(err).WithField("action", action).Debug("telegram call failed")
		}
		return pderrors.PlatformAction(action, err)
	case <-ctx.Done():
		o.logger.WithField("action", action).Warn("telegram call timed out")
		return pderrors.PlatformAction(action, ctx.Err())
	}
}

func chatPermissions(p moderation.Permissions) *api.ChatPermissions {
	return &api.ChatPermissions{
		CanSendMessages:       p.CanSendMessages,
		CanSendPolls:          p.CanSendPolls,
		CanSendOtherMessages:  p.CanSendOtherMessages,
		CanAddWebPagePreviews: p.CanAddWebPagePreviews,
		CanChangeInfo:         p.CanChangeInfo,
		CanInviteUsers:        p.CanInviteUsers,
		CanPinMessages:        p.CanPinMessages,
	}
}

var _ moderation.ActionSink = (*Operations)(nil)
