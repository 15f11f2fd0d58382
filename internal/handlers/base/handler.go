package base

import (
	"context"
	"errors"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/moderation"
)

// Platform is the Telegram surface available to chat handlers.
type Platform interface {
	moderation.ActionSink
	SetChatPermissions(ctx context.Context, chatID int64, perms moderation.Permissions) error
	PinMessage(ctx context.Context, chatID int64, messageID int) error
	UnpinMessage(ctx context.Context, chatID int64) error
	ListAdmins(ctx context.Context, chatID int64) ([]api.ChatMember, error)
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	platform Platform
	language string
	logger   *log.Entry
}

func NewBaseHandler(platform Platform, handlerName, language string) *BaseHandler {
	return &BaseHandler{
		platform: platform,
		language: language,
		logger:   log.WithField("handler", handlerName),
	}
}

func (h *BaseHandler) GetPlatform() Platform {
	return h.platform
}

func (h *BaseHandler) GetLogger() *log.Entry {
	return h.logger
}

func (h *BaseHandler) Language() string {
	return h.language
}

// ValidateUpdate performs common update validation
func (h *BaseHandler) ValidateUpdate(u *api.Update, chat *api.Chat, user *api.User) error {
	if u == nil {
		return ErrNilUpdate
	}
	if chat == nil || user == nil {
		return ErrNilChatOrUser
	}
	return nil
}

// Reply answers msg in its chat and topic. Delivery failures are logged only.
func (h *BaseHandler) Reply(ctx context.Context, msg *api.Message, chat *api.Chat, text, parseMode string) {
	opts := moderation.SendOptions{
		ReplyTo:   msg.MessageID,
		ParseMode: parseMode,
	}
	if chat.IsForum {
		opts.ThreadID = msg.MessageThreadID
	}
	if err := h.platform.SendMessage(ctx, chat.ID, text, opts); err != nil {
		h.logger.WithError(err).WithField("chat_id", chat.ID).Warn("cant send reply")
	}
}

var (
	ErrNilUpdate     = errors.New("nil update")
	ErrNilChatOrUser = errors.New("nil chat or user")
)
