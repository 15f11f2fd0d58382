package permissions

import (
	"context"
	"strconv"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/hashicorp/golang-lru/v2/expirable"
	log "github.com/sirupsen/logrus"
)

type MemberStatus string

const (
	StatusOwner         MemberStatus = "creator"
	StatusAdministrator MemberStatus = "administrator"
	StatusMember        MemberStatus = "member"
	StatusRestricted    MemberStatus = "restricted"
	StatusLeft          MemberStatus = "left"
	StatusKicked        MemberStatus = "kicked"
)

func StatusOf(member *api.ChatMember) MemberStatus {
	if member == nil {
		return StatusLeft
	}
	switch {
	case member.IsCreator():
		return StatusOwner
	case member.IsAdministrator():
		return StatusAdministrator
	case member.WasKicked():
		return StatusKicked
	case member.HasLeft():
		return StatusLeft
	case member.Status == string(StatusRestricted):
		return StatusRestricted
	default:
		return StatusMember
	}
}

func (s MemberStatus) IsAdmin() bool {
	return s == StatusOwner || s == StatusAdministrator
}

// IsPresent reports a regular participant, admins excluded.
func (s MemberStatus) IsPresent() bool {
	return s == StatusMember || s == StatusRestricted
}

func (s MemberStatus) IsGone() bool {
	return s == StatusLeft || s == StatusKicked
}

type StatusGetter interface {
	GetMemberStatus(ctx context.Context, chatID, userID int64) (MemberStatus, error)
}

// Subject identifies who sent a message: a user, or a chat posting on its own behalf.
type Subject struct {
	ChatID       int64
	UserID       int64
	SenderChatID int64
}

// Resolver decides admin bypass for a message sender.
type Resolver struct {
	getter  StatusGetter
	ownerID int64
	cache   *expirable.LRU[string, MemberStatus]
	logger  *log.Entry
}

func NewResolver(getter StatusGetter, ownerID int64, cacheSize int, ttl time.Duration) *Resolver {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	return &Resolver{
		getter:  getter,
		ownerID: ownerID,
		cache:   expirable.NewLRU[string, MemberStatus](cacheSize, nil, ttl),
		logger:  log.WithField("object", "PermissionResolver"),
	}
}

// IsAdmin checks, in order: anonymous admin posting as the group, a linked
// channel that is itself an admin, the configured owner, and finally the
// sender's member status.
func (r *Resolver) IsAdmin(ctx context.Context, s Subject) (bool, error) {
	if s.SenderChatID != 0 && s.SenderChatID == s.ChatID {
		return true, nil
	}
	if s.SenderChatID != 0 {
		status, err := r.status(ctx, s.ChatID, s.SenderChatID)
		if err != nil {
			r.logger.WithError(err).WithFields(log.Fields{
				"chat_id":        s.ChatID,
				"sender_chat_id": s.SenderChatID,
			}).Debug("cant resolve sender chat status")
		} else if status.IsAdmin() {
			return true, nil
		}
	}
	if r.ownerID != 0 && s.UserID == r.ownerID {
		return true, nil
	}
	if s.UserID == 0 {
		return false, nil
	}
	status, err := r.status(ctx, s.ChatID, s.UserID)
	if err != nil {
		return false, err
	}
	return status.IsAdmin(), nil
}

// Invalidate forgets a cached status, e.g. after a promotion or a restriction.
func (r *Resolver) Invalidate(chatID, userID int64) {
	r.cache.Remove(cacheKey(chatID, userID))
}

func (r *Resolver) status(ctx context.Context, chatID, userID int64) (MemberStatus, error) {
	k := cacheKey(chatID, userID)
	if status, ok := r.cache.Get(k); ok {
		return status, nil
	}
	status, err := r.getter.GetMemberStatus(ctx, chatID, userID)
	if err != nil {
		return "", err
	}
	r.cache.Add(k, status)
	return status, nil
}

func cacheKey(chatID, userID int64) string {
	return strconv.FormatInt(chatID, 10) + ":" + strconv.FormatInt(userID, 10)
}
