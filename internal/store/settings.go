package store

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	log "github.com/sirupsen/logrus"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/db"
	pderrors "github.com/Dillesh56/PrincessDainaBot-1/internal/errors"
)

const lockStripes = 64

type settingsDB interface {
	EnsureGroupSettings(ctx context.Context, chatID int64) (*db.GroupSettings, error)
	SetGroupSettings(ctx context.Context, settings *db.GroupSettings) error
}

// SettingsStore is the read-through per-group configuration store.
type SettingsStore struct {
	db     settingsDB
	cache  *expirable.LRU[int64, *db.GroupSettings]
	locks  [lockStripes]sync.Mutex
	logger *log.Entry
}

func NewSettingsStore(client settingsDB, cacheSize int, ttl time.Duration) *SettingsStore {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	return &SettingsStore{
		db:     client,
		cache:  expirable.NewLRU[int64, *db.GroupSettings](cacheSize, nil, ttl),
		logger: log.WithField("object", "SettingsStore"),
	}
}

// Get returns the stored settings, materializing defaults on first access.
func (s *SettingsStore) Get(ctx context.Context, chatID int64) (*db.GroupSettings, error) {
	if cached, ok := s.cache.Get(chatID); ok {
		return cached.Clone(), nil
	}
	settings, err := s.db.EnsureGroupSettings(ctx, chatID)
	if err != nil {
		return nil, pderrors.Storage("get settings", err)
	}
	s.cache.Add(chatID, settings.Clone())
	return settings, nil
}

// Effective never fails: on storage errors the defaults apply.
func (s *SettingsStore) Effective(ctx context.Context, chatID int64) *db.GroupSettings {
	settings, err := s.Get(ctx, chatID)
	if err != nil {
		s.logger.WithError(err).WithField("chat_id", chatID).Warn("settings unavailable, using defaults")
		return db.DefaultGroupSettings(chatID)
	}
	return settings
}

func (s *SettingsStore) Antilink(ctx context.Context, chatID int64) bool {
	return s.Effective(ctx, chatID).Antilink
}

func (s *SettingsStore) Antispam(ctx context.Context, chatID int64) bool {
	return s.Effective(ctx, chatID).Antispam
}

func (s *SettingsStore) WelcomeTemplate(ctx context.Context, chatID int64) (string, bool) {
	return deref(s.Effective(ctx, chatID).WelcomeTemplate)
}

func (s *SettingsStore) GoodbyeTemplate(ctx context.Context, chatID int64) (string, bool) {
	return deref(s.Effective(ctx, chatID).GoodbyeTemplate)
}

func (s *SettingsStore) RulesText(ctx context.Context, chatID int64) (string, bool) {
	return deref(s.Effective(ctx, chatID).RulesText)
}

func (s *SettingsStore) SetAntilink(ctx context.Context, chatID int64, enabled bool) error {
	_, err := s.update(ctx, chatID, func(gs *db.GroupSettings) { gs.Antilink = enabled })
	return err
}

func (s *SettingsStore) SetAntispam(ctx context.Context, chatID int64, enabled bool) error {
	_, err := s.update(ctx, chatID, func(gs *db.GroupSettings) { gs.Antispam = enabled })
	return err
}

// ToggleAntilink flips the setting and returns the new value.
func (s *SettingsStore) ToggleAntilink(ctx context.Context, chatID int64) (bool, error) {
	gs, err := s.update(ctx, chatID, func(gs *db.GroupSettings) { gs.Antilink = !gs.Antilink })
	if err != nil {
		return false, err
	}
	return gs.Antilink, nil
}

func (s *SettingsStore) ToggleAntispam(ctx context.Context, chatID int64) (bool, error) {
	gs, err := s.update(ctx, chatID, func(gs *db.GroupSettings) { gs.Antispam = !gs.Antispam })
	if err != nil {
		return false, err
	}
	return gs.Antispam, nil
}

func (s *SettingsStore) SetWelcomeTemplate(ctx context.Context, chatID int64, template string) error {
	_, err := s.update(ctx, chatID, func(gs *db.GroupSettings) { gs.WelcomeTemplate = optional(template) })
	return err
}

func (s *SettingsStore) SetGoodbyeTemplate(ctx context.Context, chatID int64, template string) error {
	_, err := s.update(ctx, chatID, func(gs *db.GroupSettings) { gs.GoodbyeTemplate = optional(template) })
	return err
}

func (s *SettingsStore) SetRulesText(ctx context.Context, chatID int64, rules string) error {
	_, err := s.update(ctx, chatID, func(gs *db.GroupSettings) { gs.RulesText = optional(rules) })
	return err
}

func (s *SettingsStore) update(ctx context.Context, chatID int64, mutate func(*db.GroupSettings)) (*db.GroupSettings, error) {
	mu := s.lockFor(chatID)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.db.EnsureGroupSettings(ctx, chatID)
	if err != nil {
		return nil, pderrors.Storage("load settings", err)
	}
	next := current.Clone()
	mutate(next)
	if err := s.db.SetGroupSettings(ctx, next); err != nil {
		s.cache.Remove(chatID)
		return nil, pderrors.Storage("set settings", err)
	}
	s.cache.Add(chatID, next.Clone())
	s.logger.WithField("chat_id", chatID).Debug("settings updated")
	return next, nil
}

func (s *SettingsStore) lockFor(chatID int64) *sync.Mutex {
	return &s.locks[uint64(chatID)%lockStripes]
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) (string, bool) {
	if s == nil || *s == "" {
		return "", false
	}
	return *s, true
}
