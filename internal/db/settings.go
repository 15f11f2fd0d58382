package db

import (
	"errors"
	"strings"
)

var ErrNotFound = errors.New("not found")

func DefaultGroupSettings(chatID int64) *GroupSettings {
	return &GroupSettings{
		ChatID:   chatID,
		Antilink: false,
		Antispam: false,
	}
}

// NormalizeFilterKey is applied to filter keys both on write and on lookup.
func NormalizeFilterKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func (s *GroupSettings) Clone() *GroupSettings {
	if s == nil {
		return nil
	}
	c := *s
	c.WelcomeTemplate = cloneString(s.WelcomeTemplate)
	c.GoodbyeTemplate = cloneString(s.GoodbyeTemplate)
	c.RulesText = cloneString(s.RulesText)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
