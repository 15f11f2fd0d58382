package db

import "context"

type Client interface {
	Close() error

	EnsureGroupSettings(ctx context.Context, chatID int64) (*GroupSettings, error)
	GetGroupSettings(ctx context.Context, chatID int64) (*GroupSettings, error)
	SetGroupSettings(ctx context.Context, settings *GroupSettings) error

	IncrementInfraction(ctx context.Context, chatID, userID int64) (int, error)
	GetInfraction(ctx context.Context, chatID, userID int64) (int, error)
	ResetInfraction(ctx context.Context, chatID, userID int64) error

	PutFilter(ctx context.Context, chatID int64, key, reply string) error
	RemoveFilter(ctx context.Context, chatID int64, key string) (bool, error)
	ListFilters(ctx context.Context, chatID int64) ([]*FilterEntry, error)
}
