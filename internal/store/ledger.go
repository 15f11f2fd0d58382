package store

import (
	"context"

	log "github.com/sirupsen/logrus"

	pderrors "github.com/Dillesh56/PrincessDainaBot-1/internal/errors"
)

type ledgerDB interface {
	IncrementInfraction(ctx context.Context, chatID, userID int64) (int, error)
	GetInfraction(ctx context.Context, chatID, userID int64) (int, error)
	ResetInfraction(ctx context.Context, chatID, userID int64) error
}

// Ledger keeps warn counters per (group, user).
type Ledger struct {
	db     ledgerDB
	logger *log.Entry
}

func NewLedger(client ledgerDB) *Ledger {
	return &Ledger{
		db:     client,
		logger: log.WithField("object", "Ledger"),
	}
}

func (l *Ledger) Increment(ctx context.Context, chatID, userID int64) (int, error) {
	count, err := l.db.IncrementInfraction(ctx, chatID, userID)
	if err != nil {
		return 0, pderrors.Storage("increment infraction", err)
	}
	l.logger.WithFields(log.Fields{
		"chat_id": chatID,
		"user_id": userID,
		"count":   count,
	}).Debug("infraction recorded")
	return count, nil
}

func (l *Ledger) Get(ctx context.Context, chatID, userID int64) (int, error) {
	count, err := l.db.GetInfraction(ctx, chatID, userID)
	if err != nil {
		return 0, pderrors.Storage("get infraction", err)
	}
	return count, nil
}

func (l *Ledger) Reset(ctx context.Context, chatID, userID int64) error {
	if err := l.db.ResetInfraction(ctx, chatID, userID); err != nil {
		return pderrors.Storage("reset infraction", err)
	}
	l.logger.WithFields(log.Fields{
		"chat_id": chatID,
		"user_id": userID,
	}).Debug("infractions reset")
	return nil
}
