package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func (c *sqliteClient) IncrementInfraction(ctx context.Context, chatID, userID int64) (int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	query := `
		INSERT INTO infractions (chat_id, user_id, count, updated_at)
		VALUES (?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(chat_id, user_id) DO UPDATE SET
		count = infractions.count + 1,
		updated_at = excluded.updated_at
		RETURNING count
	`
	if err := tx.GetContext(ctx, &count, query, chatID, userID); err != nil {
		return 0, fmt.Errorf("failed to increment infraction for user %d in chat %d: %w", userID, chatID, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit infraction: %w", err)
	}
	return count, nil
}

func (c *sqliteClient) GetInfraction(ctx context.Context, chatID, userID int64) (int, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var count int
	err := c.db.GetContext(ctx, &count, `SELECT count FROM infractions WHERE chat_id = ? AND user_id = ?`, chatID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get infraction for user %d in chat %d: %w", userID, chatID, err)
	}
	return count, nil
}

func (c *sqliteClient) ResetInfraction(ctx context.Context, chatID, userID int64) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, err := c.db.ExecContext(ctx, `DELETE FROM infractions WHERE chat_id = ? AND user_id = ?`, chatID, userID); err != nil {
		return fmt.Errorf("failed to reset infraction for user %d in chat %d: %w", userID, chatID, err)
	}
	return nil
}
