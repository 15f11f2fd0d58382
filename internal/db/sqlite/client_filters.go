package sqlite

import (
	"context"
	"fmt"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/db"
)

func (c *sqliteClient) PutFilter(ctx context.Context, chatID int64, key, reply string) error {
	key = db.NormalizeFilterKey(key)
	if key == "" {
		return fmt.Errorf("empty filter key")
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	query := `
		INSERT INTO filters (chat_id, key, reply, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(chat_id, key) DO UPDATE SET
		reply = excluded.reply,
		updated_at = excluded.updated_at
	`
	if _, err := c.db.ExecContext(ctx, query, chatID, key, reply); err != nil {
		return fmt.Errorf("failed to put filter %q in chat %d: %w", key, chatID, err)
	}
	return nil
}

func (c *sqliteClient) RemoveFilter(ctx context.Context, chatID int64, key string) (bool, error) {
	key = db.NormalizeFilterKey(key)
	c.mutex.Lock()
	defer c.mutex.Unlock()

	res, err := c.db.ExecContext(ctx, `DELETE FROM filters WHERE chat_id = ? AND key = ?`, chatID, key)
	if err != nil {
		return false, fmt.Errorf("failed to remove filter %q in chat %d: %w", key, chatID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected > 0, nil
}

func (c *sqliteClient) ListFilters(ctx context.Context, chatID int64) ([]*db.FilterEntry, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var entries []*db.FilterEntry
	err := c.db.SelectContext(ctx, &entries, `SELECT chat_id, key, reply FROM filters WHERE chat_id = ? ORDER BY key ASC`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list filters for chat %d: %w", chatID, err)
	}
	return entries, nil
}

var _ db.Client = (*sqliteClient)(nil)
