package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iamwavecut/tool"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/db"
)

const selectGroupSettings = `
	SELECT chat_id, antilink, antispam, welcome_template, goodbye_template, rules_text
	FROM group_settings WHERE chat_id = ?
`

func (c *sqliteClient) GetGroupSettings(ctx context.Context, chatID int64) (*db.GroupSettings, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	settings := &db.GroupSettings{}
	if err := c.db.GetContext(ctx, settings, selectGroupSettings, chatID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settings for chat %d: %w", chatID, err)
	}
	return settings, nil
}

// EnsureGroupSettings materializes the default row on first access and returns the stored one.
func (c *sqliteClient) EnsureGroupSettings(ctx context.Context, chatID int64) (*db.GroupSettings, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, err := c.db.ExecContext(ctx, `INSERT OR IGNORE INTO group_settings (chat_id) VALUES (?)`, chatID); err != nil {
		return nil, fmt.Errorf("failed to materialize settings for chat %d: %w", chatID, err)
	}
	settings := &db.GroupSettings{}
	if err := c.db.GetContext(ctx, settings, selectGroupSettings, chatID); err != nil {
		return nil, fmt.Errorf("failed to get settings for chat %d: %w", chatID, err)
	}
	return settings, nil
}

func (c *sqliteClient) SetGroupSettings(ctx context.Context, settings *db.GroupSettings) error {
	if settings == nil {
		return errors.New("nil settings")
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	query := `
		INSERT INTO group_settings (chat_id, antilink, antispam, welcome_template, goodbye_template, rules_text, updated_at)
		VALUES (:chat_id, :antilink, :antispam, :welcome_template, :goodbye_template, :rules_text, CURRENT_TIMESTAMP)
		ON CONFLICT(chat_id) DO UPDATE SET
		antilink = excluded.antilink,
		antispam = excluded.antispam,
		welcome_template = excluded.welcome_template,
		goodbye_template = excluded.goodbye_template,
		rules_text = excluded.rules_text,
		updated_at = excluded.updated_at
	`
	if err := tool.Err(c.db.NamedExecContext(ctx, query, settings)); err != nil {
		return fmt.Errorf("failed to set settings for chat %d: %w", settings.ChatID, err)
	}
	return nil
}
