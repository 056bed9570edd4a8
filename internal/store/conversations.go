package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

// Conversation loads one conversation by chat id.
func (db *DB) Conversation(ctx context.Context, chatID string) (schema.Conversation, error) {
	var c schema.Conversation
	var isGroup int
	err := db.QueryRowContext(ctx,
		`SELECT chat_id, name, is_group, chat_settings_id, source FROM conversations WHERE chat_id = ?`, chatID,
	).Scan(&c.ChatID, &c.Name, &isGroup, &c.ChatSettingsID, &c.Source)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Conversation{}, fmt.Errorf("conversation %s: %w", chatID, schema.ErrNotFound)
	}
	if err != nil {
		return schema.Conversation{}, fmt.Errorf("conversation %s: %w", chatID, err)
	}
	c.IsGroup = isGroup != 0
	return c, nil
}

// EnsureConversation returns the stored conversation for c.ChatID, creating
// it from c when it does not exist yet. created reports whether it was new.
func (db *DB) EnsureConversation(ctx context.Context, c schema.Conversation) (conv schema.Conversation, created bool, err error) {
	if c.Source == "" {
		c.Source = schema.SourceWhatsApp
	}
	isGroup := 0
	if c.IsGroup {
		isGroup = 1
	}
	res, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO conversations (chat_id, name, is_group, chat_settings_id, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ChatID, c.Name, isGroup, c.ChatSettingsID, string(c.Source), time.Now().UnixMilli())
	if err != nil {
		return schema.Conversation{}, false, fmt.Errorf("ensure conversation %s: %w", c.ChatID, err)
	}
	n, _ := res.RowsAffected()

	conv, err = db.Conversation(ctx, c.ChatID)
	if err != nil {
		return schema.Conversation{}, false, err
	}
	return conv, n > 0, nil
}

// UpsertConversation inserts or replaces a conversation. Used by the seed
// loader to bind chats to settings.
func (db *DB) UpsertConversation(ctx context.Context, c schema.Conversation) error {
	if c.Source == "" {
		c.Source = schema.SourceWhatsApp
	}
	isGroup := 0
	if c.IsGroup {
		isGroup = 1
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO conversations (chat_id, name, is_group, chat_settings_id, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(chat_id) DO UPDATE SET
		   name = excluded.name,
		   is_group = excluded.is_group,
		   chat_settings_id = excluded.chat_settings_id,
		   source = excluded.source`,
		c.ChatID, c.Name, isGroup, c.ChatSettingsID, string(c.Source), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert conversation %s: %w", c.ChatID, err)
	}
	return nil
}
