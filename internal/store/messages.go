package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

const messageColumns = `id, chat_id, sender, sender_name, type, content, role,
	tool_call_id, provider_object_id, function_name, canonical_tool_name,
	function_arguments, function_result, created_at`

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertMessage stores m, assigning an id and timestamp when unset, and
// returns the stored row.
func (db *DB) InsertMessage(ctx context.Context, m schema.Message) (schema.Message, error) {
	m = withDefaults(m)
	if err := insertMessage(ctx, db.DB, m); err != nil {
		return schema.Message{}, err
	}
	return m, nil
}

// RecentMessages implements schema.HistoryReader: up to limit messages of
// chatID, most recent first.
func (db *DB) RecentMessages(ctx context.Context, chatID string, limit int) ([]schema.Message, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE chat_id = ? ORDER BY seq DESC LIMIT ?`,
		chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages for %s: %w", chatID, err)
	}
	defer rows.Close()

	var out []schema.Message
	for rows.Next() {
		var m schema.Message
		var created int64
		err := rows.Scan(&m.ID, &m.ChatID, &m.Sender, &m.SenderName, &m.Type, &m.Content, &m.Role,
			&m.ToolCallID, &m.ProviderObjectID, &m.FunctionName, &m.CanonicalToolName,
			&m.FunctionArguments, &m.FunctionResult, &created)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt = time.UnixMilli(created)
		out = append(out, m)
	}
	return out, rows.Err()
}

// AppendEntry implements schema.TranscriptWriter. Each entry is committed in
// its own transaction.
func (db *DB) AppendEntry(ctx context.Context, chatID string, e schema.Entry) error {
	m := schema.Message{ChatID: chatID}
	switch v := e.(type) {
	case schema.ToolCall:
		m.Type = schema.MessageToolCall
		m.Role = "assistant"
		m.ToolCallID = v.ProviderCallID
		m.ProviderObjectID = v.ProviderObjectID
		m.FunctionName = v.ProviderFunctionName
		m.CanonicalToolName = v.CanonicalToolName
		m.FunctionArguments = v.ArgumentsJSON
	case schema.ToolResult:
		m.Type = schema.MessageToolResult
		m.Role = "tool"
		m.ToolCallID = v.ProviderCallID
		m.FunctionResult = v.ResultText
	case schema.AssistantText:
		m.Type = schema.MessageText
		m.Role = "assistant"
		m.Content = v.Text
	case schema.UserText:
		m.Type = schema.MessageText
		m.Role = "user"
		m.Content = v.Text
	default:
		return fmt.Errorf("append entry: unsupported entry %T", e)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := insertMessage(ctx, tx, withDefaults(m)); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit entry: %w", err)
	}
	return nil
}

func withDefaults(m schema.Message) schema.Message {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Type == "" {
		m.Type = schema.MessageText
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	return m
}

func insertMessage(ctx context.Context, ex execer, m schema.Message) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO messages (`+messageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ChatID, m.Sender, m.SenderName, string(m.Type), m.Content, m.Role,
		m.ToolCallID, m.ProviderObjectID, m.FunctionName, m.CanonicalToolName,
		m.FunctionArguments, m.FunctionResult, m.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert message %s: %w", m.ID, err)
	}
	return nil
}
