package schema

import (
	"context"
	"errors"
)

// ErrNotFound is returned by collaborators when a record does not exist.
var ErrNotFound = errors.New("not found")

// SettingsSource loads chat settings with their ordered tools.
type SettingsSource interface {
	ChatSettings(ctx context.Context, id string) (ChatSettings, error)
}

// HistoryReader returns up to limit messages of a chat, most recent first.
type HistoryReader interface {
	RecentMessages(ctx context.Context, chatID string, limit int) ([]Message, error)
}

// TranscriptWriter durably appends one tool-call or tool-result entry.
// Each call commits on its own.
type TranscriptWriter interface {
	AppendEntry(ctx context.Context, chatID string, e Entry) error
}
