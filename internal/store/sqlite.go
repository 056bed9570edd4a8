// Package store is the SQLite persistence adapter: chat settings with their
// tools and endpoints, conversations, and the message history the bridge
// replays and appends to.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps *sql.DB for oatsbridge storage.
type DB struct {
	*sql.DB
}

// Open opens the SQLite database at path and applies the schema. Creates file if missing.
// The pool holds a single connection so writes are serialized and ":memory:"
// databases survive across calls.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{db}, nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.DB.Close()
}

// Stats counts the rows of each table.
type Stats struct {
	ChatSettings  int
	Tools         int
	Endpoints     int
	Conversations int
	Messages      int
}

// Stats returns table row counts for the status command.
func (db *DB) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	for _, c := range []struct {
		table string
		dst   *int
	}{
		{"chat_settings", &s.ChatSettings},
		{"tools", &s.Tools},
		{"endpoints", &s.Endpoints},
		{"conversations", &s.Conversations},
		{"messages", &s.Messages},
	} {
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dst); err != nil {
			return Stats{}, fmt.Errorf("count %s: %w", c.table, err)
		}
	}
	return s, nil
}
