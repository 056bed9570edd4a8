package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

// SeedDocument is the YAML file loaded by `oatsbridge seed`.
type SeedDocument struct {
	Endpoints     []EndpointRecord     `yaml:"endpoints"`
	Tools         []ToolRecord         `yaml:"tools"`
	ChatSettings  []ChatSettingsRecord `yaml:"chatSettings"`
	Conversations []ConversationRecord `yaml:"conversations"`
}

// ConversationRecord binds a chat to a settings id.
type ConversationRecord struct {
	ChatID         string `yaml:"chatId"`
	Name           string `yaml:"name"`
	IsGroup        bool   `yaml:"isGroup"`
	ChatSettingsID string `yaml:"chatSettingsId"`
	Source         string `yaml:"source"`
}

// SeedCounts reports how many records of each kind were written.
type SeedCounts struct {
	Endpoints     int
	Tools         int
	ChatSettings  int
	Conversations int
}

// ParseSeed decodes a seed document and checks its references.
func ParseSeed(data []byte) (SeedDocument, error) {
	var doc SeedDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return SeedDocument{}, fmt.Errorf("parse seed: %w", err)
	}

	endpoints := make(map[string]bool, len(doc.Endpoints))
	for _, e := range doc.Endpoints {
		if e.ID == "" {
			return SeedDocument{}, fmt.Errorf("seed: endpoint without id (path %q)", e.Path)
		}
		endpoints[e.ID] = true
	}
	tools := make(map[string]bool, len(doc.Tools))
	for i, t := range doc.Tools {
		if t.ID == "" {
			return SeedDocument{}, fmt.Errorf("seed: tool %q has no id", t.Name)
		}
		if t.Kind == "" {
			doc.Tools[i].Kind = string(schema.ToolKindFunction)
		}
		if t.EndpointID != "" && !endpoints[t.EndpointID] {
			slog.Warn("Seed tool references an endpoint outside the file", "tool", t.ID, "endpoint", t.EndpointID)
		}
		tools[t.ID] = true
	}
	for _, s := range doc.ChatSettings {
		if s.ID == "" {
			return SeedDocument{}, fmt.Errorf("seed: chat settings %q has no id", s.Name)
		}
		for _, id := range s.Tools {
			if !tools[id] {
				slog.Warn("Seed chat settings reference a tool outside the file", "settings", s.ID, "tool", id)
			}
		}
	}
	for _, c := range doc.Conversations {
		if c.ChatID == "" {
			return SeedDocument{}, fmt.Errorf("seed: conversation without chatId")
		}
	}
	return doc, nil
}

// SeedFile loads a YAML seed from path and upserts every record.
func (db *DB) SeedFile(ctx context.Context, path string) (SeedCounts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SeedCounts{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	doc, err := ParseSeed(data)
	if err != nil {
		return SeedCounts{}, err
	}
	return db.Seed(ctx, doc)
}

// Seed upserts a parsed document. Endpoints and tools go first so settings
// can reference them.
func (db *DB) Seed(ctx context.Context, doc SeedDocument) (SeedCounts, error) {
	var n SeedCounts
	for _, e := range doc.Endpoints {
		if err := db.UpsertEndpoint(ctx, e); err != nil {
			return n, err
		}
		n.Endpoints++
	}
	for _, t := range doc.Tools {
		if err := db.UpsertTool(ctx, t); err != nil {
			return n, err
		}
		n.Tools++
	}
	for _, s := range doc.ChatSettings {
		if err := db.UpsertChatSettings(ctx, s); err != nil {
			return n, err
		}
		n.ChatSettings++
	}
	for _, c := range doc.Conversations {
		err := db.UpsertConversation(ctx, schema.Conversation{
			ChatID:         c.ChatID,
			Name:           c.Name,
			IsGroup:        c.IsGroup,
			ChatSettingsID: c.ChatSettingsID,
			Source:         schema.SourceType(c.Source),
		})
		if err != nil {
			return n, err
		}
		n.Conversations++
	}
	slog.Info("Seed loaded", "endpoints", n.Endpoints, "tools", n.Tools, "chat_settings", n.ChatSettings, "conversations", n.Conversations)
	return n, nil
}
