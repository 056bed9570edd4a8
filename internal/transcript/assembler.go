// Package transcript renders stored conversation history into the ordered
// input the provider expects for one turn.
package transcript

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

// DefaultHistoryLimit is the number of stored messages replayed per turn.
const DefaultHistoryLimit = 20

// Assembler builds transcripts from a history source.
type Assembler struct {
	history schema.HistoryReader
	limit   int
}

// NewAssembler returns an Assembler reading at most limit messages per turn.
// A non-positive limit means DefaultHistoryLimit.
func NewAssembler(history schema.HistoryReader, limit int) *Assembler {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Assembler{history: history, limit: limit}
}

// Assemble returns the system prompt, the replayable recent history of the
// conversation (excluding incoming) and finally the incoming user text.
func (a *Assembler) Assemble(ctx context.Context, settings schema.ChatSettings, conv schema.Conversation, incoming schema.Message) (schema.Transcript, error) {
	t := schema.NewTranscript(schema.SystemPrompt{Text: settings.SystemPrompt})

	recent, err := a.history.RecentMessages(ctx, conv.ChatID, a.limit)
	if err != nil {
		return schema.Transcript{}, fmt.Errorf("load history for %s: %w", conv.ChatID, err)
	}
	slices.Reverse(recent)

	var replay []schema.Entry
	for _, m := range recent {
		if incoming.ID != "" && m.ID == incoming.ID {
			continue
		}
		if e, ok := entryFor(m); ok {
			replay = append(replay, e)
		}
	}
	t.Entries = append(t.Entries, pair(replay)...)

	t.AddUser(incoming.Content)
	return t, nil
}

// Append adds one tool round-trip to t.
func Append(t *schema.Transcript, call schema.ToolCall, result schema.ToolResult) {
	t.AddToolRoundTrip(call, result)
}

func entryFor(m schema.Message) (schema.Entry, bool) {
	switch m.Type {
	case schema.MessageText, "":
		switch m.InferredRole() {
		case "assistant":
			return schema.AssistantText{Text: m.Content}, true
		case "system":
			return schema.SystemPrompt{Text: m.Content}, true
		}
		return schema.UserText{Text: m.Content}, true
	case schema.MessageToolCall:
		if m.ToolCallID == "" {
			return nil, false
		}
		return schema.ToolCall{
			ProviderCallID:       m.ToolCallID,
			ProviderObjectID:     m.ProviderObjectID,
			CanonicalToolName:    m.CanonicalToolName,
			ProviderFunctionName: m.FunctionName,
			ArgumentsJSON:        m.FunctionArguments,
		}, true
	case schema.MessageToolResult:
		if m.ToolCallID == "" {
			return nil, false
		}
		return schema.ToolResult{ProviderCallID: m.ToolCallID, ResultText: m.FunctionResult}, true
	default:
		slog.Debug("Skipping non-text history message", "id", m.ID, "type", m.Type)
		return nil, false
	}
}

// pair drops calls whose result is outside the window and results whose call
// is outside the window. A history limit can cut a round-trip in half and
// the provider rejects either half on its own.
func pair(entries []schema.Entry) []schema.Entry {
	results := make(map[string]int)
	for _, e := range entries {
		if r, ok := e.(schema.ToolResult); ok {
			results[r.ProviderCallID]++
		}
	}

	open := make(map[string]bool)
	out := make([]schema.Entry, 0, len(entries))
	for _, e := range entries {
		switch v := e.(type) {
		case schema.ToolCall:
			if results[v.ProviderCallID] == 0 || open[v.ProviderCallID] {
				slog.Debug("Dropping unpaired tool call from history", "call_id", v.ProviderCallID)
				continue
			}
			open[v.ProviderCallID] = true
		case schema.ToolResult:
			results[v.ProviderCallID]--
			if !open[v.ProviderCallID] {
				slog.Debug("Dropping orphan tool result from history", "call_id", v.ProviderCallID)
				continue
			}
			delete(open, v.ProviderCallID)
		}
		out = append(out, e)
	}
	return out
}
