package providers

import (
	"fmt"
	"log/slog"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

// Input items of the Responses API. Text content is a plain string and is
// always present, including when empty.
type messageItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type functionCallItem struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type functionCallOutputItem struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"`
	Output string `json:"output"`
}

// encodeInput renders a transcript as the request's input array.
func encodeInput(t schema.Transcript) []any {
	items := make([]any, 0, t.Len())
	for _, e := range t.Entries {
		switch v := e.(type) {
		case schema.SystemPrompt:
			items = append(items, messageItem{Role: "system", Content: v.Text})
		case schema.UserText:
			items = append(items, messageItem{Role: "user", Content: v.Text})
		case schema.AssistantText:
			items = append(items, messageItem{Role: "assistant", Content: v.Text})
		case schema.ToolCall:
			args := v.ArgumentsJSON
			if args == "" {
				args = "{}"
			}
			items = append(items, functionCallItem{
				Type:      "function_call",
				ID:        v.ProviderObjectID,
				CallID:    v.ProviderCallID,
				Name:      v.ProviderFunctionName,
				Arguments: args,
			})
		case schema.ToolResult:
			items = append(items, functionCallOutputItem{
				Type:   "function_call_output",
				CallID: v.ProviderCallID,
				Output: v.ResultText,
			})
		default:
			slog.Warn("Skipping unknown transcript entry", "type", fmt.Sprintf("%T", e))
		}
	}
	return items
}

