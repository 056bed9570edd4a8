package llmutils

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

// Truncate shortens a string to at most n bytes, adding "..." if it was truncated.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// StringOrDefault returns s if it's not empty, or def if s is empty.
func StringOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ToolHint generates a short hint string for a list of tool calls, e.g. `weather_v1_get({"city":"Oslo"})`.
func ToolHint(calls []schema.ToolCallRequest) string {
	parts := make([]string, 0, len(calls))
	for _, tc := range calls {
		args := strings.TrimSpace(tc.ArgumentsJSON)
		if args == "" || args == "{}" {
			parts = append(parts, tc.Name)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s(%s)", tc.Name, Truncate(args, 40)))
	}
	return strings.Join(parts, ", ")
}

// RepairJSON decodes model-supplied arguments, tolerating the truncated or
// trailing-garbage objects some models emit.
func RepairJSON(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		if out == nil {
			out = map[string]any{}
		}
		return out, nil
	}

	// Attempt 1: close an unterminated object.
	stripped := strings.TrimRight(raw, " \t\n\r}]")
	if !strings.HasSuffix(stripped, "}") {
		stripped += "}"
	}
	if err := json.Unmarshal([]byte(stripped), &out); err == nil {
		return out, nil
	}

	// Attempt 2: find the last complete JSON object.
	if i := strings.LastIndex(raw, "}"); i >= 0 {
		if err := json.Unmarshal([]byte(raw[:i+1]), &out); err == nil {
			return out, nil
		}
	}

	return map[string]any{}, fmt.Errorf("cannot repair JSON: %s", Truncate(raw, 200))
}
