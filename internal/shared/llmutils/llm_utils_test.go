package llmutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

func TestRepairJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want map[string]any
	}{
		{"empty", "", map[string]any{}},
		{"valid", `{"a":1}`, map[string]any{"a": float64(1)}},
		{"unterminated", `{"a":"x"`, map[string]any{"a": "x"}},
		{"trailing garbage", `{"a":true} trailing`, map[string]any{"a": true}},
		{"null", `null`, map[string]any{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := RepairJSON(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRepairJSON_Unrepairable(t *testing.T) {
	got, err := RepairJSON("not json at all")
	assert.Error(t, err)
	assert.Empty(t, got)
}

func TestToolHint(t *testing.T) {
	hint := ToolHint([]schema.ToolCallRequest{
		{Name: "a", ArgumentsJSON: "{}"},
		{Name: "b", ArgumentsJSON: `{"q":"x"}`},
	})
	assert.Equal(t, `a, b({"q":"x"})`, hint)
}
