package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

func TestParseResponse_FunctionCalls(t *testing.T) {
	raw := `{
	  "id": "resp_2",
	  "status": "completed",
	  "output": [
	    {"type": "web_search_call", "id": "ws_1", "status": "completed"},
	    {"type": "function_call", "id": "fc_1", "call_id": "call_1", "name": "example_v1_items_post", "arguments": "{\"title\":\"Lamp\"}"},
	    {"type": "function_call", "id": "fc_2", "call_id": "", "name": "no_call_id", "arguments": "{}"},
	    {"type": "function_call", "id": "fc_3", "call_id": "call_3", "name": "", "arguments": "{}"},
	    {"type": "function_call", "id": "fc_4", "call_id": "call_4", "name": "ghost_tool", "arguments": ""},
	    {"type": "file_search_call", "id": "fs_1"},
	    {"type": "mystery_item"}
	  ]
	}`

	resp, err := parseResponse([]byte(raw))
	require.NoError(t, err)
	assert.True(t, resp.HasToolCalls())
	assert.Equal(t, "", resp.Text)
	assert.Equal(t, []schema.ToolCallRequest{
		{CallID: "call_1", ObjectID: "fc_1", Name: "example_v1_items_post", ArgumentsJSON: `{"title":"Lamp"}`},
		{CallID: "call_4", ObjectID: "fc_4", Name: "ghost_tool", ArgumentsJSON: "{}"},
	}, resp.ToolCalls)
	assert.Nil(t, resp.Usage)
}

func TestParseResponse_TextAndUsage(t *testing.T) {
	resp, err := parseResponse([]byte(textResponse))
	require.NoError(t, err)
	assert.Equal(t, "resp_1", resp.ID)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "2+2 is 4.", resp.Text)
	assert.False(t, resp.HasToolCalls())
	assert.Equal(t, map[string]int{"input_tokens": 12, "output_tokens": 5}, resp.Usage)
}

func TestParseResponse_Refusal(t *testing.T) {
	raw := `{"output":[{"type":"message","role":"assistant","content":[{"type":"refusal","refusal":"I can't help with that."}]}]}`
	resp, err := parseResponse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "I can't help with that.", resp.Text)
}

func TestParseResponse_Errors(t *testing.T) {
	_, err := parseResponse([]byte(`not json`))
	assert.Error(t, err)

	_, err = parseResponse([]byte(`{"status":"failed","error":{"code":"server_error","message":"boom"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	resp, err := parseResponse([]byte(`{"status":"completed","error":null,"output":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "", resp.Text)
}
