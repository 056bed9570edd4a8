package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

const textResponse = `{
  "id": "resp_1",
  "status": "completed",
  "output": [
    {"type": "reasoning", "id": "rs_1", "summary": []},
    {"type": "message", "id": "msg_1", "role": "assistant",
     "content": [{"type": "output_text", "text": "2+2 is "}, {"type": "output_text", "text": "4."}]}
  ],
  "usage": {"input_tokens": 12, "output_tokens": 5}
}`

func newTestProvider(url string) *OpenAIProvider {
	return NewOpenAIProvider(Params{
		APIKey:     "sk-test",
		APIBase:    url,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	})
}

func TestRespond_RequestShape(t *testing.T) {
	var body map[string]any
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		_, _ = io.WriteString(w, textResponse)
	}))
	defer srv.Close()

	tr := schema.NewTranscript(
		schema.SystemPrompt{Text: "sys"},
		schema.UserText{Text: "weather?"},
		schema.ToolCall{ProviderCallID: "call_1", ProviderObjectID: "fc_1", ProviderFunctionName: "weather_get"},
		schema.ToolResult{ProviderCallID: "call_1", ResultText: "sunny"},
		schema.AssistantText{Text: ""},
		schema.UserText{Text: ""},
	)
	tools := []schema.ProviderToolDeclaration{
		{Type: "web_search"},
		{Type: "function", Name: "weather_get", Description: "Weather", Parameters: map[string]any{"type": "object"}},
	}

	resp, err := newTestProvider(srv.URL).Respond(t.Context(), schema.ResponseRequest{Model: "gpt-test", Transcript: tr, Tools: tools})
	require.NoError(t, err)
	assert.Equal(t, "2+2 is 4.", resp.Text)

	assert.Equal(t, "/responses", path)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-test", body["model"])
	assert.Equal(t, false, body["store"])

	assert.Equal(t, []any{
		map[string]any{"role": "system", "content": "sys"},
		map[string]any{"role": "user", "content": "weather?"},
		map[string]any{"type": "function_call", "id": "fc_1", "call_id": "call_1", "name": "weather_get", "arguments": "{}"},
		map[string]any{"type": "function_call_output", "call_id": "call_1", "output": "sunny"},
		map[string]any{"role": "assistant", "content": ""},
		map[string]any{"role": "user", "content": ""},
	}, body["input"])

	assert.Equal(t, []any{
		map[string]any{"type": "web_search"},
		map[string]any{"type": "function", "name": "weather_get", "description": "Weather", "parameters": map[string]any{"type": "object"}},
	}, body["tools"])
}

func TestRespond_OmitsEmptyTools(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, textResponse)
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	_, err := p.Respond(t.Context(), schema.ResponseRequest{Transcript: schema.NewTranscript(schema.UserText{Text: "hi"})})
	require.NoError(t, err)
	assert.NotContains(t, body, "tools")
	assert.Equal(t, DefaultModel, body["model"])
}

func TestRespond_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, textResponse)
	}))
	defer srv.Close()

	resp, err := newTestProvider(srv.URL).Respond(t.Context(), schema.ResponseRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2+2 is 4.", resp.Text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRespond_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestProvider(srv.URL).Respond(t.Context(), schema.ResponseRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRespond_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"message":"Invalid tool name"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestProvider(srv.URL).Respond(t.Context(), schema.ResponseRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 400")
	assert.Contains(t, err.Error(), "Invalid tool name")
	assert.Equal(t, int32(1), calls.Load())
}

func TestRespond_StopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(Params{APIKey: "k", APIBase: srv.URL, MaxRetries: 5, RetryDelay: time.Hour})
	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Respond(ctx, schema.ResponseRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRespond_NoCredential(t *testing.T) {
	p := NewOpenAIProvider(Params{})
	_, err := p.Respond(t.Context(), schema.ResponseRequest{})
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestProvider_HostAndDefaults(t *testing.T) {
	p := NewOpenAIProvider(Params{APIKey: "sk"})
	assert.Equal(t, "api.openai.com", p.Host())
	assert.Equal(t, "sk", p.Credential())
	assert.Equal(t, DefaultModel, p.DefaultModel())

	custom := NewOpenAIProvider(Params{APIBase: "https://LLM.internal:8443/v1/", DefaultModel: "m"})
	assert.Equal(t, "llm.internal", custom.Host())
	assert.Equal(t, "m", custom.DefaultModel())
}
