package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

const (
	DefaultAPIBase    = "https://api.openai.com/v1"
	DefaultModel      = "gpt-4o-mini"
	DefaultTimeout    = 120 * time.Second
	DefaultMaxRetries = 2

	defaultRetryDelay = time.Second
	maxRetryDelay     = 30 * time.Second
)

// OpenAIProvider calls the OpenAI Responses API over plain HTTP.
type OpenAIProvider struct {
	apiKey       string
	apiBase      string
	host         string
	defaultModel string
	extraHeaders map[string]string
	maxRetries   int
	retryDelay   time.Duration
	httpClient   *http.Client
}

// NewOpenAIProvider constructs a provider from raw config values.
func NewOpenAIProvider(p Params) *OpenAIProvider {
	base := strings.TrimRight(p.APIBase, "/")
	if base == "" {
		base = DefaultAPIBase
	}
	model := p.DefaultModel
	if model == "" {
		model = DefaultModel
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	delay := p.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}

	var host string
	if u, err := url.Parse(base); err == nil {
		host = strings.ToLower(u.Hostname())
	}

	return &OpenAIProvider{
		apiKey:       p.APIKey,
		apiBase:      base,
		host:         host,
		defaultModel: model,
		extraHeaders: p.ExtraHeaders,
		maxRetries:   retries,
		retryDelay:   delay,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

func (p *OpenAIProvider) DefaultModel() string { return p.defaultModel }
func (p *OpenAIProvider) Host() string         { return p.host }
func (p *OpenAIProvider) Credential() string   { return p.apiKey }

// responsesRequest is the body of POST /responses.
type responsesRequest struct {
	Model string                           `json:"model"`
	Input []any                            `json:"input"`
	Tools []schema.ProviderToolDeclaration `json:"tools,omitempty"`
	Store bool                             `json:"store"`
}

// Respond implements schema.LLMProvider.
func (p *OpenAIProvider) Respond(ctx context.Context, r schema.ResponseRequest) (schema.LLMResponse, error) {
	if p.apiKey == "" {
		return errResponse(ErrNoCredential)
	}

	model := r.Model
	if model == "" {
		model = p.defaultModel
	}

	data, err := json.Marshal(responsesRequest{
		Model: model,
		Input: encodeInput(r.Transcript),
		Tools: r.Tools,
	})
	if err != nil {
		return errResponse(fmt.Errorf("marshal request: %w", err))
	}

	slog.Debug("Sending request to provider", "model", model, "input_items", r.Transcript.Len(), "tools", len(r.Tools))

	raw, err := p.post(ctx, data)
	if err != nil {
		return errResponse(err)
	}

	resp, err := parseResponse(raw)
	if err != nil {
		return errResponse(err)
	}

	slog.Debug("Provider response", "id", resp.ID, "status", resp.Status, "tool_calls", len(resp.ToolCalls))
	return resp, nil
}

// post sends one request body, retrying rate limits, server errors and
// transport failures with exponential backoff.
func (p *OpenAIProvider) post(ctx context.Context, data []byte) ([]byte, error) {
	delay := p.retryDelay
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("Retrying provider request", "attempt", attempt, "max", p.maxRetries, "delay", delay, "err", lastErr)
			if err := sleep(ctx, delay); err != nil {
				return nil, fmt.Errorf("%w (last error: %v)", err, lastErr)
			}
			delay = min(delay*2, maxRetryDelay)
		}

		raw, err := p.send(ctx, data)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !retryable(ctx, err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("request failed after %d retries: %w", p.maxRetries, lastErr)
}

func (p *OpenAIProvider) send(ctx context.Context, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiBase+"/responses", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("User-Agent", "oatsbridge (go)")
	for k, v := range p.extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: friendlyHTTPError(resp.StatusCode, raw)}
	}
	return raw, nil
}
