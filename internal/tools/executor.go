package tools

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oatsbridge/oatsbridge/internal/schema"
	"github.com/oatsbridge/oatsbridge/internal/shared/llmutils"
)

const (
	DefaultTimeout        = 60 * time.Second
	DefaultConnectTimeout = 10 * time.Second

	userAgent       = "oatsbridge (go)"
	maxResponseSize = 25 << 20
	maxErrorBody    = 4000
)

// ArtifactSaver persists binary responses and returns their path.
type ArtifactSaver interface {
	Save(data []byte, contentType string) (string, error)
}

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	Timeout        time.Duration
	ConnectTimeout time.Duration
	// ProviderHost and Credential enable bearer injection for calls that
	// target the LLM provider's own API.
	ProviderHost string
	Credential   string
	Artifacts    ArtifactSaver
	// Client overrides the pooled client; used by tests.
	Client *http.Client
}

// Executor runs endpoint-backed tools over HTTP. Every outcome, including
// failures, is returned as a string for the model to read.
type Executor struct {
	client       *http.Client
	providerHost string
	credential   string
	artifacts    ArtifactSaver
}

// NewExecutor builds an Executor with one pooled client whose connect
// timeout is shorter than its overall timeout.
func NewExecutor(opts ExecutorOptions) *Executor {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	connect := opts.ConnectTimeout
	if connect <= 0 || connect >= timeout {
		connect = min(DefaultConnectTimeout, timeout/2)
	}

	client := opts.Client
	if client == nil {
		dialer := &net.Dialer{Timeout: connect, KeepAlive: 30 * time.Second}
		client = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         dialer.DialContext,
				TLSHandshakeTimeout: connect,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &Executor{
		client:       client,
		providerHost: strings.ToLower(opts.ProviderHost),
		credential:   opts.Credential,
		artifacts:    opts.Artifacts,
	}
}

// Execute calls the tool's endpoint with the model's arguments.
func (e *Executor) Execute(ctx context.Context, def schema.ToolDefinition, argumentsJSON string) string {
	if def.Endpoint == nil {
		return fmt.Sprintf("Error: tool %q has no linked endpoint", def.Name)
	}

	args, err := llmutils.RepairJSON(argumentsJSON)
	if err != nil {
		slog.Warn("tool arguments are not valid JSON, calling with none", "tool", def.Name, "err", err)
	}

	req, err := e.buildRequest(ctx, def, args)
	if err != nil {
		return "Error: " + err.Error()
	}

	slog.Info("Tool request", "tool", def.Name, "version", def.Endpoint.Version(), "method", req.Method, "url", req.URL.Redacted())

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Sprintf("Error calling %s %s: %v", req.Method, req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Sprintf("Error reading response from %s: %v", req.URL.Redacted(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Sprintf("Error code: %d - %s", resp.StatusCode, llmutils.Truncate(strings.TrimSpace(string(body)), maxErrorBody))
	}

	return e.normalize(req.URL.Path, resp.StatusCode, resp.Header.Get("Content-Type"), body)
}
