package providers

import (
	"time"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

// Params are the raw values needed to construct a schema.LLMProvider.
// Extracted from config.Config by the caller to avoid an import cycle.
type Params struct {
	APIKey       string
	APIBase      string
	ExtraHeaders map[string]string
	DefaultModel string
	Timeout      time.Duration
	MaxRetries   int
	// RetryDelay is the first backoff interval; it doubles on each retry.
	RetryDelay time.Duration
}

// New creates the Responses API provider for the given params.
func New(p Params) schema.LLMProvider {
	return NewOpenAIProvider(p)
}
