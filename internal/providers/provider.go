// Package providers implements the OpenAI Responses API client used for
// every turn. The client is a plain net/http wrapper; the request codec is
// in codec.go and the response parser in parse.go.
package providers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

// ErrNoCredential is returned when the provider has no API key configured.
var ErrNoCredential = errors.New("no provider API key configured")

// APIError is a non-2xx response from the provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the request may succeed if sent again.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

func errResponse(err error) (schema.LLMResponse, error) {
	return schema.LLMResponse{Status: "failed"}, err
}

func friendlyHTTPError(code int, body []byte) string {
	if code == 429 {
		return "rate limit exceeded"
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
