package schema

import "context"

// ResponseRequest is one call to the provider.
type ResponseRequest struct {
	Model      string
	Transcript Transcript
	Tools      []ProviderToolDeclaration
}

// ToolCallRequest is one validated function call from a provider response.
type ToolCallRequest struct {
	CallID        string
	ObjectID      string
	Name          string
	ArgumentsJSON string
}

// LLMResponse is the parsed provider response.
type LLMResponse struct {
	ID        string
	Status    string
	Text      string
	ToolCalls []ToolCallRequest
	Usage     map[string]int // "input_tokens", "output_tokens"
}

// HasToolCalls reports whether the response contains at least one tool call.
func (r LLMResponse) HasToolCalls() bool { return len(r.ToolCalls) > 0 }

// LLMProvider is the language-model backend.
type LLMProvider interface {
	Respond(ctx context.Context, req ResponseRequest) (LLMResponse, error)
	DefaultModel() string
	// Host is the provider API host, used to decide credential injection.
	Host() string
	// Credential is the bearer token sent to the provider.
	Credential() string
}
