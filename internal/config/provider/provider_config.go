package provider

import "os"

// EnvAPIKey is consulted when no key is configured.
const EnvAPIKey = "OPENAI_API_KEY"

// ProviderConfig holds the Responses API credentials and transport settings.
type ProviderConfig struct {
	APIKey         string            `json:"apiKey"`
	APIBase        string            `json:"apiBase,omitempty"`
	ExtraHeaders   map[string]string `json:"extraHeaders,omitempty"`
	TimeoutSeconds int               `json:"timeoutSeconds"`
	MaxRetries     int               `json:"maxRetries"`
}

func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		APIBase:        "https://api.openai.com/v1",
		TimeoutSeconds: 120,
		MaxRetries:     2,
	}
}

// ResolvedAPIKey returns the configured key, else $OPENAI_API_KEY.
func (p ProviderConfig) ResolvedAPIKey() string {
	if p.APIKey != "" {
		return p.APIKey
	}
	return os.Getenv(EnvAPIKey)
}
