package channel

// WhatsAppConfig configures the WhatsApp bridge channel.
type WhatsAppConfig struct {
	Enabled     bool     `json:"enabled"`
	BridgeURL   string   `json:"bridgeUrl"`
	BridgeToken string   `json:"bridgeToken"`
	AllowFrom   []string `json:"allowFrom"`
	// DedupSize is the number of recent message ids remembered to drop
	// redelivered bridge messages.
	DedupSize int `json:"dedupSize"`
}

func DefaultWhatsAppConfig() WhatsAppConfig {
	return WhatsAppConfig{BridgeURL: "ws://localhost:3001", AllowFrom: []string{}, DedupSize: 1024}
}
