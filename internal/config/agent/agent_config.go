package agent

// AgentConfig controls how turns are answered.
type AgentConfig struct {
	Model        string `json:"model"`
	HistoryLimit int    `json:"historyLimit"`
	// DefaultChatSettingsID is bound to conversations created on first contact.
	DefaultChatSettingsID string `json:"defaultChatSettingsId"`
}

func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Model:                 "gpt-4o-mini",
		HistoryLimit:          20,
		DefaultChatSettingsID: "default",
	}
}
