package tool

// ToolsConfig groups the tool execution settings.
type ToolsConfig struct {
	TimeoutSeconds        int `json:"timeoutSeconds"`
	ConnectTimeoutSeconds int `json:"connectTimeoutSeconds"`
	// LegacyPrefixMatch enables resolving unknown names by id prefix.
	LegacyPrefixMatch bool `json:"legacyPrefixMatch"`

	ArtifactsDir        string `json:"artifactsDir,omitempty"`
	ReapSchedule        string `json:"reapSchedule"`
	ArtifactMaxAgeHours int    `json:"artifactMaxAgeHours"`
}

func DefaultToolConfigs() ToolsConfig {
	return ToolsConfig{
		TimeoutSeconds:        60,
		ConnectTimeoutSeconds: 10,
		ReapSchedule:          "@hourly",
		ArtifactMaxAgeHours:   24,
	}
}
