// Package config defines the configuration schema for oatsbridge.
//
// JSON keys use camelCase. Each concern lives in its own sub-package.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oatsbridge/oatsbridge/internal/config/agent"
	"github.com/oatsbridge/oatsbridge/internal/config/channel"
	"github.com/oatsbridge/oatsbridge/internal/config/gateway"
	"github.com/oatsbridge/oatsbridge/internal/config/provider"
	"github.com/oatsbridge/oatsbridge/internal/config/storage"
	"github.com/oatsbridge/oatsbridge/internal/config/tool"
)

// Config is the root configuration object.
type Config struct {
	Provider provider.ProviderConfig `json:"provider"`
	Agent    agent.AgentConfig       `json:"agent"`
	Tools    tool.ToolsConfig        `json:"tools"`
	Storage  storage.StorageConfig   `json:"storage"`
	Gateway  gateway.GatewayConfig   `json:"gateway"`
	Channels channel.ChannelsConfig  `json:"channels"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Provider: provider.DefaultProviderConfig(),
		Agent:    agent.DefaultAgentConfig(),
		Tools:    tool.DefaultToolConfigs(),
		Storage:  storage.DefaultStorageConfig(),
		Gateway:  gateway.DefaultGatewayConfig(),
		Channels: channel.DefaultChannelsConfig(),
	}
}

// DBPath returns the expanded path of the SQLite database.
func (c *Config) DBPath() string {
	p := c.Storage.Path
	if p == "" {
		p = storage.DefaultStorageConfig().Path
	}
	return ExpandHome(p)
}

// ArtifactsDir returns where binary tool responses are written. An empty
// result selects the artifacts store default under the OS temp dir.
func (c *Config) ArtifactsDir() string {
	return ExpandHome(c.Tools.ArtifactsDir)
}

// ProviderTimeout returns the provider HTTP timeout.
func (c *Config) ProviderTimeout() time.Duration {
	return seconds(c.Provider.TimeoutSeconds)
}

// ToolTimeouts returns the overall and connect timeouts for tool calls.
func (c *Config) ToolTimeouts() (overall, connect time.Duration) {
	return seconds(c.Tools.TimeoutSeconds), seconds(c.Tools.ConnectTimeoutSeconds)
}

// ArtifactMaxAge returns how long generated files are kept.
func (c *Config) ArtifactMaxAge() time.Duration {
	return time.Duration(c.Tools.ArtifactMaxAgeHours) * time.Hour
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
