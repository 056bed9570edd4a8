package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	def := DefaultConfig()
	if cfg.Agent.Model != def.Agent.Model {
		t.Errorf("expected default model %q, got %q", def.Agent.Model, cfg.Agent.Model)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, map[string]any{
		"agent": map[string]any{
			"model":        "gpt-4o",
			"historyLimit": 50,
		},
		"tools": map[string]any{
			"legacyPrefixMatch": true,
		},
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Agent.Model != "gpt-4o" {
		t.Errorf("expected model %q, got %q", "gpt-4o", cfg.Agent.Model)
	}
	if cfg.Agent.HistoryLimit != 50 {
		t.Errorf("expected historyLimit 50, got %d", cfg.Agent.HistoryLimit)
	}
	if !cfg.Tools.LegacyPrefixMatch {
		t.Error("expected legacyPrefixMatch to be enabled")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error for invalid JSON (falls back to default), got: %v", err)
	}
	def := DefaultConfig()
	if cfg.Agent.Model != def.Agent.Model {
		t.Errorf("expected default model %q, got %q", def.Agent.Model, cfg.Agent.Model)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	original := DefaultConfig()
	original.Agent.Model = "gpt-4.1"
	original.Provider.ExtraHeaders = map[string]string{"OpenAI-Project": "proj_1"}
	original.Channels.WhatsApp.AllowFrom = []string{"+15550001"}

	if err := Save(&original, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Agent.Model != original.Agent.Model {
		t.Errorf("model mismatch: got %q, want %q", loaded.Agent.Model, original.Agent.Model)
	}
	if loaded.Provider.ExtraHeaders["OpenAI-Project"] != "proj_1" {
		t.Errorf("extra headers lost: %v", loaded.Provider.ExtraHeaders)
	}
	if len(loaded.Channels.WhatsApp.AllowFrom) != 1 {
		t.Errorf("allowFrom lost: %v", loaded.Channels.WhatsApp.AllowFrom)
	}
}

func TestSave_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := DefaultConfig()
	if err := Save(&cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected permissions 0600, got %04o", perm)
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "dir", "config.json")

	cfg := DefaultConfig()
	if err := Save(&cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestLoad_PartialConfig_UsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, map[string]any{
		"agent": map[string]any{
			"model": "custom-model",
		},
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := DefaultConfig()
	if cfg.Agent.Model != "custom-model" {
		t.Errorf("expected model %q, got %q", "custom-model", cfg.Agent.Model)
	}
	if cfg.Agent.HistoryLimit != def.Agent.HistoryLimit {
		t.Errorf("expected default historyLimit %d, got %d", def.Agent.HistoryLimit, cfg.Agent.HistoryLimit)
	}
	if cfg.Tools.TimeoutSeconds != def.Tools.TimeoutSeconds {
		t.Errorf("expected default tool timeout %d, got %d", def.Tools.TimeoutSeconds, cfg.Tools.TimeoutSeconds)
	}
	if cfg.Provider.APIBase != def.Provider.APIBase {
		t.Errorf("expected default apiBase %q, got %q", def.Provider.APIBase, cfg.Provider.APIBase)
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.ProviderTimeout(); got != 120*time.Second {
		t.Errorf("provider timeout: %v", got)
	}
	overall, connect := cfg.ToolTimeouts()
	if overall != 60*time.Second || connect != 10*time.Second {
		t.Errorf("tool timeouts: %v %v", overall, connect)
	}
	if got := cfg.ArtifactMaxAge(); got != 24*time.Hour {
		t.Errorf("artifact max age: %v", got)
	}
}

func TestConfig_Paths(t *testing.T) {
	cfg := DefaultConfig()
	if strings.HasPrefix(cfg.DBPath(), "~") {
		t.Errorf("db path not expanded: %s", cfg.DBPath())
	}
	if cfg.ArtifactsDir() != "" {
		t.Errorf("default artifacts dir should be empty, got %s", cfg.ArtifactsDir())
	}
	cfg.Tools.ArtifactsDir = "~/audio"
	if !strings.HasSuffix(cfg.ArtifactsDir(), "audio") || strings.HasPrefix(cfg.ArtifactsDir(), "~") {
		t.Errorf("artifacts dir: %s", cfg.ArtifactsDir())
	}
	cfg.Storage.Path = "/var/lib/oatsbridge.db"
	if cfg.DBPath() != "/var/lib/oatsbridge.db" {
		t.Errorf("absolute path changed: %s", cfg.DBPath())
	}
	if ExpandHome("~notme/x") != "~notme/x" {
		t.Error("only a bare ~ or ~/ prefix is expanded")
	}
}
