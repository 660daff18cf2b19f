// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, defaults, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  http_addr: "0.0.0.0:9000"

provider:
  name: "gemini"
  api_key: "test-key"
  model: "gemini-2.0-flash"

voice:
  enabled: true
  auto_play: true
  preferred_language: "Japanese (Japan)"

logging:
  level: "debug"
  format: "json"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:9000" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:9000")
	}
	if cfg.Provider.APIKey != "test-key" {
		t.Errorf("Provider.APIKey = %q, want %q", cfg.Provider.APIKey, "test-key")
	}
	if !cfg.Voice.Enabled || !cfg.Voice.AutoPlay {
		t.Errorf("Voice settings not loaded: %+v", cfg.Voice)
	}
	if cfg.Voice.PreferredLanguage != "Japanese (Japan)" {
		t.Errorf("Voice.PreferredLanguage = %q", cfg.Voice.PreferredLanguage)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TTA_TEST_KEY", "expanded-secret")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
provider:
  api_key: "${TTA_TEST_KEY}"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider.APIKey != "expanded-secret" {
		t.Errorf("Provider.APIKey = %q, want %q", cfg.Provider.APIKey, "expanded-secret")
	}
}

func TestLoad_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("provider:\n  api_key: \"k\"\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != ":8488" {
		t.Errorf("default HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.Provider.Name != "gemini" {
		t.Errorf("default provider = %q", cfg.Provider.Name)
	}
	if cfg.Provider.Model != DefaultChatModel {
		t.Errorf("default model = %q", cfg.Provider.Model)
	}
	if cfg.Provider.TTSModel != DefaultTTSModel {
		t.Errorf("default tts model = %q", cfg.Provider.TTSModel)
	}
	if cfg.Voice.PreferredLanguage != "English (US)" {
		t.Errorf("default language = %q", cfg.Voice.PreferredLanguage)
	}
	if cfg.Voice.Enabled {
		t.Error("voice should default to disabled")
	}
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider.APIKey != "env-key" {
		t.Errorf("Provider.APIKey = %q, want env fallback", cfg.Provider.APIKey)
	}
}

func TestLoad_MissingAPIKeyIsFatal(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() should fail without an API key")
	}
	if !strings.Contains(err.Error(), "api_key") {
		t.Errorf("error %q should mention api_key", err)
	}
}

func TestLoad_UnknownProvider(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := "provider:\n  name: \"cohere\"\n  api_key: \"k\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("Load() should reject unknown providers")
	}
}

func TestLoad_BadLogLevel(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := "provider:\n  api_key: \"k\"\nlogging:\n  level: \"loud\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("Load() should reject unknown log levels")
	}
}
