// ABOUTME: Configuration loading and parsing for talk-to-anyone
// ABOUTME: Supports YAML files with environment variable expansion and sane defaults

package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Default model identifiers for the gemini provider.
const (
	DefaultChatModel = "gemini-2.0-flash"
	DefaultTTSModel  = "gemini-2.5-flash-preview-tts"
)

// Config represents the complete talk-to-anyone configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	Voice    VoiceConfig    `yaml:"voice"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// ProviderConfig holds generative API provider configuration
type ProviderConfig struct {
	Name     string `yaml:"name"`    // "gemini" or "openai"
	APIKey   string `yaml:"api_key"` // usually ${GEMINI_API_KEY} / ${OPENAI_API_KEY}
	Model    string `yaml:"model"`   // chat + persona generation model
	TTSModel string `yaml:"tts_model"`
	BaseURL  string `yaml:"base_url"` // override for testing / proxies
}

// VoiceConfig holds the default voice settings for new conversations
type VoiceConfig struct {
	Enabled           bool   `yaml:"enabled"`
	AutoPlay          bool   `yaml:"auto_play"`
	PreferredLanguage string `yaml:"preferred_language"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded.
// A missing file is not an error: defaults plus environment variables are
// enough to run.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case os.IsNotExist(err):
		// fall through to defaults
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// applyDefaults fills in every field that can have a sensible default.
// The API key deliberately has none.
func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8488"
	}
	if c.Provider.Name == "" {
		c.Provider.Name = "gemini"
	}
	if c.Provider.APIKey == "" {
		c.Provider.APIKey = keyFromEnv(c.Provider.Name)
	}
	if c.Provider.Model == "" {
		c.Provider.Model = DefaultChatModel
	}
	if c.Provider.TTSModel == "" {
		c.Provider.TTSModel = DefaultTTSModel
	}
	if c.Voice.PreferredLanguage == "" {
		c.Voice.PreferredLanguage = "English (US)"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "color"
	}
}

// keyFromEnv returns the conventional environment variable for a provider.
func keyFromEnv(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	default:
		return os.Getenv("GEMINI_API_KEY")
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables become empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and
// valid. A missing API key is a fatal configuration failure: the whole
// application refuses to start without credentials.
func (c *Config) Validate() error {
	if c.Provider.Name != "gemini" && c.Provider.Name != "openai" {
		return fmt.Errorf("provider.name must be \"gemini\" or \"openai\", got %q", c.Provider.Name)
	}

	if c.Provider.APIKey == "" {
		return fmt.Errorf("provider.api_key is required (set it in the config file or via GEMINI_API_KEY / OPENAI_API_KEY)")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}

	return nil
}
