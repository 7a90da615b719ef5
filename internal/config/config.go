package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tsErrors "github.com/harunnryd/tsuyaku/internal/errors"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	LogLevel   string           `koanf:"log_level" yaml:"log_level"`
	Provider   ProviderConfig   `koanf:"provider" yaml:"provider"`
	Generation GenerationConfig `koanf:"generation" yaml:"generation"`
	Chat       ChatConfig       `koanf:"chat" yaml:"chat"`
}

type ProviderConfig struct {
	Variant        string `koanf:"variant" yaml:"variant"`
	APIKey         string `koanf:"api_key" yaml:"api_key"`
	BaseURL        string `koanf:"base_url" yaml:"base_url"`
	RequestTimeout string `koanf:"request_timeout" yaml:"request_timeout"`
	Model          string `koanf:"model" yaml:"model"`
}

type GenerationConfig struct {
	Temperature float64 `koanf:"temperature" yaml:"temperature"`
	MaxTokens   int     `koanf:"max_tokens" yaml:"max_tokens"`
	TopP        float64 `koanf:"top_p" yaml:"top_p"`
	TopK        int     `koanf:"top_k" yaml:"top_k"`
}

type ChatConfig struct {
	MaxTurns int    `koanf:"max_turns" yaml:"max_turns"`
	System   string `koanf:"system" yaml:"system"`
}

const (
	VariantREST = "google-rest"
	VariantSDK  = "google"

	DefaultLogLevel               = "info"
	DefaultProviderVariant        = VariantREST
	DefaultProviderBaseURL        = "https://generativelanguage.googleapis.com"
	DefaultProviderRequestTimeout = "60s"
	DefaultProviderModel          = "gemini-2.5-flash"
	DefaultGenerationTemperature  = 0.7
	DefaultGenerationMaxTokens    = 8192
	DefaultGenerationTopP         = 0.95
	DefaultGenerationTopK         = 40
	DefaultChatMaxTurns           = 3
	DefaultChatSystem             = ""

	EnvPrefix = "TSUYAKU_"
)

// APIKeyEnvVars are consulted, in order, when provider.api_key is empty.
var APIKeyEnvVars = []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}

var envSections = []string{"provider", "generation", "chat"}

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"log_level":                DefaultLogLevel,
		"provider.variant":         DefaultProviderVariant,
		"provider.api_key":         "",
		"provider.base_url":        DefaultProviderBaseURL,
		"provider.request_timeout": DefaultProviderRequestTimeout,
		"provider.model":           DefaultProviderModel,
		"generation.temperature":   DefaultGenerationTemperature,
		"generation.max_tokens":    DefaultGenerationMaxTokens,
		"generation.top_p":         DefaultGenerationTopP,
		"generation.top_k":         DefaultGenerationTopK,
		"chat.max_turns":           DefaultChatMaxTurns,
		"chat.system":              DefaultChatSystem,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	// Config file loading
	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		expanded, err := ExpandPath(configPath)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(expanded), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", expanded, err)
		}
	} else if globalPath, err := GlobalConfigPath(); err == nil {
		if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
			slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
		}
	}

	// Environment Variables
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	// CLI Flags
	if cmd != nil {
		if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	// Post-Process: Inject standard Env Vars if missing
	if strings.TrimSpace(cfg.Provider.APIKey) == "" {
		for _, name := range APIKeyEnvVars {
			if key := strings.TrimSpace(os.Getenv(name)); key != "" {
				cfg.Provider.APIKey = key
				break
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that can be judged without contacting the vendor.
// A missing API key is reported by the provider constructor instead.
func (c *Config) Validate() error {
	switch c.Provider.Variant {
	case VariantREST, VariantSDK:
	default:
		return tsErrors.Configuration(fmt.Sprintf("provider.variant must be %q or %q, got %q", VariantREST, VariantSDK, c.Provider.Variant))
	}
	if _, err := c.Provider.Timeout(); err != nil {
		return tsErrors.Configuration(fmt.Sprintf("provider.request_timeout: %v", err))
	}
	if c.Chat.MaxTurns < 1 {
		return tsErrors.Configuration(fmt.Sprintf("chat.max_turns must be at least 1, got %d", c.Chat.MaxTurns))
	}
	return nil
}

// Timeout parses request_timeout, falling back to the default when empty.
func (p ProviderConfig) Timeout() (time.Duration, error) {
	d, err := DurationOrDefault(p.RequestTimeout, DefaultProviderRequestTimeout)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", d)
	}
	return d, nil
}

// Options renders the generation section as converter options.
func (g GenerationConfig) Options() map[string]interface{} {
	return map[string]interface{}{
		"temperature": g.Temperature,
		"max_tokens":  g.MaxTokens,
		"top_p":       g.TopP,
		"top_k":       g.TopK,
	}
}

// DurationOrDefault parses a duration string and falls back to defaultValue when empty.
func DurationOrDefault(value string, defaultValue string) (time.Duration, error) {
	candidate := strings.TrimSpace(value)
	if candidate == "" {
		candidate = strings.TrimSpace(defaultValue)
	}
	if candidate == "" {
		return 0, fmt.Errorf("duration value is empty")
	}

	d, err := time.ParseDuration(candidate)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", candidate, err)
	}
	return d, nil
}

// GlobalConfigPath is ~/.tsuyaku/config.yaml.
func GlobalConfigPath() (string, error) {
	home, err := resolveHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".tsuyaku", "config.yaml"), nil
}

// envKey maps TSUYAKU_PROVIDER_API_KEY to provider.api_key. Only the first
// underscore after a known section separates levels.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range envSections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}
