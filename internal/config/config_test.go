package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tsErrors "github.com/harunnryd/tsuyaku/internal/errors"

	"github.com/spf13/cobra"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, name := range APIKeyEnvVars {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	// We pass nil for cmd to skip flags
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("Expected default log level %s, got %s", DefaultLogLevel, cfg.LogLevel)
	}
	if cfg.Provider.Variant != DefaultProviderVariant {
		t.Errorf("Expected default variant %s, got %s", DefaultProviderVariant, cfg.Provider.Variant)
	}
	if cfg.Provider.BaseURL != DefaultProviderBaseURL {
		t.Errorf("Expected default base url %s, got %s", DefaultProviderBaseURL, cfg.Provider.BaseURL)
	}
	if cfg.Provider.Model != DefaultProviderModel {
		t.Errorf("Expected default model %s, got %s", DefaultProviderModel, cfg.Provider.Model)
	}
	if cfg.Generation.Temperature != DefaultGenerationTemperature {
		t.Errorf("Expected default temperature %v, got %v", DefaultGenerationTemperature, cfg.Generation.Temperature)
	}
	if cfg.Generation.MaxTokens != DefaultGenerationMaxTokens {
		t.Errorf("Expected default max tokens %d, got %d", DefaultGenerationMaxTokens, cfg.Generation.MaxTokens)
	}
	if cfg.Generation.TopP != DefaultGenerationTopP {
		t.Errorf("Expected default top_p %v, got %v", DefaultGenerationTopP, cfg.Generation.TopP)
	}
	if cfg.Generation.TopK != DefaultGenerationTopK {
		t.Errorf("Expected default top_k %d, got %d", DefaultGenerationTopK, cfg.Generation.TopK)
	}
	if cfg.Chat.MaxTurns != DefaultChatMaxTurns {
		t.Errorf("Expected default max turns %d, got %d", DefaultChatMaxTurns, cfg.Chat.MaxTurns)
	}
	if cfg.Provider.APIKey != "" {
		t.Errorf("Expected empty api key, got %q", cfg.Provider.APIKey)
	}

	timeout, err := cfg.Provider.Timeout()
	if err != nil {
		t.Fatalf("timeout: %v", err)
	}
	if timeout != 60*time.Second {
		t.Errorf("Expected default timeout 60s, got %s", timeout)
	}
}

func TestLoadWithConfigFlag(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
provider:
  variant: google
  model: gemini-2.0-pro
generation:
  temperature: 0.2
  top_k: 8
chat:
  max_turns: 5
`)
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cmd := &cobra.Command{}
	cmd.Flags().String("config", "", "config file path")
	if err := cmd.Flags().Set("config", configPath); err != nil {
		t.Fatalf("failed to set config flag: %v", err)
	}

	cfg, err := Load(cmd)
	if err != nil {
		t.Fatalf("failed to load config with --config: %v", err)
	}

	if cfg.Provider.Variant != VariantSDK {
		t.Fatalf("expected variant google, got %s", cfg.Provider.Variant)
	}
	if cfg.Provider.Model != "gemini-2.0-pro" {
		t.Fatalf("expected model gemini-2.0-pro, got %s", cfg.Provider.Model)
	}
	if cfg.Generation.Temperature != 0.2 || cfg.Generation.TopK != 8 {
		t.Fatalf("unexpected generation section: %+v", cfg.Generation)
	}
	// untouched keys keep their defaults
	if cfg.Generation.MaxTokens != DefaultGenerationMaxTokens {
		t.Fatalf("expected default max tokens, got %d", cfg.Generation.MaxTokens)
	}
	if cfg.Chat.MaxTurns != 5 {
		t.Fatalf("expected max turns 5, got %d", cfg.Chat.MaxTurns)
	}
}

func TestLoadWithMissingConfigFlagReturnsError(t *testing.T) {
	isolateEnv(t)
	cmd := &cobra.Command{}
	cmd.Flags().String("config", "", "config file path")
	if err := cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Fatalf("failed to set config flag: %v", err)
	}

	if _, err := Load(cmd); err == nil {
		t.Fatal("expected error when --config points to missing file")
	}
}

func TestLoadReadsGlobalConfig(t *testing.T) {
	isolateEnv(t)
	path, err := GlobalConfigPath()
	if err != nil {
		t.Fatalf("global path: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log level debug, got %s", cfg.LogLevel)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("TSUYAKU_LOG_LEVEL", "warn")
	t.Setenv("TSUYAKU_PROVIDER_API_KEY", "env-key")
	t.Setenv("TSUYAKU_PROVIDER_REQUEST_TIMEOUT", "5s")
	t.Setenv("TSUYAKU_CHAT_MAX_TURNS", "7")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.LogLevel)
	}
	if cfg.Provider.APIKey != "env-key" {
		t.Errorf("expected api key from env, got %q", cfg.Provider.APIKey)
	}
	if cfg.Provider.RequestTimeout != "5s" {
		t.Errorf("expected timeout 5s, got %s", cfg.Provider.RequestTimeout)
	}
	if cfg.Chat.MaxTurns != 7 {
		t.Errorf("expected max turns 7, got %d", cfg.Chat.MaxTurns)
	}
}

func TestLoadInjectsVendorAPIKey(t *testing.T) {
	isolateEnv(t)
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider.APIKey != "gemini-key" {
		t.Fatalf("expected GEMINI_API_KEY to be injected, got %q", cfg.Provider.APIKey)
	}

	t.Setenv("GOOGLE_API_KEY", "google-key")
	cfg, err = Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider.APIKey != "google-key" {
		t.Fatalf("expected GOOGLE_API_KEY to take precedence, got %q", cfg.Provider.APIKey)
	}
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("provider:\n  model: from-file\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cmd := &cobra.Command{}
	cmd.Flags().String("config", "", "config file path")
	cmd.Flags().String("provider.model", "", "model")
	if err := cmd.Flags().Set("config", configPath); err != nil {
		t.Fatalf("set config: %v", err)
	}
	if err := cmd.Flags().Set("provider.model", "from-flag"); err != nil {
		t.Fatalf("set model: %v", err)
	}

	cfg, err := Load(cmd)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider.Model != "from-flag" {
		t.Fatalf("expected flag to win, got %s", cfg.Provider.Model)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Provider: ProviderConfig{Variant: VariantREST, RequestTimeout: "1s"},
			Chat:     ChatConfig{MaxTurns: 1},
		}
	}

	cfg := base()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cfg = base()
	cfg.Provider.Variant = "openai"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown variant to fail")
	}

	cfg = base()
	cfg.Provider.RequestTimeout = "soon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected bad timeout to fail")
	}

	cfg = base()
	cfg.Provider.RequestTimeout = "-1s"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected negative timeout to fail")
	}

	cfg = base()
	cfg.Chat.MaxTurns = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected zero max turns to fail")
	}
}

func TestValidateReturnsConfigurationError(t *testing.T) {
	cases := map[string]func(*Config){
		"unknown variant": func(c *Config) { c.Provider.Variant = "openai" },
		"bad timeout":     func(c *Config) { c.Provider.RequestTimeout = "soon" },
		"zero timeout":    func(c *Config) { c.Provider.RequestTimeout = "0s" },
		"zero max turns":  func(c *Config) { c.Chat.MaxTurns = 0 },
	}
	for name, mutate := range cases {
		cfg := Config{
			Provider: ProviderConfig{Variant: VariantREST, RequestTimeout: "1s"},
			Chat:     ChatConfig{MaxTurns: 1},
		}
		mutate(&cfg)
		err := cfg.Validate()
		if !errors.Is(err, tsErrors.ErrConfiguration) {
			t.Fatalf("%s: expected ErrConfiguration, got %v", name, err)
		}
	}
}

func TestEnvKey(t *testing.T) {
	cases := map[string]string{
		"TSUYAKU_LOG_LEVEL":                "log_level",
		"TSUYAKU_PROVIDER_API_KEY":         "provider.api_key",
		"TSUYAKU_GENERATION_MAX_TOKENS":    "generation.max_tokens",
		"TSUYAKU_CHAT_SYSTEM":              "chat.system",
		"TSUYAKU_PROVIDER_REQUEST_TIMEOUT": "provider.request_timeout",
	}
	for in, want := range cases {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerationOptions(t *testing.T) {
	opts := GenerationConfig{Temperature: 0.1, MaxTokens: 10, TopP: 0.5, TopK: 3}.Options()
	if opts["temperature"] != 0.1 || opts["max_tokens"] != 10 || opts["top_p"] != 0.5 || opts["top_k"] != 3 {
		t.Fatalf("unexpected options: %v", opts)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TSUYAKU_PATH_TEST", "/tmp/tsuyaku-path")

	got, err := ExpandPath("$TSUYAKU_PATH_TEST/config.yaml")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got != filepath.Clean("/tmp/tsuyaku-path/config.yaml") {
		t.Fatalf("unexpected env expansion: %s", got)
	}

	got, err = ExpandPath("")
	if err != nil || got != "" {
		t.Fatalf("expected empty path to stay empty, got %q, %v", got, err)
	}

	got, err = ExpandPath("~/conv.yaml")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if filepath.Base(got) != "conv.yaml" || !filepath.IsAbs(got) {
		t.Fatalf("unexpected tilde expansion: %s", got)
	}
}
