package llm

import (
	"fmt"
	"time"

	pkgconfig "rss-portal/pkg/config"
)

// Config configures the model client and its provider adapter.
type Config struct {
	// Provider selects the adapter: gemini, openrouter, openai or claude.
	Provider string

	// APIKey may be empty. The client then reports ErrMissingCredential on
	// every call instead of failing at startup.
	APIKey string

	Model   string
	BaseURL string

	// SiteURL and AppTitle identify the caller to OpenRouter.
	SiteURL  string
	AppTitle string

	Timeout     time.Duration
	MaxTokens   int
	Temperature float64

	// RateLimitCooldown is slept after a 429 before reporting no result.
	RateLimitCooldown time.Duration
}

// Defaults shared by every provider.
const (
	DefaultTimeout           = 30 * time.Second
	DefaultMaxTokens         = 500
	DefaultTemperature       = 0.1
	DefaultRateLimitCooldown = 60 * time.Second
)

var defaultModels = map[string]string{
	ProviderGemini:     "gemini-2.0-flash",
	ProviderOpenRouter: "google/gemini-2.0-flash-001",
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderClaude:     "claude-3-5-haiku-latest",
}

var defaultBaseURLs = map[string]string{
	ProviderGemini:     "https://generativelanguage.googleapis.com",
	ProviderOpenRouter: "https://openrouter.ai/api/v1",
	ProviderOpenAI:     "https://api.openai.com/v1",
	ProviderClaude:     "https://api.anthropic.com",
}

// providerKeyEnv lists the provider specific fallback for LLM_API_KEY.
var providerKeyEnv = map[string]string{
	ProviderGemini:     "GEMINI_API_KEY",
	ProviderOpenRouter: "OPENROUTER_API_KEY",
	ProviderOpenAI:     "OPENAI_API_KEY",
	ProviderClaude:     "ANTHROPIC_API_KEY",
}

// Validate checks everything except the credential.
func (c *Config) Validate() error {
	if _, ok := defaultModels[c.Provider]; !ok {
		return fmt.Errorf("unknown llm provider %q", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if err := pkgconfig.ValidatePositiveDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", c.Temperature)
	}
	if err := pkgconfig.ValidateNonNegativeDuration(c.RateLimitCooldown); err != nil {
		return fmt.Errorf("invalid rate limit cooldown: %w", err)
	}
	return nil
}

// HasCredential reports whether an API key is configured.
func (c *Config) HasCredential() bool {
	return c.APIKey != ""
}

// LoadConfig reads the model client configuration from the environment.
//
// Environment variables:
//   - LLM_PROVIDER: gemini (default), openrouter, openai, claude
//   - LLM_API_KEY: falls back to GEMINI_API_KEY, OPENROUTER_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY
//   - LLM_MODEL, LLM_BASE_URL: provider defaults when unset
//   - LLM_TIMEOUT (30s), LLM_MAX_TOKENS (500), LLM_TEMPERATURE (0.1), LLM_RATE_LIMIT_COOLDOWN (60s)
//   - SITE_URL, LLM_APP_TITLE
func LoadConfig() (*Config, error) {
	provider := pkgconfig.GetEnvString("LLM_PROVIDER", ProviderGemini)

	cfg := &Config{
		Provider:          provider,
		APIKey:            pkgconfig.GetEnvFirst("LLM_API_KEY", providerKeyEnv[provider]),
		Model:             pkgconfig.GetEnvString("LLM_MODEL", defaultModels[provider]),
		BaseURL:           pkgconfig.GetEnvString("LLM_BASE_URL", defaultBaseURLs[provider]),
		SiteURL:           pkgconfig.GetEnvString("SITE_URL", ""),
		AppTitle:          pkgconfig.GetEnvString("LLM_APP_TITLE", "RSS Portal"),
		Timeout:           pkgconfig.GetEnvDuration("LLM_TIMEOUT", DefaultTimeout),
		MaxTokens:         pkgconfig.GetEnvInt("LLM_MAX_TOKENS", DefaultMaxTokens),
		Temperature:       pkgconfig.GetEnvFloat("LLM_TEMPERATURE", DefaultTemperature),
		RateLimitCooldown: pkgconfig.GetEnvDuration("LLM_RATE_LIMIT_COOLDOWN", DefaultRateLimitCooldown),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid llm configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns a validated configuration for provider with the given key.
func DefaultConfig(provider, apiKey string) Config {
	return Config{
		Provider:          provider,
		APIKey:            apiKey,
		Model:             defaultModels[provider],
		BaseURL:           defaultBaseURLs[provider],
		AppTitle:          "RSS Portal",
		Timeout:           DefaultTimeout,
		MaxTokens:         DefaultMaxTokens,
		Temperature:       DefaultTemperature,
		RateLimitCooldown: DefaultRateLimitCooldown,
	}
}
