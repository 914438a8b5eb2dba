package llm

import (
	"context"
	"fmt"
	"net/http"
)

// Request holds one prompt and its generation parameters.
type Request struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Provider adapts one upstream wire format. Complete returns the raw text
// payload unwrapped from the provider envelope. Errors must wrap one of the
// failure classes in errors.go; adapters do not retry.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// Provider names accepted in Config.Provider.
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderClaude     = "claude"
)

// NewProvider builds the adapter selected by cfg.Provider.
func NewProvider(cfg Config, httpClient *http.Client) (Provider, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	switch cfg.Provider {
	case ProviderGemini:
		return NewGemini(cfg, httpClient), nil
	case ProviderOpenRouter, ProviderOpenAI:
		return NewOpenAI(cfg, httpClient), nil
	case ProviderClaude:
		return NewClaude(cfg, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
