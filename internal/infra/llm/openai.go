package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI speaks the chat completions protocol. It serves both OpenAI and
// OpenRouter; the latter only differs in base URL and attribution headers.
type OpenAI struct {
	client *openai.Client
	name   string
	model  string
}

// NewOpenAI creates an OpenAI-compatible adapter for cfg.Provider.
func NewOpenAI(cfg Config, httpClient *http.Client) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	} else if base, ok := defaultBaseURLs[cfg.Provider]; ok {
		clientCfg.BaseURL = base
	}

	if cfg.Provider == ProviderOpenRouter {
		headers := map[string]string{}
		if cfg.SiteURL != "" {
			headers["HTTP-Referer"] = cfg.SiteURL
		}
		if cfg.AppTitle != "" {
			headers["X-Title"] = cfg.AppTitle
		}
		httpClient = withHeaders(httpClient, headers)
	}
	clientCfg.HTTPClient = httpClient

	name := cfg.Provider
	if name == "" {
		name = ProviderOpenAI
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		name:   name,
		model:  cfg.Model,
	}
}

func (o *OpenAI) Name() string { return o.name }

// Complete sends a single user message and returns choices[0].message.content.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", o.mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", transportError(o.name, fmt.Errorf("empty choices"))
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAI) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &StatusError{Provider: o.name, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &StatusError{Provider: o.name, StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return transportError(o.name, err)
}

// headerTransport adds fixed headers to every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, v := range t.headers {
		clone.Header.Set(k, v)
	}
	return t.base.RoundTrip(clone)
}

// withHeaders returns a shallow copy of c whose transport sets headers.
func withHeaders(c *http.Client, headers map[string]string) *http.Client {
	if len(headers) == 0 {
		return c
	}
	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	copied := *c
	copied.Transport = &headerTransport{base: base, headers: headers}
	return &copied
}
