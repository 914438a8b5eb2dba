// Package llm talks to a hosted language model and turns its free-form reply
// into a relevance score. Client is provider agnostic; wire shapes live in the
// Provider adapters (gemini.go, openai.go, claude.go).
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/observability/tracing"
	"rss-portal/internal/utils/text"
)

// rawPreviewRunes is how much of an unparseable reply goes to the log.
const rawPreviewRunes = 100

// AccountAlerter is told about billing or authorization failures.
type AccountAlerter interface {
	AlertAccountFailure(ctx context.Context, provider string, err error) error
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Client issues one scoring call per article. It never retries; a 429 is
// answered by waiting out the cooldown and reporting ErrRateLimited.
type Client struct {
	provider Provider
	cfg      Config
	sleep    SleepFunc
	metrics  MetricsRecorder
	alerter  AccountAlerter
	logger   *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithProvider replaces the adapter chosen from Config.Provider.
func WithProvider(p Provider) Option {
	return func(c *Client) { c.provider = p }
}

// WithSleep replaces the cooldown wait.
func WithSleep(fn SleepFunc) Option {
	return func(c *Client) { c.sleep = fn }
}

func WithMetrics(m MetricsRecorder) Option {
	return func(c *Client) { c.metrics = m }
}

func WithAlerter(a AccountAlerter) Option {
	return func(c *Client) { c.alerter = a }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient builds a client for cfg. A missing API key is not an error here;
// Ready and Score report it.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	c := &Client{
		cfg:     cfg,
		sleep:   sleepContext,
		metrics: noopMetrics{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.provider == nil {
		p, err := NewProvider(cfg, &http.Client{Timeout: cfg.Timeout})
		if err != nil {
			return nil, err
		}
		c.provider = p
	}
	return c, nil
}

// Ready returns ErrMissingCredential when no API key is configured.
func (c *Client) Ready() error {
	if !c.cfg.HasCredential() {
		return ErrMissingCredential
	}
	return nil
}

// ProviderName returns the adapter in use.
func (c *Client) ProviderName() string { return c.provider.Name() }

// Score sends prompt and extracts {score, summary} from the reply. The score
// is returned unclamped.
func (c *Client) Score(ctx context.Context, prompt string) (*entity.ScoringResult, error) {
	name := c.provider.Name()
	if err := c.Ready(); err != nil {
		c.metrics.RecordRequest(name, FailureClass(err), 0)
		return nil, err
	}

	ctx, span := tracing.GetTracer().Start(ctx, "llm.Score",
		trace.WithAttributes(
			attribute.String("llm.provider", name),
			attribute.String("llm.model", c.cfg.Model),
		))
	defer span.End()

	start := time.Now()
	raw, err := c.complete(ctx, prompt)
	duration := time.Since(start)

	if err != nil {
		err = c.handleFailure(ctx, name, err)
		c.metrics.RecordRequest(name, FailureClass(err), duration)
		span.RecordError(err)
		span.SetStatus(codes.Error, FailureClass(err))
		return nil, err
	}

	result, ok := ExtractResult(raw)
	if !ok {
		c.logger.WarnContext(ctx, "model reply had no recoverable score",
			slog.String("provider", name),
			slog.String("failure_class", "parse"),
			slog.String("raw_preview", text.Truncate(raw, rawPreviewRunes)),
			slog.Duration("duration", duration))
		c.metrics.RecordRequest(name, "parse", duration)
		span.SetStatus(codes.Error, "parse")
		return nil, fmt.Errorf("%w: %s reply", ErrParse, name)
	}

	c.logger.DebugContext(ctx, "model call completed",
		slog.String("provider", name),
		slog.Int("score", result.Score),
		slog.Duration("duration", duration))
	c.metrics.RecordRequest(name, "success", duration)
	span.SetAttributes(attribute.Int("llm.score", result.Score))
	return &result, nil
}

// complete runs the adapter under the per-call timeout.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	return c.provider.Complete(ctx, Request{
		Prompt:      prompt,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
}

// handleFailure logs the failure and runs the class specific side effects:
// the rate-limit cooldown and the operator alert.
func (c *Client) handleFailure(ctx context.Context, name string, err error) error {
	switch {
	case errors.Is(err, ErrRateLimited):
		c.logger.WarnContext(ctx, "model rate limited, cooling down",
			slog.String("provider", name),
			slog.String("failure_class", "rate_limited"),
			slog.Duration("cooldown", c.cfg.RateLimitCooldown))
		if serr := c.sleep(ctx, c.cfg.RateLimitCooldown); serr != nil {
			return fmt.Errorf("%w (cooldown interrupted: %v)", err, serr)
		}
		return err

	case errors.Is(err, ErrAccount):
		c.logger.ErrorContext(ctx, "model account problem, operator action needed",
			slog.String("provider", name),
			slog.String("failure_class", "account"),
			slog.Any("error", err))
		if c.alerter != nil {
			if aerr := c.alerter.AlertAccountFailure(ctx, name, err); aerr != nil {
				c.logger.WarnContext(ctx, "account alert failed", slog.Any("error", aerr))
			}
		}
		return err

	case errors.Is(err, ErrTransport):
		c.logger.WarnContext(ctx, "model call failed",
			slog.String("provider", name),
			slog.String("failure_class", "transport"),
			slog.Any("error", err))
		return err

	default:
		// adapters are expected to classify; anything else is transport
		c.logger.WarnContext(ctx, "model call failed",
			slog.String("provider", name),
			slog.String("failure_class", "transport"),
			slog.Any("error", err))
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
