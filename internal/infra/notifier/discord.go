package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"rss-portal/internal/resilience/retry"
	"rss-portal/internal/utils/text"
	pkgconfig "rss-portal/pkg/config"
)

// ErrInvalidWebhookURL is returned by DiscordConfig.Validate.
var ErrInvalidWebhookURL = errors.New("invalid discord webhook url")

// DiscordConfig contains configuration for Discord webhook alerts.
type DiscordConfig struct {
	Enabled    bool
	WebhookURL string // includes the webhook token
	Timeout    time.Duration
}

// Validate accepts only https://discord.com/api/webhooks/... URLs.
func (c DiscordConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	u, err := url.Parse(c.WebhookURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWebhookURL, err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be https", ErrInvalidWebhookURL)
	}
	if u.Host != "discord.com" && u.Host != "discordapp.com" {
		return fmt.Errorf("%w: unexpected host %q", ErrInvalidWebhookURL, u.Host)
	}
	if !strings.HasPrefix(u.Path, "/api/webhooks/") {
		return fmt.Errorf("%w: unexpected path", ErrInvalidWebhookURL)
	}
	return nil
}

// LoadDiscordConfig reads DISCORD_ENABLED and DISCORD_WEBHOOK_URL. Setting
// only the URL enables alerts.
func LoadDiscordConfig() (DiscordConfig, error) {
	webhook := pkgconfig.GetEnvString("DISCORD_WEBHOOK_URL", "")
	cfg := DiscordConfig{
		Enabled:    pkgconfig.GetEnvBool("DISCORD_ENABLED", webhook != ""),
		WebhookURL: webhook,
		Timeout:    pkgconfig.GetEnvDuration("DISCORD_TIMEOUT", 10*time.Second),
	}
	if err := cfg.Validate(); err != nil {
		return DiscordConfig{}, err
	}
	return cfg, nil
}

// New returns a Discord notifier for an enabled config and a no-op one
// otherwise.
func New(cfg DiscordConfig) Notifier {
	if !cfg.Enabled || cfg.WebhookURL == "" {
		return NewNoOpNotifier()
	}
	return NewDiscordNotifier(cfg)
}

// DiscordNotifier posts alerts as embeds to a Discord webhook.
type DiscordNotifier struct {
	config      DiscordConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	retryConfig retry.Config
	now         func() time.Time
}

// NewDiscordNotifier limits deliveries to 0.5 req/s with a burst of 3,
// below Discord's 30 requests per minute.
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DiscordNotifier{
		config:      config,
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: NewRateLimiter(0.5, 3),
		retryConfig: retry.NotifyConfig(),
		now:         time.Now,
	}
}

// DiscordWebhookPayload represents the JSON payload sent to Discord webhook.
type DiscordWebhookPayload struct {
	Username string         `json:"username,omitempty"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Color       int                `json:"color"`
	Footer      DiscordEmbedFooter `json:"footer"`
	Timestamp   string             `json:"timestamp"`
}

type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

const (
	// Discord limits
	maxTitleRunes       = 256
	maxDescriptionRunes = 4096

	colorError   = 0xED4245
	colorWarning = 0xFEE75C

	webhookUsername = "RSS Portal"
)

func (d *DiscordNotifier) buildPayload(alert Alert, requestID string) DiscordWebhookPayload {
	color := colorWarning
	if alert.Level == LevelError {
		color = colorError
	}
	at := alert.At
	if at.IsZero() {
		at = d.now()
	}
	return DiscordWebhookPayload{
		Username: webhookUsername,
		Embeds: []DiscordEmbed{{
			Title:       text.Truncate(alert.Title, maxTitleRunes),
			Description: text.TruncateWithEllipsis(alert.Message, maxDescriptionRunes-3),
			Color:       color,
			Footer:      DiscordEmbedFooter{Text: "request " + requestID},
			Timestamp:   at.UTC().Format(time.RFC3339),
		}},
	}
}

// Notify sends alert, waiting for the rate limiter and retrying 5xx and 429
// responses with backoff.
func (d *DiscordNotifier) Notify(ctx context.Context, alert Alert) error {
	requestID := uuid.NewString()
	logger := slog.Default().With(slog.String("request_id", requestID))

	if err := d.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(d.buildPayload(alert, requestID))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	err = retry.WithBackoff(ctx, d.retryConfig, func() error {
		return d.send(ctx, body)
	})
	if err != nil {
		logger.ErrorContext(ctx, "discord alert failed",
			slog.String("title", alert.Title),
			slog.Any("error", err))
		return fmt.Errorf("discord alert: %w", err)
	}
	logger.InfoContext(ctx, "discord alert sent", slog.String("title", alert.Title))
	return nil
}

// AlertAccountFailure implements the model client's alert hook.
func (d *DiscordNotifier) AlertAccountFailure(ctx context.Context, provider string, err error) error {
	return d.Notify(ctx, accountFailureAlert(provider, err, d.now()))
}

// AlertRefreshFailure implements the refresh pipeline's alert hook.
func (d *DiscordNotifier) AlertRefreshFailure(ctx context.Context, runID string, errs []string) error {
	return d.Notify(ctx, refreshFailureAlert(runID, errs, d.now()))
}

func (d *DiscordNotifier) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.config.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		// トークンを含むURLはエラーに載せない
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &retry.HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
}
