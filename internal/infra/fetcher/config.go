package fetcher

import (
	"fmt"
	"time"

	pkgconfig "rss-portal/pkg/config"
)

// Config bounds article page downloads.
type Config struct {
	// Timeout covers one page download including redirects.
	Timeout time.Duration

	// MaxBodySize is the largest accepted response in bytes.
	MaxBodySize int64

	MaxRedirects int

	// DenyPrivateIPs rejects hosts that resolve to loopback, private or
	// link-local addresses, on the first request and on every redirect.
	DenyPrivateIPs bool
}

func DefaultConfig() Config {
	return Config{
		Timeout:        10 * time.Second,
		MaxBodySize:    5 * 1024 * 1024, // 5MB
		MaxRedirects:   5,
		DenyPrivateIPs: true,
	}
}

func (c *Config) Validate() error {
	if err := pkgconfig.ValidatePositiveDuration(c.Timeout); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	const minBodySize, maxBodySize = int64(1024), int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}
	return pkgconfig.ValidateIntRange("max redirects", c.MaxRedirects, 0, 10)
}

// LoadConfig reads CONTENT_FETCH_TIMEOUT, CONTENT_FETCH_MAX_BODY_SIZE,
// CONTENT_FETCH_MAX_REDIRECTS and CONTENT_FETCH_DENY_PRIVATE_IPS.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	cfg.Timeout = pkgconfig.GetEnvDuration("CONTENT_FETCH_TIMEOUT", cfg.Timeout)
	cfg.MaxBodySize = int64(pkgconfig.GetEnvInt("CONTENT_FETCH_MAX_BODY_SIZE", int(cfg.MaxBodySize)))
	cfg.MaxRedirects = pkgconfig.GetEnvInt("CONTENT_FETCH_MAX_REDIRECTS", cfg.MaxRedirects)
	cfg.DenyPrivateIPs = pkgconfig.GetEnvBool("CONTENT_FETCH_DENY_PRIVATE_IPS", cfg.DenyPrivateIPs)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid content fetch configuration: %w", err)
	}
	return cfg, nil
}
