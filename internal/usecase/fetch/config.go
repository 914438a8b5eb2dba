package fetch

import (
	"fmt"

	pkgconfig "rss-portal/pkg/config"
)

const (
	DefaultParallelism    = 5
	DefaultMaxArticles    = 2000
	DefaultSummaryRunes   = 500
	maxAllowedParallelism = 50
)

// Config controls one fetch run.
type Config struct {
	// Parallelism bounds concurrent feed downloads.
	Parallelism int

	// MaxArticles caps how many new articles a run inserts.
	MaxArticles int

	// ContentThreshold is the summary length in runes below which the article
	// page is fetched for more text. Zero disables enrichment.
	ContentThreshold int

	// SummaryRunes bounds stored summaries, including enriched ones.
	SummaryRunes int
}

func DefaultConfig() Config {
	return Config{
		Parallelism:  DefaultParallelism,
		MaxArticles:  DefaultMaxArticles,
		SummaryRunes: DefaultSummaryRunes,
	}
}

func (c Config) Validate() error {
	if err := pkgconfig.ValidateIntRange("parallelism", c.Parallelism, 1, maxAllowedParallelism); err != nil {
		return err
	}
	if c.MaxArticles <= 0 {
		return fmt.Errorf("max articles must be positive, got %d", c.MaxArticles)
	}
	if c.ContentThreshold < 0 {
		return fmt.Errorf("content threshold must be non-negative, got %d", c.ContentThreshold)
	}
	if c.SummaryRunes <= 0 {
		return fmt.Errorf("summary runes must be positive, got %d", c.SummaryRunes)
	}
	return nil
}

// LoadConfig reads FETCH_PARALLELISM, MAX_ARTICLES_PER_FETCH and, when
// CONTENT_FETCH_ENABLED is true, CONTENT_FETCH_THRESHOLD (default 80).
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	cfg.Parallelism = pkgconfig.GetEnvInt("FETCH_PARALLELISM", cfg.Parallelism)
	cfg.MaxArticles = pkgconfig.GetEnvInt("MAX_ARTICLES_PER_FETCH", cfg.MaxArticles)
	if pkgconfig.GetEnvBool("CONTENT_FETCH_ENABLED", false) {
		cfg.ContentThreshold = pkgconfig.GetEnvInt("CONTENT_FETCH_THRESHOLD", 80)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid fetch configuration: %w", err)
	}
	return cfg, nil
}
