package publish

import (
	"fmt"
	"time"

	"rss-portal/internal/domain/entity"
	pkgconfig "rss-portal/pkg/config"
)

const (
	DefaultMinScore   = entity.Score(3)
	DefaultLimit      = 100
	DefaultMaxPerFeed = 10
	DefaultOutputPath = "output/articles.json"

	// defaultLockTimeout bounds how long Save waits for another writer.
	defaultLockTimeout = 10 * time.Second
)

// Config controls the published document.
type Config struct {
	MinScore    entity.Score
	Limit       int
	MaxPerFeed  int
	OutputPath  string
	LockTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		MinScore:    DefaultMinScore,
		Limit:       DefaultLimit,
		MaxPerFeed:  DefaultMaxPerFeed,
		OutputPath:  DefaultOutputPath,
		LockTimeout: defaultLockTimeout,
	}
}

func (c Config) Validate() error {
	if c.MinScore < entity.MinScore || c.MinScore > entity.MaxScore {
		return fmt.Errorf("min score must be between %d and %d, got %d", entity.MinScore, entity.MaxScore, c.MinScore)
	}
	if c.Limit <= 0 {
		return fmt.Errorf("display limit must be positive, got %d", c.Limit)
	}
	if c.MaxPerFeed < 0 {
		return fmt.Errorf("max per feed must be non-negative, got %d", c.MaxPerFeed)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output path is required")
	}
	return pkgconfig.ValidatePositiveDuration(c.LockTimeout)
}

// LoadConfig reads MIN_SCORE_TO_DISPLAY, DISPLAY_LIMIT, MAX_DISPLAY_PER_FEED
// and OUTPUT_JSON.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	cfg.MinScore = entity.Score(pkgconfig.GetEnvInt("MIN_SCORE_TO_DISPLAY", int(cfg.MinScore)))
	cfg.Limit = pkgconfig.GetEnvInt("DISPLAY_LIMIT", cfg.Limit)
	cfg.MaxPerFeed = pkgconfig.GetEnvInt("MAX_DISPLAY_PER_FEED", cfg.MaxPerFeed)
	cfg.OutputPath = pkgconfig.GetEnvString("OUTPUT_JSON", cfg.OutputPath)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid publish configuration: %w", err)
	}
	return cfg, nil
}
