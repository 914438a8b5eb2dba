package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	pkgconfig "rss-portal/pkg/config"
)

// WorkerConfig controls the scheduled refresh.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// An invalid value never stops the worker: LoadConfigFromEnv logs it,
// counts a fallback and keeps the default for that field.
type WorkerConfig struct {
	// CronSchedule is a five-field cron expression.
	// Default: "0 */6 * * *" (every six hours)
	CronSchedule string

	// Timezone is the IANA name the schedule is evaluated in.
	// Default: "Asia/Tokyo"
	Timezone string

	// FetchLimit caps new articles per run. Zero uses MAX_ARTICLES_PER_FETCH.
	FetchLimit int

	// ScoreLimit is how many unscored articles one run scores.
	// Range: 1-500
	// Default: 50
	ScoreLimit int

	// ScoreDelay is the pause between model calls.
	// Default: 1.5s
	ScoreDelay time.Duration

	// JobTimeout bounds one refresh run.
	// Range: 1m-6h
	// Default: 30 minutes
	JobTimeout time.Duration

	// HealthPort serves /health, /health/ready and /metrics.
	// Range: 1024-65535
	// Default: 9091
	HealthPort int

	// WatchOPML re-imports the OPML file when it changes.
	WatchOPML bool
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule: "0 */6 * * *",
		Timezone:     "Asia/Tokyo", // JST
		ScoreLimit:   50,
		ScoreDelay:   1500 * time.Millisecond,
		JobTimeout:   30 * time.Minute,
		HealthPort:   9091,
	}
}

const (
	maxScoreLimit = 500
	minJobTimeout = time.Minute
	maxJobTimeout = 6 * time.Hour
)

func validateScoreLimit(v int) error { return pkgconfig.ValidateIntRange("score limit", v, 1, maxScoreLimit) }

func validateFetchLimit(v int) error {
	if v < 0 {
		return fmt.Errorf("fetch limit must be non-negative, got %d", v)
	}
	return nil
}

func validateJobTimeout(d time.Duration) error {
	return pkgconfig.ValidateDurationRange(d, minJobTimeout, maxJobTimeout)
}

func validateHealthPort(v int) error { return pkgconfig.ValidateIntRange("health port", v, 1024, 65535) }

// Validate checks every field and reports all problems at once.
func (c *WorkerConfig) Validate() error {
	var errs []error
	if err := pkgconfig.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("CronSchedule: %w", err))
	}
	if err := pkgconfig.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("Timezone: %w", err))
	}
	if err := validateFetchLimit(c.FetchLimit); err != nil {
		errs = append(errs, fmt.Errorf("FetchLimit: %w", err))
	}
	if err := validateScoreLimit(c.ScoreLimit); err != nil {
		errs = append(errs, fmt.Errorf("ScoreLimit: %w", err))
	}
	if err := pkgconfig.ValidateNonNegativeDuration(c.ScoreDelay); err != nil {
		errs = append(errs, fmt.Errorf("ScoreDelay: %w", err))
	}
	if err := validateJobTimeout(c.JobTimeout); err != nil {
		errs = append(errs, fmt.Errorf("JobTimeout: %w", err))
	}
	if err := validateHealthPort(c.HealthPort); err != nil {
		errs = append(errs, fmt.Errorf("HealthPort: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation errors: %w", errors.Join(errs...))
	}
	return nil
}

// Location loads Timezone, falling back to UTC.
func (c *WorkerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HealthAddr is the listen address of the health server.
func (c *WorkerConfig) HealthAddr() string {
	return fmt.Sprintf(":%d", c.HealthPort)
}

// LoadConfigFromEnv reads the worker settings with a fail-open strategy:
// each invalid value is replaced by its default, logged at WARN and counted
// in metrics. The returned error is reserved for a default set that itself
// fails validation.
//
// Environment variables:
//   - CRON_SCHEDULE, WORKER_TIMEZONE
//   - WORKER_FETCH_LIMIT, WORKER_SCORE_LIMIT, WORKER_SCORE_DELAY
//   - WORKER_JOB_TIMEOUT, WORKER_HEALTH_PORT, OPML_WATCH
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	l := loader{logger: logger, metrics: metrics}

	cfg := &WorkerConfig{
		CronSchedule: orDefault(l, "CronSchedule", pkgconfig.GetEnvString("CRON_SCHEDULE", def.CronSchedule), def.CronSchedule, pkgconfig.ValidateCronSchedule),
		Timezone:     orDefault(l, "Timezone", pkgconfig.GetEnvString("WORKER_TIMEZONE", def.Timezone), def.Timezone, pkgconfig.ValidateTimezone),
		FetchLimit:   orDefault(l, "FetchLimit", pkgconfig.GetEnvInt("WORKER_FETCH_LIMIT", def.FetchLimit), def.FetchLimit, validateFetchLimit),
		ScoreLimit:   orDefault(l, "ScoreLimit", pkgconfig.GetEnvInt("WORKER_SCORE_LIMIT", def.ScoreLimit), def.ScoreLimit, validateScoreLimit),
		ScoreDelay:   orDefault(l, "ScoreDelay", pkgconfig.GetEnvDuration("WORKER_SCORE_DELAY", def.ScoreDelay), def.ScoreDelay, pkgconfig.ValidateNonNegativeDuration),
		JobTimeout:   orDefault(l, "JobTimeout", pkgconfig.GetEnvDuration("WORKER_JOB_TIMEOUT", def.JobTimeout), def.JobTimeout, validateJobTimeout),
		HealthPort:   orDefault(l, "HealthPort", pkgconfig.GetEnvInt("WORKER_HEALTH_PORT", def.HealthPort), def.HealthPort, validateHealthPort),
		WatchOPML:    pkgconfig.GetEnvBool("OPML_WATCH", def.WatchOPML),
	}

	if metrics != nil {
		metrics.RecordLoadTimestamp()
	}

	// デフォルト値自体が不正な場合のみエラー
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("worker configuration invalid after fallback: %w", err)
	}
	return cfg, nil
}

type loader struct {
	logger  *slog.Logger
	metrics *WorkerMetrics
}

// orDefault returns value when it validates and def otherwise.
func orDefault[T any](l loader, field string, value, def T, validate func(T) error) T {
	err := validate(value)
	if err == nil {
		return value
	}
	l.logger.Warn("invalid worker configuration, using default",
		slog.String("field", field),
		slog.Any("value", value),
		slog.Any("default", def),
		slog.Any("error", err))
	if l.metrics != nil {
		l.metrics.RecordFallback(field)
	}
	return def
}
