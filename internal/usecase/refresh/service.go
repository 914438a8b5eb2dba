// Package refresh runs the full pipeline: fetch new articles, score them,
// publish the document and drop expired rows.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/observability/tracing"
	fetchUC "rss-portal/internal/usecase/fetch"
	publishUC "rss-portal/internal/usecase/publish"
	scoreUC "rss-portal/internal/usecase/score"
)

type Fetcher interface {
	FetchAllWithLimit(ctx context.Context, limit int) (fetchUC.Result, error)
}

type Scorer interface {
	ScoreBatchWithDelay(ctx context.Context, limit int, delay time.Duration) (entity.BatchResult, error)
}

type Publisher interface {
	Save(ctx context.Context) (*publishUC.Document, error)
}

// Maintainer covers retention and statistics, both served by the article
// service.
type Maintainer interface {
	Cleanup(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (entity.Stats, error)
}

// Alerter is told about runs that ended with step errors.
type Alerter interface {
	AlertRefreshFailure(ctx context.Context, runID string, errs []string) error
}

// Options tune one run. Zero values use the service defaults.
type Options struct {
	FetchLimit int
	ScoreLimit int
	ScoreDelay time.Duration
}

// Result reports every step of one run. A failed step leaves its counts at
// zero and adds a line to Errors.
type Result struct {
	RunID     string
	Fetch     fetchUC.Result
	Score     entity.BatchResult
	Published int
	Deleted   int64
	Stats     entity.Stats
	Errors    []string
	Duration  time.Duration
}

// Service wires the pipeline steps together.
type Service struct {
	Fetch    Fetcher
	Score    Scorer
	Publish  Publisher
	Articles Maintainer
	Alerts   Alerter
	Defaults Options
	NewRunID func() string
}

func NewService(fetch Fetcher, score Scorer, publish Publisher, articles Maintainer, defaults Options) *Service {
	return &Service{
		Fetch:    fetch,
		Score:    score,
		Publish:  publish,
		Articles: articles,
		Defaults: defaults,
		NewRunID: uuid.NewString,
	}
}

// Run executes every step in order. Step failures do not stop later steps;
// they are joined into the returned error. Only a cancelled context ends
// the run early.
func (s *Service) Run(ctx context.Context, opts Options) (Result, error) {
	opts = s.withDefaults(opts)
	result := Result{RunID: s.runID()}
	start := time.Now()

	ctx, span := tracing.GetTracer().Start(ctx, "refresh.Run")
	defer span.End()
	span.SetAttributes(attribute.String("refresh.run_id", result.RunID))

	logger := slog.Default().With(slog.String("run_id", result.RunID))
	logger.InfoContext(ctx, "refresh started",
		slog.Int("fetch_limit", opts.FetchLimit),
		slog.Int("score_limit", opts.ScoreLimit),
		slog.Duration("score_delay", opts.ScoreDelay))

	var errs []error
	fail := func(step string, err error) {
		errs = append(errs, fmt.Errorf("%s: %w", step, err))
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", step, err))
	}

	// 1. fetch
	fetched, err := s.Fetch.FetchAllWithLimit(ctx, opts.FetchLimit)
	result.Fetch = fetched
	if err != nil {
		logger.ErrorContext(ctx, "fetch step failed", slog.Any("error", err))
		fail("fetch", err)
	}
	if err := ctx.Err(); err != nil {
		return s.finish(ctx, logger, result, start), err
	}

	// 2. score
	scored, err := s.Score.ScoreBatchWithDelay(ctx, opts.ScoreLimit, opts.ScoreDelay)
	result.Score = scored
	switch {
	case errors.Is(err, scoreUC.ErrScoringUnavailable):
		logger.ErrorContext(ctx, "scoring unavailable, publishing without new scores",
			slog.String("failure_class", "config"),
			slog.Any("error", err))
		fail("score", err)
	case err != nil:
		logger.ErrorContext(ctx, "score step failed", slog.Any("error", err))
		fail("score", err)
	}
	if err := ctx.Err(); err != nil {
		return s.finish(ctx, logger, result, start), err
	}

	// 3. publish
	if doc, err := s.Publish.Save(ctx); err != nil {
		logger.ErrorContext(ctx, "publish step failed", slog.Any("error", err))
		fail("publish", err)
	} else {
		result.Published = doc.Stats.Displayed
	}

	// 4. cleanup
	if deleted, err := s.Articles.Cleanup(ctx); err != nil {
		logger.ErrorContext(ctx, "cleanup step failed", slog.Any("error", err))
		fail("cleanup", err)
	} else {
		result.Deleted = deleted
	}

	// 5. stats
	if st, err := s.Articles.Stats(ctx); err != nil {
		logger.WarnContext(ctx, "stats step failed", slog.Any("error", err))
		fail("stats", err)
	} else {
		result.Stats = st
	}

	result = s.finish(ctx, logger, result, start)
	if len(errs) > 0 && s.Alerts != nil {
		if err := s.Alerts.AlertRefreshFailure(ctx, result.RunID, result.Errors); err != nil {
			logger.WarnContext(ctx, "refresh alert not delivered", slog.Any("error", err))
		}
	}
	return result, errors.Join(errs...)
}

func (s *Service) finish(ctx context.Context, logger *slog.Logger, result Result, start time.Time) Result {
	result.Duration = time.Since(start)
	logger.InfoContext(ctx, "refresh finished",
		slog.Int("fetched", result.Fetch.Fetched),
		slog.Int("inserted", result.Fetch.Inserted),
		slog.Int("scored", result.Score.Scored),
		slog.Int("score_errors", result.Score.Errors),
		slog.Int("published", result.Published),
		slog.Int64("deleted", result.Deleted),
		slog.Int("total_articles", result.Stats.Total),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("duration", result.Duration))
	return result
}

func (s *Service) withDefaults(opts Options) Options {
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = s.Defaults.FetchLimit
	}
	if opts.ScoreLimit <= 0 {
		opts.ScoreLimit = s.Defaults.ScoreLimit
	}
	if opts.ScoreDelay <= 0 {
		opts.ScoreDelay = s.Defaults.ScoreDelay
	}
	return opts
}

func (s *Service) runID() string {
	if s.NewRunID == nil {
		return uuid.NewString()
	}
	return s.NewRunID()
}
