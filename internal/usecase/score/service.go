package score

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/observability/metrics"
	"rss-portal/internal/observability/tracing"
	"rss-portal/internal/repository"
	"rss-portal/internal/utils/text"
)

// DefaultBatchLimit is used when ScoreBatch is called with a non-positive limit.
const DefaultBatchLimit = 20

// Scorer is the model client seen from the orchestrator.
type Scorer interface {
	// Ready reports a missing credential before any article is touched.
	Ready() error
	// Score returns the raw, unclamped result or a classified error.
	Score(ctx context.Context, prompt string) (*entity.ScoringResult, error)
}

// Pauser spaces out consecutive model calls.
type Pauser interface {
	Pause(ctx context.Context, d time.Duration) error
}

// SleepPauser waits on a timer and returns early when ctx is done.
type SleepPauser struct{}

func (SleepPauser) Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

// Service drives scoring passes. It processes one article at a time.
type Service struct {
	Articles repository.ArticleRepository
	Prompts  *PromptBuilder
	Scorer   Scorer
	Pauser   Pauser
	Config   Config
	Logger   *slog.Logger
}

// NewService wires a scoring service with a real sleeping pauser.
func NewService(
	articles repository.ArticleRepository,
	feedback repository.FeedbackRepository,
	scorer Scorer,
	cfg Config,
) *Service {
	return &Service{
		Articles: articles,
		Prompts:  NewPromptBuilder(feedback, cfg),
		Scorer:   scorer,
		Pauser:   SleepPauser{},
		Config:   cfg,
		Logger:   slog.Default(),
	}
}

// ScoreBatch scores up to limit unscored articles, newest first, pausing
// Config.Delay after each one. A failed article gets the fallback score so
// that it is not picked up again. With no model credential the pass stops
// before reading anything and returns ErrScoringUnavailable.
func (s *Service) ScoreBatch(ctx context.Context, limit int) (entity.BatchResult, error) {
	return s.ScoreBatchWithDelay(ctx, limit, s.Config.Delay)
}

// ScoreBatchWithDelay is ScoreBatch with an explicit pause length.
func (s *Service) ScoreBatchWithDelay(ctx context.Context, limit int, delay time.Duration) (entity.BatchResult, error) {
	var result entity.BatchResult
	logger := s.logger()

	if err := s.Scorer.Ready(); err != nil {
		logger.ErrorContext(ctx, "scoring pass skipped",
			slog.String("failure_class", "config"),
			slog.Any("error", err))
		return result, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}

	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	ctx, span := tracing.GetTracer().Start(ctx, "score.Batch")
	defer span.End()
	start := time.Now()

	articles, err := s.Articles.ListUnscored(ctx, limit)
	if err != nil {
		span.SetStatus(codes.Error, "list unscored")
		return result, fmt.Errorf("list unscored articles: %w", err)
	}
	if len(articles) == 0 {
		logger.InfoContext(ctx, "no articles to score")
		return result, nil
	}

	logger.InfoContext(ctx, "scoring articles", slog.Int("count", len(articles)))

	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return s.finish(ctx, span, result, start), err
		}
		result.Processed++

		score, summary, err := s.scoreOne(ctx, article)
		if err != nil {
			result.Errors++
			s.writeFallback(ctx, article, err)
		} else if werr := s.Articles.UpdateScore(ctx, article.ID, score, summary); werr != nil {
			result.Errors++
			metrics.RecordArticleScored("write_error")
			logger.ErrorContext(ctx, "failed to persist score",
				slog.Int64("article_id", article.ID),
				slog.Any("error", werr))
		} else {
			result.Scored++
			metrics.RecordArticleScored("scored")
			logger.InfoContext(ctx, "article scored",
				slog.Int64("article_id", article.ID),
				slog.Int("score", int(score)),
				slog.String("title", text.TruncateWithEllipsis(article.Title, 50)))
		}

		// pause after every article, whatever the outcome
		if err := s.pauser().Pause(ctx, delay); err != nil {
			return s.finish(ctx, span, result, start), err
		}
	}

	return s.finish(ctx, span, result, start), nil
}

func (s *Service) finish(ctx context.Context, span trace.Span, result entity.BatchResult, start time.Time) entity.BatchResult {
	span.SetAttributes(
		attribute.Int("score.processed", result.Processed),
		attribute.Int("score.scored", result.Scored),
		attribute.Int("score.errors", result.Errors),
	)
	s.logger().InfoContext(ctx, "scoring pass finished",
		slog.Int("processed", result.Processed),
		slog.Int("scored", result.Scored),
		slog.Int("errors", result.Errors),
		slog.Duration("duration", time.Since(start)))
	return result
}

// ScoreArticle rescores a single article on demand. It returns ok=false when
// the model produced no usable result; nothing is written in that case.
func (s *Service) ScoreArticle(ctx context.Context, id int64) (entity.Score, bool, error) {
	if id <= 0 {
		return entity.Unscored, false, ErrInvalidArticleID
	}
	if err := s.Scorer.Ready(); err != nil {
		return entity.Unscored, false, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}

	article, err := s.Articles.Get(ctx, id)
	if err != nil {
		return entity.Unscored, false, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return entity.Unscored, false, ErrArticleNotFound
	}

	prompt, err := s.Prompts.Build(ctx, InputFromArticle(article))
	if err != nil {
		return entity.Unscored, false, fmt.Errorf("build prompt: %w", err)
	}

	score, summary, err := s.evaluate(ctx, prompt)
	if err != nil {
		s.logger().WarnContext(ctx, "single article scoring produced no result",
			slog.Int64("article_id", id),
			slog.Any("error", err))
		return entity.Unscored, false, nil
	}

	if err := s.Articles.UpdateScore(ctx, id, score, summary); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return entity.Unscored, false, ErrArticleNotFound
		}
		return entity.Unscored, false, fmt.Errorf("update score: %w", err)
	}
	metrics.RecordArticleScored("scored")
	return score, true, nil
}

// scoreOne builds the prompt and asks the model for one article.
func (s *Service) scoreOne(ctx context.Context, article *entity.Article) (entity.Score, string, error) {
	prompt, err := s.Prompts.Build(ctx, InputFromArticle(article))
	if err != nil {
		return entity.Unscored, "", fmt.Errorf("build prompt: %w", err)
	}
	return s.evaluate(ctx, prompt)
}

// evaluate calls the model and normalizes its answer: the score is clamped
// into range and the summary is cut to SummaryMaxRunes.
func (s *Service) evaluate(ctx context.Context, prompt string) (entity.Score, string, error) {
	res, err := s.Scorer.Score(ctx, prompt)
	if err != nil {
		return entity.Unscored, "", err
	}
	if res == nil {
		return entity.Unscored, "", fmt.Errorf("model returned no result")
	}
	return entity.ClampScore(res.Score), text.Truncate(res.Summary, s.summaryMax()), nil
}

func (s *Service) writeFallback(ctx context.Context, article *entity.Article, cause error) {
	logger := s.logger()
	logger.WarnContext(ctx, "scoring failed, writing fallback score",
		slog.Int64("article_id", article.ID),
		slog.Int("fallback_score", int(entity.FallbackScore)),
		slog.Any("error", cause))

	if err := s.Articles.UpdateScore(ctx, article.ID, entity.FallbackScore, entity.FallbackSummary); err != nil {
		metrics.RecordArticleScored("write_error")
		logger.ErrorContext(ctx, "failed to persist fallback score",
			slog.Int64("article_id", article.ID),
			slog.Any("error", err))
		return
	}
	metrics.RecordArticleScored("fallback")
}

func (s *Service) summaryMax() int {
	if s.Config.SummaryMaxRunes <= 0 {
		return DefaultSummaryMaxRunes
	}
	return s.Config.SummaryMaxRunes
}

func (s *Service) pauser() Pauser {
	if s.Pauser == nil {
		return SleepPauser{}
	}
	return s.Pauser
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
