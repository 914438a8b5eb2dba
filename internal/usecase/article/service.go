package article

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/observability/metrics"
	"rss-portal/internal/repository"
	pkgconfig "rss-portal/pkg/config"
)

// DefaultRetention is how long articles are kept after being fetched.
const DefaultRetention = 14 * 24 * time.Hour

// Service provides article use cases.
type Service struct {
	Repo      repository.ArticleRepository
	Retention time.Duration
	Now       func() time.Time
}

// NewService reads ARTICLE_RETENTION_DAYS (default 14).
func NewService(repo repository.ArticleRepository) *Service {
	days := pkgconfig.GetEnvInt("ARTICLE_RETENTION_DAYS", 14)
	retention := time.Duration(days) * 24 * time.Hour
	if days <= 0 {
		retention = DefaultRetention
	}
	return &Service{Repo: repo, Retention: retention, Now: time.Now}
}

// Get retrieves an article by ID.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Article, error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}
	a, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if a == nil {
		return nil, ErrArticleNotFound
	}
	return a, nil
}

// Stats returns store counts and refreshes the store gauges.
func (s *Service) Stats(ctx context.Context) (entity.Stats, error) {
	st, err := s.Repo.Stats(ctx)
	if err != nil {
		return entity.Stats{}, fmt.Errorf("stats: %w", err)
	}
	metrics.UpdateStoreStats(st.Total, st.Scored, st.Feeds)
	return st, nil
}

// ListScored returns published candidates; see repository.ScoredQuery.
func (s *Service) ListScored(ctx context.Context, q repository.ScoredQuery) ([]entity.ScoredArticle, error) {
	if err := q.MinScore.Validate(); err != nil {
		return nil, fmt.Errorf("min score: %w", err)
	}
	if q.Limit < 0 || q.MaxPerFeed < 0 {
		return nil, &entity.ValidationError{Field: "limit", Message: "must not be negative"}
	}
	rows, err := s.Repo.ListScored(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list scored articles: %w", err)
	}
	return rows, nil
}

// Cleanup deletes articles fetched more than Retention ago together with
// their feedback, and returns the number of deleted articles.
func (s *Service) Cleanup(ctx context.Context) (int64, error) {
	retention := s.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}
	cutoff := s.now().Add(-retention)

	deleted, err := s.Repo.DeleteFetchedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup articles: %w", err)
	}
	metrics.RecordCleanup(deleted)
	if deleted > 0 {
		slog.InfoContext(ctx, "old articles deleted",
			slog.Int64("deleted", deleted),
			slog.Time("cutoff", cutoff))
	}
	return deleted, nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
