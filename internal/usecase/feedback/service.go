package feedback

import (
	"context"
	"fmt"
	"log/slog"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/repository"
)

// Service records user feedback.
type Service struct {
	Articles repository.ArticleRepository
	Feedback repository.FeedbackRepository
}

// Submit validates kind and appends one feedback record for articleID.
func (s *Service) Submit(ctx context.Context, articleID int64, kind string) (entity.FeedbackKind, error) {
	k, err := entity.ParseFeedbackKind(kind)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFeedbackKind, err)
	}
	if articleID <= 0 {
		return "", ErrInvalidArticleID
	}

	article, err := s.Articles.Get(ctx, articleID)
	if err != nil {
		return "", fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return "", ErrArticleNotFound
	}

	if err := s.Feedback.Add(ctx, articleID, k); err != nil {
		return "", fmt.Errorf("add feedback: %w", err)
	}
	slog.InfoContext(ctx, "feedback recorded",
		slog.Int64("article_id", articleID),
		slog.String("feedback", string(k)))
	return k, nil
}
