package repository

import (
	"context"

	"rss-portal/internal/domain/entity"
)

type FeedbackRepository interface {
	Add(ctx context.Context, articleID int64, kind entity.FeedbackKind) error
	// RecentTitles returns distinct titles that received the given kind of
	// feedback, most recent feedback first.
	RecentTitles(ctx context.Context, kind entity.FeedbackKind, limit int) ([]entity.FeedbackTitle, error)
}
