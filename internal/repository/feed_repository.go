package repository

import (
	"context"
	"time"

	"rss-portal/internal/domain/entity"
)

type FeedRepository interface {
	ListActive(ctx context.Context) ([]*entity.Feed, error)
	CountActive(ctx context.Context) (int, error)
	// Add registers a feed. An already known URL reports inserted=false.
	Add(ctx context.Context, feed *entity.Feed) (inserted bool, err error)
	TouchFetched(ctx context.Context, id int64, at time.Time) error
}
