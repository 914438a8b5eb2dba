package repository

import (
	"context"
	"time"

	"rss-portal/internal/domain/entity"
)

// ScoredQuery selects articles for publishing.
type ScoredQuery struct {
	MinScore entity.Score // Only articles with score >= MinScore
	Limit    int          // Maximum rows; 0 means no limit
	// MaxPerFeed caps rows taken from a single feed; 0 disables the cap.
	MaxPerFeed int
}

type ArticleRepository interface {
	// ListUnscored returns up to limit articles with the unscored sentinel,
	// most recently fetched first.
	ListUnscored(ctx context.Context, limit int) ([]*entity.Article, error)
	// UpdateScore writes score and summary together in a single statement.
	UpdateScore(ctx context.Context, id int64, score entity.Score, summary string) error
	// Get returns (nil, nil) if the article does not exist.
	Get(ctx context.Context, id int64) (*entity.Article, error)
	// ListScored returns articles ordered by published_at DESC, score DESC
	// together with their like/dislike counts.
	ListScored(ctx context.Context, q ScoredQuery) ([]entity.ScoredArticle, error)
	Stats(ctx context.Context) (entity.Stats, error)
	// ExistsByGUIDBatch はバッチでGUID存在チェックを行い、N+1問題を解消する
	ExistsByGUIDBatch(ctx context.Context, guids []string) (map[string]bool, error)
	// Create inserts a new article. A duplicate GUID reports inserted=false
	// without an error.
	Create(ctx context.Context, article *entity.Article) (inserted bool, err error)
	// DeleteFetchedBefore removes articles fetched before cutoff and their
	// feedback in one transaction, returning the number of deleted articles.
	DeleteFetchedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
