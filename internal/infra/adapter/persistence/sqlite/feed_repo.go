package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/repository"
)

// FeedRepo implements the FeedRepository interface using SQLite.
type FeedRepo struct{ db *sql.DB }

// NewFeedRepo creates a new SQLite-backed feed repository.
func NewFeedRepo(db *sql.DB) repository.FeedRepository {
	return &FeedRepo{db: db}
}

func (repo *FeedRepo) ListActive(ctx context.Context) ([]*entity.Feed, error) {
	const query = `
SELECT id, name, url, category, is_active, last_fetched_at, created_at
FROM feeds
WHERE is_active = 1
ORDER BY id ASC
`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListActive: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var feeds []*entity.Feed
	for rows.Next() {
		var (
			f                      entity.Feed
			category               sql.NullString
			lastFetched, createdAt sql.NullString
		)
		if err := rows.Scan(&f.ID, &f.Name, &f.URL, &category, &f.Active, &lastFetched, &createdAt); err != nil {
			return nil, fmt.Errorf("ListActive: Scan: %w", err)
		}
		f.Category = category.String
		f.LastFetchedAt = parseNullTime(lastFetched)
		if t := parseNullTime(createdAt); t != nil {
			f.CreatedAt = *t
		}
		feeds = append(feeds, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListActive: rows.Err: %w", err)
	}
	return feeds, nil
}

func (repo *FeedRepo) CountActive(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM feeds WHERE is_active = 1`
	var n int
	if err := repo.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("CountActive: QueryRowContext: %w", err)
	}
	return n, nil
}

// Add inserts feed unless its URL is already registered.
func (repo *FeedRepo) Add(ctx context.Context, feed *entity.Feed) (bool, error) {
	if err := feed.Validate(); err != nil {
		return false, fmt.Errorf("Add: %w", err)
	}

	const query = `
INSERT INTO feeds (name, url, category)
VALUES (?, ?, ?)
ON CONFLICT(url) DO NOTHING
`
	res, err := repo.db.ExecContext(ctx, query, feed.Name, feed.URL, feed.Category)
	if err != nil {
		return false, fmt.Errorf("Add: ExecContext: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Add: RowsAffected: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	if id, err := res.LastInsertId(); err == nil {
		feed.ID = id
	}
	feed.Active = true
	return true, nil
}

func (repo *FeedRepo) TouchFetched(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE feeds SET last_fetched_at = ? WHERE id = ?`
	if _, err := repo.db.ExecContext(ctx, query, formatTime(at), id); err != nil {
		return fmt.Errorf("TouchFetched: ExecContext: %w", err)
	}
	return nil
}
