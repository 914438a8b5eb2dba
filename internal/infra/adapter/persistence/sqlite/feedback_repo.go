package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/repository"
)

// FeedbackRepo implements the FeedbackRepository interface using SQLite.
type FeedbackRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewFeedbackRepo creates a new SQLite-backed feedback repository.
func NewFeedbackRepo(db *sql.DB) repository.FeedbackRepository {
	return &FeedbackRepo{db: db, now: time.Now}
}

func (repo *FeedbackRepo) Add(ctx context.Context, articleID int64, kind entity.FeedbackKind) error {
	if _, err := entity.ParseFeedbackKind(string(kind)); err != nil {
		return fmt.Errorf("Add: %w", err)
	}

	const query = `INSERT INTO feedback (article_id, feedback_type, created_at) VALUES (?, ?, ?)`
	if _, err := repo.db.ExecContext(ctx, query, articleID, string(kind), formatTime(repo.now())); err != nil {
		return fmt.Errorf("Add: ExecContext: %w", err)
	}
	return nil
}

// RecentTitles groups by article so a title liked twice appears once, ranked
// by its latest feedback.
func (repo *FeedbackRepo) RecentTitles(ctx context.Context, kind entity.FeedbackKind, limit int) ([]entity.FeedbackTitle, error) {
	if limit <= 0 {
		return nil, nil
	}

	const query = `
SELECT a.title, a.feed_name
FROM articles a
JOIN feedback f ON a.id = f.article_id
WHERE f.feedback_type = ?
GROUP BY a.title, a.feed_name
ORDER BY MAX(f.created_at) DESC, MAX(f.id) DESC
LIMIT ?
`
	rows, err := repo.db.QueryContext(ctx, query, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("RecentTitles: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	titles := make([]entity.FeedbackTitle, 0, limit)
	for rows.Next() {
		var (
			title    string
			feedName sql.NullString
		)
		if err := rows.Scan(&title, &feedName); err != nil {
			return nil, fmt.Errorf("RecentTitles: Scan: %w", err)
		}
		titles = append(titles, entity.FeedbackTitle{Title: title, FeedName: feedName.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("RecentTitles: rows.Err: %w", err)
	}
	return titles, nil
}
