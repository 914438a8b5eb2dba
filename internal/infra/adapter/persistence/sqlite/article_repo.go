// Package sqlite provides SQLite implementations of repository interfaces.
// Timestamps are stored as RFC 3339 text in UTC so that lexical and
// chronological order agree.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/repository"
)

// ArticleRepo implements the ArticleRepository interface using SQLite.
type ArticleRepo struct {
	db      *sql.DB
	builder *ScoredQueryBuilder
}

// NewArticleRepo creates a new SQLite-backed article repository.
func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db, builder: NewScoredQueryBuilder()}
}

// ListUnscored returns the most recently fetched articles still carrying the
// unscored sentinel.
func (repo *ArticleRepo) ListUnscored(ctx context.Context, limit int) ([]*entity.Article, error) {
	const query = `
SELECT id, guid, feed_name, title, link, summary, published_at, fetched_at, ai_score, score_summary
FROM articles
WHERE ai_score = 0
ORDER BY fetched_at DESC
LIMIT ?
`
	rows, err := repo.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ListUnscored: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("ListUnscored: Scan: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListUnscored: rows.Err: %w", err)
	}
	return articles, nil
}

// UpdateScore overwrites score and summary in one statement, so readers never
// observe one without the other.
func (repo *ArticleRepo) UpdateScore(ctx context.Context, id int64, score entity.Score, summary string) error {
	if err := score.Validate(); err != nil {
		return fmt.Errorf("UpdateScore: %w", err)
	}

	const query = `UPDATE articles SET ai_score = ?, score_summary = ? WHERE id = ?`
	res, err := repo.db.ExecContext(ctx, query, int(score), summary, id)
	if err != nil {
		return fmt.Errorf("UpdateScore: ExecContext: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateScore: RowsAffected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("UpdateScore: id %d: %w", id, entity.ErrNotFound)
	}
	return nil
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	const query = `
SELECT id, guid, feed_name, title, link, summary, published_at, fetched_at, ai_score, score_summary
FROM articles
WHERE id = ?
LIMIT 1
`
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("Get: QueryRowContext: %w", err)
	}
	return article, nil
}

// ListScored returns the publish ranking with feedback counts.
func (repo *ArticleRepo) ListScored(ctx context.Context, q repository.ScoredQuery) ([]entity.ScoredArticle, error) {
	query, args, err := repo.builder.Build(q)
	if err != nil {
		return nil, fmt.Errorf("ListScored: build: %w", err)
	}

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListScored: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]entity.ScoredArticle, 0, q.Limit)
	for rows.Next() {
		var (
			sa                     entity.ScoredArticle
			feedName, summary      sql.NullString
			scoreSummary           sql.NullString
			publishedAt, fetchedAt sql.NullString
			score                  int
		)
		if err := rows.Scan(
			&sa.ID, &sa.GUID, &feedName, &sa.Title, &sa.Link, &summary,
			&publishedAt, &fetchedAt, &score, &scoreSummary,
			&sa.Likes, &sa.Dislikes,
		); err != nil {
			return nil, fmt.Errorf("ListScored: Scan: %w", err)
		}
		sa.FeedName = feedName.String
		sa.Summary = summary.String
		sa.ScoreSummary = scoreSummary.String
		sa.Score = entity.Score(score)
		sa.PublishedAt = parseNullTime(publishedAt)
		if t := parseNullTime(fetchedAt); t != nil {
			sa.FetchedAt = *t
		}
		result = append(result, sa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListScored: rows.Err: %w", err)
	}
	return result, nil
}

// Stats counts all, scored and high-score articles plus active feeds.
func (repo *ArticleRepo) Stats(ctx context.Context) (entity.Stats, error) {
	const query = `
SELECT
    COUNT(*),
    COALESCE(SUM(CASE WHEN ai_score > 0 THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN ai_score >= ? THEN 1 ELSE 0 END), 0),
    (SELECT COUNT(*) FROM feeds WHERE is_active = 1)
FROM articles
`
	var s entity.Stats
	if err := repo.db.QueryRowContext(ctx, query, int(entity.HighScore)).
		Scan(&s.Total, &s.Scored, &s.HighScore, &s.Feeds); err != nil {
		return entity.Stats{}, fmt.Errorf("Stats: QueryRowContext: %w", err)
	}
	return s, nil
}

// ExistsByGUIDBatch はバッチでGUID存在チェックを行い、N+1問題を解消する
func (repo *ArticleRepo) ExistsByGUIDBatch(ctx context.Context, guids []string) (map[string]bool, error) {
	if len(guids) == 0 {
		return make(map[string]bool), nil
	}

	// SQLiteのプレースホルダ上限は999
	const maxPlaceholders = 999
	if len(guids) > maxPlaceholders {
		return nil, fmt.Errorf("ExistsByGUIDBatch: too many GUIDs (%d > %d)", len(guids), maxPlaceholders)
	}

	placeholders := make([]string, len(guids))
	args := make([]interface{}, len(guids))
	for i, guid := range guids {
		placeholders[i] = "?"
		args[i] = guid
	}

	query := fmt.Sprintf("SELECT guid FROM articles WHERE guid IN (%s)",
		strings.Join(placeholders, ","))

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ExistsByGUIDBatch: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]bool, len(guids))
	for rows.Next() {
		var guid string
		if err := rows.Scan(&guid); err != nil {
			return nil, fmt.Errorf("ExistsByGUIDBatch: Scan: %w", err)
		}
		result[guid] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExistsByGUIDBatch: rows.Err: %w", err)
	}
	return result, nil
}

// Create inserts article and sets its ID. ON CONFLICT keeps the first copy of
// a GUID, which reports inserted=false.
func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) (bool, error) {
	if err := article.Validate(); err != nil {
		return false, fmt.Errorf("Create: %w", err)
	}

	const query = `
INSERT INTO articles (guid, feed_name, title, link, summary, published_at, fetched_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(guid) DO NOTHING
`
	fetchedAt := article.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	res, err := repo.db.ExecContext(ctx, query,
		article.GUID, article.FeedName, article.Title, article.Link, article.Summary,
		formatNullTime(article.PublishedAt), formatTime(fetchedAt))
	if err != nil {
		return false, fmt.Errorf("Create: ExecContext: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Create: RowsAffected: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("Create: LastInsertId: %w", err)
	}
	article.ID = id
	article.FetchedAt = fetchedAt.UTC().Truncate(time.Second)
	return true, nil
}

// DeleteFetchedBefore deletes feedback first and then the articles it points
// to, inside one transaction.
func (repo *ArticleRepo) DeleteFetchedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("DeleteFetchedBefore: BeginTx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ts := formatTime(cutoff)

	const deleteFeedback = `
DELETE FROM feedback WHERE article_id IN (
    SELECT id FROM articles WHERE fetched_at < ?
)
`
	if _, err := tx.ExecContext(ctx, deleteFeedback, ts); err != nil {
		return 0, fmt.Errorf("DeleteFetchedBefore: delete feedback: %w", err)
	}

	const deleteArticles = `DELETE FROM articles WHERE fetched_at < ?`
	res, err := tx.ExecContext(ctx, deleteArticles, ts)
	if err != nil {
		return 0, fmt.Errorf("DeleteFetchedBefore: delete articles: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteFetchedBefore: RowsAffected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("DeleteFetchedBefore: Commit: %w", err)
	}
	return deleted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*entity.Article, error) {
	var (
		a                      entity.Article
		feedName, summary      sql.NullString
		scoreSummary           sql.NullString
		publishedAt, fetchedAt sql.NullString
		score                  int
	)
	if err := row.Scan(&a.ID, &a.GUID, &feedName, &a.Title, &a.Link, &summary,
		&publishedAt, &fetchedAt, &score, &scoreSummary); err != nil {
		return nil, err
	}
	a.FeedName = feedName.String
	a.Summary = summary.String
	a.ScoreSummary = scoreSummary.String
	a.Score = entity.Score(score)
	a.PublishedAt = parseNullTime(publishedAt)
	if t := parseNullTime(fetchedAt); t != nil {
		a.FetchedAt = *t
	}
	return &a, nil
}
