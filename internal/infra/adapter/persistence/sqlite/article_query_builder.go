package sqlite

import (
	sq "github.com/Masterminds/squirrel"

	"rss-portal/internal/repository"
)

// scoredColumns is the projection shared by both shapes of the scored query.
var scoredColumns = []string{
	"id", "guid", "feed_name", "title", "link", "summary",
	"published_at", "fetched_at", "ai_score", "score_summary",
	"likes", "dislikes",
}

const (
	likesExpr    = "(SELECT COUNT(*) FROM feedback f WHERE f.article_id = a.id AND f.feedback_type = 'like') AS likes"
	dislikesExpr = "(SELECT COUNT(*) FROM feedback f WHERE f.article_id = a.id AND f.feedback_type = 'dislike') AS dislikes"
	feedRankExpr = "ROW_NUMBER() OVER (PARTITION BY a.feed_name ORDER BY a.published_at DESC, a.ai_score DESC) AS feed_rank"
)

// ScoredQueryBuilder builds the publish query with squirrel.
// With MaxPerFeed set, rows are ranked per feed in a subquery and the outer
// query keeps the first MaxPerFeed of each feed.
type ScoredQueryBuilder struct{}

// NewScoredQueryBuilder creates a new query builder instance.
func NewScoredQueryBuilder() *ScoredQueryBuilder {
	return &ScoredQueryBuilder{}
}

// Build returns the SQL and its arguments for q.
func (qb *ScoredQueryBuilder) Build(q repository.ScoredQuery) (string, []interface{}, error) {
	inner := sq.Select(
		"a.id", "a.guid", "a.feed_name", "a.title", "a.link", "a.summary",
		"a.published_at", "a.fetched_at", "a.ai_score", "a.score_summary",
		likesExpr, dislikesExpr,
	).
		From("articles a").
		Where(sq.GtOrEq{"a.ai_score": int(q.MinScore)})

	var query sq.SelectBuilder
	if q.MaxPerFeed > 0 {
		query = sq.Select(scoredColumns...).
			FromSelect(inner.Column(feedRankExpr), "ranked").
			Where(sq.LtOrEq{"feed_rank": q.MaxPerFeed}).
			OrderBy("published_at DESC", "ai_score DESC")
	} else {
		query = inner.OrderBy("a.published_at DESC", "a.ai_score DESC")
	}

	if q.Limit > 0 {
		query = query.Limit(uint64(q.Limit))
	}

	return query.ToSql()
}
