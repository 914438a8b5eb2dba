package publish

import (
	"time"

	"rss-portal/internal/domain/entity"
)

// Document is the published JSON feed consumed by the portal widget.
type Document struct {
	GeneratedAt string        `json:"generated_at"`
	Stats       DocumentStats `json:"stats"`
	Articles    []Item        `json:"articles"`
}

type DocumentStats struct {
	TotalArticles     int `json:"total_articles"`
	ScoredArticles    int `json:"scored_articles"`
	HighScoreArticles int `json:"high_score_articles"`
	Displayed         int `json:"displayed"`
}

// Item is one displayed article. Summary carries the model's summary, not
// the feed's own description.
type Item struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Link        string  `json:"link"`
	FeedName    string  `json:"feed_name"`
	Summary     string  `json:"summary"`
	Score       int     `json:"score"`
	PublishedAt *string `json:"published_at"`
	FetchedAt   string  `json:"fetched_at"`
	Likes       int     `json:"likes"`
	Dislikes    int     `json:"dislikes"`
}

func newItem(a entity.ScoredArticle) Item {
	item := Item{
		ID:        a.ID,
		Title:     a.Title,
		Link:      a.Link,
		FeedName:  a.FeedName,
		Summary:   a.ScoreSummary,
		Score:     int(a.Score),
		FetchedAt: formatTime(a.FetchedAt),
		Likes:     a.Likes,
		Dislikes:  a.Dislikes,
	}
	if a.PublishedAt != nil {
		s := formatTime(*a.PublishedAt)
		item.PublishedAt = &s
	}
	return item
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
