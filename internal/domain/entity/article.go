// Package entity defines the core domain entities of the portal: articles,
// relevance scores, user feedback and the feeds articles are collected from.
// Field constraints are enforced by the constructors and validators in this
// package so that the rest of the code can work with typed values.
package entity

import "time"

// Article is one ingested feed item.
// GUID is the stable identity used for deduplication; it is either the
// feed-provided entry id or an md5 digest of link and title.
type Article struct {
	ID           int64
	GUID         string
	FeedName     string
	Title        string
	Link         string
	Summary      string
	PublishedAt  *time.Time
	FetchedAt    time.Time
	Score        Score
	ScoreSummary string
}

// IsScored reports whether a relevance score has been written for the article.
func (a *Article) IsScored() bool {
	return a.Score.IsScored()
}

// Validate checks the fields required to store a new article.
func (a *Article) Validate() error {
	if a.GUID == "" {
		return &ValidationError{Field: "guid", Message: "guid is required"}
	}
	if a.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if a.Link == "" {
		return &ValidationError{Field: "link", Message: "link is required"}
	}
	return a.Score.Validate()
}

// ScoredArticle is an article row joined with its like/dislike counts.
type ScoredArticle struct {
	Article
	Likes    int
	Dislikes int
}

// Stats is a snapshot of the article store.
type Stats struct {
	Total     int
	Scored    int
	HighScore int
	Feeds     int
}
