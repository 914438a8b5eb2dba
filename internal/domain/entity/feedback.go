package entity

import (
	"fmt"
	"time"
)

// FeedbackKind is a user signal attached to an article.
type FeedbackKind string

const (
	FeedbackLike    FeedbackKind = "like"
	FeedbackDislike FeedbackKind = "dislike"
	FeedbackClick   FeedbackKind = "click"
)

// FeedbackKinds lists every accepted kind in display order.
var FeedbackKinds = []FeedbackKind{FeedbackLike, FeedbackDislike, FeedbackClick}

// ParseFeedbackKind converts raw input into a FeedbackKind.
func ParseFeedbackKind(s string) (FeedbackKind, error) {
	switch k := FeedbackKind(s); k {
	case FeedbackLike, FeedbackDislike, FeedbackClick:
		return k, nil
	default:
		return "", &ValidationError{
			Field:   "feedback",
			Message: fmt.Sprintf("feedback must be one of like, dislike, click, got %q", s),
		}
	}
}

// Feedback is an append-only feedback record.
type Feedback struct {
	ID        int64
	ArticleID int64
	Kind      FeedbackKind
	CreatedAt time.Time
}

// FeedbackTitle is the projection used as prompt context.
type FeedbackTitle struct {
	Title    string
	FeedName string
}
