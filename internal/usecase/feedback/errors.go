// Package feedback records like, dislike and click signals that steer
// future scoring prompts.
package feedback

import "errors"

var (
	ErrInvalidFeedbackKind = errors.New("invalid feedback type")
	ErrInvalidArticleID    = errors.New("invalid article ID")
	ErrArticleNotFound     = errors.New("article not found")
)
