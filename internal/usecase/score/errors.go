// Package score rates unscored articles against the operator's interests and
// the user's recent feedback, using a hosted language model.
package score

import "errors"

// Sentinel errors for scoring use case operations.
var (
	// ErrArticleNotFound indicates that the requested article does not exist.
	ErrArticleNotFound = errors.New("article not found")

	// ErrInvalidArticleID indicates that the provided article ID is invalid.
	// Article IDs must be positive integers.
	ErrInvalidArticleID = errors.New("invalid article ID")

	// ErrScoringUnavailable means the model client has no credential. A batch
	// stops before touching any article.
	ErrScoringUnavailable = errors.New("scoring unavailable: model credential not configured")
)
