// Package article provides read access to stored articles and the
// retention cleanup.
package article

import "errors"

var (
	// ErrArticleNotFound indicates that the requested article was not found.
	ErrArticleNotFound = errors.New("article not found")

	// ErrInvalidArticleID indicates a non-positive article ID.
	ErrInvalidArticleID = errors.New("invalid article ID")
)
