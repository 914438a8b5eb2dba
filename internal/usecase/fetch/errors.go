// Package fetch collects new articles from the subscribed feeds and stores
// them unscored. Feeds are downloaded concurrently; inserts are sequential.
package fetch

import "errors"

var (
	// ErrNoFeeds is recorded when no active feed exists even after the
	// OPML import and the default feed seeding.
	ErrNoFeeds = errors.New("no feeds configured")

	// ErrInvalidFeedFormat indicates the body could not be parsed as RSS or Atom.
	ErrInvalidFeedFormat = errors.New("invalid feed format")
)
