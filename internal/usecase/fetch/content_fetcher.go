package fetch

import (
	"context"
	"errors"
)

// ContentFetcher extracts the readable text of an article page. It is used
// only when a feed entry carries too little text to score.
//
// Implementations must refuse private addresses, bound the response size
// and honour ctx.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// Sentinel errors for content fetching.
var (
	// ErrInvalidURL indicates a malformed URL or a scheme other than http(s).
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the host resolves to a loopback, private or
	// link-local address.
	ErrPrivateIP = errors.New("private IP access denied (SSRF prevention)")

	ErrTooManyRedirects = errors.New("too many redirects")

	ErrBodyTooLarge = errors.New("response body too large")

	ErrTimeout = errors.New("request timeout")

	// ErrReadabilityFailed indicates no article text could be extracted.
	ErrReadabilityFailed = errors.New("content extraction failed")
)
