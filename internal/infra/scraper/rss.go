// Package scraper downloads RSS/Atom feeds and turns their entries into
// cleaned feed items. Parsing is done by gofeed; downloads go through the
// retry and circuit breaker helpers.
package scraper

import (
	"context"
	"crypto/md5" // #nosec G501 -- content identity, not security
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"rss-portal/internal/resilience/circuitbreaker"
	"rss-portal/internal/resilience/retry"
	"rss-portal/internal/usecase/fetch"
	"rss-portal/internal/utils/text"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxItems     = 100
	DefaultSummaryRunes = 500
	maxFeedBodySize     = 10 * 1024 * 1024 // 10MB
	userAgent           = "RSSPortalBot/1.0"
)

// RSSFetcher implements fetch.FeedFetcher.
type RSSFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	maxItems       int
	summaryRunes   int
}

// Option customizes an RSSFetcher.
type Option func(*RSSFetcher)

// WithMaxItems limits how many entries are taken from each feed.
func WithMaxItems(n int) Option {
	return func(f *RSSFetcher) {
		if n > 0 {
			f.maxItems = n
		}
	}
}

func WithRetryConfig(cfg retry.Config) Option {
	return func(f *RSSFetcher) { f.retryConfig = cfg }
}

func WithCircuitBreaker(cb *circuitbreaker.CircuitBreaker) Option {
	return func(f *RSSFetcher) { f.circuitBreaker = cb }
}

// NewRSSFetcher creates a fetcher. A nil client gets a 30s timeout.
func NewRSSFetcher(client *http.Client, opts ...Option) *RSSFetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	f := &RSSFetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
		maxItems:       DefaultMaxItems,
		summaryRunes:   DefaultSummaryRunes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves and parses the feed at feedURL.
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string) ([]fetch.FeedItem, error) {
	items, err := retry.Do(ctx, f.retryConfig, func() ([]fetch.FeedItem, error) {
		return circuitbreaker.Do(f.circuitBreaker, func() ([]fetch.FeedItem, error) {
			return f.doFetch(ctx, feedURL)
		})
	})
	if err != nil {
		if f.circuitBreaker.IsOpen() {
			slog.Warn("feed fetch circuit breaker open, request rejected",
				slog.String("url", feedURL),
				slog.String("state", f.circuitBreaker.State().String()))
		}
		return nil, err
	}
	return items, nil
}

// doFetch performs one download without retry or circuit breaker.
func (f *RSSFetcher) doFetch(ctx context.Context, feedURL string) ([]fetch.FeedItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	feed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, maxFeedBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fetch.ErrInvalidFeedFormat, err)
	}

	entries := feed.Items
	if len(entries) > f.maxItems {
		entries = entries[:f.maxItems]
	}

	items := make([]fetch.FeedItem, 0, len(entries))
	for _, it := range entries {
		item, ok := f.toItem(it)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// toItem normalizes one entry. Entries without link or title are dropped.
func (f *RSSFetcher) toItem(it *gofeed.Item) (fetch.FeedItem, bool) {
	if it == nil {
		return fetch.FeedItem{}, false
	}
	link := strings.TrimSpace(it.Link)
	title := CleanHTML(it.Title)
	if link == "" || title == "" {
		return fetch.FeedItem{}, false
	}

	guid := strings.TrimSpace(it.GUID)
	if guid == "" {
		guid = GenerateGUID(it.Link, it.Title)
	}

	// Description優先、なければContent
	raw := it.Description
	if strings.TrimSpace(raw) == "" {
		raw = it.Content
	}

	return fetch.FeedItem{
		GUID:        guid,
		Title:       title,
		Link:        link,
		Summary:     text.Truncate(CleanHTML(raw), f.summaryRunes),
		PublishedAt: publishedAt(it),
	}, true
}

// GenerateGUID derives a stable id from link and title for entries that
// carry none.
func GenerateGUID(link, title string) string {
	sum := md5.Sum([]byte(link + ":" + title)) // #nosec G401
	return hex.EncodeToString(sum[:])
}

// publishedAt returns the publish time, else the update time, in UTC.
func publishedAt(it *gofeed.Item) *time.Time {
	var t *time.Time
	switch {
	case it.PublishedParsed != nil:
		t = it.PublishedParsed
	case it.UpdatedParsed != nil:
		t = it.UpdatedParsed
	default:
		return nil
	}
	utc := t.UTC()
	return &utc
}
