package scraper_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rss-portal/internal/infra/scraper"
	"rss-portal/internal/resilience/retry"
	"rss-portal/internal/usecase/fetch"
)

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <item>
      <title>Article &lt;b&gt;1&lt;/b&gt;</title>
      <link>https://example.com/article1</link>
      <guid>urn:article:1</guid>
      <description><![CDATA[<p>Hello</p><p>world  &amp; more</p>]]></description>
      <pubDate>Mon, 01 Jan 2024 09:00:00 +0900</pubDate>
    </item>
    <item>
      <title>Article 2</title>
      <link>https://example.com/article2</link>
      <description>Description 2</description>
    </item>
    <item>
      <title></title>
      <link>https://example.com/untitled</link>
    </item>
    <item>
      <title>No link</title>
    </item>
  </channel>
</rss>`

func serve(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/rss+xml")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
}

func TestRSSFetcher_Fetch_RSS(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, rssBody)
	f := scraper.NewRSSFetcher(srv.Client())

	items, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, items, 2, "entries without title or link are skipped")

	first := items[0]
	assert.Equal(t, "urn:article:1", first.GUID)
	assert.Equal(t, "Article 1", first.Title)
	assert.Equal(t, "https://example.com/article1", first.Link)
	assert.Equal(t, "Hello world & more", first.Summary)
	require.NotNil(t, first.PublishedAt)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *first.PublishedAt)
	assert.Equal(t, time.UTC, first.PublishedAt.Location())

	second := items[1]
	assert.Equal(t, scraper.GenerateGUID("https://example.com/article2", "Article 2"), second.GUID)
	assert.Nil(t, second.PublishedAt)
}

func TestRSSFetcher_Fetch_AtomUsesUpdated(t *testing.T) {
	atom := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom</title>
  <entry>
    <title>Atom entry</title>
    <link href="https://example.com/atom1"/>
    <id>tag:example.com,2024:1</id>
    <updated>2024-02-03T04:05:06Z</updated>
    <content type="html">&lt;div&gt;Body text&lt;/div&gt;</content>
  </entry>
</feed>`
	srv, _ := serve(t, http.StatusOK, atom)

	items, err := scraper.NewRSSFetcher(srv.Client()).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "tag:example.com,2024:1", items[0].GUID)
	assert.Equal(t, "Body text", items[0].Summary)
	require.NotNil(t, items[0].PublishedAt)
	assert.Equal(t, time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC), *items[0].PublishedAt)
}

func TestRSSFetcher_Fetch_MaxItemsAndSummaryLength(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>x</title>`)
	for i := 0; i < 5; i++ {
		b.WriteString(`<item><title>t` + string(rune('a'+i)) + `</title><link>https://example.com/` + string(rune('a'+i)) + `</link><description>` + strings.Repeat("あ", 600) + `</description></item>`)
	}
	b.WriteString(`</channel></rss>`)
	srv, _ := serve(t, http.StatusOK, b.String())

	items, err := scraper.NewRSSFetcher(srv.Client(), scraper.WithMaxItems(3)).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, strings.Repeat("あ", 500), items[0].Summary)
}

func TestRSSFetcher_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantHits int32
		check    func(t *testing.T, err error)
	}{
		{
			name: "server error is retried", status: http.StatusServiceUnavailable, wantHits: 2,
			check: func(t *testing.T, err error) {
				var httpErr *retry.HTTPError
				assert.ErrorAs(t, err, &httpErr)
				assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
			},
		},
		{
			name: "not found is not retried", status: http.StatusNotFound, wantHits: 1,
			check: func(t *testing.T, err error) {
				var httpErr *retry.HTTPError
				assert.ErrorAs(t, err, &httpErr)
			},
		},
		{
			name: "invalid xml", status: http.StatusOK, body: "this is not a feed", wantHits: 1,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, fetch.ErrInvalidFeedFormat)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, hits := serve(t, tt.status, tt.body)
			f := scraper.NewRSSFetcher(srv.Client(), scraper.WithRetryConfig(fastRetry()))

			items, err := f.Fetch(context.Background(), srv.URL)

			require.Error(t, err)
			assert.Nil(t, items)
			assert.Equal(t, tt.wantHits, atomic.LoadInt32(hits))
			tt.check(t, err)
		})
	}
}

func TestRSSFetcher_Fetch_ContextCanceled(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, rssBody)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scraper.NewRSSFetcher(srv.Client()).Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateGUID(t *testing.T) {
	a := scraper.GenerateGUID("https://example.com/a", "Title")
	assert.Len(t, a, 32)
	assert.Equal(t, a, scraper.GenerateGUID("https://example.com/a", "Title"))
	assert.NotEqual(t, a, scraper.GenerateGUID("https://example.com/a", "Other"))
}
