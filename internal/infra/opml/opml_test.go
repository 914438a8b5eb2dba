package opml_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rss-portal/internal/infra/opml"
)

const feedlyExport = `<?xml version="1.0" encoding="UTF-8"?>
<opml version="1.0">
  <head><title>Feedly</title></head>
  <body>
    <outline text="Tech" title="Tech">
      <outline type="rss" text="Go Blog" title="The Go Blog" xmlUrl="https://go.dev/blog/feed.atom"/>
      <outline text="Frontend">
        <outline type="rss" text="CSS Tricks" xmlUrl="https://css-tricks.com/feed/"/>
      </outline>
    </outline>
    <outline type="rss" xmlUrl="https://example.com/untitled.xml"/>
    <outline type="rss" text="Top level" xmlUrl="https://example.com/top.xml">
      <outline type="rss" text="Nested under feed" xmlUrl="https://example.com/nested.xml"/>
    </outline>
  </body>
</opml>`

func TestParse(t *testing.T) {
	got, err := opml.Parse(strings.NewReader(feedlyExport))
	require.NoError(t, err)

	want := []opml.Entry{
		{Name: "The Go Blog", URL: "https://go.dev/blog/feed.atom", Category: "Tech"},
		{Name: "CSS Tricks", URL: "https://css-tricks.com/feed/", Category: "Frontend"},
		{Name: "Unknown", URL: "https://example.com/untitled.xml", Category: ""},
		{Name: "Top level", URL: "https://example.com/top.xml", Category: ""},
		{Name: "Nested under feed", URL: "https://example.com/nested.xml", Category: ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := opml.Parse(strings.NewReader("<opml><body><outline"))
	assert.Error(t, err)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := opml.ParseFile(filepath.Join(t.TempDir(), "nope.opml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatcher_ReimportsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feeds.opml")
	require.NoError(t, os.WriteFile(path, []byte(feedlyExport), 0o600))

	var calls int32
	changed := make(chan struct{}, 4)
	w := &opml.Watcher{
		Path:     path,
		Debounce: 10 * time.Millisecond,
		OnChange: func(context.Context) {
			atomic.AddInt32(&calls, 1)
			select {
			case changed <- struct{}{}:
			default:
			}
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	// other files in the directory are ignored
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600)
		_ = os.WriteFile(path, []byte(feedlyExport), 0o600)
		select {
		case <-changed:
			return true
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}
