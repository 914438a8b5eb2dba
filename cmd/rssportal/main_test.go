package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* ───────── テスト用ヘルパー ───────── */

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "data", "articles.db"))
	t.Setenv("OUTPUT_JSON", filepath.Join(dir, "output", "articles.json"))
	t.Setenv("OPML_FILE", filepath.Join(dir, "feeds.opml"))
	t.Setenv("PORTAL_CONFIG", filepath.Join(dir, "portal.yaml"))
	for _, key := range []string{"LLM_PROVIDER", "LLM_API_KEY", "GEMINI_API_KEY", "DISCORD_WEBHOOK_URL", "DISCORD_ENABLED"} {
		t.Setenv(key, "")
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(nil)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

/* ───────── 1. Root ───────── */

func TestRoot_ShowsHelp(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	for _, name := range []string{"fetch", "score", "publish", "cleanup", "refresh", "stats", "articles", "feeds"} {
		assert.Contains(t, out, name)
	}
}

/* ───────── 2. Feeds ───────── */

func TestFeeds_AddAndList(t *testing.T) {
	isolate(t)

	out, err := execute(t, "feeds", "add", "--name", "Go Blog", "--url", "https://go.dev/blog/feed.atom", "--category", "tech")
	require.NoError(t, err)
	assert.Contains(t, out, "Added feed Go Blog")

	out, err = execute(t, "feeds", "add", "--name", "Go Blog", "--url", "https://go.dev/blog/feed.atom")
	require.NoError(t, err)
	assert.Contains(t, out, "Feed already registered")

	out, err = execute(t, "feeds", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Go Blog")
	assert.Contains(t, out, "https://go.dev/blog/feed.atom")
	assert.Contains(t, out, "Last fetched")
}

func TestFeeds_AddInvalidURL(t *testing.T) {
	isolate(t)

	_, err := execute(t, "feeds", "add", "--name", "bad", "--url", "ftp://example.com/feed")
	assert.Error(t, err)
}

func TestFeeds_AddRequiresFlags(t *testing.T) {
	isolate(t)

	_, err := execute(t, "feeds", "add", "--name", "only name")
	assert.Error(t, err)
}

func TestFeeds_Import(t *testing.T) {
	dir := isolate(t)
	opml := `<?xml version="1.0" encoding="UTF-8"?>
<opml version="2.0">
  <body>
    <outline text="tech">
      <outline type="rss" text="Example" xmlUrl="https://example.com/rss.xml"/>
    </outline>
  </body>
</opml>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "feeds.opml"), []byte(opml), 0o644))

	out, err := execute(t, "feeds", "import")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 feeds")

	out, err = execute(t, "feeds", "list", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, "https://example.com/rss.xml")
}

/* ───────── 3. Pipeline ───────── */

func TestScore_WithoutCredential(t *testing.T) {
	isolate(t)

	_, err := execute(t, "score", "--limit", "5")
	assert.Error(t, err)
}

func TestPublish_WritesDocument(t *testing.T) {
	dir := isolate(t)

	out, err := execute(t, "publish")
	require.NoError(t, err)
	assert.Contains(t, out, "Published 0 articles")

	data, err := os.ReadFile(filepath.Join(dir, "output", "articles.json"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "articles")
}

func TestCleanup_EmptyStore(t *testing.T) {
	isolate(t)

	out, err := execute(t, "cleanup")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 0 articles older than 14 days")
}

/* ───────── 4. Queries ───────── */

func TestStats_JSON(t *testing.T) {
	isolate(t)

	out, err := execute(t, "stats", "--json")
	require.NoError(t, err)

	var got statsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, statsOutput{}, got)
}

func TestArticles_RejectsOutOfRangeScore(t *testing.T) {
	isolate(t)

	_, err := execute(t, "articles", "--min-score", "9")
	assert.ErrorContains(t, err, "--min-score")
}

func TestArticles_EmptyTable(t *testing.T) {
	isolate(t)

	out, err := execute(t, "articles")
	require.NoError(t, err)
	assert.Contains(t, out, "Feedback")
}
