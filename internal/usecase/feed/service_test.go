package feed_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/usecase/feed"
)

type memFeedRepo struct {
	feeds  []*entity.Feed
	addErr error
}

func (m *memFeedRepo) ListActive(context.Context) ([]*entity.Feed, error) { return m.feeds, nil }
func (m *memFeedRepo) CountActive(context.Context) (int, error)           { return len(m.feeds), nil }
func (m *memFeedRepo) TouchFetched(context.Context, int64, time.Time) error {
	return nil
}

func (m *memFeedRepo) Add(_ context.Context, f *entity.Feed) (bool, error) {
	if m.addErr != nil {
		return false, m.addErr
	}
	for _, existing := range m.feeds {
		if existing.URL == f.URL {
			return false, nil
		}
	}
	f.ID = int64(len(m.feeds) + 1)
	m.feeds = append(m.feeds, f)
	return true, nil
}

func writeOPML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feeds.opml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const sampleOPML = `<?xml version="1.0"?>
<opml version="1.0"><body>
  <outline text="tech">
    <outline text="Zenn" xmlUrl="https://zenn.dev/feed"/>
    <outline text="Qiita" xmlUrl="https://qiita.com/popular-items/feed"/>
    <outline text="Local" xmlUrl="http://127.0.0.1/feed"/>
  </outline>
</body></opml>`

func TestImportOPML(t *testing.T) {
	repo := &memFeedRepo{feeds: []*entity.Feed{{URL: "https://zenn.dev/feed", Name: "Zenn"}}}
	svc := &feed.Service{Repo: repo, OPMLPath: writeOPML(t, sampleOPML)}

	n, err := svc.ImportOPML(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n, "existing and invalid URLs are skipped")
	require.Len(t, repo.feeds, 2)
	assert.Equal(t, "Qiita", repo.feeds[1].Name)
	assert.Equal(t, "tech", repo.feeds[1].Category)
	assert.True(t, repo.feeds[1].Active)
}

func TestImportOPML_MissingOrBrokenFile(t *testing.T) {
	for name, path := range map[string]string{
		"missing": filepath.Join(t.TempDir(), "none.opml"),
		"broken":  writeOPML(t, "<opml><body"),
	} {
		t.Run(name, func(t *testing.T) {
			svc := &feed.Service{Repo: &memFeedRepo{}, OPMLPath: path}
			n, err := svc.ImportOPML(context.Background())
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestSyncFeeds_DefaultsOnlyWhenEmpty(t *testing.T) {
	defaults := []feed.AddInput{
		{Name: "Qiita 人気", URL: "https://qiita.com/popular-items/feed", Category: "tech"},
		{Name: "Zenn トレンド", URL: "https://zenn.dev/feed", Category: "tech"},
	}

	repo := &memFeedRepo{}
	svc := &feed.Service{Repo: repo, Defaults: defaults}
	n, err := svc.SyncFeeds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = svc.SyncFeeds(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, repo.feeds, 2)
}

func TestAdd(t *testing.T) {
	svc := &feed.Service{Repo: &memFeedRepo{}}

	ok, err := svc.Add(context.Background(), feed.AddInput{Name: " Go ", URL: "https://go.dev/blog/feed.atom"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Add(context.Background(), feed.AddInput{Name: "Go", URL: "https://go.dev/blog/feed.atom"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Add(context.Background(), feed.AddInput{Name: "", URL: "https://x.example.com"})
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	_, err = svc.Add(context.Background(), feed.AddInput{Name: "bad", URL: "ftp://x.example.com"})
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestAdd_RepoError(t *testing.T) {
	svc := &feed.Service{Repo: &memFeedRepo{addErr: errors.New("readonly database")}}
	_, err := svc.Add(context.Background(), feed.AddInput{Name: "Go", URL: "https://go.dev/feed"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "readonly database")
}
