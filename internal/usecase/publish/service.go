// Package publish renders the ranked article document served to the portal
// widget and writes it to disk.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/observability/metrics"
	"rss-portal/internal/observability/tracing"
	"rss-portal/internal/repository"
)

// ErrInvalidQuery is returned for an out of range score or limit.
var ErrInvalidQuery = errors.New("invalid publish query")

// ArticleReader is the part of the article service the publisher needs.
type ArticleReader interface {
	ListScored(ctx context.Context, q repository.ScoredQuery) ([]entity.ScoredArticle, error)
	Stats(ctx context.Context) (entity.Stats, error)
}

type Service struct {
	Articles ArticleReader
	Config   Config
	Now      func() time.Time
}

func NewService(articles ArticleReader, cfg Config) *Service {
	return &Service{Articles: articles, Config: cfg, Now: time.Now}
}

// Generate builds the document for articles scored at least minScore,
// newest first, with at most limit entries and Config.MaxPerFeed per feed.
func (s *Service) Generate(ctx context.Context, minScore entity.Score, limit int) (*Document, error) {
	if minScore < entity.MinScore || minScore > entity.MaxScore {
		return nil, fmt.Errorf("%w: min_score must be between %d and %d", ErrInvalidQuery, entity.MinScore, entity.MaxScore)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidQuery)
	}

	ctx, span := tracing.GetTracer().Start(ctx, "publish.Generate")
	defer span.End()

	rows, err := s.Articles.ListScored(ctx, repository.ScoredQuery{
		MinScore:   minScore,
		Limit:      limit,
		MaxPerFeed: s.Config.MaxPerFeed,
	})
	if err != nil {
		return nil, fmt.Errorf("list scored articles: %w", err)
	}
	stats, err := s.Articles.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	doc := &Document{
		GeneratedAt: formatTime(s.now()),
		Stats: DocumentStats{
			TotalArticles:     stats.Total,
			ScoredArticles:    stats.Scored,
			HighScoreArticles: stats.HighScore,
			Displayed:         len(rows),
		},
		Articles: make([]Item, 0, len(rows)),
	}
	for _, row := range rows {
		doc.Articles = append(doc.Articles, newItem(row))
	}
	return doc, nil
}

// Save generates the document with the configured defaults and writes it to
// Config.OutputPath. Writers in other processes are serialized through a
// lock file next to the output, and readers never see a partial file.
func (s *Service) Save(ctx context.Context) (*Document, error) {
	doc, err := s.Generate(ctx, s.Config.MinScore, s.Config.Limit)
	if err != nil {
		return nil, err
	}
	data, err := Encode(doc)
	if err != nil {
		return nil, err
	}
	if err := s.write(ctx, data); err != nil {
		return nil, err
	}

	metrics.RecordPublished(doc.Stats.Displayed)
	slog.InfoContext(ctx, "published articles",
		slog.String("path", s.Config.OutputPath),
		slog.Int("displayed", doc.Stats.Displayed))
	return doc, nil
}

// Encode renders doc as indented JSON with non-ASCII and HTML characters
// kept as is.
func Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Service) write(ctx context.Context, data []byte) error {
	path := s.Config.OutputPath
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	timeout := s.Config.LockTimeout
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}
	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLockContext(lockCtx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("acquire output lock: %s is held", lock.Path())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("failed to release output lock", slog.Any("error", err))
		}
	}()

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	// rename 済みなら Remove は失敗するだけ
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
