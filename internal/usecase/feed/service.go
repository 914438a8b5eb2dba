// Package feed manages the subscription list: OPML import, default feeds
// and manual additions.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/infra/opml"
	"rss-portal/internal/repository"
)

// AddInput is one feed to register.
type AddInput struct {
	Name     string
	URL      string
	Category string
}

// Service provides feed management use cases.
type Service struct {
	Repo     repository.FeedRepository
	OPMLPath string
	// Defaults are registered when no active feed exists.
	Defaults []AddInput
}

// Add validates and registers one feed. A known URL reports false.
func (s *Service) Add(ctx context.Context, in AddInput) (bool, error) {
	f := &entity.Feed{
		Name:     strings.TrimSpace(in.Name),
		URL:      strings.TrimSpace(in.URL),
		Category: strings.TrimSpace(in.Category),
		Active:   true,
	}
	if err := f.Validate(); err != nil {
		return false, fmt.Errorf("validate feed: %w", err)
	}
	inserted, err := s.Repo.Add(ctx, f)
	if err != nil {
		return false, fmt.Errorf("add feed: %w", err)
	}
	return inserted, nil
}

// List returns the active feeds.
func (s *Service) List(ctx context.Context) ([]*entity.Feed, error) {
	feeds, err := s.Repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	return feeds, nil
}

// ImportOPML registers the feeds of the OPML file and returns how many were
// new. A missing or unreadable file is logged and imports nothing.
func (s *Service) ImportOPML(ctx context.Context) (int, error) {
	if s.OPMLPath == "" {
		return 0, nil
	}
	entries, err := opml.ParseFile(s.OPMLPath)
	if errors.Is(err, fs.ErrNotExist) {
		slog.WarnContext(ctx, "OPML file not found", slog.String("path", s.OPMLPath))
		return 0, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse OPML",
			slog.String("path", s.OPMLPath),
			slog.Any("error", err))
		return 0, nil
	}
	return s.addAll(ctx, entriesToInputs(entries))
}

// EnsureDefaults registers the default feeds when no active feed exists.
func (s *Service) EnsureDefaults(ctx context.Context) (int, error) {
	n, err := s.Repo.CountActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("count feeds: %w", err)
	}
	if n > 0 || len(s.Defaults) == 0 {
		return 0, nil
	}
	slog.InfoContext(ctx, "no feeds found, adding default feeds", slog.Int("count", len(s.Defaults)))
	return s.addAll(ctx, s.Defaults)
}

// SyncFeeds runs ImportOPML and then EnsureDefaults. It is called at the
// start of every fetch run.
func (s *Service) SyncFeeds(ctx context.Context) (int, error) {
	imported, err := s.ImportOPML(ctx)
	if err != nil {
		return imported, err
	}
	if imported > 0 {
		slog.InfoContext(ctx, "imported new feeds from OPML", slog.Int("count", imported))
	}
	added, err := s.EnsureDefaults(ctx)
	return imported + added, err
}

// Watch re-imports the OPML file whenever it changes, until ctx is done.
func (s *Service) Watch(ctx context.Context) error {
	w := &opml.Watcher{
		Path: s.OPMLPath,
		OnChange: func(ctx context.Context) {
			if n, err := s.ImportOPML(ctx); err != nil {
				slog.WarnContext(ctx, "OPML re-import failed", slog.Any("error", err))
			} else if n > 0 {
				slog.InfoContext(ctx, "imported new feeds from OPML", slog.Int("count", n))
			}
		},
	}
	return w.Watch(ctx)
}

// addAll registers each input, skipping invalid ones.
func (s *Service) addAll(ctx context.Context, inputs []AddInput) (int, error) {
	added := 0
	for _, in := range inputs {
		inserted, err := s.Add(ctx, in)
		if errors.Is(err, entity.ErrInvalidInput) {
			slog.WarnContext(ctx, "skipping invalid feed",
				slog.String("name", in.Name),
				slog.String("url", in.URL),
				slog.Any("error", err))
			continue
		}
		if err != nil {
			return added, err
		}
		if inserted {
			added++
			slog.InfoContext(ctx, "feed added", slog.String("name", in.Name))
		}
	}
	return added, nil
}

func entriesToInputs(entries []opml.Entry) []AddInput {
	out := make([]AddInput, len(entries))
	for i, e := range entries {
		out[i] = AddInput{Name: e.Name, URL: e.URL, Category: e.Category}
	}
	return out
}
