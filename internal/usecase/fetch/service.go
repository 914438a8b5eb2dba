package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/observability/metrics"
	"rss-portal/internal/observability/tracing"
	"rss-portal/internal/repository"
	"rss-portal/internal/utils/text"
)

// FeedItem is one cleaned feed entry, ready to become an Article.
type FeedItem struct {
	GUID        string
	Title       string
	Link        string
	Summary     string
	PublishedAt *time.Time
}

// FeedFetcher downloads and parses one RSS/Atom feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]FeedItem, error)
}

// FeedSyncer refreshes the feed list before a run (OPML re-import and
// default feed seeding).
type FeedSyncer interface {
	SyncFeeds(ctx context.Context) (int, error)
}

// Result summarizes one fetch run.
type Result struct {
	Fetched        int
	Inserted       int
	FeedsProcessed int
	Errors         []string
	Duration       time.Duration
}

// Service fetches all active feeds and stores their new entries.
type Service struct {
	Feeds          repository.FeedRepository
	Articles       repository.ArticleRepository
	Fetcher        FeedFetcher
	Syncer         FeedSyncer     // optional
	ContentFetcher ContentFetcher // optional
	Config         Config
	Now            func() time.Time
}

func NewService(
	feeds repository.FeedRepository,
	articles repository.ArticleRepository,
	fetcher FeedFetcher,
	syncer FeedSyncer,
	contentFetcher ContentFetcher,
	cfg Config,
) *Service {
	return &Service{
		Feeds:          feeds,
		Articles:       articles,
		Fetcher:        fetcher,
		Syncer:         syncer,
		ContentFetcher: contentFetcher,
		Config:         cfg,
		Now:            time.Now,
	}
}

// feedOutcome is what one download produced.
type feedOutcome struct {
	items []FeedItem
	err   error
}

// FetchAll runs one fetch pass. A failing feed is logged and recorded in
// Result.Errors; only a failure to list the feeds is returned as an error.
func (s *Service) FetchAll(ctx context.Context) (Result, error) {
	return s.FetchAllWithLimit(ctx, 0)
}

// FetchAllWithLimit is FetchAll with a per-run article cap. A non-positive
// limit uses Config.MaxArticles.
func (s *Service) FetchAllWithLimit(ctx context.Context, limit int) (Result, error) {
	logger := slog.Default()
	maxArticles := s.maxArticles()
	if limit > 0 {
		maxArticles = limit
	}
	start := time.Now()
	var result Result

	ctx, span := tracing.GetTracer().Start(ctx, "fetch.All")
	defer span.End()

	if s.Syncer != nil {
		if n, err := s.Syncer.SyncFeeds(ctx); err != nil {
			logger.WarnContext(ctx, "feed sync failed", slog.Any("error", err))
			result.Errors = append(result.Errors, fmt.Sprintf("sync feeds: %v", err))
		} else if n > 0 {
			logger.InfoContext(ctx, "feeds added", slog.Int("count", n))
		}
	}

	feeds, err := s.Feeds.ListActive(ctx)
	if err != nil {
		return result, fmt.Errorf("list active feeds: %w", err)
	}
	if len(feeds) == 0 {
		result.Errors = append(result.Errors, ErrNoFeeds.Error())
		return result, nil
	}

	logger.InfoContext(ctx, "fetching feeds", slog.Int("feeds", len(feeds)))
	outcomes := s.download(ctx, feeds)
	if err := ctx.Err(); err != nil {
		return result, err
	}

	// 取得結果はフィード順に直列で処理する
	candidates := make([]*entity.Article, 0)
	seen := make(map[string]bool)
	for i, feed := range feeds {
		if len(candidates) >= maxArticles {
			logger.InfoContext(ctx, "reached max articles per fetch", slog.Int("limit", maxArticles))
			break
		}
		result.FeedsProcessed++

		out := outcomes[i]
		if out.err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", feed.Name, out.err))
			continue
		}
		if err := s.Feeds.TouchFetched(ctx, feed.ID, s.now()); err != nil {
			logger.WarnContext(ctx, "failed to update feed timestamp",
				slog.Int64("feed_id", feed.ID),
				slog.Any("error", err))
		}

		fresh := s.newItems(ctx, feed, out.items, seen)
		for _, item := range fresh {
			candidates = append(candidates, s.toArticle(feed, item))
		}
	}
	result.Fetched = len(candidates)

	if len(candidates) > maxArticles {
		candidates = candidates[:maxArticles]
	}
	s.enrich(ctx, candidates)

	for _, article := range candidates {
		inserted, err := s.Articles.Create(ctx, article)
		switch {
		case err != nil:
			metrics.RecordFeedItems("error", 1)
			result.Errors = append(result.Errors, fmt.Sprintf("insert %s: %v", article.GUID, err))
		case inserted:
			metrics.RecordFeedItems("inserted", 1)
			result.Inserted++
		default:
			metrics.RecordFeedItems("duplicate", 1)
		}
	}

	result.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("fetch.feeds", result.FeedsProcessed),
		attribute.Int("fetch.fetched", result.Fetched),
		attribute.Int("fetch.inserted", result.Inserted),
	)
	logger.InfoContext(ctx, "fetch completed",
		slog.Int("feeds_processed", result.FeedsProcessed),
		slog.Int("fetched", result.Fetched),
		slog.Int("inserted", result.Inserted),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("duration", result.Duration))
	return result, nil
}

// download fetches every feed with bounded parallelism. Outcomes are stored
// by index, so the group never fails.
func (s *Service) download(ctx context.Context, feeds []*entity.Feed) []feedOutcome {
	outcomes := make([]feedOutcome, len(feeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism())

	for i, feed := range feeds {
		g.Go(func() error {
			fetchStart := time.Now()
			items, err := s.Fetcher.Fetch(gctx, feed.URL)
			metrics.RecordFeedFetch(feed.Name, time.Since(fetchStart))
			if err != nil {
				metrics.RecordFeedFetchError(feed.Name, fetchErrorType(err))
				slog.Warn("failed to fetch feed",
					slog.String("feed", feed.Name),
					slog.String("url", feed.URL),
					slog.Any("error", err))
			}
			outcomes[i] = feedOutcome{items: items, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// newItems drops entries already stored or already seen in this run.
func (s *Service) newItems(ctx context.Context, feed *entity.Feed, items []FeedItem, seen map[string]bool) []FeedItem {
	if len(items) == 0 {
		return nil
	}
	guids := make([]string, 0, len(items))
	for _, it := range items {
		guids = append(guids, it.GUID)
	}
	exists, err := s.Articles.ExistsByGUIDBatch(ctx, guids)
	if err != nil {
		// Create reports duplicates anyway
		slog.WarnContext(ctx, "failed to batch check GUIDs",
			slog.String("feed", feed.Name),
			slog.Any("error", err))
		exists = map[string]bool{}
	}

	fresh := make([]FeedItem, 0, len(items))
	for _, it := range items {
		if exists[it.GUID] || seen[it.GUID] {
			continue
		}
		seen[it.GUID] = true
		fresh = append(fresh, it)
	}
	metrics.RecordFeedItems("existing", len(items)-len(fresh))
	return fresh
}

func (s *Service) toArticle(feed *entity.Feed, item FeedItem) *entity.Article {
	return &entity.Article{
		GUID:        item.GUID,
		FeedName:    feed.Name,
		Title:       item.Title,
		Link:        item.Link,
		Summary:     item.Summary,
		PublishedAt: item.PublishedAt,
		FetchedAt:   s.now(),
	}
}

// enrich replaces short summaries with text from the article page. It never
// fails; on any error the feed summary is kept.
func (s *Service) enrich(ctx context.Context, articles []*entity.Article) {
	if s.ContentFetcher == nil || s.Config.ContentThreshold <= 0 {
		return
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism())
	for _, a := range articles {
		if text.CountRunes(a.Summary) >= s.Config.ContentThreshold {
			metrics.RecordContentFetchSkipped()
			continue
		}
		g.Go(func() error {
			start := time.Now()
			content, err := s.ContentFetcher.FetchContent(gctx, a.Link)
			if err != nil {
				metrics.RecordContentFetchFailed(time.Since(start))
				slog.Debug("content fetch failed, keeping feed summary",
					slog.String("url", a.Link),
					slog.Any("error", err))
				return nil
			}
			metrics.RecordContentFetchSuccess(time.Since(start))
			content = text.Truncate(text.CollapseSpace(content), s.summaryRunes())
			if text.CountRunes(content) > text.CountRunes(a.Summary) {
				a.Summary = content
			}
			return nil
		})
	}
	_ = g.Wait()
}

func fetchErrorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrInvalidFeedFormat):
		return "parse"
	default:
		return "fetch"
	}
}

func (s *Service) parallelism() int {
	if s.Config.Parallelism <= 0 {
		return DefaultParallelism
	}
	return s.Config.Parallelism
}

func (s *Service) maxArticles() int {
	if s.Config.MaxArticles <= 0 {
		return DefaultMaxArticles
	}
	return s.Config.MaxArticles
}

func (s *Service) summaryRunes() int {
	if s.Config.SummaryRunes <= 0 {
		return DefaultSummaryRunes
	}
	return s.Config.SummaryRunes
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
