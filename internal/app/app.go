// Package app assembles the stores, clients and use cases shared by the API
// server, the worker and the command line tool.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"rss-portal/internal/config"
	sqliteRepo "rss-portal/internal/infra/adapter/persistence/sqlite"
	"rss-portal/internal/infra/db"
	"rss-portal/internal/infra/fetcher"
	"rss-portal/internal/infra/llm"
	"rss-portal/internal/infra/notifier"
	"rss-portal/internal/infra/scraper"
	"rss-portal/internal/repository"
	articleUC "rss-portal/internal/usecase/article"
	feedUC "rss-portal/internal/usecase/feed"
	feedbackUC "rss-portal/internal/usecase/feedback"
	fetchUC "rss-portal/internal/usecase/fetch"
	publishUC "rss-portal/internal/usecase/publish"
	refreshUC "rss-portal/internal/usecase/refresh"
	scoreUC "rss-portal/internal/usecase/score"
	pkgconfig "rss-portal/pkg/config"
)

// DefaultOPMLPath is read when OPML_FILE is unset.
const DefaultOPMLPath = "data/feeds.opml"

// App holds every wired component. Fields are ready to use after New.
type App struct {
	DB       *sql.DB
	Portal   *config.PortalConfig
	LLM      *llm.Client
	Notifier notifier.Notifier

	Feeds    *feedUC.Service
	Articles *articleUC.Service
	Feedback *feedbackUC.Service
	Score    *scoreUC.Service
	Fetch    *fetchUC.Service
	Publish  *publishUC.Service
	Refresh  *refreshUC.Service
}

// New opens the database, applies the schema and builds the use cases from
// the environment. A missing model credential is not an error here; scoring
// reports it when asked to run.
func New(ctx context.Context, logger *slog.Logger) (*App, error) {
	database, err := db.Open(ctx, "")
	if err != nil {
		return nil, err
	}
	if err := db.Initialize(ctx, database); err != nil {
		_ = database.Close()
		return nil, err
	}

	a, err := build(database, logger)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	return a, nil
}

func build(database *sql.DB, logger *slog.Logger) (*App, error) {
	portal, err := config.LoadPortalConfigFromEnv()
	if err != nil {
		return nil, err
	}

	discordCfg, err := notifier.LoadDiscordConfig()
	if err != nil {
		// 通知設定の誤りで起動を止めない
		logger.Warn("discord alerts disabled", slog.Any("error", err))
		discordCfg = notifier.DiscordConfig{}
	}
	alerts := notifier.New(discordCfg)

	llmCfg, err := llm.LoadConfig()
	if err != nil {
		return nil, err
	}
	client, err := llm.NewClient(*llmCfg,
		llm.WithMetrics(llm.NewPrometheusMetrics()),
		llm.WithAlerter(alerts),
		llm.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if !llmCfg.HasCredential() {
		logger.Warn("no model credential configured, scoring is disabled",
			slog.String("provider", llmCfg.Provider))
	}

	articleRepo := sqliteRepo.NewArticleRepo(database)
	feedRepo := sqliteRepo.NewFeedRepo(database)
	feedbackRepo := sqliteRepo.NewFeedbackRepo(database)

	feeds := &feedUC.Service{
		Repo:     feedRepo,
		OPMLPath: pkgconfig.GetEnvString("OPML_FILE", DefaultOPMLPath),
		Defaults: defaultFeeds(portal),
	}
	articles := articleUC.NewService(articleRepo)

	scoreCfg, err := scoreUC.LoadConfig(portal.Interests, portal.Dislikes)
	if err != nil {
		return nil, err
	}
	scorer := scoreUC.NewService(articleRepo, feedbackRepo, client, scoreCfg)
	scorer.Logger = logger

	fetchSvc, err := newFetchService(feedRepo, articleRepo, feeds, logger)
	if err != nil {
		return nil, err
	}

	publishCfg, err := publishUC.LoadConfig()
	if err != nil {
		return nil, err
	}
	publisher := publishUC.NewService(articles, publishCfg)

	refresh := refreshUC.NewService(fetchSvc, scorer, publisher, articles, refreshUC.Options{
		ScoreLimit: scoreUC.DefaultBatchLimit,
		ScoreDelay: scoreCfg.Delay,
	})
	refresh.Alerts = alerts

	return &App{
		DB:       database,
		Portal:   portal,
		LLM:      client,
		Notifier: alerts,
		Feeds:    feeds,
		Articles: articles,
		Feedback: &feedbackUC.Service{Articles: articleRepo, Feedback: feedbackRepo},
		Score:    scorer,
		Fetch:    fetchSvc,
		Publish:  publisher,
		Refresh:  refresh,
	}, nil
}

// newFetchService wires the RSS fetcher and, when enabled, the article
// page extractor.
func newFetchService(
	feeds repository.FeedRepository,
	articles repository.ArticleRepository,
	syncer fetchUC.FeedSyncer,
	logger *slog.Logger,
) (*fetchUC.Service, error) {
	cfg, err := fetchUC.LoadConfig()
	if err != nil {
		return nil, err
	}

	rss := scraper.NewRSSFetcher(
		&http.Client{Timeout: pkgconfig.GetEnvDuration("FEED_FETCH_TIMEOUT", scraper.DefaultTimeout)},
		scraper.WithMaxItems(pkgconfig.GetEnvInt("MAX_ITEMS_PER_FEED", scraper.DefaultMaxItems)),
	)

	var content fetchUC.ContentFetcher
	if cfg.ContentThreshold > 0 {
		contentCfg, err := fetcher.LoadConfig()
		if err != nil {
			logger.Warn("content fetching disabled due to configuration error", slog.Any("error", err))
			cfg.ContentThreshold = 0
		} else {
			content = fetcher.NewReadabilityFetcher(contentCfg)
			logger.Info("content fetching enabled",
				slog.Int("threshold", cfg.ContentThreshold),
				slog.Duration("timeout", contentCfg.Timeout))
		}
	}

	return fetchUC.NewService(feeds, articles, rss, syncer, content, cfg), nil
}

func defaultFeeds(portal *config.PortalConfig) []feedUC.AddInput {
	out := make([]feedUC.AddInput, len(portal.DefaultFeeds))
	for i, f := range portal.DefaultFeeds {
		out[i] = feedUC.AddInput{Name: f.Name, URL: f.URL, Category: f.Category}
	}
	return out
}

// Close releases the database.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
