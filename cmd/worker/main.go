package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rss-portal/internal/app"
	workerPkg "rss-portal/internal/infra/worker"
	"rss-portal/internal/observability/logging"
	"rss-portal/internal/observability/tracing"
)

func main() {
	logger := initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.Init()
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to shut down tracing", slog.Any("error", err))
		}
	}()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister(prometheus.DefaultRegisterer)
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("fetch_limit", workerConfig.FetchLimit),
		slog.Int("score_limit", workerConfig.ScoreLimit),
		slog.Duration("score_delay", workerConfig.ScoreDelay),
		slog.Duration("job_timeout", workerConfig.JobTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	components, err := app.New(ctx, logger)
	if err != nil {
		logger.Error("failed to initialize worker", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := components.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	healthServer := workerPkg.NewHealthServer(workerConfig.HealthAddr(), logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	if workerConfig.WatchOPML {
		go watchOPML(ctx, logger, components)
	}

	runScheduler(ctx, logger, components, workerConfig, workerMetrics, healthServer)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// watchOPML re-imports the OPML file on change until ctx is done.
func watchOPML(ctx context.Context, logger *slog.Logger, components *app.App) {
	logger.Info("watching OPML file", slog.String("path", components.Feeds.OPMLPath))
	if err := components.Feeds.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("OPML watcher stopped", slog.Any("error", err))
	}
}

// runScheduler blocks until ctx is cancelled, then waits for a running job.
func runScheduler(
	ctx context.Context,
	logger *slog.Logger,
	components *app.App,
	cfg *workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
	healthServer *workerPkg.HealthServer,
) {
	job := &workerPkg.Job{
		Runner:  components.Refresh,
		Config:  cfg,
		Metrics: metrics,
		Logger:  logger,
	}
	c, err := workerPkg.NewScheduler(ctx, cfg, job, logger)
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Time("next_run", c.Entries()[0].Next))

	<-ctx.Done()
	logger.Info("shutting down worker...")
	healthServer.SetReady(false)

	// 実行中のジョブはctxキャンセルで中断されるので、終了を待つ
	stopped := c.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("running refresh did not stop in time")
	}
	logger.Info("worker stopped")
}
