package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rss-portal/internal/app"
	hhttp "rss-portal/internal/handler/http"
	harticle "rss-portal/internal/handler/http/article"
	hfeedback "rss-portal/internal/handler/http/feedback"
	"rss-portal/internal/handler/http/middleware"
	hrefresh "rss-portal/internal/handler/http/refresh"
	"rss-portal/internal/handler/http/requestid"
	hstatus "rss-portal/internal/handler/http/status"
	"rss-portal/internal/observability/logging"
	"rss-portal/internal/observability/tracing"
	"rss-portal/pkg/config"
)

// ServerComponents holds what runServer needs besides the handler.
type ServerComponents struct {
	Handler http.Handler
	Refresh *hrefresh.Handler
}

func main() {
	logger := initLogger()

	shutdownTracing := tracing.Init()
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to shut down tracing", slog.Any("error", err))
		}
	}()

	components := initApp(logger)
	defer func() {
		if err := components.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	serverComponents := setupServer(logger, components, version)

	runServer(logger, serverComponents, version)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initApp opens the database and wires the use cases.
func initApp(logger *slog.Logger) *app.App {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	components, err := app.New(ctx, logger)
	if err != nil {
		logger.Error("failed to initialize application", slog.Any("error", err))
		os.Exit(1)
	}
	return components
}

func getVersion() string {
	return config.GetEnvString("VERSION", "dev")
}

func setupServer(logger *slog.Logger, components *app.App, version string) *ServerComponents {
	refreshHandler := hrefresh.NewHandler(
		components.Refresh,
		config.GetEnvDuration("REFRESH_MIN_INTERVAL", hrefresh.DefaultInterval),
		config.GetEnvDuration("REFRESH_TIMEOUT", hrefresh.DefaultTimeout),
	)

	mux := setupRoutes(components, refreshHandler, version)
	return &ServerComponents{
		Handler: applyMiddleware(logger, mux),
		Refresh: refreshHandler,
	}
}

func setupRoutes(components *app.App, refreshHandler *hrefresh.Handler, version string) *http.ServeMux {
	publishCfg := components.Publish.Config

	mux := http.NewServeMux()

	// ヘルスチェックエンドポイント
	mux.Handle("GET /health", &hhttp.HealthHandler{DB: components.DB, Scoring: components.LLM, Version: version})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: components.DB})
	mux.Handle("GET /live", hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	hstatus.Register(mux, components.Articles)
	harticle.Register(mux, harticle.Handlers{
		List: harticle.ListHandler{
			Svc:             components.Publish,
			DefaultMinScore: publishCfg.MinScore,
			DefaultLimit:    publishCfg.Limit,
		},
		Static: harticle.StaticHandler{
			Path:     publishCfg.OutputPath,
			Svc:      components.Publish,
			MinScore: publishCfg.MinScore,
			Limit:    publishCfg.Limit,
		},
		Score: harticle.ScoreHandler{Svc: components.Score},
	})
	hfeedback.Register(mux, components.Feedback)
	hrefresh.Register(mux, refreshHandler)

	return mux
}

func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	corsConfig, err := middleware.LoadCORSConfig()
	if err != nil {
		logger.Error("failed to load CORS configuration", slog.Any("error", err))
		os.Exit(1)
	}
	corsConfig.Logger = logger

	logger.Info("CORS enabled",
		slog.Any("allowed_origins", corsConfig.AllowedOrigins),
		slog.Any("allowed_methods", corsConfig.AllowedMethods),
		slog.Int("max_age", corsConfig.MaxAge))

	// Order, outermost first:
	// 1. CORS (handles preflight requests early)
	// 2. Request ID
	// 3. Recovery
	// 4. Logging
	// 5. Body size limit
	// 6. Tracing
	// 7. Metrics
	return hhttp.Chain(handler,
		middleware.CORS(corsConfig),
		requestid.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.LimitRequestBody(hhttp.DefaultMaxBodyBytes),
		tracing.Middleware,
		hhttp.MetricsMiddleware,
	)
}

func runServer(logger *slog.Logger, components *ServerComponents, version string) {
	// Background refresh runs derive from this context and stop on shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	components.Refresh.Base = ctx

	addr := ":" + config.GetEnvString("PORT", "8080")
	addr = config.GetEnvString("API_ADDR", addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}

	// バックグラウンドのリフレッシュを止めて終了を待つ
	cancel()
	components.Refresh.Wait()
	logger.Info("server stopped")
}
