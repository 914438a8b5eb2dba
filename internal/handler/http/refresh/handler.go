// Package refresh starts a pipeline run in the background on request.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"rss-portal/internal/handler/http/respond"
	"rss-portal/internal/observability/logging"
	refreshUC "rss-portal/internal/usecase/refresh"
)

const (
	// DefaultInterval is the minimum spacing between accepted requests.
	DefaultInterval = 30 * time.Second
	// DefaultTimeout bounds one background run.
	DefaultTimeout = 30 * time.Minute

	maxFetchLimit = 10000
	maxScoreLimit = 500
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context, opts refreshUC.Options) (refreshUC.Result, error)
}

// Request is the optional body of POST /refresh. Zero fields use the
// pipeline defaults.
type Request struct {
	FetchLimit int `json:"fetch_limit"`
	ScoreLimit int `json:"score_limit"`
}

func (r Request) validate() error {
	if r.FetchLimit < 0 || r.FetchLimit > maxFetchLimit {
		return fmt.Errorf("fetch_limit must be between 0 and %d", maxFetchLimit)
	}
	if r.ScoreLimit < 0 || r.ScoreLimit > maxScoreLimit {
		return fmt.Errorf("score_limit must be between 0 and %d", maxScoreLimit)
	}
	return nil
}

// Response is the 202 body.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Handler answers POST /refresh with 202 and runs the pipeline detached
// from the request. Requests closer than the limiter interval, or while a
// run is still going, get 429.
type Handler struct {
	Runner  Runner
	Limiter *rate.Limiter
	Timeout time.Duration
	// Base cancels background runs on shutdown. Optional.
	Base context.Context

	running atomic.Bool
	wg      sync.WaitGroup
}

func NewHandler(runner Runner, interval, timeout time.Duration) *Handler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Handler{
		Runner:  runner,
		Limiter: rate.NewLimiter(rate.Every(interval), 1),
		Timeout: timeout,
	}
}

// Register mounts POST /refresh on mux.
func Register(mux *http.ServeMux, h *Handler) {
	mux.Handle("POST /refresh", h)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := respond.DecodeJSON(r, &req, true); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if h.running.Load() {
		w.Header().Set("Retry-After", "60")
		respond.Error(w, http.StatusTooManyRequests, fmt.Errorf("refresh already running"))
		return
	}
	if h.Limiter != nil && !h.Limiter.Allow() {
		w.Header().Set("Retry-After", "30")
		respond.Error(w, http.StatusTooManyRequests, fmt.Errorf("refresh requested too often"))
		return
	}
	if !h.running.CompareAndSwap(false, true) {
		respond.Error(w, http.StatusTooManyRequests, fmt.Errorf("refresh already running"))
		return
	}

	// リクエスト終了後も続行するため、キャンセルは引き継がず値だけ残す
	ctx := context.WithoutCancel(r.Context())
	logger := logging.FromContext(r.Context())

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.running.Store(false)
		h.run(ctx, logger, refreshUC.Options{FetchLimit: req.FetchLimit, ScoreLimit: req.ScoreLimit})
	}()

	respond.JSON(w, http.StatusAccepted, Response{
		Status:  "started",
		Message: "Refresh started in background",
	})
}

func (h *Handler) run(ctx context.Context, logger *slog.Logger, opts refreshUC.Options) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if h.Base != nil {
		stop := context.AfterFunc(h.Base, cancel)
		defer stop()
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("background refresh panicked", slog.Any("panic", rec))
		}
	}()

	res, err := h.Runner.Run(ctx, opts)
	if err != nil {
		logger.ErrorContext(ctx, "background refresh finished with errors",
			slog.String("run_id", res.RunID),
			slog.Any("error", err))
		return
	}
	logger.InfoContext(ctx, "background refresh completed",
		slog.String("run_id", res.RunID),
		slog.Int("inserted", res.Fetch.Inserted),
		slog.Int("scored", res.Score.Scored),
		slog.Int64("deleted", res.Deleted))
}

// Wait blocks until every background run has returned.
func (h *Handler) Wait() {
	h.wg.Wait()
}
