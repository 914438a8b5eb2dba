package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"rss-portal/internal/handler/http/respond"
	refreshUC "rss-portal/internal/usecase/refresh"
)

// Job statuses recorded in rssportal_worker_job_runs_total.
const (
	StatusStarted = "started"
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailure = "failure"
)

// Runner is the refresh pipeline.
type Runner interface {
	Run(ctx context.Context, opts refreshUC.Options) (refreshUC.Result, error)
}

// Job runs one scheduled refresh and records its outcome.
type Job struct {
	Runner  Runner
	Config  *WorkerConfig
	Metrics *WorkerMetrics
	Logger  *slog.Logger
}

// Run executes the refresh under Config.JobTimeout and returns the status
// it recorded. A run whose steps failed but which reached the end is
// "partial"; a run cut short by its context is "failure".
func (j *Job) Run(ctx context.Context) string {
	logger := j.logger()
	start := time.Now()
	j.Metrics.RecordJobRun(StatusStarted)
	logger.InfoContext(ctx, "scheduled refresh started")

	// 1回の実行時間の上限
	ctx, cancel := context.WithTimeout(ctx, j.Config.JobTimeout)
	defer cancel()

	result, err := j.Runner.Run(ctx, refreshUC.Options{
		FetchLimit: j.Config.FetchLimit,
		ScoreLimit: j.Config.ScoreLimit,
		ScoreDelay: j.Config.ScoreDelay,
	})
	j.Metrics.RecordJobDuration(time.Since(start).Seconds())
	j.Metrics.RecordArticles(result.Fetch.Inserted, result.Score.Scored)

	status := StatusSuccess
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = StatusFailure
		logger.ErrorContext(ctx, "scheduled refresh aborted",
			slog.String("run_id", result.RunID),
			slog.Duration("timeout", j.Config.JobTimeout),
			slog.Any("error", respond.SanitizeError(err)))
	case err != nil:
		status = StatusPartial
		logger.WarnContext(ctx, "scheduled refresh finished with errors",
			slog.String("run_id", result.RunID),
			slog.Int("errors", len(result.Errors)),
			slog.Any("error", respond.SanitizeError(err)))
	default:
		j.Metrics.RecordLastSuccess()
		logger.InfoContext(ctx, "scheduled refresh completed",
			slog.String("run_id", result.RunID),
			slog.Int("inserted", result.Fetch.Inserted),
			slog.Int("scored", result.Score.Scored),
			slog.Int("published", result.Published),
			slog.Int64("deleted", result.Deleted),
			slog.Duration("duration", result.Duration))
	}
	j.Metrics.RecordJobRun(status)
	return status
}

func (j *Job) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}

// NewScheduler registers job on cfg.CronSchedule in cfg's timezone. Ticks
// that arrive while a run is still going are skipped, and a panicking run
// is logged instead of killing the process. The scheduler is returned
// stopped; the caller starts it.
func NewScheduler(ctx context.Context, cfg *WorkerConfig, job *Job, logger *slog.Logger) (*cron.Cron, error) {
	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLocation(cfg.Location()),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(cfg.CronSchedule, func() { job.Run(ctx) }); err != nil {
		return nil, err
	}
	return c, nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	// cronの定期ログはノイズになるのでdebugに落とす
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
