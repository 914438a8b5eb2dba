package worker

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rss-portal/internal/domain/entity"
	fetchUC "rss-portal/internal/usecase/fetch"
	refreshUC "rss-portal/internal/usecase/refresh"
)

/* ───────── モック実装 ───────── */

type stubRunner struct {
	result  refreshUC.Result
	err     error
	gotOpts refreshUC.Options
	gotDL   bool
}

func (s *stubRunner) Run(ctx context.Context, opts refreshUC.Options) (refreshUC.Result, error) {
	s.gotOpts = opts
	_, s.gotDL = ctx.Deadline()
	return s.result, s.err
}

func newJob(r Runner, buf *bytes.Buffer) *Job {
	cfg := DefaultConfig()
	cfg.FetchLimit = 200
	return &Job{Runner: r, Config: &cfg, Metrics: NewWorkerMetrics(), Logger: testLogger(buf)}
}

/* ───────── 1. Job.Run ───────── */

func TestJob_Run_Success(t *testing.T) {
	var buf bytes.Buffer
	runner := &stubRunner{result: refreshUC.Result{
		RunID: "run-1",
		Fetch: fetchUC.Result{Inserted: 7},
		Score: entity.BatchResult{Processed: 5, Scored: 4, Errors: 1},
	}}
	job := newJob(runner, &buf)

	status := job.Run(context.Background())

	assert.Equal(t, StatusSuccess, status)
	assert.Equal(t, refreshUC.Options{FetchLimit: 200, ScoreLimit: 50, ScoreDelay: 1500 * time.Millisecond}, runner.gotOpts)
	assert.True(t, runner.gotDL, "run must carry the job timeout")
	assert.Equal(t, float64(1), testutil.ToFloat64(job.Metrics.JobRunsTotal.WithLabelValues(StatusStarted)))
	assert.Equal(t, float64(1), testutil.ToFloat64(job.Metrics.JobRunsTotal.WithLabelValues(StatusSuccess)))
	assert.Equal(t, float64(7), testutil.ToFloat64(job.Metrics.ArticlesInsertedTotal))
	assert.Equal(t, float64(4), testutil.ToFloat64(job.Metrics.ArticlesScoredTotal))
	assert.Greater(t, testutil.ToFloat64(job.Metrics.LastSuccessTimestamp), float64(0))
	assert.Contains(t, buf.String(), "scheduled refresh completed")
}

func TestJob_Run_Partial(t *testing.T) {
	var buf bytes.Buffer
	runner := &stubRunner{
		result: refreshUC.Result{RunID: "run-2", Errors: []string{"publish: disk full"}},
		err:    errors.New("publish: disk full"),
	}
	job := newJob(runner, &buf)

	status := job.Run(context.Background())

	assert.Equal(t, StatusPartial, status)
	assert.Equal(t, float64(1), testutil.ToFloat64(job.Metrics.JobRunsTotal.WithLabelValues(StatusPartial)))
	assert.Equal(t, float64(0), testutil.ToFloat64(job.Metrics.LastSuccessTimestamp))
	assert.Contains(t, buf.String(), "scheduled refresh finished with errors")
}

func TestJob_Run_Timeout(t *testing.T) {
	var buf bytes.Buffer
	runner := &stubRunner{err: context.DeadlineExceeded}
	job := newJob(runner, &buf)

	status := job.Run(context.Background())

	assert.Equal(t, StatusFailure, status)
	assert.Equal(t, float64(1), testutil.ToFloat64(job.Metrics.JobRunsTotal.WithLabelValues(StatusFailure)))
	assert.Contains(t, buf.String(), "scheduled refresh aborted")
}

func TestJob_Run_SanitizesErrors(t *testing.T) {
	var buf bytes.Buffer
	runner := &stubRunner{err: errors.New("score: bad key sk-ant-abcdefghijklmnop")}
	job := newJob(runner, &buf)

	job.Run(context.Background())
	assert.NotContains(t, buf.String(), "abcdefghijklmnop")
}

/* ───────── 2. NewScheduler ───────── */

func TestNewScheduler(t *testing.T) {
	var buf bytes.Buffer
	job := newJob(&stubRunner{}, &buf)

	c, err := NewScheduler(context.Background(), job.Config, job, job.Logger)
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)
	assert.Equal(t, "Asia/Tokyo", c.Location().String())
}

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	var buf bytes.Buffer
	job := newJob(&stubRunner{}, &buf)
	job.Config.CronSchedule = "not a schedule"

	_, err := NewScheduler(context.Background(), job.Config, job, job.Logger)
	assert.Error(t, err)
}
