package worker

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WorkerMetrics provides Prometheus metrics for the scheduled refresh.
//
// Metrics:
//   - rssportal_worker_job_runs_total: runs by status (started, success, partial, failure)
//   - rssportal_worker_job_duration_seconds: duration histogram of one run
//   - rssportal_worker_articles_inserted_total: articles stored by scheduled runs
//   - rssportal_worker_articles_scored_total: articles scored by scheduled runs
//   - rssportal_worker_job_last_success_timestamp: Unix time of the last clean run
//   - rssportal_worker_config_fallbacks_total: invalid settings replaced by defaults
//   - rssportal_worker_config_load_timestamp: Unix time of the last config load
//
// Example usage:
//
//	metrics := NewWorkerMetrics()
//	metrics.MustRegister(prometheus.DefaultRegisterer)
type WorkerMetrics struct {
	JobRunsTotal          *prometheus.CounterVec
	JobDurationSeconds    prometheus.Histogram
	ArticlesInsertedTotal prometheus.Counter
	ArticlesScoredTotal   prometheus.Counter
	LastSuccessTimestamp  prometheus.Gauge
	ConfigFallbacksTotal  *prometheus.CounterVec
	ConfigLoadTimestamp   prometheus.Gauge
}

// NewWorkerMetrics creates the collectors without registering them, so
// tests can build as many instances as they like.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		JobRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rssportal_worker_job_runs_total",
			Help: "Scheduled refresh runs by status",
		}, []string{"status"}),

		JobDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rssportal_worker_job_duration_seconds",
			Help:    "Duration of scheduled refresh runs in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800}, // 1s, 5s, 30s, 1m, 5m, 15m, 30m
		}),

		ArticlesInsertedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rssportal_worker_articles_inserted_total",
			Help: "Articles stored by scheduled refresh runs",
		}),

		ArticlesScoredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rssportal_worker_articles_scored_total",
			Help: "Articles scored by scheduled refresh runs",
		}),

		LastSuccessTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rssportal_worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last refresh run without errors",
		}),

		ConfigFallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rssportal_worker_config_fallbacks_total",
			Help: "Invalid worker settings replaced by their defaults",
		}, []string{"field"}),

		ConfigLoadTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rssportal_worker_config_load_timestamp",
			Help: "Unix timestamp of the last worker configuration load",
		}),
	}
}

// MustRegister registers every collector with reg and panics on conflict.
func (m *WorkerMetrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		m.JobRunsTotal,
		m.JobDurationSeconds,
		m.ArticlesInsertedTotal,
		m.ArticlesScoredTotal,
		m.LastSuccessTimestamp,
		m.ConfigFallbacksTotal,
		m.ConfigLoadTimestamp,
	)
}

func (m *WorkerMetrics) RecordJobRun(status string) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
}

func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.JobDurationSeconds.Observe(seconds)
}

// RecordArticles adds the counts of one run.
func (m *WorkerMetrics) RecordArticles(inserted, scored int) {
	m.ArticlesInsertedTotal.Add(float64(inserted))
	m.ArticlesScoredTotal.Add(float64(scored))
}

func (m *WorkerMetrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}

func (m *WorkerMetrics) RecordFallback(field string) {
	m.ConfigFallbacksTotal.WithLabelValues(field).Inc()
}

func (m *WorkerMetrics) RecordLoadTimestamp() {
	m.ConfigLoadTimestamp.SetToCurrentTime()
}
