package llm

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder records one model call. outcome is a FailureClass label.
type MetricsRecorder interface {
	RecordRequest(provider, outcome string, duration time.Duration)
}

// PrometheusMetrics implements MetricsRecorder with client_golang.
type PrometheusMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	prometheusMetricsInstance *PrometheusMetrics
	prometheusMetricsOnce     sync.Once
)

func getOrCreateCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	return c
}

func getOrCreateHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
	}
	return h
}

// NewPrometheusMetrics returns the process-wide recorder. Registration happens
// once, so tests may call it repeatedly.
func NewPrometheusMetrics() *PrometheusMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusMetrics{
			requests: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "rssportal_llm_requests_total",
				Help: "Model calls by provider and outcome",
			}, []string{"provider", "outcome"}),
			duration: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "rssportal_llm_request_duration_seconds",
				Help:    "Model call latency in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
			}, []string{"provider"}),
		}
	})
	return prometheusMetricsInstance
}

func (m *PrometheusMetrics) RecordRequest(provider, outcome string, duration time.Duration) {
	m.requests.WithLabelValues(provider, outcome).Inc()
	if duration > 0 {
		m.duration.WithLabelValues(provider).Observe(duration.Seconds())
	}
}

// RequestCount exposes the counter for assertions.
func (m *PrometheusMetrics) RequestCount(provider, outcome string) prometheus.Counter {
	return m.requests.WithLabelValues(provider, outcome)
}

type noopMetrics struct{}

func (noopMetrics) RecordRequest(string, string, time.Duration) {}
