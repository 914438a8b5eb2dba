// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInFlight is the number of requests being served
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)
)

// Portal metrics track the fetch → score → publish pipeline
var (
	// ArticlesTotal tracks the number of stored articles
	ArticlesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rssportal_articles_total",
			Help: "Total number of articles in the database",
		},
	)

	// ArticlesScoredGauge tracks the number of articles with a real score
	ArticlesScoredGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rssportal_articles_scored",
			Help: "Number of stored articles that have been scored",
		},
	)

	// FeedsTotal tracks active feeds
	FeedsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rssportal_feeds_total",
			Help: "Number of active feeds",
		},
	)

	// ArticlesScoredTotal counts scoring outcomes: scored, fallback, write_error
	ArticlesScoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rssportal_articles_scored_total",
			Help: "Articles processed by the scoring orchestrator by result",
		},
		[]string{"result"},
	)

	// FeedFetchDuration measures time to fetch and parse one feed
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rssportal_feed_fetch_duration_seconds",
			Help:    "Time taken to fetch and parse a feed",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"feed"},
	)

	// FeedFetchErrors counts feed fetch failures
	FeedFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rssportal_feed_fetch_errors_total",
			Help: "Total number of feed fetch errors",
		},
		[]string{"feed", "error_type"},
	)

	// FeedItemsTotal counts feed entries by result: inserted, duplicate, skipped
	FeedItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rssportal_feed_fetch_items_total",
			Help: "Feed entries seen during fetches by result",
		},
		[]string{"result"},
	)

	// ContentFetchAttemptsTotal counts content enrichment attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rssportal_content_fetch_attempts_total",
			Help: "Total number of article content fetch attempts",
		},
		[]string{"result"}, // result: success, failure, skipped
	)

	// ContentFetchDuration measures time to fetch article content
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rssportal_content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// PublishedArticles is the size of the last published document
	PublishedArticles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rssportal_published_articles",
			Help: "Number of articles in the last published JSON document",
		},
	)

	// CleanupDeletedTotal counts articles removed by retention
	CleanupDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rssportal_cleanup_deleted_total",
			Help: "Articles deleted by the retention job",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
