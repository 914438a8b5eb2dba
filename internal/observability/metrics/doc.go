// Package metrics provides Prometheus metrics registry and recording utilities.
//
// HTTP metrics are recorded by the handler middleware. Portal metrics cover
// feed fetching, scoring outcomes, publishing and retention; store gauges are
// refreshed at the end of every refresh run.
//
// Example usage:
//
//	import "rss-portal/internal/observability/metrics"
//
//	metrics.RecordArticleScored("scored")
//	metrics.UpdateStoreStats(stats.Total, stats.Scored, stats.Feeds)
package metrics
