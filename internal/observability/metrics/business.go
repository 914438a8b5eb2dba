package metrics

import (
	"time"
)

// RecordArticleScored counts one article leaving the scoring orchestrator.
// result is one of scored, fallback or write_error.
func RecordArticleScored(result string) {
	ArticlesScoredTotal.WithLabelValues(result).Inc()
}

// RecordFeedFetch records the duration of one feed fetch.
func RecordFeedFetch(feed string, duration time.Duration) {
	FeedFetchDuration.WithLabelValues(feed).Observe(duration.Seconds())
}

// RecordFeedFetchError records an error during feed fetching.
func RecordFeedFetchError(feed, errorType string) {
	FeedFetchErrors.WithLabelValues(feed, errorType).Inc()
}

// RecordFeedItems adds n entries with the given result.
func RecordFeedItems(result string, n int) {
	if n > 0 {
		FeedItemsTotal.WithLabelValues(result).Add(float64(n))
	}
}

// RecordContentFetchSuccess records a successful content fetch operation.
func RecordContentFetchSuccess(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchFailed records a failed content fetch operation.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchSkipped records that the feed summary was long enough.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}

// UpdateStoreStats refreshes the article and feed gauges.
// This gauge should be updated after each refresh.
func UpdateStoreStats(articles, scored, feeds int) {
	ArticlesTotal.Set(float64(articles))
	ArticlesScoredGauge.Set(float64(scored))
	FeedsTotal.Set(float64(feeds))
}

// RecordPublished records the size of a published document.
func RecordPublished(displayed int) {
	PublishedArticles.Set(float64(displayed))
}

// RecordCleanup adds deleted articles to the retention counter.
func RecordCleanup(deleted int64) {
	if deleted > 0 {
		CleanupDeletedTotal.Add(float64(deleted))
	}
}
