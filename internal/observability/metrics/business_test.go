package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordArticleScored(t *testing.T) {
	before := testutil.ToFloat64(ArticlesScoredTotal.WithLabelValues("fallback"))
	RecordArticleScored("fallback")
	RecordArticleScored("fallback")
	assert.Equal(t, before+2, testutil.ToFloat64(ArticlesScoredTotal.WithLabelValues("fallback")))
}

func TestUpdateStoreStats(t *testing.T) {
	UpdateStoreStats(120, 80, 12)
	assert.Equal(t, 120.0, testutil.ToFloat64(ArticlesTotal))
	assert.Equal(t, 80.0, testutil.ToFloat64(ArticlesScoredGauge))
	assert.Equal(t, 12.0, testutil.ToFloat64(FeedsTotal))
}

func TestRecordFeedItems_IgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(FeedItemsTotal.WithLabelValues("inserted"))
	RecordFeedItems("inserted", 0)
	RecordFeedItems("inserted", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(FeedItemsTotal.WithLabelValues("inserted")))
}

func TestRecordCleanup(t *testing.T) {
	before := testutil.ToFloat64(CleanupDeletedTotal)
	RecordCleanup(0)
	RecordCleanup(4)
	assert.Equal(t, before+4, testutil.ToFloat64(CleanupDeletedTotal))
}

func TestRecordContentFetch(t *testing.T) {
	before := testutil.ToFloat64(ContentFetchAttemptsTotal.WithLabelValues("skipped"))
	RecordContentFetchSkipped()
	RecordContentFetchSuccess(time.Second)
	RecordContentFetchFailed(time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(ContentFetchAttemptsTotal.WithLabelValues("skipped")))
}
