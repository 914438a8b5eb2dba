package status_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/handler/http/status"
)

type stubStats struct {
	st  entity.Stats
	err error
}

func (s stubStats) Stats(context.Context) (entity.Stats, error) { return s.st, s.err }

func serve(svc status.StatsReader, path string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	status.Register(mux, svc)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestRoot(t *testing.T) {
	rr := serve(stubStats{st: entity.Stats{Total: 120, Scored: 100, HighScore: 30, Feeds: 7}}, "/")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","service":"RSS Portal API","stats":{"feeds":7,"articles":120,"scored":100}}`, rr.Body.String())
}

func TestStats(t *testing.T) {
	rr := serve(stubStats{st: entity.Stats{Total: 120, Scored: 100, HighScore: 30, Feeds: 7}}, "/stats")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"feeds":7,"articles":{"total":120,"scored":100,"high_score":30}}`, rr.Body.String())
}

func TestStats_StoreFailure(t *testing.T) {
	for _, path := range []string{"/", "/stats"} {
		rr := serve(stubStats{err: errors.New("stats: database is locked")}, path)
		assert.Equal(t, http.StatusInternalServerError, rr.Code, path)
		assert.JSONEq(t, `{"error":"internal server error"}`, rr.Body.String(), path)
	}
}

func TestRoot_ExactMatchOnly(t *testing.T) {
	rr := serve(stubStats{}, "/unknown")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
