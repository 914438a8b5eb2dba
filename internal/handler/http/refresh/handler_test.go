package refresh_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"rss-portal/internal/handler/http/refresh"
	refreshUC "rss-portal/internal/usecase/refresh"
)

/* ───────── モック実装 ───────── */

type stubRunner struct {
	mu      sync.Mutex
	opts    []refreshUC.Options
	ctxErrs []error
	release chan struct{}
	waitCtx bool
	err     error
}

func (s *stubRunner) Run(ctx context.Context, opts refreshUC.Options) (refreshUC.Result, error) {
	if s.release != nil {
		<-s.release
	}
	if s.waitCtx {
		<-ctx.Done()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = append(s.opts, opts)
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	return refreshUC.Result{RunID: "run"}, s.err
}

func (s *stubRunner) calls() []refreshUC.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]refreshUC.Options(nil), s.opts...)
}

func newHandler(runner refresh.Runner) *refresh.Handler {
	return refresh.NewHandler(runner, time.Hour, time.Minute)
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.Handle("POST /refresh", h)
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, "/refresh", nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, "/refresh", strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

/* ───────── テスト ───────── */

func TestHandler_StartsBackgroundRun(t *testing.T) {
	runner := &stubRunner{}
	h := newHandler(runner)

	rr := post(h, `{"fetch_limit":100,"score_limit":20}`)
	h.Wait()

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.JSONEq(t, `{"status":"started","message":"Refresh started in background"}`, rr.Body.String())
	require.Len(t, runner.calls(), 1)
	assert.Equal(t, refreshUC.Options{FetchLimit: 100, ScoreLimit: 20}, runner.calls()[0])
}

func TestHandler_EmptyBodyUsesDefaults(t *testing.T) {
	runner := &stubRunner{}
	h := newHandler(runner)

	rr := post(h, "")
	h.Wait()

	assert.Equal(t, http.StatusAccepted, rr.Code)
	require.Len(t, runner.calls(), 1)
	assert.Equal(t, refreshUC.Options{}, runner.calls()[0])
}

func TestHandler_RunOutlivesRequest(t *testing.T) {
	runner := &stubRunner{release: make(chan struct{})}
	h := newHandler(runner)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/refresh", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	cancel()
	close(runner.release)
	h.Wait()

	assert.Equal(t, http.StatusAccepted, rr.Code)
	require.Len(t, runner.ctxErrs, 1)
	assert.NoError(t, runner.ctxErrs[0], "request cancellation must not reach the run")
}

func TestHandler_ThrottlesByInterval(t *testing.T) {
	runner := &stubRunner{}
	h := newHandler(runner)

	first := post(h, "")
	h.Wait()
	second := post(h, "")
	h.Wait()

	assert.Equal(t, http.StatusAccepted, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "30", second.Header().Get("Retry-After"))
	assert.Len(t, runner.calls(), 1)
}

func TestHandler_RejectsWhileRunning(t *testing.T) {
	runner := &stubRunner{release: make(chan struct{})}
	h := newHandler(runner)
	h.Limiter = rate.NewLimiter(rate.Inf, 1)

	first := post(h, "")
	second := post(h, "")
	close(runner.release)
	h.Wait()

	assert.Equal(t, http.StatusAccepted, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.JSONEq(t, `{"error":"refresh already running"}`, second.Body.String())
	assert.Len(t, runner.calls(), 1)
}

func TestHandler_BadRequest(t *testing.T) {
	tests := map[string]string{
		"malformed":      `{"fetch_limit":`,
		"unknown field":  `{"limit":5}`,
		"negative fetch": `{"fetch_limit":-1}`,
		"huge score":     `{"score_limit":100000}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			runner := &stubRunner{}
			h := newHandler(runner)

			rr := post(h, body)
			h.Wait()

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Empty(t, runner.calls())
		})
	}
}

func TestHandler_RunErrorIsLoggedOnly(t *testing.T) {
	runner := &stubRunner{err: errors.New("fetch: timeout")}
	h := newHandler(runner)

	rr := post(h, "")
	h.Wait()

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Len(t, runner.calls(), 1)
}

func TestHandler_BaseContextCancelsRun(t *testing.T) {
	runner := &stubRunner{waitCtx: true}
	h := newHandler(runner)
	base, cancel := context.WithCancel(context.Background())
	h.Base = base

	rr := post(h, "")
	cancel()
	h.Wait()

	assert.Equal(t, http.StatusAccepted, rr.Code)
	require.Len(t, runner.ctxErrs, 1)
	assert.ErrorIs(t, runner.ctxErrs[0], context.Canceled)
}
