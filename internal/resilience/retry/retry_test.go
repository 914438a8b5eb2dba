package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordWaits replaces the real timer and collects requested delays.
func recordWaits(t *testing.T) *[]time.Duration {
	t.Helper()
	var waits []time.Duration
	orig := waitFunc
	waitFunc = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	t.Cleanup(func() { waitFunc = orig })
	return &waits
}

func testConfig() Config {
	return Config{MaxAttempts: 3, InitialDelay: 10 * time.Millisecond, MaxDelay: 15 * time.Millisecond, Multiplier: 2.0}
}

func TestWithBackoff_Success(t *testing.T) {
	waits := recordWaits(t)
	attempts := 0
	err := WithBackoff(context.Background(), testConfig(), func() error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, *waits)
}

func TestWithBackoff_SuccessAfterRetry(t *testing.T) {
	waits := recordWaits(t)
	attempts := 0
	err := WithBackoff(context.Background(), testConfig(), func() error {
		attempts++
		if attempts < 3 {
			return &HTTPError{StatusCode: 503, Message: "unavailable"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 15 * time.Millisecond}, *waits, "second delay is capped")
}

func TestWithBackoff_MaxAttemptsExceeded(t *testing.T) {
	recordWaits(t)
	serverErr := &HTTPError{StatusCode: 500, Message: "boom"}
	attempts := 0
	err := WithBackoff(context.Background(), testConfig(), func() error {
		attempts++
		return serverErr
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, serverErr)
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")
	assert.Equal(t, 3, attempts)
}

func TestWithBackoff_NonRetryableError(t *testing.T) {
	waits := recordWaits(t)
	notFound := &HTTPError{StatusCode: 404, Message: "not found"}
	attempts := 0
	err := WithBackoff(context.Background(), testConfig(), func() error {
		attempts++
		return notFound
	})
	assert.Equal(t, notFound, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, *waits)
}

func TestWithBackoff_ContextCanceled(t *testing.T) {
	recordWaits(t)
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := WithBackoff(ctx, testConfig(), func() error {
		attempts++
		cancel()
		return &HTTPError{StatusCode: 502}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "retry aborted")
	assert.Equal(t, 1, attempts)
}

func TestDo_ReturnsValue(t *testing.T) {
	recordWaits(t)
	calls := 0
	got, err := Do(context.Background(), testConfig(), func() ([]byte, error) {
		calls++
		if calls == 1 {
			return nil, syscall.ECONNRESET
		}
		return []byte("<rss/>"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "<rss/>", string(got))
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Config{}, func() (int, error) {
		calls++
		return 0, &HTTPError{StatusCode: 500}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), false},
		{"net timeout", timeoutErr{}, true},
		{"conn refused", syscall.ECONNREFUSED, true},
		{"conn reset wrapped", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"500", &HTTPError{StatusCode: 500}, true},
		{"503 wrapped", fmt.Errorf("fetch: %w", &HTTPError{StatusCode: 503}), true},
		{"429", &HTTPError{StatusCode: 429}, true},
		{"408", &HTTPError{StatusCode: 408}, true},
		{"404", &HTTPError{StatusCode: 404}, false},
		{"403", &HTTPError{StatusCode: 403}, false},
		{"plain", errors.New("parse error"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestPresetConfigs(t *testing.T) {
	for name, cfg := range map[string]Config{
		"default": DefaultConfig(),
		"feed":    FeedFetchConfig(),
		"content": ContentFetchConfig(),
		"notify":  NotifyConfig(),
	} {
		t.Run(name, func(t *testing.T) {
			assert.GreaterOrEqual(t, cfg.MaxAttempts, 1)
			assert.LessOrEqual(t, cfg.InitialDelay, cfg.MaxDelay)
			assert.Greater(t, cfg.Multiplier, 1.0)
		})
	}
}

func TestHTTPError_Error(t *testing.T) {
	assert.Equal(t, "HTTP 502: bad gateway", (&HTTPError{StatusCode: 502, Message: "bad gateway"}).Error())
}

func TestAddJitter(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		got := addJitter(base, 0.1)
		assert.GreaterOrEqual(t, got, base)
		assert.LessOrEqual(t, got, base+10*time.Millisecond)
	}
	assert.Equal(t, base, addJitter(base, 0))
	assert.LessOrEqual(t, addJitter(base, 5), 2*base)
}
