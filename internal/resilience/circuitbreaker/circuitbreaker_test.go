package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Name:             "test-circuit",
		MaxRequests:      1,
		Interval:         10 * time.Second,
		Timeout:          time.Hour,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

func TestNew(t *testing.T) {
	cb := New(testConfig())
	assert.Equal(t, "test-circuit", cb.Name())
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.False(t, cb.IsOpen())
}

func TestDo_Success(t *testing.T) {
	cb := New(testConfig())
	got, err := Do(cb, func() ([]string, error) { return []string{"a"}, nil })
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
}

func TestDo_TripsAndRejects(t *testing.T) {
	cb := New(testConfig())
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		_, err := Do(cb, func() (int, error) { return 0, boom })
		assert.ErrorIs(t, err, boom)
	}
	assert.True(t, cb.IsOpen())

	called := false
	_, err := Do(cb, func() (int, error) { called = true; return 1, nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestDo_BelowMinRequestsStaysClosed(t *testing.T) {
	cb := New(testConfig())
	for i := 0; i < 2; i++ {
		_, _ = Do(cb, func() (int, error) { return 0, errors.New("x") })
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestPresetConfigs(t *testing.T) {
	for _, cfg := range []Config{FeedFetchConfig(), ContentFetchConfig()} {
		assert.NotEmpty(t, cfg.Name)
		assert.Greater(t, cfg.FailureThreshold, 0.0)
		assert.Greater(t, cfg.MinRequests, uint32(0))
	}
}
