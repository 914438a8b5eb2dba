package db

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConnectionConfig(t *testing.T) {
	cfg := DefaultConnectionConfig()

	assert.Equal(t, 4, cfg.MaxOpenConns)
	assert.Equal(t, 4, cfg.MaxIdleConns)
	assert.Equal(t, 1*time.Hour, cfg.ConnMaxLifetime)
	assert.Equal(t, 5*time.Second, cfg.BusyTimeout)
}

func TestDSN(t *testing.T) {
	dsn := DSN("data/articles.db", DefaultConnectionConfig())

	assert.True(t, strings.HasPrefix(dsn, "file:data/articles.db?"))
	assert.Contains(t, dsn, "_pragma=foreign_keys%281%29")
	assert.Contains(t, dsn, "_pragma=journal_mode%28WAL%29")
	assert.Contains(t, dsn, "_pragma=busy_timeout%285000%29")
}

func TestGetConnectionConfigFromEnv(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		expect ConnectionConfig
	}{
		{
			name:   "defaults",
			env:    map[string]string{},
			expect: DefaultConnectionConfig(),
		},
		{
			name: "overrides",
			env: map[string]string{
				"DB_MAX_OPEN_CONNS":    "8",
				"DB_MAX_IDLE_CONNS":    "2",
				"DB_CONN_MAX_LIFETIME": "10m",
				"DB_BUSY_TIMEOUT":      "2s",
			},
			expect: ConnectionConfig{MaxOpenConns: 8, MaxIdleConns: 2, ConnMaxLifetime: 10 * time.Minute, BusyTimeout: 2 * time.Second},
		},
		{
			name: "invalid values fall back to defaults",
			env: map[string]string{
				"DB_MAX_OPEN_CONNS":    "zero",
				"DB_MAX_IDLE_CONNS":    "-1",
				"DB_CONN_MAX_LIFETIME": "soon",
				"DB_BUSY_TIMEOUT":      "0s",
			},
			expect: DefaultConnectionConfig(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_BUSY_TIMEOUT"} {
				t.Setenv(k, tt.env[k])
			}
			assert.Equal(t, tt.expect, getConnectionConfigFromEnv())
		})
	}
}
