package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_DRIVER", "DB_CONNECT_RETRIES", "BREAKER_TIMEOUT", "LOG_LEVEL", "GIN_MODE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 10, cfg.DBConnectRetries)
	assert.Equal(t, 30*time.Second, cfg.BreakerTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db.local")
	t.Setenv("DB_NAME", "shelf")
	t.Setenv("BREAKER_MAX_FAILURES", "2")
	t.Setenv("SHUTDOWN_TIMEOUT", "1s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 2, cfg.BreakerMaxFailures)
	assert.Equal(t, time.Second, cfg.ShutdownTimeout)
	assert.Contains(t, cfg.PostgresDSN(), "host=db.local")
	assert.Contains(t, cfg.PostgresDSN(), "dbname=shelf")
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown driver", key: "STORE_DRIVER", value: "mongo"},
		{name: "unknown gin mode", key: "GIN_MODE", value: "verbose"},
		{name: "non numeric retries", key: "DB_CONNECT_RETRIES", value: "many"},
		{name: "zero retries", key: "DB_CONNECT_RETRIES", value: "0"},
		{name: "bad duration", key: "BREAKER_TIMEOUT", value: "soon"},
		{name: "negative failures", key: "BREAKER_MAX_FAILURES", value: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
