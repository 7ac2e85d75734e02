package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token-de-teste")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 600*time.Second, cfg.CheckInterval)
	assert.Equal(t, 60*time.Second, cfg.BackoffInterval)
	assert.Equal(t, 300*time.Second, cfg.CycleTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.BatchPause)
	assert.Equal(t, 10, cfg.FetchConcurrency)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, ":8000", cfg.APIListenAddr)
	assert.Empty(t, cfg.APIAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token-de-teste")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CHECK_INTERVAL_SECONDS", "300")
	t.Setenv("BACKOFF_SECONDS", "30")
	t.Setenv("BATCH_SIZE", "20")
	t.Setenv("FETCH_CONCURRENCY", "5")
	t.Setenv("API_ALLOWED_ORIGINS", "chrome-extension://abc, http://localhost:8000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis:6380", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 300*time.Second, cfg.CheckInterval)
	assert.Equal(t, 30*time.Second, cfg.BackoffInterval)
	assert.Equal(t, 20, cfg.BatchSize)
	assert.Equal(t, 5, cfg.FetchConcurrency)
	assert.Equal(t, []string{"chrome-extension://abc", "http://localhost:8000"}, cfg.APIAllowedOrigins)
}

func TestLoadClampsBackoffBelowInterval(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token-de-teste")
	t.Setenv("CHECK_INTERVAL_SECONDS", "60")
	t.Setenv("BACKOFF_SECONDS", "120")

	cfg, err := Load()
	require.NoError(t, err)

	// O backoff nunca pode ser maior ou igual ao intervalo normal
	assert.Less(t, cfg.BackoffInterval, cfg.CheckInterval)
}
