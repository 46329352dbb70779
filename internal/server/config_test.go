package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Shark-Fang/SharkChat/internal/store"
)

func TestDefaultConfig(t *testing.T) {
	t.Cleanup(func() { SetConfig(nil) })
	SetConfig(nil)

	cfg := currentConfig()
	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, store.DefaultHistoryLimit, cfg.HistoryLimit)
	assert.Positive(t, cfg.MaxMessageSize)
	assert.Positive(t, cfg.RateLimit.Burst)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestSetConfigSanitizesZeroValues(t *testing.T) {
	t.Cleanup(func() { SetConfig(nil) })

	SetConfig(&Config{})

	cfg := currentConfig()
	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, store.DefaultHistoryLimit, cfg.HistoryLimit)
	assert.Positive(t, cfg.MaxMessageSize)
	assert.Positive(t, cfg.RateLimit.Burst)
	assert.Positive(t, cfg.RateLimit.RefillInterval)
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Cleanup(func() { SetConfig(nil) })
	t.Setenv("SERVER_PORT", ":9999")
	t.Setenv("ALLOWED_ORIGINS", "https://chat.example.com, https://other.example.com")
	t.Setenv("DATABASE_URL", "postgres://localhost/sharkchat")
	t.Setenv("HISTORY_LIMIT", "25")
	t.Setenv("MAX_MESSAGE_SIZE", "1024")
	t.Setenv("RATE_LIMIT_BURST", "10")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2")

	cfg := NewConfigFromEnv()

	assert.Equal(t, ":9999", cfg.Port)
	assert.Equal(t, []string{"https://chat.example.com", "https://other.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "postgres://localhost/sharkchat", cfg.DatabaseURL)
	assert.Equal(t, 25, cfg.HistoryLimit)
	assert.Equal(t, int64(1024), cfg.MaxMessageSize)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.RefillInterval)
}

func TestNewConfigFromEnvIgnoresGarbage(t *testing.T) {
	t.Cleanup(func() { SetConfig(nil) })
	t.Setenv("HISTORY_LIMIT", "lots")
	t.Setenv("MAX_MESSAGE_SIZE", "-1")
	t.Setenv("RATE_LIMIT_BURST", "0")

	cfg := NewConfigFromEnv()
	defaults := defaultConfig()

	assert.Equal(t, defaults.HistoryLimit, cfg.HistoryLimit)
	assert.Equal(t, defaults.MaxMessageSize, cfg.MaxMessageSize)
	assert.Equal(t, defaults.RateLimit.Burst, cfg.RateLimit.Burst)
}
