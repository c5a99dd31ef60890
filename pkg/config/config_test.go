package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "127.0.0.1:3000", cfg.Addr())
	assert.False(t, cfg.NoTLS)
	assert.False(t, cfg.SevenPartCron)
	assert.Equal(t, 5*time.Second, cfg.TickInterval)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("UNPATCHED_BIND", "0.0.0.0")
		t.Setenv("UNPATCHED_PORT", "8443")
		t.Setenv("UNPATCHED_NO_TLS", "true")
		t.Setenv("UNPATCHED_SEVEN_PART_CRON", "1")
		t.Setenv("UNPATCHED_TICK_INTERVAL", "250ms")
		t.Setenv("UNPATCHED_LOG_LEVEL", "debug")

		cfg, err := LoadFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "0.0.0.0:8443", cfg.Addr())
		assert.True(t, cfg.NoTLS)
		assert.True(t, cfg.SevenPartCron)
		assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
		assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	})

	t.Run("unset environment keeps defaults", func(t *testing.T) {
		cfg, err := LoadFromEnv()
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig().Addr(), cfg.Addr())
	})

	t.Run("unparseable port fails", func(t *testing.T) {
		t.Setenv("UNPATCHED_PORT", "not-a-port")

		_, err := LoadFromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "UNPATCHED_PORT")
	})

	t.Run("unparseable bool fails", func(t *testing.T) {
		t.Setenv("UNPATCHED_NO_TLS", "maybe")

		_, err := LoadFromEnv()
		require.Error(t, err)
	})
}

func TestConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"WARN", slog.LevelWarn},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			cfg := Config{LogLevel: tt.level}
			assert.Equal(t, tt.want, cfg.SlogLevel())
		})
	}
}
