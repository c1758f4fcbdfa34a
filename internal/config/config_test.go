package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Pipeline.Debounce())
	assert.Equal(t, 700*time.Millisecond, cfg.Pipeline.RenderSettle())
	assert.Equal(t, 200, cfg.Dedup.Capacity)
	assert.Equal(t, 90*time.Second, cfg.Dedup.TTL())
	assert.Equal(t, 45*time.Second, cfg.Acceptance.Window())
	assert.Equal(t, 2*time.Hour, cfg.Acceptance.TripMax())
	assert.Equal(t, 20*time.Second, cfg.Raster.Cooldown())
	assert.True(t, cfg.Raster.Enabled)
	assert.False(t, cfg.Server.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)

	ex := cfg.Extract.ToExtract()
	assert.Equal(t, 2.0, ex.MinPrice)
	assert.Equal(t, 60.0, ex.MaxPlausibleRate)
	assert.Equal(t, 2.5, ex.TypicalRate)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FARESCOUT_DEDUP_CAPACITY", "50")
	t.Setenv("FARESCOUT_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Dedup.Capacity)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLoggerRejectsBadLevel(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "shout", Format: "json"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}
