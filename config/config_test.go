package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 3, cfg.DriveStride)
	assert.Equal(t, 600*time.Millisecond, cfg.DrivePace)
	assert.Equal(t, "data", cfg.StaticDataDir)
	assert.False(t, cfg.RedisEnabled)
	assert.Contains(t, cfg.ORSBaseURL, "openrouteservice")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("DRIVE_STRIDE", "5")
	t.Setenv("DRIVE_PACE", "10ms")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("GEOCODE_CACHE_TTL", "1h")

	cfg := Load()
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, 5, cfg.DriveStride)
	assert.Equal(t, 10*time.Millisecond, cfg.DrivePace)
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, time.Hour, cfg.GeocodeTTL)
}

func TestBadValuesFallBack(t *testing.T) {
	t.Setenv("DRIVE_STRIDE", "lots")
	t.Setenv("DRIVE_PACE", "soon")
	t.Setenv("REDIS_ENABLED", "kinda")

	cfg := Load()
	assert.Equal(t, 3, cfg.DriveStride)
	assert.Equal(t, 600*time.Millisecond, cfg.DrivePace)
	assert.False(t, cfg.RedisEnabled)
}
