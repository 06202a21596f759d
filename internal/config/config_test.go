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

	assert.Equal(t, "identity-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.True(t, cfg.Auth.CheckFailedAttempts)
	assert.Equal(t, 5, cfg.Auth.MaxFailedAttempts)
	assert.Equal(t, 30*time.Minute, cfg.Auth.ResetTokenTTL())
	assert.Equal(t, "identity.security-events", cfg.Redis.EventChannel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_CHECK_FAILED_ATTEMPTS", "false")
	t.Setenv("AUTH_MAX_FAILED_ATTEMPTS", "3")
	t.Setenv("AUTH_PASSWORD_RESET_TTL_MINUTES", "5")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Auth.CheckFailedAttempts)
	assert.Equal(t, 3, cfg.Auth.MaxFailedAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Auth.ResetTokenTTL())
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestInvalidIntFallsBack(t *testing.T) {
	t.Setenv("AUTH_MAX_FAILED_ATTEMPTS", "many")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Auth.MaxFailedAttempts)
}
