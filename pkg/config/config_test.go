package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokoadmin/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Port)
	assert.Equal(t, "http://localhost:3001/api/v1", cfg.Upstream.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "technology-heaven-token", cfg.Session.CookieName)
	assert.Equal(t, "notifications", cfg.RabbitMQ.Exchange)
	assert.Equal(t, 10, cfg.Table.Rows)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("UPSTREAM_BASE_URL", "http://store.internal:3001/api/v1/")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("TABLE_ROWS", "25")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Port)
	assert.Equal(t, "http://store.internal:3001/api/v1", cfg.Upstream.BaseURL, "trailing slash is trimmed")
	assert.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 25, cfg.Table.Rows)
	assert.Equal(t, "s3cret", cfg.Session.JWTSecret)
}

func TestLoad_RejectsBadUpstream(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("UPSTREAM_BASE_URL", "not a url")

	_, err := config.Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "UPSTREAM_BASE_URL")
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}
