package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_Defaults(t *testing.T) {
	t.Setenv("NODE_ENV", "")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, StoreRedis, cfg.Credentials.Store)
	assert.True(t, cfg.Credentials.PurgeMalformed)
	assert.False(t, cfg.Credentials.AllowNonExpiring)
	assert.Equal(t, 24*time.Hour, cfg.Credentials.TTL)
	assert.True(t, cfg.Credentials.CookieSecure)
	assert.Equal(t, "http://localhost:8083", cfg.Backend.BaseURL)
	assert.Equal(t, "accessToken", cfg.Backend.TokenPath)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.URI)
	assert.False(t, cfg.Observability.Metrics.IsEnabled())
}

func TestAppConfig_FromEnv(t *testing.T) {
	t.Setenv("CREDENTIAL_STORE", "Postgres")
	t.Setenv("CREDENTIAL_PURGE_MALFORMED", "false")
	t.Setenv("CREDENTIAL_ALLOW_NON_EXPIRING", "true")
	t.Setenv("BACKEND_BASE_URL", " http://gateway:8083/ ")
	t.Setenv("DB_NAME", "clouds")
	t.Setenv("REDIS_USE_SENTINEL", "true")
	t.Setenv("OBSERVABILITY_METRICS_ENABLED", "true")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, StorePostgres, cfg.Credentials.Store)
	assert.False(t, cfg.Credentials.PurgeMalformed)
	assert.True(t, cfg.Credentials.AllowNonExpiring)
	assert.Equal(t, "http://gateway:8083", cfg.Backend.BaseURL)
	assert.Equal(t, "clouds", cfg.Postgres.Name)
	assert.True(t, cfg.Redis.UseSentinel)
	assert.True(t, cfg.Observability.Metrics.IsEnabled())
}

func TestStoreBackend_Invalid(t *testing.T) {
	t.Setenv("CREDENTIAL_STORE", "cookie")

	var cfg AppConfig
	err := env.Parse(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid StoreBackend")
}

func TestAppConfig_DevModeDisablesSecureCookie(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.True(t, cfg.IsDev)
	assert.False(t, cfg.Credentials.CookieSecure)
}

func TestSanitize_Guardrails(t *testing.T) {
	cfg := AppConfig{
		Credentials: CredentialConfig{TTL: -time.Second},
		Backend:     BackendConfig{Timeout: -1},
		Observability: ObservabilityConfig{Metrics: ObservabilityMetricsConfig{
			Enabled: true, StatsdAddress: "  ",
		}},
	}
	cfg.Sanitize()

	assert.Equal(t, StoreRedis, cfg.Credentials.Store)
	assert.Zero(t, cfg.Credentials.TTL)
	assert.Equal(t, "mc_visitor", cfg.Credentials.CookieName)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.False(t, cfg.Observability.Metrics.IsEnabled())
}
