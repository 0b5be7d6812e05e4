package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	for _, key := range []string{"DATABASE_URL", "PORT", "JWT_SECRET", "JWT_EXPIRY", "CONTEXT_TIMEOUT",
		"CORS_ALLOWED_ORIGINS", "REDIS_URL", "CACHE_TTL", "AMQP_URL", "LOGIN_RATE_PER_MINUTE", "EMAIL_PROVIDER"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, defaultDBUrl, cfg.DBUrl)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 5*time.Second, cfg.ContextTimeout)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10, cfg.LoginRatePerMinute)
	assert.Equal(t, "noop", cfg.Email.Provider)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("CONTEXT_TIMEOUT", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("LOGIN_RATE_PER_MINUTE", "not-a-number")
	t.Setenv("EMAIL_PROVIDER", "ses")
	t.Setenv("AWS_SES_REGION", "eu-west-3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 3*time.Second, cfg.ContextTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 10, cfg.LoginRatePerMinute)
	assert.Equal(t, "ses", cfg.Email.Provider)
	assert.Equal(t, "eu-west-3", cfg.Email.SESRegion)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}
