package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("HTTP_PORT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 300*time.Second, cfg.CacheDuration())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_InvalidInt(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("HTTP_PORT", "not-a-port")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "HTTP_PORT")
}

func TestLoadDatabaseConfig_NoSecretNeeded(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:library.db")

	cfg, err := LoadDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "file:library.db", cfg.DatabaseURL)
}

func TestLoadDatabaseConfig_LoadsRedis(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("REDIS_URL", "redis://cache:6380/1")
	t.Setenv("REDIS_PASSWORD", "hunter2")
	t.Setenv("CACHE_TTL", "60")

	cfg, err := LoadDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, "redis://cache:6380/1", cfg.RedisURL)
	assert.Equal(t, "hunter2", cfg.RedisPassword)
	assert.Equal(t, time.Minute, cfg.CacheDuration())
}

func TestLoadConfig_TrustedProxies(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")

	t.Setenv("TRUSTED_PROXIES", "")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", " 10.0.0.1, 10.1.0.0/16 ,")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.1.0.0/16"}, cfg.TrustedProxies)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		HTTPPort:       70000,
		DatabaseDriver: "mysql",
		LogLevel:       "trace",
		LogFormat:      "xml",
		JWTSecret:      "short",
		AuthRateLimit:  0,
		AuthRateBurst:  0,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_PORT")
	assert.Contains(t, err.Error(), "DATABASE_DRIVER")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "AUTH_RATE_LIMIT")
}
