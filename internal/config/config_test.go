package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_PORT", "")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("SEED_ADMIN_EMAIL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout)
	assert.True(t, cfg.UsesMemoryStore())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
	assert.Equal(t, 5*time.Minute, cfg.Postgres.ConnMaxLifetime)
	assert.True(t, cfg.Postgres.RunMigrations)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.URL)
	assert.Equal(t, 100, cfg.Redis.PoolSize)
	assert.Equal(t, 10, cfg.Redis.MinIdleConns)
	assert.Equal(t, 3, cfg.Redis.MaxRetries)
	assert.Equal(t, 30, cfg.RateLimit.WritesPerMinute)
	assert.Equal(t, 60, cfg.Auth.AccessTokenTTLMinutes)
	assert.Equal(t, "admin@supportdesk.local", cfg.Seed.AdminEmail)
	assert.Equal(t, "student@supportdesk.local", cfg.Seed.StudentEmail)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("POSTGRES_DSN", "postgres://desk@localhost/desk")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SEED_ADMIN_EMAIL", "root@campus.edu")
	t.Setenv("SEED_ADMIN_PASSWORD", "correct-horse")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Zero(t, cfg.App.RequestTimeout)
	assert.False(t, cfg.UsesMemoryStore())
	assert.False(t, cfg.Postgres.RunMigrations)
	assert.Equal(t, 5, cfg.RateLimit.WritesPerMinute)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "root@campus.edu", cfg.Seed.AdminEmail)
	assert.Equal(t, "correct-horse", cfg.Seed.AdminPassword)
}

func TestLoad_RedisURLTakesPrecedence(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", cfg.Redis.URL)

	t.Setenv("REDIS_URL", "redis://:secret@cache:6380/2")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "redis://:secret@cache:6380/2", cfg.Redis.URL)
}

func TestLoad_ReportsEveryMalformedValue(t *testing.T) {
	t.Setenv("POSTGRES_MAX_CONNS", "lots")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "maybe")
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `POSTGRES_MAX_CONNS: "lots" is not an integer`)
	assert.Contains(t, err.Error(), `POSTGRES_RUN_MIGRATIONS: "maybe" is not a boolean`)
	assert.Contains(t, err.Error(), `REDIS_DB: "zero" is not an integer`)
}

func TestLoad_RejectsInconsistentSettings(t *testing.T) {
	t.Setenv("AUTH_BCRYPT_COST", "2")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "0")
	t.Setenv("POSTGRES_MIN_CONNS", "20")
	t.Setenv("REDIS_POOL_SIZE", "0")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "-1")

	_, err := Load()
	require.Error(t, err)
	for _, want := range []string{
		"AUTH_BCRYPT_COST 2 outside 4..31",
		"AUTH_ACCESS_TOKEN_TTL_MINUTES must be positive",
		"POSTGRES_MIN_CONNS 20 exceeds POSTGRES_MAX_CONNS 10",
		"REDIS_POOL_SIZE must be positive",
		"RATE_LIMIT_PER_MINUTE must not be negative",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoad_ProductionRequirements(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("POSTGRES_DSN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET must be set in production")
	assert.Contains(t, err.Error(), "POSTGRES_DSN must be set in production")

	t.Setenv("AUTH_JWT_SECRET", "a-real-secret")
	t.Setenv("POSTGRES_DSN", "postgres://desk@db/desk")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "a-real-secret", cfg.Auth.JWTSecret)
}
