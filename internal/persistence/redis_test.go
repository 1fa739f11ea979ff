package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/config"
)

func TestRedisOptions(t *testing.T) {
	t.Run("url", func(t *testing.T) {
		opts := RedisOptions(config.RedisConfig{
			URL:      "redis://:from-url@cache:6380/2",
			Password: "from-config",
			DB:       5,
			PoolSize: 50,
		})
		assert.Equal(t, "cache:6380", opts.Addr)
		assert.Equal(t, "from-url", opts.Password)
		assert.Equal(t, 2, opts.DB)
		assert.Equal(t, 50, opts.PoolSize)
	})

	t.Run("bare address", func(t *testing.T) {
		opts := RedisOptions(config.RedisConfig{
			URL:          "127.0.0.1:6379",
			Password:     "secret",
			DB:           1,
			PoolSize:     100,
			MinIdleConns: 10,
			MaxRetries:   3,
		})
		assert.Equal(t, "127.0.0.1:6379", opts.Addr)
		assert.Equal(t, "secret", opts.Password)
		assert.Equal(t, 1, opts.DB)
		assert.Equal(t, 100, opts.PoolSize)
		assert.Equal(t, 10, opts.MinIdleConns)
		assert.Equal(t, 3, opts.MaxRetries)
	})
}

func TestRedis_NilClient(t *testing.T) {
	var r *Redis
	assert.Nil(t, r.Cmdable())
	require.Error(t, r.Ping(context.Background()))
	r.Close()
}
