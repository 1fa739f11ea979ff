package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
)

const (
	redisConnectTimeout = 5 * time.Second
	redisHealthTimeout  = 2 * time.Second
)

// Redis holds the client behind the write rate limiter. The service keeps
// running when Redis is down; the limiter then lets requests through.
type Redis struct {
	client *redis.Client
}

// RedisOptions turns the configured URL into client options. A value that
// is not a redis:// URL is treated as host:port. Password and DB from the
// config fill in what the URL leaves out.
func RedisOptions(cfg config.RedisConfig) *redis.Options {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		opts = &redis.Options{Addr: cfg.URL}
	}
	if opts.Password == "" {
		opts.Password = cfg.Password
	}
	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.MaxRetries != 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	return opts
}

// NewRedis builds the pooled client and checks it once. An unreachable
// server is logged, not returned.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	opts := RedisOptions(cfg)
	r := &Redis{client: redis.NewClient(opts)}

	ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable; rate limiting disabled until it recovers",
			zap.String("addr", opts.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", opts.Addr), zap.Int("pool_size", opts.PoolSize))
	}
	return r
}

// Cmdable exposes the client to the rate limiter. It returns nil when no
// client was built so callers can disable themselves.
func (r *Redis) Cmdable() redis.Cmdable {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client
}

// Ping backs the readiness check and is bounded by its own short timeout.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.client == nil {
		return errors.New("redis client not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, redisHealthTimeout)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

func (r *Redis) Close() {
	if r != nil && r.client != nil {
		_ = r.client.Close()
	}
}
