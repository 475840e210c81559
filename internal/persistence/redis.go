package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/xpertshub/internal/cache"
	"github.com/spec-kit/xpertshub/internal/config"
)

const redisPingTimeout = 2 * time.Second

// Redis holds the client behind the aggregate cache. A nil *Redis means
// caching is switched off.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the client, or returns nil when the cache is disabled.
// An unreachable server is logged, not fatal: cache reads then miss and
// fall through to Postgres.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.CacheDisabled {
		logger.Info("redis cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: redisPingTimeout,
	})
	r := &Redis{Client: client}

	if err := r.Ping(ctx); err != nil {
		logger.Warn("unable to reach redis; cache lookups will miss",
			zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}
	return r
}

// Enabled reports whether a client is configured.
func (r *Redis) Enabled() bool {
	return r != nil && r.Client != nil
}

// NewCache returns the aggregate cache over this client, or nil when
// disabled. A nil cache is a valid no-op.
func (r *Redis) NewCache(ttl time.Duration, logger *zap.Logger) *cache.Cache {
	if !r.Enabled() {
		return nil
	}
	return cache.New(r.Client, ttl, logger)
}

// Ping checks connectivity, bounded by redisPingTimeout.
func (r *Redis) Ping(ctx context.Context) error {
	if !r.Enabled() {
		return errors.New("redis client not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	return r.Client.Ping(ctx).Err()
}

// Close closes the client.
func (r *Redis) Close() {
	if r.Enabled() {
		_ = r.Client.Close()
	}
}
