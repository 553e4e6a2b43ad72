// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	"github.com/carterperez-dev/currency-tracker/internal/config"
)

const (
	redisPingTimeout  = 5 * time.Second
	redisDialAttempts = 3
	redisDialBackoff  = 200 * time.Millisecond
)

// Redis backs the provider feed cache and the distributed rate limiter.
type Redis struct {
	Client *redis.Client
}

// NewRedis dials the configured URL and retries the first ping a few times,
// since redis often starts alongside the service in compose setups.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	opts.ConnMaxIdleTime = 5 * time.Minute

	r := &Redis{Client: redis.NewClient(opts)}

	backoff := retry.WithMaxRetries(redisDialAttempts-1, retry.NewExponential(redisDialBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		return retry.RetryableError(r.Ping(ctx))
	})
	if err != nil {
		_ = r.Close() //nolint:errcheck // cleanup on connection failure
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return r, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}

func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
