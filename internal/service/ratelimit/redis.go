package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements the same fixed-window quota on Redis so multiple
// instances share one budget per client key. INCR creates the counter on
// first use; EXPIRE starts the window at that moment, which matches the
// in-memory reset-on-elapse behavior.
type RedisLimiter struct {
	cli    *redis.Client
	prefix string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

func NewRedisLimiter(cfg RedisConfig) (*RedisLimiter, error) {
	cli := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "echart:ratelimit"
	}
	return &RedisLimiter{cli: cli, prefix: prefix}, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, clientKey string, maxRequests int, window time.Duration) bool {
	key := fmt.Sprintf("%s:%s", l.prefix, clientKey)

	count, err := l.cli.Incr(ctx, key).Result()
	if err != nil {
		// Quota protects upstreams, not correctness. When Redis is down the
		// caller proceeds rather than being locked out.
		return true
	}
	if count == 1 {
		_ = l.cli.Expire(ctx, key, window).Err()
	}
	return count <= int64(maxRequests)
}

func (l *RedisLimiter) Close() error {
	return l.cli.Close()
}
