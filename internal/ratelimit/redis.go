package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter shares the fixed window across instances, so the limit holds
// when more than one replica serves /auth.
type RedisLimiter struct {
	rdb    *redis.Client
	window time.Duration
	limit  int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisLimiter(cfg RedisConfig, limit int, window time.Duration) *RedisLimiter {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &RedisLimiter{
		rdb:    rdb,
		window: window,
		limit:  limit,
	}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	rkey := "ratelimit:" + key

	count, err := rl.rdb.Incr(ctx, rkey).Result()

	if err != nil {
		return false, 0, err
	}

	if count == 1 {
		// first hit in the window owns the expiry
		if err := rl.rdb.Expire(ctx, rkey, rl.window).Err(); err != nil {
			return false, 0, err
		}
	}

	if count > int64(rl.limit) {
		ttl, err := rl.rdb.TTL(ctx, rkey).Result()

		if err != nil || ttl < 0 {
			ttl = rl.window
		}

		return false, ttl, nil
	}

	return true, 0, nil
}

func (rl *RedisLimiter) Ping(ctx context.Context) error {
	return rl.rdb.Ping(ctx).Err()
}

func (rl *RedisLimiter) Close() error {
	return rl.rdb.Close()
}
