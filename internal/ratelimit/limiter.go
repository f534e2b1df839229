package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a fixed-window counter keyed by caller identity (IP for the
// unauthenticated auth endpoints).
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

type MemoryLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	clients map[string]*clientBucket
}

type clientBucket struct {
	count     int
	windowEnd time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientBucket),
	}
}

func (rl *MemoryLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[key]

	if !ok || now.After(b.windowEnd) {
		rl.clients[key] = &clientBucket{
			count:     1,
			windowEnd: now.Add(rl.window),
		}

		return true, 0, nil
	}

	if b.count >= rl.limit {
		retryAfter := time.Until(b.windowEnd)

		if retryAfter < 0 {
			retryAfter = 0
		}

		return false, retryAfter, nil
	}

	b.count++
	return true, 0, nil
}
