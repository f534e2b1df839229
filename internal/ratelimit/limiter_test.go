package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/brightkube/authhub/internal/ratelimit"
)

func TestMemoryLimiterEnforcesLimit(t *testing.T) {
	rl := ratelimit.NewMemoryLimiter(2, time.Minute)

	for i := 0; i < 2; i++ {
		allowed, _, err := rl.Allow(context.Background(), "1.2.3.4")

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !allowed {
			t.Fatalf("request %d denied under the limit", i)
		}
	}

	allowed, retryAfter, err := rl.Allow(context.Background(), "1.2.3.4")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if allowed {
		t.Fatal("request over the limit was allowed")
	}

	if retryAfter <= 0 {
		t.Fatalf("got retryAfter %v, want > 0", retryAfter)
	}
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	rl := ratelimit.NewMemoryLimiter(1, time.Minute)

	if allowed, _, _ := rl.Allow(context.Background(), "1.2.3.4"); !allowed {
		t.Fatal("first key denied")
	}

	if allowed, _, _ := rl.Allow(context.Background(), "5.6.7.8"); !allowed {
		t.Fatal("second key throttled by first key's counter")
	}

	if allowed, _, _ := rl.Allow(context.Background(), "1.2.3.4"); allowed {
		t.Fatal("first key allowed over its limit")
	}
}

func TestMemoryLimiterWindowResets(t *testing.T) {
	rl := ratelimit.NewMemoryLimiter(1, 20*time.Millisecond)

	if allowed, _, _ := rl.Allow(context.Background(), "k"); !allowed {
		t.Fatal("first request denied")
	}

	if allowed, _, _ := rl.Allow(context.Background(), "k"); allowed {
		t.Fatal("second request in window allowed")
	}

	time.Sleep(30 * time.Millisecond)

	if allowed, _, _ := rl.Allow(context.Background(), "k"); !allowed {
		t.Fatal("request after window expiry denied")
	}
}
