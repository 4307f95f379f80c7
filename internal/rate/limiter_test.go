package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newLimiterTest(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := New(rdb, cfg)
	return limiter, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestCheckWithinBudget(t *testing.T) {
	limiter, _, done := newLimiterTest(t, Config{MaxAttempts: 3, Window: time.Minute})
	defer done()
	ctx := context.Background()

	if err := limiter.Check(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("check with no attempts: %v", err)
	}

	if err := limiter.Increment(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := limiter.Check(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("check within budget: %v", err)
	}
}

func TestCheckOverBudget(t *testing.T) {
	limiter, _, done := newLimiterTest(t, Config{MaxAttempts: 2, Window: time.Minute})
	defer done()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := limiter.Increment(ctx, "alice@example.com", ""); err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
	}

	if err := limiter.Check(ctx, "alice@example.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}

func TestIncrementOverBudget(t *testing.T) {
	limiter, _, done := newLimiterTest(t, Config{MaxAttempts: 1, Window: time.Minute})
	defer done()
	ctx := context.Background()

	if err := limiter.Increment(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("first increment: %v", err)
	}
	if err := limiter.Increment(ctx, "alice@example.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}

func TestWindowExpiryResetsBudget(t *testing.T) {
	limiter, mr, done := newLimiterTest(t, Config{MaxAttempts: 1, Window: time.Minute})
	defer done()
	ctx := context.Background()

	if err := limiter.Increment(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := limiter.Check(ctx, "alice@example.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited inside window", err)
	}

	mr.FastForward(2 * time.Minute)

	if err := limiter.Check(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("check after window: %v", err)
	}
}

func TestResetClearsCounters(t *testing.T) {
	limiter, _, done := newLimiterTest(t, Config{MaxAttempts: 1, Window: time.Minute})
	defer done()
	ctx := context.Background()

	if err := limiter.Increment(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := limiter.Reset(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := limiter.Check(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("check after reset: %v", err)
	}
}

func TestIPThrottleIndependentOfIdentifier(t *testing.T) {
	limiter, _, done := newLimiterTest(t, Config{EnableIPThrottle: true, MaxAttempts: 2, Window: time.Minute})
	defer done()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := limiter.Increment(ctx, "alice@example.com", "10.0.0.1"); err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
	}

	// Same IP trips the check even for a fresh identifier.
	if err := limiter.Check(ctx, "bob@example.com", "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited for shared IP", err)
	}
	if err := limiter.Check(ctx, "bob@example.com", "10.0.0.2"); err != nil {
		t.Fatalf("check fresh pair: %v", err)
	}
}

func TestCheckRedisDown(t *testing.T) {
	limiter, mr, done := newLimiterTest(t, Config{MaxAttempts: 3, Window: time.Minute})
	defer done()

	mr.Close()

	if err := limiter.Check(context.Background(), "alice@example.com", ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("err = %v, want ErrRedisUnavailable", err)
	}
}
