package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 1 {
		t.Errorf("expected default burst 1 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if !limiter.Allow("openai") {
			t.Fatalf("request %d throttled by an unlimited limiter", i)
		}
	}
}

func TestLimiter_PerKey(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "Briar"); err != nil {
		t.Errorf("first wait failed: %v", err)
	}
	if limiter.Allow("Briar") {
		t.Error("expected allow to fail (exhausted tokens)")
	}
	if !limiter.Allow("Corin") {
		t.Error("expected allow for another key")
	}
}

func TestLimiter_SetRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	limiter.SetRate("slow", 0.1, 1)

	if !limiter.Allow("slow") {
		t.Error("first request should pass")
	}
	if limiter.Allow("slow") {
		t.Error("second request should fail")
	}
	if !limiter.Allow("fast") {
		t.Error("other key should pass")
	}
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	limiter.Allow("k")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "k"); err == nil {
		t.Error("expected Wait to fail before the next token")
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(100, 1)

	start := time.Now()
	if err := limiter.WaitWithDelay(context.Background(), "k", 50*time.Millisecond); err != nil {
		t.Fatalf("WaitWithDelay failed: %v", err)
	}
	if d := time.Since(start); d < 50*time.Millisecond {
		t.Errorf("expected delay >= 50ms, got %v", d)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := limiter.WaitWithDelay(ctx, "other", time.Second); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
