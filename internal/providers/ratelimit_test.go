package providers

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	t.Run("burst then throttle", func(t *testing.T) {
		rl := NewRateLimiter(10)
		ctx := context.Background()

		// A fresh limiter carries a full second of burst tokens.
		start := time.Now()
		for i := 0; i < 10; i++ {
			if err := rl.Wait(ctx); err != nil {
				t.Fatalf("Wait %d: %v", i, err)
			}
		}
		if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
			t.Errorf("burst of 10 took %v, expected near-instant", elapsed)
		}

		// The next token must wait roughly 1/rps seconds.
		start = time.Now()
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("Wait after burst: %v", err)
		}
		if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
			t.Errorf("post-burst Wait returned in %v, expected ~100ms", elapsed)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		rl := NewRateLimiter(1)
		ctx := context.Background()

		// Drain the single burst token.
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("first Wait: %v", err)
		}

		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		if err := rl.Wait(cctx); err == nil {
			t.Error("expected context error, got nil")
		}
	})

	t.Run("invalid rate defaults", func(t *testing.T) {
		rl := NewRateLimiter(0)
		status := rl.Status()
		if status.TokensLimit != 2 {
			t.Errorf("TokensLimit = %d, want 2", status.TokensLimit)
		}
	})

	t.Run("status counts consumption", func(t *testing.T) {
		rl := NewRateLimiter(100)
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			if err := rl.Wait(ctx); err != nil {
				t.Fatalf("Wait %d: %v", i, err)
			}
		}
		status := rl.Status()
		if status.TotalConsumed != 5 {
			t.Errorf("TotalConsumed = %d, want 5", status.TotalConsumed)
		}
		if status.TokensLimit != 100 {
			t.Errorf("TokensLimit = %d, want 100", status.TokensLimit)
		}
	})
}
