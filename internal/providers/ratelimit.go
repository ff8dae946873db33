package providers

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket limiting outbound provider requests.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerSecond float64

	tokens     float64
	lastUpdate time.Time

	totalConsumed int64
	totalWaited   time.Duration
}

// RateLimiterStatus reports current limiter state.
type RateLimiterStatus struct {
	TokensAvailable int           `json:"tokens_available"`
	TokensLimit     int           `json:"tokens_limit"`
	TotalConsumed   int64         `json:"total_consumed"`
	TotalWaited     time.Duration `json:"total_waited"`
}

// NewRateLimiter creates a limiter allowing requestsPerSecond sustained
// throughput with a burst of one second's worth of tokens.
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2.0
	}
	return &RateLimiter{
		requestsPerSecond: requestsPerSecond,
		tokens:            requestsPerSecond,
		lastUpdate:        time.Now(),
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.refill()

		if r.tokens >= 1.0 {
			r.tokens--
			r.totalConsumed++
			r.mu.Unlock()
			return nil
		}

		needed := 1.0 - r.tokens
		wait := time.Duration(needed / r.requestsPerSecond * float64(time.Second))
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
			r.mu.Lock()
			r.totalWaited += wait
			r.mu.Unlock()
		}
	}
}

// Status returns current limiter status.
func (r *RateLimiter) Status() RateLimiterStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()

	return RateLimiterStatus{
		TokensAvailable: int(r.tokens),
		TokensLimit:     int(r.requestsPerSecond),
		TotalConsumed:   r.totalConsumed,
		TotalWaited:     r.totalWaited,
	}
}

// refill adds tokens based on elapsed time. Must be called with lock held.
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastUpdate).Seconds()
	r.lastUpdate = now

	r.tokens += elapsed * r.requestsPerSecond
	if r.tokens > r.requestsPerSecond {
		r.tokens = r.requestsPerSecond
	}
}
