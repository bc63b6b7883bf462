package worker

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter rate-limits work per key (a provider name, a speaker)
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a keyed rate limiter. A non-positive rate means no limit.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}

	r := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		r = rate.Inf
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  r,
		defaultBurst: burst,
	}
}

// Wait blocks until key may proceed or ctx ends
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.get(key).Wait(ctx)
}

// Allow reports whether key may proceed now, consuming a token if so
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[key]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[key] = limiter
	return limiter
}

// SetRate overrides the limit for one key
func (l *Limiter) SetRate(key string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[key] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// WaitWithDelay waits for clearance and then for an additional delay
func (l *Limiter) WaitWithDelay(ctx context.Context, key string, additionalDelay time.Duration) error {
	if err := l.Wait(ctx, key); err != nil {
		return err
	}

	if additionalDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(additionalDelay):
		}
	}

	return nil
}
