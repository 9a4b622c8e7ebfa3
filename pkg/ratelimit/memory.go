package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// InMemoryRateLimiter keeps one token bucket per key. It is per-process, so
// counts are not shared across replicas.
type InMemoryRateLimiter struct {
	requests int
	window   time.Duration
	now      func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	nextSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewInMemoryRateLimiter(requests int, window time.Duration) *InMemoryRateLimiter {
	return &InMemoryRateLimiter{
		requests: requests,
		window:   window,
		now:      time.Now,
		buckets:  make(map[string]*bucket),
	}
}

func (r *InMemoryRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.requests, r.window
}

func (r *InMemoryRateLimiter) IsLimited(key string) (bool, error) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(r.window/time.Duration(max(r.requests, 1))), r.requests)}
		r.buckets[key] = b
	}
	b.lastSeen = now

	if now.After(r.nextSweep) {
		r.sweepLocked(now)
	}

	return !b.limiter.AllowN(now, 1), nil
}

// sweepLocked drops buckets idle for two windows; a refilled bucket is
// indistinguishable from a new one.
func (r *InMemoryRateLimiter) sweepLocked(now time.Time) {
	cutoff := now.Add(-2 * r.window)
	for key, b := range r.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(r.buckets, key)
		}
	}
	r.nextSweep = now.Add(r.window)
}

func (r *InMemoryRateLimiter) Close() error {
	return nil
}
