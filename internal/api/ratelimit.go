package api

import (
	"sync"
	"time"
)

// Per-profile message rate limiting. Each profile gets a token bucket that
// allows short bursts while holding the sustained rate to roughly
// DefaultBucketCapacity messages per minute.
const (
	// DefaultBucketCapacity is the maximum burst size per profile.
	DefaultBucketCapacity = 30
	// DefaultRefillWindow is the time it takes an empty bucket to refill.
	DefaultRefillWindow = time.Minute
)

// tokenBucket is a monotonic-clock token bucket.
type tokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	timestamp  time.Time
}

func newTokenBucket(capacity float64, refillRate float64) *tokenBucket {
	return &tokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     capacity,
		timestamp:  time.Now(),
	}
}

// allow consumes one token if available.
func (b *tokenBucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	elapsed := now.Sub(b.timestamp).Seconds()
	b.timestamp = now
	b.tokens = min(b.capacity, b.tokens+elapsed*b.refillRate)
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// rateLimiter hands out one token bucket per profile.
type rateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*tokenBucket
	capacity   float64
	refillRate float64
}

func newRateLimiter(capacity int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		buckets:    make(map[string]*tokenBucket),
		capacity:   float64(capacity),
		refillRate: float64(capacity) / window.Seconds(),
	}
}

// Allow reports whether the given profile may send another message now.
func (rl *rateLimiter) Allow(profileID string) bool {
	rl.mu.Lock()
	b, ok := rl.buckets[profileID]
	if !ok {
		b = newTokenBucket(rl.capacity, rl.refillRate)
		rl.buckets[profileID] = b
	}
	rl.mu.Unlock()
	return b.allow()
}
