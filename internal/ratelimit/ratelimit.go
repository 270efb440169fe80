// Package ratelimit provides a keyed token-bucket rate limiter used to
// throttle registration, challenge-creation, and verification attempts
// (spec.md section 4.5).
//
// Grounded on fazt-sh-fazt/internal/middleware/ratelimit.go's RateLimiter:
// a map of per-key *rate.Limiter instances behind a mutex, created lazily
// under double-checked locking, with a background goroutine sweeping
// stale entries so the map doesn't grow unboundedly under a large key
// space (usernames, peer addresses, auth_id prefixes).
package ratelimit

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a keyed token-bucket rate limiter. Each distinct key gets
// its own independent bucket.
type Limiter struct {
	mu       sync.RWMutex
	buckets  map[string]*bucket
	perSec   rate.Limit
	burst    int
	idleTTL  time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter *rate.Limiter
	// lastSeen is a Unix nanosecond timestamp, updated by every caller
	// of bucketFor and read by sweep. atomic, not mutex-guarded: it is
	// touched far more often (every Allow call) than the map itself, and
	// every bucket is only ever reachable while l.mu keeps it in the map.
	lastSeen atomic.Int64
}

func (b *bucket) touch() {
	b.lastSeen.Store(time.Now().UnixNano())
}

func (b *bucket) idleSince() time.Time {
	return time.Unix(0, b.lastSeen.Load())
}

// New creates a Limiter allowing ratePerMinute attempts per minute per
// key, with a burst equal to ratePerMinute (one minute's worth of
// attempts may arrive back-to-back, matching spec.md's example scenario
// of "rate_limit_per_minute = 3" permitting 3 rapid attempts). It starts
// a background goroutine that evicts buckets idle for more than 10
// minutes; call Close to stop it.
func New(ratePerMinute int) *Limiter {
	if ratePerMinute <= 0 {
		ratePerMinute = 1
	}
	l := &Limiter{
		buckets: make(map[string]*bucket),
		perSec:  rate.Limit(float64(ratePerMinute) / 60.0),
		burst:   ratePerMinute,
		idleTTL: 10 * time.Minute,
		stop:    make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Close stops the background cleanup goroutine. Safe to call more than
// once.
func (l *Limiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Allow reports whether an attempt under key is permitted right now. It
// consumes one token from that key's bucket on success.
func (l *Limiter) Allow(key string) bool {
	return l.bucketFor(key).Allow()
}

func (l *Limiter) bucketFor(key string) *rate.Limiter {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		b.touch()
		return b.limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok = l.buckets[key]; ok {
		b.touch()
		return b.limiter
	}
	b = &bucket{limiter: rate.NewLimiter(l.perSec, l.burst)}
	b.touch()
	l.buckets[key] = b
	return b.limiter
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	for key, b := range l.buckets {
		if now.Sub(b.idleSince()) > l.idleTTL {
			delete(l.buckets, key)
		}
	}
}

// Len reports the number of distinct keys currently tracked. Exposed for
// tests and operational introspection.
func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}
