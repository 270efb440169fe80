package store

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/nsheremet/zkpauth/internal/zkpvalue"
)

// Sentinel errors returned by ChallengeRegistry.Consume.
var (
	ErrChallengeNotFound = errors.New("store: unknown auth_id")
	ErrChallengeExpired  = errors.New("store: challenge expired")
	ErrRegistryFull      = errors.New("store: registry at capacity")
)

// PendingAuth is the server-side state for one in-flight authentication
// attempt, surviving between CreateChallenge and Verify.
type PendingAuth struct {
	AuthID    string
	Username  string
	R1, R2    zkpvalue.GroupElement
	C         zkpvalue.Scalar
	CreatedAt time.Time
}

// ChallengeRegistry is a concurrent map from auth_id to PendingAuth, with
// atomic single-consumption and a capacity cap. A background sweeper (see
// NewChallengeRegistry) evicts entries older than the configured TTL in
// bounded batches so it never starves writers, following spec.md section
// 5's "Resource bounds" and "sweeper must not starve writers" guidance.
type ChallengeRegistry struct {
	mu      sync.Mutex
	pending map[string]PendingAuth
	ttl     time.Duration
	maxSize int

	stop chan struct{}
	once sync.Once
}

// NewChallengeRegistry creates a ChallengeRegistry with the given TTL and
// capacity cap, and starts its background sweeper. Callers must call
// Close when done to stop the sweeper goroutine.
func NewChallengeRegistry(ttl time.Duration, maxSize int) *ChallengeRegistry {
	r := &ChallengeRegistry{
		pending: make(map[string]PendingAuth),
		ttl:     ttl,
		maxSize: maxSize,
		stop:    make(chan struct{}),
	}
	go r.sweepLoop()
	return r
}

// Close stops the background sweeper. Safe to call more than once.
func (r *ChallengeRegistry) Close() {
	r.once.Do(func() { close(r.stop) })
}

// Create inserts a new PendingAuth for username with the given client
// commitment (r1, r2) and server challenge c, generating a fresh,
// unpredictable auth_id. Returns ErrRegistryFull if the registry is at
// capacity.
func (r *ChallengeRegistry) Create(username string, r1, r2 zkpvalue.GroupElement, c zkpvalue.Scalar) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) >= r.maxSize {
		return "", ErrRegistryFull
	}

	authID, err := r.freshAuthIDLocked()
	if err != nil {
		return "", err
	}

	r.pending[authID] = PendingAuth{
		AuthID:    authID,
		Username:  username,
		R1:        r1,
		R2:        r2,
		C:         c,
		CreatedAt: time.Now(),
	}
	return authID, nil
}

// freshAuthIDLocked samples a new 128-bit, URL-safe auth_id and
// resamples on the astronomically unlikely event of a collision. Must be
// called with r.mu held.
func (r *ChallengeRegistry) freshAuthIDLocked() (string, error) {
	for {
		b := make([]byte, 16)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}
		id := base64.RawURLEncoding.EncodeToString(b)
		if _, exists := r.pending[id]; !exists {
			return id, nil
		}
	}
}

// Consume atomically removes and returns the PendingAuth for authID. A
// given auth_id can be consumed by at most one caller: concurrent
// Consume calls for the same auth_id will see exactly one success and
// the rest ErrChallengeNotFound. If the entry is present but older than
// the TTL, Consume still removes it and reports ErrChallengeExpired.
func (r *ChallengeRegistry) Consume(authID string) (PendingAuth, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pa, ok := r.pending[authID]
	if !ok {
		return PendingAuth{}, ErrChallengeNotFound
	}
	delete(r.pending, authID)

	if time.Since(pa.CreatedAt) > r.ttl {
		return PendingAuth{}, ErrChallengeExpired
	}
	return pa, nil
}

// Len reports the current number of pending challenges.
func (r *ChallengeRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// sweepBatchSize bounds how many expired entries sweepLoop evicts per
// tick, so a large backlog of expired, never-verified challenges can't
// monopolize the registry lock.
const sweepBatchSize = 256

func (r *ChallengeRegistry) sweepLoop() {
	interval := r.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.sweepOnce()
		}
	}
}

func (r *ChallengeRegistry) sweepOnce() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	evicted := 0
	for id, pa := range r.pending {
		if evicted >= sweepBatchSize {
			return
		}
		if now.Sub(pa.CreatedAt) > r.ttl {
			delete(r.pending, id)
			evicted++
		}
	}
}
