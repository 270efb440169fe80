// Package store holds the three concurrent registries the protocol
// engine reads and writes: users, pending authentication challenges, and
// issued sessions.
//
// Grounded on avahowell-occlude/pake.go's Server (passwordFiles,
// pendingRegistrations maps) for the overall shape, and on
// fazt-sh-fazt/internal/auth/session.go for the TTL-sweep goroutine idiom
// used by the challenge registry.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/nsheremet/zkpauth/internal/zkpvalue"
)

// Sentinel errors returned by the registries. The engine layer maps
// these onto the error kinds of spec.md section 7.
var (
	ErrAlreadyRegistered = errors.New("store: user already registered")
	ErrUserNotFound      = errors.New("store: user not found")
)

// UserRecord is an immutable registration: once written, Y1 and Y2 never
// change.
type UserRecord struct {
	Username     string
	Y1, Y2       zkpvalue.GroupElement
	RegisteredAt time.Time
}

// UserStore is the interface the engine depends on. The in-memory
// implementation below is the only one in this repository; a durable
// backing store can be substituted later as long as it keeps Register's
// at-most-one-success atomicity and UserRecord's immutability (spec.md
// section 9, open question).
type UserStore interface {
	Register(username string, y1, y2 zkpvalue.GroupElement) error
	Lookup(username string) (UserRecord, bool)
}

// UserRegistry is a concurrent, in-memory UserStore. Writes are
// serialized via a single mutex; reads use a map under a read lock.
// Registration traffic is expected to be far lighter than lookup
// traffic, so a single RWMutex (rather than per-key sharding) is
// sufficient and keeps "insert iff absent" trivially linearizable.
type UserRegistry struct {
	mu    sync.RWMutex
	users map[string]UserRecord
}

// NewUserRegistry creates an empty UserRegistry.
func NewUserRegistry() *UserRegistry {
	return &UserRegistry{
		users: make(map[string]UserRecord),
	}
}

// Register atomically inserts a new UserRecord iff no record exists yet
// for username. Returns ErrAlreadyRegistered otherwise. Concurrent
// Register calls for the same username are guaranteed to produce exactly
// one success.
func (r *UserRegistry) Register(username string, y1, y2 zkpvalue.GroupElement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[username]; exists {
		return ErrAlreadyRegistered
	}
	r.users[username] = UserRecord{
		Username:     username,
		Y1:           y1,
		Y2:           y2,
		RegisteredAt: time.Now(),
	}
	return nil
}

// Lookup returns the UserRecord for username, if any.
func (r *UserRegistry) Lookup(username string) (UserRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.users[username]
	return rec, ok
}

// Count returns the number of registered users. Used by operational
// tooling and tests; not part of the UserStore interface.
func (r *UserRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
