package store

import (
	"sync"
	"testing"
	"time"

	"github.com/nsheremet/zkpauth/internal/zkpvalue"
)

func dummyScalar(v int64) zkpvalue.Scalar {
	return zkpvalue.NewScalar(bigFromInt(v))
}

func TestChallengeCreateAndConsume(t *testing.T) {
	r := NewChallengeRegistry(5*time.Minute, 100)
	defer r.Close()

	id, err := r.Create("alice", dummyElement(1), dummyElement(2), dummyScalar(3))
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected non-empty auth_id")
	}

	pa, err := r.Consume(id)
	if err != nil {
		t.Fatalf("unexpected error consuming fresh challenge: %v", err)
	}
	if pa.Username != "alice" {
		t.Fatalf("unexpected username %q", pa.Username)
	}
}

func TestChallengeSingleUse(t *testing.T) {
	r := NewChallengeRegistry(5*time.Minute, 100)
	defer r.Close()

	id, err := r.Create("alice", dummyElement(1), dummyElement(2), dummyScalar(3))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := r.Consume(id); err != nil {
		t.Fatalf("first consume should succeed: %v", err)
	}
	if _, err := r.Consume(id); err != ErrChallengeNotFound {
		t.Fatalf("expected ErrChallengeNotFound on replay, got %v", err)
	}
}

func TestChallengeConsumeUnknown(t *testing.T) {
	r := NewChallengeRegistry(5*time.Minute, 100)
	defer r.Close()

	if _, err := r.Consume("does-not-exist"); err != ErrChallengeNotFound {
		t.Fatalf("expected ErrChallengeNotFound, got %v", err)
	}
}

func TestChallengeExpiry(t *testing.T) {
	r := NewChallengeRegistry(10*time.Millisecond, 100)
	defer r.Close()

	id, err := r.Create("alice", dummyElement(1), dummyElement(2), dummyScalar(3))
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(30 * time.Millisecond)

	if _, err := r.Consume(id); err != ErrChallengeExpired {
		t.Fatalf("expected ErrChallengeExpired, got %v", err)
	}
	// Expired entry must still be removed, not left dangling.
	if _, err := r.Consume(id); err != ErrChallengeNotFound {
		t.Fatalf("expected ErrChallengeNotFound after expiry eviction, got %v", err)
	}
}

func TestChallengeCapacity(t *testing.T) {
	r := NewChallengeRegistry(5*time.Minute, 2)
	defer r.Close()

	if _, err := r.Create("a", dummyElement(1), dummyElement(2), dummyScalar(3)); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Create("b", dummyElement(1), dummyElement(2), dummyScalar(3)); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Create("c", dummyElement(1), dummyElement(2), dummyScalar(3)); err != ErrRegistryFull {
		t.Fatalf("expected ErrRegistryFull, got %v", err)
	}
}

func TestChallengeConcurrentCreatesAreIndependent(t *testing.T) {
	r := NewChallengeRegistry(5*time.Minute, 1000)
	defer r.Close()

	const n = 100
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := r.Create("alice", dummyElement(1), dummyElement(2), dummyScalar(3))
			if err != nil {
				t.Errorf("create %d failed: %v", i, err)
				return
			}
			ids[i] = id
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, id := range ids {
		if id == "" {
			t.Fatal("empty auth_id")
		}
		if seen[id] {
			t.Fatalf("duplicate auth_id generated: %s", id)
		}
		seen[id] = true
	}
}
