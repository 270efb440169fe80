package ratelimit

import "testing"

// TestRateLimitScenario exercises spec.md section 8 scenario 6: with
// rate_limit_per_minute=3, four rapid attempts for the same key yield
// three accepted and one RateLimited.
func TestRateLimitScenario(t *testing.T) {
	l := New(3)
	defer l.Close()

	accepted := 0
	for i := 0; i < 4; i++ {
		if l.Allow("alice") {
			accepted++
		}
	}
	if accepted != 3 {
		t.Fatalf("expected 3 accepted attempts, got %d", accepted)
	}
}

func TestRateLimitKeysAreIndependent(t *testing.T) {
	l := New(1)
	defer l.Close()

	if !l.Allow("alice") {
		t.Fatal("alice's first attempt should be allowed")
	}
	if !l.Allow("bob") {
		t.Fatal("bob's first attempt should be allowed, independent of alice")
	}
	if l.Allow("alice") {
		t.Fatal("alice's second attempt should be rate limited")
	}
}

func TestLenTracksDistinctKeys(t *testing.T) {
	l := New(5)
	defer l.Close()

	l.Allow("a")
	l.Allow("b")
	l.Allow("a")
	if l.Len() != 2 {
		t.Fatalf("expected 2 tracked keys, got %d", l.Len())
	}
}
