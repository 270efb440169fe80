package logger

import "testing"

func TestGroupFingerprintDeterministic(t *testing.T) {
	a := GroupFingerprint("g", []byte{1}, []byte{2}, []byte{3}, []byte{4})
	b := GroupFingerprint("g", []byte{1}, []byte{2}, []byte{3}, []byte{4})
	if a != b {
		t.Fatal("expected deterministic fingerprint")
	}
	if len(a) != 16 {
		t.Fatalf("expected 16 hex chars (8 bytes), got %d", len(a))
	}
}

func TestGroupFingerprintDiffersOnInput(t *testing.T) {
	a := GroupFingerprint("g", []byte{1}, []byte{2}, []byte{3}, []byte{4})
	b := GroupFingerprint("g", []byte{1}, []byte{2}, []byte{3}, []byte{5})
	if a == b {
		t.Fatal("expected different inputs to produce different fingerprints")
	}
}

func TestHashPeerDeterministic(t *testing.T) {
	a := HashPeer("10.0.0.1")
	b := HashPeer("10.0.0.1")
	if a != b {
		t.Fatal("expected deterministic peer hash")
	}
	c := HashPeer("10.0.0.2")
	if a == c {
		t.Fatal("expected different peers to hash differently")
	}
}
