package zkpvalue

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/nsheremet/zkpauth/internal/group"
)

func testRNG(max *big.Int) (*big.Int, error) {
	return rand.Int(rand.Reader, max)
}

func TestDecodeScalarRoundTrip(t *testing.T) {
	p := group.Test1536
	s, err := RandomScalar(p, 1, testRNG)
	if err != nil {
		t.Fatal(err)
	}
	b := s.Encode()
	got, err := DecodeScalar(p, b)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.Int().Cmp(s.Int()) != 0 {
		t.Fatal("round trip mismatch")
	}
}

func TestDecodeScalarRejectsLeadingZero(t *testing.T) {
	p := group.Test1536
	_, err := DecodeScalar(p, []byte{0x00, 0x01})
	if err != ErrLeadingZero {
		t.Fatalf("expected ErrLeadingZero, got %v", err)
	}
}

func TestDecodeScalarRejectsEmpty(t *testing.T) {
	p := group.Test1536
	_, err := DecodeScalar(p, nil)
	if err != ErrEmpty {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestDecodeScalarRejectsOutOfRange(t *testing.T) {
	p := group.Test1536
	tooBig := new(big.Int).Add(p.Q, big.NewInt(5))
	_, err := DecodeScalar(p, tooBig.Bytes())
	if err != ErrOutOfRange {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestDecodeGroupElementRejectsZeroAndOne(t *testing.T) {
	p := group.Test1536
	for _, v := range []int64{0, 1} {
		_, err := DecodeGroupElement(p, big.NewInt(v).Bytes())
		if err == nil {
			t.Fatalf("expected error decoding %d as group element", v)
		}
	}
}

func TestDecodeGroupElementRejectsNonSubgroupMember(t *testing.T) {
	p := group.Test1536
	// The fixture prime is 3 mod 8, so 2 is a quadratic non-residue and
	// therefore lies outside the order-q subgroup (the quadratic residues).
	_, err := DecodeGroupElement(p, big.NewInt(2).Bytes())
	if err != ErrNotInSubgroup {
		t.Fatalf("expected ErrNotInSubgroup, got %v", err)
	}
}

func TestDecodeGroupElementAcceptsValidGenerator(t *testing.T) {
	p := group.Test1536
	ge, err := DecodeGroupElement(p, p.Alpha.Bytes())
	if err != nil {
		t.Fatalf("expected alpha to decode cleanly: %v", err)
	}
	if !ge.Equal(NewGroupElement(p.Alpha)) {
		t.Fatal("decoded alpha does not equal itself")
	}
}

func TestRandomScalarRejectsZero(t *testing.T) {
	p := group.Test1536
	s, err := RandomScalar(p, 1, testRNG)
	if err != nil {
		t.Fatal(err)
	}
	if s.IsZero() {
		t.Fatal("RandomScalar(lo=1) produced zero")
	}
}
