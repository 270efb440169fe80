// Package zkpvalue implements the two wire-level value types used by the
// protocol: Scalar (an integer in [0, q)) and GroupElement (an integer in
// the order-q subgroup of (Z/pZ)*). Both decode from and encode to
// canonical, minimal-length big-endian byte strings.
//
// Grounded on gdwrd-esrp/value/value.go's thin *big.Int wrapper and on
// Tomsons-go-srp/srp.go's pad() helper for fixed-width encoding.
package zkpvalue

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nsheremet/zkpauth/internal/group"
)

// Errors returned by Decode functions. Callers at the engine layer map
// all of these to the InvalidParameter error kind (spec.md section 7).
var (
	ErrEmpty          = errors.New("zkpvalue: empty input")
	ErrLeadingZero    = errors.New("zkpvalue: non-canonical encoding (leading zero byte)")
	ErrTooLong        = errors.New("zkpvalue: encoding exceeds modulus size")
	ErrOutOfRange     = errors.New("zkpvalue: value out of range")
	ErrNotInSubgroup  = errors.New("zkpvalue: value is not a member of the order-q subgroup")
	ErrZeroOrOne      = errors.New("zkpvalue: group elements of 0 or 1 are not permitted")
)

// Scalar is an integer in [0, q).
type Scalar struct {
	v *big.Int
}

// DecodeScalar parses a canonical big-endian byte string into a Scalar,
// enforcing minimal-length encoding and the range [0, q).
func DecodeScalar(p *group.Params, b []byte) (Scalar, error) {
	if len(b) == 0 {
		return Scalar{}, ErrEmpty
	}
	if len(b) > 1 && b[0] == 0x00 {
		return Scalar{}, ErrLeadingZero
	}
	maxLen := (p.Q.BitLen() + 7) / 8
	if len(b) > maxLen {
		return Scalar{}, ErrTooLong
	}
	v := new(big.Int).SetBytes(b)
	if v.Sign() < 0 || v.Cmp(p.Q) >= 0 {
		return Scalar{}, ErrOutOfRange
	}
	return Scalar{v: v}, nil
}

// NewScalar wraps an already-validated *big.Int without re-running the
// decode checks. Used internally once a value is known to be in range
// (e.g. a freshly sampled random challenge).
func NewScalar(v *big.Int) Scalar {
	return Scalar{v: new(big.Int).Set(v)}
}

// Int returns the underlying big.Int. Callers must not mutate it.
func (s Scalar) Int() *big.Int {
	return s.v
}

// IsZero reports whether the scalar is zero.
func (s Scalar) IsZero() bool {
	return s.v == nil || s.v.Sign() == 0
}

// Encode returns the canonical minimal-length big-endian encoding.
func (s Scalar) Encode() []byte {
	return s.v.Bytes()
}

// GroupElement is an integer in [1, p) that is a member of the order-q
// subgroup.
type GroupElement struct {
	v *big.Int
}

// DecodeGroupElement parses a canonical big-endian byte string into a
// GroupElement, enforcing minimal-length encoding, the range [1, p), and
// subgroup membership (g^q mod p == 1).
func DecodeGroupElement(p *group.Params, b []byte) (GroupElement, error) {
	if len(b) == 0 {
		return GroupElement{}, ErrEmpty
	}
	if len(b) > 1 && b[0] == 0x00 {
		return GroupElement{}, ErrLeadingZero
	}
	maxLen := p.ByteLen()
	if len(b) > maxLen {
		return GroupElement{}, ErrTooLong
	}
	v := new(big.Int).SetBytes(b)
	if v.Sign() <= 0 || v.Cmp(p.P) >= 0 {
		return GroupElement{}, ErrOutOfRange
	}
	one := big.NewInt(1)
	if v.Cmp(one) == 0 {
		return GroupElement{}, ErrZeroOrOne
	}
	if !p.InSubgroup(v) {
		return GroupElement{}, ErrNotInSubgroup
	}
	return GroupElement{v: v}, nil
}

// NewGroupElement wraps an already-validated *big.Int, e.g. a value this
// process itself computed via modular exponentiation and therefore knows
// to be a valid subgroup member.
func NewGroupElement(v *big.Int) GroupElement {
	return GroupElement{v: new(big.Int).Set(v)}
}

// Int returns the underlying big.Int. Callers must not mutate it.
func (g GroupElement) Int() *big.Int {
	return g.v
}

// Encode returns the canonical minimal-length big-endian encoding.
func (g GroupElement) Encode() []byte {
	return g.v.Bytes()
}

// Equal reports whether two group elements are numerically equal. This
// is NOT constant-time; callers comparing a computed value against a
// value supplied by an untrusted party for an accept/reject decision
// must use a constant-time comparison instead (see internal/engine).
func (g GroupElement) Equal(other GroupElement) bool {
	return g.v.Cmp(other.v) == 0
}

// RandomScalar samples a scalar from [lo, q) by drawing one value from
// rngInt over [0, q-lo) and adding lo; no modular reduction is applied,
// so the result is uniform whenever rngInt is (crypto/rand.Int is).
func RandomScalar(p *group.Params, lo int64, rngInt func(max *big.Int) (*big.Int, error)) (Scalar, error) {
	span := new(big.Int).Sub(p.Q, big.NewInt(lo))
	if span.Sign() <= 0 {
		return Scalar{}, fmt.Errorf("zkpvalue: invalid scalar range [%d, q)", lo)
	}
	r, err := rngInt(span)
	if err != nil {
		return Scalar{}, err
	}
	r.Add(r, big.NewInt(lo))
	return Scalar{v: r}, nil
}
