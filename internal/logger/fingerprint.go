package logger

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// GroupFingerprint returns a short, stable blake2b-256 hash of the
// group's defining values, suitable for a single startup log line that
// lets operators confirm which parameter set is loaded without printing
// a 2048-bit modulus. Grounded on the teacher's use of blake2b as its one
// real third-party dependency (Tomsons-go-srp/srp.go hashes identities
// and password material with it); here it hashes public domain
// parameters instead.
func GroupFingerprint(name string, p, q, alpha, beta []byte) string {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails for an oversized key, and nil is
		// always a valid (absent) key; this path is unreachable.
		panic("logger: blake2b.New256: " + err.Error())
	}
	h.Write([]byte(name))
	h.Write(p)
	h.Write(q)
	h.Write(alpha)
	h.Write(beta)
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}

// HashPeer returns a short blake2b-256 hash of a peer identifier (IP
// address, typically), for use in request log lines where the raw
// address shouldn't linger. This mirrors the
// teacher's own I = H(I) anonymization of usernames before they're
// stored or compared.
func HashPeer(peer string) string {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic("logger: blake2b.New256: " + err.Error())
	}
	h.Write([]byte(peer))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}
