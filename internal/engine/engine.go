// Package engine implements the three-operation Schnorr / Chaum-Pedersen
// protocol state machine described by spec.md sections 4.4, 4.6, and 8:
// Register, CreateChallenge, and Verify.
//
// Grounded on gdwrd-esrp/engine/engine.go's extract-then-exponentiate
// shape (CalcServerS: pull the immutable values needed, release any
// lock, then do the modular exponentiation) and on
// Tomsons-go-srp/srp.go's NewServer/ClientOk verify-and-report flow,
// including its use of crypto/subtle for the accept decision.
package engine

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"unicode"
	"unicode/utf8"

	"github.com/nsheremet/zkpauth/internal/group"
	"github.com/nsheremet/zkpauth/internal/ratelimit"
	"github.com/nsheremet/zkpauth/internal/store"
	"github.com/nsheremet/zkpauth/internal/zkpvalue"
)

// Engine composes the group parameters, the three registries, and the
// rate limiter into the three protocol operations.
type Engine struct {
	params *group.Params

	users      store.UserStore
	challenges *store.ChallengeRegistry
	sessions   *store.SessionRegistry

	registerLimit *ratelimit.Limiter
	createLimit   *ratelimit.Limiter
	verifyLimit   *ratelimit.Limiter
}

// Config bundles the dependencies an Engine needs. All fields are
// required.
type Config struct {
	Params        *group.Params
	Users         store.UserStore
	Challenges    *store.ChallengeRegistry
	Sessions      *store.SessionRegistry
	RegisterLimit *ratelimit.Limiter
	CreateLimit   *ratelimit.Limiter
	VerifyLimit   *ratelimit.Limiter
}

// New constructs an Engine from cfg.
func New(cfg Config) *Engine {
	return &Engine{
		params:        cfg.Params,
		users:         cfg.Users,
		challenges:    cfg.Challenges,
		sessions:      cfg.Sessions,
		registerLimit: cfg.RegisterLimit,
		createLimit:   cfg.CreateLimit,
		verifyLimit:   cfg.VerifyLimit,
	}
}

// maxUsernameLen and minUsernameLen follow spec.md section 3's
// "1..=64 printable characters, no embedded NUL" rule for usernames.
const (
	minUsernameLen = 1
	maxUsernameLen = 64
)

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLen || n > maxUsernameLen {
		return newErr(KindInvalidParameter, "invalid username length")
	}
	for _, r := range username {
		if r == 0 {
			return newErr(KindInvalidParameter, "invalid username: embedded NUL")
		}
		if !unicode.IsPrint(r) {
			return newErr(KindInvalidParameter, "invalid username: non-printable character")
		}
	}
	return nil
}

// Register validates and stores a new user's commitments (y1, y2),
// rejecting non-canonical encodings, non-subgroup elements, and repeat
// registrations. peerKey identifies the caller for rate-limiting
// purposes (spec.md section 4.5: registration is keyed by username and
// by peer identity).
func (e *Engine) Register(ctx context.Context, username, peerKey string, y1Bytes, y2Bytes []byte) error {
	if !e.registerLimit.Allow(username) || !e.registerLimit.Allow(peerKey) {
		return newErr(KindRateLimited, "registration rate limit exceeded")
	}

	if err := validateUsername(username); err != nil {
		return err
	}

	y1, err := zkpvalue.DecodeGroupElement(e.params, y1Bytes)
	if err != nil {
		return newErr(KindInvalidParameter, "invalid y1: "+err.Error())
	}
	y2, err := zkpvalue.DecodeGroupElement(e.params, y2Bytes)
	if err != nil {
		return newErr(KindInvalidParameter, "invalid y2: "+err.Error())
	}

	if err := e.users.Register(username, y1, y2); err != nil {
		if err == store.ErrAlreadyRegistered {
			return newErr(KindAlreadyRegistered, "user already registered")
		}
		return wrapInternal(err, "registration failed")
	}
	return nil
}

// ChallengeResult is the outcome of a successful CreateChallenge call.
type ChallengeResult struct {
	AuthID string
	C      []byte // canonical big-endian encoding of the challenge scalar
}

// CreateChallenge validates a client's ephemeral commitment (r1, r2) for
// an existing user, samples a uniformly random challenge c in [1, q),
// and stores the pending authentication state under a fresh auth_id.
// Rate limiting is keyed by username only (spec.md section 4.5: "create"
// is keyed by username); peerKey is accepted but not used.
func (e *Engine) CreateChallenge(ctx context.Context, username, peerKey string, r1Bytes, r2Bytes []byte) (ChallengeResult, error) {
	if !e.createLimit.Allow(username) {
		return ChallengeResult{}, newErr(KindRateLimited, "challenge creation rate limit exceeded")
	}

	if _, ok := e.users.Lookup(username); !ok {
		return ChallengeResult{}, newErr(KindUserNotFound, "unknown user")
	}

	r1, err := zkpvalue.DecodeGroupElement(e.params, r1Bytes)
	if err != nil {
		return ChallengeResult{}, newErr(KindInvalidParameter, "invalid r1: "+err.Error())
	}
	r2, err := zkpvalue.DecodeGroupElement(e.params, r2Bytes)
	if err != nil {
		return ChallengeResult{}, newErr(KindInvalidParameter, "invalid r2: "+err.Error())
	}

	c, err := zkpvalue.RandomScalar(e.params, 1, cryptoRandInt)
	if err != nil {
		return ChallengeResult{}, wrapInternal(err, "failed to sample challenge")
	}

	authID, err := e.challenges.Create(username, r1, r2, c)
	if err != nil {
		if err == store.ErrRegistryFull {
			return ChallengeResult{}, newErr(KindResourceExhausted, "too many pending challenges")
		}
		return ChallengeResult{}, wrapInternal(err, "failed to create challenge")
	}

	return ChallengeResult{AuthID: authID, C: c.Encode()}, nil
}

// Verify checks a client's response s against the pending challenge
// identified by authID. On success it mints and returns a new opaque
// session token. On any failure of the challenge or proof — unknown
// auth_id, expired challenge, wrong response, malformed s, even a pending
// challenge whose user is missing — it returns a KindChallengeInvalid
// error (rate limiting, a full session registry and session-minting
// failures keep their own kinds); callers at the transport layer
// MUST render all of these identically (spec.md section 7) to avoid
// giving an attacker an oracle distinguishing "wrong secret" from
// "expired" from "unknown auth_id".
func (e *Engine) Verify(ctx context.Context, authID, peerKey string, sBytes []byte) (string, error) {
	if !e.verifyLimit.Allow(authIDPrefix(authID)) || !e.verifyLimit.Allow(peerKey) {
		return "", newErr(KindRateLimited, "verification rate limit exceeded")
	}

	pending, err := e.challenges.Consume(authID)
	if err != nil {
		// ErrChallengeNotFound and ErrChallengeExpired both collapse to
		// the same external signal; only the internal Kind is uniform,
		// not the classification of *why*.
		return "", newErr(KindChallengeInvalid, "authentication failed")
	}

	user, ok := e.users.Lookup(pending.Username)
	if !ok {
		// A pending challenge referencing a vanished user indicates an
		// invariant violation elsewhere in the system (users are never
		// deleted by this implementation), not a client mistake. Still
		// reported externally as ChallengeInvalid per spec.md section 7.
		return "", newErr(KindChallengeInvalid, "authentication failed")
	}

	s, err := zkpvalue.DecodeScalar(e.params, sBytes)
	if err != nil {
		return "", newErr(KindChallengeInvalid, "authentication failed")
	}

	// v1 = alpha^s * y1^c mod p ; v2 = beta^s * y2^c mod p. Computed
	// entirely from values already extracted from the registries above —
	// no registry lock is held during these modular exponentiations.
	v1 := e.verifyEquation(e.params.Alpha, s.Int(), user.Y1.Int(), pending.C.Int())
	v2 := e.verifyEquation(e.params.Beta, s.Int(), user.Y2.Int(), pending.C.Int())

	ok1 := constantTimeEqual(v1, pending.R1.Int())
	ok2 := constantTimeEqual(v2, pending.R2.Int())
	if ok1&ok2 != 1 {
		return "", newErr(KindChallengeInvalid, "authentication failed")
	}

	sess, err := e.sessions.Issue(pending.Username)
	if err != nil {
		if err == store.ErrRegistryFull {
			return "", newErr(KindResourceExhausted, "too many active sessions")
		}
		return "", wrapInternal(err, "failed to issue session")
	}
	return sess.Token, nil
}

// verifyEquation computes base^s * y^c mod p.
func (e *Engine) verifyEquation(base, s, y, c *big.Int) *big.Int {
	left := e.params.ModExp(base, s)
	right := e.params.ModExp(y, c)
	return e.params.MulMod(left, right)
}

// constantTimeEqual compares two big.Int values for equality in
// constant time with respect to their canonical byte representations,
// following Tomsons-go-srp/srp.go's ClientOk/ServerOk use of
// crypto/subtle.
func constantTimeEqual(a, b *big.Int) int {
	// Byte length is derived from the longer of the two operands so both
	// are padded to the same width before the constant-time compare.
	n := a.BitLen()
	if b.BitLen() > n {
		n = b.BitLen()
	}
	byteLen := (n + 7) / 8
	if byteLen == 0 {
		byteLen = 1
	}
	return subtle.ConstantTimeCompare(padTo(a, byteLen), padTo(b, byteLen))
}

func padTo(v *big.Int, n int) []byte {
	b := v.Bytes()
	if len(b) >= n {
		return b
	}
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}

func authIDPrefix(authID string) string {
	const prefixLen = 8
	if len(authID) <= prefixLen {
		return authID
	}
	return authID[:prefixLen]
}

func cryptoRandInt(max *big.Int) (*big.Int, error) {
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return nil, fmt.Errorf("engine: rng failure: %w", err)
	}
	return v, nil
}
