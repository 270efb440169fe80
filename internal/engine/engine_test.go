package engine

import (
	"context"
	"crypto/rand"
	"math/big"
	"testing"
	"time"

	"github.com/nsheremet/zkpauth/internal/group"
	"github.com/nsheremet/zkpauth/internal/ratelimit"
	"github.com/nsheremet/zkpauth/internal/store"
	"github.com/nsheremet/zkpauth/internal/zkpvalue"
)

// testParams uses the smaller RFC 3526 fixture so exponentiations in
// this test file stay fast.
var testParams = group.Test1536

func newTestEngine(t *testing.T) (*Engine, func()) {
	t.Helper()
	challenges := store.NewChallengeRegistry(time.Minute, 100)
	sessions := store.NewSessionRegistry(100)
	reg := ratelimit.New(1000)
	create := ratelimit.New(1000)
	verify := ratelimit.New(1000)
	e := New(Config{
		Params:        testParams,
		Users:         store.NewUserRegistry(),
		Challenges:    challenges,
		Sessions:      sessions,
		RegisterLimit: reg,
		CreateLimit:   create,
		VerifyLimit:   verify,
	})
	cleanup := func() {
		challenges.Close()
		reg.Close()
		create.Close()
		verify.Close()
	}
	return e, cleanup
}

// testIdentity samples a fresh secret x and returns it along with the
// registration commitments y1 = alpha^x, y2 = beta^x.
func testIdentity(t *testing.T) (x *big.Int, y1, y2 []byte) {
	t.Helper()
	x, err := rand.Int(rand.Reader, testParams.Q)
	if err != nil {
		t.Fatalf("sample x: %v", err)
	}
	if x.Sign() == 0 {
		x = big.NewInt(1)
	}
	y1Int := testParams.ModExp(testParams.Alpha, x)
	y2Int := testParams.ModExp(testParams.Beta, x)
	return x, y1Int.Bytes(), y2Int.Bytes()
}

// commit samples a fresh ephemeral k and returns it along with the
// commitments r1 = alpha^k, r2 = beta^k.
func commit(t *testing.T) (k *big.Int, r1, r2 []byte) {
	t.Helper()
	k, err := rand.Int(rand.Reader, testParams.Q)
	if err != nil {
		t.Fatalf("sample k: %v", err)
	}
	if k.Sign() == 0 {
		k = big.NewInt(1)
	}
	r1Int := testParams.ModExp(testParams.Alpha, k)
	r2Int := testParams.ModExp(testParams.Beta, k)
	return k, r1Int.Bytes(), r2Int.Bytes()
}

// respond computes s = (k - c*x) mod q, the prover's response.
func respond(k, c, x *big.Int) []byte {
	s := new(big.Int).Mul(c, x)
	s.Sub(k, s)
	s.Mod(s, testParams.Q)
	return s.Bytes()
}

func TestRegisterCreateVerifyHappyPath(t *testing.T) {
	e, cleanup := newTestEngine(t)
	defer cleanup()
	ctx := context.Background()

	x, y1, y2 := testIdentity(t)
	if err := e.Register(ctx, "alice", "1.2.3.4", y1, y2); err != nil {
		t.Fatalf("Register: %v", err)
	}

	k, r1, r2 := commit(t)
	res, err := e.CreateChallenge(ctx, "alice", "1.2.3.4", r1, r2)
	if err != nil {
		t.Fatalf("CreateChallenge: %v", err)
	}

	c := new(big.Int).SetBytes(res.C)
	sBytes := respond(k, c, x)

	token, err := e.Verify(ctx, res.AuthID, "1.2.3.4", sBytes)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty session token")
	}
}

func TestRegisterDuplicateRejected(t *testing.T) {
	e, cleanup := newTestEngine(t)
	defer cleanup()
	ctx := context.Background()

	_, y1, y2 := testIdentity(t)
	if err := e.Register(ctx, "bob", "peer", y1, y2); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	err := e.Register(ctx, "bob", "peer", y1, y2)
	if err == nil {
		t.Fatal("expected second registration to fail")
	}
	ee, ok := As(err)
	if !ok || ee.Kind != KindAlreadyRegistered {
		t.Fatalf("expected KindAlreadyRegistered, got %#v", err)
	}
}

func TestCreateChallengeUnknownUser(t *testing.T) {
	e, cleanup := newTestEngine(t)
	defer cleanup()
	ctx := context.Background()

	_, r1, r2 := commit(t)
	_, err := e.CreateChallenge(ctx, "ghost", "peer", r1, r2)
	if err == nil {
		t.Fatal("expected error for unknown user")
	}
	ee, ok := As(err)
	if !ok || ee.Kind != KindUserNotFound {
		t.Fatalf("expected KindUserNotFound, got %#v", err)
	}
}

func TestVerifyWrongSecretRejected(t *testing.T) {
	e, cleanup := newTestEngine(t)
	defer cleanup()
	ctx := context.Background()

	_, y1, y2 := testIdentity(t)
	if err := e.Register(ctx, "carol", "peer", y1, y2); err != nil {
		t.Fatalf("Register: %v", err)
	}

	k, r1, r2 := commit(t)
	res, err := e.CreateChallenge(ctx, "carol", "peer", r1, r2)
	if err != nil {
		t.Fatalf("CreateChallenge: %v", err)
	}

	c := new(big.Int).SetBytes(res.C)
	wrongX := big.NewInt(987654321)
	sBytes := respond(k, c, wrongX)

	_, err = e.Verify(ctx, res.AuthID, "peer", sBytes)
	if err == nil {
		t.Fatal("expected verify to fail for wrong secret")
	}
	ee, ok := As(err)
	if !ok || ee.Kind != KindChallengeInvalid {
		t.Fatalf("expected KindChallengeInvalid, got %#v", err)
	}
}

func TestVerifyReplayRejected(t *testing.T) {
	e, cleanup := newTestEngine(t)
	defer cleanup()
	ctx := context.Background()

	x, y1, y2 := testIdentity(t)
	if err := e.Register(ctx, "dave", "peer", y1, y2); err != nil {
		t.Fatalf("Register: %v", err)
	}

	k, r1, r2 := commit(t)
	res, err := e.CreateChallenge(ctx, "dave", "peer", r1, r2)
	if err != nil {
		t.Fatalf("CreateChallenge: %v", err)
	}
	c := new(big.Int).SetBytes(res.C)
	sBytes := respond(k, c, x)

	if _, err := e.Verify(ctx, res.AuthID, "peer", sBytes); err != nil {
		t.Fatalf("first Verify: %v", err)
	}

	_, err = e.Verify(ctx, res.AuthID, "peer", sBytes)
	if err == nil {
		t.Fatal("expected replayed verify to fail")
	}
	ee, ok := As(err)
	if !ok || ee.Kind != KindChallengeInvalid {
		t.Fatalf("expected KindChallengeInvalid on replay, got %#v", err)
	}
}

func TestVerifyExpiredChallengeRejected(t *testing.T) {
	challenges := store.NewChallengeRegistry(10*time.Millisecond, 100)
	defer challenges.Close()
	sessions := store.NewSessionRegistry(100)
	reg := ratelimit.New(1000)
	create := ratelimit.New(1000)
	verify := ratelimit.New(1000)
	defer reg.Close()
	defer create.Close()
	defer verify.Close()

	e := New(Config{
		Params:        testParams,
		Users:         store.NewUserRegistry(),
		Challenges:    challenges,
		Sessions:      sessions,
		RegisterLimit: reg,
		CreateLimit:   create,
		VerifyLimit:   verify,
	})
	ctx := context.Background()

	x, y1, y2 := testIdentity(t)
	if err := e.Register(ctx, "erin", "peer", y1, y2); err != nil {
		t.Fatalf("Register: %v", err)
	}
	k, r1, r2 := commit(t)
	res, err := e.CreateChallenge(ctx, "erin", "peer", r1, r2)
	if err != nil {
		t.Fatalf("CreateChallenge: %v", err)
	}
	c := new(big.Int).SetBytes(res.C)
	sBytes := respond(k, c, x)

	time.Sleep(30 * time.Millisecond)

	_, err = e.Verify(ctx, res.AuthID, "peer", sBytes)
	if err == nil {
		t.Fatal("expected expired challenge to be rejected")
	}
	ee, ok := As(err)
	if !ok || ee.Kind != KindChallengeInvalid {
		t.Fatalf("expected KindChallengeInvalid for expired challenge, got %#v", err)
	}
}

func TestVerifyUnknownAuthIDRejected(t *testing.T) {
	e, cleanup := newTestEngine(t)
	defer cleanup()
	ctx := context.Background()

	_, err := e.Verify(ctx, "does-not-exist", "peer", []byte{1})
	if err == nil {
		t.Fatal("expected error for unknown auth_id")
	}
	ee, ok := As(err)
	if !ok || ee.Kind != KindChallengeInvalid {
		t.Fatalf("expected KindChallengeInvalid, got %#v", err)
	}
}

func TestRegisterRejectsNonSubgroupElement(t *testing.T) {
	e, cleanup := newTestEngine(t)
	defer cleanup()
	ctx := context.Background()

	// 2 is not a member of the order-q subgroup of this safe prime group
	// (the subgroup consists only of quadratic residues), so supplying it
	// directly as a commitment must fail decode.
	bogus := big.NewInt(2).Bytes()
	_, _, y2 := testIdentity(t)
	err := e.Register(ctx, "frank", "peer", bogus, y2)
	if err == nil {
		t.Fatal("expected non-subgroup element to be rejected")
	}
	ee, ok := As(err)
	if !ok || ee.Kind != KindInvalidParameter {
		t.Fatalf("expected KindInvalidParameter, got %#v", err)
	}
}

func TestVerifyMalformedScalarRejected(t *testing.T) {
	e, cleanup := newTestEngine(t)
	defer cleanup()
	ctx := context.Background()

	_, y1, y2 := testIdentity(t)
	if err := e.Register(ctx, "gina", "peer", y1, y2); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, r1, r2 := commit(t)
	res, err := e.CreateChallenge(ctx, "gina", "peer", r1, r2)
	if err != nil {
		t.Fatalf("CreateChallenge: %v", err)
	}

	// A scalar with a non-canonical leading zero byte must be rejected,
	// and must surface as the same KindChallengeInvalid as any other
	// verification failure (spec.md section 7).
	badScalar := append([]byte{0x00}, zkpvalue.NewScalar(big.NewInt(5)).Encode()...)
	_, err = e.Verify(ctx, res.AuthID, "peer", badScalar)
	if err == nil {
		t.Fatal("expected malformed scalar to be rejected")
	}
	ee, ok := As(err)
	if !ok || ee.Kind != KindChallengeInvalid {
		t.Fatalf("expected KindChallengeInvalid, got %#v", err)
	}
}

func TestRegisterRateLimited(t *testing.T) {
	challenges := store.NewChallengeRegistry(time.Minute, 100)
	defer challenges.Close()
	sessions := store.NewSessionRegistry(100)
	reg := ratelimit.New(1) // burst of exactly 1 per key
	create := ratelimit.New(1000)
	verify := ratelimit.New(1000)
	defer reg.Close()
	defer create.Close()
	defer verify.Close()

	e := New(Config{
		Params:        testParams,
		Users:         store.NewUserRegistry(),
		Challenges:    challenges,
		Sessions:      sessions,
		RegisterLimit: reg,
		CreateLimit:   create,
		VerifyLimit:   verify,
	})
	ctx := context.Background()

	_, y1, y2 := testIdentity(t)
	if err := e.Register(ctx, "hank", "same-peer", y1, y2); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	_, y1b, y2b := testIdentity(t)
	err := e.Register(ctx, "hank2", "same-peer", y1b, y2b)
	if err == nil {
		t.Fatal("expected second registration from the same peer to be rate limited")
	}
	ee, ok := As(err)
	if !ok || ee.Kind != KindRateLimited {
		t.Fatalf("expected KindRateLimited, got %#v", err)
	}
}
