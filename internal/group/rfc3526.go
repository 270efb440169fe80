package group

import (
	"crypto/sha256"
	"fmt"
	"math/big"
)

// Safe-prime moduli, reused verbatim from the IETF RFCs: modp14Hex is the
// RFC 3526 2048-bit MODP Group 14 prime, and modp5Hex is the 1536-bit
// group prime from RFC 5054 (the SRP group table). Declared as hex
// strings and parsed at init time.
const (
	modp14Hex = "FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD" +
		"129024E088A67CC74020BBEA63B139B22514A08798E3404DDEF9519B3CD3A43" +
		"1B302B0A6DF25F14374FE1356D6D51C245E485B576625E7EC6F44C42E9A637E" +
		"D6B0BFF5CB6F406B7EDEE386BFB5A899FA5AE9F24117C4B1FE649286651ECE4" +
		"5B3DC2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F83655D23DCA" +
		"3AD961C62F356208552BB9ED529077096966D670C354E4ABC9804F1746C08CA" +
		"18217C32905E462E36CE3BE39E772C180E86039B2783A2EC07A28FB5C55DF06" +
		"F4C52C9DE2BCBF6955817183995497CEA956AE515D2261898FA051015728E5A" +
		"8AACAA68FFFFFFFFFFFFFFFF"

	modp5Hex = "9DEF3CAFB939277AB1F12A8617A47BBBDBA51DF499AC4C80BEEEA9614B19CC4" +
		"D5F4F5F556E27CBDE51C6A94BE4607A291558903BA0D0F84380B655BB9A22E8" +
		"DCDF028A7CEC67F0D08134B1C8B97989149B609E0BE3BAB63D47548381DBC5B" +
		"1FC764E3F4B53DD9DA1158BFD3E2B9C8CF56EDF019539349627DB2FD53D24B7" +
		"C48665772E437D6C7F8CE442734AF7CCB7AE837C264AE3A9BEB87F8A2FE9B8B" +
		"5292E5A021FFF5E91479E8CE7A28C2442C6F315180F93499A234DCF76E3FED1" +
		"35F9BB"
)

// deriveGenerator maps a nothing-up-my-sleeve label deterministically into
// the order-Q subgroup of (Z/PZ)*. Squaring any nonzero element of
// (Z/PZ)* lands in the unique order-Q subgroup of a safe-prime group
// (the quadratic residues), regardless of the original element's order,
// so this is a safe and simple hash-to-subgroup construction. Nobody,
// including the implementer, learns the discrete log of the result with
// respect to any other generator produced the same way, short of solving
// discrete log itself.
func deriveGenerator(p *big.Int, label string) *big.Int {
	h := sha256.Sum256([]byte(label))
	y := new(big.Int).SetBytes(h[:])
	y.Mod(y, p)
	if y.Sign() == 0 {
		y.SetInt64(2)
	}
	return new(big.Int).Exp(y, big.NewInt(2), p)
}

func buildParams(name, primeHex string) *Params {
	p, ok := new(big.Int).SetString(primeHex, 16)
	if !ok {
		panic(fmt.Sprintf("group %s: invalid modulus literal", name))
	}
	q := new(big.Int).Sub(p, big.NewInt(1))
	q.Div(q, big.NewInt(2))

	params := &Params{
		Name:  name,
		P:     p,
		Q:     q,
		Alpha: deriveGenerator(p, "zkpauth/"+name+"/alpha"),
		Beta:  deriveGenerator(p, "zkpauth/"+name+"/beta"),
	}
	return params
}

// Standard is the production group: RFC 3526 MODP Group 14, 2048 bits.
var Standard = buildParams("rfc3526-modp14", modp14Hex)

// Test1536 is a smaller group (the RFC 5054 1536-bit prime) kept only for
// exercising the arithmetic paths at a second bit width in tests; it is
// not selectable at runtime by configuration.
var Test1536 = buildParams("rfc3526-modp5-test", modp5Hex)

func init() {
	if err := Standard.Validate(2048); err != nil {
		panic("zkpauth/internal/group: " + err.Error())
	}
	if err := Test1536.Validate(1536); err != nil {
		panic("zkpauth/internal/group: " + err.Error())
	}
}
