package accumulator

import (
	"crypto/ecdsa"

	"github.com/go-errors/errors"

	"github.com/kobigurk/accumulator/big"
	"github.com/kobigurk/accumulator/group"
	"github.com/kobigurk/accumulator/signed"
)

type (
	// PrivateKey is the trapdoor key of an accumulator issuer. P and Q are
	// the prime factors of the order of the group of quadratic residues
	// modulo N, i.e. (p-1)/2 and (q-1)/2 for the safe prime factors p, q
	// of N. The ECDSA key signs accumulator states.
	PrivateKey struct {
		Counter uint
		ECDSA   *ecdsa.PrivateKey
		P, Q, N *big.Int
	}

	// PublicKey is the public counterpart of PrivateKey, carrying the group
	// in which accumulator arithmetic takes place and the key against which
	// signed accumulator states are verified.
	PublicKey struct {
		Counter uint
		ECDSA   *ecdsa.PublicKey
		Group   *group.RSA
	}
)

// Parameters of the accumulator scheme.
var Parameters = struct {
	AttributeSize uint // size in bits of the accumulated primes
}{
	AttributeSize: 256,
}

var bigOne = big.NewInt(1)

// GenerateKeys produces a fresh issuer key pair over a modulus built from two
// safe primes of bits/2 bits each.
func GenerateKeys(bits int) (*PrivateKey, *PublicKey, error) {
	n, p, q, err := group.GenerateModulus(bits)
	if err != nil {
		return nil, nil, err
	}
	ecdsaKey, err := signed.GenerateKey()
	if err != nil {
		return nil, nil, err
	}
	grp, err := group.NewRSA(n)
	if err != nil {
		return nil, nil, err
	}

	sk := &PrivateKey{
		ECDSA: ecdsaKey,
		P:     new(big.Int).Rsh(p, 1),
		Q:     new(big.Int).Rsh(q, 1),
		N:     n,
	}
	pk := &PublicKey{
		ECDSA: &ecdsaKey.PublicKey,
		Group: grp,
	}
	return sk, pk, nil
}

// order returns the order of the group of quadratic residues modulo N. Roots
// of group elements are computed by inverting the exponent modulo this order.
func (sk *PrivateKey) order() *big.Int {
	return new(big.Int).Mul(sk.P, sk.Q)
}

// Validate checks the arithmetic relations between the private key components.
func (sk *PrivateKey) Validate() error {
	p := new(big.Int).Lsh(sk.P, 1)
	p.Add(p, bigOne)
	q := new(big.Int).Lsh(sk.Q, 1)
	q.Add(q, bigOne)

	if !group.ProbablySafePrime(p) {
		return errors.New("P does not derive from a safe prime")
	}
	if !group.ProbablySafePrime(q) {
		return errors.New("Q does not derive from a safe prime")
	}
	if new(big.Int).Mul(p, q).Cmp(sk.N) != 0 {
		return errors.New("N does not match P and Q")
	}
	return nil
}
