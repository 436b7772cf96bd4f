package common

import (
	"github.com/go-errors/errors"
	"github.com/kobigurk/accumulator/big"
)

// Some utility code (mostly math stuff) useful in various places in this
// package.

// Often we need to refer to the same small constant big numbers, no point in
// creating them again and again.
var (
	bigONE = big.NewInt(1)
)

// ModInverse returns ia, the inverse of a in the multiplicative group of prime
// order n. It requires that a be a member of the group (i.e. less than n).
// This function was taken from Go's RSA implementation
func ModInverse(a, n *big.Int) (ia *big.Int, ok bool) {
	g := new(big.Int)
	x := new(big.Int)
	y := new(big.Int)
	g.GCD(x, y, a, n)
	if g.Cmp(bigONE) != 0 {
		// In this case, a and n aren't coprime and we cannot calculate
		// the inverse. This happens because the values of n are nearly
		// prime (being the product of two primes) rather than truly
		// prime.
		return
	}

	if x.Cmp(bigONE) < 0 {
		// 0 is not the multiplicative inverse of any element so, if x
		// < 1, then x is negative.
		x.Add(x, n)
	}

	return x, true
}

var ErrNoModInverse = errors.New("modular inverse does not exist")

// ModPow computes x^y mod m. The exponent (y) can be negative, in which case it
// uses the modular inverse to compute the result (in contrast to Go's Exp
// function).
func ModPow(x, y, m *big.Int) (*big.Int, error) {
	if y.Sign() == -1 {
		t := new(big.Int).ModInverse(x, m)
		if t == nil {
			return nil, ErrNoModInverse
		}
		return t.Exp(t, new(big.Int).Neg(y), m), nil
	}
	return new(big.Int).Exp(x, y, m), nil
}
