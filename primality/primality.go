// Package primality implements the Baillie-PSW probabilistic primality test.
//
// A candidate is screened in four stages: trial division by the fifty
// smallest primes, a single Miller-Rabin round to base 2, a perfect square
// filter, and a strong Lucas probable prime test with Selfridge's parameters.
// The Miller-Rabin and Lucas stages have no known common pseudoprime, and an
// exhaustive search has shown none exists below 2^64.
package primality

import (
	"github.com/kobigurk/accumulator/big"
)

var (
	bigONE     = big.NewInt(1)
	bigTWO     = big.NewInt(2)
	bigTHREE   = big.NewInt(3)
	bigFIVE    = big.NewInt(5)
	bigSEVEN   = big.NewInt(7)
	bigEIGHT   = big.NewInt(8)
	bigELEVEN  = big.NewInt(11)
	bigFIFTEEN = big.NewInt(15)
)

// ProbablyPrime reports whether n is a Baillie-PSW probable prime.
// It returns false for all n < 2 and is exact for n below the square of the
// largest trial division prime.
func ProbablyPrime(n *big.Int) bool {
	if n.Sign() <= 0 {
		return false
	}
	if n.IsInt64() && n.Int64() <= maxSmallPrime {
		return isSmallPrime(n.Int64())
	}
	if hasSmallPrimeFactor(n) {
		return false
	}
	if !passesMillerRabinBase2(n) {
		return false
	}
	// No Lucas discriminant exists for perfect squares, so they have to be
	// weeded out before the search below.
	if looksLikeSquare(n) {
		return false
	}
	d, ok := chooseDiscriminant(n)
	if !ok {
		return false
	}
	return passesStrongLucas(n, d)
}

// isSmallPrime reports whether v occurs in the trial division table.
func isSmallPrime(v int64) bool {
	for _, p := range smallPrimes {
		if p == v {
			return true
		}
	}
	return false
}

// hasSmallPrimeFactor reports whether any table prime divides n, scanning in
// ascending order and stopping once the divisor exceeds n.
func hasSmallPrimeFactor(n *big.Int) bool {
	var divisor, rem big.Int
	for _, p := range smallPrimes {
		divisor.SetInt64(p)
		if divisor.Cmp(n) > 0 {
			break
		}
		if rem.Mod(n, &divisor).Sign() == 0 {
			return true
		}
	}
	return false
}

// passesMillerRabinBase2 runs one Miller-Rabin round with witness 2.
// The candidate must be odd and larger than 2.
func passesMillerRabinBase2(n *big.Int) bool {
	// Decompose n-1 = 2^r * d with d odd.
	nMinusOne := new(big.Int).Sub(n, bigONE)
	d := new(big.Int).Set(nMinusOne)
	r := 0
	for d.Bit(0) == 0 {
		d.Rsh(d, 1)
		r++
	}

	x := new(big.Int).Exp(bigTWO, d, n)
	if x.Cmp(bigONE) == 0 || x.Cmp(nMinusOne) == 0 {
		return true
	}
	for i := 0; i < r-1; i++ {
		x.Mul(x, x).Mod(x, n)
		if x.Cmp(bigONE) == 0 {
			return false
		}
		if x.Cmp(nMinusOne) == 0 {
			return true
		}
	}
	return false
}
