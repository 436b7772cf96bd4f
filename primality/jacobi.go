package primality

import (
	"github.com/kobigurk/accumulator/big"
)

// Jacobi computes the Jacobi symbol (a/n) for odd n > 0. The result is 0
// when a and n share a factor, and otherwise 1 or -1.
func Jacobi(a, n *big.Int) int {
	if n.Cmp(bigONE) == 0 {
		return 1
	}
	switch {
	case a.Sign() == 0:
		return 0
	case a.Cmp(bigONE) == 0:
		return 1
	case a.Cmp(bigTWO) == 0:
		// (2/n) = (-1)^((n^2-1)/8)
		var low big.Int
		switch low.And(n, bigSEVEN).Int64() {
		case 1, 7:
			return 1
		case 3, 5:
			return -1
		}
		return 0
	case a.Sign() < 0:
		// (-1/n) = (-1)^((n-1)/2)
		j := Jacobi(new(big.Int).Neg(a), n)
		if n.Bit(1) == 1 { // n = 3 (mod 4)
			return -j
		}
		return j
	}
	if a.Bit(0) == 0 {
		return Jacobi(bigTWO, n) * Jacobi(new(big.Int).Rsh(a, 1), n)
	}
	if a.Cmp(n) >= 0 {
		return Jacobi(new(big.Int).Mod(a, n), n)
	}
	// 1 < a < n with both odd: apply quadratic reciprocity.
	j := Jacobi(new(big.Int).Mod(n, a), a)
	if a.Bit(1) == 1 && n.Bit(1) == 1 { // a = n = 3 (mod 4)
		return -j
	}
	return j
}

// chooseDiscriminant searches the sequence 5, -7, 9, -11, 13, ... for the
// first D with (D/n) = -1, yielding the discriminant for the strong Lucas
// test. No such D exists when n is a perfect square, so after a stretch of
// failed attempts an exact square root rules that out; ok is false if n
// turns out to be square.
func chooseDiscriminant(n *big.Int) (*big.Int, bool) {
	d := big.NewInt(5)
	for attempts := 0; ; attempts++ {
		if Jacobi(d, n) == -1 {
			return d, true
		}
		if attempts == 40 {
			s := new(big.Int).Sqrt(n)
			if s.Mul(s, s).Cmp(n) == 0 {
				return nil, false
			}
		}
		if d.Sign() > 0 {
			d.Add(d, bigTWO)
		} else {
			d.Sub(d, bigTWO)
		}
		d.Neg(d)
	}
}
