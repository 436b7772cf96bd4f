package primality

import (
	"github.com/kobigurk/accumulator/big"
)

// passesStrongLucas runs the strong Lucas probable prime test on n with
// discriminant d, using Selfridge's parameters P = 1, Q = (1-d)/4. The
// candidate must be odd, coprime to 2Qd, and chosen so that (d/n) = -1.
//
// With (d/n) = -1 a prime n divides U(n+1). Writing n+1 = s*2^r with s odd,
// the test accepts when U(s) = 0, or V(s*2^i) = 0 for some 0 <= i < r.
func passesStrongLucas(n, d *big.Int) bool {
	q := new(big.Int).Sub(bigONE, d)
	q.Rsh(q, 2) // exact: d = 1 (mod 4) by construction

	s := new(big.Int).Add(n, bigONE)
	r := 0
	for s.Bit(0) == 0 {
		s.Rsh(s, 1)
		r++
	}

	// Compute U(s) and V(s) by binary ladder over the bits of s, tracking
	// Q^k alongside. The running index k doubles each iteration and the
	// doubling formulas
	//   U(2k) = U(k)V(k),  V(2k) = V(k)^2 - 2Q^k
	// are followed, on a set bit, by the increment formulas
	//   U(k+1) = (U(k) + V(k))/2,  V(k+1) = (dU(k) + V(k))/2
	// where halving modulo odd n adds n first if the numerator is odd.
	u := big.NewInt(1)           // U(1)
	v := big.NewInt(1)           // V(1) = P
	qk := new(big.Int).Mod(q, n) // Q^1
	dMod := new(big.Int).Mod(d, n)

	var t1, t2 big.Int
	for i := s.BitLen() - 2; i >= 0; i-- {
		u.Mul(u, v).Mod(u, n)
		v.Mul(v, v).Sub(v, t1.Lsh(qk, 1)).Mod(v, n)
		qk.Mul(qk, qk).Mod(qk, n)
		if s.Bit(i) == 1 {
			t1.Add(u, v)
			if t1.Bit(0) == 1 {
				t1.Add(&t1, n)
			}
			t2.Mul(dMod, u).Add(&t2, v)
			if t2.Bit(0) == 1 {
				t2.Add(&t2, n)
			}
			u.Rsh(&t1, 1).Mod(u, n)
			v.Rsh(&t2, 1).Mod(v, n)
			qk.Mul(qk, q).Mod(qk, n)
		}
	}

	if u.Sign() == 0 || v.Sign() == 0 {
		return true
	}

	// V(s*2^(i+1)) = V(s*2^i)^2 - 2Q^(s*2^i)
	for i := 1; i < r; i++ {
		v.Mul(v, v).Sub(v, t1.Lsh(qk, 1)).Mod(v, n)
		if v.Sign() == 0 {
			return true
		}
		qk.Mul(qk, qk).Mod(qk, n)
	}
	return false
}
