package accumulator

import (
	"github.com/go-errors/errors"

	"github.com/kobigurk/accumulator/big"
	"github.com/kobigurk/accumulator/group"
)

// ErrNoCongruenceSolution is returned by SolveLinearCongruence when gcd(a, m)
// does not divide b.
var ErrNoCongruenceSolution = errors.New("linear congruence has no solution")

// SolveLinearCongruence solves ax = b (mod m) for x, with a and m positive.
// The solutions are exactly the integers congruent to mu modulo nu, where nu
// divides m.
func SolveLinearCongruence(a, b, m *big.Int) (mu, nu *big.Int, err error) {
	// g = gcd(a, m) = a*x + m*y; a solution exists iff g divides b, and the
	// solutions form a single class modulo m/g.
	g, x := new(big.Int), new(big.Int)
	g.GCD(x, nil, a, m)

	q, r := new(big.Int).DivMod(b, g, new(big.Int))
	if r.Sign() != 0 {
		return nil, nil, ErrNoCongruenceSolution
	}

	mu = new(big.Int).Mul(q, x)
	mu.Rem(mu, m)
	nu = new(big.Int).Div(m, g)
	return mu, nu, nil
}

// ShamirTrick combines an x-th root and a y-th root of the same group element
// into an xy-th root of it. It returns false when the two roots are not roots
// of the same element, or when x and y are not coprime.
func ShamirTrick(grp group.Group, xthRoot, ythRoot, x, y *big.Int) (*big.Int, bool) {
	if !grp.Equal(grp.Exp(xthRoot, x), grp.Exp(ythRoot, y)) {
		return nil, false
	}

	g, a, b := new(big.Int), new(big.Int), new(big.Int)
	if g.GCD(a, b, x, y).Cmp(bigOne) != 0 {
		return nil, false
	}

	// With ax + by = 1 and v = xthRoot^x = ythRoot^y:
	//   (xthRoot^b * ythRoot^a)^(xy) = v^(by) * v^(ax) = v
	xb := grp.Exp(xthRoot, b)
	ya := grp.Exp(ythRoot, a)
	if xb == nil || ya == nil {
		return nil, false
	}
	return grp.Op(xb, ya), true
}

// product returns the product of xs, so 1 for an empty slice.
func product(xs []*big.Int) *big.Int {
	r := new(big.Int).Set(bigOne)
	for _, x := range xs {
		r.Mul(r, x)
	}
	return r
}

// rootFactor returns, for each element of primes, the base raised to the
// product of all the other elements. Splitting the work in halves takes
// O(n log n) group exponentiations instead of the quadratic direct approach.
func rootFactor(grp group.Group, base *big.Int, primes []*big.Int) []*big.Int {
	if len(primes) == 0 {
		return nil
	}
	if len(primes) == 1 {
		return []*big.Int{base}
	}
	half := len(primes) / 2
	left := grp.Exp(base, product(primes[half:]))
	right := grp.Exp(base, product(primes[:half]))
	return append(rootFactor(grp, left, primes[:half]), rootFactor(grp, right, primes[half:])...)
}
