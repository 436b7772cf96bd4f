// Package group provides multiplicative groups of unknown order. Computing
// roots in such a group is infeasible without trapdoor knowledge, which is
// what makes accumulator witnesses unforgeable.
package group

import (
	"github.com/kobigurk/accumulator/big"
)

// Group is a multiplicative group whose order is hidden from (most)
// participants. Elements are represented by *big.Int values owned by the
// caller; implementations never retain their arguments.
type Group interface {
	// Op applies the group operation to x and y.
	Op(x, y *big.Int) *big.Int
	// Exp raises x to e. A negative exponent exponentiates the inverse of
	// x; nil is returned when that inverse does not exist.
	Exp(x, e *big.Int) *big.Int
	// Identity returns the neutral element.
	Identity() *big.Int
	// Generator returns the distinguished element of presumed unknown
	// order that accumulators are built on.
	Generator() *big.Int
	// Equal reports whether x and y denote the same element.
	Equal(x, y *big.Int) bool
	// RandomElement draws a random element suitable as a fresh
	// accumulator base.
	RandomElement() *big.Int
}
