package accumulator

import (
	"crypto/rand"

	"github.com/go-errors/errors"

	"github.com/kobigurk/accumulator/big"
	"github.com/kobigurk/accumulator/group"
	"github.com/kobigurk/accumulator/internal/common"
)

// ErrDeleted is returned by Witness.Update when the witness's own element was
// deleted from the accumulator, so that no valid witness for it can exist.
var ErrDeleted = errors.New("element was deleted from the accumulator")

// Witness testifies that the prime E is contained in an accumulator: U
// raised to E yields the accumulator value. SignedAccumulator holds the
// state against which the witness is currently valid; Update refreshes both.
type Witness struct {
	U *big.Int `json:"u"`
	E *big.Int `json:"e"`

	SignedAccumulator *SignedAccumulator `json:"sacc"`
}

func verifyWitness(grp group.Group, u, e, nu *big.Int) bool {
	return grp.Equal(grp.Exp(u, e), nu)
}

// newWitness computes a witness for e against acc with the trapdoor, as the
// e-th root of the accumulator value.
func newWitness(sk *PrivateKey, acc *Accumulator, e *big.Int) (*Witness, error) {
	eInverse, ok := common.ModInverse(e, sk.order())
	if !ok {
		return nil, errors.New("element has no inverse modulo the group order")
	}
	u := new(big.Int).Exp(acc.Nu, eInverse, sk.N)
	return &Witness{U: u, E: e}, nil
}

// RandomWitness returns a witness against acc for a fresh random prime of
// Parameters.AttributeSize bits.
func RandomWitness(sk *PrivateKey, acc *Accumulator) (*Witness, error) {
	e, err := common.RandomPrimeInRange(rand.Reader, Parameters.AttributeSize-1, Parameters.AttributeSize-1)
	if err != nil {
		return nil, err
	}
	return newWitness(sk, acc, e)
}

// WitnessForData returns a witness against acc for the prime deterministically
// derived from data by HashToPrime.
func WitnessForData(sk *PrivateKey, acc *Accumulator, data []byte) (*Witness, error) {
	return newWitness(sk, acc, HashToPrime(data))
}

// Verify the witness against the accumulator state it carries.
func (w *Witness) Verify(pk *PublicKey) error {
	acc, err := w.SignedAccumulator.UnmarshalVerify(pk)
	if err != nil {
		return err
	}
	if !verifyWitness(pk.Group, w.U, w.E, acc.Nu) {
		return errors.New("invalid witness")
	}
	return nil
}

// Update refreshes the witness to the accumulator state contained in update,
// by applying the events between the witness's state and the new one:
// additions raise U to the added primes, deletions are handled with a Bezout
// identity between the witness element and the deleted primes. Updates that
// are not newer than the witness are no-ops; events starting past the
// witness's index cannot be applied and are an error, as is an update whose
// deletions include the witness element itself (ErrDeleted).
func (w *Witness) Update(pk *PublicKey, update *Update) error {
	newAcc, err := update.Verify(pk)
	if err != nil {
		return err
	}
	if w.SignedAccumulator.Accumulator == nil {
		if _, err = w.SignedAccumulator.UnmarshalVerify(pk); err != nil {
			return err
		}
	}
	acc := w.SignedAccumulator.Accumulator

	if newAcc.Index <= acc.Index {
		// nothing to apply; adopt a newer signature over the same state
		if newAcc.Index == acc.Index && len(update.Events) == 0 && newAcc.Time > acc.Time {
			w.SignedAccumulator = update.SignedAccumulator
		}
		return nil
	}
	if len(update.Events) == 0 || update.Events[0].Index > acc.Index+1 {
		return errors.New("update does not reach the witness state")
	}

	var added, deleted []*big.Int
	for _, event := range update.Events {
		if event.Index <= acc.Index {
			continue
		}
		if event.Typ == EventDelete && event.E.Cmp(w.E) == 0 {
			return ErrDeleted
		}
		if event.Typ == EventAdd {
			added = append(added, event.E)
		} else {
			deleted = append(deleted, event.E)
		}
	}

	Logger.Tracef("updating witness from accumulator %d to %d", acc.Index, newAcc.Index)

	grp := pk.Group
	u := grp.Exp(w.U, product(added))
	if len(deleted) > 0 {
		// With a*E + b*d = 1 for d the product of the deleted primes, and
		// t the updated-for-additions U, the value t^b * Nu'^a is an E-th
		// root of the new accumulator value.
		d := product(deleted)
		g, a, b := new(big.Int), new(big.Int), new(big.Int)
		if g.GCD(a, b, w.E, d).Cmp(bigOne) != 0 {
			return ErrDeleted
		}
		tb := grp.Exp(u, b)
		na := grp.Exp(newAcc.Nu, a)
		if tb == nil || na == nil {
			return errors.New("failed to update witness")
		}
		u = grp.Op(tb, na)
	}

	if !verifyWitness(grp, u, w.E, newAcc.Nu) {
		return errors.New("updated witness invalid against new accumulator")
	}

	// adopt the new state only now that all checks have passed
	w.U = u
	w.SignedAccumulator = update.SignedAccumulator
	return nil
}

// NonmembershipWitness testifies that a prime is not contained in an
// accumulator: D raised to the prime, times the accumulator value raised to
// B, yields the group generator. Such D and B exist exactly when the prime
// is coprime to the accumulated product.
type NonmembershipWitness struct {
	D *big.Int `json:"d"`
	B *big.Int `json:"b"`
}

// NewNonmembershipWitness proves that x is not among the accumulated primes.
// It needs the full list of accumulated primes, but not the trapdoor: a
// Bezout identity a*x + b*s = 1 with s the accumulated product gives
// D = base^a and B = b, after normalizing b into [0, x) to keep the witness
// small. An error is returned when x is accumulated.
func NewNonmembershipWitness(grp group.Group, base, x *big.Int, accumulated []*big.Int) (*NonmembershipWitness, error) {
	s := product(accumulated)
	g, a, b := new(big.Int), new(big.Int), new(big.Int)
	if g.GCD(a, b, x, s).Cmp(bigOne) != 0 {
		return nil, errors.New("element is accumulated")
	}

	// b = B + k*x shifts to a' = a + k*s, keeping a'*x + B*s = 1
	bNorm := new(big.Int).Mod(b, x)
	k := new(big.Int).Sub(b, bNorm)
	k.Div(k, x)
	aNorm := new(big.Int).Mul(k, s)
	aNorm.Add(aNorm, a)

	d := grp.Exp(base, aNorm)
	if d == nil {
		return nil, errors.New("failed to compute nonmembership witness")
	}
	return &NonmembershipWitness{D: d, B: bNorm}, nil
}

// VerifyNonmembership checks a nonmembership witness for x against the
// accumulator value and the base it was accumulated from.
func VerifyNonmembership(grp group.Group, base, value, x *big.Int, w *NonmembershipWitness) bool {
	dx := grp.Exp(w.D, x)
	vb := grp.Exp(value, w.B)
	if dx == nil || vb == nil {
		return false
	}
	return grp.Equal(grp.Op(dx, vb), base)
}
