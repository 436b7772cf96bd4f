package group

import (
	"github.com/bwesterb/go-exptable"
	"github.com/go-errors/errors"

	"github.com/kobigurk/accumulator/big"
	"github.com/kobigurk/accumulator/internal/common"
)

// RSA is the multiplicative group modulo n = p*q. Its order phi(n) is known
// only to whoever generated the modulus; everyone else can verify witnesses
// but not forge them.
type RSA struct {
	n *big.Int
	g *big.Int

	gTable exptable.Table
}

// NewRSA returns the group modulo n with 2 as the distinguished generator,
// precomputing an exponentiation table for it. The modulus must be odd and
// larger than the generator.
func NewRSA(n *big.Int) (*RSA, error) {
	if n.Bit(0) != 1 || n.Cmp(big.NewInt(2)) <= 0 {
		return nil, errors.New("modulus must be odd and larger than 2")
	}
	grp := &RSA{n: new(big.Int).Set(n), g: big.NewInt(2)}
	grp.gTable.Compute(grp.g.Go(), grp.n.Go(), 7)
	return grp, nil
}

// Modulus returns a copy of the group modulus.
func (grp *RSA) Modulus() *big.Int {
	return new(big.Int).Set(grp.n)
}

func (grp *RSA) Op(x, y *big.Int) *big.Int {
	r := new(big.Int).Mul(x, y)
	return r.Mod(r, grp.n)
}

// Exp returns x^e. Powers of the fixed generator hit the precomputed table
// as long as the exponent is nonnegative and below the modulus.
func (grp *RSA) Exp(x, e *big.Int) *big.Int {
	if e.Sign() < 0 {
		r, err := common.ModPow(x, e, grp.n)
		if err != nil {
			return nil
		}
		return r
	}
	if x.Cmp(grp.g) == 0 && e.Cmp(grp.n) < 0 {
		r := new(big.Int)
		grp.gTable.Exp(r.Go(), e.Go())
		return r
	}
	return new(big.Int).Exp(x, e, grp.n)
}

func (grp *RSA) Identity() *big.Int {
	return big.NewInt(1)
}

func (grp *RSA) Generator() *big.Int {
	return new(big.Int).Set(grp.g)
}

func (grp *RSA) Equal(x, y *big.Int) bool {
	var xr, yr big.Int
	return xr.Mod(x, grp.n).Cmp(yr.Mod(y, grp.n)) == 0
}

// RandomElement draws a random quadratic residue modulo n. Squaring makes
// the result oblivious to the drawn root, so elements chosen this way carry
// no hidden structure their creator could exploit.
func (grp *RSA) RandomElement() *big.Int {
	return common.RandomQR(grp.n)
}
