package primality

import (
	"github.com/kobigurk/accumulator/big"
)

var (
	mask8  = big.NewInt(0xff)
	mask16 = big.NewInt(0xffff)
	mask32 = big.NewInt(0xffffffff)
)

// looksLikeSquare reports whether n >= 0 is a perfect square. A cascade of
// cheap residue filters rejects most non-squares without computing a root:
// first the residues modulo 16, then the residue modulo 255 = 3*5*17
// obtained by folding the candidate byte-wise, then the odd part modulo 8.
// Whatever survives is confirmed with an exact integer square root.
func looksLikeSquare(n *big.Int) bool {
	var low big.Int
	// Squares are 0, 1, 4 or 9 modulo 16.
	if low.And(n, bigTWO).Sign() != 0 ||
		low.And(n, bigSEVEN).Cmp(bigFIVE) == 0 ||
		low.And(n, bigELEVEN).Cmp(bigEIGHT) == 0 {
		return false
	}
	if n.Sign() == 0 {
		return true
	}

	// Fold down to y = n (mod 255). 255 divides 2^32-1, so adding the upper
	// half of the candidate onto its lower 32 bits preserves the residue,
	// and similarly for the 16- and 8-bit folds below.
	y := new(big.Int).Set(n)
	var hi big.Int
	for y.BitLen() > 32 {
		hi.Rsh(y, 32)
		y.And(y, mask32).Add(y, &hi)
	}
	yv := y.Uint64()
	yv = (yv & 0xffff) + (yv >> 16)
	yv = (yv & 0xff) + ((yv >> 8) & 0xff) + (yv >> 16)
	if badSquareResidue[yv%255] {
		return false
	}

	// Strip factors of four; the odd part of a square is 1 modulo 8. An odd
	// number of trailing zero bits survives the stripping and fails there.
	x := new(big.Int).Set(n)
	for x.BitLen() > 32 && low.And(x, mask32).Sign() == 0 {
		x.Rsh(x, 32)
	}
	if low.And(x, mask16).Sign() == 0 {
		x.Rsh(x, 16)
	}
	if low.And(x, mask8).Sign() == 0 {
		x.Rsh(x, 8)
	}
	if low.And(x, bigFIFTEEN).Sign() == 0 {
		x.Rsh(x, 4)
	}
	if low.And(x, bigTHREE).Sign() == 0 {
		x.Rsh(x, 2)
	}
	if low.And(x, bigSEVEN).Cmp(bigONE) != 0 {
		return false
	}

	// The filters above never reject a true square but do pass the odd
	// non-square 145, among others, so the survivors are confirmed exactly.
	s := new(big.Int).Sqrt(n)
	return s.Mul(s, s).Cmp(n) == 0
}
