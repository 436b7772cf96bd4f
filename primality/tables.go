package primality

// smallPrimes contains the fifty smallest primes, used for trial division.
// Candidates at most maxSmallPrime are classified by table membership alone.
var smallPrimes = [50]int64{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29,
	31, 37, 41, 43, 47, 53, 59, 61, 67, 71,
	73, 79, 83, 89, 97, 101, 103, 107, 109, 113,
	127, 131, 137, 139, 149, 151, 157, 163, 167, 173,
	179, 181, 191, 193, 197, 199, 211, 223, 227, 229,
}

const maxSmallPrime = 229

// badSquareResidue[i] is true iff i mod 255 is not a square residue modulo
// 255 = 3*5*17. Entry i of the table is consulted after folding a candidate
// down to its residue; squares always land on a false entry.
var badSquareResidue = [256]bool{
	false, false, true, true, false, true, true, true, true, false, true, true, true, true, true, false,
	false, true, true, false, true, false, true, true, true, false, true, true, true, true, false, true,
	true, true, false, true, false, true, true, true, true, true, true, true, true, true, true, true,
	true, false, true, false, true, true, true, false, true, true, true, true, false, true, true, true,
	false, true, false, true, true, false, false, true, true, true, true, true, false, true, true, true,
	true, false, true, true, false, false, true, true, true, true, true, true, true, true, false, true,
	true, true, true, true, false, true, true, true, true, true, false, true, true, true, true, false,
	true, true, true, false, true, true, true, true, false, false, true, true, true, true, true, true,
	true, true, true, true, true, true, true, false, false, true, true, true, true, true, true, true,
	false, false, true, true, true, true, true, false, true, true, false, true, true, true, true, true,
	true, true, true, true, true, true, false, true, true, false, true, false, true, true, false, true,
	true, true, true, true, true, true, true, true, true, true, false, true, true, false, true, true,
	true, true, true, false, false, true, true, true, true, true, true, true, false, false, true, true,
	true, true, true, true, true, true, true, true, true, true, true, false, false, true, true, true,
	true, false, true, true, true, false, true, true, true, true, false, true, true, true, true, true,
	false, true, true, true, true, true, false, true, true, true, true, true, true, true, true, false,
}
