package accumulator

import (
	"github.com/zeebo/blake3"

	"github.com/kobigurk/accumulator/big"
	"github.com/kobigurk/accumulator/primality"
)

// HashToPrime maps data to a probable prime of Parameters.AttributeSize bits.
// Candidates are drawn from a BLAKE3 XOF over the input, with the top bit set
// to pin the size and the low bit set to skip even numbers, until one passes
// the primality test. The mapping is deterministic, so independent parties
// agree on the prime representing a given byte string.
func HashToPrime(data []byte) *big.Int {
	h := blake3.New()
	h.Write(data)
	digest := h.Digest()

	buf := make([]byte, Parameters.AttributeSize/8)
	candidate := new(big.Int)
	for attempt := 1; ; attempt++ {
		digest.Read(buf)
		candidate.SetBytes(buf)
		candidate.SetBit(candidate, int(Parameters.AttributeSize)-1, 1)
		candidate.SetBit(candidate, 0, 1)
		if primality.ProbablyPrime(candidate) {
			return candidate
		}
		if attempt%1024 == 0 {
			Logger.Tracef("no prime after %d candidates", attempt)
		}
	}
}
