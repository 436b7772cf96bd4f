package common

import (
	"crypto/rand"
	"testing"

	"github.com/kobigurk/accumulator/primality"
)

func TestRandomPrimeInRange(t *testing.T) {
	p, err := RandomPrimeInRange(rand.Reader, 597, 120)
	if err != nil {
		t.Error(err)
	}
	t.Log(p)
	if !primality.ProbablyPrime(p) {
		t.Error("p not prime!")
	}
	if bits := p.BitLen(); bits < 597 {
		t.Errorf("p has %d bits, expected at least 597", bits)
	}
}
