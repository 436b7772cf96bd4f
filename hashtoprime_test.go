package accumulator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kobigurk/accumulator/primality"
)

func TestHashToPrime(t *testing.T) {
	p := HashToPrime([]byte("some accumulated element"))
	require.True(t, primality.ProbablyPrime(p))
	require.Equal(t, int(Parameters.AttributeSize), p.BitLen())
	require.Equal(t, uint(1), p.Bit(0))

	// deterministic, and distinct inputs map to distinct primes
	require.Equal(t, 0, p.Cmp(HashToPrime([]byte("some accumulated element"))))
	require.NotEqual(t, 0, p.Cmp(HashToPrime([]byte("another element"))))

	require.True(t, primality.ProbablyPrime(HashToPrime(nil)))
}
