package accumulator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kobigurk/accumulator/big"
)

func TestGenerateKeys(t *testing.T) {
	sk, pk, err := GenerateKeys(64)
	require.NoError(t, err)
	require.NoError(t, sk.Validate())

	require.Equal(t, 0, pk.Group.Modulus().Cmp(sk.N))
	require.Equal(t, &sk.ECDSA.PublicKey, pk.ECDSA)

	// the order of the quadratic residues is hidden in the private key:
	// roots of residues taken with it invert exponentiation
	x := pk.Group.RandomElement()
	e := big.NewInt(101)
	eInverse := new(big.Int).ModInverse(e, sk.order())
	require.NotNil(t, eInverse)
	root := pk.Group.Exp(x, eInverse)
	require.True(t, pk.Group.Equal(pk.Group.Exp(root, e), x))
}

func TestValidateRejectsWrongKeys(t *testing.T) {
	sk, _, err := GenerateKeys(64)
	require.NoError(t, err)

	bad := &PrivateKey{P: sk.P, Q: sk.Q, N: new(big.Int).Add(sk.N, bigOne)}
	require.Error(t, bad.Validate())

	bad = &PrivateKey{P: new(big.Int).Add(sk.P, bigOne), Q: sk.Q, N: sk.N}
	require.Error(t, bad.Validate())
}
