package accumulator

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/kobigurk/accumulator/big"
	"github.com/kobigurk/accumulator/internal/common"
)

func init() {
	Logger.SetLevel(logrus.FatalLevel)
}

func generateKeys(t *testing.T) (*PrivateKey, *PublicKey) {
	sk, pk, err := GenerateKeys(64)
	require.NoError(t, err)
	return sk, pk
}

func TestNewAccumulator(t *testing.T) {
	sk, pk := generateKeys(t)

	update, err := NewAccumulator(sk)
	require.NoError(t, err)
	_, err = update.Verify(pk)
	require.NoError(t, err)
	require.Equal(t, 0, update.Events[0].E.Cmp(big.NewInt(1)))

	require.Len(t, update.Events, 1)
	initialhash := make([]byte, 32, 32) // construct initial SHA256 multihash
	initialhash = append([]byte{18, 32}, initialhash...)
	require.Equal(t, initialhash, []byte(update.Events[0].ParentHash))
}

func TestAccumulatorAdd(t *testing.T) {
	sk, pk := generateKeys(t)

	update, err := NewAccumulator(sk)
	require.NoError(t, err)
	_, err = update.Verify(pk)
	require.NoError(t, err)
	acc := update.SignedAccumulator.Accumulator
	require.NotNil(t, acc)

	e, err := common.RandomPrimeInRange(rand.Reader, 3, Parameters.AttributeSize)
	require.NoError(t, err)
	parentevent := update.Events[len(update.Events)-1]
	newAcc, event, err := acc.Add(sk, e, parentevent)
	require.NoError(t, err)

	require.Equal(t, parentevent.hash(), event.ParentHash)
	require.Equal(t, parentevent.Index+1, event.Index)
	require.Equal(t, EventAdd, event.Typ)
	require.Equal(t, 0, event.E.Cmp(e))
	require.Equal(t, 0, new(big.Int).Exp(acc.Nu, e, sk.N).Cmp(newAcc.Nu))
}

func TestAccumulatorRemove(t *testing.T) {
	sk, pk := generateKeys(t)

	update, err := NewAccumulator(sk)
	require.NoError(t, err)
	_, err = update.Verify(pk)
	require.NoError(t, err)
	acc := update.SignedAccumulator.Accumulator
	require.NotNil(t, acc)

	e, err := common.RandomPrimeInRange(rand.Reader, 3, Parameters.AttributeSize)
	require.NoError(t, err)
	parentevent := update.Events[len(update.Events)-1]
	newAcc, event, err := acc.Remove(sk, e, parentevent)
	require.NoError(t, err)

	require.Equal(t, parentevent.hash(), event.ParentHash)
	require.Equal(t, parentevent.Index+1, event.Index)
	require.Equal(t, EventDelete, event.Typ)
	require.Equal(t, 0, event.E.Cmp(e))
	require.Equal(t, 0, new(big.Int).Exp(newAcc.Nu, e, sk.N).Cmp(acc.Nu))
}

func remove(t *testing.T, acc *Accumulator, parent *Event, sk *PrivateKey) (*Accumulator, *Event) {
	e, err := common.RandomPrimeInRange(rand.Reader, 3, Parameters.AttributeSize)
	require.NoError(t, err)
	acc, event, err := acc.Remove(sk, e, parent)
	require.NoError(t, err)
	return acc, event
}

func generateUpdate(t *testing.T) (*Update, *PublicKey, *PrivateKey, *Accumulator) {
	sk, pk := generateKeys(t)

	update, err := NewAccumulator(sk)
	require.NoError(t, err)
	_, err = update.Verify(pk)
	require.NoError(t, err)
	acc := update.SignedAccumulator.Accumulator
	require.NotNil(t, acc)

	event := update.Events[0]
	events := update.Events
	for i := 0; i < 3; i++ {
		acc, event = remove(t, acc, event, sk)
		events = append(events, event)
	}

	update, err = NewUpdate(sk, acc, events)
	require.NoError(t, err)
	_, err = update.Verify(pk)
	require.NoError(t, err)

	return update, pk, sk, acc
}

func TestWitnessUpdate(t *testing.T) {
	update, pk, sk, acc := generateUpdate(t)
	witness, err := RandomWitness(sk, acc)
	require.NoError(t, err)
	witness.SignedAccumulator = update.SignedAccumulator // normally attached by the issuer

	// save a copy for below
	firstupdate := *update

	// updating against an update message of the same index does nothing
	i := witness.SignedAccumulator.Accumulator.Index
	require.NoError(t, witness.Update(pk, update))
	require.NoError(t, witness.Verify(pk))
	require.Equal(t, i, witness.SignedAccumulator.Accumulator.Index)

	// updating against an update with one new Event works
	events := update.Events
	acc, event := remove(t, acc, update.Events[len(update.Events)-1], sk)
	events = append(events, event)
	update, err = NewUpdate(sk, acc, events)
	require.NoError(t, err)
	require.NoError(t, witness.Update(pk, update))
	require.NoError(t, witness.Verify(pk))

	// updating against a too new update is an error
	for i := 0; i < 3; i++ {
		acc, event = remove(t, acc, event, sk)
		events = append(events, event)
	}
	update, err = NewUpdate(sk, acc, events)
	require.NoError(t, err)
	update.Events = update.Events[len(update.Events)-2:] // throw away first few events
	require.Error(t, witness.Update(pk, update))

	// updating against old updates does nothing
	firstupdate.SignedAccumulator.Accumulator = nil
	_, err = firstupdate.SignedAccumulator.UnmarshalVerify(pk)
	require.NoError(t, err)
	i = witness.SignedAccumulator.Accumulator.Index
	require.NoError(t, witness.Update(pk, &firstupdate))
	require.NoError(t, witness.Verify(pk))
	require.Equal(t, i, witness.SignedAccumulator.Accumulator.Index)

	// updating against an update with no events of the same index adopts the newer timestamp
	newacc := *witness.SignedAccumulator.Accumulator
	newacc.Time = time.Now().Unix()
	update, err = NewUpdate(sk, &newacc, nil)
	require.NoError(t, err)
	i = witness.SignedAccumulator.Accumulator.Index
	require.NoError(t, witness.Update(pk, update))
	require.Equal(t, i, witness.SignedAccumulator.Accumulator.Index)
	require.Equal(t, newacc.Time, witness.SignedAccumulator.Accumulator.Time)
}

func TestWitnessUpdateMixed(t *testing.T) {
	sk, pk := generateKeys(t)

	update, err := NewAccumulator(sk)
	require.NoError(t, err)
	acc := update.SignedAccumulator.Accumulator

	witness, err := RandomWitness(sk, acc)
	require.NoError(t, err)
	witness.SignedAccumulator = update.SignedAccumulator

	// a batch of additions and deletions in a single update
	first, e1, err := acc.Add(sk, HashToPrime([]byte("first")), update.Events[0])
	require.NoError(t, err)
	second, e2, err := first.Remove(sk, HashToPrime([]byte("gone")), e1)
	require.NoError(t, err)
	third, e3, err := second.Add(sk, HashToPrime([]byte("second")), e2)
	require.NoError(t, err)

	update, err = NewUpdate(sk, third, []*Event{update.Events[0], e1, e2, e3})
	require.NoError(t, err)
	require.NoError(t, witness.Update(pk, update))
	require.NoError(t, witness.Verify(pk))
	require.Equal(t, third.Index, witness.SignedAccumulator.Accumulator.Index)

	// removing the witness's own element invalidates it for good
	gone, e4, err := third.Remove(sk, witness.E, e3)
	require.NoError(t, err)
	update, err = NewUpdate(sk, gone, []*Event{e4})
	require.NoError(t, err)
	require.ErrorIs(t, witness.Update(pk, update), ErrDeleted)
}

func TestAddWithWitnesses(t *testing.T) {
	sk, pk := generateKeys(t)

	update, err := NewAccumulator(sk)
	require.NoError(t, err)
	acc := update.SignedAccumulator.Accumulator

	elems := []*big.Int{
		HashToPrime([]byte("alpha")),
		HashToPrime([]byte("beta")),
		HashToPrime([]byte("gamma")),
	}
	newAcc, events, witnesses, err := acc.AddWithWitnesses(pk, elems, update.Events[0])
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Len(t, witnesses, 3)
	require.Equal(t, acc.Index+3, newAcc.Index)
	require.Equal(t, 0, pk.Group.Exp(acc.Nu, product(elems)).Cmp(newAcc.Nu))

	// the events chain from the parent up to the new state
	update, err = NewUpdate(sk, newAcc, append(update.Events, events...))
	require.NoError(t, err)
	_, err = update.Verify(pk)
	require.NoError(t, err)

	for i, w := range witnesses {
		require.Equal(t, 0, w.E.Cmp(elems[i]))
		w.SignedAccumulator = update.SignedAccumulator
		require.NoError(t, w.Verify(pk))
	}
}

func TestDelete(t *testing.T) {
	sk, pk := generateKeys(t)

	update, err := NewAccumulator(sk)
	require.NoError(t, err)
	acc := update.SignedAccumulator.Accumulator

	elems := []*big.Int{
		HashToPrime([]byte("one")),
		HashToPrime([]byte("two")),
		HashToPrime([]byte("three")),
	}
	newAcc, events, witnesses, err := acc.AddWithWitnesses(pk, elems, update.Events[0])
	require.NoError(t, err)

	// delete two of the three elements using only their witnesses
	finalAcc, delEvents, err := newAcc.Delete(pk, witnesses[:2], events[len(events)-1])
	require.NoError(t, err)
	require.Equal(t, newAcc.Index+2, finalAcc.Index)
	require.Len(t, delEvents, 2)
	require.Equal(t, EventDelete, delEvents[0].Typ)

	// what remains accumulated is exactly the third element
	require.Equal(t, 0, pk.Group.Exp(acc.Nu, elems[2]).Cmp(finalAcc.Nu))

	final, err := NewUpdate(sk, finalAcc, append(append(update.Events, events...), delEvents...))
	require.NoError(t, err)
	_, err = final.Verify(pk)
	require.NoError(t, err)

	// the surviving witness refreshes against the full update
	sacc, err := newAcc.Sign(sk)
	require.NoError(t, err)
	witnesses[2].SignedAccumulator = sacc
	require.NoError(t, witnesses[2].Update(pk, final))
	require.NoError(t, witnesses[2].Verify(pk))

	// a witness for a deleted element cannot refresh
	witnesses[0].SignedAccumulator, err = newAcc.Sign(sk)
	require.NoError(t, err)
	require.ErrorIs(t, witnesses[0].Update(pk, final), ErrDeleted)
}

func TestDeleteRejects(t *testing.T) {
	sk, pk := generateKeys(t)

	update, err := NewAccumulator(sk)
	require.NoError(t, err)
	acc := update.SignedAccumulator.Accumulator

	elems := []*big.Int{HashToPrime([]byte("x")), HashToPrime([]byte("y"))}
	newAcc, events, witnesses, err := acc.AddWithWitnesses(pk, elems, update.Events[0])
	require.NoError(t, err)
	parent := events[len(events)-1]

	// deleting the same element twice is not possible
	_, _, err = newAcc.Delete(pk, []*Witness{witnesses[0], witnesses[0]}, parent)
	require.Error(t, err)

	// witnesses must verify against the accumulator
	bad := &Witness{U: common.RandomQR(sk.N), E: witnesses[1].E}
	_, _, err = newAcc.Delete(pk, []*Witness{bad}, parent)
	require.Error(t, err)
}

func TestNonmembershipWitness(t *testing.T) {
	sk, pk := generateKeys(t)

	update, err := NewAccumulator(sk)
	require.NoError(t, err)
	base := update.SignedAccumulator.Accumulator.Nu

	elems := []*big.Int{HashToPrime([]byte("in")), HashToPrime([]byte("also in"))}
	acc, _, _, err := update.SignedAccumulator.Accumulator.AddWithWitnesses(pk, elems, update.Events[0])
	require.NoError(t, err)

	x := HashToPrime([]byte("not in"))
	w, err := NewNonmembershipWitness(pk.Group, base, x, elems)
	require.NoError(t, err)
	require.True(t, VerifyNonmembership(pk.Group, base, acc.Nu, x, w))

	// B is normalized into [0, x)
	require.True(t, w.B.Sign() >= 0)
	require.True(t, w.B.Cmp(x) < 0)

	// no witness exists for an accumulated element
	_, err = NewNonmembershipWitness(pk.Group, base, elems[0], elems)
	require.Error(t, err)

	// a witness does not transfer to another element
	require.False(t, VerifyNonmembership(pk.Group, base, acc.Nu, HashToPrime([]byte("other")), w))

	// against the empty accumulator the value is the base itself
	w, err = NewNonmembershipWitness(pk.Group, base, x, nil)
	require.NoError(t, err)
	require.True(t, VerifyNonmembership(pk.Group, base, base, x, w))
}

func TestEmpty(t *testing.T) {
	_, pk := generateKeys(t)
	grp := pk.Group

	acc, genesis := Empty(grp)
	require.Equal(t, 0, acc.Nu.Cmp(grp.Generator()))
	require.Equal(t, uint64(0), acc.Index)
	require.Equal(t, genesis.hash(), acc.EventHash)

	// a fully trustless lifecycle: batch add with witnesses, then delete
	// one element again using only its witness
	elems := []*big.Int{HashToPrime([]byte("left")), HashToPrime([]byte("right"))}
	newAcc, events, witnesses, err := acc.AddWithWitnesses(pk, elems, genesis)
	require.NoError(t, err)
	for i, w := range witnesses {
		require.True(t, grp.Equal(grp.Exp(w.U, w.E), newAcc.Nu), "witness %d invalid", i)
	}

	finalAcc, _, err := newAcc.Delete(pk, witnesses[:1], events[len(events)-1])
	require.NoError(t, err)
	require.Equal(t, 0, grp.Exp(acc.Nu, elems[1]).Cmp(finalAcc.Nu))

	// nonmembership against the generator base needs no keys either
	x := HashToPrime([]byte("outsider"))
	nw, err := NewNonmembershipWitness(grp, acc.Nu, x, elems[1:])
	require.NoError(t, err)
	require.True(t, VerifyNonmembership(grp, acc.Nu, finalAcc.Nu, x, nw))
}

func TestWitnessForData(t *testing.T) {
	sk, pk := generateKeys(t)

	update, err := NewAccumulator(sk)
	require.NoError(t, err)
	acc := update.SignedAccumulator.Accumulator

	w, err := WitnessForData(sk, acc, []byte("credential data"))
	require.NoError(t, err)
	w.SignedAccumulator = update.SignedAccumulator
	require.NoError(t, w.Verify(pk))
	require.Equal(t, 0, w.E.Cmp(HashToPrime([]byte("credential data"))))
}

func TestUpdateVerification(t *testing.T) {
	t.Run("PartialEventChain", func(t *testing.T) {
		update, pk, _, _ := generateUpdate(t)
		count := len(update.Events)
		for i := 0; i < count; i++ {
			update.Events = update.Events[1:]
			_, err := update.Verify(pk)
			require.NoError(t, err)
		}
	})

	t.Run("InvalidSignature", func(t *testing.T) {
		update, pk, _, _ := generateUpdate(t)
		_, pk = generateKeys(t) // generate new random key to verify against
		update.SignedAccumulator.Accumulator = nil
		_, err := update.Verify(pk)
		require.Error(t, err)
	})

	t.Run("InvalidEvent", func(t *testing.T) {
		update, pk, _, _ := generateUpdate(t)
		update.Events[len(update.Events)-1].E = big.NewInt(42)
		_, err := update.Verify(pk)
		require.Error(t, err)
	})

	t.Run("InvalidHash", func(t *testing.T) {
		update, pk, _, _ := generateUpdate(t)
		for i := 0; i < len(update.Events); i++ {
			update.Events[i].ParentHash[3] = update.Events[i].ParentHash[3] + 1
			_, err := update.Verify(pk)
			require.Error(t, err)
		}
	})

	t.Run("MissingEvent", func(t *testing.T) {
		update, pk, _, _ := generateUpdate(t)
		update.Events = append(update.Events[:1], update.Events[2:]...) // remove event 1
		_, err := update.Verify(pk)
		require.Error(t, err)
	})

	t.Run("SwappedEvent", func(t *testing.T) {
		update, pk, _, _ := generateUpdate(t)
		event := update.Events[1]
		update.Events[1] = update.Events[2]
		update.Events[2] = event
		_, err := update.Verify(pk)
		require.Error(t, err)
	})
}
