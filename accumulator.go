package accumulator

import (
	"time"

	"github.com/go-errors/errors"
	"github.com/multiformats/go-multihash"

	"github.com/kobigurk/accumulator/big"
	"github.com/kobigurk/accumulator/group"
	"github.com/kobigurk/accumulator/internal/common"
)

// Accumulator is the public state of the accumulated set: the current value
// Nu, a sequence number, the moment the state was signed, and the hash of
// the event that produced it.
type Accumulator struct {
	Nu        *big.Int            `json:"nu"`
	Index     uint64              `json:"i"`
	Time      int64               `json:"t"`
	EventHash multihash.Multihash `json:"eventhash"`
}

func genesisEvent() *Event {
	// SHA-256 multihash of an all-zero digest marks the start of the chain
	initial := append(multihash.Multihash{18, 32}, make([]byte, 32)...)
	return &Event{
		Index:      0,
		E:          big.NewInt(1),
		Typ:        EventAdd,
		ParentHash: initial,
	}
}

// Empty returns an accumulator over the empty set started at the group
// generator, along with its genesis event. Unlike NewAccumulator this
// requires no keys: anyone can start such an accumulator and everyone can
// recompute it, and no one knows a discrete log relation involving its base.
func Empty(grp group.Group) (*Accumulator, *Event) {
	event := genesisEvent()
	acc := &Accumulator{
		Nu:        grp.Generator(),
		Index:     0,
		Time:      time.Now().Unix(),
		EventHash: event.hash(),
	}
	return acc, event
}

// NewAccumulator creates an accumulator over the empty set, started at a
// random quadratic residue, and returns it as a signed Update containing
// the genesis event.
func NewAccumulator(sk *PrivateKey) (*Update, error) {
	event := genesisEvent()
	acc := &Accumulator{
		Nu:        common.RandomQR(sk.N),
		Index:     0,
		Time:      time.Now().Unix(),
		EventHash: event.hash(),
	}
	return NewUpdate(sk, acc, []*Event{event})
}

// Add returns a new accumulator with the prime e added to it, along with the
// event extending the chain after parent. Existing witnesses remain usable
// once refreshed against the add event.
func (acc *Accumulator) Add(sk *PrivateKey, e *big.Int, parent *Event) (*Accumulator, *Event, error) {
	if e.Sign() <= 0 {
		return nil, nil, errors.New("accumulated elements must be positive")
	}
	newAcc := &Accumulator{
		Nu:    new(big.Int).Exp(acc.Nu, e, sk.N),
		Index: acc.Index + 1,
		Time:  time.Now().Unix(),
	}
	event := &Event{
		Index:      acc.Index + 1,
		E:          e,
		Typ:        EventAdd,
		ParentHash: parent.hash(),
	}
	newAcc.EventHash = event.hash()
	return newAcc, event, nil
}

// Remove returns a new accumulator with the prime e removed from it, along
// with the event extending the chain after parent. The e-th root is taken
// with the trapdoor, by inverting e modulo the group order; the order has
// prime factors P and Q only, so the inverse exists for every valid e.
func (acc *Accumulator) Remove(sk *PrivateKey, e *big.Int, parent *Event) (*Accumulator, *Event, error) {
	eInverse, ok := common.ModInverse(e, sk.order())
	if !ok {
		return nil, nil, errors.New("element has no inverse modulo the group order")
	}
	newAcc := &Accumulator{
		Nu:    new(big.Int).Exp(acc.Nu, eInverse, sk.N),
		Index: acc.Index + 1,
		Time:  time.Now().Unix(),
	}
	event := &Event{
		Index:      acc.Index + 1,
		E:          e,
		Typ:        EventDelete,
		ParentHash: parent.hash(),
	}
	newAcc.EventHash = event.hash()
	return newAcc, event, nil
}

// AddWithWitnesses adds all elems to the accumulator without the trapdoor,
// returning next to the chained events a membership witness for each added
// element against the new state. The witnesses are computed by root
// factoring, so anyone holding only the public key can issue them in
// O(n log n) group exponentiations. Their SignedAccumulator is left for the
// caller to attach once the new state has been signed.
func (acc *Accumulator) AddWithWitnesses(pk *PublicKey, elems []*big.Int, parent *Event) (*Accumulator, []*Event, []*Witness, error) {
	if len(elems) == 0 {
		return nil, nil, nil, errors.New("no elements to add")
	}
	for _, e := range elems {
		if e.Sign() <= 0 {
			return nil, nil, nil, errors.New("accumulated elements must be positive")
		}
	}

	grp := pk.Group
	newAcc := &Accumulator{
		Nu:    grp.Exp(acc.Nu, product(elems)),
		Index: acc.Index + uint64(len(elems)),
		Time:  time.Now().Unix(),
	}

	events := make([]*Event, len(elems))
	parentHash := parent.hash()
	for i, e := range elems {
		events[i] = &Event{
			Index:      acc.Index + 1 + uint64(i),
			E:          e,
			Typ:        EventAdd,
			ParentHash: parentHash,
		}
		parentHash = events[i].hash()
	}
	newAcc.EventHash = parentHash

	// The root of the new value by elems[i] is the old value raised to all
	// the other elements.
	roots := rootFactor(grp, acc.Nu, elems)
	witnesses := make([]*Witness, len(elems))
	for i, root := range roots {
		witnesses[i] = &Witness{U: root, E: elems[i]}
	}
	return newAcc, events, witnesses, nil
}

// Delete removes elements from the accumulator using only their membership
// witnesses, no trapdoor: folding the witnesses together with ShamirTrick
// yields the root of the current value by the product of the deleted primes,
// which is the new accumulator value. The deleted primes must be distinct;
// witnesses that do not verify against acc are rejected.
func (acc *Accumulator) Delete(pk *PublicKey, witnesses []*Witness, parent *Event) (*Accumulator, []*Event, error) {
	if len(witnesses) == 0 {
		return nil, nil, errors.New("no elements to delete")
	}

	grp := pk.Group
	root := new(big.Int).Set(acc.Nu)
	prod := big.NewInt(1)
	for _, w := range witnesses {
		if !verifyWitness(grp, w.U, w.E, acc.Nu) {
			return nil, nil, errors.New("witness does not verify against the accumulator")
		}
		// root^prod = Nu = w.U^w.E, so the trick yields a (prod * w.E)-th root
		r, ok := ShamirTrick(grp, root, w.U, prod, w.E)
		if !ok {
			return nil, nil, errors.New("deleted elements must be coprime")
		}
		root = r
		prod.Mul(prod, w.E)
	}

	newAcc := &Accumulator{
		Nu:    root,
		Index: acc.Index + uint64(len(witnesses)),
		Time:  time.Now().Unix(),
	}
	events := make([]*Event, len(witnesses))
	parentHash := parent.hash()
	for i, w := range witnesses {
		events[i] = &Event{
			Index:      acc.Index + 1 + uint64(i),
			E:          w.E,
			Typ:        EventDelete,
			ParentHash: parentHash,
		}
		parentHash = events[i].hash()
	}
	newAcc.EventHash = parentHash
	return newAcc, events, nil
}
