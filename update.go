package accumulator

import (
	"bytes"
	"crypto/sha256"

	"github.com/go-errors/errors"
	"github.com/multiformats/go-multihash"

	"github.com/kobigurk/accumulator/big"
	"github.com/kobigurk/accumulator/cbor"
	"github.com/kobigurk/accumulator/signed"
)

type (
	// EventType distinguishes additions to the accumulator from deletions.
	EventType uint8

	// Event is a single mutation of the accumulator. Events form a hash
	// chain: every event names the hash of its predecessor, and the signed
	// accumulator state pins the hash of the latest event, so a chain of
	// events reaching the signed state cannot be reordered or truncated
	// in the middle.
	Event struct {
		Index      uint64              `json:"i"`
		E          *big.Int            `json:"e"`
		Typ        EventType           `json:"typ"`
		ParentHash multihash.Multihash `json:"parenthash"`
	}

	// SignedAccumulator is a signed serialization of an Accumulator.
	SignedAccumulator struct {
		Data signed.Message `json:"data"`

		// Accumulator caches the verified contents of Data. It is set by
		// UnmarshalVerify and must not be trusted otherwise.
		Accumulator *Accumulator `json:"-"`
	}

	// Update is what an issuer publishes after mutating the accumulator:
	// the new signed state together with (a suffix of) the events leading
	// up to it. Clients use it to refresh their witnesses.
	Update struct {
		SignedAccumulator *SignedAccumulator `json:"sacc"`
		Events            []*Event           `json:"events"`
	}
)

const (
	EventAdd EventType = iota
	EventDelete
)

func (event *Event) hash() multihash.Multihash {
	bts, err := cbor.Marshal(event)
	if err != nil {
		panic("failed to serialize event: " + err.Error())
	}
	digest := sha256.Sum256(bts)
	m, err := multihash.Encode(digest[:], multihash.SHA2_256)
	if err != nil {
		panic("failed to hash event: " + err.Error())
	}
	return m
}

// Sign the accumulator state with the issuer key.
func (acc *Accumulator) Sign(sk *PrivateKey) (*SignedAccumulator, error) {
	msg, err := signed.MarshalSign(sk.ECDSA, acc)
	if err != nil {
		return nil, err
	}
	return &SignedAccumulator{Data: msg, Accumulator: acc}, nil
}

// UnmarshalVerify verifies the signature and returns the accumulator state
// contained in s, caching it in s.Accumulator.
func (s *SignedAccumulator) UnmarshalVerify(pk *PublicKey) (*Accumulator, error) {
	msg := &Accumulator{}
	if err := signed.UnmarshalVerify(pk.ECDSA, s.Data, msg); err != nil {
		return nil, err
	}
	s.Accumulator = msg
	return msg, nil
}

// NewUpdate signs acc and packages it with the events that produced it.
func NewUpdate(sk *PrivateKey, acc *Accumulator, events []*Event) (*Update, error) {
	sacc, err := acc.Sign(sk)
	if err != nil {
		return nil, err
	}
	return &Update{SignedAccumulator: sacc, Events: events}, nil
}

// Verify checks the signature over the accumulator state and the integrity
// of the event chain: consecutive indices, every event naming the hash of
// its predecessor, and the newest event being the one pinned by the signed
// state. The chain may be a suffix of the full history. On success the
// verified accumulator is returned.
func (update *Update) Verify(pk *PublicKey) (*Accumulator, error) {
	acc, err := update.SignedAccumulator.UnmarshalVerify(pk)
	if err != nil {
		return nil, err
	}
	if len(update.Events) == 0 {
		return acc, nil
	}

	last := update.Events[len(update.Events)-1]
	if last.Index != acc.Index || !bytes.Equal(last.hash(), acc.EventHash) {
		return nil, errors.New("update does not match the accumulator state")
	}
	for i := len(update.Events) - 1; i > 0; i-- {
		event, parent := update.Events[i], update.Events[i-1]
		if event.Index != parent.Index+1 || !bytes.Equal(event.ParentHash, parent.hash()) {
			return nil, errors.New("event chain is broken")
		}
	}
	return acc, nil
}
