package accumulator

import (
	"time"

	"github.com/go-errors/errors"
	"github.com/timshannon/bolthold"
	bolt "go.etcd.io/bbolt"

	"github.com/kobigurk/accumulator/big"
)

type (
	// Keystore provides support for accumulator public key rollover.
	Keystore interface {
		// PublicKey either returns the specified, non-nil public key or an error
		PublicKey(counter uint) (*PublicKey, error)
	}

	// DB is a bolthold database storing the state of a particular accumulator
	// (Record instances, and ElementRecord instances if used by an issuer).
	DB struct {
		Current  Accumulator
		parent   *Event // newest event, parent of the next mutation
		bolt     *bolthold.Store
		keystore Keystore
	}

	// Record contains a signed Update and associated information.
	Record struct {
		StartIndex     uint64
		EndIndex       uint64
		PublicKeyIndex uint
		Update         *Update
	}

	// ElementRecord contains information generated when an element is
	// accumulated, needed for its later removal and for nonmembership
	// witnesses.
	ElementRecord struct {
		Key       string
		E         *big.Int
		Added     int64
		DeletedAt int64 // 0 while the element is accumulated
	}

	currentRecord struct {
		Index uint64
	}
)

func LoadDB(path string, keystore Keystore) (*DB, error) {
	b, err := bolthold.Open(path, 0600, &bolthold.Options{Options: &bolt.Options{Timeout: 1 * time.Second}})
	if err != nil {
		return nil, err
	}
	return &DB{
		bolt:     b,
		keystore: keystore,
	}, nil
}

// Enable initializes the database with a fresh empty accumulator.
func (rdb *DB) Enable(sk *PrivateKey) error {
	update, err := NewAccumulator(sk)
	if err != nil {
		return err
	}
	return rdb.Add(update, sk.Counter)
}

// Accumulate adds the prime derived from data to the accumulator under the
// given key, stores an element record and a signed update, and returns a
// membership witness for the new element. The key must not be in use.
func (rdb *DB) Accumulate(sk *PrivateKey, key string, data []byte) (*Witness, error) {
	e := HashToPrime(data)
	var w *Witness
	err := rdb.bolt.Bolt().Update(func(tx *bolt.Tx) error {
		var err error
		if err = rdb.bolt.TxInsert(tx, []byte(key), &ElementRecord{
			Key:   key,
			E:     e,
			Added: time.Now().UnixNano(),
		}); err != nil {
			return err
		}
		update, err := rdb.addElement(sk, e, tx)
		if err != nil {
			return err
		}
		if w, err = newWitness(sk, update.SignedAccumulator.Accumulator, e); err != nil {
			return err
		}
		w.SignedAccumulator = update.SignedAccumulator
		return nil
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Remove removes the element stored under key from the accumulator, by
// updating its deletion time to now, taking its prime out of the current
// accumulator, and storing the signed update.
func (rdb *DB) Remove(sk *PrivateKey, key string) error {
	return rdb.bolt.Bolt().Update(func(tx *bolt.Tx) error {
		var err error
		er := ElementRecord{}
		if err = rdb.bolt.TxGet(tx, []byte(key), &er); err != nil {
			return err
		}
		if er.DeletedAt != 0 {
			return errors.New("element is not accumulated")
		}
		er.DeletedAt = time.Now().UnixNano()
		if err = rdb.bolt.TxUpdate(tx, []byte(key), &er); err != nil {
			return err
		}
		return rdb.removeElement(sk, er.E, tx)
	})
}

// UpdateRecords returns all records that a client requires to update its
// state if it is currently at the specified index, that is, all records
// whose end index is greater than or equal to the specified index.
func (rdb *DB) UpdateRecords(index int) ([]Record, error) {
	var err error
	var records []Record
	if err = rdb.bolt.Find(&records, bolthold.Where(bolthold.Key).Ge(uint64(index))); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("not found")
	}
	return records, nil
}

func (rdb *DB) LatestRecords(count int) ([]Record, error) {
	c := int(rdb.Current.Index) - count + 1
	if c < 0 {
		c = 0
	}
	return rdb.UpdateRecords(c)
}

func (rdb *DB) KeyExists(key string) (bool, error) {
	_, err := rdb.ElementRecord(key)
	switch err {
	case nil:
		return true, nil
	case bolthold.ErrNotFound:
		return false, nil
	default:
		return false, err
	}
}

func (rdb *DB) ElementRecord(key string) (*ElementRecord, error) {
	r := &ElementRecord{}
	if err := rdb.bolt.Get([]byte(key), r); err != nil {
		return nil, err
	}
	return r, nil
}

// Accumulated returns the primes of all elements currently accumulated.
func (rdb *DB) Accumulated() ([]*big.Int, error) {
	var records []ElementRecord
	if err := rdb.bolt.Find(&records, bolthold.Where("DeletedAt").Eq(int64(0))); err != nil {
		return nil, err
	}
	primes := make([]*big.Int, len(records))
	for i := range records {
		primes[i] = records[i].E
	}
	return primes, nil
}

// NonmembershipWitness proves that x is not accumulated, against the current
// accumulator value. No trapdoor is involved; the witness follows from the
// stored element records and the genesis accumulator value.
func (rdb *DB) NonmembershipWitness(x *big.Int) (*NonmembershipWitness, error) {
	var genesis Record
	if err := rdb.bolt.Get(uint64(0), &genesis); err != nil {
		return nil, err
	}
	pk, err := rdb.keystore.PublicKey(genesis.PublicKeyIndex)
	if err != nil {
		return nil, err
	}
	base, err := genesis.UnmarshalVerify(rdb.keystore)
	if err != nil {
		return nil, err
	}
	primes, err := rdb.Accumulated()
	if err != nil {
		return nil, err
	}
	return NewNonmembershipWitness(pk.Group, base.Nu, x, primes)
}

// Add verifies the given update against the key from the keystore denoted by
// counter, and stores it.
func (rdb *DB) Add(update *Update, counter uint) error {
	pk, err := rdb.keystore.PublicKey(counter)
	if err != nil {
		return err
	}
	if _, err = update.Verify(pk); err != nil {
		return err
	}

	return rdb.bolt.Bolt().Update(func(tx *bolt.Tx) error {
		return rdb.add(update, counter, tx)
	})
}

const boltCurrentIndexKey = "currentIndex"

func (rdb *DB) add(update *Update, pkCounter uint, tx *bolt.Tx) error {
	var err error
	acc := update.SignedAccumulator.Accumulator
	if err = rdb.bolt.TxInsert(tx, acc.Index, &Record{
		StartIndex:     update.Events[0].Index,
		EndIndex:       acc.Index,
		PublicKeyIndex: pkCounter,
		Update:         update,
	}); err != nil {
		return err
	}
	if err = rdb.bolt.TxUpsert(tx, boltCurrentIndexKey, &currentRecord{acc.Index}); err != nil {
		return err
	}

	rdb.Current = *acc
	rdb.parent = update.Events[len(update.Events)-1]
	return nil
}

func (rdb *DB) Enabled() bool {
	var currentIndex currentRecord
	err := rdb.bolt.Get(boltCurrentIndexKey, &currentIndex)
	return err == nil
}

func (rdb *DB) LoadCurrent() error {
	var currentIndex currentRecord
	if err := rdb.bolt.Get(boltCurrentIndexKey, &currentIndex); err == bolthold.ErrNotFound {
		return errors.New("accumulator database not initialized")
	} else if err != nil {
		return err
	}

	var record Record
	if err := rdb.bolt.Get(currentIndex.Index, &record); err != nil {
		return err
	}
	acc, err := record.UnmarshalVerify(rdb.keystore)
	if err != nil {
		return err
	}
	rdb.Current = *acc
	rdb.parent = record.Update.Events[len(record.Update.Events)-1]
	Logger.Tracef("loaded accumulator state %d", rdb.Current.Index)
	return nil
}

func (rdb *DB) addElement(sk *PrivateKey, e *big.Int, tx *bolt.Tx) (*Update, error) {
	// don't update rdb.Current until after all possible errors are handled
	newAcc, event, err := rdb.Current.Add(sk, e, rdb.parent)
	if err != nil {
		return nil, err
	}
	update, err := NewUpdate(sk, newAcc, []*Event{event})
	if err != nil {
		return nil, err
	}
	if err = rdb.add(update, sk.Counter, tx); err != nil {
		return nil, err
	}
	return update, nil
}

func (rdb *DB) removeElement(sk *PrivateKey, e *big.Int, tx *bolt.Tx) error {
	newAcc, event, err := rdb.Current.Remove(sk, e, rdb.parent)
	if err != nil {
		return err
	}
	update, err := NewUpdate(sk, newAcc, []*Event{event})
	if err != nil {
		return err
	}
	return rdb.add(update, sk.Counter, tx)
}

func (rdb *DB) Close() error {
	if rdb.bolt != nil {
		return rdb.bolt.Close()
	}
	return nil
}

func (r *Record) UnmarshalVerify(keystore Keystore) (*Accumulator, error) {
	pk, err := keystore.PublicKey(r.PublicKeyIndex)
	if err != nil {
		return nil, err
	}
	return r.Update.Verify(pk)
}
