// Package db is the ledger-backed key value store behind the kitty platform.
//
// All mutating operations run inside a single badger transaction scope:
// Update commits every write together on a nil return and discards every
// write on error, which is what gives the lifecycle and exchange flows their
// all-or-nothing behaviour.
package db

import (
	"encoding/binary"
	"math"

	"kitty-services/types"

	"github.com/dgraph-io/badger/v3"
	"github.com/ninja-software/terror/v2"
	"github.com/shopspring/decimal"
)

// Key prefixes. Numeric components are big endian so prefix scans iterate in
// id order.
var (
	prefixToken      = []byte("nft:t:")
	prefixOwnerIndex = []byte("nft:o:")
	prefixNextToken  = []byte("nft:n:")
	prefixListing    = []byte("exc:")
	prefixBalance    = []byte("bal:")
	keyNextClass     = []byte("nft:nc")
	keySysClass      = []byte("sys:class")
	keySysNonce      = []byte("sys:nonce")
)

// Opts configures the store.
type Opts struct {
	// DataDir is the badger directory. Ignored when InMemory is set.
	DataDir string
	// InMemory runs the store without touching disk, used by tests and dev.
	InMemory bool
	// ExistentialDeposit is the minimum balance an account must retain for a
	// keep-alive transfer to go through. Defaults to 1.
	ExistentialDeposit decimal.Decimal
}

// Store wraps the badger database plus the bootstrap state the kitty class
// depends on.
type Store struct {
	db                 *badger.DB
	classID            uint64
	existentialDeposit decimal.Decimal
}

// Tx is a single storage transaction scope. Every read and write inside one
// Update call either commits together or not at all.
type Tx struct {
	txn *badger.Txn
}

// Open the store and bootstrap the kitty class on first run.
func Open(opts Opts) (*Store, error) {
	var bOpts badger.Options
	if opts.InMemory {
		bOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		bOpts = badger.DefaultOptions(opts.DataDir)
	}
	bOpts = bOpts.WithLogger(nil)

	bdb, err := badger.Open(bOpts)
	if err != nil {
		return nil, terror.Error(err, "could not open ledger store")
	}

	ed := opts.ExistentialDeposit
	if ed.IsZero() {
		ed = decimal.NewFromInt(1)
	}

	s := &Store{
		db:                 bdb,
		existentialDeposit: ed,
	}

	err = s.Update(func(tx *Tx) error {
		classID, err := s.ensureClass(tx)
		if err != nil {
			return err
		}
		s.classID = classID
		return nil
	})
	if err != nil {
		bdb.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ClassID of the kitty token class created on first open.
func (s *Store) ClassID() uint64 {
	return s.classID
}

// ExistentialDeposit below which a keep-alive transfer refuses to drop the payer.
func (s *Store) ExistentialDeposit() decimal.Decimal {
	return s.existentialDeposit
}

// Update runs fn in a read-write transaction. All writes commit on nil
// return; any error rolls every write back.
func (s *Store) Update(fn func(tx *Tx) error) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return fn(&Tx{txn: txn})
	})
}

// View runs fn in a read-only transaction.
func (s *Store) View(fn func(tx *Tx) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		return fn(&Tx{txn: txn})
	})
}

// ensureClass creates the kitty token class once and returns its id on every
// subsequent open.
func (s *Store) ensureClass(tx *Tx) (uint64, error) {
	raw, found, err := tx.get(keySysClass)
	if err != nil {
		return 0, err
	}
	if found {
		return binary.BigEndian.Uint64(raw), nil
	}

	next, err := tx.getUint64(keyNextClass, 0)
	if err != nil {
		return 0, err
	}
	if next == math.MaxUint64 {
		return 0, terror.Error(types.ErrIDOverflow, "class id counter overflow")
	}
	if err := tx.setUint64(keyNextClass, next+1); err != nil {
		return 0, err
	}
	if err := tx.setUint64(keySysClass, next); err != nil {
		return 0, err
	}
	return next, nil
}

// NextNonce returns a fresh sequence value for dna generation. A rolled back
// call does not consume a nonce, which keeps replays deterministic.
func (s *Store) NextNonce(tx *Tx) (uint64, error) {
	cur, err := tx.getUint64(keySysNonce, 0)
	if err != nil {
		return 0, err
	}
	if cur == math.MaxUint64 {
		return 0, terror.Error(types.ErrIDOverflow, "nonce counter overflow")
	}
	if err := tx.setUint64(keySysNonce, cur+1); err != nil {
		return 0, err
	}
	return cur, nil
}

func (tx *Tx) get(key []byte) ([]byte, bool, error) {
	item, err := tx.txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, terror.Error(err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, terror.Error(err)
	}
	return val, true, nil
}

func (tx *Tx) set(key, val []byte) error {
	err := tx.txn.Set(key, val)
	if err != nil {
		return terror.Error(err)
	}
	return nil
}

func (tx *Tx) delete(key []byte) error {
	err := tx.txn.Delete(key)
	if err != nil {
		return terror.Error(err)
	}
	return nil
}

func (tx *Tx) getUint64(key []byte, fallback uint64) (uint64, error) {
	raw, found, err := tx.get(key)
	if err != nil {
		return 0, err
	}
	if !found {
		return fallback, nil
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (tx *Tx) setUint64(key []byte, v uint64) error {
	return tx.set(key, be64(v))
}

func be64(v uint64) []byte {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, v)
	return raw
}

func beUint64(raw []byte) uint64 {
	return binary.BigEndian.Uint64(raw)
}

func keyToken(classID uint64, id types.KittyID) []byte {
	key := append([]byte{}, prefixToken...)
	key = append(key, be64(classID)...)
	return append(key, be64(uint64(id))...)
}

func keyOwnerIndex(owner types.AccountID, classID uint64, id types.KittyID) []byte {
	key := append([]byte{}, prefixOwnerIndex...)
	key = append(key, owner.Bytes()...)
	key = append(key, be64(classID)...)
	return append(key, be64(uint64(id))...)
}

func keyOwnerPrefix(owner types.AccountID, classID uint64) []byte {
	key := append([]byte{}, prefixOwnerIndex...)
	key = append(key, owner.Bytes()...)
	return append(key, be64(classID)...)
}

func keyNextToken(classID uint64) []byte {
	return append(append([]byte{}, prefixNextToken...), be64(classID)...)
}

func keyListing(id types.KittyID) []byte {
	return append(append([]byte{}, prefixListing...), be64(uint64(id))...)
}

func keyBalance(owner types.AccountID) []byte {
	return append(append([]byte{}, prefixBalance...), owner.Bytes()...)
}
