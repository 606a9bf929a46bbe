package db

import (
	"encoding/json"
	"math"

	"kitty-services/types"

	"github.com/dgraph-io/badger/v3"
	"github.com/ninja-software/terror/v2"
)

// tokenRecord is the stored form of a minted kitty. The dna payload is
// immutable; only the owner ever changes.
type tokenRecord struct {
	Owner types.AccountID `json:"owner"`
	DNA   types.DNA       `json:"dna"`
}

// MintKitty assigns the next token id to a new kitty record for owner. It
// fails closed with ErrIDOverflow when the id counter has saturated; the
// counter is never wrapped and never advanced on failure.
func (s *Store) MintKitty(tx *Tx, owner types.AccountID, dna types.DNA) (types.KittyID, error) {
	next, err := tx.getUint64(keyNextToken(s.classID), 0)
	if err != nil {
		return 0, err
	}
	if next == math.MaxUint64 {
		return 0, terror.Error(types.ErrIDOverflow, "no kitty ids left")
	}

	id := types.KittyID(next)
	record := &tokenRecord{Owner: owner, DNA: dna}
	raw, err := json.Marshal(record)
	if err != nil {
		return 0, terror.Error(err)
	}

	if err := tx.set(keyToken(s.classID, id), raw); err != nil {
		return 0, err
	}
	if err := tx.set(keyOwnerIndex(owner, s.classID, id), []byte{}); err != nil {
		return 0, err
	}
	if err := tx.setUint64(keyNextToken(s.classID), next+1); err != nil {
		return 0, err
	}

	return id, nil
}

// Kitty loads a kitty regardless of owner. Returns ErrKittyNotFound when the
// id was never minted.
func (s *Store) Kitty(tx *Tx, id types.KittyID) (*types.Kitty, error) {
	raw, found, err := tx.get(keyToken(s.classID, id))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, terror.Error(types.ErrKittyNotFound, "kitty not found")
	}

	record := &tokenRecord{}
	if err := json.Unmarshal(raw, record); err != nil {
		return nil, terror.Error(err)
	}

	return &types.Kitty{ID: id, DNA: record.DNA, Owner: record.Owner}, nil
}

// KittyOfOwner loads a kitty filtered by owner. A kitty held by somebody
// else is indistinguishable from a missing one: both are ErrKittyNotFound.
func (s *Store) KittyOfOwner(tx *Tx, owner types.AccountID, id types.KittyID) (*types.Kitty, error) {
	kitty, err := s.Kitty(tx, id)
	if err != nil {
		return nil, err
	}
	if kitty.Owner != owner {
		return nil, terror.Error(types.ErrKittyNotFound, "kitty not found")
	}
	return kitty, nil
}

// OwnerHolds reports whether the owner index contains (owner, id).
func (s *Store) OwnerHolds(tx *Tx, owner types.AccountID, id types.KittyID) (bool, error) {
	_, found, err := tx.get(keyOwnerIndex(owner, s.classID, id))
	if err != nil {
		return false, err
	}
	return found, nil
}

// TransferKitty moves ownership from one account to another. It enforces
// that from is the current owner; a self transfer is validated but writes
// nothing.
func (s *Store) TransferKitty(tx *Tx, from, to types.AccountID, id types.KittyID) error {
	kitty, err := s.KittyOfOwner(tx, from, id)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}

	record := &tokenRecord{Owner: to, DNA: kitty.DNA}
	raw, err := json.Marshal(record)
	if err != nil {
		return terror.Error(err)
	}

	if err := tx.set(keyToken(s.classID, id), raw); err != nil {
		return err
	}
	if err := tx.delete(keyOwnerIndex(from, s.classID, id)); err != nil {
		return err
	}
	if err := tx.set(keyOwnerIndex(to, s.classID, id), []byte{}); err != nil {
		return err
	}

	return nil
}

// KittiesByOwner scans the owner index and loads each held kitty.
func (s *Store) KittiesByOwner(tx *Tx, owner types.AccountID) ([]*types.Kitty, error) {
	prefix := keyOwnerPrefix(owner, s.classID)

	iterOpts := badger.DefaultIteratorOptions
	iterOpts.PrefetchValues = false
	iterOpts.Prefix = prefix

	result := []*types.Kitty{}

	it := tx.txn.NewIterator(iterOpts)
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		key := it.Item().Key()
		idRaw := key[len(prefix):]
		if len(idRaw) != 8 {
			continue
		}
		id := types.KittyID(beUint64(idRaw))

		kitty, err := s.Kitty(tx, id)
		if err != nil {
			return nil, err
		}
		result = append(result, kitty)
	}

	return result, nil
}

// NextKittyID reads the mint counter without advancing it.
func (s *Store) NextKittyID(tx *Tx) (uint64, error) {
	return tx.getUint64(keyNextToken(s.classID), 0)
}

// SetNextKittyID overrides the mint counter. Seeding and test use only.
func (s *Store) SetNextKittyID(tx *Tx, next uint64) error {
	return tx.setUint64(keyNextToken(s.classID), next)
}
