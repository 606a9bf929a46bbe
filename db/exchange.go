package db

import (
	"encoding/json"

	"kitty-services/types"

	"github.com/dgraph-io/badger/v3"
	"github.com/ninja-software/terror/v2"
)

// ListingEntry pairs a listing with the kitty it offers.
type ListingEntry struct {
	KittyID types.KittyID `json:"kitty_id"`
	Listing types.Listing `json:"listing"`
}

// Listing returns the active listing for a kitty, or nil when it is not for
// sale.
func (s *Store) Listing(tx *Tx, id types.KittyID) (*types.Listing, error) {
	raw, found, err := tx.get(keyListing(id))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	listing := &types.Listing{}
	if err := json.Unmarshal(raw, listing); err != nil {
		return nil, terror.Error(err)
	}
	return listing, nil
}

// SetListing writes the listing for a kitty, replacing any prior one
// unconditionally. Ownership is the caller's concern.
func (s *Store) SetListing(tx *Tx, id types.KittyID, listing *types.Listing) error {
	raw, err := json.Marshal(listing)
	if err != nil {
		return terror.Error(err)
	}
	return tx.set(keyListing(id), raw)
}

// RemoveListing deletes any listing for the kitty. Idempotent.
func (s *Store) RemoveListing(tx *Tx, id types.KittyID) error {
	return tx.delete(keyListing(id))
}

// TakeListing atomically reads and removes the listing for a kitty. Returns
// ErrNotForSale when no listing exists. Callers that fail after taking rely
// on transaction rollback to restore the listing.
func (s *Store) TakeListing(tx *Tx, id types.KittyID) (*types.Listing, error) {
	listing, err := s.Listing(tx, id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, terror.Error(types.ErrNotForSale, "kitty is not for sale")
	}
	if err := tx.delete(keyListing(id)); err != nil {
		return nil, err
	}
	return listing, nil
}

// Listings scans every active listing, in kitty id order.
func (s *Store) Listings(tx *Tx) ([]*ListingEntry, error) {
	iterOpts := badger.DefaultIteratorOptions
	iterOpts.Prefix = prefixListing

	result := []*ListingEntry{}

	it := tx.txn.NewIterator(iterOpts)
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		key := item.Key()
		idRaw := key[len(prefixListing):]
		if len(idRaw) != 8 {
			continue
		}

		raw, err := item.ValueCopy(nil)
		if err != nil {
			return nil, terror.Error(err)
		}
		listing := types.Listing{}
		if err := json.Unmarshal(raw, &listing); err != nil {
			return nil, terror.Error(err)
		}

		result = append(result, &ListingEntry{
			KittyID: types.KittyID(beUint64(idRaw)),
			Listing: listing,
		})
	}

	return result, nil
}
