package kitties

import (
	"kitty-services/db"
	"kitty-services/types"

	"github.com/ninja-software/terror/v2"
	"github.com/shopspring/decimal"
)

// SetPrice lists the caller's kitty at the given price, replacing any prior
// listing. A nil price removes the listing. Either way a price updated event
// is emitted.
func (e *Engine) SetPrice(caller types.AccountID, id types.KittyID, price *decimal.Decimal) error {
	if price != nil && price.IsNegative() {
		return terror.Error(types.ErrInvalidAmount, "price cannot be negative")
	}

	err := e.store.Update(func(tx *db.Tx) error {
		holds, err := e.store.OwnerHolds(tx, caller, id)
		if err != nil {
			return err
		}
		if !holds {
			return terror.Error(types.ErrKittyNotFound, "kitty not found")
		}

		if price == nil {
			return e.store.RemoveListing(tx, id)
		}
		return e.store.SetListing(tx, id, &types.Listing{Seller: caller, Price: *price})
	})
	if err != nil {
		return err
	}

	e.publish(types.PriceUpdatedEvent{ID: id, Price: price, Owner: caller})
	return nil
}

// Buy purchases a listed kitty: the listing is consumed, the kitty moves to
// the buyer, and the price moves to the seller, as one atomic unit. Any
// failure, including the seller buying their own kitty or the buyer lacking
// funds, rolls the whole call back with the listing intact.
func (e *Engine) Buy(caller types.AccountID, id types.KittyID) (*types.Kitty, error) {
	var kitty *types.Kitty
	var sold types.KittySoldEvent

	err := e.store.Update(func(tx *db.Tx) error {
		listing, err := e.store.TakeListing(tx, id)
		if err != nil {
			return err
		}
		if listing.Seller == caller {
			// Rollback restores the listing removed by TakeListing.
			return terror.Error(types.ErrCannotBuyOwnKitty, "cannot buy own kitty")
		}

		// A stale listing whose seller no longer owns the kitty fails here
		// and rolls back.
		if err := e.store.TransferKitty(tx, listing.Seller, caller, id); err != nil {
			return err
		}
		if err := e.store.TransferBalance(tx, caller, listing.Seller, listing.Price, db.KeepAlive); err != nil {
			return err
		}

		kitty, err = e.store.Kitty(tx, id)
		if err != nil {
			return err
		}

		sold = types.KittySoldEvent{ID: id, Price: listing.Price, Seller: listing.Seller, Buyer: caller}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(sold)
	return kitty, nil
}
