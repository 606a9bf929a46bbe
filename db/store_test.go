package db_test

import (
	"fmt"
	"testing"

	"kitty-services/db"
	"kitty-services/types"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	store, err := db.Open(db.Opts{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func account(t *testing.T) types.AccountID {
	t.Helper()
	u, err := uuid.NewV4()
	require.NoError(t, err)
	return types.AccountID(u)
}

func TestMintAndLookup(t *testing.T) {
	store := newTestStore(t)
	owner := account(t)
	dna := types.DNA{1, 2, 3}

	var id types.KittyID
	err := store.Update(func(tx *db.Tx) error {
		var err error
		id, err = store.MintKitty(tx, owner, dna)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, types.KittyID(0), id, "ids start at zero")

	err = store.View(func(tx *db.Tx) error {
		kitty, err := store.Kitty(tx, id)
		require.NoError(t, err)
		require.Equal(t, dna, kitty.DNA)
		require.Equal(t, owner, kitty.Owner)

		// Owner-filtered lookup hides kitties held by others.
		_, err = store.KittyOfOwner(tx, account(t), id)
		require.ErrorIs(t, err, types.ErrKittyNotFound)

		_, err = store.Kitty(tx, types.KittyID(99))
		require.ErrorIs(t, err, types.ErrKittyNotFound)

		holds, err := store.OwnerHolds(tx, owner, id)
		require.NoError(t, err)
		require.True(t, holds)
		return nil
	})
	require.NoError(t, err)
}

func TestTransferKittyOwnership(t *testing.T) {
	store := newTestStore(t)
	from := account(t)
	to := account(t)

	var id types.KittyID
	err := store.Update(func(tx *db.Tx) error {
		var err error
		id, err = store.MintKitty(tx, from, types.DNA{9})
		return err
	})
	require.NoError(t, err)

	// Only the current owner can move a kitty.
	err = store.Update(func(tx *db.Tx) error {
		return store.TransferKitty(tx, to, from, id)
	})
	require.ErrorIs(t, err, types.ErrKittyNotFound)

	err = store.Update(func(tx *db.Tx) error {
		return store.TransferKitty(tx, from, to, id)
	})
	require.NoError(t, err)

	err = store.View(func(tx *db.Tx) error {
		kitty, err := store.Kitty(tx, id)
		require.NoError(t, err)
		require.Equal(t, to, kitty.Owner)

		// The owner index moved with the record.
		holds, err := store.OwnerHolds(tx, from, id)
		require.NoError(t, err)
		require.False(t, holds)
		holds, err = store.OwnerHolds(tx, to, id)
		require.NoError(t, err)
		require.True(t, holds)
		return nil
	})
	require.NoError(t, err)
}

func TestKittiesByOwner(t *testing.T) {
	store := newTestStore(t)
	owner := account(t)
	other := account(t)

	err := store.Update(func(tx *db.Tx) error {
		for i := 0; i < 3; i++ {
			if _, err := store.MintKitty(tx, owner, types.DNA{byte(i + 1)}); err != nil {
				return err
			}
		}
		_, err := store.MintKitty(tx, other, types.DNA{100})
		return err
	})
	require.NoError(t, err)

	err = store.View(func(tx *db.Tx) error {
		held, err := store.KittiesByOwner(tx, owner)
		require.NoError(t, err)
		require.Len(t, held, 3)
		for i, kitty := range held {
			require.Equal(t, types.KittyID(uint64(i)), kitty.ID, "scan returns kitties in id order")
			require.Equal(t, owner, kitty.Owner)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestUpdateRollsBackAllWrites(t *testing.T) {
	store := newTestStore(t)
	owner := account(t)

	boom := fmt.Errorf("boom")
	err := store.Update(func(tx *db.Tx) error {
		if _, err := store.MintKitty(tx, owner, types.DNA{1}); err != nil {
			return err
		}
		if err := store.Deposit(tx, owner, decimal.NewFromInt(100)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = store.View(func(tx *db.Tx) error {
		_, err := store.Kitty(tx, types.KittyID(0))
		require.ErrorIs(t, err, types.ErrKittyNotFound)

		balance, err := store.Balance(tx, owner)
		require.NoError(t, err)
		require.True(t, balance.IsZero())

		next, err := store.NextKittyID(tx)
		require.NoError(t, err)
		require.Zero(t, next)
		return nil
	})
	require.NoError(t, err)
}

func TestListings(t *testing.T) {
	store := newTestStore(t)
	seller := account(t)
	price := decimal.NewFromInt(42)

	err := store.Update(func(tx *db.Tx) error {
		for i := 0; i < 2; i++ {
			id, err := store.MintKitty(tx, seller, types.DNA{byte(i + 1)})
			if err != nil {
				return err
			}
			if err := store.SetListing(tx, id, &types.Listing{Seller: seller, Price: price}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = store.View(func(tx *db.Tx) error {
		listings, err := store.Listings(tx)
		require.NoError(t, err)
		require.Len(t, listings, 2)
		require.Equal(t, types.KittyID(0), listings[0].KittyID)
		require.Equal(t, types.KittyID(1), listings[1].KittyID)
		return nil
	})
	require.NoError(t, err)

	// Take removes on read.
	err = store.Update(func(tx *db.Tx) error {
		listing, err := store.TakeListing(tx, types.KittyID(0))
		if err != nil {
			return err
		}
		require.True(t, listing.Price.Equal(price))
		return nil
	})
	require.NoError(t, err)

	// Once committed, the listing is gone.
	err = store.Update(func(tx *db.Tx) error {
		_, err := store.TakeListing(tx, types.KittyID(0))
		return err
	})
	require.ErrorIs(t, err, types.ErrNotForSale)

	// Remove is idempotent.
	err = store.Update(func(tx *db.Tx) error {
		if err := store.RemoveListing(tx, types.KittyID(1)); err != nil {
			return err
		}
		return store.RemoveListing(tx, types.KittyID(1))
	})
	require.NoError(t, err)
}

func TestTransferBalance(t *testing.T) {
	store := newTestStore(t)
	payer := account(t)
	payee := account(t)

	err := store.Update(func(tx *db.Tx) error {
		return store.Deposit(tx, payer, decimal.NewFromInt(100))
	})
	require.NoError(t, err)

	// Insufficient funds.
	err = store.Update(func(tx *db.Tx) error {
		return store.TransferBalance(tx, payer, payee, decimal.NewFromInt(150), db.AllowDeath)
	})
	require.ErrorIs(t, err, types.ErrInsufficientFunds)

	// Keep-alive refuses to reap the payer.
	err = store.Update(func(tx *db.Tx) error {
		return store.TransferBalance(tx, payer, payee, decimal.NewFromInt(100), db.KeepAlive)
	})
	require.ErrorIs(t, err, types.ErrAccountWouldDie)

	// Negative amounts are invalid everywhere.
	err = store.Update(func(tx *db.Tx) error {
		return store.TransferBalance(tx, payer, payee, decimal.NewFromInt(-5), db.KeepAlive)
	})
	require.ErrorIs(t, err, types.ErrInvalidAmount)

	// A keep-alive transfer leaving at least the existential deposit works.
	err = store.Update(func(tx *db.Tx) error {
		return store.TransferBalance(tx, payer, payee, decimal.NewFromInt(99), db.KeepAlive)
	})
	require.NoError(t, err)

	err = store.View(func(tx *db.Tx) error {
		payerBalance, err := store.Balance(tx, payer)
		require.NoError(t, err)
		require.True(t, payerBalance.Equal(decimal.NewFromInt(1)))

		payeeBalance, err := store.Balance(tx, payee)
		require.NoError(t, err)
		require.True(t, payeeBalance.Equal(decimal.NewFromInt(99)))
		return nil
	})
	require.NoError(t, err)

	// AllowDeath may empty the account entirely.
	err = store.Update(func(tx *db.Tx) error {
		return store.TransferBalance(tx, payer, payee, decimal.NewFromInt(1), db.AllowDeath)
	})
	require.NoError(t, err)
	err = store.View(func(tx *db.Tx) error {
		payerBalance, err := store.Balance(tx, payer)
		require.NoError(t, err)
		require.True(t, payerBalance.IsZero())
		return nil
	})
	require.NoError(t, err)
}

func TestNextNonceMonotonic(t *testing.T) {
	store := newTestStore(t)

	var first, second uint64
	err := store.Update(func(tx *db.Tx) error {
		var err error
		first, err = store.NextNonce(tx)
		if err != nil {
			return err
		}
		second, err = store.NextNonce(tx)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, first+1, second)
}
