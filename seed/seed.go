// Package seed loads development fixtures into the ledger store.
package seed

import (
	"kitty-services/db"
	"kitty-services/kitties"
	"kitty-services/types"

	"github.com/gofrs/uuid"
	"github.com/ninja-software/terror/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Fixed development accounts so local tooling can reference them.
var (
	AliceAccountID = types.AccountID(uuid.Must(uuid.FromString("0f3af9f0-1c89-4a12-9a8f-2f1d6fbb7a01")))
	BobAccountID   = types.AccountID(uuid.Must(uuid.FromString("59f1a3d2-6b40-4f6e-8a2e-5d9c02b0be02")))
)

type Seeder struct {
	Store  *db.Store
	Engine *kitties.Engine
	Log    *zerolog.Logger
}

func NewSeeder(store *db.Store, engine *kitties.Engine, log *zerolog.Logger) *Seeder {
	return &Seeder{
		Store:  store,
		Engine: engine,
		Log:    log,
	}
}

// Run funds the development accounts, mints a litter for each, and lists one
// kitty so the exchange has something to show.
func (s *Seeder) Run() error {
	s.Log.Info().Msg("seeding dev accounts")

	funding := decimal.NewFromInt(10000)
	err := s.Store.Update(func(tx *db.Tx) error {
		for _, account := range []types.AccountID{types.TreasuryAccountID, AliceAccountID, BobAccountID} {
			if err := s.Store.Deposit(tx, account, funding); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return terror.Error(err, "could not fund dev accounts")
	}

	var listable types.KittyID
	for _, owner := range []types.AccountID{AliceAccountID, BobAccountID} {
		for i := 0; i < 3; i++ {
			kitty, err := s.Engine.Create(owner)
			if err != nil {
				return terror.Error(err, "could not mint dev kitty")
			}
			if owner == AliceAccountID && i == 0 {
				listable = kitty.ID
			}
		}
	}

	price := decimal.NewFromInt(100)
	if err := s.Engine.SetPrice(AliceAccountID, listable, &price); err != nil {
		return terror.Error(err, "could not list dev kitty")
	}

	s.Log.Info().Msg("seeding complete")
	return nil
}
