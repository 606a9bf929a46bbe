package kitties

import (
	"kitty-services/db"
	"kitty-services/types"

	"github.com/ninja-software/terror/v2"
	"github.com/rs/zerolog"
)

// Engine orchestrates kitty creation, breeding, transfer, and exchange. All
// state lives in the injected store; every mutating call is one atomic
// storage transaction.
type Engine struct {
	store  *db.Store
	random RandomSource
	sink   EventSink
	log    *zerolog.Logger
}

func NewEngine(store *db.Store, random RandomSource, sink EventSink, log *zerolog.Logger) *Engine {
	return &Engine{
		store:  store,
		random: random,
		sink:   sink,
		log:    log,
	}
}

// Create mints a new kitty with random dna for the owner.
func (e *Engine) Create(owner types.AccountID) (*types.Kitty, error) {
	var kitty *types.Kitty

	err := e.store.Update(func(tx *db.Tx) error {
		nonce, err := e.store.NextNonce(tx)
		if err != nil {
			return err
		}

		dna := NewDNA(owner, e.random.Random(owner.Bytes()), nonce)
		id, err := e.store.MintKitty(tx, owner, dna)
		if err != nil {
			return err
		}

		kitty = &types.Kitty{ID: id, DNA: dna, Owner: owner}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(types.KittyCreatedEvent{DNA: kitty.DNA, ID: kitty.ID, Owner: owner})
	return kitty, nil
}

// Breed derives a child from two kitties held by the caller and mints it to
// the caller. Ownership is re-verified on both parents; a parent held by
// another account fails the same way a missing one does. The parent checks
// run in a fixed order: distinct dna first, opposite genders second.
func (e *Engine) Breed(caller types.AccountID, firstID, secondID types.KittyID) (*types.Kitty, error) {
	var child *types.Kitty

	err := e.store.Update(func(tx *db.Tx) error {
		first, err := e.store.KittyOfOwner(tx, caller, firstID)
		if err != nil {
			return err
		}
		second, err := e.store.KittyOfOwner(tx, caller, secondID)
		if err != nil {
			return err
		}

		if first.DNA == second.DNA {
			return terror.Error(types.ErrIdenticalParents, "kitties need a partner different from themselves to breed")
		}
		if first.Gender() == second.Gender() {
			return terror.Error(types.ErrIncompatibleGenders, "kitties must have different genders to breed")
		}

		nonce, err := e.store.NextNonce(tx)
		if err != nil {
			return err
		}

		dna := CombineDNA(first.DNA, second.DNA, e.random.Random(nil), nonce)
		id, err := e.store.MintKitty(tx, caller, dna)
		if err != nil {
			return err
		}

		child = &types.Kitty{ID: id, DNA: dna, Owner: caller}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(types.KittyBredEvent{DNA: child.DNA, ID: child.ID, Owner: caller})
	return child, nil
}

// Transfer moves a kitty from the caller to the receiver and clears any
// listing on it. A transfer to oneself still fails when the kitty does not
// exist, but otherwise is a no-op: no event, no listing change.
func (e *Engine) Transfer(caller, receiver types.AccountID, id types.KittyID) error {
	err := e.store.Update(func(tx *db.Tx) error {
		if err := e.store.TransferKitty(tx, caller, receiver, id); err != nil {
			return err
		}
		if caller == receiver {
			return nil
		}
		return e.store.RemoveListing(tx, id)
	})
	if err != nil {
		return err
	}

	if caller != receiver {
		e.publish(types.KittyTransferredEvent{ID: id, From: caller, To: receiver})
	}
	return nil
}

func (e *Engine) publish(event types.Event) {
	e.log.Debug().Str("event", string(event.Kind())).Msg("kitty state transition")
	if e.sink != nil {
		e.sink.Publish(event)
	}
}
