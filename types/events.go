package types

import (
	"github.com/shopspring/decimal"
)

type EventKind string

const (
	EventKittyCreated     EventKind = "kitty_created"
	EventKittyBred        EventKind = "kitty_bred"
	EventKittyTransferred EventKind = "kitty_transferred"
	EventKittySold        EventKind = "kitty_sold"
	EventPriceUpdated     EventKind = "price_updated"
)

// Event is a single lifecycle notification. Mutating calls emit exactly one
// event on success and none on failure.
type Event interface {
	Kind() EventKind
}

// KittyCreatedEvent is emitted when a kitty is generated with random dna.
type KittyCreatedEvent struct {
	DNA   DNA       `json:"dna"`
	ID    KittyID   `json:"id"`
	Owner AccountID `json:"owner"`
}

func (KittyCreatedEvent) Kind() EventKind { return EventKittyCreated }

// KittyBredEvent is emitted when two kitties produce a child.
type KittyBredEvent struct {
	DNA   DNA       `json:"dna"`
	ID    KittyID   `json:"id"`
	Owner AccountID `json:"owner"`
}

func (KittyBredEvent) Kind() EventKind { return EventKittyBred }

// KittyTransferredEvent is emitted when ownership moves between accounts.
type KittyTransferredEvent struct {
	ID   KittyID   `json:"id"`
	From AccountID `json:"from"`
	To   AccountID `json:"to"`
}

func (KittyTransferredEvent) Kind() EventKind { return EventKittyTransferred }

// KittySoldEvent is emitted when a listed kitty is bought.
type KittySoldEvent struct {
	ID     KittyID         `json:"id"`
	Price  decimal.Decimal `json:"price"`
	Seller AccountID       `json:"seller"`
	Buyer  AccountID       `json:"buyer"`
}

func (KittySoldEvent) Kind() EventKind { return EventKittySold }

// PriceUpdatedEvent is emitted when a listing is set, replaced, or removed.
// Price is nil when the kitty was delisted.
type PriceUpdatedEvent struct {
	ID    KittyID          `json:"id"`
	Price *decimal.Decimal `json:"price"`
	Owner AccountID        `json:"owner"`
}

func (PriceUpdatedEvent) Kind() EventKind { return EventPriceUpdated }
