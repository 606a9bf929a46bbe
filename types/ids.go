package types

import (
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/ninja-software/terror/v2"
)

// AccountID is the unique identifier of a ledger account.
type AccountID uuid.UUID

// TreasuryAccountID holds fees and faucet funds in development environments.
var TreasuryAccountID = AccountID(uuid.Must(uuid.FromString("7a84d9f1-8c5b-4a52-9e61-03cb12a6d9d4")))

func (id AccountID) IsNil() bool {
	return id == AccountID{}
}

func (id AccountID) String() string {
	return uuid.UUID(id).String()
}

func (id AccountID) Bytes() []byte {
	u := uuid.UUID(id)
	return u.Bytes()
}

func (id AccountID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *AccountID) UnmarshalText(text []byte) error {
	u, err := uuid.FromString(string(text))
	if err != nil {
		return terror.Error(err, "invalid account id")
	}
	*id = AccountID(u)
	return nil
}

// AccountIDFromString parses a uuid formatted account id.
func AccountIDFromString(s string) (AccountID, error) {
	u, err := uuid.FromString(s)
	if err != nil {
		return AccountID{}, terror.Error(fmt.Errorf("parse account id %q: %w", s, err), "invalid account id")
	}
	return AccountID(u), nil
}

// KittyID is the numeric token index assigned by the registry on mint.
type KittyID uint64

func (id KittyID) String() string {
	return fmt.Sprintf("%d", id)
}
