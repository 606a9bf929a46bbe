package db

import (
	"kitty-services/types"

	"github.com/ninja-software/terror/v2"
	"github.com/shopspring/decimal"
)

// ExistenceRequirement controls whether a balance transfer may drop the
// payer below the existential deposit and so destroy the account.
type ExistenceRequirement int

const (
	// KeepAlive refuses any transfer that would leave the payer under the
	// existential deposit.
	KeepAlive ExistenceRequirement = iota
	// AllowDeath permits the payer's balance to be emptied.
	AllowDeath
)

// Balance of an account. Accounts the ledger has never seen hold zero.
func (s *Store) Balance(tx *Tx, account types.AccountID) (decimal.Decimal, error) {
	raw, found, err := tx.get(keyBalance(account))
	if err != nil {
		return decimal.Zero, err
	}
	if !found {
		return decimal.Zero, nil
	}

	balance, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Zero, terror.Error(err)
	}
	return balance, nil
}

func (s *Store) setBalance(tx *Tx, account types.AccountID, balance decimal.Decimal) error {
	if balance.IsZero() {
		return tx.delete(keyBalance(account))
	}
	return tx.set(keyBalance(account), []byte(balance.String()))
}

// Deposit credits an account out of thin air. Seeding and faucet use only.
func (s *Store) Deposit(tx *Tx, account types.AccountID, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return terror.Error(types.ErrInvalidAmount, "deposit amount cannot be negative")
	}

	balance, err := s.Balance(tx, account)
	if err != nil {
		return err
	}
	return s.setBalance(tx, account, balance.Add(amount))
}

// TransferBalance moves value between accounts. KeepAlive rejects transfers
// that would leave the payer below the existential deposit; a failed
// transfer leaves both balances untouched.
func (s *Store) TransferBalance(tx *Tx, from, to types.AccountID, amount decimal.Decimal, requirement ExistenceRequirement) error {
	if amount.IsNegative() {
		return terror.Error(types.ErrInvalidAmount, "transfer amount cannot be negative")
	}
	if amount.IsZero() || from == to {
		return nil
	}

	fromBalance, err := s.Balance(tx, from)
	if err != nil {
		return err
	}
	if fromBalance.LessThan(amount) {
		return terror.Error(types.ErrInsufficientFunds, "insufficient funds")
	}

	remainder := fromBalance.Sub(amount)
	if requirement == KeepAlive && remainder.LessThan(s.existentialDeposit) {
		return terror.Error(types.ErrAccountWouldDie, "transfer would reap the paying account")
	}

	toBalance, err := s.Balance(tx, to)
	if err != nil {
		return err
	}

	if err := s.setBalance(tx, from, remainder); err != nil {
		return err
	}
	return s.setBalance(tx, to, toBalance.Add(amount))
}
