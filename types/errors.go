package types

import (
	"fmt"
)

// ErrKittyNotFound when a kitty does not exist or is not held by the caller
var ErrKittyNotFound = fmt.Errorf("kitty not found")

// ErrIdenticalParents when breeding a kitty with itself
var ErrIdenticalParents = fmt.Errorf("kitties need a partner different from themselves to breed")

// ErrIncompatibleGenders when both breeding parents share a gender
var ErrIncompatibleGenders = fmt.Errorf("kitties must have different genders to breed")

// ErrIDOverflow when the token id counter has saturated
var ErrIDOverflow = fmt.Errorf("kitty id counter overflow")

// ErrNotForSale when buying a kitty with no active listing
var ErrNotForSale = fmt.Errorf("kitty is not listed on the exchange")

// ErrCannotBuyOwnKitty when the listing's seller tries to buy it back
var ErrCannotBuyOwnKitty = fmt.Errorf("cannot buy own kitty")

// ErrInsufficientFunds when an account cannot cover a balance transfer
var ErrInsufficientFunds = fmt.Errorf("insufficient funds")

// ErrAccountWouldDie when a keep-alive transfer would drop the payer below the existential deposit
var ErrAccountWouldDie = fmt.Errorf("transfer would kill account")

// ErrInvalidAmount when an amount or price is negative
var ErrInvalidAmount = fmt.Errorf("invalid amount")
