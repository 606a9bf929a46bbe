package types

import (
	"encoding/hex"
	"fmt"

	"github.com/ninja-software/terror/v2"
	"github.com/shopspring/decimal"
)

// DNALength is the fixed size of a kitty's genetic identifier.
const DNALength = 16

// DNA is the 128-bit opaque identifier of a kitty. It is assigned at mint
// and never changes; everything else about a kitty is computed from it.
type DNA [DNALength]byte

func (d DNA) String() string {
	return hex.EncodeToString(d[:])
}

func (d DNA) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DNA) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return terror.Error(err, "invalid dna")
	}
	if len(b) != DNALength {
		return terror.Error(fmt.Errorf("dna must be %d bytes, got %d", DNALength, len(b)), "invalid dna")
	}
	copy(d[:], b)
	return nil
}

// Gender gates breeding compatibility. It is derived from the DNA, never stored.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Gender is the parity of the largest byte in the DNA: even is male, odd is
// female. The all-zero DNA is male by convention.
func (d DNA) Gender() Gender {
	var max byte
	for _, b := range d {
		if b > max {
			max = b
		}
	}
	if max%2 == 0 {
		return GenderMale
	}
	return GenderFemale
}

// Kitty is a single kitty on the platform.
type Kitty struct {
	ID    KittyID   `json:"id"`
	DNA   DNA       `json:"dna"`
	Owner AccountID `json:"owner"`
}

func (k *Kitty) Gender() Gender {
	return k.DNA.Gender()
}

// Listing makes a kitty available for purchase at a fixed price. At most one
// listing exists per kitty, and the seller must be the owner at listing time.
type Listing struct {
	Seller AccountID       `json:"seller"`
	Price  decimal.Decimal `json:"price"`
}
