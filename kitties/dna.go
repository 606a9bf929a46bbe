// Package kitties is the asset lifecycle engine: dna generation, breeding,
// ownership transfer, and the atomic exchange protocol.
package kitties

import (
	"encoding/binary"
	"hash"

	"kitty-services/types"

	"golang.org/x/crypto/blake2b"
)

// NewDNA derives a kitty's dna from its owner, a randomness draw, and a
// sequence nonce. Deterministic: identical inputs always produce identical
// dna. No uniqueness loop runs; distinct nonces differ with overwhelming
// probability but collisions are not actively prevented.
func NewDNA(owner types.AccountID, random [32]byte, nonce uint64) types.DNA {
	h := newDNADigest()
	h.Write(owner.Bytes())
	h.Write(random[:])
	writeUint64(h, nonce)

	var dna types.DNA
	copy(dna[:], h.Sum(nil))
	return dna
}

// CombineDNA derives a child's dna from both parents, a randomness draw, and
// a sequence nonce. Deterministic in the same way as NewDNA.
func CombineDNA(first, second types.DNA, random [32]byte, nonce uint64) types.DNA {
	h := newDNADigest()
	h.Write(first[:])
	h.Write(second[:])
	h.Write(random[:])
	writeUint64(h, nonce)

	var dna types.DNA
	copy(dna[:], h.Sum(nil))
	return dna
}

func newDNADigest() hash.Hash {
	// blake2b with a 16 byte output, the same 128 bit digest the dna is
	// defined over. New only errors on an invalid size.
	h, err := blake2b.New(types.DNALength, nil)
	if err != nil {
		panic(err)
	}
	return h
}

func writeUint64(h hash.Hash, v uint64) {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, v)
	h.Write(raw)
}
