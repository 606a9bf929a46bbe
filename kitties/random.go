package kitties

import (
	crand "crypto/rand"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// RandomSource supplies 256 bits of randomness per draw. The value must be
// unpredictable to callers at call time but fully deterministic on replay of
// the same ledger history, which is why dna generation can be replayed.
type RandomSource interface {
	Random(subject []byte) [32]byte
}

// SeededSource derives every draw from a fixed seed and the caller's
// subject, so two processes sharing a seed see identical draws.
type SeededSource struct {
	seed [32]byte
}

func NewSeededSource(seed [32]byte) *SeededSource {
	return &SeededSource{seed: seed}
}

func (s *SeededSource) Random(subject []byte) [32]byte {
	payload := make([]byte, 0, len(s.seed)+len(subject))
	payload = append(payload, s.seed[:]...)
	payload = append(payload, subject...)
	return blake2b.Sum256(payload)
}

// NewRandomSeed generates a high-entropy seed using crypto/rand, for
// deployments that do not need cross-process determinism.
func NewRandomSeed() ([32]byte, error) {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return seed, fmt.Errorf("read random seed: %w", err)
	}
	return seed, nil
}
