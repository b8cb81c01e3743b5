// Package random builds shuffle sources seeded from the operating system.
package random

import (
	crand "crypto/rand"
	"fmt"
	"math/rand/v2"
)

// New returns a ChaCha8-backed generator with a seed read from crypto/rand.
// The generator is not safe for concurrent use.
func New() (*rand.Rand, error) {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}

	return rand.New(rand.NewChaCha8(seed)), nil
}

// NewSeeded returns a deterministic generator. Tests use it to pin a shuffle.
func NewSeeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
