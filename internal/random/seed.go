// Package random provides seed generation and the seeded random sources
// simulations draw from.
//
// A simulation is reproducible from its seed alone: the same seed yields
// the same shuffles, turn order and random card picks.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// SeedOr returns seed when it is non-zero and a fresh seed otherwise.
func SeedOr(seed int64) (int64, error) {
	if seed != 0 {
		return seed, nil
	}
	return NewSeed()
}

// RunSeed derives the seed of run i in a batch started from base.
func RunSeed(base int64, i int) int64 {
	return base + int64(i)
}

// New returns a random source for one simulation. Sources are not safe for
// concurrent use; each run owns its own.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
