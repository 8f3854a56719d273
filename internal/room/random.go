package room

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// NewRandom returns a PCG source seeded from crypto/rand. *rand.Rand
// satisfies game.Random.
func NewRandom() (*rand.Rand, error) {
	s1, err := NewSeed()
	if err != nil {
		return nil, err
	}
	s2, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return rand.New(rand.NewPCG(s1, s2)), nil
}
