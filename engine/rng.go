package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Random is the source of uniform draws the resolver consumes.
// Float64 must return values in [0, 1).
type Random interface {
	Float64() float64
}

// countingSource counts every value drawn from the wrapped source so a
// position can be replayed exactly, whatever method consumed it.
type countingSource struct {
	src rand.Source
	n   int64
}

func (c *countingSource) Int63() int64 {
	c.n++
	return c.src.Int63()
}

func (c *countingSource) Seed(seed int64) {
	c.src.Seed(seed)
	c.n = 0
}

// RNG wraps math/rand.Rand with deterministic position tracking.
// Position counts raw source draws, enabling save/restore.
type RNG struct {
	seed    int64
	counter *countingSource
	src     *rand.Rand
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	c := &countingSource{src: rand.NewSource(seed)}
	return &RNG{
		seed:    seed,
		counter: c,
		src:     rand.New(c),
	}
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Float64 returns a uniform value in [0, 1).
func (r *RNG) Float64() float64 {
	return r.src.Float64()
}

// Roll returns a random integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	return r.src.Intn(sides) + 1
}

// Pick returns a random index in [0, n).
func (r *RNG) Pick(n int) int {
	return r.src.Intn(n)
}

// Int63 returns a non-negative random int64, used to derive child seeds.
func (r *RNG) Int63() int64 {
	return r.src.Int63()
}

// Position returns the number of source draws made since creation.
func (r *RNG) Position() int64 {
	return r.counter.n
}

// RestoreRNG creates an RNG and advances it to the given position.
// This reproduces the exact RNG state for save/load.
func RestoreRNG(seed int64, position int64) *RNG {
	rng := NewRNG(seed)
	for i := int64(0); i < position; i++ {
		rng.counter.Int63()
	}
	return rng
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
