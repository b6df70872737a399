package core

import (
	"math"
	"math/rand/v2"
)

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Source exposes the underlying rand.Rand for placement functions.
func (r *RNG) Source() *rand.Rand { return r.r }

// Angle draws a heading in [0, 2π) from the given source.
func Angle(r *rand.Rand) float64 {
	return r.Float64() * 2 * math.Pi
}
