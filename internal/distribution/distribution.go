// Package distribution places freshly spawned particles inside the world.
package distribution

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/aquilax/go-perlin"

	"ppsim/pkg/core"
)

// Kind selects a placement rule. The integer values are persisted in state files.
type Kind int

const (
	// Uniform spreads particles evenly over the rectangle.
	Uniform Kind = iota
	// Normal clusters particles around the world centre.
	Normal
	// Perlin clusters particles in the bright blobs of a fixed noise field.
	Perlin
)

var names = [...]string{
	Uniform: "uniform",
	Normal:  "normal",
	Perlin:  "perlin",
}

type placer func(w, h float64, r *rand.Rand) (x, y float64)

var placers = [...]placer{
	Uniform: placeUniform,
	Normal:  placeNormal,
	Perlin:  placePerlin,
}

// Kinds lists every supported kind in persisted order.
func Kinds() []Kind {
	return []Kind{Uniform, Normal, Perlin}
}

// Valid reports whether k names a placement rule.
func (k Kind) Valid() bool { return k >= 0 && int(k) < len(placers) }

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return names[k]
}

// ParseKind maps a name or its integer form to a Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s || fmt.Sprint(i) == s {
			return Kind(i), nil
		}
	}
	return Uniform, fmt.Errorf("unknown distribution %q", s)
}

// Place returns a position in [0, width) x [0, height) and a heading in
// [0, 2π) for one particle. Unknown kinds fall back to Uniform. It keeps no
// state of its own, so concurrent calls are safe as long as each caller owns r.
func Place(kind Kind, width, height float64, r *rand.Rand) (x, y, phi float64) {
	if !kind.Valid() {
		kind = Uniform
	}
	x, y = placers[kind](width, height, r)
	return x, y, core.Angle(r)
}

func placeUniform(w, h float64, r *rand.Rand) (float64, float64) {
	return r.Float64() * w, r.Float64() * h
}

func placeNormal(w, h float64, r *rand.Rand) (float64, float64) {
	sigma := math.Min(w, h) / 8
	x := w/2 + r.NormFloat64()*sigma
	y := h/2 + r.NormFloat64()*sigma
	return Wrap(x, w), Wrap(y, h)
}

const (
	perlinTries = 32
	perlinScale = 4.0 // noise periods across the shorter world side
)

// noise is built once and only read afterwards.
var noise = perlin.NewPerlin(2, 2, 3, 1996)

func placePerlin(w, h float64, r *rand.Rand) (float64, float64) {
	side := math.Min(w, h)
	if side <= 0 {
		return 0, 0
	}
	for i := 0; i < perlinTries; i++ {
		x, y := placeUniform(w, h, r)
		// Noise2D is roughly in [-0.7, 0.7]; shift it into an acceptance chance.
		v := noise.Noise2D(x/side*perlinScale, y/side*perlinScale)
		if r.Float64() < (v+0.2)*1.5 {
			return x, y
		}
	}
	return placeUniform(w, h, r)
}

// Wrap maps v into [0, size) on a torus.
func Wrap(v, size float64) float64 {
	if size <= 0 {
		return 0
	}
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	if v >= size {
		v = 0
	}
	return v
}
