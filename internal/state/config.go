package state

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"ppsim/internal/distribution"
)

// MaxPopulation bounds Num so a typo cannot request an absurd allocation.
const MaxPopulation = 1 << 20

// ErrInvalidStative reports a candidate configuration that cannot be applied.
var ErrInvalidStative = errors.New("invalid state")

// Coloring selects how particles are colored. It never affects motion.
type Coloring int

const (
	// ColoringNormal colors by neighbourhood density bands.
	ColoringNormal Coloring = iota
	// ColoringDensity maps the neighbour count to a gradient.
	ColoringDensity
	// ColoringHeading colors by heading sector.
	ColoringHeading
)

var coloringNames = [...]string{
	ColoringNormal:  "normal",
	ColoringDensity: "density",
	ColoringHeading: "heading",
}

// Colorings lists every scheme.
func Colorings() []Coloring {
	return []Coloring{ColoringNormal, ColoringDensity, ColoringHeading}
}

// Valid reports whether c is a known scheme.
func (c Coloring) Valid() bool { return c >= 0 && int(c) < len(coloringNames) }

func (c Coloring) String() string {
	if !c.Valid() {
		return fmt.Sprintf("coloring(%d)", int(c))
	}
	return coloringNames[c]
}

// ParseColoring maps a scheme name to a Coloring.
func ParseColoring(s string) (Coloring, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range coloringNames {
		if n == s {
			return Coloring(i), nil
		}
	}
	return ColoringNormal, fmt.Errorf("unknown coloring %q", s)
}

// Config is the scalar configuration owned by State.
type Config struct {
	Stop         int               `json:"stop"`
	Num          int               `json:"num"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	Distribution distribution.Kind `json:"distribution"`
	Alpha        float64           `json:"alpha"`
	Beta         float64           `json:"beta"`
	Scope        float64           `json:"scope"`
	Speed        float64           `json:"speed"`
	Radius       float64           `json:"radius"`
	Coloring     Coloring          `json:"coloring"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Num:          4000,
		Width:        1000,
		Height:       1000,
		Distribution: distribution.Uniform,
		Alpha:        DegToRad(180),
		Beta:         DegToRad(17),
		Scope:        24,
		Speed:        4,
		Radius:       2,
		Coloring:     ColoringNormal,
	}
}

// Stative is a proposed configuration. It never carries particle data. ID tags
// the request so the submitter can tell when the orchestrator has drained it;
// it takes no part in comparisons.
type Stative struct {
	ID           int64
	Num          int
	Width        int
	Height       int
	Distribution distribution.Kind
	Alpha        float64
	Beta         float64
	Scope        float64
	Speed        float64
	Radius       float64
	Coloring     Coloring
}

// Stative returns the proposal that would leave c unchanged.
func (c Config) Stative(id int64) Stative {
	return Stative{
		ID:           id,
		Num:          c.Num,
		Width:        c.Width,
		Height:       c.Height,
		Distribution: c.Distribution,
		Alpha:        c.Alpha,
		Beta:         c.Beta,
		Scope:        c.Scope,
		Speed:        c.Speed,
		Radius:       c.Radius,
		Coloring:     c.Coloring,
	}
}

// with adopts every field of s, keeping Stop.
func (c Config) with(s Stative) Config {
	c.Num = s.Num
	c.Width = s.Width
	c.Height = s.Height
	c.Distribution = s.Distribution
	c.Alpha = s.Alpha
	c.Beta = s.Beta
	c.Scope = s.Scope
	c.Speed = s.Speed
	c.Radius = s.Radius
	c.Coloring = s.Coloring
	return c
}

// Structural reports whether s changes a field that invalidates particle positions.
func (c Config) Structural(s Stative) bool {
	return c.Num != s.Num || c.Width != s.Width || c.Height != s.Height ||
		c.Distribution != s.Distribution
}

// cosmetic reports whether s changes a field that can be applied in place.
func (c Config) cosmetic(s Stative) bool {
	return c.Alpha != s.Alpha || c.Beta != s.Beta || c.Scope != s.Scope ||
		c.Speed != s.Speed || c.Radius != s.Radius || c.Coloring != s.Coloring
}

// Validate checks that s describes a consistent configuration.
func (s Stative) Validate() error {
	switch {
	case s.Num <= 0 || s.Num > MaxPopulation:
		return fmt.Errorf("%w: population %d outside [1, %d]", ErrInvalidStative, s.Num, MaxPopulation)
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("%w: world %dx%d", ErrInvalidStative, s.Width, s.Height)
	case !s.Distribution.Valid():
		return fmt.Errorf("%w: distribution %s", ErrInvalidStative, s.Distribution)
	case !s.Coloring.Valid():
		return fmt.Errorf("%w: %s", ErrInvalidStative, s.Coloring)
	}
	for _, f := range []struct {
		name string
		v    float64
		min  float64
	}{
		{"alpha", s.Alpha, math.Inf(-1)},
		{"beta", s.Beta, math.Inf(-1)},
		{"speed", s.Speed, math.Inf(-1)},
		{"scope", s.Scope, 0},
		{"radius", s.Radius, 0},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < f.min {
			return fmt.Errorf("%w: %s %v", ErrInvalidStative, f.name, f.v)
		}
	}
	return nil
}

// Validate checks the whole configuration, including Stop.
func (c Config) Validate() error {
	if c.Stop < 0 {
		return fmt.Errorf("%w: stop %d", ErrInvalidStative, c.Stop)
	}
	return c.Stative(0).Validate()
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 { return deg * math.Pi / 180 }

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 { return rad * 180 / math.Pi }
