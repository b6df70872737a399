package core

import (
	"math"
	"testing"
)

func TestRNGDeterministic(t *testing.T) {
	a := NewRNG(7).Source()
	b := NewRNG(7).Source()
	for i := 0; i < 32; i++ {
		if av, bv := a.Float64(), b.Float64(); av != bv {
			t.Fatalf("draw %d differs: %f vs %f", i, av, bv)
		}
	}
}

func TestAngleBounds(t *testing.T) {
	r := NewRNG(1).Source()
	for i := 0; i < 1000; i++ {
		a := Angle(r)
		if a < 0 || a >= 2*math.Pi {
			t.Fatalf("angle %f outside [0, 2pi)", a)
		}
	}
}
