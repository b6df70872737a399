package state

import (
	"math"
	"testing"

	"ppsim/internal/distribution"
)

func TestAdjustClampsAndCycles(t *testing.T) {
	s := DefaultConfig().Stative(0)

	next, ok := s.Adjust("num", -100)
	if !ok || next.Num != 1 {
		t.Fatalf("expected population clamped to 1, got %d", next.Num)
	}

	next, _ = s.Adjust("distribution", -1)
	if next.Distribution != distribution.Perlin {
		t.Fatalf("expected cycling back to perlin, got %s", next.Distribution)
	}

	next, _ = s.Adjust("coloring", 1)
	if next.Coloring != ColoringDensity {
		t.Fatalf("expected density coloring, got %s", next.Coloring)
	}

	next, _ = s.Adjust("beta", 3)
	if math.Abs(RadToDeg(next.Beta)-20) > 1e-9 {
		t.Fatalf("expected beta 20 deg, got %f", RadToDeg(next.Beta))
	}

	if _, ok := s.Adjust("gravity", 1); ok {
		t.Fatal("unknown key must not adjust")
	}
}

func TestAdjustSpeedStaysTidy(t *testing.T) {
	s := DefaultConfig().Stative(0)
	for i := 0; i < 3; i++ {
		s, _ = s.Adjust("speed", 1)
	}
	if s.Speed != 4.3 {
		t.Fatalf("expected speed 4.3, got %v", s.Speed)
	}
}

func TestParametersCoverControls(t *testing.T) {
	snap := DefaultConfig().Stative(0).Parameters()
	keys := map[string]bool{}
	for _, g := range snap.Groups {
		for _, p := range g.Params {
			keys[p.Key] = true
		}
	}
	for _, c := range Controls() {
		if !keys[c.Key] {
			t.Fatalf("control %q has no displayed parameter", c.Key)
		}
	}
}

func TestParseColoring(t *testing.T) {
	for _, c := range Colorings() {
		got, err := ParseColoring(c.String())
		if err != nil || got != c {
			t.Fatalf("ParseColoring(%q) = %v, %v", c.String(), got, err)
		}
	}
	if _, err := ParseColoring("rainbow"); err == nil {
		t.Fatal("expected error")
	}
}
