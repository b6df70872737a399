package distribution

import (
	"math"
	"sync"
	"testing"

	"ppsim/pkg/core"
)

func TestPlaceStaysInBounds(t *testing.T) {
	for _, kind := range Kinds() {
		r := core.NewRNG(int64(kind) + 3).Source()
		for i := 0; i < 2000; i++ {
			x, y, phi := Place(kind, 300, 120, r)
			if x < 0 || x >= 300 || y < 0 || y >= 120 {
				t.Fatalf("%s placed (%f, %f) outside world", kind, x, y)
			}
			if phi < 0 || phi >= 2*math.Pi {
				t.Fatalf("%s heading %f outside [0, 2pi)", kind, phi)
			}
		}
	}
}

func TestPlaceDeterministicForSeed(t *testing.T) {
	a := core.NewRNG(11).Source()
	b := core.NewRNG(11).Source()
	for i := 0; i < 100; i++ {
		ax, ay, af := Place(Perlin, 500, 500, a)
		bx, by, bf := Place(Perlin, 500, 500, b)
		if ax != bx || ay != by || af != bf {
			t.Fatalf("draw %d differs for equal seeds", i)
		}
	}
}

func TestNormalClustersAroundCentre(t *testing.T) {
	r := core.NewRNG(5).Source()
	const n = 4000
	near := 0
	for i := 0; i < n; i++ {
		x, y, _ := Place(Normal, 800, 800, r)
		if math.Hypot(x-400, y-400) < 200 {
			near++
		}
	}
	// A uniform spread would put about 20% inside that circle.
	if frac := float64(near) / n; frac < 0.8 {
		t.Fatalf("expected most particles near the centre, got %.2f", frac)
	}
}

func TestUnknownKindFallsBackToUniform(t *testing.T) {
	r := core.NewRNG(2).Source()
	x, y, _ := Place(Kind(42), 10, 10, r)
	if x < 0 || x >= 10 || y < 0 || y >= 10 {
		t.Fatalf("fallback placed (%f, %f) outside world", x, y)
	}
	if Kind(42).Valid() {
		t.Fatal("kind 42 should not be valid")
	}
}

func TestConcurrentPlacement(t *testing.T) {
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := core.NewRNG(seed).Source()
			for i := 0; i < 500; i++ {
				Place(Perlin, 100, 100, r)
			}
		}(int64(g))
	}
	wg.Wait()
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{"uniform": Uniform, "Normal": Normal, " perlin ": Perlin, "1": Normal}
	for in, want := range cases {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseKind("spiral"); err == nil {
		t.Fatal("expected error for unknown distribution")
	}
}

func TestWrap(t *testing.T) {
	cases := []struct{ v, size, want float64 }{
		{5, 10, 5},
		{-1, 10, 9},
		{10, 10, 0},
		{23, 10, 3},
		{3, 0, 0},
	}
	for _, c := range cases {
		if got := Wrap(c.v, c.size); math.Abs(got-c.want) > 1e-12 {
			t.Fatalf("Wrap(%f, %f) = %f, want %f", c.v, c.size, got, c.want)
		}
	}
}
