package render

import (
	"testing"

	"ppsim/internal/state"
)

func TestPaletteCoversColorIndices(t *testing.T) {
	if got := len(Palette(state.ColoringNormal)); got != 4 {
		t.Fatalf("expected 4 normal colors, got %d", got)
	}
	if got := len(Palette(state.ColoringHeading)); got != state.HeadingSectors {
		t.Fatalf("expected %d heading colors, got %d", state.HeadingSectors, got)
	}
	if got := len(Palette(state.ColoringDensity)); got != 256 {
		t.Fatalf("expected a full density ramp, got %d", got)
	}
	for _, c := range Palette(state.ColoringHeading) {
		if c.A != 255 {
			t.Fatalf("heading colors must be opaque: %+v", c)
		}
	}
}

func TestDensityPaletteSaturates(t *testing.T) {
	p := Palette(state.ColoringDensity)
	if p[densityCeiling] != p[255] {
		t.Fatal("counts above the ceiling should share the brightest color")
	}
	if p[0] == p[densityCeiling] {
		t.Fatal("ramp should vary below the ceiling")
	}
}

func TestLookupClamps(t *testing.T) {
	p := Palette(state.ColoringNormal)
	if Lookup(p, 200) != p[len(p)-1] {
		t.Fatal("out of range index should clamp to the last color")
	}
	if Lookup(nil, 0).A != 0 {
		t.Fatal("empty palette should yield transparent black")
	}
}

func TestFillPointsRGBA(t *testing.T) {
	const w, h = 4, 3
	buf := make([]byte, w*h*4)
	p := Palette(state.ColoringNormal)
	xs := []float64{1.5, 3.9, -1, 10}
	ys := []float64{0.2, 2.5, 1, 1}
	colors := []uint8{state.ColorBlue, state.ColorYellow, 0, 0}
	fillPointsRGBA(buf, w, h, xs, ys, colors, p)

	at := func(x, y int) [4]byte {
		b := (y*w + x) * 4
		return [4]byte{buf[b], buf[b+1], buf[b+2], buf[b+3]}
	}
	blue, yellow := p[state.ColorBlue], p[state.ColorYellow]
	if at(1, 0) != [4]byte{blue.R, blue.G, blue.B, blue.A} {
		t.Fatalf("unexpected pixel %v", at(1, 0))
	}
	if at(3, 2) != [4]byte{yellow.R, yellow.G, yellow.B, yellow.A} {
		t.Fatalf("unexpected pixel %v", at(3, 2))
	}
	if at(0, 1) != [4]byte{Background.R, Background.G, Background.B, Background.A} {
		t.Fatalf("expected background, got %v", at(0, 1))
	}
}
