package render

import (
	"image/color"

	"ppsim/internal/state"
)

// Background is the color behind the particles.
var Background = color.RGBA{R: 8, G: 8, B: 12, A: 255}

var normalPalette = []color.RGBA{
	state.ColorGreen:  {R: 64, G: 200, B: 72, A: 255},
	state.ColorBrown:  {R: 150, G: 96, B: 48, A: 255},
	state.ColorBlue:   {R: 56, G: 112, B: 230, A: 255},
	state.ColorYellow: {R: 240, G: 220, B: 64, A: 255},
}

// densityCeiling is the neighbour count drawn at full brightness.
const densityCeiling = 48

var (
	densityPalette = buildDensityPalette()
	headingPalette = buildHeadingPalette()
)

// Palette returns the colors indexed by the particle color values of c.
func Palette(c state.Coloring) []color.RGBA {
	switch c {
	case state.ColoringDensity:
		return densityPalette
	case state.ColoringHeading:
		return headingPalette
	}
	return normalPalette
}

// Lookup returns palette[idx], clamping idx to the last entry.
func Lookup(palette []color.RGBA, idx uint8) color.RGBA {
	if len(palette) == 0 {
		return color.RGBA{}
	}
	i := int(idx)
	if i >= len(palette) {
		i = len(palette) - 1
	}
	return palette[i]
}

func buildDensityPalette() []color.RGBA {
	p := make([]color.RGBA, 256)
	for i := range p {
		t := float64(min(i, densityCeiling)) / densityCeiling
		p[i] = color.RGBA{
			R: uint8(40 + t*215),
			G: uint8(60 + t*120*(1-t) + t*60),
			B: uint8(200 * (1 - t)),
			A: 255,
		}
	}
	return p
}

func buildHeadingPalette() []color.RGBA {
	p := make([]color.RGBA, state.HeadingSectors)
	for i := range p {
		p[i] = hue(float64(i) / float64(len(p)))
	}
	return p
}

// hue maps h in [0, 1) to a saturated color.
func hue(h float64) color.RGBA {
	h *= 6
	sector := int(h)
	f := h - float64(sector)
	up, down := uint8(255*f), uint8(255*(1-f))
	switch sector % 6 {
	case 0:
		return color.RGBA{R: 255, G: up, A: 255}
	case 1:
		return color.RGBA{R: down, G: 255, A: 255}
	case 2:
		return color.RGBA{G: 255, B: up, A: 255}
	case 3:
		return color.RGBA{G: down, B: 255, A: 255}
	case 4:
		return color.RGBA{R: up, B: 255, A: 255}
	}
	return color.RGBA{R: 255, B: down, A: 255}
}

// fillPointsRGBA rasterises one pixel per particle into an RGBA buffer of
// w*h pixels, clearing it to the background first. Coordinates outside the
// buffer are skipped.
func fillPointsRGBA(buf []byte, w, h int, xs, ys []float64, colors []uint8, palette []color.RGBA) {
	for i := 0; i+3 < len(buf); i += 4 {
		buf[i+0] = Background.R
		buf[i+1] = Background.G
		buf[i+2] = Background.B
		buf[i+3] = Background.A
	}
	for i := range xs {
		x, y := int(xs[i]), int(ys[i])
		if x < 0 || y < 0 || x >= w || y >= h {
			continue
		}
		col := Lookup(palette, colors[i])
		base := (y*w + x) * 4
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}
