//go:build ebiten

package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"ppsim/internal/state"
)

// pointRadius is the radius below which particles are drawn as single pixels.
const pointRadius = 0.5

// Painter draws the particle population onto an ebiten image.
type Painter struct {
	points *ebiten.Image
	buf    []byte
}

// NewPainter returns an empty painter; buffers are sized on first use.
func NewPainter() *Painter { return &Painter{} }

// Draw paints the population of st at the given scale. It holds the read lock
// only while issuing draw commands.
func (p *Painter) Draw(dst *ebiten.Image, st *state.State, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	dst.Fill(Background)
	st.Read(func(f state.Frame) {
		ps := f.Particles
		palette := Palette(f.Config.Coloring)
		if f.Config.Radius*scale < pointRadius {
			p.drawPoints(dst, f, palette, scale)
			return
		}
		r := float32(f.Config.Radius * scale)
		for i := 0; i < ps.Len(); i++ {
			col := Lookup(palette, ps.Color[i])
			vector.DrawFilledCircle(dst, float32(ps.X[i]*scale), float32(ps.Y[i]*scale), r, col, true)
		}
	})
}

func (p *Painter) drawPoints(dst *ebiten.Image, f state.Frame, palette []color.RGBA, scale float64) {
	w, h := f.Config.Width, f.Config.Height
	if p.points == nil || p.points.Bounds().Dx() != w || p.points.Bounds().Dy() != h {
		p.points = ebiten.NewImage(w, h)
		p.buf = make([]byte, 4*w*h)
	}
	ps := f.Particles
	fillPointsRGBA(p.buf, w, h, ps.X, ps.Y, ps.Color, palette)
	p.points.WritePixels(p.buf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	dst.DrawImage(p.points, op)
}
