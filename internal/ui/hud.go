//go:build ebiten

package ui

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"ppsim/internal/core"
	"ppsim/internal/state"
)

// HUD renders the parameter panel to the right of the simulation view. Up and
// Down select a control, Left and Right adjust it (Shift for ten steps); the
// +/- buttons accept mouse clicks.
type HUD struct {
	st    *state.State
	draft *Draft

	width      int
	panel      *ebiten.Image
	lastHeight int

	controls     []hudControlState
	selected     int
	panelOffsetX int

	pixel *ebiten.Image
}

// NewHUD constructs a HUD that reads st and submits edits to req.
func NewHUD(st *state.State, req Requester, width int) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{st: st, draft: NewDraft(req), width: width}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	for _, ctrl := range state.Controls() {
		h.controls = append(h.controls, hudControlState{control: ctrl, value: "--"})
	}
	h.layoutControls()
	return h
}

// Width returns the panel width in pixels.
func (h *HUD) Width() int {
	if h == nil {
		return 0
	}
	return h.width
}

// Update refreshes the displayed values and handles input.
func (h *HUD) Update(panelOffsetX int) {
	if h == nil {
		return
	}
	h.panelOffsetX = panelOffsetX
	h.draft.Sync(h.st.Stative())
	h.refreshControlValues()
	h.handleKeys()
	h.handleMouse()
}

// Draw paints the HUD panel at offsetX with the given height.
func (h *HUD) Draw(screen *ebiten.Image, offsetX, height int) {
	if h == nil || h.width <= 0 || height <= 0 {
		return
	}
	if h.panel == nil || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})
	h.drawControls()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) refreshControlValues() {
	values := map[string]string{}
	for _, group := range h.draft.Value().Parameters().Groups {
		for _, p := range group.Params {
			values[p.Key] = p.Value
		}
	}
	for i := range h.controls {
		v, ok := values[h.controls[i].control.Key]
		if !ok {
			v = "--"
		}
		h.controls[i].value = v
	}
}

func (h *HUD) handleKeys() {
	if len(h.controls) == 0 {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		h.selected = (h.selected + 1) % len(h.controls)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		h.selected = (h.selected + len(h.controls) - 1) % len(h.controls)
	}
	steps := 1
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		steps = 10
	}
	key := h.controls[h.selected].control.Key
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		h.draft.Adjust(key, steps)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		h.draft.Adjust(key, -steps)
	}
}

func (h *HUD) handleMouse() {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx < h.panelOffsetX {
		return
	}
	px := mx - h.panelOffsetX
	for i := range h.controls {
		c := &h.controls[i]
		switch {
		case pointInRect(px, my, c.minusRect):
			h.selected = i
			h.draft.Adjust(c.control.Key, -1)
			return
		case pointInRect(px, my, c.plusRect):
			h.selected = i
			h.draft.Adjust(c.control.Key, 1)
			return
		}
	}
}

func (h *HUD) drawControls() {
	face := basicfont.Face7x13
	title := "Controls"
	if h.draft.Pending() {
		title = "Controls (applying)"
	}
	text.Draw(h.panel, title, face, panelPadding, panelPadding+headerBaseline, color.RGBA{R: 200, G: 200, B: 210, A: 255})
	for i := range h.controls {
		c := &h.controls[i]
		labelColor := color.RGBA{R: 220, G: 220, B: 230, A: 255}
		if i == h.selected {
			labelColor = color.RGBA{R: 250, G: 210, B: 90, A: 255}
		}
		y := c.top + labelBaseline
		text.Draw(h.panel, c.control.Label, face, panelPadding, y, labelColor)
		bounds := text.BoundString(face, c.value)
		x := c.minusRect.Min.X - buttonGap - bounds.Dx()
		text.Draw(h.panel, c.value, face, x, y, color.RGBA{R: 220, G: 220, B: 230, A: 255})
		h.drawButton(c.minusRect, "-", h.canAdjust(c.control.Key, -1))
		h.drawButton(c.plusRect, "+", h.canAdjust(c.control.Key, 1))
	}
}

func (h *HUD) canAdjust(key string, steps int) bool {
	cur := h.draft.Value()
	next, ok := cur.Adjust(key, steps)
	return ok && !sameFields(cur, next)
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	if h.pixel == nil {
		return
	}
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(bg)
	h.panel.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

func (h *HUD) layoutControls() {
	if h.width <= 0 {
		return
	}
	for i := range h.controls {
		top := controlsTop + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plus := image.Rect(h.width-panelPadding-buttonSize, buttonY, h.width-panelPadding, buttonY+buttonSize)
		minus := image.Rect(plus.Min.X-buttonGap-buttonSize, buttonY, plus.Min.X-buttonGap, buttonY+buttonSize)
		h.controls[i].top = top
		h.controls[i].minusRect = minus
		h.controls[i].plusRect = plus
	}
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

type hudControlState struct {
	control core.ParameterControl
	value   string

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

const (
	panelPadding   = 12
	lineHeight     = 32
	buttonSize     = 22
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 22
	controlsTop    = panelPadding + headerBaseline + 14
)
