//go:build ebiten

package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"ppsim/internal/control"
)

const (
	overlayLines   = 6
	overlayLineGap = 15
	overlayPad     = 8
)

var severityColors = [...]color.RGBA{
	{R: 210, G: 220, B: 230, A: 255},
	{R: 250, G: 200, B: 80, A: 255},
	{R: 250, G: 90, B: 80, A: 255},
}

// Overlay draws the newest log messages and the status line over the view.
// H toggles the key help.
type Overlay struct {
	orch  *control.Orchestrator
	fader Fader

	showHelp bool
	tps      float64
}

// NewOverlay returns an overlay reading the log and status of orch.
func NewOverlay(orch *control.Orchestrator) *Overlay {
	return &Overlay{orch: orch}
}

// Update handles the overlay's own keys.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		o.showHelp = !o.showHelp
	}
	o.tps = ebiten.ActualTPS()
}

// Draw renders the overlay within a width x height area at the origin.
func (o *Overlay) Draw(screen *ebiten.Image, width, height int) {
	st := o.orch.State()
	log := st.Log()
	face := basicfont.Face7x13

	front, ok := log.Front()
	if o.fader.Visible(front, ok) {
		msgs := log.Messages()
		lines := MessageLines(msgs, overlayLines)
		h := float32(overlayPad*2 + len(lines)*overlayLineGap)
		vector.DrawFilledRect(screen, 0, 0, float32(width), h, color.RGBA{A: 150}, false)
		for i, line := range lines {
			col := severityColors[0]
			if sev := int(msgs[i].Severity); sev >= 0 && sev < len(severityColors) {
				col = severityColors[sev]
			}
			text.Draw(screen, line, face, overlayPad, overlayPad+12+i*overlayLineGap, col)
		}
	}

	brief := Brief(o.orch.Status(), o.orch.Ticks(), st.Config(), o.tps)
	vector.DrawFilledRect(screen, 0, float32(height-overlayLineGap-overlayPad), float32(width), float32(overlayLineGap+overlayPad), color.RGBA{A: 150}, false)
	text.Draw(screen, brief, face, overlayPad, height-overlayPad, severityColors[0])

	if o.showHelp {
		ebitenutil.DebugPrintAt(screen, helpText, overlayPad, height/3)
	}
}

const helpText = `space  pause / resume
n      single step
r      respawn
s      save state file
l      load state file
c      capture screenshot
arrows select and adjust
h      toggle this help
q/esc  quit`
