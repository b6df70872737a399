//go:build ebiten

package view

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"ppsim/internal/control"
	"ppsim/internal/core"
	"ppsim/internal/msglog"
	"ppsim/internal/render"
	"ppsim/internal/state"
	"ppsim/internal/stateio"
	"ppsim/internal/ui"
)

func init() {
	Register(Canvas, newCanvas)
}

const hudWidth = 260

// canvas adapts the orchestrator to the ebiten.Game interface. Ticks are
// paced by a FixedStep so the simulation rate is independent of the frame
// rate; while paused queued requests are still flushed every frame.
type canvas struct {
	ctx  context.Context
	env  Env
	orch *control.Orchestrator
	st   *state.State

	painter *render.Painter
	hud     *ui.HUD
	overlay *ui.Overlay
	timer   *core.FixedStep

	capture bool
}

func newCanvas(env Env) (View, error) {
	if env.Scale <= 0 {
		env.Scale = 1
	}
	return &canvas{
		env:     env,
		orch:    env.Orch,
		st:      env.Orch.State(),
		painter: render.NewPainter(),
		hud:     ui.NewHUD(env.Orch.State(), env.Orch, hudWidth),
		overlay: ui.NewOverlay(env.Orch),
		timer:   core.NewFixedStep(env.TPS),
	}, nil
}

// Run opens the window and blocks until it closes or ctx is done.
func (c *canvas) Run(ctx context.Context) error {
	c.ctx = ctx
	w, h := c.windowSize()
	ebiten.SetWindowTitle("ppsim")
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	err := ebiten.RunGame(c)
	c.orch.Stop()
	if err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func (c *canvas) world() core.Size {
	cfg := c.st.Config()
	return core.Size{W: cfg.Width * c.env.Scale, H: cfg.Height * c.env.Scale}
}

func (c *canvas) windowSize() (int, int) {
	s := c.world()
	return s.W + c.hud.Width(), s.H
}

// Update handles per-frame logic and advances the simulation.
func (c *canvas) Update() error {
	if c.ctx != nil && c.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		_ = c.orch.Toggle()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		_ = c.orch.StepOnce()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		c.orch.RequestRespawn()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		c.save()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		c.load()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		c.capture = true
	}

	c.hud.Update(c.world().W)
	c.overlay.Update()

	switch c.orch.Status() {
	case control.Stopped:
		return nil
	case control.Paused:
		return c.orch.Flush()
	}
	if c.timer.ShouldStep() {
		if err := c.orch.Tick(); err != nil && !errors.Is(err, control.ErrPaused) && !errors.Is(err, control.ErrStopped) {
			return err
		}
	}
	return nil
}

// save snapshots on the game goroutine and writes in the background.
func (c *canvas) save() {
	snap := c.st.Snapshot()
	path := savePath(c.env)
	log := c.st.Log()
	go func() {
		if err := stateio.Write(path, snap); err != nil {
			log.Push(msglog.Error, fmt.Sprintf("Save failed: %v.", err))
			return
		}
		log.Push(msglog.Info, fmt.Sprintf("Saved %d particles to %s.", len(snap.Particles), path))
	}()
}

// load parses the file in the background and hands the result to the
// orchestrator for the next tick boundary.
func (c *canvas) load() {
	path := loadPath(c.env)
	base := c.st.Config()
	log := c.st.Log()
	go func() {
		snap, err := stateio.Read(path, base)
		if err != nil {
			log.Push(msglog.Error, fmt.Sprintf("Load failed: %v.", err))
			return
		}
		c.orch.RequestRestore(snap)
	}()
}

// Draw renders the current simulation state. A pending capture reads back
// the world area before the overlays are drawn.
func (c *canvas) Draw(screen *ebiten.Image) {
	world := c.world()
	c.painter.Draw(screen, c.st, float64(c.env.Scale))
	if c.capture {
		c.capture = false
		c.captureWorld(screen, world)
	}
	c.overlay.Draw(screen, world.W, world.H)
	c.hud.Draw(screen, world.W, world.H)
}

func (c *canvas) captureWorld(screen *ebiten.Image, world core.Size) {
	sub := screen.SubImage(image.Rect(0, 0, world.W, world.H)).(*ebiten.Image)
	pix := make([]byte, 4*world.Area())
	sub.ReadPixels(pix)
	path := captureName(c.env.Dir, c.orch.Ticks())
	log := c.st.Log()
	go func() {
		if err := writePNG(path, pix, world.W, world.H); err != nil {
			log.Push(msglog.Error, fmt.Sprintf("Capture failed: %v.", err))
			return
		}
		log.Push(msglog.Info, fmt.Sprintf("Captured %s.", path))
	}()
}

// Layout returns the logical screen size.
func (c *canvas) Layout(outsideWidth, outsideHeight int) (int, int) {
	return c.windowSize()
}
