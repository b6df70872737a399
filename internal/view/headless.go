package view

import (
	"context"
	"errors"
	"time"

	"ppsim/internal/stateio"
)

func init() {
	Register(Headless, newHeadless)
}

// progressEvery is the interval between progress lines.
const progressEvery = 5 * time.Second

type headless struct {
	env Env
}

func newHeadless(env Env) (View, error) {
	return &headless{env: env}, nil
}

// Run drives the orchestrator at the configured rate. Every ArchiveEvery
// ticks a snapshot goes to the archive; on exit the state file is written.
func (h *headless) Run(ctx context.Context) error {
	o := h.env.Orch
	lg := h.env.Logger

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- o.Run(runCtx, h.env.TPS) }()

	progress := time.NewTicker(progressEvery)
	defer progress.Stop()
	poll := time.NewTicker(20 * time.Millisecond)
	defer poll.Stop()

	start := time.Now()
	archived := 0
	var runErr error
loop:
	for {
		select {
		case runErr = <-done:
			break loop
		case <-progress.C:
			ticks := o.Ticks()
			rate := float64(ticks) / time.Since(start).Seconds()
			lg.Printf("tick %d (%.1f tps), %d particles, %s", ticks, rate, o.State().Len(), o.Status())
		case <-poll.C:
			archived = h.archive(ctx, archived)
		}
	}
	h.archive(ctx, archived)

	if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
		runErr = nil
	}
	if err := h.saveOnExit(); err != nil {
		return errors.Join(runErr, err)
	}
	lg.Printf("finished after %d ticks in %s", o.Ticks(), time.Since(start).Round(time.Millisecond))
	return runErr
}

// archive stores a snapshot once per ArchiveEvery ticks. It returns the tick
// of the last stored snapshot.
func (h *headless) archive(ctx context.Context, last int) int {
	if h.env.Archive == nil || h.env.ArchiveEvery <= 0 {
		return last
	}
	ticks := h.env.Orch.Ticks()
	if ticks/h.env.ArchiveEvery == last/h.env.ArchiveEvery {
		return last
	}
	snap := h.env.Orch.State().Snapshot()
	id, err := h.env.Archive.Save(context.WithoutCancel(ctx), h.env.Label, ticks, snap)
	if err != nil {
		h.env.Logger.Printf("archive: %v", err)
		return ticks
	}
	h.env.Logger.Printf("archived snapshot %d at tick %d", id, ticks)
	return ticks
}

func (h *headless) saveOnExit() error {
	if h.env.Save == "" {
		return nil
	}
	if err := stateio.Save(h.env.Orch.State(), h.env.Save); err != nil {
		return err
	}
	h.env.Logger.Printf("saved state to %s", h.env.Save)
	return nil
}
