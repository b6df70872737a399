// Package control drives the simulation: it owns the tick loop and is the only
// goroutine that mutates the State.
package control

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"ppsim/internal/state"
)

var (
	// ErrPaused is returned by Tick while the orchestrator is paused.
	ErrPaused = errors.New("orchestrator paused")
	// ErrStopped is returned once the orchestrator has stopped.
	ErrStopped = errors.New("orchestrator stopped")
)

// Status is the orchestrator's position in its state machine.
type Status int

const (
	Running Status = iota
	Paused
	// AwaitingChange means a request is queued for the next tick boundary.
	AwaitingChange
	Stopped
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case AwaitingChange:
		return "awaiting change"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Change outcomes reported to an Observer.
const (
	OutcomeRespawn  = "respawn"
	OutcomeInPlace  = "in_place"
	OutcomeNoop     = "noop"
	OutcomeRejected = "rejected"
	OutcomeRestored = "restored"
)

// Observer is notified from the orchestrator goroutine.
type Observer interface {
	ObserveTick(d time.Duration, population int)
	ObserveChange(outcome string)
}

// Orchestrator serialises every mutation of a State. Requests may arrive from
// any goroutine; they are handed over through single-slot channels where the
// latest submission replaces an undrained one, and applied only at tick
// boundaries.
type Orchestrator struct {
	state *state.State
	obs   Observer

	changes  chan state.Stative
	restores chan state.Snapshot
	respawn  atomic.Bool
	applied  atomic.Int64 // ID of the last drained change request

	mu     sync.Mutex
	status Status // Running, Paused or Stopped
	ticks  int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver registers an observer for ticks and change outcomes.
func WithObserver(o Observer) Option {
	return func(c *Orchestrator) { c.obs = o }
}

// StartPaused starts the orchestrator in the Paused state.
func StartPaused() Option {
	return func(c *Orchestrator) { c.status = Paused }
}

// New returns an orchestrator driving st.
func New(st *state.State, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		state:    st,
		changes:  make(chan state.Stative, 1),
		restores: make(chan state.Snapshot, 1),
		status:   Running,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the driven state for read access.
func (o *Orchestrator) State() *state.State { return o.state }

// RequestChange queues c for the next tick boundary without blocking. An
// earlier request that has not been applied yet is discarded.
func (o *Orchestrator) RequestChange(c state.Stative) {
	offer(o.changes, c)
}

// Applied returns the ID of the last change request taken off the queue,
// whatever its outcome. Requests replaced before a tick boundary are never
// reported.
func (o *Orchestrator) Applied() int64 { return o.applied.Load() }

// RequestRestore queues a full population replacement, e.g. a loaded file.
func (o *Orchestrator) RequestRestore(snap state.Snapshot) {
	offer(o.restores, snap)
}

// RequestRespawn asks for a fresh population under the current configuration.
func (o *Orchestrator) RequestRespawn() { o.respawn.Store(true) }

func offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Status reports the current state; Running turns into AwaitingChange while a
// request is queued.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	st := o.status
	o.mu.Unlock()
	if st == Running && o.pending() {
		return AwaitingChange
	}
	return st
}

func (o *Orchestrator) pending() bool {
	return len(o.changes) > 0 || len(o.restores) > 0 || o.respawn.Load()
}

// Ticks returns the number of completed ticks.
func (o *Orchestrator) Ticks() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ticks
}

// Pause suspends ticking. Queued requests stay queued until Flush or the
// next tick.
func (o *Orchestrator) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status == Stopped {
		return ErrStopped
	}
	o.status = Paused
	return nil
}

// Resume continues after Pause.
func (o *Orchestrator) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status == Stopped {
		return ErrStopped
	}
	o.status = Running
	return nil
}

// Toggle flips between Running and Paused.
func (o *Orchestrator) Toggle() error {
	if o.Status() == Paused {
		return o.Resume()
	}
	return o.Pause()
}

// Stop is terminal. It is observed at the next tick boundary; a tick in
// progress completes.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	o.status = Stopped
	o.mu.Unlock()
}

// Tick applies queued requests and then advances the simulation by one step.
func (o *Orchestrator) Tick() error {
	o.mu.Lock()
	st := o.status
	o.mu.Unlock()
	switch st {
	case Stopped:
		return ErrStopped
	case Paused:
		return ErrPaused
	}
	o.step()
	return nil
}

// StepOnce advances exactly one tick while paused.
func (o *Orchestrator) StepOnce() error {
	if o.Status() == Stopped {
		return ErrStopped
	}
	o.step()
	return nil
}

// Flush applies queued requests without stepping. It lets a paused view show
// parameter changes immediately.
func (o *Orchestrator) Flush() error {
	if o.Status() == Stopped {
		return ErrStopped
	}
	o.drain()
	return nil
}

func (o *Orchestrator) step() {
	o.drain()
	start := time.Now()
	o.state.Step()
	elapsed := time.Since(start)

	o.mu.Lock()
	o.ticks++
	stop := o.state.Config().Stop
	if stop > 0 && o.ticks >= stop {
		o.status = Stopped
	}
	o.mu.Unlock()

	if o.obs != nil {
		o.obs.ObserveTick(elapsed, o.state.Len())
	}
}

func (o *Orchestrator) drain() {
	select {
	case snap := <-o.restores:
		if err := o.state.Restore(snap); err != nil {
			o.observe(OutcomeRejected)
		} else {
			o.observe(OutcomeRestored)
		}
	default:
	}
	if o.respawn.Swap(false) {
		o.state.Respawn()
		o.observe(OutcomeRespawn)
	}
	select {
	case c := <-o.changes:
		o.apply(c)
	default:
	}
}

func (o *Orchestrator) apply(c state.Stative) {
	structural := o.state.Config().Structural(c)
	changed, err := o.state.Change(c)
	o.applied.Store(c.ID)
	switch {
	case err != nil:
		o.observe(OutcomeRejected)
	case !changed:
		o.observe(OutcomeNoop)
	case structural:
		o.observe(OutcomeRespawn)
	default:
		o.observe(OutcomeInPlace)
	}
}

func (o *Orchestrator) observe(outcome string) {
	if o.obs != nil {
		o.obs.ObserveChange(outcome)
	}
}

// Run ticks at tps until Stop or ctx cancellation. A non-positive tps runs as
// fast as possible. While paused, queued requests are still applied.
func (o *Orchestrator) Run(ctx context.Context, tps int) error {
	var tick <-chan time.Time
	if tps > 0 {
		t := time.NewTicker(time.Second / time.Duration(tps))
		defer t.Stop()
		tick = t.C
	}
	idle := time.NewTicker(10 * time.Millisecond)
	defer idle.Stop()

	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		err := o.Tick()
		switch {
		case errors.Is(err, ErrStopped):
			return nil
		case errors.Is(err, ErrPaused):
			_ = o.Flush()
			if tick == nil {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-idle.C:
				}
			}
		}
	}
}
