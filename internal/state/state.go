// Package state owns the particle population and its configuration and
// exposes the validated transitions between configurations.
//
// A State has one writer. Every exported mutator takes the write lock for its
// whole duration, so readers going through Read or Snapshot observe either the
// population before a transition or the one after it, never a partial resize.
package state

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"ppsim/internal/core"
	"ppsim/internal/distribution"
	"ppsim/internal/msglog"
	"ppsim/internal/particle"
	rng "ppsim/pkg/core"
)

// Messages pushed to the log by Change.
const (
	MsgRespawn = "Changing state and respawning."
	MsgInPlace = "Changing state without respawn."
)

// State is the configuration plus population aggregate.
type State struct {
	mu sync.RWMutex

	log *msglog.Log
	rng *rng.RNG

	cfg          Config
	scopeSquared float64

	store   *particle.Store
	grid    *core.CellGrid
	workers int
}

// Option configures a State at construction.
type Option func(*State)

// WithSeed makes respawns reproducible.
func WithSeed(seed int64) Option {
	return func(s *State) { s.rng = rng.NewRNG(seed) }
}

// WithWorkers bounds the goroutines used to count neighbours in Step.
func WithWorkers(n int) Option {
	return func(s *State) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New returns a State with the default configuration and a fresh population.
// The log is shared: State writes to it but does not own it.
func New(log *msglog.Log, opts ...Option) *State {
	s, _ := NewWithConfig(log, DefaultConfig(), opts...)
	return s
}

// NewWithConfig returns a State configured from cfg and a fresh population.
func NewWithConfig(log *msglog.Log, cfg Config, opts ...Option) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = msglog.New(0)
	}
	s := &State{
		log:     log,
		rng:     rng.NewRNG(1),
		store:   particle.NewStore(0),
		grid:    core.NewCellGrid(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.adopt(cfg)
	s.respawnLocked()
	return s, nil
}

// Respawn regenerates every particle under the current configuration.
func (s *State) Respawn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.respawnLocked()
}

// Clear empties the population. The configuration is untouched.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Clear()
}

// Change applies the candidate configuration c. It reports false with a nil
// error when c matches the current configuration, and false with an error
// wrapping ErrInvalidStative when c is rejected; in both cases nothing changes.
// A change of population, world bounds or distribution respawns every
// particle; any other change is applied in place.
func (s *State) Change(c Stative) (bool, error) {
	if err := c.Validate(); err != nil {
		s.log.Push(msglog.Warning, fmt.Sprintf("Rejecting state change: %v.", err))
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	structural := s.cfg.Structural(c)
	if !structural && !s.cfg.cosmetic(c) {
		return false, nil
	}
	s.adopt(s.cfg.with(c))
	if structural {
		s.respawnLocked()
		s.log.Push(msglog.Info, MsgRespawn)
		return true, nil
	}
	s.recolorLocked()
	s.log.Push(msglog.Info, MsgInPlace)
	return true, nil
}

// SetStop changes the tick limit; zero means unbounded.
func (s *State) SetStop(n int) {
	if n < 0 {
		n = 0
	}
	s.mu.Lock()
	s.cfg.Stop = n
	s.mu.Unlock()
}

// Config returns a copy of the configuration.
func (s *State) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Stative returns the no-op proposal for the current configuration.
func (s *State) Stative() Stative {
	return s.Config().Stative(0)
}

// ScopeSquared returns the cached square of the scope.
func (s *State) ScopeSquared() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scopeSquared
}

// Num returns the configured population.
func (s *State) Num() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Num
}

// Len returns the number of stored particles. It equals Num except after Clear.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Len()
}

// Log returns the shared message log.
func (s *State) Log() *msglog.Log { return s.log }

// Frame is a read-only view handed to Read callbacks. It must not be retained
// or modified after the callback returns.
type Frame struct {
	Config       Config
	ScopeSquared float64
	Particles    *particle.Store
}

// Read runs fn under the read lock.
func (s *State) Read(fn func(Frame)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(Frame{Config: s.cfg, ScopeSquared: s.scopeSquared, Particles: s.store})
}

// Snapshot is a deep copy of the configuration and population.
type Snapshot struct {
	Config    Config              `json:"config"`
	Particles []particle.Particle `json:"particles"`
}

// Snapshot copies the state out so it can be written without holding the lock.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Config: s.cfg, Particles: s.store.Particles()}
}

// Restore replaces configuration and population with snap. Num follows the
// particle count; positions and headings are wrapped into range.
func (s *State) Restore(snap Snapshot) error {
	cfg := snap.Config
	cfg.Num = len(snap.Particles)
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.adopt(cfg)
	s.store.Clear()
	s.store.Resize(cfg.Num)
	w, h := float64(cfg.Width), float64(cfg.Height)
	for i, p := range snap.Particles {
		p.X = distribution.Wrap(p.X, w)
		p.Y = distribution.Wrap(p.Y, h)
		p.Phi = distribution.Wrap(p.Phi, 2*math.Pi)
		s.store.Set(i, p)
	}
	s.recolorLocked()
	s.log.Push(msglog.Info, fmt.Sprintf("Restored state of %d particles.", cfg.Num))
	return nil
}

// PlaceFunc returns a placement function for cfg backed by its own RNG, for
// callers that build particles outside the lock.
func PlaceFunc(cfg Config, seed int64) func() particle.Particle {
	r := rng.NewRNG(seed).Source()
	w, h := float64(cfg.Width), float64(cfg.Height)
	return func() particle.Particle {
		x, y, phi := distribution.Place(cfg.Distribution, w, h, r)
		return particle.Particle{X: x, Y: y, Phi: phi}
	}
}

func (s *State) adopt(cfg Config) {
	s.cfg = cfg
	s.scopeSquared = cfg.Scope * cfg.Scope
}

func (s *State) respawnLocked() {
	n := s.cfg.Num
	s.store.Clear()
	s.store.Resize(n)
	w, h := float64(s.cfg.Width), float64(s.cfg.Height)
	r := s.rng.Source()
	for i := 0; i < n; i++ {
		x, y, phi := distribution.Place(s.cfg.Distribution, w, h, r)
		s.store.X[i] = x
		s.store.Y[i] = y
		s.store.Phi[i] = phi
	}
	s.recolorLocked()
}
