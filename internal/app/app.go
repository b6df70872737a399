// Package app wires a parsed Config into a running simulation: the message
// log, the State, the orchestrator, the optional metrics endpoint and snapshot
// archive, and the selected view.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strconv"
	"strings"
	"time"

	"ppsim/internal/archive"
	"ppsim/internal/control"
	"ppsim/internal/metrics"
	"ppsim/internal/msglog"
	"ppsim/internal/state"
	"ppsim/internal/stateio"
	"ppsim/internal/view"
)

// App holds everything a run needs. Build it with New and start it with Run.
type App struct {
	cfg    *Config
	logger *log.Logger

	Log   *msglog.Log
	State *state.State
	Orch  *control.Orchestrator

	metrics *metrics.Collector
	archive *archive.Store
}

// New validates cfg and builds the simulation. The state file named by
// cfg.Load, if any, replaces the initial population.
func New(cfg *Config, logger *log.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	sc, err := cfg.State()
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, logger: logger}
	a.Log = msglog.New(cfg.LogCapacity, msglog.WithEcho(cfg.EchoLogger()))
	a.State, err = state.NewWithConfig(a.Log, sc, state.WithSeed(cfg.Seed), state.WithWorkers(cfg.Workers))
	if err != nil {
		return nil, err
	}
	if cfg.Load != "" {
		if err := stateio.Load(a.State, cfg.Load); err != nil {
			return nil, err
		}
	}

	var opts []control.Option
	if cfg.MetricsAddr != "" {
		a.metrics = metrics.New()
		opts = append(opts, control.WithObserver(a.metrics))
	}
	if cfg.Archive != "" {
		a.archive, err = archive.Open(cfg.Archive)
		if err != nil {
			return nil, err
		}
	}
	if cfg.ArchiveRestore != "" {
		if err := a.restoreArchived(context.Background(), cfg.ArchiveRestore); err != nil {
			_ = a.Close()
			return nil, err
		}
	}
	// A positive -stop overrides the tick limit of a loaded or restored state.
	if (cfg.Load != "" || cfg.ArchiveRestore != "") && cfg.Stop > 0 {
		a.State.SetStop(cfg.Stop)
	}
	a.Orch = control.New(a.State, opts...)
	return a, nil
}

// Run starts the metrics endpoint and the view and blocks until the view
// returns. Resources are released before it returns.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if a.metrics != nil {
		srv, errc := a.metrics.Serve(a.cfg.MetricsAddr)
		a.logger.Printf("serving metrics on %s/metrics", a.cfg.MetricsAddr)
		go func() {
			for err := range errc {
				a.logger.Printf("metrics: %v", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	v, err := view.New(a.viewName(), view.Env{
		Orch:         a.Orch,
		TPS:          a.cfg.TPS,
		Scale:        a.cfg.Scale,
		Save:         a.cfg.Save,
		Load:         a.cfg.Load,
		Dir:          ".",
		Logger:       a.logger,
		Archive:      a.archive,
		ArchiveEvery: a.cfg.ArchiveEvery,
		Label:        a.label(),
	})
	if errors.Is(err, view.ErrUnknownView) && !a.cfg.Headless && !guiBuild {
		return fmt.Errorf("%w: %s", err, guiHint)
	}
	if err != nil {
		return err
	}
	return v.Run(ctx)
}

// Close releases the archive. It is safe to call more than once.
func (a *App) Close() error {
	if a.archive == nil {
		return nil
	}
	err := a.archive.Close()
	a.archive = nil
	return err
}

// restoreArchived replaces the population with an archived snapshot. ref is
// a snapshot id or a label, in which case the newest snapshot under it wins.
func (a *App) restoreArchived(ctx context.Context, ref string) error {
	var (
		snap  state.Snapshot
		entry archive.Entry
		err   error
	)
	if id, perr := strconv.ParseInt(ref, 10, 64); perr == nil {
		snap, entry, err = a.archive.Get(ctx, id)
	} else {
		snap, entry, err = a.archive.Latest(ctx, ref)
	}
	if errors.Is(err, archive.ErrNotFound) {
		return fmt.Errorf("archive %s: %q: %w (labels: %s)", a.archive.Path(), ref, err,
			strings.Join(a.archivedLabels(ctx), ", "))
	}
	if err != nil {
		return err
	}
	if err := a.State.Restore(snap); err != nil {
		return fmt.Errorf("restore snapshot %d: %w", entry.ID, err)
	}
	a.logger.Printf("restored snapshot %d (%s, tick %d) from %s", entry.ID, entry.Label, entry.Tick, a.archive.Path())
	return nil
}

func (a *App) archivedLabels(ctx context.Context) []string {
	entries, err := a.archive.List(ctx, "")
	if err != nil {
		return nil
	}
	var labels []string
	for _, e := range entries {
		if !slices.Contains(labels, e.Label) {
			labels = append(labels, e.Label)
		}
	}
	return labels
}

func (a *App) viewName() string {
	if a.cfg.Headless {
		return view.Headless
	}
	return view.Canvas
}

// label names the archived snapshots of this run after its motion law.
func (a *App) label() string {
	return fmt.Sprintf("%s-a%g-b%g-seed%d", a.cfg.Distribution, a.cfg.Alpha, a.cfg.Beta, a.cfg.Seed)
}
