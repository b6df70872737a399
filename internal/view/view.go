// Package view holds the front ends that drive an orchestrator: a headless
// runner and, in builds with the ebiten tag, an interactive canvas.
package view

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"ppsim/internal/archive"
	"ppsim/internal/control"
)

// Names of the built-in views.
const (
	Headless = "headless"
	Canvas   = "canvas"
)

// ErrUnknownView is returned by New for a name nothing registered.
var ErrUnknownView = errors.New("unknown view")

// Env is what a view gets to work with.
type Env struct {
	Orch *control.Orchestrator

	TPS    int
	Scale  int
	Save   string // state file written on demand and on exit
	Load   string // state file read by the load key
	Dir    string // screenshot directory
	Logger *log.Logger

	Archive      *archive.Store
	ArchiveEvery int
	Label        string
}

// View runs until ctx is done, the orchestrator stops or the user quits.
type View interface {
	Run(ctx context.Context) error
}

// Factory constructs a View.
type Factory func(env Env) (View, error)

var views = map[string]Factory{}

// Register adds a view factory under the provided name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	views[name] = f
}

// Names lists the registered views.
func Names() []string {
	names := make([]string, 0, len(views))
	for n := range views {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New builds the view registered under name.
func New(name string, env Env) (View, error) {
	f, ok := views[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (have %v)", ErrUnknownView, name, Names())
	}
	if env.Orch == nil {
		return nil, errors.New("view: nil orchestrator")
	}
	if env.Logger == nil {
		env.Logger = log.Default()
	}
	return f(env)
}
