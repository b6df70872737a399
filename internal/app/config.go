package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/BurntSushi/toml"

	"ppsim/internal/distribution"
	"ppsim/internal/state"
)

// Config represents the command-line and config-file parameters. Angles are
// in degrees.
type Config struct {
	Headless bool  `toml:"headless"`
	TPS      int   `toml:"tps"`
	Seed     int64 `toml:"seed"`
	Scale    int   `toml:"scale"`
	Workers  int   `toml:"workers"`

	Stop         int     `toml:"stop"`
	Num          int     `toml:"num"`
	Width        int     `toml:"width"`
	Height       int     `toml:"height"`
	Distribution string  `toml:"distribution"`
	Alpha        float64 `toml:"alpha"`
	Beta         float64 `toml:"beta"`
	Scope        float64 `toml:"scope"`
	Speed        float64 `toml:"speed"`
	Radius       float64 `toml:"radius"`
	Coloring     string  `toml:"coloring"`

	Load         string `toml:"load"`
	Save         string `toml:"save"`
	Archive        string `toml:"archive"`
	ArchiveEvery   int    `toml:"archive-every"`
	ArchiveRestore string `toml:"archive-restore"`
	MetricsAddr    string `toml:"metrics-addr"`
	LogCapacity    int    `toml:"log-capacity"`
	Debug          bool   `toml:"debug"`

	File string `toml:"-"`
}

// NewConfig returns a Config populated with the default simulation.
func NewConfig() *Config {
	d := state.DefaultConfig()
	return &Config{
		Headless:     !guiBuild,
		TPS:          60,
		Seed:         42,
		Scale:        1,
		Stop:         d.Stop,
		Num:          d.Num,
		Width:        d.Width,
		Height:       d.Height,
		Distribution: d.Distribution.String(),
		Alpha:        state.RadToDeg(d.Alpha),
		Beta:         state.RadToDeg(d.Beta),
		Scope:        d.Scope,
		Speed:        d.Speed,
		Radius:       d.Radius,
		Coloring:     d.Coloring.String(),
		ArchiveEvery: 1000,
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.BoolVar(&c.Headless, "headless", c.Headless, "run without a window")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second (0 = unpaced, headless only)")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for particle placement")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.Workers, "workers", c.Workers, "neighbour counting goroutines (0 = GOMAXPROCS)")

	fs.IntVar(&c.Stop, "stop", c.Stop, "stop after this many ticks (0 = never)")
	fs.IntVar(&c.Num, "num", c.Num, "number of particles")
	fs.IntVar(&c.Width, "width", c.Width, "world width")
	fs.IntVar(&c.Height, "height", c.Height, "world height")
	fs.StringVar(&c.Distribution, "distribution", c.Distribution, "initial placement: uniform, normal or perlin")
	fs.Float64Var(&c.Alpha, "alpha", c.Alpha, "fixed turn per tick in degrees")
	fs.Float64Var(&c.Beta, "beta", c.Beta, "turn per neighbour in degrees")
	fs.Float64Var(&c.Scope, "scope", c.Scope, "neighbourhood radius")
	fs.Float64Var(&c.Speed, "speed", c.Speed, "distance moved per tick")
	fs.Float64Var(&c.Radius, "radius", c.Radius, "drawn particle radius")
	fs.StringVar(&c.Coloring, "coloring", c.Coloring, "coloring: normal, density or heading")

	fs.StringVar(&c.Load, "load", c.Load, "state file to load at startup")
	fs.StringVar(&c.Save, "save", c.Save, "state file written by the save key and on exit")
	fs.StringVar(&c.Archive, "archive", c.Archive, "sqlite snapshot archive (empty = disabled)")
	fs.IntVar(&c.ArchiveEvery, "archive-every", c.ArchiveEvery, "ticks between archived snapshots")
	fs.StringVar(&c.ArchiveRestore, "archive-restore", c.ArchiveRestore, "start from the archived snapshot with this id, or the latest one under this label")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "serve prometheus metrics on this address")
	fs.IntVar(&c.LogCapacity, "log-capacity", c.LogCapacity, "messages kept in the on-screen log")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "echo log messages to stderr")
	fs.StringVar(&c.File, "config", c.File, "TOML file read before flags are applied")
}

// Parse builds a Config from defaults, the file named by -config and the
// flags in args, in increasing precedence.
func Parse(name string, args []string) (*Config, error) {
	cfg := NewConfig()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	cfg.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.File == "" {
		return cfg, nil
	}

	file := NewConfig()
	if _, err := toml.DecodeFile(cfg.File, file); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	file.File = cfg.File
	// Explicit flags win over the file.
	fs = flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	file.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return file, nil
}

// State converts the simulation fields to a validated state.Config.
func (c *Config) State() (state.Config, error) {
	kind, err := distribution.ParseKind(c.Distribution)
	if err != nil {
		return state.Config{}, err
	}
	coloring, err := state.ParseColoring(c.Coloring)
	if err != nil {
		return state.Config{}, err
	}
	sc := state.Config{
		Stop:         c.Stop,
		Num:          c.Num,
		Width:        c.Width,
		Height:       c.Height,
		Distribution: kind,
		Alpha:        state.DegToRad(c.Alpha),
		Beta:         state.DegToRad(c.Beta),
		Scope:        c.Scope,
		Speed:        c.Speed,
		Radius:       c.Radius,
		Coloring:     coloring,
	}
	if err := sc.Validate(); err != nil {
		return state.Config{}, err
	}
	return sc, nil
}

// Validate checks the fields that are not part of the simulation state.
func (c *Config) Validate() error {
	var errs []error
	if c.TPS < 0 {
		errs = append(errs, fmt.Errorf("tps must not be negative, got %d", c.TPS))
	}
	if c.Scale <= 0 {
		errs = append(errs, fmt.Errorf("scale must be positive, got %d", c.Scale))
	}
	if c.Archive != "" && c.ArchiveEvery <= 0 {
		errs = append(errs, fmt.Errorf("archive-every must be positive, got %d", c.ArchiveEvery))
	}
	if c.ArchiveRestore != "" && c.Archive == "" {
		errs = append(errs, errors.New("archive-restore needs -archive"))
	}
	if _, err := c.State(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// EchoLogger returns the logger domain messages are mirrored to.
func (c *Config) EchoLogger() *log.Logger {
	if !c.Debug {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "ppsim: ", log.LstdFlags)
}
