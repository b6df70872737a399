// Package stateio reads and writes the plain-text state file.
//
// The first line holds the scalar configuration
//
//	stop width height distribution scope speed alpha beta
//
// and every following line one particle as "x y phi size". Tokens are read in
// order; the first missing or malformed token leaves it and the rest of its
// line at the prior value.
package stateio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"ppsim/internal/distribution"
	"ppsim/internal/particle"
	"ppsim/internal/state"
)

// FallbackPopulation is placed when a file holds no particles.
const FallbackPopulation = 1000

// placeSeed seeds the generator that fills in missing particle fields.
const placeSeed = 1

// Read parses the file at path on top of base. The returned snapshot has not
// been applied to any State.
func Read(path string, base state.Config) (state.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return state.Snapshot{}, fmt.Errorf("open state file: %w", err)
	}
	defer f.Close()
	snap, err := Decode(f, base)
	if err != nil {
		return state.Snapshot{}, fmt.Errorf("read %s: %w", path, err)
	}
	return snap, nil
}

// Decode parses a state file from r on top of base.
func Decode(r io.Reader, base state.Config) (state.Snapshot, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	cfg := base
	header := false
	var place func() particle.Particle
	var ps []particle.Particle

	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		// The first line is the header even when it is blank.
		if !header {
			header = true
			cfg = decodeHeader(fields, cfg)
			place = state.PlaceFunc(cfg, placeSeed)
			continue
		}
		if len(fields) == 0 {
			continue
		}
		ps = append(ps, decodeParticle(fields, place()))
	}
	if err := sc.Err(); err != nil {
		return state.Snapshot{}, err
	}

	if len(ps) == 0 {
		if place == nil {
			place = state.PlaceFunc(cfg, placeSeed)
		}
		ps = make([]particle.Particle, FallbackPopulation)
		for i := range ps {
			ps[i] = place()
		}
	}
	cfg.Num = len(ps)
	return state.Snapshot{Config: cfg, Particles: ps}, nil
}

// tokens walks a line, stopping at the first field fn rejects.
type tokens []string

func (t tokens) each(fns ...func(string) bool) {
	for i, fn := range fns {
		if i >= len(t) || !fn(t[i]) {
			return
		}
	}
}

func intInto(dst *int) func(string) bool {
	return func(s string) bool {
		v, err := strconv.Atoi(s)
		if err != nil {
			return false
		}
		*dst = v
		return true
	}
}

func floatInto(dst *float64) func(string) bool {
	return func(s string) bool {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return false
		}
		*dst = v
		return true
	}
}

func decodeHeader(fields []string, cfg state.Config) state.Config {
	dist := int(cfg.Distribution)
	tokens(fields).each(
		intInto(&cfg.Stop),
		intInto(&cfg.Width),
		intInto(&cfg.Height),
		func(s string) bool {
			if !intInto(&dist)(s) {
				return false
			}
			cfg.Distribution = distribution.Kind(dist)
			return true
		},
		floatInto(&cfg.Scope),
		floatInto(&cfg.Speed),
		floatInto(&cfg.Alpha),
		floatInto(&cfg.Beta),
	)
	return cfg
}

func decodeParticle(fields []string, p particle.Particle) particle.Particle {
	tokens(fields).each(
		floatInto(&p.X),
		floatInto(&p.Y),
		floatInto(&p.Phi),
		func(s string) bool {
			v, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				return false
			}
			p.Size = uint32(v)
			return true
		},
	)
	return p
}

// Encode writes snap in the state file format.
func Encode(w io.Writer, snap state.Snapshot) error {
	bw := bufio.NewWriter(w)
	c := snap.Config
	fmt.Fprintf(bw, "%d %d %d %d %s %s %s %s\n",
		c.Stop, c.Width, c.Height, int(c.Distribution),
		ftoa(c.Scope), ftoa(c.Speed), ftoa(c.Alpha), ftoa(c.Beta))
	for _, p := range snap.Particles {
		fmt.Fprintf(bw, "%s %s %s %d\n", ftoa(p.X), ftoa(p.Y), ftoa(p.Phi), p.Size)
	}
	return bw.Flush()
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// Load reads path and replaces the State's configuration and population. The
// State is left untouched when the file cannot be read or is rejected.
func Load(st *state.State, path string) error {
	snap, err := Read(path, st.Config())
	if err != nil {
		return err
	}
	return st.Restore(snap)
}

// Save writes a snapshot of st to path. The State lock is released before any
// byte is written.
func Save(st *state.State, path string) error {
	return Write(path, st.Snapshot())
}

// Write stores snap at path, replacing any existing file.
func Write(path string, snap state.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}
	if err := Encode(f, snap); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
