package state

import (
	"math"

	"golang.org/x/sync/errgroup"

	"ppsim/internal/distribution"
)

// Density bands of the normal coloring, in neighbours within scope.
const (
	bandBrown  = 12
	bandBlue   = 15
	bandYellow = 35
)

// Palette indices of the normal coloring.
const (
	ColorGreen uint8 = iota
	ColorBrown
	ColorBlue
	ColorYellow
)

// HeadingSectors is the number of color buckets of the heading coloring.
const HeadingSectors = 8

// minChunk keeps tiny populations on one goroutine.
const minChunk = 256

// Step advances every particle by one tick of the motion law. Each particle
// counts the neighbours within scope on its left (L) and right (R), turns by
// alpha + beta*N*sign(R-L) with N = L+R, and moves speed units along its new
// heading on a toroidal world. Counting reads a consistent snapshot of the
// positions; all moves happen afterwards.
func (s *State) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.store
	n := st.Len()
	if n == 0 {
		return
	}
	w, h := float64(s.cfg.Width), float64(s.cfg.Height)
	s.grid.Rebuild(st.X, st.Y, w, h, s.cfg.Scope, st.Col, st.Row)
	s.countNeighbours(w, h)

	alpha, beta, speed := s.cfg.Alpha, s.cfg.Beta, s.cfg.Speed
	for i := 0; i < n; i++ {
		turn := alpha
		if st.R[i] > st.L[i] {
			turn += beta * float64(st.N[i])
		} else if st.R[i] < st.L[i] {
			turn -= beta * float64(st.N[i])
		}
		phi := distribution.Wrap(st.Phi[i]+turn, 2*math.Pi)
		sin, cos := math.Sincos(phi)
		st.Phi[i] = phi
		st.X[i] = distribution.Wrap(st.X[i]+speed*cos, w)
		st.Y[i] = distribution.Wrap(st.Y[i]+speed*sin, h)
	}
	s.recolorLocked()
}

func (s *State) countNeighbours(w, h float64) {
	n := s.store.Len()
	chunk := (n + s.workers - 1) / s.workers
	if chunk < minChunk {
		chunk = minChunk
	}
	var g errgroup.Group
	g.SetLimit(s.workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			s.countRange(lo, hi, w, h)
			return nil
		})
	}
	_ = g.Wait()
}

// countRange only writes N, L and R of particles in [lo, hi).
func (s *State) countRange(lo, hi int, w, h float64) {
	st := s.store
	r2 := s.scopeSquared
	for i := lo; i < hi; i++ {
		var left, right uint32
		if r2 > 0 {
			xi, yi := st.X[i], st.Y[i]
			sin, cos := math.Sincos(st.Phi[i])
			s.grid.Neighborhood(int(st.Col[i]), int(st.Row[i]), func(j int) {
				if j == i {
					return
				}
				dx := torusDelta(st.X[j]-xi, w)
				dy := torusDelta(st.Y[j]-yi, h)
				if dx*dx+dy*dy > r2 {
					return
				}
				if cos*dy-sin*dx > 0 {
					left++
				} else {
					right++
				}
			})
		}
		st.L[i], st.R[i], st.N[i] = left, right, left+right
	}
}

// torusDelta folds a coordinate difference into [-size/2, size/2].
func torusDelta(d, size float64) float64 {
	if d > size/2 {
		return d - size
	}
	if d < -size/2 {
		return d + size
	}
	return d
}

func (s *State) recolorLocked() {
	st := s.store
	switch s.cfg.Coloring {
	case ColoringDensity:
		for i, n := range st.N {
			st.Color[i] = uint8(min(n, 255))
		}
	case ColoringHeading:
		for i, phi := range st.Phi {
			sector := int(phi / (2 * math.Pi) * HeadingSectors)
			st.Color[i] = uint8(min(sector, HeadingSectors-1))
		}
	default:
		for i, n := range st.N {
			st.Color[i] = densityBand(n)
		}
	}
}

func densityBand(n uint32) uint8 {
	switch {
	case n > bandYellow:
		return ColorYellow
	case n > bandBlue:
		return ColorBlue
	case n > bandBrown:
		return ColorBrown
	}
	return ColorGreen
}
