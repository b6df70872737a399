// Package particle holds per-particle attributes as flat parallel arrays.
package particle

// Particle is the value form of one Store slot, used for snapshots and file I/O.
type Particle struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Phi   float64 `json:"phi"`
	Size  uint32  `json:"size"`
	Color uint8   `json:"color,omitempty"`
	N     uint32  `json:"n,omitempty"`
	L     uint32  `json:"l,omitempty"`
	R     uint32  `json:"r,omitempty"`
}

// Store keeps every attribute in its own slice. All slices always share one
// length; callers index them directly in hot loops.
type Store struct {
	X   []float64 // x position
	Y   []float64 // y position
	Phi []float64 // heading in radians

	Color []uint8  // palette index
	Size  []uint32 // cluster size
	N     []uint32 // neighbours within scope
	L     []uint32 // neighbours on the left
	R     []uint32 // neighbours on the right

	Col []int32 // grid column
	Row []int32 // grid row
}

// NewStore allocates a store holding n zeroed particles.
func NewStore(n int) *Store {
	s := &Store{}
	s.Resize(n)
	return s
}

// Len reports the particle count.
func (s *Store) Len() int { return len(s.X) }

// Resize sets every array to length n. Elements below min(old, n) keep their
// values, newly exposed slots are zeroed.
func (s *Store) Resize(n int) {
	if n < 0 {
		n = 0
	}
	s.X = resize(s.X, n)
	s.Y = resize(s.Y, n)
	s.Phi = resize(s.Phi, n)
	s.Color = resize(s.Color, n)
	s.Size = resize(s.Size, n)
	s.N = resize(s.N, n)
	s.L = resize(s.L, n)
	s.R = resize(s.R, n)
	s.Col = resize(s.Col, n)
	s.Row = resize(s.Row, n)
}

// Clear empties every array while keeping the allocations.
func (s *Store) Clear() { s.Resize(0) }

// Consistent reports whether every array has the same length.
func (s *Store) Consistent() bool {
	n := len(s.X)
	return len(s.Y) == n && len(s.Phi) == n &&
		len(s.Color) == n && len(s.Size) == n &&
		len(s.N) == n && len(s.L) == n && len(s.R) == n &&
		len(s.Col) == n && len(s.Row) == n
}

// At returns a copy of particle i.
func (s *Store) At(i int) Particle {
	return Particle{
		X:     s.X[i],
		Y:     s.Y[i],
		Phi:   s.Phi[i],
		Size:  s.Size[i],
		Color: s.Color[i],
		N:     s.N[i],
		L:     s.L[i],
		R:     s.R[i],
	}
}

// Set overwrites slot i. Grid coordinates are left for the next step.
func (s *Store) Set(i int, p Particle) {
	s.X[i] = p.X
	s.Y[i] = p.Y
	s.Phi[i] = p.Phi
	s.Size[i] = p.Size
	s.Color[i] = p.Color
	s.N[i] = p.N
	s.L[i] = p.L
	s.R[i] = p.R
}

// Particles copies the whole store out as values.
func (s *Store) Particles() []Particle {
	out := make([]Particle, s.Len())
	for i := range out {
		out[i] = s.At(i)
	}
	return out
}

func resize[T any](buf []T, n int) []T {
	old := len(buf)
	if n <= cap(buf) {
		buf = buf[:n]
		if n > old {
			clear(buf[old:])
		}
		return buf
	}
	grown := make([]T, n)
	copy(grown, buf)
	return grown
}
