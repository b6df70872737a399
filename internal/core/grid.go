package core

import "math"

// CellGrid buckets particles into square cells at least as wide as the
// neighbourhood radius so that a radius query only visits the 3x3 block
// around a cell. Buckets are intrusive linked lists over particle indices.
type CellGrid struct {
	Cols, Rows   int
	CellW, CellH float64

	heads []int32
	next  []int32
}

// NewCellGrid returns an empty grid; call Rebuild before querying.
func NewCellGrid() *CellGrid { return &CellGrid{} }

// Rebuild sorts the given positions into cells for a w x h torus with cells of
// at least radius. col and row receive each particle's cell and must be as long
// as xs.
func (g *CellGrid) Rebuild(xs, ys []float64, w, h, radius float64, col, row []int32) {
	g.Cols = cellsAlong(w, radius)
	g.Rows = cellsAlong(h, radius)
	g.CellW = w / float64(g.Cols)
	g.CellH = h / float64(g.Rows)

	total := g.Cols * g.Rows
	if cap(g.heads) < total {
		g.heads = make([]int32, total)
	}
	g.heads = g.heads[:total]
	for i := range g.heads {
		g.heads[i] = -1
	}
	if cap(g.next) < len(xs) {
		g.next = make([]int32, len(xs))
	}
	g.next = g.next[:len(xs)]

	for i := range xs {
		c, r := g.Wrap(int(xs[i]/g.CellW), int(ys[i]/g.CellH))
		col[i], row[i] = int32(c), int32(r)
		idx := g.Index(c, r)
		g.next[i] = g.heads[idx]
		g.heads[idx] = int32(i)
	}
}

// Index returns the linear cell index for coordinates (c, r).
func (g *CellGrid) Index(c, r int) int { return r*g.Cols + c }

// Wrap applies toroidal wrapping to the provided cell coordinates.
func (g *CellGrid) Wrap(c, r int) (int, int) {
	c = (c%g.Cols + g.Cols) % g.Cols
	r = (r%g.Rows + g.Rows) % g.Rows
	return c, r
}

// Neighborhood calls fn for every particle in the 3x3 block of cells around
// (c, r). Each cell is visited once even when the grid is narrower than three.
func (g *CellGrid) Neighborhood(c, r int, fn func(j int)) {
	var cs, rs [3]int
	nc := span(c, g.Cols, &cs)
	nr := span(r, g.Rows, &rs)
	for _, rr := range rs[:nr] {
		for _, cc := range cs[:nc] {
			for j := g.heads[g.Index(cc, rr)]; j >= 0; j = g.next[j] {
				fn(int(j))
			}
		}
	}
}

func span(v, n int, out *[3]int) int {
	if n < 3 {
		for i := 0; i < n; i++ {
			out[i] = i
		}
		return n
	}
	for i := 0; i < 3; i++ {
		out[i] = ((v+i-1)%n + n) % n
	}
	return 3
}

// maxCellsAlong caps the grid for tiny radii; wider cells stay correct.
const maxCellsAlong = 1024

func cellsAlong(size, radius float64) int {
	if radius <= 0 || size <= 0 {
		return 1
	}
	n := math.Floor(size / radius)
	if n < 1 {
		return 1
	}
	return int(math.Min(n, maxCellsAlong))
}
