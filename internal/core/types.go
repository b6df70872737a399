package core

// Size describes the dimensions of the simulated world.
type Size struct {
	W int
	H int
}

// Area returns W*H, or zero for a degenerate size.
func (s Size) Area() int {
	if s.W <= 0 || s.H <= 0 {
		return 0
	}
	return s.W * s.H
}
