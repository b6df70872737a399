package state

// Census summarises the neighbour counts of the last Step.
type Census struct {
	Population     int
	MeanNeighbours float64
	MaxNeighbours  uint32
	// Bands counts particles per density band of the normal coloring,
	// indexed by ColorGreen through ColorYellow.
	Bands [4]int
}

// Share returns the fraction of the population in band.
func (c Census) Share(band uint8) float64 {
	if c.Population == 0 || int(band) >= len(c.Bands) {
		return 0
	}
	return float64(c.Bands[band]) / float64(c.Population)
}

// Census counts the current population by density band.
func (s *State) Census() Census {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := Census{Population: s.store.Len()}
	var sum uint64
	for _, n := range s.store.N {
		sum += uint64(n)
		c.MaxNeighbours = max(c.MaxNeighbours, n)
		c.Bands[densityBand(n)]++
	}
	if c.Population > 0 {
		c.MeanNeighbours = float64(sum) / float64(c.Population)
	}
	return c
}
