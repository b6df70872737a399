package state

import (
	"testing"

	"ppsim/internal/msglog"
	"ppsim/internal/particle"
)

func TestCensusCountsNeighbours(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Num = 3
	cfg.Width, cfg.Height = 100, 100
	cfg.Scope = 10
	cfg.Speed = 0
	st, err := NewWithConfig(msglog.New(4), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Restore(Snapshot{Config: cfg, Particles: []particle.Particle{
		{X: 50, Y: 50}, {X: 51, Y: 50}, {X: 50, Y: 51},
	}}); err != nil {
		t.Fatal(err)
	}
	st.Step()

	c := st.Census()
	if c.Population != 3 {
		t.Fatalf("population %d, want 3", c.Population)
	}
	if c.MeanNeighbours != 2 || c.MaxNeighbours != 2 {
		t.Fatalf("expected two neighbours each, got mean %v max %d", c.MeanNeighbours, c.MaxNeighbours)
	}
	if c.Bands[ColorGreen] != 3 || c.Share(ColorGreen) != 1 {
		t.Fatalf("all particles should be in the sparse band: %+v", c.Bands)
	}
}

func TestCensusEmpty(t *testing.T) {
	st := New(msglog.New(4), WithSeed(1))
	st.Clear()
	c := st.Census()
	if c.Population != 0 || c.MeanNeighbours != 0 || c.Share(ColorYellow) != 0 {
		t.Fatalf("empty census should be zero, got %+v", c)
	}
}
