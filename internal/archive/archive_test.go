package archive

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"ppsim/internal/msglog"
	"ppsim/internal/state"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs", "archive.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func snapshot(t *testing.T, n int) state.Snapshot {
	t.Helper()
	cfg := state.DefaultConfig()
	cfg.Num = n
	st, err := state.NewWithConfig(msglog.New(4), cfg, state.WithSeed(9))
	if err != nil {
		t.Fatal(err)
	}
	st.Step()
	return st.Snapshot()
}

func TestSaveLatestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	first := snapshot(t, 10)
	second := snapshot(t, 20)
	if _, err := s.Save(ctx, "run", 1, first); err != nil {
		t.Fatal(err)
	}
	id, err := s.Save(ctx, "run", 2, second)
	if err != nil {
		t.Fatal(err)
	}

	got, e, err := s.Latest(ctx, "run")
	if err != nil {
		t.Fatal(err)
	}
	if e.ID != id || e.Tick != 2 || e.Num != 20 || e.Label != "run" {
		t.Fatalf("unexpected entry %+v", e)
	}
	if got.Config != second.Config || len(got.Particles) != len(second.Particles) {
		t.Fatal("latest snapshot does not match the saved one")
	}
	for i := range got.Particles {
		if got.Particles[i] != second.Particles[i] {
			t.Fatalf("particle %d: %+v != %+v", i, got.Particles[i], second.Particles[i])
		}
	}
}

func TestLatestNotFound(t *testing.T) {
	s := openStore(t)
	if _, _, err := s.Latest(context.Background(), "nothing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := s.Get(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListFiltersByLabel(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	snap := snapshot(t, 5)
	for i, label := range []string{"a", "b", "a"} {
		if _, err := s.Save(ctx, label, i, snap); err != nil {
			t.Fatal(err)
		}
	}
	all, err := s.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	as, err := s.List(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(as) != 2 || as[0].Tick != 0 || as[1].Tick != 2 {
		t.Fatalf("unexpected entries %+v", as)
	}
}

func TestRestoreFromArchive(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	snap := snapshot(t, 12)
	if _, err := s.Save(ctx, "run", 3, snap); err != nil {
		t.Fatal(err)
	}
	got, _, err := s.Latest(ctx, "run")
	if err != nil {
		t.Fatal(err)
	}
	st := state.New(msglog.New(4))
	if err := st.Restore(got); err != nil {
		t.Fatal(err)
	}
	if st.Num() != 12 {
		t.Fatalf("expected 12 particles, got %d", st.Num())
	}
}
