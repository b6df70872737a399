package app

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"ppsim/internal/archive"
	"ppsim/internal/msglog"
	"ppsim/internal/state"
	"ppsim/internal/stateio"
	"ppsim/internal/view"
)

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func smallConfig() *Config {
	cfg := NewConfig()
	cfg.Headless = true
	cfg.TPS = 0
	cfg.Num = 60
	cfg.Width, cfg.Height = 200, 200
	cfg.Stop = 5
	return cfg
}

func TestRunHeadlessToStopAndSave(t *testing.T) {
	cfg := smallConfig()
	cfg.Save = filepath.Join(t.TempDir(), "out.txt")
	a, err := New(cfg, quiet())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if got := a.Orch.Ticks(); got != 5 {
		t.Fatalf("expected 5 ticks, got %d", got)
	}
	snap, err := stateio.Read(cfg.Save, state.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Particles) != 60 || snap.Config.Width != 200 {
		t.Fatalf("unexpected saved state: %d particles, width %d", len(snap.Particles), snap.Config.Width)
	}
}

func TestNewLoadsStateFile(t *testing.T) {
	src, err := state.NewWithConfig(msglog.New(4), state.Config{
		Num: 30, Width: 120, Height: 80, Scope: 10, Speed: 1, Radius: 1,
	}, state.WithSeed(3))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "in.txt")
	if err := stateio.Save(src, path); err != nil {
		t.Fatal(err)
	}

	cfg := smallConfig()
	cfg.Load = path
	cfg.Stop = 7
	a, err := New(cfg, quiet())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	got := a.State.Config()
	if got.Num != 30 || got.Width != 120 || got.Height != 80 {
		t.Fatalf("loaded config not adopted: %+v", got)
	}
	if got.Stop != 7 {
		t.Fatalf("stop flag should override the file, got %d", got.Stop)
	}
	front, ok := a.Log.Front()
	if !ok || front.Text != "Restored state of 30 particles." {
		t.Fatalf("unexpected log front %+v", front)
	}
}

func TestNewFailsOnMissingStateFile(t *testing.T) {
	cfg := smallConfig()
	cfg.Load = filepath.Join(t.TempDir(), "missing.txt")
	if _, err := New(cfg, quiet()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Num = 0
	if _, err := New(cfg, quiet()); !errors.Is(err, state.ErrInvalidStative) {
		t.Fatalf("expected invalid state error, got %v", err)
	}
}

func TestRunArchivesSnapshots(t *testing.T) {
	cfg := smallConfig()
	cfg.Archive = filepath.Join(t.TempDir(), "runs.db")
	cfg.ArchiveEvery = 2
	cfg.Stop = 6
	a, err := New(cfg, quiet())
	if err != nil {
		t.Fatal(err)
	}
	label := a.label()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatal(err)
	}

	store, err := archive.Open(cfg.Archive)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	entries, err := store.List(context.Background(), label)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatal("expected at least one archived snapshot")
	}
	if entries[0].Num != 60 {
		t.Fatalf("archived population %d, want 60", entries[0].Num)
	}
}

func TestCanvasWithoutGUIBuild(t *testing.T) {
	if guiBuild {
		t.Skip("canvas is compiled in")
	}
	cfg := smallConfig()
	cfg.Headless = false
	a, err := New(cfg, quiet())
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Run(context.Background()); !errors.Is(err, view.ErrUnknownView) {
		t.Fatalf("expected unknown view error, got %v", err)
	}
}

func archivedState(t *testing.T, path, label string, n int) int64 {
	t.Helper()
	src, err := state.NewWithConfig(msglog.New(4), state.Config{
		Num: n, Width: 150, Height: 90, Scope: 10, Speed: 1, Radius: 1,
	}, state.WithSeed(9))
	if err != nil {
		t.Fatal(err)
	}
	store, err := archive.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	id, err := store.Save(context.Background(), label, 12, src.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestNewRestoresLatestUnderLabel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	archivedState(t, path, "first", 20)
	archivedState(t, path, "first", 40)

	cfg := smallConfig()
	cfg.Archive = path
	cfg.ArchiveRestore = "first"
	a, err := New(cfg, quiet())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	got := a.State.Config()
	if got.Num != 40 || got.Width != 150 || got.Height != 90 {
		t.Fatalf("latest snapshot not restored: %+v", got)
	}
	if got.Stop != cfg.Stop {
		t.Fatalf("stop flag should override the snapshot, got %d", got.Stop)
	}
}

func TestNewRestoresByID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	id := archivedState(t, path, "first", 25)
	archivedState(t, path, "first", 35)

	cfg := smallConfig()
	cfg.Archive = path
	cfg.ArchiveRestore = strconv.FormatInt(id, 10)
	a, err := New(cfg, quiet())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	if got := a.State.Num(); got != 25 {
		t.Fatalf("expected snapshot %d with 25 particles, got %d", id, got)
	}
}

func TestNewRestoreUnknownLabel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	archivedState(t, path, "known", 10)

	cfg := smallConfig()
	cfg.Archive = path
	cfg.ArchiveRestore = "missing"
	_, err := New(cfg, quiet())
	if !errors.Is(err, archive.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !strings.Contains(err.Error(), "known") {
		t.Fatalf("error should list the stored labels: %v", err)
	}
}
