package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"ppsim/internal/control"
	"ppsim/internal/msglog"
	"ppsim/internal/state"
)

var _ control.Observer = (*Collector)(nil)

func TestCollectorCounts(t *testing.T) {
	c := New()
	c.ObserveTick(2*time.Millisecond, 40)
	c.ObserveTick(3*time.Millisecond, 50)
	c.ObserveChange(control.OutcomeRespawn)
	c.ObserveChange(control.OutcomeRespawn)
	c.ObserveChange(control.OutcomeNoop)

	if got := testutil.ToFloat64(c.ticks); got != 2 {
		t.Fatalf("expected 2 ticks, got %v", got)
	}
	if got := testutil.ToFloat64(c.population); got != 50 {
		t.Fatalf("expected population 50, got %v", got)
	}
	if got := testutil.ToFloat64(c.changes.WithLabelValues(control.OutcomeRespawn)); got != 2 {
		t.Fatalf("expected 2 respawns, got %v", got)
	}
	if got := testutil.ToFloat64(c.changes.WithLabelValues(control.OutcomeNoop)); got != 1 {
		t.Fatalf("expected 1 noop, got %v", got)
	}
}

func TestCollectorWithOrchestrator(t *testing.T) {
	cfg := state.DefaultConfig()
	cfg.Num = 30
	cfg.Stop = 5
	st, err := state.NewWithConfig(msglog.New(4), cfg)
	if err != nil {
		t.Fatal(err)
	}
	c := New()
	o := control.New(st, control.WithObserver(c))
	next := st.Stative()
	next.Speed = 2
	o.RequestChange(next)
	if err := o.Run(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(c.ticks); got != 5 {
		t.Fatalf("expected 5 ticks, got %v", got)
	}
	if got := testutil.ToFloat64(c.changes.WithLabelValues(control.OutcomeInPlace)); got != 1 {
		t.Fatalf("expected 1 in-place change, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := New()
	c.ObserveTick(time.Millisecond, 7)
	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"ppsim_ticks_total 1", "ppsim_population 7", "ppsim_tick_seconds_bucket"} {
		if !strings.Contains(string(body), name) {
			t.Fatalf("missing %q in exposition", name)
		}
	}
}
