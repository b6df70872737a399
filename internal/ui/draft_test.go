package ui

import (
	"strings"
	"testing"
	"time"

	"ppsim/internal/control"
	"ppsim/internal/msglog"
	"ppsim/internal/state"
)

type captured struct {
	got     []state.Stative
	applied int64
}

func (c *captured) RequestChange(s state.Stative) { c.got = append(c.got, s) }
func (c *captured) Applied() int64 { return c.applied }

func TestDraftAccumulatesBetweenTicks(t *testing.T) {
	req := &captured{}
	d := NewDraft(req)
	live := state.DefaultConfig().Stative(0)
	d.Sync(live)

	d.Adjust("num", 1)
	d.Sync(live) // state has not drained yet
	d.Adjust("num", 1)

	if len(req.got) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(req.got))
	}
	if req.got[1].Num != live.Num+200 {
		t.Fatalf("second request should build on the first, got %d", req.got[1].Num)
	}
	if req.got[0].ID == req.got[1].ID {
		t.Fatal("requests should carry distinct ids")
	}

	adopted := req.got[1]
	adopted.ID = 0
	d.Sync(adopted)
	if d.Pending() {
		t.Fatal("draft should settle once the state adopts it")
	}
}

func TestDraftGivesUpOnRejectedRequest(t *testing.T) {
	d := NewDraft(&captured{})
	live := state.DefaultConfig().Stative(0)
	d.Sync(live)
	d.Adjust("scope", 1)
	for i := 0; i < settleFrames; i++ {
		d.Sync(live)
	}
	if d.Pending() || d.Value() != live {
		t.Fatal("draft should fall back to the live configuration")
	}
}

func TestDraftSettlesOnceDrained(t *testing.T) {
	req := &captured{}
	d := NewDraft(req)
	live := state.DefaultConfig().Stative(0)
	d.Sync(live)
	d.Adjust("num", 1)
	d.Sync(live)
	if !d.Pending() {
		t.Fatal("draft should wait while its request is queued")
	}

	req.applied = req.got[0].ID
	d.Sync(live)
	if d.Pending() || d.Value() != live {
		t.Fatal("a drained but unadopted request should fall back to the live configuration at once")
	}
}

func TestDraftIgnoresNoops(t *testing.T) {
	req := &captured{}
	d := NewDraft(req)
	s := state.DefaultConfig().Stative(0)
	s.Num = 1
	d.Sync(s)
	if d.Adjust("num", -1) || d.Adjust("bogus", 1) {
		t.Fatal("clamped or unknown adjustments must not submit")
	}
	if len(req.got) != 0 {
		t.Fatalf("unexpected requests %v", req.got)
	}
}

func TestBrief(t *testing.T) {
	cfg := state.DefaultConfig()
	cfg.Stop = 100
	got := Brief(control.Paused, 12, cfg, 60)
	for _, want := range []string{"paused", "tick 12", "n=4000", "1000x1000/100", "a=180.0", "b=17.0", "60 tps"} {
		if !strings.Contains(got, want) {
			t.Fatalf("brief %q missing %q", got, want)
		}
	}
}

func TestMessageLinesNewestFirst(t *testing.T) {
	log := msglog.New(10)
	log.Push(msglog.Info, "one")
	log.Push(msglog.Warning, "two")
	log.Push(msglog.Info, "three")
	lines := MessageLines(log.Messages(), 2)
	if len(lines) != 2 || !strings.HasSuffix(lines[0], "three") || !strings.Contains(lines[1], "two") {
		t.Fatalf("unexpected lines %v", lines)
	}
}

func TestFader(t *testing.T) {
	now := time.Unix(0, 0)
	f := &Fader{Hold: time.Second, now: func() time.Time { return now }}
	m := msglog.Message{Severity: msglog.Info, Text: "hi"}
	if !f.Visible(m, true) {
		t.Fatal("new message should be visible")
	}
	now = now.Add(2 * time.Second)
	if f.Visible(m, true) {
		t.Fatal("message should fade after the hold")
	}
	if !f.Visible(msglog.Message{Text: "new"}, true) {
		t.Fatal("a newer message should show again")
	}
	if f.Visible(msglog.Message{}, false) {
		t.Fatal("empty log shows nothing")
	}
}
