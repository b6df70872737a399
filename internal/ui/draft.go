// Package ui holds the on-screen controls of the canvas view: a parameter
// panel that turns key and mouse input into state change requests, and an
// overlay showing the message log and a status line.
package ui

import (
	"fmt"
	"strings"
	"time"

	"ppsim/internal/control"
	"ppsim/internal/msglog"
	"ppsim/internal/state"
)

// Requester accepts proposed configurations and reports the ID of the last
// one it drained; *control.Orchestrator is one.
type Requester interface {
	RequestChange(state.Stative)
	Applied() int64
}

// settleFrames bounds how long a submitted draft overrides the live
// configuration when its ID is never reported as drained.
const settleFrames = 30

// Draft accumulates HUD edits between tick boundaries. Edits build on the last
// submitted proposal until the State has adopted it, so several presses within
// one tick are not lost to the last-wins queue.
type Draft struct {
	req     Requester
	current state.Stative
	pending bool
	age     int
	nextID  int64
}

// NewDraft returns a Draft submitting to req.
func NewDraft(req Requester) *Draft { return &Draft{req: req} }

// Sync folds in the State's configuration. It is called once per frame.
func (d *Draft) Sync(live state.Stative) {
	if d.pending {
		d.age++
		drained := d.req.Applied() >= d.current.ID
		if !drained && !sameFields(live, d.current) && d.age < settleFrames {
			return
		}
	}
	d.pending = false
	d.age = 0
	d.current = live
}

// Value returns the proposal shown on the panel.
func (d *Draft) Value() state.Stative { return d.current }

// Pending reports whether a submitted proposal has not been observed yet.
func (d *Draft) Pending() bool { return d.pending }

// Adjust moves key by steps and submits the result. It reports false when the
// key is unknown or the value did not move.
func (d *Draft) Adjust(key string, steps int) bool {
	next, ok := d.current.Adjust(key, steps)
	if !ok || sameFields(next, d.current) {
		return false
	}
	d.nextID++
	next.ID = d.nextID
	d.current = next
	d.pending = true
	d.age = 0
	d.req.RequestChange(next)
	return true
}

func sameFields(a, b state.Stative) bool {
	a.ID, b.ID = 0, 0
	return a == b
}

// Brief is the one-line status shown under the log.
func Brief(status control.Status, ticks int, cfg state.Config, tps float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  tick %d  n=%d  %dx%d", status, ticks, cfg.Num, cfg.Width, cfg.Height)
	if cfg.Stop > 0 {
		fmt.Fprintf(&b, "/%d", cfg.Stop)
	}
	fmt.Fprintf(&b, "  a=%.1f b=%.1f", state.RadToDeg(cfg.Alpha), state.RadToDeg(cfg.Beta))
	if tps > 0 {
		fmt.Fprintf(&b, "  %.0f tps", tps)
	}
	return b.String()
}

// MessageLines formats at most n of msgs for the overlay, keeping their order.
func MessageLines(msgs []msglog.Message, n int) []string {
	if n > len(msgs) {
		n = len(msgs)
	}
	lines := make([]string, 0, max(n, 0))
	for _, m := range msgs[:max(n, 0)] {
		lines = append(lines, fmt.Sprintf("[%s] %s", m.Severity, m.Text))
	}
	return lines
}

// Fader hides the overlay messages a while after the log last changed.
type Fader struct {
	Hold  time.Duration
	now   func() time.Time
	last  msglog.Message
	seen  bool
	since time.Time
}

// Visible reports whether messages should be drawn, given the log's front.
func (f *Fader) Visible(front msglog.Message, ok bool) bool {
	if f.now == nil {
		f.now = time.Now
	}
	if !ok {
		return false
	}
	if !f.seen || front != f.last {
		f.seen = true
		f.last = front
		f.since = f.now()
	}
	hold := f.Hold
	if hold <= 0 {
		hold = 5 * time.Second
	}
	return f.now().Sub(f.since) < hold
}
