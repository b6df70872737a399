// Package msglog keeps a bounded, most-recent-first list of user facing messages.
package msglog

import (
	"log"
	"sync"
)

// Severity grades a message.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "unknown"
}

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 100

// Message is one log entry.
type Message struct {
	Severity Severity
	Text     string
}

// Log is a ring buffer whose front is the newest entry. Once full, every push
// drops the oldest entry. It is safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	entries []Message
	head    int
	count   int
	echo    *log.Logger
}

// Option configures a Log.
type Option func(*Log)

// WithEcho mirrors every pushed message to l.
func WithEcho(l *log.Logger) Option {
	return func(g *Log) { g.echo = l }
}

// New returns an empty log holding at most capacity messages.
func New(capacity int, opts ...Option) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	g := &Log{entries: make([]Message, capacity)}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Push makes msg the new front entry.
func (g *Log) Push(sev Severity, msg string) {
	g.mu.Lock()
	g.head = (g.head - 1 + len(g.entries)) % len(g.entries)
	g.entries[g.head] = Message{Severity: sev, Text: msg}
	if g.count < len(g.entries) {
		g.count++
	}
	echo := g.echo
	g.mu.Unlock()

	if echo != nil {
		echo.Printf("%s: %s", sev, msg)
	}
}

// Len reports how many messages are held.
func (g *Log) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.count
}

// Cap reports the capacity.
func (g *Log) Cap() int { return len(g.entries) }

// Front returns the newest message, or false when the log is empty.
func (g *Log) Front() (Message, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.count == 0 {
		return Message{}, false
	}
	return g.entries[g.head], true
}

// Messages copies the entries, newest first.
func (g *Log) Messages() []Message {
	out := make([]Message, 0, g.Len())
	g.Each(func(m Message) bool {
		out = append(out, m)
		return true
	})
	return out
}

// Each visits entries newest first until fn returns false. fn must not push.
func (g *Log) Each(fn func(Message) bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for i := 0; i < g.count; i++ {
		if !fn(g.entries[(g.head+i)%len(g.entries)]) {
			return
		}
	}
}
