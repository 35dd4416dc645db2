package main

import (
	"sync"

	"github.com/btces/btces"
)

// stateMonitor accumulates the events a core emits, for later inspection
// by the status HTTP endpoint and by the final printout in main. It is
// the simplest possible subscriber: a core.Register callback that just
// appends, guarded by a mutex since the HTTP server reads it from a
// different goroutine than the one the core calls back on.
type stateMonitor struct {
	mu     sync.Mutex
	events []btces.Event
}

func newStateMonitor() *stateMonitor {
	return &stateMonitor{}
}

func (m *stateMonitor) onEvent(ev btces.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

// snapshot returns a copy of every event seen so far, oldest first.
func (m *stateMonitor) snapshot() []btces.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]btces.Event, len(m.events))
	copy(out, m.events)
	return out
}
