package main

import (
	"time"

	"github.com/btces/btces"
)

// wallClockTimer is the simplest possible btces.Timer: a thin wrapper
// over time.AfterFunc. Fire callbacks run on their own goroutine, same as
// any real host integration; Core itself serializes them against the
// rest of the core.
type wallClockTimer struct{}

func newWallClockTimer() *wallClockTimer { return &wallClockTimer{} }

func (wallClockTimer) Start(d time.Duration, fire func()) btces.TimerHandle {
	return time.AfterFunc(d, fire)
}

func (wallClockTimer) Stop(h btces.TimerHandle) {
	if t, ok := h.(*time.Timer); ok {
		t.Stop()
	}
}
