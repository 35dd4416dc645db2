// Package clock provides the generation-tagged timer slot the activity
// state machine uses for its two timers (page, periodic-inquiry). The
// timer service itself is supplied by the host platform (the Timer
// contract below); Slot is the bookkeeping that makes cancellation races
// harmless without requiring the host to guarantee that Stop prevents a
// racing callback from firing. Many platforms cannot guarantee
// cancellation prevents delivery, so every armed timer carries an
// integer generation tag, and a callback whose tag no longer matches the
// slot's current tag is silently dropped.
package clock

import "time"

// Handle identifies one scheduled timer instance, opaque to callers.
type Handle interface{}

// Timer is the platform timer service contract (spec §4.1, §6): start a
// one-shot timer, cancel it, receive a callback. Callbacks run serialized
// with the rest of the core because btces.Core wraps every fire callback
// so that it re-acquires the core's mutex; a Timer implementation does no
// locking of its own.
type Timer interface {
	Start(d time.Duration, fire func()) Handle
	Stop(h Handle)
}

// Slot is one generation-tagged timer slot owned by the activity state
// machine. The zero value is a disarmed slot.
type Slot struct {
	timer  Timer
	tag    uint32
	handle Handle
	armed  bool
}

// NewSlot binds a slot to the host timer service.
func NewSlot(t Timer) *Slot { return &Slot{timer: t} }

// Arm starts a fresh timer instance, bumping the generation tag so any
// previously-armed (but not yet fired, or racing) callback is discarded
// when it eventually runs. fire is invoked only if the tag is still
// current at delivery time.
func (s *Slot) Arm(d time.Duration, fire func()) {
	if s.armed {
		s.timer.Stop(s.handle)
	}
	s.tag++
	if s.tag == 0 {
		s.tag = 1 // wrap past zero, zero is never a live tag
	}
	tag := s.tag
	s.armed = true
	s.handle = s.timer.Start(d, func() { s.deliver(tag, fire) })
}

// Cancel disarms the slot. It does not assume Stop prevents a racing
// callback from running; the generation tag bump is what actually makes
// a racing callback a no-op.
func (s *Slot) Cancel() {
	if !s.armed {
		return
	}
	s.tag++
	if s.tag == 0 {
		s.tag = 1
	}
	s.timer.Stop(s.handle)
	s.armed = false
}

// Armed reports whether the slot currently has a live timer.
func (s *Slot) Armed() bool { return s.armed }

func (s *Slot) deliver(tag uint32, fire func()) {
	if !s.armed || tag != s.tag {
		return // stale firing: cancelled or superseded since this was scheduled
	}
	s.armed = false
	fire()
}
