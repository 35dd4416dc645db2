package activity

import (
	"github.com/btces/btces/internal/conntable"
	"github.com/btces/btces/internal/model"
)

// headFree reports whether the serial activity queue's active slot
// (position 0) is free: no outgoing connect, name request, or inquiry in
// progress. The gate is on the activity flags rather than on paging
// itself: an outgoing connect stays active after paging ends early (Role
// Change, PIN/link-key request) until its Connection_Complete arrives.
// Connection and streaming records coexist with the queue without
// occupying it.
func (m *Machine) headFree() bool {
	return !m.connecting && !m.requesting && !m.inquiryActive
}

// enqueueOrActivate assigns rec its place in the serial activity queue:
// if the active slot is free, rec starts immediately (queue position 0
// and the activation side effects for its current AclState); otherwise
// it takes the next FIFO position and waits.
func (m *Machine) enqueueOrActivate(rec *conntable.Record) {
	if m.headFree() {
		rec.QueuePosition = 0
		m.activateByState(rec)
	} else {
		rec.QueuePosition = m.tbl.NextQPos()
	}
}

// activateByState runs the activation side effects for a record that has
// just become the active (queue position 0) entry, based on its AclState.
func (m *Machine) activateByState(rec *conntable.Record) {
	switch rec.AclState {
	case model.AclSettingUpOutgoing:
		m.emitEvent(model.Event{Code: model.EventCreateAclConnection, Addr: rec.Addr})
		m.pageSlot.Arm(m.pageTimeout, m.onPageTimeout)
		m.paging = true
		m.emitEvent(model.Event{Code: model.EventPageStarted})
		m.connecting = true
	case model.AclQueuedNameRequest:
		m.pageSlot.Arm(m.pageTimeout, m.onPageTimeout)
		m.paging = true
		m.emitEvent(model.Event{Code: model.EventPageStarted})
		m.requesting = true
	case model.AclQueuedInquiry:
		m.inquiryActive = true
		m.emitEvent(model.Event{Code: model.EventInquiryStarted})
	}
}

// activateNext advances the serial activity queue after the active slot
// has just been vacated, activating whatever record (if any) reaches
// queue position 0.
func (m *Machine) activateNext() {
	_, rec := m.tbl.Dequeue()
	if rec == nil {
		return
	}
	m.activateByState(rec)
}

// findActiveByState returns the queue-active (position 0) record in the
// given AclState, if any.
func (m *Machine) findActiveByState(state model.AclState) (int, *conntable.Record) {
	var idx = -1
	var found *conntable.Record
	m.tbl.Each(func(i int, r *conntable.Record) {
		if found == nil && r.QueuePosition == 0 && r.AclState == state {
			idx, found = i, r
		}
	})
	return idx, found
}
