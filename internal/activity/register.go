package activity

import (
	"github.com/btces/btces/internal/conntable"
	"github.com/btces/btces/internal/model"
)

// Register attaches the single subscriber allowed at a time and replays
// the current observable state to it. It reports false (without touching
// any state) if a subscriber is already registered.
func (m *Machine) Register(cb func(model.Event), data interface{}) bool {
	if m.registered {
		return false
	}
	m.emit = cb
	m.subscriberData = data
	m.registered = true
	m.replaySnapshot()
	return true
}

// Deregister detaches the current subscriber, returning the opaque data it
// was registered with. ok is false if nothing was registered.
func (m *Machine) Deregister() (interface{}, bool) {
	if !m.registered {
		return nil, false
	}
	data := m.subscriberData
	m.emit = nil
	m.subscriberData = nil
	m.registered = false
	return data, true
}

// StateReport replays the current observable state to the registered
// subscriber. It reports false if nothing is registered.
func (m *Machine) StateReport() bool {
	if !m.registered {
		return false
	}
	m.replaySnapshot()
	return true
}

// replaySnapshot reconstructs, as a deterministic sequence of events, every
// piece of state a subscriber would have observed had it been registered
// from power-on: the power state first, then in-flight inquiry/paging
// activity, then one reconstruction sequence per record at queue position
// 0, in table-slot order. Records still waiting in the activity queue
// (position 1 or higher) produce no events.
func (m *Machine) replaySnapshot() {
	if m.btOn {
		m.emitEvent(model.Event{Code: model.EventBtPowerOn})
	} else {
		m.emitEvent(model.Event{Code: model.EventBtPowerOff})
		return
	}

	if m.inquiryActive {
		m.emitEvent(model.Event{Code: model.EventInquiryStarted})
	}
	if m.paging {
		m.emitEvent(model.Event{Code: model.EventPageStarted})
	}

	m.tbl.Each(func(_ int, r *conntable.Record) {
		if r.QueuePosition != 0 {
			return
		}
		switch r.AclState {
		case model.AclQueuedInquiry, model.AclQueuedNameRequest:
			// Represented by InquiryStarted/PageStarted above.
		case model.AclSettingUpIncoming, model.AclSettingUpOutgoing:
			m.emitEvent(model.Event{Code: model.EventCreateAclConnection, Addr: r.Addr})
		case model.AclConnected, model.AclStreaming:
			m.emitEvent(model.Event{Code: model.EventCreateAclConnection, Addr: r.Addr})
			m.emitEvent(model.Event{Code: model.EventAclConnectionComplete, Addr: r.Addr, Handle: r.AclHandle, Success: true})
			if r.AclMode != model.ModeActive {
				m.emitEvent(model.Event{Code: model.EventModeChanged, Addr: r.Addr, Handle: r.AclHandle, Mode: r.AclMode})
			}
			if r.AclState == model.AclStreaming {
				m.emitEvent(model.Event{Code: model.EventA2DPStreamStart, Addr: r.Addr})
			}
			switch r.ScoState {
			case model.ScoSettingUp:
				m.emitEvent(model.Event{Code: model.EventCreateSyncConnection, Addr: r.Addr})
			case model.ScoSco, model.ScoEsco:
				m.emitEvent(model.Event{Code: model.EventCreateSyncConnection, Addr: r.Addr})
				m.emitEvent(model.Event{
					Code: model.EventSyncConnectionComplete, Addr: r.Addr, Handle: r.ScoHandle, Success: true,
					LinkType: linkTypeFromScoState(r.ScoState), SCOInterval: r.ScoInterval, SCOWindow: r.ScoWindow, RetransWindow: r.RetransWindow,
				})
			}
		}
	})
}
