package activity

import "github.com/btces/btces/internal/model"

// onPageTimeout fires when the page timer expires without a matching
// Connection_Complete / Remote_Name_Request_Complete / Role_Change /
// PIN_Code_Request / Link_Key_Request ever arriving. It is only ever
// invoked by the clock.Slot with a current generation tag. Timeout
// semantics are the same observable events as a non-timeout close of
// paging: just PageStopped. The abandoned record is dropped silently so
// a host that retries the same Create_Connection pages (and is reported)
// afresh.
func (m *Machine) onPageTimeout() {
	m.paging = false
	m.emitEvent(model.Event{Code: model.EventPageStopped})

	if m.connecting {
		m.connecting = false
		idx, rec := m.findActiveByState(model.AclSettingUpOutgoing)
		if rec != nil {
			m.tbl.Free(idx)
		}
	} else if m.requesting {
		m.requesting = false
		idx, rec := m.findActiveByState(model.AclQueuedNameRequest)
		if rec != nil {
			m.tbl.Free(idx)
		}
	}
	m.activateNext()
}

// onPeriodicTimeout fires at the end of the idle gap between periodic
// inquiries: it starts a fresh Inquiry record if periodic mode is still
// active and none already exists.
func (m *Machine) onPeriodicTimeout() {
	if !m.periodicMode {
		return
	}
	if _, existing := m.tbl.FindByAddr(model.ZeroAddr); existing != nil {
		return
	}
	_, rec, ok := m.tbl.Alloc(model.ZeroAddr)
	if !ok {
		m.log.Warn("activity: periodic inquiry could not allocate a record, table full")
		return
	}
	rec.AclState = model.AclQueuedInquiry
	m.enqueueOrActivate(rec)
}

// onInquiryComplete handles the Inquiry_Complete event, the closing half
// of HCI_Inquiry/HCI_Periodic_Inquiry_Mode's activation.
func (m *Machine) onInquiryComplete() {
	if !m.inquiryActive {
		return
	}
	m.inquiryActive = false
	m.emitEvent(model.Event{Code: model.EventInquiryStopped})
	if idx, _ := m.tbl.FindByAddr(model.ZeroAddr); idx >= 0 {
		m.tbl.Free(idx)
	}
	m.activateNext()
	if m.periodicMode {
		m.periodicSlot.Arm(m.periodicInquiryPeriod, m.onPeriodicTimeout)
	}
}
