package activity

import (
	"github.com/btces/btces/internal/conntable"
	"github.com/btces/btces/internal/hcidecode"
	"github.com/btces/btces/internal/model"
)

// handleEvent dispatches one decoded inbound HCI event.
func (m *Machine) handleEvent(ev hcidecode.Event) {
	switch ev.Kind {
	case hcidecode.EvtInquiryComplete:
		m.onInquiryComplete()
	case hcidecode.EvtConnectionComplete:
		m.evtConnectionComplete(ev)
	case hcidecode.EvtConnectionRequest:
		m.evtConnectionRequest(ev)
	case hcidecode.EvtDisconnectionComplete:
		m.evtDisconnectionComplete(ev)
	case hcidecode.EvtRemoteNameRequestComplete:
		m.evtRemoteNameRequestComplete(ev)
	case hcidecode.EvtCommandCompleteReadPageTimeout:
		if ev.Status == 0 {
			m.pageTimeout = applyPageTimeoutSlots(ev.PageTimeout)
		}
	case hcidecode.EvtRoleChange:
		if ev.Status == 0 {
			m.evtClosesPagingFor(ev.Addr)
		}
	case hcidecode.EvtPinCodeRequest, hcidecode.EvtLinkKeyRequest:
		m.evtClosesPagingFor(ev.Addr)
	case hcidecode.EvtModeChange:
		m.evtModeChange(ev)
	case hcidecode.EvtSyncConnectionComplete:
		m.evtSyncConnectionComplete(ev)
	case hcidecode.EvtSyncConnectionChanged:
		m.evtSyncConnectionChanged(ev)
	}
}

// evtClosesPagingFor handles the three events (Role_Change success,
// PIN_Code_Request, Link_Key_Request) that signal the controller has moved
// past the paging phase of an outgoing connection attempt still in
// progress, without otherwise changing the record's state.
func (m *Machine) evtClosesPagingFor(addr model.Addr) {
	_, rec := m.tbl.FindByAddr(addr)
	if rec == nil || rec.AclState != model.AclSettingUpOutgoing || !m.paging {
		return
	}
	m.pageSlot.Cancel()
	m.paging = false
	m.emitEvent(model.Event{Code: model.EventPageStopped})
}

func (m *Machine) evtConnectionComplete(ev hcidecode.Event) {
	idx, rec := m.tbl.FindByAddr(ev.Addr)
	if rec == nil {
		m.log.Debug("activity: Connection_Complete for unknown address")
		return
	}
	switch {
	case ev.LinkType == model.LinkACL && rec.AclState == model.AclSettingUpIncoming:
		if ev.Status == 0 {
			rec.AclState = model.AclConnected
			rec.AclHandle = ev.Handle
			rec.AclMode = model.ModeActive
			m.emitEvent(model.Event{Code: model.EventAclConnectionComplete, Addr: rec.Addr, Handle: ev.Handle, Success: true})
		} else {
			m.emitEvent(model.Event{Code: model.EventAclConnectionComplete, Addr: rec.Addr, Handle: ev.Handle, Success: false})
			m.tbl.Free(idx)
		}
	case ev.LinkType == model.LinkACL && rec.AclState == model.AclSettingUpOutgoing:
		if m.paging {
			m.pageSlot.Cancel()
			m.paging = false
			m.emitEvent(model.Event{Code: model.EventPageStopped})
		}
		m.connecting = false
		if ev.Status == 0 {
			rec.AclState = model.AclConnected
			rec.AclHandle = ev.Handle
			rec.AclMode = model.ModeActive
			m.emitEvent(model.Event{Code: model.EventAclConnectionComplete, Addr: rec.Addr, Handle: ev.Handle, Success: true})
		} else {
			m.emitEvent(model.Event{Code: model.EventAclConnectionComplete, Addr: rec.Addr, Handle: ev.Handle, Success: false})
			m.tbl.Free(idx)
		}
		m.activateNext()
	case ev.LinkType == model.LinkSCO &&
		(rec.AclState == model.AclConnected || rec.AclState == model.AclStreaming):
		// Legacy SCO Connection_Complete: the ACL link already exists.
		if rec.ScoState != model.ScoSettingUp {
			m.log.Debug("activity: Connection_Complete (SCO) with no pending synchronous setup")
			return
		}
		if ev.Status == 0 {
			rec.ScoState = model.ScoSco
			rec.ScoHandle = ev.Handle
			rec.ScoInterval = 6
			rec.ScoWindow = 2
			rec.RetransWindow = 0
			m.emitEvent(model.Event{
				Code: model.EventSyncConnectionComplete, Addr: rec.Addr, Handle: ev.Handle, Success: true,
				LinkType: model.LinkSCO, SCOInterval: rec.ScoInterval, SCOWindow: rec.ScoWindow, RetransWindow: rec.RetransWindow,
			})
		} else {
			rec.ScoState = model.ScoNone
			m.emitEvent(model.Event{Code: model.EventSyncConnectionComplete, Addr: rec.Addr, Handle: ev.Handle, Success: false, LinkType: model.LinkSCO})
		}
	default:
		m.log.Debug("activity: Connection_Complete for record in unexpected state")
	}
}

func (m *Machine) evtConnectionRequest(ev hcidecode.Event) {
	switch ev.LinkType {
	case model.LinkACL:
		if _, existing := m.tbl.FindByAddr(ev.Addr); existing != nil {
			m.log.Debug("activity: Connection_Request dropped, record already exists")
			return
		}
		_, rec, ok := m.tbl.Alloc(ev.Addr)
		if !ok {
			m.log.Warn("activity: Connection_Request dropped, connection table full")
			return
		}
		rec.AclState = model.AclSettingUpIncoming
		m.emitEvent(model.Event{Code: model.EventCreateAclConnection, Addr: ev.Addr})
	case model.LinkSCO, model.LinkESCO:
		_, rec := m.tbl.FindByAddr(ev.Addr)
		if rec == nil || (rec.AclState != model.AclConnected && rec.AclState != model.AclStreaming) || rec.ScoState != model.ScoNone {
			m.log.Debug("activity: synchronous Connection_Request dropped, no eligible ACL link")
			return
		}
		rec.ScoState = model.ScoSettingUp
		m.emitEvent(model.Event{Code: model.EventCreateSyncConnection, Addr: ev.Addr})
	}
}

func (m *Machine) evtDisconnectionComplete(ev hcidecode.Event) {
	if _, rec := m.tbl.FindByHandle(ev.Handle, conntable.ScoHandleKind); rec != nil {
		rec.ScoState = model.ScoNone
		rec.ScoHandle = model.InvalidHandle
		m.emitEvent(model.Event{Code: model.EventDisconnectionComplete, Addr: rec.Addr, Handle: ev.Handle})
		return
	}

	idx, rec := m.tbl.FindByHandle(ev.Handle, conntable.AclHandleKind)
	if rec == nil {
		m.log.Debug("activity: Disconnection_Complete for unknown handle")
		return
	}
	if rec.AclState == model.AclStreaming {
		rec.AclState = model.AclConnected
		m.emitEvent(model.Event{Code: model.EventA2DPStreamStop, Addr: rec.Addr})
	}
	if rec.ScoState == model.ScoSettingUp {
		m.emitEvent(model.Event{Code: model.EventSyncConnectionComplete, Addr: rec.Addr, Success: false})
	} else if rec.ScoState == model.ScoSco || rec.ScoState == model.ScoEsco {
		m.emitEvent(model.Event{Code: model.EventDisconnectionComplete, Addr: rec.Addr, Handle: rec.ScoHandle})
	}
	m.emitEvent(model.Event{Code: model.EventDisconnectionComplete, Addr: rec.Addr, Handle: rec.AclHandle})
	m.tbl.Free(idx)
}

func (m *Machine) evtRemoteNameRequestComplete(ev hcidecode.Event) {
	idx, rec := m.tbl.FindByAddr(ev.Addr)
	if rec == nil || rec.AclState != model.AclQueuedNameRequest || rec.QueuePosition != 0 {
		m.log.Debug("activity: Remote_Name_Request_Complete for no active name request")
		return
	}
	if m.paging {
		m.pageSlot.Cancel()
		m.paging = false
		m.emitEvent(model.Event{Code: model.EventPageStopped})
	}
	m.requesting = false
	m.tbl.Free(idx)
	m.activateNext()
}

func (m *Machine) evtModeChange(ev hcidecode.Event) {
	if ev.Status != 0 {
		return
	}
	_, rec := m.tbl.FindByHandle(ev.Handle, conntable.AclHandleKind)
	if rec == nil {
		m.log.Debug("activity: Mode_Change for unknown ACL handle")
		return
	}
	if rec.AclMode == ev.Mode {
		return
	}
	rec.AclMode = ev.Mode
	m.emitEvent(model.Event{Code: model.EventModeChanged, Addr: rec.Addr, Handle: ev.Handle, Mode: ev.Mode})
}

func (m *Machine) evtSyncConnectionComplete(ev hcidecode.Event) {
	_, rec := m.tbl.FindByAddr(ev.Addr)
	if rec == nil || rec.ScoState != model.ScoSettingUp {
		m.log.Debug("activity: Sync_Connection_Complete with no pending synchronous setup")
		return
	}
	if ev.Status != 0 {
		rec.ScoState = model.ScoNone
		m.emitEvent(model.Event{Code: model.EventSyncConnectionComplete, Addr: rec.Addr, Handle: ev.Handle, Success: false, LinkType: ev.LinkType})
		return
	}
	switch ev.LinkType {
	case model.LinkSCO:
		rec.ScoState = model.ScoSco
		rec.ScoInterval = 6
	case model.LinkESCO:
		rec.ScoState = model.ScoEsco
		rec.ScoInterval = ev.TxInterval
	default:
		m.log.Debug("activity: Sync_Connection_Complete with unexpected link type")
		return
	}
	rec.RetransWindow = ev.RetransWindow
	rec.ScoWindow = 2 + ev.RetransWindow
	rec.ScoHandle = ev.Handle
	m.emitEvent(model.Event{
		Code: model.EventSyncConnectionComplete, Addr: rec.Addr, Handle: ev.Handle, Success: true, LinkType: ev.LinkType,
		SCOInterval: rec.ScoInterval, SCOWindow: rec.ScoWindow, RetransWindow: rec.RetransWindow,
	})
}

func (m *Machine) evtSyncConnectionChanged(ev hcidecode.Event) {
	_, rec := m.tbl.FindByHandle(ev.Handle, conntable.ScoHandleKind)
	if rec == nil {
		m.log.Debug("activity: Sync_Connection_Changed for unknown SCO handle")
		return
	}
	rec.ScoInterval = ev.TxInterval
	rec.RetransWindow = ev.RetransWindow
	rec.ScoWindow = 2 + ev.RetransWindow
	m.emitEvent(model.Event{
		Code: model.EventSyncConnectionUpdated, Addr: rec.Addr, Handle: ev.Handle, Success: true,
		LinkType: linkTypeFromScoState(rec.ScoState), SCOInterval: rec.ScoInterval, SCOWindow: rec.ScoWindow, RetransWindow: rec.RetransWindow,
	})
}
