package activity

import (
	"github.com/btces/btces/internal/conntable"
	"github.com/btces/btces/internal/hcidecode"
	"github.com/btces/btces/internal/model"
)

// handleCommand dispatches one decoded outbound HCI command.
func (m *Machine) handleCommand(cmd hcidecode.Command) {
	switch cmd.Kind {
	case hcidecode.CmdInquiry:
		m.cmdInquiry()
	case hcidecode.CmdInquiryCancel:
		m.cmdInquiryCancel()
	case hcidecode.CmdExitPeriodicInquiry:
		m.cmdExitPeriodicInquiry()
	case hcidecode.CmdPeriodicInquiry:
		m.cmdPeriodicInquiry(cmd.MinPeriodSlots, cmd.InquiryLenSlots)
	case hcidecode.CmdCreateConnection:
		m.cmdCreateConnection(cmd.Addr)
	case hcidecode.CmdRemoteNameRequest:
		m.cmdRemoteNameRequest(cmd.Addr)
	case hcidecode.CmdAddScoConnection:
		m.cmdSynchronousConnection(cmd.AclHandle)
	case hcidecode.CmdSetupSynchronousConnection:
		m.cmdSynchronousConnection(cmd.Handle)
	case hcidecode.CmdWritePageTimeout:
		m.cmdWritePageTimeout(cmd.PageTimeoutSlots)
	case hcidecode.CmdReset:
		m.cmdReset()
	case hcidecode.CmdReadPageTimeout:
		// No state change: the answer arrives later as Command_Complete.
	}
}

func (m *Machine) cmdInquiry() {
	if m.inquiryActive || m.periodicMode {
		m.log.Debug("activity: HCI_Inquiry dropped, inquiry already active or periodic mode set")
		return
	}
	_, rec, ok := m.tbl.Alloc(model.ZeroAddr)
	if !ok {
		m.log.Warn("activity: HCI_Inquiry dropped, connection table full")
		return
	}
	rec.AclState = model.AclQueuedInquiry
	m.enqueueOrActivate(rec)
}

func (m *Machine) cmdInquiryCancel() {
	idx, rec := m.tbl.FindByAddr(model.ZeroAddr)
	if rec != nil {
		if rec.QueuePosition > 0 {
			m.tbl.RemoveFromQueue(idx)
			m.tbl.Free(idx)
		} else {
			m.inquiryActive = false
			m.emitEvent(model.Event{Code: model.EventInquiryStopped})
			m.tbl.Free(idx)
			m.activateNext()
		}
	}
	if m.periodicMode {
		m.periodicSlot.Arm(m.periodicInquiryPeriod, m.onPeriodicTimeout)
	}
}

func (m *Machine) cmdExitPeriodicInquiry() {
	m.periodicMode = false
	m.periodicSlot.Cancel()

	idx, rec := m.tbl.FindByAddr(model.ZeroAddr)
	if rec == nil {
		return
	}
	if rec.QueuePosition > 0 {
		m.tbl.RemoveFromQueue(idx)
		m.tbl.Free(idx)
		return
	}
	if m.inquiryActive {
		m.inquiryActive = false
		m.emitEvent(model.Event{Code: model.EventInquiryStopped})
		m.tbl.Free(idx)
		m.activateNext()
	}
}

func (m *Machine) cmdPeriodicInquiry(minPeriodSlots, inquiryLenSlots uint16) {
	m.periodicInquiryPeriod = periodFromSlots(minPeriodSlots, inquiryLenSlots)
	m.periodicMode = true

	if _, existing := m.tbl.FindByAddr(model.ZeroAddr); existing != nil {
		return
	}
	_, rec, ok := m.tbl.Alloc(model.ZeroAddr)
	if !ok {
		m.log.Warn("activity: HCI_Periodic_Inquiry_Mode dropped initial inquiry, connection table full")
		return
	}
	rec.AclState = model.AclQueuedInquiry
	m.enqueueOrActivate(rec)
}

func (m *Machine) cmdCreateConnection(addr model.Addr) {
	if _, existing := m.tbl.FindByAddr(addr); existing != nil {
		m.log.Debug("activity: HCI_Create_Connection dropped, record already exists for address")
		return
	}
	_, rec, ok := m.tbl.Alloc(addr)
	if !ok {
		m.log.Warn("activity: HCI_Create_Connection dropped, connection table full")
		return
	}
	rec.AclState = model.AclSettingUpOutgoing
	m.enqueueOrActivate(rec)
}

func (m *Machine) cmdRemoteNameRequest(addr model.Addr) {
	if _, existing := m.tbl.FindByAddr(addr); existing != nil {
		m.log.Debug("activity: HCI_Remote_Name_Request dropped, record already exists for address")
		return
	}
	_, rec, ok := m.tbl.Alloc(addr)
	if !ok {
		m.log.Warn("activity: HCI_Remote_Name_Request dropped, connection table full")
		return
	}
	rec.AclState = model.AclQueuedNameRequest
	m.enqueueOrActivate(rec)
}

func (m *Machine) cmdSynchronousConnection(aclHandle uint16) {
	_, rec := m.tbl.FindByHandle(aclHandle, conntable.AclHandleKind)
	if rec == nil || rec.ScoState != model.ScoNone {
		m.log.Debug("activity: synchronous connection command dropped, no eligible ACL link")
		return
	}
	rec.ScoState = model.ScoSettingUp
	m.emitEvent(model.Event{Code: model.EventCreateSyncConnection, Addr: rec.Addr})
}

// cmdReset handles HCI_Reset: the same closeout cascade as
// DeviceSwitchedOff, but without powering the controller off. The
// controller stays up, just cleared of all in-flight activity, and
// Page_Timeout reverts to its power-on-reset default.
func (m *Machine) cmdReset() {
	m.closeout(false)
	m.pageTimeout = DefaultPageTimeout
	m.onReset()
}

func (m *Machine) cmdWritePageTimeout(slots uint16) {
	if slots == 0 {
		m.log.Debug("activity: HCI_Write_Page_Timeout dropped, zero slots")
		return
	}
	m.pageTimeout = applyPageTimeoutSlots(slots)
}
