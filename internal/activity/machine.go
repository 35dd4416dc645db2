// Package activity implements the activity state machine: the component
// that turns decoded HCI commands/events and native platform notifications
// into the normalized Event stream, driving the connection table and the
// two timer slots (page, periodic-inquiry) along the way. One dispatch
// switch per input kind, each case a short, self-contained state
// transition against the connection table.
package activity

import (
	"time"

	"github.com/btces/btces/internal/clock"
	"github.com/btces/btces/internal/conntable"
	"github.com/btces/btces/internal/hcidecode"
	"github.com/btces/btces/internal/model"
	"github.com/sirupsen/logrus"
)

// DefaultPageTimeout is the controller's power-on-reset Page_Timeout,
// 0x2000 slots (5120 ms).
const DefaultPageTimeout = 5120 * time.Millisecond

// Machine is the activity state machine. It owns the connection table and
// the two timer slots, and reports normalized events to at most one
// registered subscriber.
type Machine struct {
	tbl *conntable.Table
	log logrus.FieldLogger

	pageSlot     *clock.Slot
	periodicSlot *clock.Slot

	btOn          bool
	inquiryActive bool
	paging        bool
	connecting    bool
	requesting    bool
	periodicMode  bool

	pageTimeout           time.Duration
	periodicInquiryPeriod time.Duration

	emit           func(model.Event)
	registered     bool
	subscriberData interface{}

	// onPoweredOn is invoked right after bt_on transitions false->true
	// (implicit or explicit), after EventBtPowerOn is emitted. The core
	// facade uses this hook to re-push the cached AFH mask.
	onPoweredOn func()
	// onReset is invoked during HCI_Reset handling, after the connection
	// table has been closed out and Page_Timeout restored to default.
	onReset func()
}

// New returns a fresh, powered-off Machine. timer supplies the host timer
// service; log may be nil (defaults to logrus.StandardLogger()).
func New(timer clock.Timer, log logrus.FieldLogger, onPoweredOn, onReset func()) *Machine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if onPoweredOn == nil {
		onPoweredOn = func() {}
	}
	if onReset == nil {
		onReset = func() {}
	}
	return &Machine{
		tbl:                   conntable.New(),
		log:                   log,
		pageSlot:              clock.NewSlot(timer),
		periodicSlot:          clock.NewSlot(timer),
		pageTimeout:           DefaultPageTimeout,
		onPoweredOn:           onPoweredOn,
		onReset:               onReset,
		periodicInquiryPeriod: time.Second,
	}
}

// BTOn reports whether the controller is currently considered powered on.
func (m *Machine) BTOn() bool { return m.btOn }

// InitPower sets the controller's initial power state, queried once at
// Init time, directly: unlike the implicit power-on path, this never
// emits BtPowerOn (there cannot yet be a registered subscriber to emit it
// to) and never clears the table, since a fresh Machine is already empty.
func (m *Machine) InitPower(on bool) { m.btOn = on }

func (m *Machine) emitEvent(ev model.Event) {
	if m.emit != nil {
		m.emit(ev)
	}
}

// ensurePoweredOn performs the implicit power-on described in the bring-up
// rules: any command, event, or (DeviceSwitchedOn/A2DP start/stop) native
// notification observed while bt_on is false first powers the controller
// on from a clean slate.
func (m *Machine) ensurePoweredOn() {
	if m.btOn {
		return
	}
	m.tbl.Clear()
	m.pageSlot.Cancel()
	m.periodicSlot.Cancel()
	m.inquiryActive = false
	m.paging = false
	m.connecting = false
	m.requesting = false
	m.periodicMode = false
	m.pageTimeout = DefaultPageTimeout

	m.btOn = true
	m.emitEvent(model.Event{Code: model.EventBtPowerOn})
	m.onPoweredOn()
}

// OnCommand decodes and processes one outbound HCI command frame.
func (m *Machine) OnCommand(frame []byte) {
	m.ensurePoweredOn()
	m.handleCommand(hcidecode.DecodeCommand(frame))
}

// OnEvent decodes and processes one inbound HCI event frame.
func (m *Machine) OnEvent(frame []byte) {
	m.ensurePoweredOn()
	m.handleEvent(hcidecode.DecodeEvent(frame))
}

// OnNative processes one out-of-band platform notification.
func (m *Machine) OnNative(n model.Native) {
	if n.Kind != model.DeviceSwitchedOff {
		m.ensurePoweredOn()
	}
	m.handleNative(n)
}

// closeout runs the "close out all open activity" sequence shared by
// DeviceSwitchedOff and HCI_Reset: it ends whatever is in flight for every
// record, in most-derived-state-first order, then empties the table.
// alsoOff additionally flips bt_on off and emits EventBtPowerOff.
func (m *Machine) closeout(alsoOff bool) {
	if m.inquiryActive {
		m.emitEvent(model.Event{Code: model.EventInquiryStopped})
		m.inquiryActive = false
	}
	if m.periodicMode {
		m.periodicSlot.Cancel()
		m.periodicMode = false
	}
	if m.paging {
		m.emitEvent(model.Event{Code: model.EventPageStopped})
		m.pageSlot.Cancel()
		m.paging = false
	}
	m.connecting = false
	m.requesting = false

	m.tbl.Each(func(i int, r *conntable.Record) {
		if r.AclState == model.AclStreaming {
			r.AclState = model.AclConnected
			m.emitEvent(model.Event{Code: model.EventA2DPStreamStop, Addr: r.Addr})
		}
		switch r.AclState {
		case model.AclSettingUpIncoming, model.AclSettingUpOutgoing:
			m.emitEvent(model.Event{Code: model.EventAclConnectionComplete, Addr: r.Addr, Handle: r.AclHandle, Success: false})
		case model.AclConnected:
			if r.ScoState == model.ScoSettingUp {
				m.emitEvent(model.Event{Code: model.EventSyncConnectionComplete, Addr: r.Addr, Success: false})
			} else if r.ScoState == model.ScoSco || r.ScoState == model.ScoEsco {
				m.emitEvent(model.Event{Code: model.EventDisconnectionComplete, Addr: r.Addr, Handle: r.ScoHandle})
			}
			m.emitEvent(model.Event{Code: model.EventDisconnectionComplete, Addr: r.Addr, Handle: r.AclHandle})
		}
	})
	m.tbl.Clear()

	if alsoOff {
		m.btOn = false
		m.emitEvent(model.Event{Code: model.EventBtPowerOff})
	}
}

func applyPageTimeoutSlots(slots uint16) time.Duration {
	ms := int(slots) * 5 / 8
	if ms < 1 {
		ms = 1
	}
	return time.Duration(ms) * time.Millisecond
}

func periodFromSlots(minPeriod, inquiryLen uint16) time.Duration {
	ms := (int(minPeriod) - int(inquiryLen)) * 1280
	if ms < 1 {
		ms = 1
	}
	return time.Duration(ms) * time.Millisecond
}

func linkTypeFromScoState(s model.ScoState) model.LinkType {
	if s == model.ScoEsco {
		return model.LinkESCO
	}
	return model.LinkSCO
}
