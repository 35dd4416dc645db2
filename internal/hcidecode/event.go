package hcidecode

import "github.com/btces/btces/internal/model"

// eventCode is the 1-byte HCI event code, numbered per the Bluetooth
// HCI specification.
type eventCode uint8

const (
	evInquiryComplete         = eventCode(0x01)
	evConnectionComplete      = eventCode(0x03)
	evConnectionRequest       = eventCode(0x04)
	evDisconnectionComplete   = eventCode(0x05)
	evRemoteNameReqComplete   = eventCode(0x07)
	evRoleChange              = eventCode(0x12)
	evModeChange              = eventCode(0x14)
	evPinCodeRequest          = eventCode(0x16)
	evLinkKeyRequest          = eventCode(0x17)
	evCommandComplete         = eventCode(0x0E)
	evSyncConnectionComplete  = eventCode(0x2C)
	evSyncConnectionChanged   = eventCode(0x2D)
)

// EventKind tags the variant of a decoded Event.
type EventKind int

const (
	EvtIgnore EventKind = iota
	EvtInquiryComplete
	EvtConnectionComplete
	EvtConnectionRequest
	EvtDisconnectionComplete
	EvtRemoteNameRequestComplete
	EvtCommandCompleteReadPageTimeout
	EvtRoleChange
	EvtModeChange
	EvtPinCodeRequest
	EvtLinkKeyRequest
	EvtSyncConnectionComplete
	EvtSyncConnectionChanged
)

// Event is the decoded form of one inbound HCI event frame. Only the
// fields relevant to Kind are populated. Status fields are carried
// through even where the state machine (per spec) chooses to ignore
// them, e.g. Disconnection_Complete's status.
type Event struct {
	Kind          EventKind
	Status        uint8
	Handle        uint16
	Addr          model.Addr
	LinkType      model.LinkType
	Mode          model.AclMode
	TxInterval    uint8
	RetransWindow uint8
	PageTimeout   uint16
}

// DecodeEvent parses one HCI event frame: a 1-byte event code, a 1-byte
// parameter length, and the parameters. As with DecodeCommand, frames
// too short to hold the fields the core consumes decode to EvtIgnore.
func DecodeEvent(b []byte) Event {
	if len(b) < 2 {
		return Event{Kind: EvtIgnore}
	}
	code := eventCode(b[0])
	params := b[2:]
	if declared := int(b[1]); declared < len(params) {
		params = params[:declared]
	}

	switch code {
	case evInquiryComplete:
		return Event{Kind: EvtInquiryComplete}
	case evConnectionComplete:
		if len(params) < 10 {
			return Event{Kind: EvtIgnore}
		}
		return Event{
			Kind:     EvtConnectionComplete,
			Status:   o.uint8(params[0:1]),
			Handle:   o.uint16(params[1:3]),
			Addr:     o.addr(params[3:9]),
			LinkType: model.ParseLinkType(params[9]),
		}
	case evConnectionRequest:
		if len(params) < 10 {
			return Event{Kind: EvtIgnore}
		}
		return Event{
			Kind:     EvtConnectionRequest,
			Addr:     o.addr(params[0:6]),
			LinkType: model.ParseLinkType(params[9]),
		}
	case evDisconnectionComplete:
		if len(params) < 3 {
			return Event{Kind: EvtIgnore}
		}
		return Event{
			Kind:   EvtDisconnectionComplete,
			Status: o.uint8(params[0:1]),
			Handle: o.uint16(params[1:3]),
		}
	case evRemoteNameReqComplete:
		if len(params) < 7 {
			return Event{Kind: EvtIgnore}
		}
		return Event{
			Kind:   EvtRemoteNameRequestComplete,
			Status: o.uint8(params[0:1]),
			Addr:   o.addr(params[1:7]),
		}
	case evCommandComplete:
		if len(params) < 3 {
			return Event{Kind: EvtIgnore}
		}
		op := Opcode(o.uint16(params[1:3]))
		if op != opReadPageTimeout {
			return Event{Kind: EvtIgnore}
		}
		if len(params) < 6 {
			return Event{Kind: EvtIgnore}
		}
		return Event{
			Kind:        EvtCommandCompleteReadPageTimeout,
			Status:      o.uint8(params[3:4]),
			PageTimeout: o.uint16(params[4:6]),
		}
	case evRoleChange:
		if len(params) < 7 {
			return Event{Kind: EvtIgnore}
		}
		return Event{
			Kind:   EvtRoleChange,
			Status: o.uint8(params[0:1]),
			Addr:   o.addr(params[1:7]),
		}
	case evModeChange:
		if len(params) < 4 {
			return Event{Kind: EvtIgnore}
		}
		return Event{
			Kind:   EvtModeChange,
			Status: o.uint8(params[0:1]),
			Handle: o.uint16(params[1:3]),
			Mode:   model.ParseAclMode(params[3]),
		}
	case evPinCodeRequest:
		if len(params) < 6 {
			return Event{Kind: EvtIgnore}
		}
		return Event{Kind: EvtPinCodeRequest, Addr: o.addr(params[0:6])}
	case evLinkKeyRequest:
		if len(params) < 6 {
			return Event{Kind: EvtIgnore}
		}
		return Event{Kind: EvtLinkKeyRequest, Addr: o.addr(params[0:6])}
	case evSyncConnectionComplete:
		if len(params) < 12 {
			return Event{Kind: EvtIgnore}
		}
		return Event{
			Kind:          EvtSyncConnectionComplete,
			Status:        o.uint8(params[0:1]),
			Handle:        o.uint16(params[1:3]),
			Addr:          o.addr(params[3:9]),
			LinkType:      model.ParseLinkType(params[9]),
			TxInterval:    o.uint8(params[10:11]),
			RetransWindow: o.uint8(params[11:12]),
		}
	case evSyncConnectionChanged:
		if len(params) < 5 {
			return Event{Kind: EvtIgnore}
		}
		return Event{
			Kind:          EvtSyncConnectionChanged,
			Status:        o.uint8(params[0:1]),
			Handle:        o.uint16(params[1:3]),
			TxInterval:    o.uint8(params[3:4]),
			RetransWindow: o.uint8(params[4:5]),
		}
	default:
		return Event{Kind: EvtIgnore}
	}
}
