package btces

import "github.com/btces/btces/internal/model"

// EventCode identifies the kind of a reported Event.
type EventCode = model.EventCode

const (
	EventBtPowerOn              = model.EventBtPowerOn
	EventBtPowerOff             = model.EventBtPowerOff
	EventInquiryStarted         = model.EventInquiryStarted
	EventInquiryStopped         = model.EventInquiryStopped
	EventInquiryScanStarted     = model.EventInquiryScanStarted // reserved, never emitted
	EventInquiryScanStopped     = model.EventInquiryScanStopped // reserved, never emitted
	EventPageStarted            = model.EventPageStarted
	EventPageStopped            = model.EventPageStopped
	EventPageScanStarted        = model.EventPageScanStarted // reserved, never emitted
	EventPageScanStopped        = model.EventPageScanStopped // reserved, never emitted
	EventCreateAclConnection    = model.EventCreateAclConnection
	EventAclConnectionComplete  = model.EventAclConnectionComplete
	EventCreateSyncConnection   = model.EventCreateSyncConnection
	EventSyncConnectionComplete = model.EventSyncConnectionComplete
	EventSyncConnectionUpdated  = model.EventSyncConnectionUpdated
	EventDisconnectionComplete  = model.EventDisconnectionComplete
	EventModeChanged            = model.EventModeChanged
	EventA2DPStreamStart        = model.EventA2DPStreamStart
	EventA2DPStreamStop         = model.EventA2DPStreamStop
)

// LinkType is the ACL/SCO/eSCO link type carried on connection events.
type LinkType = model.LinkType

const (
	LinkSCO  = model.LinkSCO
	LinkACL  = model.LinkACL
	LinkESCO = model.LinkESCO
)

// AclMode is an ACL link power mode, carried on EventModeChanged.
type AclMode = model.AclMode

const (
	ModeActive = model.ModeActive
	ModeHold   = model.ModeHold
	ModeSniff  = model.ModeSniff
	ModePark   = model.ModePark
)

// Event is one normalized activity event reported to the registered
// subscriber. Only the fields relevant to Code are meaningful.
type Event = model.Event

// NativeKind enumerates the out-of-band platform notifications the host
// feeds to the core alongside the HCI byte stream.
type NativeKind = model.NativeKind

const (
	DeviceSwitchedOn  = model.DeviceSwitchedOn
	DeviceSwitchedOff = model.DeviceSwitchedOff
	A2DPStreamStart   = model.A2DPStreamStart
	A2DPStreamStop    = model.A2DPStreamStop
)

// Native is a platform notification delivered via Core.OnNative.
type Native = model.Native
