package btces

import (
	"github.com/btces/btces/internal/clock"
	"github.com/btces/btces/internal/model"
)

// Timer is the platform timer service the core uses for its page and
// periodic-inquiry timers: a one-shot Start, a best-effort Stop. Core
// itself wraps every fire callback so it runs under the core's mutex, the
// same serialization every other entry point gets; the implementation
// behind Timer need not worry about concurrent access to the core.
type Timer = clock.Timer

// TimerHandle identifies one scheduled timer instance, opaque to callers.
type TimerHandle = clock.Handle

// AFHMask is the 79-bit BT channel exclusion mask, packed little-endian:
// bit 0 of byte 0 is BT channel 0.
type AFHMask [10]byte

// AFHSink receives a freshly computed AFH mask whenever the set of WLAN
// channels in use changes, and whenever the controller comes back up
// (power-on, HCI_Reset) and the mask needs re-pushing.
type AFHSink interface {
	SetAFHMask(mask AFHMask) error
}

// CAMode selects how Channel Assessment is coupled to WLAN activity.
type CAMode = model.CAMode

const (
	CALeaveAlone         = model.CALeaveAlone
	CAReadFromController = model.CAReadFromController
	CAAssumeInitiallyOn  = model.CAAssumeInitiallyOn
	CAAssumeInitiallyOff = model.CAAssumeInitiallyOff
)

// AFHMode is the controller's reported or commanded Channel Assessment
// setting. Reads happen only under CAReadFromController; writes happen
// under CAReadFromController and CAAssumeInitiallyOn.
type AFHMode = model.AFHMode

const (
	AFHModeUnknown = model.AFHUnknown
	AFHModeOff     = model.AFHOff
	AFHModeOn      = model.AFHOn
)

// CASink reads and commands the controller's live Channel Assessment
// mode. Required only when CAMode is CAReadFromController,
// CAAssumeInitiallyOn, or CAAssumeInitiallyOff; never invoked under
// CALeaveAlone.
type CASink interface {
	ReadAFHMode() AFHMode
	WriteAFHMode(AFHMode)
}

// PowerState is the controller's power state as reported by PowerSink.
type PowerState = model.PowerState

const (
	PowerOff = model.PowerOff
	PowerOn  = model.PowerOn
)

// PowerSink is queried exactly once, during Init, to learn whether the
// controller is already powered on.
type PowerSink interface {
	QueryInitialBTPower() PowerState
}
