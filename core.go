// Package btces implements a Bluetooth Coexistence Event Source: it
// watches a Bluetooth controller's outbound HCI commands and inbound HCI
// events (plus a small set of platform notifications) and reports a
// normalized stream of connectivity-activity events to a single
// subscriber, while independently computing and pushing the AFH channel
// exclusion mask a WLAN coexistence scheme needs.
//
// Core is a small public facade wiring together the internal packages
// that do the actual work (internal/activity, internal/afh,
// internal/clock). Construction is two-phase: New validates
// configuration and sinks, Init performs the one-time query of the
// controller's initial power state and makes the core live.
package btces

import (
	"sync"
	"time"

	"github.com/btces/btces/internal/activity"
	"github.com/btces/btces/internal/afh"
	"github.com/sirupsen/logrus"
)

// lockingTimer wraps the host-supplied Timer so that every fire callback
// runs with Core's mutex held, the same serialization guarantee every
// other entry point into the core gets. Without this, a host whose Timer
// fires from its own goroutine would reach the activity machine
// concurrently with an in-progress OnHCICommand/OnHCIEvent call.
type lockingTimer struct {
	core  *Core
	inner Timer
}

func (t *lockingTimer) Start(d time.Duration, fire func()) TimerHandle {
	return t.inner.Start(d, func() {
		t.core.mu.Lock()
		defer t.core.mu.Unlock()
		if !t.core.initialized {
			return
		}
		fire()
	})
}

func (t *lockingTimer) Stop(h TimerHandle) { t.inner.Stop(h) }

// Core is the BT-CES entry point. All methods are safe for concurrent
// use: a single mutex (the "token") serializes every call into the
// core, including timer callbacks fired by the host's Timer. The mutex is not reentrant: subscriber
// callbacks run with it held, so a subscriber must not call back into
// Core methods (StateReport included) from inside its callback.
type Core struct {
	mu sync.Mutex

	log logrus.FieldLogger

	timer     Timer
	afhSink   AFHSink
	caSink    CASink
	powerSink PowerSink
	caMode    CAMode
	guardBand int

	initialized bool
	am          *activity.Machine
	afhCalc     *afh.Computer
	coupler     *afh.Coupler

	wlanBitmap uint16
}

// New validates opts and constructs a Core in the uninitialized state.
// WithTimer and WithAFHSink are required; New returns a nil Core and
// StatusInvalidParameters if either is missing, or if a CAMode other than
// CALeaveAlone is selected without a WithCASink.
func New(opts ...Option) (*Core, Status) {
	c := &Core{guardBand: DefaultGuardBand, caMode: CALeaveAlone}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, StatusInvalidParameters
		}
	}
	if c.timer == nil || c.afhSink == nil {
		return nil, StatusInvalidParameters
	}
	if c.caMode != CALeaveAlone && c.caSink == nil {
		return nil, StatusInvalidParameters
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	c.afhCalc = afh.New(c.guardBand, c.log)
	return c, StatusOK
}

// Init makes the core live: it queries the controller's initial power
// state (if a PowerSink was configured; otherwise assumes powered off)
// and allocates the activity state machine fresh, so a prior Deinit
// leaves no residue. Returns AlreadyInitialized if already live.
func (c *Core) Init() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return StatusAlreadyInitialized
	}

	c.coupler = afh.NewCoupler(c.caMode)
	c.am = activity.New(&lockingTimer{core: c, inner: c.timer}, c.log, c.pushMask, c.pushMask)

	if c.powerSink != nil && c.powerSink.QueryInitialBTPower() == PowerOn {
		c.am.InitPower(true)
	}
	c.initialized = true
	return StatusOK
}

// Deinit tears down the core: the registered subscriber (if any) is
// dropped, and every subsequent call except SetWLANChannels and a future
// Init becomes a no-op. A timer callback that fires after Deinit finds
// the core uninitialized and returns immediately.
func (c *Core) Deinit() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return StatusNotInitialized
	}
	// Drop the subscriber first: a timer callback armed before this Deinit
	// but delivered after a later Init still reaches the torn-down machine,
	// and must find nobody to notify.
	c.am.Deregister()
	c.initialized = false
	c.am = nil
	c.coupler = nil
	return StatusOK
}

// pushMask recomputes the AFH mask from the cached WLAN-channels bitmap
// and pushes it to the sink. Called with the bitmap cleared (no WLAN
// channels in use) produces an all-channels-allowed mask. Invoked from
// Core.SetWLANChannels and as the activity machine's power-on/reset
// hooks; never takes c.mu itself (always called from a context already
// holding it).
func (c *Core) pushMask() {
	mask, ok := c.afhCalc.Compute(c.wlanBitmap)
	if !ok {
		c.log.WithField("bitmap", c.wlanBitmap).Error("btces: WLAN channels bitmap uses reserved bits, AFH mask not pushed")
		return
	}
	if err := c.afhSink.SetAFHMask(AFHMask(mask)); err != nil {
		c.log.WithError(err).Error("btces: AFH mask push failed")
	}
}

// SetWLANChannels reports the current set of WLAN channels (1-14, bit
// k-1) in use. It is the one API that works before Init/after Deinit (the
// bitmap is cached either way); the CA coupling transition only actually
// runs while the core is initialized, and the mask is only actually pushed
// while the core is initialized and the controller is powered on. Reporting
// the same bitmap twice in a
// row is a no-op beyond the parameter check: the sink sees at most one
// push per change.
func (c *Core) SetWLANChannels(bitmap uint16) Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if bitmap&0xC000 != 0 {
		return StatusInvalidParameters
	}
	if bitmap == c.wlanBitmap {
		return StatusOK
	}

	wasActive := c.wlanBitmap != 0
	isActive := bitmap != 0
	c.wlanBitmap = bitmap

	if !c.initialized {
		return StatusOK
	}

	if isActive && !wasActive {
		c.coupler.OnWlanBecameActive(c.readCA, c.writeCA)
	} else if !isActive && wasActive {
		c.coupler.OnWlanBecameIdle(c.writeCA)
	}

	if c.am.BTOn() {
		c.pushMask()
	}
	return StatusOK
}

func (c *Core) readCA() AFHMode {
	if c.caSink == nil {
		return AFHModeUnknown
	}
	return c.caSink.ReadAFHMode()
}

func (c *Core) writeCA(mode AFHMode) {
	if c.caSink != nil {
		c.caSink.WriteAFHMode(mode)
	}
}

// Register attaches the single allowed subscriber, replaying the core's
// current observable state to it immediately. data is opaque to the core
// and returned verbatim by Deregister.
func (c *Core) Register(cb func(Event), data interface{}) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return StatusNotInitialized
	}
	if cb == nil {
		return StatusInvalidParameters
	}
	if !c.am.Register(cb, data) {
		return StatusAlreadyRegistered
	}
	return StatusOK
}

// Deregister detaches the current subscriber, returning the opaque data
// it was registered with.
func (c *Core) Deregister() (interface{}, Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return nil, StatusNotInitialized
	}
	data, ok := c.am.Deregister()
	if !ok {
		return nil, StatusNotRegistered
	}
	return data, StatusOK
}

// StateReport replays the core's current observable state to the
// registered subscriber.
func (c *Core) StateReport() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return StatusNotInitialized
	}
	if !c.am.StateReport() {
		return StatusNotRegistered
	}
	return StatusOK
}

// OnHCICommand feeds one outbound HCI command frame (opcode, length,
// parameters) to the core. A silent no-op if not initialized.
func (c *Core) OnHCICommand(frame []byte) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return StatusNotInitialized
	}
	c.am.OnCommand(frame)
	return StatusOK
}

// OnHCIEvent feeds one inbound HCI event frame (event code, length,
// parameters) to the core. A silent no-op if not initialized.
func (c *Core) OnHCIEvent(frame []byte) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return StatusNotInitialized
	}
	c.am.OnEvent(frame)
	return StatusOK
}

// OnNative feeds one out-of-band platform notification to the core. A
// silent no-op if not initialized.
func (c *Core) OnNative(n Native) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return StatusNotInitialized
	}
	c.am.OnNative(n)
	return StatusOK
}

// BTOn reports whether the core currently considers the controller
// powered on. Always false while uninitialized.
func (c *Core) BTOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return false
	}
	return c.am.BTOn()
}
