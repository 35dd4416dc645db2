// Package afh computes the 79-bit BT channel-exclusion mask derived
// from a WLAN-channels-in-use bitmap, and owns the optional coupling
// between WLAN activity and the controller's Channel Assessment mode.
package afh

import (
	"github.com/btces/btces/internal/model"
	"github.com/sirupsen/logrus"
)

// NumBTChannels is the number of Bluetooth channels in the AFH map.
const NumBTChannels = 79

// NMin is the safety floor: if more than one WLAN channel is in use, the
// number of remaining (usable) BT channels should not drop below this.
// Violating it is logged, never enforced: warn, but do not override the
// computed mask.
const NMin = 20

// Mask is the 79-bit BT channel exclusion mask, packed little-endian:
// bit 0 of byte 0 is BT channel 0. Bit 79 (unused, byte 9 bit 7) is
// always zero.
type Mask [10]byte

// Computer turns a WLAN-channels bitmap into a Mask.
type Computer struct {
	guard int
	log   logrus.FieldLogger
}

// New returns a Computer using the given guard band (number of BT
// channels excluded on either side of a WLAN carrier's center channel).
// log may be nil, in which case logrus.StandardLogger() is used.
func New(guardBand int, log logrus.FieldLogger) *Computer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Computer{guard: guardBand, log: log}
}

// wlanFreqMHz returns the center frequency of WLAN channel k (1..14).
func wlanFreqMHz(k int) int {
	if k == 14 {
		return 2484
	}
	return 2412 + 5*(k-1)
}

// btFreqMHz returns the center frequency of BT channel i (0..78).
func btFreqMHz(i int) int { return 2402 + i }

func setBit(m *Mask, i int)   { m[i/8] |= 1 << uint(i%8) }
func clearBit(m *Mask, i int) { m[i/8] &^= 1 << uint(i%8) }

// Compute builds the exclusion mask for the given WLAN-channels bitmap.
// Bits 14 and 15 of bitmap must be zero, or this returns
// InvalidParameters (false). GUARD is the configured guard band.
func (c *Computer) Compute(bitmap uint16) (Mask, bool) {
	if bitmap&0xC000 != 0 {
		return Mask{}, false
	}

	var mask Mask
	for i := 0; i < NumBTChannels; i++ {
		setBit(&mask, i)
	}

	channelsUsed := 0
	for k := 1; k <= 14; k++ {
		bit := k - 1
		if bitmap&(1<<uint(bit)) == 0 {
			continue
		}
		channelsUsed++
		center := wlanFreqMHz(k) - 2402
		for i := 0; i < NumBTChannels; i++ {
			if abs(i-center) <= c.guard {
				clearBit(&mask, i)
			}
		}
	}

	if channelsUsed > 1 {
		remaining := 0
		for i := 0; i < NumBTChannels; i++ {
			if mask[i/8]&(1<<uint(i%8)) != 0 {
				remaining++
			}
		}
		if remaining < NMin {
			c.log.WithFields(logrus.Fields{
				"remaining_channels": remaining,
				"floor":              NMin,
				"wlan_channels_used": channelsUsed,
			}).Error("afh: remaining BT channel count below safety floor, sending mask as-is")
		}
	}

	return mask, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Coupler implements the optional "disable Channel Assessment while
// WLAN is active" policy.
type Coupler struct {
	mode             model.CAMode
	turnedOffByUs    bool
	controllerMemory model.AFHMode
}

// NewCoupler returns a Coupler configured with the given mode.
func NewCoupler(mode model.CAMode) *Coupler {
	return &Coupler{mode: mode, controllerMemory: model.AFHUnknown}
}

// OnWlanBecameActive runs the transition to "WLAN has >=1 channel in
// use". read queries the controller's current AFH mode (used only for
// CAReadFromController); write commands the controller's AFH mode.
func (c *Coupler) OnWlanBecameActive(read func() model.AFHMode, write func(model.AFHMode)) {
	switch c.mode {
	case model.CALeaveAlone:
		return
	case model.CAReadFromController:
		m := read()
		c.controllerMemory = m
		if m == model.AFHOn {
			write(model.AFHOff)
			c.turnedOffByUs = true
		}
	case model.CAAssumeInitiallyOn:
		write(model.AFHOff)
		c.turnedOffByUs = true
	case model.CAAssumeInitiallyOff:
		c.turnedOffByUs = false
	}
}

// OnWlanBecameIdle runs the transition to "WLAN idle". write is called
// only if this Coupler itself turned Channel Assessment off.
func (c *Coupler) OnWlanBecameIdle(write func(model.AFHMode)) {
	if c.mode == model.CALeaveAlone {
		return
	}
	if c.turnedOffByUs {
		write(model.AFHOn)
		c.turnedOffByUs = false
	}
	if c.mode == model.CAReadFromController {
		c.controllerMemory = model.AFHUnknown
	}
}
