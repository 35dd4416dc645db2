package btces

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Option configures a Core at construction time.
type Option func(*Core) error

// WithTimer supplies the platform timer service. Required: New fails
// with StatusInvalidParameters if no timer is configured.
func WithTimer(t Timer) Option {
	return func(c *Core) error {
		c.timer = t
		return nil
	}
}

// WithAFHSink supplies the sink that receives computed AFH masks.
// Required: New fails with StatusInvalidParameters if no sink is
// configured.
func WithAFHSink(sink AFHSink) Option {
	return func(c *Core) error {
		c.afhSink = sink
		return nil
	}
}

// WithPowerSink supplies the sink queried once at Init to learn whether
// the controller is already powered on. Optional: a core with no
// PowerSink assumes the controller starts powered off.
func WithPowerSink(sink PowerSink) Option {
	return func(c *Core) error {
		c.powerSink = sink
		return nil
	}
}

// WithCASink supplies the sink used to read/command the controller's
// Channel Assessment mode. Required only when WithCAMode selects
// anything other than CALeaveAlone (the default).
func WithCASink(sink CASink) Option {
	return func(c *Core) error {
		c.caSink = sink
		return nil
	}
}

// WithCAMode selects how Channel Assessment is coupled to WLAN activity.
// Defaults to CALeaveAlone (no coupling).
func WithCAMode(mode CAMode) Option {
	return func(c *Core) error {
		c.caMode = mode
		return nil
	}
}

// WithGuardBand overrides the number of BT channels excluded on either
// side of a WLAN carrier's center channel when computing the AFH mask.
// Defaults to 11 (roughly 22 MHz / 1 MHz per BT channel, a typical WLAN
// channel's occupied bandwidth). Values above 29 are rejected: a single
// WLAN channel would already exclude enough of the band to undercut the
// minimum-usable-channels floor.
func WithGuardBand(n int) Option {
	return func(c *Core) error {
		if n < 0 || n > MaxGuardBand {
			return fmt.Errorf("btces: guard band %d out of range 0..%d", n, MaxGuardBand)
		}
		c.guardBand = n
		return nil
	}
}

// WithLogger supplies a structured logger. Defaults to
// logrus.StandardLogger().
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Core) error {
		c.log = log
		return nil
	}
}

// DefaultGuardBand is used when WithGuardBand is not supplied.
const DefaultGuardBand = 11

// MaxGuardBand is the largest guard band WithGuardBand accepts.
const MaxGuardBand = 29
