package main

import (
	"github.com/btces/btces"
	"github.com/sirupsen/logrus"
)

// loggingAFHSink stands in for a real controller transport: it just logs
// the mask it would have pushed down over HCI. A host wiring btces into
// an actual stack replaces this with one that writes HCI_Set_AFH_Host_Channel_Classification.
type loggingAFHSink struct {
	log logrus.FieldLogger
}

func (s loggingAFHSink) SetAFHMask(mask btces.AFHMask) error {
	s.log.WithField("mask", mask).Info("btcesctl: pushing AFH mask")
	return nil
}

// loggingCASink is the Channel Assessment counterpart: with no real
// controller to talk to, reads report Unknown and writes are logged.
type loggingCASink struct {
	log logrus.FieldLogger
}

func (s loggingCASink) ReadAFHMode() btces.AFHMode {
	s.log.Info("btcesctl: reading AFH mode (no controller, reporting Unknown)")
	return btces.AFHModeUnknown
}

func (s loggingCASink) WriteAFHMode(mode btces.AFHMode) {
	s.log.WithField("mode", mode).Info("btcesctl: writing AFH mode")
}
