// Package replay loads a recorded BT-CES session from a YAML fixture and
// feeds it to a core, for offline reproduction of a captured HCI log
// (diagnostics, regression fixtures for end-to-end scenarios).
package replay

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Session is one recorded sequence of inputs to feed to a core, in order.
type Session struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one input event in a Session. Exactly one of Command, Event,
// Native, or WLAN should be set; After, if nonzero, is an advisory delay the
// replay driver may honor before applying this step (the core itself is
// not time-aware beyond its own timers).
type Step struct {
	After   time.Duration `yaml:"after"`
	Command string        `yaml:"command"` // hex-encoded HCI command frame
	Event   string        `yaml:"event"`   // hex-encoded HCI event frame
	Native  *NativeStep   `yaml:"native"`
	WLAN    *uint16       `yaml:"wlan_channels"`
}

// NativeStep names an out-of-band platform notification.
type NativeStep struct {
	Kind string `yaml:"kind"` // DeviceSwitchedOn, DeviceSwitchedOff, A2DPStreamStart, A2DPStreamStop
	Addr string `yaml:"addr"` // colon-separated hex, meaningful for A2DP kinds
}

// Load reads and parses a Session fixture from path.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("replay: reading %s: %w", path, err)
	}
	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("replay: parsing %s: %w", path, err)
	}
	return &s, nil
}

// DecodeFrame hex-decodes one Command/Event field. Empty input decodes to
// a nil, zero-length frame.
func DecodeFrame(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}
