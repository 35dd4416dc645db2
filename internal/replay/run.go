package replay

import (
	"fmt"
	"net"

	btces "github.com/btces/btces"
)

// Run feeds every step of s into core, in order, ignoring After delays
// (a live replay driver that cares about timing should sleep between
// calls itself; Run is meant for fast deterministic fixture replay).
func Run(core *btces.Core, s *Session) error {
	for i, step := range s.Steps {
		if err := applyStep(core, step); err != nil {
			return fmt.Errorf("replay: step %d: %w", i, err)
		}
	}
	return nil
}

func applyStep(core *btces.Core, step Step) error {
	if step.Command != "" {
		frame, err := DecodeFrame(step.Command)
		if err != nil {
			return fmt.Errorf("decoding command: %w", err)
		}
		core.OnHCICommand(frame)
	}
	if step.Event != "" {
		frame, err := DecodeFrame(step.Event)
		if err != nil {
			return fmt.Errorf("decoding event: %w", err)
		}
		core.OnHCIEvent(frame)
	}
	if step.Native != nil {
		n, err := nativeFromStep(*step.Native)
		if err != nil {
			return err
		}
		core.OnNative(n)
	}
	if step.WLAN != nil {
		core.SetWLANChannels(*step.WLAN)
	}
	return nil
}

func nativeFromStep(ns NativeStep) (btces.Native, error) {
	var kind btces.NativeKind
	switch ns.Kind {
	case "DeviceSwitchedOn":
		kind = btces.DeviceSwitchedOn
	case "DeviceSwitchedOff":
		kind = btces.DeviceSwitchedOff
	case "A2DPStreamStart":
		kind = btces.A2DPStreamStart
	case "A2DPStreamStop":
		kind = btces.A2DPStreamStop
	default:
		return btces.Native{}, fmt.Errorf("unknown native kind %q", ns.Kind)
	}

	var addr btces.Addr
	if ns.Addr != "" {
		hw, err := net.ParseMAC(ns.Addr)
		if err != nil {
			return btces.Native{}, fmt.Errorf("parsing native addr %q: %w", ns.Addr, err)
		}
		if len(hw) != 6 {
			return btces.Native{}, fmt.Errorf("native addr %q is not 6 bytes", ns.Addr)
		}
		copy(addr[:], hw)
	}
	return btces.Native{Kind: kind, Addr: addr}, nil
}
