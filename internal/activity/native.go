package activity

import "github.com/btces/btces/internal/model"

// handleNative processes one platform notification. DeviceSwitchedOn is a
// no-op beyond the implicit power-on already performed by OnNative;
// DeviceSwitchedOff tears down an active controller.
func (m *Machine) handleNative(n model.Native) {
	switch n.Kind {
	case model.DeviceSwitchedOn:
		// ensurePoweredOn already handled the transition, if any was needed.
	case model.DeviceSwitchedOff:
		if m.btOn {
			m.closeout(true)
		}
	case model.A2DPStreamStart:
		_, rec := m.tbl.FindByAddr(n.Addr)
		if rec == nil || rec.AclState != model.AclConnected {
			m.log.Debug("activity: A2DPStreamStart dropped, no connected ACL link")
			return
		}
		rec.AclState = model.AclStreaming
		m.emitEvent(model.Event{Code: model.EventA2DPStreamStart, Addr: n.Addr})
	case model.A2DPStreamStop:
		_, rec := m.tbl.FindByAddr(n.Addr)
		if rec == nil || rec.AclState != model.AclStreaming {
			m.log.Debug("activity: A2DPStreamStop dropped, link not streaming")
			return
		}
		rec.AclState = model.AclConnected
		m.emitEvent(model.Event{Code: model.EventA2DPStreamStop, Addr: n.Addr})
	}
}
