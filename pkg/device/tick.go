package device

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/haptic"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/osc"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/protolog"
)

// Tick advances the device's state machine by one orchestrator tick and
// returns the packet to send, if any, per spec.md §4.7. algo is the
// interpolation engine used to read the Global Haptic Map; respectEnable
// is threaded through to GetIntensitiesFor.
func (d *Device) Tick(m *haptic.GlobalMap, algo haptic.Interpolator, respectEnable bool) *Packet {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.updateAliveLocked()
	if !d.alive && d.state != NeedsPing {
		d.setStateLocked(NeedsPing, "heartbeat lost")
		d.config = nil
		return nil
	}

	switch d.state {
	case NeedsPing:
		d.setStateLocked(Pinging, "")
		d.pingedAt = time.Now()
		return d.packetLocked(buildPing(d.recvPort))

	case Pinging:
		if !d.lastHrtbt.IsZero() {
			d.setStateLocked(Configuring, "")
		}
		return nil

	case Configuring:
		if d.config != nil {
			d.setStateLocked(Running, "")
			d.nodeMap = d.config.NodeMap
			return nil
		}
		if d.lastQueried.IsZero() || time.Since(d.lastQueried) > configPollInterval {
			d.lastQueried = time.Now()
			return d.packetLocked(buildGetAll())
		}
		return nil

	case Running:
		if d.pushMap {
			d.pushMap = false
			return d.packetLocked(buildSetNodeMap(d.nodeMap))
		}
		intensities := m.GetIntensitiesFor(d.nodeMap, algo, respectEnable)
		for i, v := range intensities {
			intensities[i] = v * d.sensMult
		}
		return d.packetLocked(buildIntensities(intensities))
	}

	return nil
}

// updateAliveLocked maintains the alive flag from heartbeat recency,
// mirroring manage_hrtbt: before any heartbeat has arrived, liveness is
// judged against the time the most recent ping was sent instead.
func (d *Device) updateAliveLocked() {
	if d.lastHrtbt.IsZero() {
		if d.state == Pinging && time.Since(d.pingedAt) > heartbeatTimeout {
			d.alive = false
		}
		return
	}
	d.alive = time.Since(d.lastHrtbt) <= heartbeatTimeout
}

// setStateLocked transitions the device to next, logging the transition as
// a service layer event if a protocol logger is attached. Callers must
// hold d.mu.
func (d *Device) setStateLocked(next State, reason string) {
	old := d.state
	d.state = next
	if d.protoLog == nil || old == next {
		return
	}
	d.protoLog.Log(protolog.Event{
		Timestamp: time.Now(),
		Layer:     protolog.LayerService,
		Category:  protolog.CategoryState,
		DeviceID:  d.ID,
		StateChange: &protolog.DeviceStateEvent{
			OldState: old.String(),
			NewState: next.String(),
			Reason:   reason,
		},
	})
}

func (d *Device) packetLocked(msg osc.Message) *Packet {
	addr := &net.UDPAddr{IP: net.ParseIP(d.IP), Port: int(d.SendPort)}
	return &Packet{Dest: addr, Data: osc.Encode(msg)}
}

func buildPing(recvPort int) osc.Message {
	return osc.Message{Address: "/ping", Args: []osc.Arg{osc.Int(int32(recvPort))}}
}

func buildGetAll() osc.Message {
	return osc.Message{Address: commandAddress, Args: []osc.Arg{osc.String("get all")}}
}

// buildSetNodeMap mirrors WifiDevice::build_set_map: "SET NODE_MAP " plus
// the lowercase-hex concatenation of each node's 8-byte encoding.
func buildSetNodeMap(nodes []haptic.Node) osc.Message {
	var sb strings.Builder
	sb.WriteString("SET NODE_MAP ")
	for _, n := range nodes {
		b := n.ToBytes()
		fmt.Fprintf(&sb, "%02x%02x%02x%02x%02x%02x%02x%02x",
			b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7])
	}
	return osc.Message{Address: commandAddress, Args: []osc.Arg{osc.String(sb.String())}}
}

// buildIntensities mirrors WifiDevice::compile_to_bytes: each clamped
// [0,1] float becomes a 4-digit lowercase hex word (value * 0xffff,
// rounded), concatenated into one string sent as "/h".
func buildIntensities(values []float32) osc.Message {
	var sb strings.Builder
	for _, v := range values {
		clamped := v
		if clamped < 0 {
			clamped = 0
		} else if clamped > 1 {
			clamped = 1
		}
		scaled := uint16(clamped*0xffff + 0.5)
		fmt.Fprintf(&sb, "%04x", scaled)
	}
	return osc.Message{Address: "/h", Args: []osc.Arg{osc.String(sb.String())}}
}
