// Package device implements the Device Lifecycle: multicast discovery of
// wearable wifi devices, a per-device state machine (NeedsPing / Pinging /
// Configuring / Running), and the per-tick packet synthesis that drives
// them, grounded on devices/wifi/{mod,discovery,connection_manager,
// config}.rs.
package device

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/haptic"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/osc"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/protolog"
)

// State is a device's lifecycle phase (spec.md §4.7).
type State uint8

const (
	NeedsPing State = iota
	Pinging
	Configuring
	Running
)

func (s State) String() string {
	switch s {
	case NeedsPing:
		return "NeedsPing"
	case Pinging:
		return "Pinging"
	case Configuring:
		return "Configuring"
	case Running:
		return "Running"
	default:
		return "Unknown"
	}
}

const (
	heartbeatTimeout   = 2 * time.Second
	configPollInterval = 500 * time.Millisecond
	hrtbtAddress       = "/hrtbt"
	commandAddress     = "/command"
)

// Packet is the payload of an OSC message to send this tick, paired with
// the device's send address.
type Packet struct {
	Dest net.Addr
	Data []byte
}

// Device tracks one wearable's connection lifecycle and per-tick packet
// synthesis. The zero value is not usable; construct with New.
type Device struct {
	ID       string // mac address, per spec.md §4.7
	Name     string
	IP       string
	SendPort uint16

	mu          sync.Mutex
	state       State
	lastHrtbt   time.Time // zero until the first /hrtbt arrives
	pingedAt    time.Time
	lastQueried time.Time
	pushMap     bool
	nodeMap     []haptic.Node
	config      *WifiConfig

	oscServer *osc.Server
	recvPort  int

	alive    bool
	sensMult float32

	protoLog protolog.Logger
}

// SetProtoLog attaches a protocol logger that records every state
// transition this device makes. Optional; a device with no logger set
// simply doesn't emit state events.
func (d *Device) SetProtoLog(logger protolog.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.protoLog = logger
}

// New binds the device's own OSC listener on recvPort, mirroring
// WifiConnManager::new. A recvPort of 0 lets the OS pick an ephemeral
// port; the port actually bound is recorded on the device. The listener
// does not receive anything until Start is called.
func New(id, name, ip string, sendPort uint16, recvPort int) (*Device, error) {
	d := &Device{
		ID:       id,
		Name:     name,
		IP:       ip,
		SendPort: sendPort,
		state:    NeedsPing,
		alive:    true,
		sensMult: 1,
	}

	srv, err := osc.NewServer(osc.ServerConfig{
		Address:   fmt.Sprintf(":%d", recvPort),
		OnMessage: d.onMessage,
	})
	if err != nil {
		return nil, fmt.Errorf("device: start osc listener for %s: %w", id, err)
	}
	d.oscServer = srv
	d.recvPort = srv.LocalAddr().(*net.UDPAddr).Port
	return d, nil
}

// Start begins the device's OSC listener.
func (d *Device) Start() { d.oscServer.Start(context.Background()) }

// Stop halts the device's OSC listener.
func (d *Device) Stop() error { return d.oscServer.Stop() }

// ResetPing clears been_pinged, used when a duplicate discovery datagram
// arrives for an already-known device (devices/wifi/discovery.rs's "probably
// needs a reset" branch).
func (d *Device) ResetPing() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = NeedsPing
}

// SetNodeMap replaces the in-memory node map and flags it for push on the
// next Running tick.
func (d *Device) SetNodeMap(nodes []haptic.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nodeMap = nodes
	d.pushMap = true
}

// Alive reports whether the device answered its heartbeat within the
// timeout.
func (d *Device) Alive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.alive
}

// SetSensMult sets the per-device sensitivity multiplier applied to every
// intensity this device emits, restored from persistence.FactorStore on
// discovery.
func (d *Device) SetSensMult(v float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sensMult = v
}

func (d *Device) onMessage(_ *net.UDPAddr, msg osc.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch msg.Address {
	case hrtbtAddress:
		d.lastHrtbt = time.Now()
	case commandAddress:
		if len(msg.Args) == 0 || msg.Args[0].Kind != osc.ArgString {
			return
		}
		cfg, err := parseWifiConfig([]byte(msg.Args[0].String))
		if err != nil {
			return
		}
		d.config = cfg
	}
}
