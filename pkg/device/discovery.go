package device

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/ifacemulticast"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/persistence"
)

const (
	discoveryAddress = "0.0.0.0:8888"
	multicastGroup   = "239.0.0.1"
)

// advertisement is the wire shape of a discovery datagram, per spec.md §6.
type advertisement struct {
	MAC  string `json:"mac"`
	IP   string `json:"ip"`
	Name string `json:"name"`
	Port uint16 `json:"port"`
}

// nextRecvPort hands out ephemeral per-device OSC listener ports starting
// at 1500, as spec.md §4.7/§6 describes.
var nextRecvPort atomic.Int64

func init() {
	nextRecvPort.Store(1500)
}

func allocRecvPort() int {
	return int(nextRecvPort.Add(1) - 1)
}

// Registry is the live set of discovered devices, keyed by MAC address.
type Registry struct {
	mu      sync.Mutex
	devices map[string]*Device
	factors persistence.FactorStore
}

// NewRegistry returns an empty registry. factors may be nil if no external
// per-device factor store is wired up.
func NewRegistry(factors persistence.FactorStore) *Registry {
	return &Registry{devices: make(map[string]*Device), factors: factors}
}

// Add registers an already-constructed device directly, bypassing
// discovery. Used by callers that learn about a device some other way
// (tests, a future pairing UI) rather than multicast advertisement.
func (r *Registry) Add(d *Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[d.ID] = d
}

// Snapshot returns every currently registered device, in no particular
// order, for the orchestrator's per-tick drive loop.
func (r *Registry) Snapshot() []*Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	return out
}

// DropDead removes every device with alive=false, per the orchestrator's
// tick-start write barrier (spec.md §4.8 step 1).
func (r *Registry) DropDead() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, d := range r.devices {
		if !d.Alive() {
			_ = d.Stop()
			delete(r.devices, id)
		}
	}
}

func (r *Registry) onAdvertisement(adv advertisement) {
	r.mu.Lock()
	existing, ok := r.devices[adv.MAC]
	r.mu.Unlock()

	if ok {
		existing.ResetPing()
		return
	}

	d, err := New(adv.MAC, adv.Name, adv.IP, adv.Port, allocRecvPort())
	if err != nil {
		slog.Error("device: failed to start listener for new device", "mac", adv.MAC, "error", err)
		return
	}

	if r.factors != nil {
		if v, ok := r.factors.GetFactor(adv.MAC, "sens_mult"); ok {
			d.SetSensMult(v)
		}
	}

	d.Start()

	r.mu.Lock()
	r.devices[adv.MAC] = d
	r.mu.Unlock()
}

// Listener is the UDP multicast discovery listener bound to 0.0.0.0:8888,
// grounded on devices/wifi/discovery.rs's start_wifi_listener.
type Listener struct {
	registry *Registry
	conn     *net.UDPConn
	running  atomic.Bool
	wg       sync.WaitGroup
	cancel   context.CancelFunc
}

// NewListener binds the discovery socket and joins the multicast group on
// every eligible interface.
func NewListener(registry *Registry) (*Listener, error) {
	addr, err := net.ResolveUDPAddr("udp4", discoveryAddress)
	if err != nil {
		return nil, fmt.Errorf("device: resolve discovery address: %w", err)
	}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("device: bind discovery socket: %w", err)
	}

	if results, err := ifacemulticast.JoinAll(conn, net.ParseIP(multicastGroup)); err != nil {
		slog.Warn("device: failed to enumerate interfaces for multicast join", "error", err)
	} else {
		for _, r := range results {
			if r.Err != nil {
				slog.Debug("device: failed to join multicast on interface", "interface", r.Interface, "error", r.Err)
			}
		}
	}

	return &Listener{registry: registry, conn: conn}, nil
}

// Start launches the receive loop.
func (l *Listener) Start(ctx context.Context) {
	if !l.running.CompareAndSwap(false, true) {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	l.wg.Add(1)
	go l.readLoop(ctx)
}

// Stop halts the receive loop and releases the socket.
func (l *Listener) Stop() error {
	if !l.running.CompareAndSwap(true, false) {
		return nil
	}
	if l.cancel != nil {
		l.cancel()
	}
	err := l.conn.Close()
	l.wg.Wait()
	return err
}

func (l *Listener) readLoop(ctx context.Context) {
	defer l.wg.Done()

	buf := make([]byte, 1024)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, _, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if !l.running.Load() {
				return
			}
			slog.Debug("device: discovery read error", "error", err)
			continue
		}

		var adv advertisement
		if err := json.Unmarshal(buf[:n], &adv); err != nil {
			slog.Warn("device: invalid discovery datagram", "error", err)
			continue
		}
		if adv.MAC == "" {
			adv.MAC = "UNKNOWN_MAC"
		}
		if adv.IP == "" {
			adv.IP = "UNKNOWN_IP"
		}
		if adv.Name == "" {
			adv.Name = "Unknown Device"
		}
		if adv.Port == 0 {
			adv.Port = 1027
		}

		l.registry.onAdvertisement(adv)
	}
}
