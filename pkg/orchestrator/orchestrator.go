// Package orchestrator runs the single 100 Hz tick loop that drives the
// rest of the router: refresh hooks, event advancement, and per-device
// packet synthesis/send, in the fixed order spec.md §4.8/§5 describes.
package orchestrator

import (
	"context"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/device"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/event"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/gamesession"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/haptic"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/protolog"
)

const (
	// tickInterval is the orchestrator's cadence: 100 Hz.
	tickInterval = 10 * time.Millisecond
	// slipWarning is the threshold past which a late tick is logged.
	slipWarning = 11 * time.Millisecond
)

// Config wires the orchestrator to the subsystems it drives each tick.
// Map, Pool, Devices, Algo, and Conn are required; GameSession and
// ProtoLog are optional (pass nil to omit them, e.g. in tests).
type Config struct {
	Map        *haptic.GlobalMap
	Pool       *event.Pool
	Devices    *device.Registry
	GameSession *gamesession.Session
	Algo       haptic.Interpolator
	// RespectEnable is threaded through to every device's intensity read.
	RespectEnable bool
	// Conn is the shared outbound UDP socket used to send every device
	// packet this tick produces. Binding it is the caller's
	// responsibility; failure to bind is the one fatal startup error
	// spec.md §7 names.
	Conn *net.UDPConn
	// ProtoLog records tick-timing warnings as service layer events.
	// Optional; nil disables protocol logging.
	ProtoLog protolog.Logger
}

// Orchestrator runs Config's subsystems on a single drift-compensating
// 100 Hz loop, per spec.md §4.8.
type Orchestrator struct {
	cfg     Config
	running atomic.Bool
	done    chan struct{}
}

// New returns an Orchestrator for cfg. Map, Pool, Devices, Algo, and Conn
// must be non-nil.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{cfg: cfg, done: make(chan struct{})}
}

// Run drives the tick loop until ctx is cancelled. It blocks; callers
// typically invoke it in its own goroutine. Run is idempotent: a second
// concurrent call returns immediately without doing anything.
func (o *Orchestrator) Run(ctx context.Context) {
	if !o.running.CompareAndSwap(false, true) {
		return
	}
	defer close(o.done)
	defer o.running.Store(false)

	next := time.Now().Add(tickInterval)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		wait := time.Until(next)
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		start := time.Now()
		if slip := start.Sub(next); slip > slipWarning {
			slog.Warn("orchestrator: tick slipped", "slip", slip)
			if o.cfg.ProtoLog != nil {
				o.cfg.ProtoLog.Log(protolog.Event{
					Timestamp: start,
					Layer:     protolog.LayerService,
					Category:  protolog.CategoryTickWarning,
					TickWarning: &protolog.TickWarningEvent{
						SlipNanos: int64(slip),
					},
				})
			}
		}
		o.tick()

		next = next.Add(tickInterval)
		// A long stall (e.g. debugger pause, GC, suspended process) can
		// leave next far behind now; re-anchor instead of firing a burst
		// of catch-up ticks.
		if now := time.Now(); next.Before(now) {
			next = now.Add(tickInterval)
		}
	}
}

// Stop blocks until a Run started with a now-cancelled context has
// actually returned. Safe to call even if Run was never started.
func (o *Orchestrator) Stop() {
	if !o.running.Load() {
		return
	}
	<-o.done
}

// tick performs one orchestrator cycle: drop dead devices, refresh
// inputs, advance events, then drive every device. Order is fixed per
// spec.md §5.
func (o *Orchestrator) tick() {
	o.cfg.Devices.DropDead()

	o.cfg.Map.RefreshInputs()

	if o.cfg.GameSession != nil {
		o.cfg.GameSession.Tick(o.cfg.Pool)
	}
	o.cfg.Pool.Tick()

	for _, d := range o.cfg.Devices.Snapshot() {
		pkt := d.Tick(o.cfg.Map, o.cfg.Algo, o.cfg.RespectEnable)
		if pkt == nil {
			continue
		}
		if _, err := o.cfg.Conn.WriteTo(pkt.Data, pkt.Dest); err != nil {
			slog.Debug("orchestrator: device send failed", "device", d.ID, "error", err)
		}
	}
}
