package event

import (
	"sync"

	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/haptic"
)

// Pool holds the set of currently-active Events and ticks them against a
// shared haptic.GlobalMap. One Pool typically serves an entire tick
// orchestrator; VRChat avatar events and game-session events can share a
// Pool or use separate ones distinguished by tag.
type Pool struct {
	mu     sync.Mutex
	m      *haptic.GlobalMap
	active []*Event
}

// NewPool returns a Pool that applies its events to m.
func NewPool(m *haptic.GlobalMap) *Pool {
	return &Pool{m: m}
}

// Start adds events to the active pool. Nothing is applied here: each
// event's start time is set, and its first step applied, on the next Tick.
func (p *Pool) Start(events ...*Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = append(p.active, events...)
}

// Clear drops every active event that carries tag, without running their
// cleanup step. Used for hard interrupts (e.g. disconnect) where leftover
// node state will be torn down by the caller separately.
func (p *Pool) Clear(tag string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.active[:0]
	for _, ev := range p.active {
		found := false
		for _, t := range ev.Tags {
			if t == tag {
				found = true
				break
			}
		}
		if !found {
			kept = append(kept, ev)
		}
	}
	p.active = kept
}

// Tick advances every active event by one step and drops the ones that
// finished. Called once per orchestrator tick, after refresh hooks and
// before device reads (spec.md §5 ordering).
func (p *Pool) Tick() {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.active[:0]
	for _, ev := range p.active {
		if !ev.Tick(p.m) {
			kept = append(kept, ev)
		}
	}
	p.active = kept
}

// Len reports the number of currently active events.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}
