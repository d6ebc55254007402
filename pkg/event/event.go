// Package event implements time-phased effects over the haptic global map:
// a sequence of intensity steps spread across a duration, applied to one or
// more InputNodes (or a transient node spawned for the event's lifetime).
package event

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/haptic"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/spatial"
)

// EffectType describes what an Event's steps are applied to.
type EffectType uint8

const (
	// SingleNode sets one existing InputNode's intensity per step.
	SingleNode EffectType = iota
	// MultipleNodes sets several existing InputNodes' intensity per step.
	MultipleNodes
	// Tags sets the intensity of every InputNode carrying any of a set of
	// tags per step.
	Tags
	// Location spawns a transient All-group InputNode at a fixed position,
	// driven by the step values, removed when the event finishes.
	Location
	// MovingLocation spawns a transient All-group InputNode that walks a
	// waypoint path over the course of the event, removed when finished.
	MovingLocation
)

// Effect is a tagged union selecting one of the EffectType variants. Exactly
// the fields relevant to Type are consulted.
type Effect struct {
	Type EffectType

	NodeID  haptic.ID   // SingleNode
	NodeIDs []haptic.ID // MultipleNodes
	Tags    []string    // Tags
	Point   spatial.Vec3   // Location
	Path    []spatial.Vec3 // MovingLocation
}

// Event represents a haptic effect that plays out over time against a
// haptic.GlobalMap.
type Event struct {
	// Name is the user-facing identifier shown in logs and the UI.
	Name string
	// Effect selects what the steps are applied to.
	Effect Effect
	// Tags are attached to any transient node this event creates, and are
	// used by GlobalMap.RemoveAllWithTag / Pool.Clear for bulk cleanup.
	Tags []string
	// Duration is the total span the steps are distributed over.
	Duration time.Duration

	steps         []float32
	timeStep      time.Duration
	managedNodes  []haptic.ID
	stepsCompleted int
	startTime     time.Time
	started       bool
}

// New validates and constructs an Event. steps must be non-empty, and
// duration/len(steps) must be at least 9ms (a rounding-safety floor below
// the documented 10ms minimum). An empty tags slice is permitted but
// logged at warn level, since tagless events cannot be bulk-cleared.
func New(name string, effect Effect, steps []float32, duration time.Duration, tags []string) (*Event, error) {
	if len(steps) < 1 {
		return nil, ErrEmptySteps
	}

	timeStep := duration / time.Duration(len(steps))
	if timeStep < 9*time.Millisecond {
		return nil, ErrTimestepTooSmall
	}

	if len(tags) == 0 {
		slog.Warn("event created without tags, cannot be bulk-cleared", "name", name)
	}

	return &Event{
		Name:     name,
		Effect:   effect,
		Tags:     tags,
		Duration: duration,
		steps:    steps,
		timeStep: timeStep,
	}, nil
}

// Tick propagates this event's current step into m, initiating it on first
// call and cleaning up transient state once its duration has elapsed.
// Reports whether the event should be dropped from its pool.
func (e *Event) Tick(m *haptic.GlobalMap) bool {
	e.initiate(m)

	now := time.Now()
	elapsed := now.Sub(e.startTime)
	if elapsed < 0 {
		elapsed = 0
	}

	shouldHaveFired := int(elapsed / e.timeStep)

	for e.stepsCompleted <= shouldHaveFired && e.stepsCompleted < len(e.steps) {
		e.applyEffect(e.steps[e.stepsCompleted], m)
		e.stepsCompleted++
	}

	if elapsed >= e.Duration {
		e.cleanup(m)
		return true
	}
	return false
}

// initiate spawns any transient node this event's effect needs. No-op on
// every call after the first.
func (e *Event) initiate(m *haptic.GlobalMap) {
	if e.started {
		return
	}
	e.started = true
	e.startTime = time.Now()

	switch e.Effect.Type {
	case Location:
		id := haptic.ID(uuid.NewString())
		node := haptic.Node{Position: e.Effect.Point, Groups: spatial.NewGroupSet(spatial.All)}
		m.Upsert(node, e.Tags, id, 0)
		e.managedNodes = append(e.managedNodes, id)
	case MovingLocation:
		if len(e.Effect.Path) == 0 {
			return
		}
		id := haptic.ID(uuid.NewString())
		node := haptic.Node{Position: e.Effect.Path[0], Groups: spatial.NewGroupSet(spatial.All)}
		m.Upsert(node, e.Tags, id, 0)
		e.managedNodes = append(e.managedNodes, id)
	}
}

func (e *Event) applyEffect(value float32, m *haptic.GlobalMap) {
	switch e.Effect.Type {
	case SingleNode:
		_ = m.SetIntensity(e.Effect.NodeID, value)
	case MultipleNodes:
		for _, id := range e.Effect.NodeIDs {
			_ = m.SetIntensity(id, value)
		}
	case Tags:
		m.SetIntensityByTag(e.Effect.Tags, value)
	case Location:
		if len(e.managedNodes) == 0 {
			return
		}
		_ = m.SetIntensity(e.managedNodes[0], value)
	case MovingLocation:
		if len(e.managedNodes) == 0 || len(e.Effect.Path) == 0 {
			return
		}
		idx := e.stepsCompleted
		if idx >= len(e.Effect.Path) {
			idx = len(e.Effect.Path) - 1
		}
		id := e.managedNodes[0]
		_ = m.SetPosition(id, e.Effect.Path[idx])
		_ = m.SetIntensity(id, value)
	}
}

// cleanup removes transient nodes or zeroes persistent ones, once the
// event's duration has elapsed.
func (e *Event) cleanup(m *haptic.GlobalMap) {
	switch e.Effect.Type {
	case Location, MovingLocation:
		for _, id := range e.managedNodes {
			_ = m.RemoveInputNode(id)
		}
	case SingleNode:
		_ = m.SetIntensity(e.Effect.NodeID, 0)
	}
}

// Done reports whether the event has started and its duration has elapsed,
// without performing any side effects. It does not check how many steps
// have been applied.
func (e *Event) Done() bool {
	if !e.started {
		return false
	}
	return time.Since(e.startTime) >= e.Duration
}

// Clone returns a copy of e with its runtime state reset, ready to be
// started fresh in a Pool. Callers that cache a template Event (a catalog
// keyed by name, say) must Clone it before every Pool.Start: the same
// *Event pointer carries started/stepsCompleted/managedNodes across plays,
// so re-adding it after it has already run once adds an already-expired
// event that Tick drops on the spot.
func (e *Event) Clone() *Event {
	clone := *e
	clone.steps = append([]float32(nil), e.steps...)
	clone.managedNodes = nil
	clone.stepsCompleted = 0
	clone.startTime = time.Time{}
	clone.started = false
	return &clone
}
