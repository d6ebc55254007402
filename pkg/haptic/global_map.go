package haptic

import (
	"sync"

	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/spatial"
)

// RefreshFunc is a callback invoked at the start of every tick (via
// GlobalMap.RefreshInputs) that lets a signal source reassert its current
// input nodes from private state (spec.md §3, "refresh hooks").
type RefreshFunc func(m *GlobalMap)

// GlobalMap is the canonical spatial state of the body: every currently
// known InputNode, plus the global enable/offset gate and the refresh
// hooks. Active time-phased Events are held by event.Pool, not by the map.
// The inputs map is guarded by a RWMutex so
// device packet synthesis can read concurrently while the orchestrator
// holds the tick-scoped write barrier (spec.md §4.2, §5).
type GlobalMap struct {
	mu     sync.RWMutex
	inputs map[ID]*InputNode

	// GlobalOffset multiplies every intensity read through GetIntensity.
	GlobalOffset float32
	// GlobalEnable gates intensity reads when respectEnable is true.
	GlobalEnable bool

	hooksMu sync.Mutex
	hooks   []RefreshFunc
}

// NewGlobalMap returns an empty map with GlobalOffset=1 and
// GlobalEnable=true, matching the defaults in spec.md §3.
func NewGlobalMap() *GlobalMap {
	return &GlobalMap{
		inputs:       make(map[ID]*InputNode),
		GlobalOffset: 1,
		GlobalEnable: true,
	}
}

// AddInputNode inserts a new InputNode under id. Returns ErrDuplicateID if
// id is already present.
func (m *GlobalMap) AddInputNode(node Node, tags []string, id ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.inputs[id]; exists {
		return ErrDuplicateID
	}
	in := NewInputNode(node, tags, id)
	m.inputs[id] = &in
	return nil
}

// Upsert inserts or replaces the InputNode under id, used by refresh hooks
// that reassert their current state every tick without caring whether the
// node already existed.
func (m *GlobalMap) Upsert(node Node, tags []string, id ID, intensity float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in := NewInputNode(node, tags, id)
	in.SetIntensity(intensity)
	m.inputs[id] = &in
}

// RemoveInputNode removes id. Returns ErrNotFound if absent.
func (m *GlobalMap) RemoveInputNode(id ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.inputs[id]; !exists {
		return ErrNotFound
	}
	delete(m.inputs, id)
	return nil
}

// RemoveAllWithTag bulk-removes every InputNode carrying tag.
func (m *GlobalMap) RemoveAllWithTag(tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, in := range m.inputs {
		if in.HasTag(tag) {
			delete(m.inputs, id)
		}
	}
}

// SetIntensity sets id's raw intensity. Returns ErrNotFound if absent.
func (m *GlobalMap) SetIntensity(id ID, v float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.inputs[id]
	if !ok {
		return ErrNotFound
	}
	in.SetIntensity(v)
	return nil
}

// SetPosition moves an existing InputNode, used by MovingLocation events.
// Returns ErrNotFound if absent.
func (m *GlobalMap) SetPosition(id ID, pos spatial.Vec3) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.inputs[id]
	if !ok {
		return ErrNotFound
	}
	in.SetPosition(pos)
	return nil
}

// SetIntensityByTag sets the intensity of every InputNode carrying any of
// tags. Unlike SetIntensity, a miss (no matching nodes) is not an error:
// the Tags effect type is inherently best-effort (spec.md §4.3).
func (m *GlobalMap) SetIntensityByTag(tags []string, v float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, in := range m.inputs {
		if in.HasTag(tags...) {
			in.SetIntensity(v)
		}
	}
}

// GetIntensity returns id's intensity scaled by GlobalOffset. When
// respectEnable is true and GlobalEnable is false, it returns 0 without an
// error (the node still must exist).
func (m *GlobalMap) GetIntensity(id ID, respectEnable bool) (float32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if respectEnable && !m.GlobalEnable {
		if _, ok := m.inputs[id]; !ok {
			return 0, ErrNotFound
		}
		return 0, nil
	}
	in, ok := m.inputs[id]
	if !ok {
		return 0, ErrNotFound
	}
	return in.Intensity() * m.GlobalOffset, nil
}

// GetIntensityFor runs the interpolation engine over the current input
// cloud for a single device node. When respectEnable is true and
// GlobalEnable is false, it short-circuits to 0.
func (m *GlobalMap) GetIntensityFor(node Node, algo Interpolator, respectEnable bool) float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if respectEnable && !m.GlobalEnable {
		return 0
	}
	return algo.Interpolate([]Node{node}, m.snapshotLocked())[0]
}

// GetIntensitiesFor runs the interpolation engine over the current input
// cloud for a batch of device nodes in one pass, the form used by device
// tick() so all of a device's motors share one read lock acquisition.
func (m *GlobalMap) GetIntensitiesFor(nodes []Node, algo Interpolator, respectEnable bool) []float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if respectEnable && !m.GlobalEnable {
		return make([]float32, len(nodes))
	}
	return algo.Interpolate(nodes, m.snapshotLocked())
}

// snapshotLocked returns the current input nodes as a slice. Callers must
// hold at least a read lock.
func (m *GlobalMap) snapshotLocked() []*InputNode {
	out := make([]*InputNode, 0, len(m.inputs))
	for _, in := range m.inputs {
		out = append(out, in)
	}
	return out
}

// RegisterRefresh attaches a callback invoked at the start of every
// RefreshInputs call.
func (m *GlobalMap) RegisterRefresh(fn RefreshFunc) {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()
	m.hooks = append(m.hooks, fn)
}

// RefreshInputs runs every registered refresh hook in registration order.
// Called once at the start of every orchestrator tick, before events
// advance (spec.md §5 ordering guarantee).
func (m *GlobalMap) RefreshInputs() {
	m.hooksMu.Lock()
	hooks := make([]RefreshFunc, len(m.hooks))
	copy(hooks, m.hooks)
	m.hooksMu.Unlock()

	for _, hook := range hooks {
		hook(m)
	}
}

// Len reports the number of currently registered input nodes, mainly for
// tests and diagnostics.
func (m *GlobalMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.inputs)
}
