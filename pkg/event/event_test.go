package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/haptic"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/spatial"
)

func TestNewRejectsEmptySteps(t *testing.T) {
	_, err := New("empty", Effect{Type: SingleNode}, nil, time.Second, []string{"t"})
	assert.ErrorIs(t, err, ErrEmptySteps)
}

func TestNewRejectsTinyTimestep(t *testing.T) {
	_, err := New("tiny", Effect{Type: SingleNode}, make([]float32, 1000), time.Millisecond, []string{"t"})
	assert.ErrorIs(t, err, ErrTimestepTooSmall)
}

func TestNewAllowsTaglessWithWarning(t *testing.T) {
	ev, err := New("tagless", Effect{Type: SingleNode}, []float32{1}, 100*time.Millisecond, nil)
	require.NoError(t, err)
	assert.Empty(t, ev.Tags)
}

func TestTickSingleNodeAppliesFirstStepImmediately(t *testing.T) {
	m := haptic.NewGlobalMap()
	node := haptic.Node{Position: spatial.Vec3{}, Groups: spatial.NewGroupSet(spatial.Head)}
	require.NoError(t, m.AddInputNode(node, nil, "target"))

	ev, err := New("buzz", Effect{Type: SingleNode, NodeID: "target"}, []float32{0.5, 0.9}, 20*time.Millisecond, []string{"t"})
	require.NoError(t, err)

	done := ev.Tick(m)
	assert.False(t, done)

	v, err := m.GetIntensity("target", false)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v, 1e-6)
}

func TestTickCompletesAndZeroesSingleNode(t *testing.T) {
	m := haptic.NewGlobalMap()
	node := haptic.Node{Position: spatial.Vec3{}, Groups: spatial.NewGroupSet(spatial.Head)}
	require.NoError(t, m.AddInputNode(node, nil, "target"))

	ev, err := New("buzz", Effect{Type: SingleNode, NodeID: "target"}, []float32{1.0}, 9*time.Millisecond, []string{"t"})
	require.NoError(t, err)

	// First tick starts the clock and applies step 0; it won't be "done"
	// until Duration has actually elapsed in wall-clock time.
	ev.Tick(m)
	time.Sleep(12 * time.Millisecond)
	done := ev.Tick(m)
	assert.True(t, done)

	v, err := m.GetIntensity("target", false)
	require.NoError(t, err)
	assert.Equal(t, float32(0), v)
}

func TestTickLocationSpawnsAndRemovesTransientNode(t *testing.T) {
	m := haptic.NewGlobalMap()
	ev, err := New("pulse", Effect{Type: Location, Point: spatial.Vec3{X: 1, Y: 2, Z: 3}}, []float32{1.0}, 9*time.Millisecond, []string{"t"})
	require.NoError(t, err)

	ev.Tick(m)
	assert.Equal(t, 1, m.Len())

	time.Sleep(12 * time.Millisecond)
	done := ev.Tick(m)
	assert.True(t, done)
	assert.Equal(t, 0, m.Len())
}

func TestTickMovingLocationWalksWaypoints(t *testing.T) {
	m := haptic.NewGlobalMap()
	path := []spatial.Vec3{{X: 0}, {X: 1}, {X: 2}}
	ev, err := New("sweep", Effect{Type: MovingLocation, Path: path}, []float32{0.2, 0.4, 0.6}, 30*time.Millisecond, []string{"t"})
	require.NoError(t, err)

	ev.Tick(m)
	require.Equal(t, 1, m.Len())
	require.Len(t, ev.managedNodes, 1)

	v, err := m.GetIntensity(ev.managedNodes[0], false)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, v, 1e-6)
}

func TestTickTagsAppliesToAllMatching(t *testing.T) {
	m := haptic.NewGlobalMap()
	node := haptic.Node{Position: spatial.Vec3{}, Groups: spatial.NewGroupSet(spatial.Head)}
	require.NoError(t, m.AddInputNode(node, []string{"vrc"}, "a"))
	require.NoError(t, m.AddInputNode(node, []string{"vrc"}, "b"))
	require.NoError(t, m.AddInputNode(node, []string{"game"}, "c"))

	ev, err := New("group", Effect{Type: Tags, Tags: []string{"vrc"}}, []float32{0.4}, 9*time.Millisecond, []string{"t"})
	require.NoError(t, err)
	ev.Tick(m)

	va, _ := m.GetIntensity("a", false)
	vb, _ := m.GetIntensity("b", false)
	vc, _ := m.GetIntensity("c", false)
	assert.InDelta(t, 0.4, va, 1e-6)
	assert.InDelta(t, 0.4, vb, 1e-6)
	assert.Equal(t, float32(0), vc)
}

func TestPoolTickDropsCompletedEvents(t *testing.T) {
	m := haptic.NewGlobalMap()
	ev, err := New("short", Effect{Type: Location, Point: spatial.Vec3{}}, []float32{1.0}, 9*time.Millisecond, []string{"t"})
	require.NoError(t, err)

	pool := NewPool(m)
	pool.Start(ev)
	assert.Equal(t, 1, pool.Len())

	pool.Tick()
	time.Sleep(12 * time.Millisecond)
	pool.Tick()

	assert.Equal(t, 0, pool.Len())
}

func TestPoolClearByTag(t *testing.T) {
	m := haptic.NewGlobalMap()
	a, err := New("a", Effect{Type: SingleNode, NodeID: "x"}, []float32{1}, 100*time.Millisecond, []string{"vrc"})
	require.NoError(t, err)
	b, err := New("b", Effect{Type: SingleNode, NodeID: "y"}, []float32{1}, 100*time.Millisecond, []string{"game"})
	require.NoError(t, err)

	pool := NewPool(m)
	pool.Start(a, b)
	pool.Clear("vrc")

	assert.Equal(t, 1, pool.Len())
}
