package gamesession

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/event"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/haptic"
)

func TestSessionOnConnectInstallsCanonicalMotors(t *testing.T) {
	m := haptic.NewGlobalMap()
	s := NewSession(nil)
	s.OnConnect(m)

	assert.Equal(t, 20+20+6+8+8, m.Len())
}

func TestSessionOnDisconnectRemovesOnlyBhapticsTag(t *testing.T) {
	m := haptic.NewGlobalMap()
	require.NoError(t, m.AddInputNode(haptic.Node{}, []string{"other"}, haptic.ID("keep")))

	s := NewSession(nil)
	s.OnConnect(m)
	s.OnDisconnect(m)

	assert.Equal(t, 1, m.Len())
}

func TestSessionHandleAuthInitSendsHandshake(t *testing.T) {
	s := NewSession(nil)

	var sent []any
	s.bindSender(func(v any) error {
		sent = append(sent, v)
		return nil
	})

	s.HandleMessage(AuthInitMessage{
		Haptic: HapticSection{Message: HapticSectionMessage{Name: "Game", Version: 1}},
	})

	require.Len(t, sent, 1)
	envs, ok := sent[0].([]sendEnvelope)
	require.True(t, ok)
	require.Len(t, envs, 3)
	assert.Equal(t, "ServerReady", envs[0].Type)
	assert.Equal(t, "ServerEventNameList", envs[1].Type)
	assert.Equal(t, "ServerEventList", envs[2].Type)
}

func TestSessionTickStartsCatalogedEvents(t *testing.T) {
	m := haptic.NewGlobalMap()
	pool := event.NewPool(m)

	s := NewSession(nil)
	ev, err := event.New("Boom", event.Effect{Type: event.SingleNode, NodeID: haptic.ID("Bhaptics_Head_0")},
		[]float32{0.5}, 20_000_000 /* 20ms */, []string{"Bhaptics"})
	require.NoError(t, err)

	s.mu.Lock()
	s.catalog["Boom"] = []*event.Event{ev}
	s.mu.Unlock()

	s.handlePlay(PlayMessage{EventName: "Boom"})
	s.Tick(pool)

	assert.Equal(t, 1, pool.Len())
}

func TestSessionTickIgnoresUnknownEventName(t *testing.T) {
	m := haptic.NewGlobalMap()
	pool := event.NewPool(m)

	s := NewSession(nil)
	s.handlePlay(PlayMessage{EventName: "Nope"})
	s.Tick(pool)

	assert.Equal(t, 0, pool.Len())
}

func TestSessionTickClearsOnStopAll(t *testing.T) {
	m := haptic.NewGlobalMap()
	pool := event.NewPool(m)

	s := NewSession(nil)
	ev, err := event.New("Boom", event.Effect{Type: event.SingleNode, NodeID: haptic.ID("Bhaptics_Head_0")},
		[]float32{0.5}, 20_000_000, []string{"Bhaptics"})
	require.NoError(t, err)
	pool.Start(ev)
	require.Equal(t, 1, pool.Len())

	s.handleStopAll()
	s.Tick(pool)

	assert.Equal(t, 0, pool.Len())
}
