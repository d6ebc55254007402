package gamesession

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReceivedAuthInit(t *testing.T) {
	inner := `{
		"authentication": {"cipher":"c","applicationId":"app1","nonceHashValue":"n","applicationIdHashValue":"ah","sdkApiKey":"key1"},
		"haptic": {"status": true, "message": {"id":"id1","createTime":1,"name":"MyGame","creator":"c1","workspaceId":"w1","version":2,"disableValidation":false,"hapticMappings":[],"categoryOptions":[],"description":"d"}}
	}`

	raw, err := json.Marshal(map[string]any{"type": "SdkRequestAuthInit", "message": inner})
	require.NoError(t, err)

	msg, err := ParseReceived(raw)
	require.NoError(t, err)

	auth, ok := msg.(AuthInitMessage)
	require.True(t, ok)
	assert.Equal(t, "app1", auth.Authentication.ApplicationID)
	assert.Equal(t, "MyGame", auth.Haptic.Message.Name)
}

func TestParseReceivedAuthInitToleratesDoubledBackslashes(t *testing.T) {
	inner := `{"authentication":{"cipher":"c","applicationId":"a","nonceHashValue":"n","applicationIdHashValue":"ah","sdkApiKey":"k"},"haptic":{"status":true,"message":{"id":"i","createTime":1,"name":"n","creator":"c","workspaceId":"w","version":1,"disableValidation":false,"hapticMappings":[],"categoryOptions":[],"description":""}}}`
	withEscapes := `\\` + inner

	raw, err := json.Marshal(map[string]any{"type": "SdkRequestAuthInit", "message": withEscapes})
	require.NoError(t, err)

	_, err = ParseReceived(raw)
	assert.NoError(t, err)
}

func TestParseReceivedPlay(t *testing.T) {
	play := `{"eventName":"Explosion","requestId":5,"position":1,"intensity":0.8,"duration":500,"offsetAngleX":0,"offsetY":0}`
	raw, err := json.Marshal(map[string]any{"type": "SdkPlay", "message": play})
	require.NoError(t, err)

	msg, err := ParseReceived(raw)
	require.NoError(t, err)

	p, ok := msg.(PlayMessage)
	require.True(t, ok)
	assert.Equal(t, "Explosion", p.EventName)
	assert.InDelta(t, 0.8, p.Intensity, 1e-6)
}

func TestParseReceivedStopAll(t *testing.T) {
	raw, err := json.Marshal(map[string]any{"type": "SdkStopAll", "message": nil})
	require.NoError(t, err)

	msg, err := ParseReceived(raw)
	require.NoError(t, err)
	_, ok := msg.(StopAllMessage)
	assert.True(t, ok)
}

func TestParseReceivedUnknownTypeErrors(t *testing.T) {
	raw, err := json.Marshal(map[string]any{"type": "Nonsense", "message": ""})
	require.NoError(t, err)

	_, err = ParseReceived(raw)
	assert.Error(t, err)
}
