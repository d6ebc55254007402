package avatar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/haptic"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/paramcache"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/spatial"
)

func TestRemoveVersionStripsVRCFuryPrefix(t *testing.T) {
	assert.Equal(t, "/avatar/parameters/haptic/Chest", RemoveVersion("/avatar/parameters/VF12_haptic/Chest"))
	assert.Equal(t, "/avatar/parameters/haptic/Chest", RemoveVersion("/avatar/parameters/haptic/Chest"))
}

func writePrefabFixture(t *testing.T, dir string) {
	t.Helper()
	content := `{
		"nodes": [
			{"nodeData": {"x":0,"y":1.4,"z":0.1,"groups":["TorsoFront"]}, "address": "/avatar/parameters/haptic/Chest", "radius": 0.1, "targetBone": "Chest"}
		],
		"meta": {"map_name":"demo","map_version":1,"map_author":"acme","menu":{"intensity":"/avatar/parameters/haptic/Intensity"}}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acme_demo_1.json"), []byte(content), 0o644))
}

func TestLoadPrefabFindsMatchingFile(t *testing.T) {
	dir := t.TempDir()
	writePrefabFixture(t, dir)

	prefab, err := LoadPrefab("acme", "demo", 1, []string{dir})
	require.NoError(t, err)
	require.Len(t, prefab.Nodes, 1)
	assert.Equal(t, "/avatar/parameters/haptic/Chest", prefab.Nodes[0].Address)
	assert.InDelta(t, 1.4, prefab.Nodes[0].NodeData.Position.Y, 1e-6)
	assert.True(t, prefab.Nodes[0].NodeData.Groups.Has(spatial.TorsoFront))
}

func TestLoadPrefabMissingReturnsError(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadPrefab("nobody", "nothing", 1, []string{dir})
	assert.Error(t, err)
}

func TestSessionAvatarChangeTracksOnSuccessfulLoad(t *testing.T) {
	dir := t.TempDir()
	writePrefabFixture(t, dir)

	s := NewSession([]string{dir})
	s.OnAvatarChange("avtr_123", "acme", "demo", 1)

	assert.Equal(t, Tracking, s.State())
	assert.Equal(t, "avtr_123", s.AvatarID())
}

func TestSessionAvatarChangeDiscoveringOnMissingPrefab(t *testing.T) {
	s := NewSession([]string{t.TempDir()})
	s.OnAvatarChange("avtr_456", "nobody", "nothing", 1)

	assert.Equal(t, Discovering, s.State())
	assert.Error(t, s.LastPrefabError())
}

func writeSecondPrefabFixture(t *testing.T, dir string) {
	t.Helper()
	content := `{
		"nodes": [
			{"nodeData": {"x":0,"y":0.9,"z":0.1,"groups":["ArmLeft"]}, "address": "/avatar/parameters/haptic/Forearm", "radius": 0.1, "targetBone": "Forearm"}
		],
		"meta": {"map_name":"extra","map_version":1,"map_author":"other","menu":{"intensity":"/avatar/parameters/haptic/Intensity"}}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other_extra_1.json"), []byte(content), 0o644))
}

func TestSessionMergesPrefabDescriptorsAnnouncedOnParameterStream(t *testing.T) {
	dir := t.TempDir()
	writePrefabFixture(t, dir)
	writeSecondPrefabFixture(t, dir)

	s := NewSession([]string{dir})
	s.OnAvatarChange("avtr_multi", "", "", 0)
	assert.Equal(t, Discovering, s.State())

	require.NoError(t, s.OnParameter("/avatar/parameters/haptic/prefabs/acme/demo/v1", paramcache.Bool(true)))
	require.NoError(t, s.OnParameter("/avatar/parameters/haptic/prefabs/other/extra/v1", paramcache.Bool(true)))

	assert.Equal(t, Tracking, s.State())
	require.Len(t, s.prefab.Nodes, 2)
	assert.Equal(t, "acme+other", s.prefab.Meta.MapAuthor)
	assert.Equal(t, "demo+extra", s.prefab.Meta.MapName)

	// Re-announcing an already-merged descriptor doesn't duplicate its nodes.
	require.NoError(t, s.OnParameter("/avatar/parameters/haptic/prefabs/acme/demo/v1", paramcache.Bool(true)))
	assert.Len(t, s.prefab.Nodes, 2)
}

func TestSessionRefreshHookUpsertsFromCache(t *testing.T) {
	dir := t.TempDir()
	writePrefabFixture(t, dir)

	s := NewSession([]string{dir})
	s.OnAvatarChange("avtr_789", "acme", "demo", 1)
	require.NoError(t, s.OnParameter("/avatar/parameters/haptic/Chest", paramcache.Float(0.8)))

	m := haptic.NewGlobalMap()
	s.RefreshHook(m)

	assert.Equal(t, 1, m.Len())
	v, err := m.GetIntensity(haptic.ID("/avatar/parameters/haptic/Chest"), false)
	require.NoError(t, err)
	assert.Greater(t, v, float32(0))
}
