package persistence

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreFactorRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "state.json"))

	_, ok := store.GetFactor("aa:bb:cc", "sens_mult")
	assert.False(t, ok)

	require.NoError(t, store.SetFactor("aa:bb:cc", "sens_mult", 1.25))

	v, ok := store.GetFactor("aa:bb:cc", "sens_mult")
	require.True(t, ok)
	assert.Equal(t, float32(1.25), v)
}

func TestFileStoreFactorPersistsAcrossLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	store := NewFileStore(path)
	require.NoError(t, store.SetFactor("dev-1", "sens_mult", 0.8))

	reloaded := NewFileStore(path)
	require.NoError(t, reloaded.Load())

	v, ok := reloaded.GetFactor("dev-1", "sens_mult")
	require.True(t, ok)
	assert.Equal(t, float32(0.8), v)
}

func TestFileStoreLoadMissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "nonexistent.json"))
	require.NoError(t, store.Load())

	_, ok := store.GetFactor("x", "y")
	assert.False(t, ok)
}

func TestFileStorePreferenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "state.json"))

	type prefs struct {
		TickWarningMS int `json:"tick_warning_ms"`
	}
	require.NoError(t, store.SetPreference("tuning", prefs{TickWarningMS: 11}))

	raw, ok := store.GetPreference("tuning")
	require.True(t, ok)

	var got prefs
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 11, got.TickWarningMS)
}

func TestFileStoreMultipleDevicesIndependent(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "state.json"))

	require.NoError(t, store.SetFactor("dev-a", "sens_mult", 1.0))
	require.NoError(t, store.SetFactor("dev-b", "sens_mult", 2.0))

	a, _ := store.GetFactor("dev-a", "sens_mult")
	b, _ := store.GetFactor("dev-b", "sens_mult")
	assert.Equal(t, float32(1.0), a)
	assert.Equal(t, float32(2.0), b)
}
