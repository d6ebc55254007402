package protolog

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEvents(t *testing.T, path string, events ...Event) {
	t.Helper()
	logger, err := NewFileLogger(path)
	require.NoError(t, err)
	for _, e := range events {
		logger.Log(e)
	}
	require.NoError(t, logger.Close())
}

func TestReaderFiltersByDeviceID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.plog")
	writeEvents(t, path,
		Event{Timestamp: time.Now(), Layer: LayerTransport, Category: CategoryFrame, DeviceID: "aa"},
		Event{Timestamp: time.Now(), Layer: LayerTransport, Category: CategoryFrame, DeviceID: "bb"},
	)

	reader, err := NewFilteredReader(path, Filter{DeviceID: "bb"})
	require.NoError(t, err)
	defer reader.Close()

	ev, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "bb", ev.DeviceID)

	_, err = reader.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderFiltersByTimeRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.plog")
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	writeEvents(t, path,
		Event{Timestamp: early, Layer: LayerTransport, Category: CategoryFrame, DeviceID: "early"},
		Event{Timestamp: late, Layer: LayerTransport, Category: CategoryFrame, DeviceID: "late"},
	)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	reader, err := NewFilteredReader(path, Filter{TimeStart: &start})
	require.NoError(t, err)
	defer reader.Close()

	ev, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "late", ev.DeviceID)
}
