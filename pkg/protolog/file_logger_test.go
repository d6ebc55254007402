package protolog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoggerCreatesFileAndWritesEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.plog")

	logger, err := NewFileLogger(path)
	require.NoError(t, err)

	logger.Log(Event{Timestamp: time.Now(), Layer: LayerTransport, Category: CategoryFrame, DeviceID: "aa:bb"})
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	decoded, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, "aa:bb", decoded.DeviceID)
}

func TestFileLoggerAppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.plog")

	l1, err := NewFileLogger(path)
	require.NoError(t, err)
	l1.Log(Event{Timestamp: time.Now(), Layer: LayerTransport, Category: CategoryFrame, DeviceID: "one"})
	require.NoError(t, l1.Close())

	l2, err := NewFileLogger(path)
	require.NoError(t, err)
	l2.Log(Event{Timestamp: time.Now(), Layer: LayerTransport, Category: CategoryFrame, DeviceID: "two"})
	require.NoError(t, l2.Close())

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	first, err := reader.Next()
	require.NoError(t, err)
	second, err := reader.Next()
	require.NoError(t, err)

	assert.Equal(t, "one", first.DeviceID)
	assert.Equal(t, "two", second.DeviceID)
}

func TestFileLoggerIgnoresLogAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.plog")
	logger, err := NewFileLogger(path)
	require.NoError(t, err)
	require.NoError(t, logger.Close())

	// Must not panic, and must not grow the file.
	logger.Log(Event{Timestamp: time.Now()})
	assert.NoError(t, logger.Close(), "double close must be a no-op")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}
