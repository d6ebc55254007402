package protolog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	events []Event
}

func (r *recordingLogger) Log(e Event) { r.events = append(r.events, e) }

func TestMultiLoggerFansOutToEveryLogger(t *testing.T) {
	a, b := &recordingLogger{}, &recordingLogger{}
	m := NewMultiLogger(a, b)

	ev := Event{Timestamp: time.Now(), Layer: LayerTransport, Category: CategoryFrame}
	m.Log(ev)

	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}

func TestNoopLoggerDiscardsEvents(t *testing.T) {
	var n NoopLogger
	n.Log(Event{Timestamp: time.Now()})
	// No observable effect; this just exercises the zero value without panicking.
}
