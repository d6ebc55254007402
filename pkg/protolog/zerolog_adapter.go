package protolog

import "github.com/rs/zerolog"

// ZerologAdapter writes protocol events to a zerolog.Logger. Useful for
// development, where protocol traffic should show up alongside
// operational log lines in the same console stream.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a ZerologAdapter that writes to the given
// zerolog.Logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// Log writes the event at debug level, with type-specific fields.
func (a *ZerologAdapter) Log(event Event) {
	e := a.logger.Debug().
		Str("layer", event.Layer.String()).
		Str("category", event.Category.String())

	if event.DeviceID != "" {
		e = e.Str("device_id", event.DeviceID)
	}

	switch {
	case event.OSCFrame != nil:
		e = e.Str("direction", event.OSCFrame.Direction.String()).
			Str("address", event.OSCFrame.Address).
			Int("size", event.OSCFrame.Size)
		if event.OSCFrame.RemoteAddr != "" {
			e = e.Str("remote_addr", event.OSCFrame.RemoteAddr)
		}
	case event.GameMessage != nil:
		e = e.Str("msg_type", event.GameMessage.Type)
		if event.GameMessage.EventName != "" {
			e = e.Str("event_name", event.GameMessage.EventName)
		}
	case event.StateChange != nil:
		e = e.Str("old_state", event.StateChange.OldState).
			Str("new_state", event.StateChange.NewState)
		if event.StateChange.Reason != "" {
			e = e.Str("reason", event.StateChange.Reason)
		}
	case event.TickWarning != nil:
		e = e.Int64("slip_nanos", event.TickWarning.SlipNanos)
	case event.Error != nil:
		e = e.Str("error_layer", event.Error.Layer.String()).
			Str("error_msg", event.Error.Message).
			Str("error_context", event.Error.Context)
	}

	e.Msg("protocol")
}

// Compile-time interface satisfaction check.
var _ Logger = (*ZerologAdapter)(nil)
