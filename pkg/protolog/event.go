package protolog

import "time"

// Event represents a protocol log event captured at any layer. CBOR
// encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// DeviceID identifies the wearable device this event concerns, if
	// any (empty for game-session and avatar-stream events).
	DeviceID string `cbor:"4,keyasint,omitempty"`

	// Type-specific payload (exactly one of these is set).
	OSCFrame    *OSCFrameEvent    `cbor:"10,keyasint,omitempty"` // Transport layer
	GameMessage *GameMessageEvent `cbor:"11,keyasint,omitempty"` // Wire layer
	StateChange *DeviceStateEvent `cbor:"12,keyasint,omitempty"` // Service layer
	TickWarning *TickWarningEvent `cbor:"13,keyasint,omitempty"` // Service layer
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Any layer
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the OSC/UDP datagram layer (raw bytes in/out).
	LayerTransport Layer = 0
	// LayerWire is the game-session WebSocket message layer (decoded JSON).
	LayerWire Layer = 1
	// LayerService is the orchestrator/device-lifecycle layer.
	LayerService Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryFrame indicates a raw OSC datagram.
	CategoryFrame Category = 0
	// CategoryMessage indicates a decoded game-session message.
	CategoryMessage Category = 1
	// CategoryState indicates a device lifecycle state change.
	CategoryState Category = 2
	// CategoryTickWarning indicates an orchestrator timing slip.
	CategoryTickWarning Category = 3
	// CategoryError indicates an error event.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryTickWarning:
		return "TICK_WARNING"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Direction indicates the direction of datagram/message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming datagram/message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing datagram/message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// OSCFrameEvent captures a raw OSC datagram at the transport layer —
// either a device heartbeat/config reply, a device-bound command/
// intensity packet, or an avatar parameter message.
type OSCFrameEvent struct {
	// Direction of the datagram.
	Direction Direction `cbor:"1,keyasint"`

	// Address is the OSC address pattern (e.g. "/hrtbt", "/h",
	// "/avatar/parameters/...").
	Address string `cbor:"2,keyasint"`

	// Size is the encoded datagram size in bytes.
	Size int `cbor:"3,keyasint"`

	// RemoteAddr is the peer address (IP:port).
	RemoteAddr string `cbor:"4,keyasint,omitempty"`
}

// GameMessageEvent captures a decoded game-session WebSocket message at
// the wire layer.
type GameMessageEvent struct {
	// Type names the message's Go type (e.g. "PlayMessage", "AuthInitMessage").
	Type string `cbor:"1,keyasint"`

	// EventName is populated for Play/StopAll-shaped messages.
	EventName string `cbor:"2,keyasint,omitempty"`
}

// DeviceStateEvent captures a device lifecycle transition (spec.md §4.7).
type DeviceStateEvent struct {
	// OldState is the previous lifecycle state.
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new lifecycle state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available, e.g. "heartbeat timeout").
	Reason string `cbor:"3,keyasint,omitempty"`
}

// TickWarningEvent captures an orchestrator tick that started later than
// the slip threshold (spec.md §4.8 step 5).
type TickWarningEvent struct {
	// SlipNanos is the amount by which the tick started late.
	SlipNanos int64 `cbor:"1,keyasint"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
