// Package osc implements the wire subset of the Open Sound Control 1.0
// protocol needed to talk to VRChat and bHaptics-style UDP peripherals:
// message and bundle decoding/encoding over float/int/double/bool/string
// arguments, plus a UDP server that dispatches decoded messages.
package osc


// ArgKind identifies an OSC argument's wire type tag.
type ArgKind byte

const (
	ArgFloat  ArgKind = 'f'
	ArgInt    ArgKind = 'i'
	ArgDouble ArgKind = 'd'
	ArgLong   ArgKind = 'h'
	ArgBool   ArgKind = 'T' // canonicalized; False stored as Bool(false)
	ArgString ArgKind = 's'
	ArgBlob   ArgKind = 'b'
)

// Arg is a single OSC message argument.
type Arg struct {
	Kind   ArgKind
	Float  float32
	Int    int32
	Double float64
	Long   int64
	Bool   bool
	String string
	Blob   []byte
}

func Float(v float32) Arg  { return Arg{Kind: ArgFloat, Float: v} }
func Int(v int32) Arg      { return Arg{Kind: ArgInt, Int: v} }
func Double(v float64) Arg { return Arg{Kind: ArgDouble, Double: v} }
func Long(v int64) Arg     { return Arg{Kind: ArgLong, Long: v} }
func Bool(v bool) Arg      { return Arg{Kind: ArgBool, Bool: v} }
func String(v string) Arg  { return Arg{Kind: ArgString, String: v} }
func Blob(v []byte) Arg    { return Arg{Kind: ArgBlob, Blob: v} }

// tag returns the single byte used in the OSC type-tag string for this
// argument (True/False share ArgBool with differing tag bytes).
func (a Arg) tag() byte {
	if a.Kind == ArgBool {
		if a.Bool {
			return 'T'
		}
		return 'F'
	}
	return byte(a.Kind)
}

// Message is a single OSC address plus its argument list.
type Message struct {
	Address string
	Args    []Arg
}

// Packet is either a single Message or a Bundle of nested Packets,
// mirroring the two OSC wire shapes.
type Packet struct {
	Message *Message
	Bundle  []Packet
}
