package osc

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformed is returned by Decode when a packet is truncated or its
// type-tag string doesn't match its argument bytes.
var ErrMalformed = errors.New("osc: malformed packet")

const bundleTag = "#bundle\x00"

// Decode parses a single OSC packet (message or bundle) from data,
// recursing into nested bundle elements.
func Decode(data []byte) (Packet, error) {
	if len(data) >= 8 && string(data[:8]) == bundleTag {
		return decodeBundle(data)
	}
	msg, err := decodeMessage(data)
	if err != nil {
		return Packet{}, err
	}
	return Packet{Message: &msg}, nil
}

func decodeBundle(data []byte) (Packet, error) {
	rest := data[8:] // skip "#bundle\0"
	if len(rest) < 8 {
		return Packet{}, ErrMalformed
	}
	rest = rest[8:] // skip 8-byte OSC timetag, unused by this router

	var elements []Packet
	for len(rest) > 0 {
		if len(rest) < 4 {
			return Packet{}, ErrMalformed
		}
		size := int(binary.BigEndian.Uint32(rest[:4]))
		rest = rest[4:]
		if size < 0 || size > len(rest) {
			return Packet{}, ErrMalformed
		}
		elemData := rest[:size]
		rest = rest[size:]

		elem, err := Decode(elemData)
		if err != nil {
			return Packet{}, err
		}
		elements = append(elements, elem)
	}
	return Packet{Bundle: elements}, nil
}

func decodeMessage(data []byte) (Message, error) {
	addr, rest, err := readPaddedString(data)
	if err != nil {
		return Message{}, err
	}
	if len(rest) == 0 || rest[0] != ',' {
		// No type-tag string: a bare address with no arguments.
		return Message{Address: addr}, nil
	}

	tags, rest, err := readPaddedString(rest)
	if err != nil {
		return Message{}, err
	}
	tags = tags[1:] // drop leading ','

	args := make([]Arg, 0, len(tags))
	for _, tag := range []byte(tags) {
		var arg Arg
		var err error
		switch tag {
		case 'f':
			var v float32
			v, rest, err = readFloat32(rest)
			arg = Float(v)
		case 'i':
			var v int32
			v, rest, err = readInt32(rest)
			arg = Int(v)
		case 'd':
			var v float64
			v, rest, err = readFloat64(rest)
			arg = Double(v)
		case 'h':
			var v int64
			v, rest, err = readInt64(rest)
			arg = Long(v)
		case 'T':
			arg = Bool(true)
		case 'F':
			arg = Bool(false)
		case 's':
			var v string
			v, rest, err = readPaddedString(rest)
			arg = String(v)
		case 'b':
			var v []byte
			v, rest, err = readBlob(rest)
			arg = Blob(v)
		default:
			return Message{}, fmt.Errorf("%w: unsupported type tag %q", ErrMalformed, tag)
		}
		if err != nil {
			return Message{}, err
		}
		args = append(args, arg)
	}

	return Message{Address: addr, Args: args}, nil
}

// Encode serializes a Message into an OSC packet.
func Encode(m Message) []byte {
	var buf []byte
	buf = appendPaddedString(buf, m.Address)

	tags := make([]byte, 0, len(m.Args)+1)
	tags = append(tags, ',')
	for _, a := range m.Args {
		tags = append(tags, a.tag())
	}
	buf = appendPaddedString(buf, string(tags))

	for _, a := range m.Args {
		switch a.Kind {
		case ArgFloat:
			buf = appendFloat32(buf, a.Float)
		case ArgInt:
			buf = appendInt32(buf, a.Int)
		case ArgDouble:
			buf = appendFloat64(buf, a.Double)
		case ArgLong:
			buf = appendInt64(buf, a.Long)
		case ArgBool:
			// no payload bytes
		case ArgString:
			buf = appendPaddedString(buf, a.String)
		case ArgBlob:
			buf = appendBlob(buf, a.Blob)
		}
	}
	return buf
}

func pad4(n int) int {
	rem := n % 4
	if rem == 0 {
		return 0
	}
	return 4 - rem
}

func readPaddedString(data []byte) (string, []byte, error) {
	end := -1
	for i, b := range data {
		if b == 0 {
			end = i
			break
		}
	}
	if end == -1 {
		return "", nil, ErrMalformed
	}
	total := end + 1 + pad4(end+1)
	if total > len(data) {
		return "", nil, ErrMalformed
	}
	return string(data[:end]), data[total:], nil
}

func appendPaddedString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	buf = append(buf, 0)
	for i := 0; i < pad4(len(s)+1); i++ {
		buf = append(buf, 0)
	}
	return buf
}

func readBlob(data []byte) ([]byte, []byte, error) {
	if len(data) < 4 {
		return nil, nil, ErrMalformed
	}
	size := int(binary.BigEndian.Uint32(data[:4]))
	data = data[4:]
	if size < 0 || size > len(data) {
		return nil, nil, ErrMalformed
	}
	blob := data[:size]
	total := size + pad4(size)
	if total > len(data) {
		return nil, nil, ErrMalformed
	}
	return blob, data[total:], nil
}

func appendBlob(buf []byte, b []byte) []byte {
	buf = appendInt32(buf, int32(len(b)))
	buf = append(buf, b...)
	for i := 0; i < pad4(len(b)); i++ {
		buf = append(buf, 0)
	}
	return buf
}

func readInt32(data []byte) (int32, []byte, error) {
	if len(data) < 4 {
		return 0, nil, ErrMalformed
	}
	return int32(binary.BigEndian.Uint32(data[:4])), data[4:], nil
}

func appendInt32(buf []byte, v int32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return append(buf, b[:]...)
}

func readInt64(data []byte) (int64, []byte, error) {
	if len(data) < 8 {
		return 0, nil, ErrMalformed
	}
	return int64(binary.BigEndian.Uint64(data[:8])), data[8:], nil
}

func appendInt64(buf []byte, v int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return append(buf, b[:]...)
}

func readFloat32(data []byte) (float32, []byte, error) {
	v, rest, err := readInt32(data)
	if err != nil {
		return 0, nil, err
	}
	return float32FromBits(uint32(v)), rest, nil
}

func appendFloat32(buf []byte, v float32) []byte {
	return appendInt32(buf, int32(float32Bits(v)))
}

func readFloat64(data []byte) (float64, []byte, error) {
	v, rest, err := readInt64(data)
	if err != nil {
		return 0, nil, err
	}
	return float64FromBits(uint64(v)), rest, nil
}

func appendFloat64(buf []byte, v float64) []byte {
	return appendInt64(buf, int64(float64Bits(v)))
}
