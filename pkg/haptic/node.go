// Package haptic holds the canonical spatial state of a human body (the
// Global Haptic Map), the nodes that populate it, and the interpolation
// engine that turns input intensities into device output intensities.
package haptic

import (
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/spatial"
)

// mmScale converts meters to the millimeter fixed-point precision used by
// the 8-byte wire encoding.
const mmScale = 1000.0

// Node is a spatial descriptor: a position plus the body regions it
// belongs to. It is the unit exchanged with physical devices, both as a
// node-map entry and (once intensity is attached) as an InputNode.
type Node struct {
	Position spatial.Vec3
	Groups   spatial.GroupSet
}

// Dist returns the Euclidean distance between n and other. May be NaN;
// callers must guard against that before using it as a threshold.
func (n Node) Dist(other Node) float32 {
	return n.Position.Dist(other.Position)
}

// Interacts reports whether n and other should influence one another: their
// group sets must intersect (or either contains All), and when they share a
// concrete (non-All) group, the two points must also pass that group's
// axis-angle test (same hemisphere around its axis; a degenerate plane
// fails). A pair that meets only through All needs no axis test.
func (n Node) Interacts(other Node) bool {
	shared := n.Groups.Shared(other.Groups)
	if len(shared) == 0 {
		return n.Groups.HasAll() || other.Groups.HasAll()
	}

	for _, g := range shared {
		axis := g.ToPoints()
		angle, ok := angleBetweenPoints(axis.One, axis.Two, n.Position, other.Position)
		if ok && angle <= math.Pi/2 {
			return true
		}
	}
	return false
}

// angleBetweenPoints computes the angle in radians between the plane
// spanned by (axisOne, axisTwo, input) and the plane spanned by
// (axisOne, axisTwo, output), in [0, pi/2]. Returns ok=false when either
// plane is degenerate (zero-length normal).
func angleBetweenPoints(axisOne, axisTwo, input, output spatial.Vec3) (float32, bool) {
	u1 := axisOne.Sub(input)
	v1 := axisTwo.Sub(input)
	u2 := axisOne.Sub(output)
	v2 := axisTwo.Sub(output)

	n1 := u1.Cross(v1)
	n2 := u2.Cross(v2)

	norm1 := n1.Length()
	norm2 := n2.Length()
	if norm1 == 0 || norm2 == 0 {
		return 0, false
	}

	cosTheta := n1.Dot(n2) / (norm1 * norm2)
	if cosTheta < 0 {
		cosTheta = -cosTheta
	}
	if cosTheta > 1 {
		cosTheta = 1
	}
	return float32(math.Acos(float64(cosTheta))), true
}

// ToBytes packs n into the 8-byte wire form described in spec.md §3: three
// little-endian i16 fixed-point millimeter components, then a
// little-endian u16 group bitmask.
func (n Node) ToBytes() [8]byte {
	var out [8]byte
	binary.LittleEndian.PutUint16(out[0:2], uint16(int16(n.Position.X*mmScale)))
	binary.LittleEndian.PutUint16(out[2:4], uint16(int16(n.Position.Y*mmScale)))
	binary.LittleEndian.PutUint16(out[4:6], uint16(int16(n.Position.Z*mmScale)))
	binary.LittleEndian.PutUint16(out[6:8], spatial.ToBitflag(n.Groups))
	return out
}

// NodeFromBytes reconstructs a Node from its 8-byte wire form, the reverse
// of ToBytes.
func NodeFromBytes(b [8]byte) Node {
	x := int16(binary.LittleEndian.Uint16(b[0:2]))
	y := int16(binary.LittleEndian.Uint16(b[2:4]))
	z := int16(binary.LittleEndian.Uint16(b[4:6]))
	flag := binary.LittleEndian.Uint16(b[6:8])
	return Node{
		Position: spatial.Vec3{
			X: float32(x) / mmScale,
			Y: float32(y) / mmScale,
			Z: float32(z) / mmScale,
		},
		Groups: spatial.FromBitflag(flag),
	}
}

// nodeJSON is the flat wire shape prefab files use for a node: x/y/z plus
// a list of group names, instead of Go's natural nested {Position, Groups}.
type nodeJSON struct {
	X      float32          `json:"x"`
	Y      float32          `json:"y"`
	Z      float32          `json:"z"`
	Groups spatial.GroupSet `json:"groups"`
}

// MarshalJSON renders Node in the flat {x,y,z,groups} shape prefab files
// use.
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeJSON{X: n.Position.X, Y: n.Position.Y, Z: n.Position.Z, Groups: n.Groups})
}

// UnmarshalJSON parses the flat {x,y,z,groups} shape prefab files use.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.Position = spatial.Vec3{X: raw.X, Y: raw.Y, Z: raw.Z}
	n.Groups = raw.Groups
	return nil
}

// EncodeNodes concatenates the 8-byte encoding of each node, the format
// used both for "SET NODE_MAP <hex>" and for a device's wifi config reply.
func EncodeNodes(nodes []Node) []byte {
	out := make([]byte, 0, len(nodes)*8)
	for _, n := range nodes {
		b := n.ToBytes()
		out = append(out, b[:]...)
	}
	return out
}

// DecodeNodes is the reverse of EncodeNodes. Returns ErrBadChunkLength if
// len(data) is not a multiple of 8 (spec.md §7, Configuration error kind).
func DecodeNodes(data []byte) ([]Node, error) {
	if len(data)%8 != 0 {
		return nil, ErrBadChunkLength
	}
	nodes := make([]Node, 0, len(data)/8)
	for i := 0; i < len(data); i += 8 {
		var chunk [8]byte
		copy(chunk[:], data[i:i+8])
		nodes = append(nodes, NodeFromBytes(chunk))
	}
	return nodes, nil
}
