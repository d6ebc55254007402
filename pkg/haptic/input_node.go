package haptic

import "github.com/VRC-Haptics/VRCH-Server-sub000/pkg/spatial"

// ID is an opaque identifier that uniquely identifies an InputNode across
// its lifetime: two equal IDs always refer to the same logical signal
// source.
type ID string

// InputNode is a Node with an identity and a feedback intensity, used to
// compute device output via the interpolation engine. Intensity starts at
// zero.
type InputNode struct {
	id        ID
	Node      Node
	intensity float32
	// Tags groups InputNodes for bulk effect application or cleanup
	// (distinct from Node.Groups, which drives spatial interaction).
	Tags map[string]struct{}
}

// NewInputNode creates an InputNode with zero intensity.
func NewInputNode(node Node, tags []string, id ID) InputNode {
	tagSet := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		tagSet[t] = struct{}{}
	}
	return InputNode{id: id, Node: node, Tags: tagSet}
}

// ID returns the node's unique identifier.
func (n *InputNode) ID() ID { return n.id }

// Intensity returns the node's current feedback strength in [0,1].
func (n *InputNode) Intensity() float32 { return n.intensity }

// SetIntensity sets the node's feedback strength.
func (n *InputNode) SetIntensity(v float32) { n.intensity = v }

// SetPosition moves the node, used by MovingLocation events.
func (n *InputNode) SetPosition(pos spatial.Vec3) { n.Node.Position = pos }

// HasTag reports whether any of tags is present on the node.
func (n *InputNode) HasTag(tags ...string) bool {
	for _, t := range tags {
		if _, ok := n.Tags[t]; ok {
			return true
		}
	}
	return false
}

// AlwaysApply reports whether the node's groups contain the All wildcard.
// Declared per spec.md §9 Open Questions: not currently consulted by the
// interpolation engine (its effect, if any, is left unresolved there).
func (n *InputNode) AlwaysApply() bool {
	return n.Node.Groups.HasAll()
}
