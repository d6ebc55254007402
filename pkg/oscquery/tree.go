// Package oscquery parses and serves OSCQuery method trees, and advertises
// or discovers the companion HTTP/mDNS endpoint VRChat and this router use
// to exchange OSC port/address metadata.
package oscquery

import (
	"encoding/json"
	"fmt"
)

// AccessLevel mirrors the ACCESS field of an OSCQuery node.
type AccessLevel uint8

const (
	AccessRefused AccessLevel = iota
	AccessReadOnly
	AccessWriteOnly
	AccessReadWrite
)

func (a AccessLevel) readable() bool {
	return a == AccessReadOnly || a == AccessReadWrite
}

func accessFromInt(v int) AccessLevel {
	switch v {
	case 1:
		return AccessReadOnly
	case 2:
		return AccessWriteOnly
	case 3:
		return AccessReadWrite
	default:
		return AccessRefused
	}
}

// rawNode is the on-wire OSCQuery JSON shape: a recursive tree where a leaf
// carries TYPE/VALUE and a container carries CONTENTS.
type rawNode struct {
	FullPath    string              `json:"FULL_PATH"`
	Access      *int                `json:"ACCESS,omitempty"`
	Description string              `json:"DESCRIPTION,omitempty"`
	OSCType     string              `json:"TYPE,omitempty"`
	Value       []json.RawMessage   `json:"VALUE,omitempty"`
	Contents    map[string]*rawNode `json:"CONTENTS,omitempty"`
}

// Info is one flattened OSCQuery method: its full path, access level, and
// decoded default value(s).
type Info struct {
	FullPath    string
	Access      AccessLevel
	Values      []any
	Description string
}

// ParseTree decodes an OSCQuery JSON document into a flattened list of
// every node found anywhere in the tree (mirroring VRChat's own recursive
// CONTENTS nesting): methods, container nodes, and the root itself.
func ParseTree(data []byte) ([]Info, error) {
	var root rawNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("oscquery: parse tree: %w", err)
	}

	var out []Info
	root.flatten(&out)
	return out, nil
}

func (n *rawNode) flatten(out *[]Info) {
	for _, child := range n.Contents {
		child.flatten(out)
	}
	*out = append(*out, n.toInfo())
}

func (n *rawNode) toInfo() Info {
	access := AccessReadWrite
	if n.Access != nil {
		access = accessFromInt(*n.Access)
	}

	var values []any
	if n.OSCType != "" && len(n.Value) > 0 {
		for i, tag := range []byte(n.OSCType) {
			if i >= len(n.Value) {
				break
			}
			if !access.readable() {
				values = append(values, nil)
				break
			}
			values = append(values, decodeTagged(tag, n.Value[i]))
		}
	}

	return Info{
		FullPath:    n.FullPath,
		Access:      access,
		Values:      values,
		Description: n.Description,
	}
}

func decodeTagged(tag byte, raw json.RawMessage) any {
	switch tag {
	case 's', 'S':
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
		return nil
	case 'i':
		var i int64
		if json.Unmarshal(raw, &i) == nil {
			return int32(i)
		}
		return nil
	case 'f':
		var f float64
		if json.Unmarshal(raw, &f) == nil {
			return float32(f)
		}
		return nil
	case 'T':
		return true
	case 'F':
		return false
	case 'N':
		return nil
	default:
		return nil
	}
}
