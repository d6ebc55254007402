// Package avatar implements the VRChat-facing side of the router: the
// avatar session state machine, OSC path normalization, the avatar
// parameter cache, and prefab map loading/lookup.
package avatar

import (
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/haptic"
)

// Prefab is the haptic map bundled with a specific avatar prefab version:
// every node address it exposes, plus menu/versioning metadata. Loaded
// from a "<author>_<name>_<version>.json" file (spec.md §2 supplement).
type Prefab struct {
	Nodes []PrefabNode `json:"nodes"`
	Meta  PrefabMeta   `json:"meta"`
}

// PrefabNode binds one haptic.Node to the OSC address VRChat will report
// its contact/proximity value on.
type PrefabNode struct {
	NodeData   haptic.Node `json:"nodeData"`
	Address    string      `json:"address"`
	Radius     float32     `json:"radius"`
	TargetBone string      `json:"targetBone"`
}

// PrefabMeta describes the prefab file itself.
type PrefabMeta struct {
	MapName    string     `json:"map_name"`
	MapVersion uint32     `json:"map_version"`
	MapAuthor  string     `json:"map_author"`
	Menu       MenuParams `json:"menu"`
}

// MenuParams names the expression-menu parameters a prefab exposes for
// global control.
type MenuParams struct {
	Intensity string `json:"intensity"`
}
