package devicemaps

import (
	"fmt"

	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/haptic"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/spatial"
)

// Location is one of bHaptics' named device positions.
type Location uint8

const (
	VestFrontLoc Location = iota
	VestBackLoc
	HeadLoc
	ForearmLLoc
	ForearmRLoc
	UnknownLoc
)

// All lists every known Location, in the order motor maps are installed.
var All = []Location{VestFrontLoc, VestBackLoc, HeadLoc, ForearmLLoc, ForearmRLoc}

// MotorCount returns the number of motors this device reports.
func (l Location) MotorCount() int {
	switch l {
	case VestFrontLoc, VestBackLoc:
		return 20
	case HeadLoc:
		return 6
	case ForearmLLoc, ForearmRLoc:
		return 8
	default:
		return 0
	}
}

// InputTag is the tag every InputNode belonging to this device shares, so
// the whole device's nodes can be bulk-removed on disconnect.
func (l Location) InputTag() string {
	switch l {
	case VestFrontLoc:
		return "Bhaptics_VestFront"
	case VestBackLoc:
		return "Bhaptics_VestBack"
	case HeadLoc:
		return "Bhaptics_Headset"
	case ForearmLLoc:
		return "Bhaptics_ForearmL"
	case ForearmRLoc:
		return "Bhaptics_ForearmR"
	default:
		return "Bhaptics_Unknown"
	}
}

// ID returns the InputNode ID for motor index on this device, or false if
// index is out of range. The left-forearm spelling ("ForearmS" rather than
// "ForearmL") reproduces the upstream SDK's naming bug-for-bug rather than
// silently fixing it.
func (l Location) ID(index int) (haptic.ID, bool) {
	if index < 0 || index >= l.MotorCount() {
		return "", false
	}

	switch l {
	case VestFrontLoc:
		return haptic.ID(fmt.Sprintf("Bhaptics_VestFront_%d", index)), true
	case VestBackLoc:
		return haptic.ID(fmt.Sprintf("Bhaptics_VestBack_%d", index)), true
	case HeadLoc:
		return haptic.ID(fmt.Sprintf("Bhaptics_Head_%d", index)), true
	case ForearmLLoc:
		return haptic.ID(fmt.Sprintf("Bhaptics_ForearmS_%d", index)), true
	case ForearmRLoc:
		return haptic.ID(fmt.Sprintf("Bhaptics_ForearmR_%d", index)), true
	default:
		return haptic.ID(fmt.Sprintf("Bhaptics_Unknown_%d", index)), true
	}
}

// Position returns the canonical position of motor index on this device.
func (l Location) Position(index int) spatial.Vec3 {
	var table []spatial.Vec3
	switch l {
	case VestFrontLoc:
		table = VestFront
	case VestBackLoc:
		table = VestBack
	case HeadLoc:
		table = Head
	case ForearmLLoc:
		table = ForearmLeft
	case ForearmRLoc:
		table = ForearmRight
	default:
		return spatial.Vec3{}
	}
	if index < 0 || index >= len(table) {
		return spatial.Vec3{}
	}
	return table[index]
}

// ParseLocation resolves the PascalCase name bHaptics uses in its catalog
// JSON ("VestFront", "ForearmL", ...) into a Location.
func ParseLocation(name string) Location {
	switch name {
	case "VestFront":
		return VestFrontLoc
	case "VestBack":
		return VestBackLoc
	case "Head":
		return HeadLoc
	case "ForearmL":
		return ForearmLLoc
	case "ForearmR":
		return ForearmRLoc
	default:
		return UnknownLoc
	}
}
