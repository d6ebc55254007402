package devicemaps

import "github.com/VRC-Haptics/VRCH-Server-sub000/pkg/spatial"

// ForearmLeft and ForearmRight are the TactGlove/Forearm strap's 8-motor
// layouts, one ring of motors running wrist to elbow on each arm.
//
// Not part of the retrieved source (only the headset table survived
// retrieval); positions are a reasonable anatomical approximation along
// each forearm, mirrored across x=0.
var (
	ForearmLeft  = forearmColumn(-0.22)
	ForearmRight = forearmColumn(0.22)
)

func forearmColumn(x float32) []spatial.Vec3 {
	col := make([]spatial.Vec3, 0, 8)
	const wristY, elbowY = 1.0, 1.25
	for i := 0; i < 8; i++ {
		t := float32(i) / 7
		col = append(col, spatial.Vec3{
			X: x,
			Y: wristY + t*(elbowY-wristY),
			Z: 0,
		})
	}
	return col
}
