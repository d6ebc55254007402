package devicemaps

import "github.com/VRC-Haptics/VRCH-Server-sub000/pkg/spatial"

// VestFront and VestBack are the TactSuit X40's 20-motor grids: 5 rows
// (shoulder to waist) by 4 columns (left to right), motor index = row*4+col.
//
// The SDK's own per-motor coordinate table wasn't part of the retrieved
// source for this device (only the headset table survived retrieval); this
// grid is a reasonable anatomical approximation on the torso front/back
// planes, not a reproduction of bHaptics' internal layout.
var (
	VestFront = vestGrid(0.105)
	VestBack  = vestGrid(-0.105)
)

func vestGrid(z float32) []spatial.Vec3 {
	rows := []float32{1.50, 1.40, 1.30, 1.20, 1.10}
	cols := []float32{-0.15, -0.05, 0.05, 0.15}

	grid := make([]spatial.Vec3, 0, len(rows)*len(cols))
	for _, y := range rows {
		for _, x := range cols {
			grid = append(grid, spatial.Vec3{X: x, Y: y, Z: z})
		}
	}
	return grid
}
