// Package devicemaps holds the canonical motor-position tables for each
// bHaptics v3 device, indexed by motor number as the SDK numbers them.
package devicemaps

import "github.com/VRC-Haptics/VRCH-Server-sub000/pkg/spatial"

// Head is the bHaptics Tactal headset's 6-motor layout: one row of six
// motors at the same height, three per side. Motors 0-2 run along the left
// side (-x) from the temple toward the forehead; motors 3-5 mirror them on
// the right (+x). Values are lifted directly from the SDK's own reference
// layout.
var Head = []spatial.Vec3{
	{X: -0.0494000018, Y: 1.61039996, Z: 0.101000004},
	{X: -0.0350000001, Y: 1.61039996, Z: 0.112199999},
	{X: -0.0168999992, Y: 1.61039996, Z: 0.120999999},
	{X: 0.0494000018, Y: 1.61039996, Z: 0.101000004},
	{X: 0.0350000001, Y: 1.61039996, Z: 0.112199999},
	{X: 0.0168999992, Y: 1.61039996, Z: 0.120999999},
}
