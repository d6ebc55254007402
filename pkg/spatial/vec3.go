// Package spatial provides the primitive spatial types shared across the
// haptic router: 3-vectors and body-region group masks.
package spatial

import "math"

// Vec3 is a position or direction in meters. The origin sits at the
// avatar's feet: +y is up, +x is right, +z is forward.
type Vec3 struct {
	X, Y, Z float32
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Cross returns the cross product v x other.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Dot returns the dot product v . other.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Length returns the Euclidean norm of v.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Dist returns the Euclidean distance between v and other. May be NaN if
// either vector contains NaN components; callers must check.
func (v Vec3) Dist(other Vec3) float32 {
	return v.Sub(other).Length()
}
