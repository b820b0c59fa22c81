// Package utils contains small scalar math helpers shared across the module.
package utils

import "math"

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// Float64AlmostEqual returns true if v1 and v2 are within epsilon of each other.
func Float64AlmostEqual(v1, v2, epsilon float64) bool {
	return math.Abs(v1-v2) <= epsilon
}

// AngleDiff returns the closest difference between the two given angles in
// radians. The arguments are commutative.
func AngleDiff(a1, a2 float64) float64 {
	return math.Pi - math.Abs(math.Abs(a1-a2)-math.Pi)
}
