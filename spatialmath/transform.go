// Package spatialmath implements the pose and homogeneous-transform math used
// by the kinematic solvers.
package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Translation returns the 4x4 homogeneous transform translating by (x, y, z).
func Translation(x, y, z float64) mgl64.Mat4 {
	return mgl64.Translate3D(x, y, z)
}

// RotationX returns the 4x4 transform rotating by angle radians about the x axis.
func RotationX(angle float64) mgl64.Mat4 {
	return mgl64.HomogRotate3DX(angle)
}

// RotationY returns the 4x4 transform rotating by angle radians about the y axis.
func RotationY(angle float64) mgl64.Mat4 {
	return mgl64.HomogRotate3DY(angle)
}

// RotationZ returns the 4x4 transform rotating by angle radians about the z axis.
func RotationZ(angle float64) mgl64.Mat4 {
	return mgl64.HomogRotate3DZ(angle)
}

// RotationAboutAxis returns the 4x4 transform rotating by angle radians about
// an arbitrary axis. The axis need not be normalized; a zero axis yields the
// identity transform.
func RotationAboutAxis(angle float64, axis mgl64.Vec3) mgl64.Mat4 {
	if axis.Len() == 0 {
		return mgl64.Ident4()
	}
	return mgl64.HomogRotate3D(angle, axis.Normalize())
}

// BoundAngle wraps an angle in radians into the interval (-pi, pi].
func BoundAngle(angle float64) float64 {
	for angle > math.Pi {
		angle -= 2 * math.Pi
	}
	for angle <= -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}

// BoundAngles wraps every angle of a joint vector into (-pi, pi], returning a
// new slice.
func BoundAngles(angles []float64) []float64 {
	bounded := make([]float64, len(angles))
	for i, a := range angles {
		bounded[i] = BoundAngle(a)
	}
	return bounded
}
