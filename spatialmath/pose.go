package spatialmath

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// Pose is a Cartesian position plus an orientation expressed as Euler angles.
// The interpretation of the angles depends on the rotation order the robot is
// configured with.
type Pose struct {
	Position    r3.Vector
	Orientation EulerAngles
}

// PoseToMatrix converts a pose into a 4x4 homogeneous transform using the
// given Euler convention.
func PoseToMatrix(p Pose, order RotationOrder) mgl64.Mat4 {
	m := EulerToMatrix(p.Orientation, order)
	m.SetCol(3, mgl64.Vec4{p.Position.X, p.Position.Y, p.Position.Z, 1})
	return m
}

// MatrixToPose converts a 4x4 homogeneous transform into a pose using the
// given Euler convention.
func MatrixToPose(m mgl64.Mat4, order RotationOrder) Pose {
	return Pose{
		Position:    r3.Vector{X: m.At(0, 3), Y: m.At(1, 3), Z: m.At(2, 3)},
		Orientation: MatrixToEuler(m.Mat3(), order),
	}
}

// PoseAlmostEqual returns true if both the positions and the Euler angles of
// two poses are within epsilon of each other component-wise.
func PoseAlmostEqual(p1, p2 Pose, epsilon float64) bool {
	d := p1.Position.Sub(p2.Position)
	if d.Norm() > epsilon {
		return false
	}
	diffs := [3]float64{
		p1.Orientation.A - p2.Orientation.A,
		p1.Orientation.B - p2.Orientation.B,
		p1.Orientation.C - p2.Orientation.C,
	}
	for _, diff := range diffs {
		if diff > epsilon || diff < -epsilon {
			return false
		}
	}
	return true
}
