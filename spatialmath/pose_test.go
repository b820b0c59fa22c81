package spatialmath

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestPoseMatrixRoundTrip(t *testing.T) {
	p := Pose{
		Position:    r3.Vector{X: 0.1, Y: -0.2, Z: 0.3},
		Orientation: EulerAngles{A: 0.3, B: 0.4, C: -0.5},
	}
	for _, order := range allRotationOrders {
		t.Run(order.String(), func(t *testing.T) {
			m := PoseToMatrix(p, order)
			test.That(t, m.At(0, 3), test.ShouldAlmostEqual, 0.1)
			test.That(t, m.At(1, 3), test.ShouldAlmostEqual, -0.2)
			test.That(t, m.At(2, 3), test.ShouldAlmostEqual, 0.3)

			out := MatrixToPose(m, order)
			matricesAlmostEqual(t, PoseToMatrix(out, order), m, 1e-12)
			test.That(t, out.Position.X, test.ShouldAlmostEqual, p.Position.X)
			test.That(t, out.Position.Y, test.ShouldAlmostEqual, p.Position.Y)
			test.That(t, out.Position.Z, test.ShouldAlmostEqual, p.Position.Z)
		})
	}
}

func TestPoseAlmostEqual(t *testing.T) {
	p1 := Pose{
		Position:    r3.Vector{X: 1, Y: 2, Z: 3},
		Orientation: EulerAngles{A: 0.1, B: 0.2, C: 0.3},
	}
	p2 := p1
	test.That(t, PoseAlmostEqual(p1, p2, 1e-9), test.ShouldBeTrue)

	p2.Position.X += 1e-10
	test.That(t, PoseAlmostEqual(p1, p2, 1e-9), test.ShouldBeTrue)

	p2.Position.X += 0.01
	test.That(t, PoseAlmostEqual(p1, p2, 1e-9), test.ShouldBeFalse)

	p2 = p1
	p2.Orientation.C += 0.01
	test.That(t, PoseAlmostEqual(p1, p2, 1e-9), test.ShouldBeFalse)
}
