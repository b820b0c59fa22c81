package kinematics

import (
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/artebotics/armkin/spatialmath"
)

func TestForwardSolverHome(t *testing.T) {
	logger := golog.NewTestLogger(t)
	geom := opw6Geometry()
	fs := NewForwardSolver(geom, NewOffsetChain(geom), logger)

	pose, err := fs.Compute(make([]float64, 6))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Position.X, test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, pose.Position.Y, test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, pose.Position.Z, test.ShouldAlmostEqual, 1.8, 1e-12)
	test.That(t, pose.Orientation.A, test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, pose.Orientation.B, test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, pose.Orientation.C, test.ShouldAlmostEqual, 0, 1e-12)
}

func TestForwardSolverRepeatable(t *testing.T) {
	logger := golog.NewTestLogger(t)
	geom := planar3Geometry()
	fs := NewForwardSolver(geom, NewOffsetChain(geom), logger)

	q := []float64{0.2, -0.4, 0.6}
	p1, err := fs.Compute(q)
	test.That(t, err, test.ShouldBeNil)
	p2, err := fs.Compute(q)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostEqual(p1, p2, 0), test.ShouldBeTrue)

	m1, err := fs.Matrix(q)
	test.That(t, err, test.ShouldBeNil)
	transformsAlmostEqual(t, m1, spatialmath.PoseToMatrix(p1, geom.RotationOrder), 1e-12)
}

func TestForwardSolverMatchesDHChain(t *testing.T) {
	logger := golog.NewTestLogger(t)
	geom := opw6Geometry()
	fsOffset := NewForwardSolver(geom, NewOffsetChain(geom), logger)
	fsDH := NewForwardSolver(geom, NewDHChain(geom), logger)

	q := []float64{0.1, 0.2, -0.3, 0.4, 0.5, -0.6}
	pOffset, err := fsOffset.Compute(q)
	test.That(t, err, test.ShouldBeNil)
	pDH, err := fsDH.Compute(q)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostEqual(pOffset, pDH, 1e-9), test.ShouldBeTrue)
}
