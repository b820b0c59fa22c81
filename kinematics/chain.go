// Package kinematics implements forward and inverse kinematics for serial
// revolute manipulators described by a config.RobotGeometry. Two chain
// parameterizations of the same geometry are provided, a modified
// Denavit-Hartenberg chain and an origin/axis offset chain, behind a common
// Model interface. All solvers are stateless with respect to the geometry;
// only Session carries mutable state.
package kinematics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/artebotics/armkin/config"
	"github.com/artebotics/armkin/spatialmath"
)

// Model maps joint positions to the pose of the tool frame. Implementations
// are safe for concurrent use.
type Model interface {
	// DoF returns the number of joints the model expects.
	DoF() int
	// Transform returns the base-to-tool matrix at the given joint
	// positions, in radians.
	Transform(q []float64) (mgl64.Mat4, error)
}

// DHChain computes forward kinematics from the modified Denavit-Hartenberg
// rows of a geometry. Each axis contributes Rx(alpha)·Tx(a)·Rz(theta+q)·Tz(d)
// and the flange pose is applied after the last axis.
type DHChain struct {
	geom *config.RobotGeometry
}

// NewDHChain wraps a geometry in its DH parameterization.
func NewDHChain(geom *config.RobotGeometry) *DHChain {
	return &DHChain{geom: geom}
}

// DoF returns the number of axes in the chain.
func (c *DHChain) DoF() int {
	return c.geom.DoF()
}

// Transform computes the base-to-tool matrix at q.
func (c *DHChain) Transform(q []float64) (mgl64.Mat4, error) {
	if len(q) != c.geom.DoF() {
		return mgl64.Ident4(), ErrJointCountMismatch
	}
	m := mgl64.Ident4()
	for i, axis := range c.geom.Axes {
		m = m.Mul4(dhTransform(axis, q[i]))
	}
	return m.Mul4(spatialmath.PoseToMatrix(c.geom.Flange, c.geom.RotationOrder)), nil
}

func dhTransform(axis config.Axis, q float64) mgl64.Mat4 {
	if axis.Inverted {
		q = -q
	}
	dh := axis.DH
	m := spatialmath.RotationX(dh.Alpha)
	m = m.Mul4(spatialmath.Translation(dh.A, 0, 0))
	m = m.Mul4(spatialmath.RotationZ(dh.Theta + q))
	return m.Mul4(spatialmath.Translation(0, 0, dh.D))
}

// OffsetChain computes forward kinematics from per-axis origin points and
// rotation axes. Each axis contributes T(origin)·R(q, axis). The chain also
// exposes the cumulative transform at every joint, which the Jacobian needs.
type OffsetChain struct {
	geom *config.RobotGeometry
}

// NewOffsetChain wraps a geometry in its offset parameterization.
func NewOffsetChain(geom *config.RobotGeometry) *OffsetChain {
	return &OffsetChain{geom: geom}
}

// DoF returns the number of axes in the chain.
func (c *OffsetChain) DoF() int {
	return c.geom.DoF()
}

// Transform computes the base-to-tool matrix at q.
func (c *OffsetChain) Transform(q []float64) (mgl64.Mat4, error) {
	partials, err := c.CumulativeTransforms(q)
	if err != nil {
		return mgl64.Ident4(), err
	}
	last := partials[len(partials)-1]
	return last.Mul4(spatialmath.PoseToMatrix(c.geom.Flange, c.geom.RotationOrder)), nil
}

// CumulativeTransforms returns the base-to-joint matrix after each axis has
// been applied, without the flange. Entry i carries the origin and the
// orientation of joint i's frame in base coordinates, which is what the
// Jacobian columns are built from.
func (c *OffsetChain) CumulativeTransforms(q []float64) ([]mgl64.Mat4, error) {
	if len(q) != c.geom.DoF() {
		return nil, ErrJointCountMismatch
	}
	partials := make([]mgl64.Mat4, 0, len(q))
	m := mgl64.Ident4()
	for i, axis := range c.geom.Axes {
		m = m.Mul4(offsetTransform(axis, q[i]))
		partials = append(partials, m)
	}
	return partials, nil
}

func offsetTransform(axis config.Axis, q float64) mgl64.Mat4 {
	if axis.Inverted {
		q = -q
	}
	o := axis.Origin
	m := spatialmath.Translation(o.X, o.Y, o.Z)
	return m.Mul4(spatialmath.RotationAboutAxis(q, axis.Rotation))
}
