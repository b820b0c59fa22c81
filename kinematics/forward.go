package kinematics

import (
	"github.com/edaniels/golog"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/artebotics/armkin/config"
	"github.com/artebotics/armkin/spatialmath"
)

// ForwardSolver evaluates the tool pose of a geometry at given joint
// positions, reporting orientation in the geometry's rotation order.
type ForwardSolver struct {
	geom   *config.RobotGeometry
	model  Model
	logger golog.Logger
}

// NewForwardSolver builds a forward solver over the given model of geom.
func NewForwardSolver(geom *config.RobotGeometry, model Model, logger golog.Logger) *ForwardSolver {
	return &ForwardSolver{geom: geom, model: model, logger: logger}
}

// Matrix returns the base-to-tool matrix at q.
func (fs *ForwardSolver) Matrix(q []float64) (mgl64.Mat4, error) {
	return fs.model.Transform(q)
}

// Compute returns the tool pose at q, with Euler angles extracted in the
// geometry's rotation order.
func (fs *ForwardSolver) Compute(q []float64) (spatialmath.Pose, error) {
	m, err := fs.model.Transform(q)
	if err != nil {
		return spatialmath.Pose{}, err
	}
	return spatialmath.MatrixToPose(m, fs.geom.RotationOrder), nil
}
