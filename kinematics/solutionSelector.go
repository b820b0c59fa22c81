package kinematics

import (
	"sync"

	"github.com/edaniels/golog"

	"github.com/artebotics/armkin/config"
	"github.com/artebotics/armkin/spatialmath"
	"github.com/artebotics/armkin/utils"
)

// DefaultPoseTolerance is how closely a candidate's forward pose must
// reproduce the target for SelectByPose.
const DefaultPoseTolerance = 1e-6

// DefaultAngleTolerance is how far, in radians, each joint of a candidate may
// sit from the current position for SelectByProximity.
var DefaultAngleTolerance = utils.DegToRad(10)

// Session binds the solvers of one robot together and tracks the last target
// that produced a solution within the axis limits, so a caller streaming
// targets can hold the last good pose when a new one violates a limit. A
// Session is safe for concurrent use.
type Session struct {
	mu              sync.Mutex
	geom            *config.RobotGeometry
	fk              *ForwardSolver
	ik              *SphericalWristIK
	lastValidTarget spatialmath.Pose
	poseTolerance   float64
	angleTolerance  float64
	logger          golog.Logger
}

// NewSession builds a session over geom. The last valid target starts at the
// forward pose of the home position. Geometries without ortho-parallel-wrist
// parameters still get forward kinematics and selection; ComputeIK then
// fails with ErrNoOPWParameters.
func NewSession(geom *config.RobotGeometry, logger golog.Logger) (*Session, error) {
	s := &Session{
		geom:           geom,
		fk:             NewForwardSolver(geom, NewOffsetChain(geom), logger),
		poseTolerance:  DefaultPoseTolerance,
		angleTolerance: DefaultAngleTolerance,
		logger:         logger,
	}
	if geom.OPW != nil {
		ik, err := NewSphericalWristIK(geom, logger)
		if err != nil {
			return nil, err
		}
		s.ik = ik
	}

	home := make([]float64, geom.DoF())
	for i, axis := range geom.Axes {
		home[i] = axis.Home
	}
	pose, err := s.fk.Compute(home)
	if err != nil {
		return nil, err
	}
	s.lastValidTarget = pose
	return s, nil
}

// ComputeFK returns the tool pose at q.
func (s *Session) ComputeFK(q []float64) (spatialmath.Pose, error) {
	return s.fk.Compute(q)
}

// ComputeIK solves the target pose in closed form and returns the canonical
// branch solution. When that solution violates an axis limit, the session
// holds its state: it returns the last valid target, a copy of currentQ, and
// a *LimitViolationError naming the offending axes. On success the target
// becomes the new last valid target.
func (s *Session) ComputeIK(
	target spatialmath.Pose,
	currentQ []float64,
) (spatialmath.Pose, []float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ik == nil {
		return s.lastValidTarget, append([]float64{}, currentQ...), ErrNoOPWParameters
	}
	solutions, err := s.ik.Solve(spatialmath.PoseToMatrix(target, s.geom.RotationOrder))
	if err != nil {
		return s.lastValidTarget, append([]float64{}, currentQ...), err
	}

	q := solutions[0].Q
	var violated []int
	for i, axis := range s.geom.Axes {
		if q[i] < axis.Limits.Min || q[i] > axis.Limits.Max {
			violated = append(violated, i)
		}
	}
	if len(violated) > 0 {
		s.logger.Debugw("holding last valid target", "axes", violated)
		return s.lastValidTarget, append([]float64{}, currentQ...), &LimitViolationError{Axes: violated}
	}

	s.lastValidTarget = target
	return target, q, nil
}

// LastValidTarget returns the most recent target whose canonical solution
// respected the axis limits.
func (s *Session) LastValidTarget() spatialmath.Pose {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastValidTarget
}

// SelectByPose returns the joints of the first candidate whose forward pose
// reproduces the target within the pose tolerance, or ErrNoMatchingSolution
// if none does.
func (s *Session) SelectByPose(
	candidates []BranchSolution,
	target spatialmath.Pose,
) ([]float64, error) {
	for _, candidate := range candidates {
		pose, err := s.fk.Compute(candidate.Q)
		if err != nil {
			return nil, err
		}
		if spatialmath.PoseAlmostEqual(pose, target, s.poseTolerance) {
			return candidate.Q, nil
		}
	}
	return nil, ErrNoMatchingSolution
}

// SelectByProximity returns the joints of the first candidate with every
// joint within the angle tolerance of currentQ. When no candidate is close
// enough the current position is returned unchanged, as a copy.
func (s *Session) SelectByProximity(
	candidates []BranchSolution,
	currentQ []float64,
) []float64 {
	for _, candidate := range candidates {
		withinTolerance := true
		for j, v := range candidate.Q {
			if utils.AngleDiff(v, currentQ[j]) > s.angleTolerance {
				withinTolerance = false
				break
			}
		}
		if withinTolerance {
			return candidate.Q
		}
	}
	return append([]float64{}, currentQ...)
}
