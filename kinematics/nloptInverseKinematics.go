//go:build !windows && !no_cgo

package kinematics

import (
	"context"
	"math"

	"github.com/edaniels/golog"
	"github.com/go-gl/mathgl/mgl64"
	nlopt "github.com/go-nlopt/nlopt"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/artebotics/armkin/config"
	"github.com/artebotics/armkin/spatialmath"
)

const (
	// nloptGradientJump is the finite-difference step of the objective
	// gradient.
	nloptGradientJump = 1e-8
	// nloptMaxEvaluations caps objective evaluations per solve.
	nloptMaxEvaluations = 8001
)

// NloptIK solves inverse kinematics with the SLSQP optimizer from nlopt,
// respecting the axis limits as hard bounds. It minimizes the same weighted
// pose residual as the descent solver.
type NloptIK struct {
	geom       *config.RobotGeometry
	chain      *OffsetChain
	tolerance  float64
	weights    []float64
	lowerBound []float64
	upperBound []float64
	logger     golog.Logger
}

// NewNloptIK builds an nlopt-backed solver over the offset chain of geom.
func NewNloptIK(geom *config.RobotGeometry, logger golog.Logger) *NloptIK {
	ik := &NloptIK{
		geom:      geom,
		chain:     NewOffsetChain(geom),
		tolerance: DefaultTolerance,
		weights:   make([]float64, 6),
		logger:    logger,
	}
	for i := range ik.weights {
		ik.weights[i] = DefaultDOFWeight
	}
	for _, axis := range geom.Axes {
		ik.lowerBound = append(ik.lowerBound, axis.Limits.Min)
		ik.upperBound = append(ik.upperBound, axis.Limits.Max)
	}
	return ik
}

// Solve minimizes the pose residual toward target starting from seed. Each
// call builds its own optimizer, so the solver is safe for concurrent use.
func (ik *NloptIK) Solve(ctx context.Context, target mgl64.Mat4, seed []float64) (*Solution, error) {
	n := ik.chain.DoF()
	if len(seed) != n {
		return nil, ErrJointCountMismatch
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opt, err := nlopt.NewNLopt(nlopt.LD_SLSQP, uint(n))
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize nlopt")
	}
	defer opt.Destroy()

	evaluations := 0
	objective := func(x, gradient []float64) float64 {
		evaluations++
		dist := ik.distance(target, x)
		if len(gradient) > 0 {
			for i := range gradient {
				xShift := append([]float64{}, x...)
				xShift[i] += nloptGradientJump
				dist2 := ik.distance(target, xShift)
				gradient[i] = (dist2 - dist) / (2 * nloptGradientJump)
			}
		}
		return dist
	}

	err = multierr.Combine(
		opt.SetFtolAbs(ik.tolerance),
		opt.SetFtolRel(ik.tolerance),
		opt.SetLowerBounds(ik.lowerBound),
		opt.SetMinObjective(objective),
		opt.SetStopVal(ik.tolerance),
		opt.SetUpperBounds(ik.upperBound),
		opt.SetXtolAbs1(ik.tolerance),
		opt.SetXtolRel(ik.tolerance),
		opt.SetMaxEval(nloptMaxEvaluations),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to configure nlopt")
	}

	stop := context.AfterFunc(ctx, func() {
		if ferr := opt.ForceStop(); ferr != nil {
			ik.logger.Debugw("failed to force-stop nlopt", "error", ferr)
		}
	})
	defer stop()

	result, score, err := opt.Optimize(append([]float64{}, seed...))
	if err != nil && result == nil {
		return nil, errors.Wrap(err, "nlopt optimization failed")
	}
	if score >= ik.tolerance {
		return nil, &ConvergenceError{
			LastQ:      spatialmath.BoundAngles(result),
			Iterations: evaluations,
			Searches:   1,
			Residual:   score,
		}
	}
	return &Solution{
		Q:          spatialmath.BoundAngles(result),
		Converged:  true,
		Iterations: evaluations,
		Searches:   1,
		Residual:   score,
	}, nil
}

func (ik *NloptIK) distance(target mgl64.Mat4, q []float64) float64 {
	current, err := ik.chain.Transform(q)
	if err != nil {
		return math.Inf(1)
	}
	return residual(PoseError(target, current), ik.weights)
}
