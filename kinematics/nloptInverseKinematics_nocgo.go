//go:build windows || no_cgo

package kinematics

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/artebotics/armkin/config"
)

// NloptIK is unavailable without cgo; Solve always errors.
type NloptIK struct{}

// NewNloptIK returns a stub solver on platforms built without cgo.
func NewNloptIK(geom *config.RobotGeometry, logger golog.Logger) *NloptIK {
	return &NloptIK{}
}

// Solve is unavailable without cgo.
func (ik *NloptIK) Solve(ctx context.Context, target mgl64.Mat4, seed []float64) (*Solution, error) {
	return nil, errors.New("nlopt solver not supported on this platform")
}
