// Package config loads and validates the geometry description of a serial
// manipulator. Descriptions are YAML files written in human units (degrees,
// meters); all angular fields are converted to radians on parse and the
// resulting RobotGeometry is immutable, so it is safe to share across
// concurrent readers.
package config

import (
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/artebotics/armkin/spatialmath"
	"github.com/artebotics/armkin/utils"
)

// ErrNoGeometryInformation is used when an empty description is parsed.
var ErrNoGeometryInformation = errors.New("no robot geometry information")

// DHParams are the modified Denavit-Hartenberg values of one axis. Alpha and
// Theta are radians; A and D are lengths.
type DHParams struct {
	Alpha float64
	A     float64
	Theta float64
	D     float64
}

// Limits is the allowed position interval of one axis in radians.
type Limits struct {
	Min float64
	Max float64
}

// Axis describes a single revolute axis: its DH row, its origin point and
// rotation-axis vector for the offset parameterization, its home angle,
// whether its drive sense is inverted, and its position limits.
type Axis struct {
	DH       DHParams
	Origin   r3.Vector
	Rotation mgl64.Vec3
	Home     float64
	Inverted bool
	Limits   Limits
}

// OPWParams parameterize an ortho-parallel-wrist manipulator for the
// closed-form inverse solver: four link lengths, two offsets, one lateral
// offset, plus the per-axis sign and mechanical angle offset mapping the
// geometric convention onto the physical joints.
type OPWParams struct {
	L1, L2, L3, L4 float64
	O1, O2, Oy     float64
	Signs          [6]float64
	Offsets        [6]float64
}

// RobotGeometry is the full kinematic description of one robot. Loaded once,
// never mutated.
type RobotGeometry struct {
	Name          string
	Brand         string
	Solver        string
	Axes          []Axis
	Flange        spatialmath.Pose
	OPW           *OPWParams
	RotationOrder spatialmath.RotationOrder
}

// DoF returns the number of configured axes.
func (g *RobotGeometry) DoF() int {
	return len(g.Axes)
}

type vectorConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type dhConfig struct {
	Alpha float64 `yaml:"alpha"`
	A     float64 `yaml:"a"`
	Theta float64 `yaml:"theta"`
	D     float64 `yaml:"d"`
}

type homeConfig struct {
	Angle    float64 `yaml:"angle"`
	Inverted bool    `yaml:"inverted"`
}

type limitsConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type axisConfig struct {
	DH     dhConfig     `yaml:"dh"`
	Origin vectorConfig `yaml:"origin"`
	Axis   vectorConfig `yaml:"axis"`
	Home   homeConfig   `yaml:"home"`
	Limits limitsConfig `yaml:"limits"`
}

type flangeConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
}

type opwConfig struct {
	L1      float64   `yaml:"l1"`
	L2      float64   `yaml:"l2"`
	L3      float64   `yaml:"l3"`
	L4      float64   `yaml:"l4"`
	O1      float64   `yaml:"o1"`
	O2      float64   `yaml:"o2"`
	Oy      float64   `yaml:"oy"`
	Signs   []float64 `yaml:"signs"`
	Offsets []float64 `yaml:"offsets"`
}

// geometryConfig mirrors the YAML file layout.
type geometryConfig struct {
	Name   string       `yaml:"name"`
	Brand  string       `yaml:"brand"`
	Solver string       `yaml:"solver"`
	Axes   []axisConfig `yaml:"axes"`
	Flange flangeConfig `yaml:"flange"`
	OPW    *opwConfig   `yaml:"opw,omitempty"`
}

// Unmarshal parses a YAML robot description into a validated RobotGeometry.
func Unmarshal(data []byte) (*RobotGeometry, error) {
	if len(data) == 0 {
		return nil, ErrNoGeometryInformation
	}
	var cfg geometryConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal robot geometry yaml")
	}
	return cfg.parse()
}

// ParseFile reads and parses a YAML robot description file.
func ParseFile(filename string) (*RobotGeometry, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read robot geometry file")
	}
	return Unmarshal(data)
}

func (cfg *geometryConfig) parse() (*RobotGeometry, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	geom := &RobotGeometry{
		Name:          cfg.Name,
		Brand:         cfg.Brand,
		Solver:        cfg.Solver,
		RotationOrder: spatialmath.RotationOrderForBrand(cfg.Brand),
	}
	for _, ac := range cfg.Axes {
		geom.Axes = append(geom.Axes, Axis{
			DH: DHParams{
				Alpha: utils.DegToRad(ac.DH.Alpha),
				A:     ac.DH.A,
				Theta: utils.DegToRad(ac.DH.Theta),
				D:     ac.DH.D,
			},
			Origin:   r3.Vector{X: ac.Origin.X, Y: ac.Origin.Y, Z: ac.Origin.Z},
			Rotation: mgl64.Vec3{ac.Axis.X, ac.Axis.Y, ac.Axis.Z},
			Home:     utils.DegToRad(ac.Home.Angle),
			Inverted: ac.Home.Inverted,
			Limits: Limits{
				Min: utils.DegToRad(ac.Limits.Min),
				Max: utils.DegToRad(ac.Limits.Max),
			},
		})
	}
	geom.Flange = spatialmath.Pose{
		Position: r3.Vector{X: cfg.Flange.X, Y: cfg.Flange.Y, Z: cfg.Flange.Z},
		Orientation: spatialmath.EulerAngles{
			A: utils.DegToRad(cfg.Flange.A),
			B: utils.DegToRad(cfg.Flange.B),
			C: utils.DegToRad(cfg.Flange.C),
		},
	}
	if cfg.OPW != nil {
		opw := &OPWParams{
			L1: cfg.OPW.L1, L2: cfg.OPW.L2, L3: cfg.OPW.L3, L4: cfg.OPW.L4,
			O1: cfg.OPW.O1, O2: cfg.OPW.O2, Oy: cfg.OPW.Oy,
		}
		for i := range opw.Signs {
			opw.Signs[i] = cfg.OPW.Signs[i]
			opw.Offsets[i] = utils.DegToRad(cfg.OPW.Offsets[i])
		}
		geom.OPW = opw
	}
	return geom, nil
}

func (cfg *geometryConfig) validate() error {
	var err error
	if len(cfg.Axes) == 0 {
		err = multierr.Append(err, errors.New("robot geometry must declare at least one axis"))
	}
	for i, ac := range cfg.Axes {
		if ac.Limits.Min > ac.Limits.Max {
			err = multierr.Append(err, errors.Errorf("axis %d: limit min %f exceeds max %f", i+1, ac.Limits.Min, ac.Limits.Max))
		}
		if ac.Axis.X == 0 && ac.Axis.Y == 0 && ac.Axis.Z == 0 {
			err = multierr.Append(err, errors.Errorf("axis %d: rotation axis vector is zero", i+1))
		}
	}
	if cfg.OPW != nil {
		if len(cfg.Axes) != 6 {
			err = multierr.Append(err, errors.Errorf("opw parameters require exactly 6 axes, have %d", len(cfg.Axes)))
		}
		if len(cfg.OPW.Signs) != 6 {
			err = multierr.Append(err, errors.Errorf("opw signs must have 6 entries, have %d", len(cfg.OPW.Signs)))
		}
		if len(cfg.OPW.Offsets) != 6 {
			err = multierr.Append(err, errors.Errorf("opw offsets must have 6 entries, have %d", len(cfg.OPW.Offsets)))
		}
		for i, sign := range cfg.OPW.Signs {
			if sign != 1 && sign != -1 {
				err = multierr.Append(err, errors.Errorf("opw sign %d must be -1 or 1, is %f", i+1, sign))
			}
		}
	}
	return err
}
