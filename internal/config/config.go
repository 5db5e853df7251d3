// Package config loads and saves rigidsim scenarios as YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/shape"
)

const (
	DefaultDt          = 1.0 / 60
	DefaultSteps       = 600
	DefaultIterations  = 8
	DefaultGravity     = 9.8
	DefaultLinearDamp  = 0.1
	DefaultAngularDamp = 1.0
)

// ErrInvalidConfig indicates a scenario that cannot be built.
var ErrInvalidConfig = errors.New("config: invalid scenario")

type Config struct {
	Name       string        `yaml:"name"`
	Dt         float64       `yaml:"dt"`
	Steps      int           `yaml:"steps"`
	Iterations int           `yaml:"iterations"`
	Seed       int64         `yaml:"seed"`
	Jitter     float64       `yaml:"jitter"`
	Space      SpaceConfig   `yaml:"space"`
	Shapes     []ShapeConfig `yaml:"shapes"`
	Bodies     []BodyConfig  `yaml:"bodies"`
	Areas      []AreaConfig  `yaml:"areas,omitempty"`
	Joints     []JointConfig `yaml:"joints,omitempty"`
}

type SpaceConfig struct {
	Gravity       float64            `yaml:"gravity"`
	GravityVector mgl64.Vec3         `yaml:"gravity_vector,flow"`
	LinearDamp    float64            `yaml:"linear_damp"`
	AngularDamp   float64            `yaml:"angular_damp"`
	Params        map[string]float64 `yaml:"params,omitempty"`
}

type ShapeConfig struct {
	Name        string       `yaml:"name"`
	Type        string       `yaml:"type"`
	Radius      float64      `yaml:"radius,omitempty"`
	Height      float64      `yaml:"height,omitempty"`
	HalfExtents mgl64.Vec3   `yaml:"half_extents,flow,omitempty"`
	Normal      mgl64.Vec3   `yaml:"normal,flow,omitempty"`
	D           float64      `yaml:"d,omitempty"`
	Length      float64      `yaml:"length,omitempty"`
	Points      []mgl64.Vec3 `yaml:"points,flow,omitempty"`
	CustomBias  float64      `yaml:"custom_bias,omitempty"`
}

type BodyConfig struct {
	Name            string     `yaml:"name"`
	Mode            string     `yaml:"mode,omitempty"`
	Shapes          []string   `yaml:"shapes,flow"`
	Position        mgl64.Vec3 `yaml:"position,flow"`
	Rotation        mgl64.Vec3 `yaml:"rotation,flow,omitempty"`
	LinearVelocity  mgl64.Vec3 `yaml:"linear_velocity,flow,omitempty"`
	AngularVelocity mgl64.Vec3 `yaml:"angular_velocity,flow,omitempty"`
	Mass            float64    `yaml:"mass,omitempty"`
	Bounce          float64    `yaml:"bounce,omitempty"`
	Friction        *float64   `yaml:"friction,omitempty"`
	GravityScale    *float64   `yaml:"gravity_scale,omitempty"`
	LinearDamp      *float64   `yaml:"linear_damp,omitempty"`
	AngularDamp     *float64   `yaml:"angular_damp,omitempty"`
	CanSleep        bool       `yaml:"can_sleep,omitempty"`
	Sleeping        bool       `yaml:"sleeping,omitempty"`
	MaxContacts     int        `yaml:"max_contacts,omitempty"`
	Exceptions      []string   `yaml:"exceptions,flow,omitempty"`
	AxisLock        string     `yaml:"axis_lock,omitempty"`
	CCD             bool       `yaml:"ccd,omitempty"`
}

type AreaConfig struct {
	Name          string     `yaml:"name"`
	Override      string     `yaml:"override"`
	Shapes        []string   `yaml:"shapes,flow"`
	Position      mgl64.Vec3 `yaml:"position,flow"`
	Gravity       float64    `yaml:"gravity"`
	GravityVector mgl64.Vec3 `yaml:"gravity_vector,flow"`
	Point         bool       `yaml:"point,omitempty"`
	DistanceScale float64    `yaml:"distance_scale,omitempty"`
	Attenuation   float64    `yaml:"attenuation,omitempty"`
	LinearDamp    float64    `yaml:"linear_damp,omitempty"`
	AngularDamp   float64    `yaml:"angular_damp,omitempty"`
	Priority      int        `yaml:"priority,omitempty"`
	Monitor       bool       `yaml:"monitor,omitempty"`
	Monitorable   bool       `yaml:"monitorable,omitempty"`
}

// JointConfig describes one joint. B may be empty to anchor to the world.
// Anchors are local to each body; Axis is the hinge axis, the slide axis or
// the twist axis depending on Type.
type JointConfig struct {
	Name     string       `yaml:"name"`
	Type     string       `yaml:"type"`
	A        string       `yaml:"a"`
	B        string       `yaml:"b,omitempty"`
	AnchorA  mgl64.Vec3   `yaml:"anchor_a,flow"`
	AnchorB  mgl64.Vec3   `yaml:"anchor_b,flow"`
	AxisA    mgl64.Vec3   `yaml:"axis_a,flow,omitempty"`
	AxisB    mgl64.Vec3   `yaml:"axis_b,flow,omitempty"`
	Limit    []float64    `yaml:"limit,flow,omitempty"`
	Motor    *MotorConfig `yaml:"motor,omitempty"`
	Bias     *float64     `yaml:"bias,omitempty"`
	Priority int          `yaml:"priority,omitempty"`
}

type MotorConfig struct {
	Velocity   float64 `yaml:"velocity"`
	MaxImpulse float64 `yaml:"max_impulse"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "untitled",
		Dt:         DefaultDt,
		Steps:      DefaultSteps,
		Iterations: DefaultIterations,
		Space: SpaceConfig{
			Gravity:       DefaultGravity,
			GravityVector: mgl64.Vec3{0, -1, 0},
			LinearDamp:    DefaultLinearDamp,
			AngularDamp:   DefaultAngularDamp,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks names, references and enum strings.
func (c *Config) Validate() error {
	if !(c.Dt > 0) {
		return invalid("dt must be positive, got %v", c.Dt)
	}
	if c.Steps <= 0 {
		return invalid("steps must be positive, got %d", c.Steps)
	}
	if c.Iterations <= 0 {
		return invalid("iterations must be positive, got %d", c.Iterations)
	}
	for k := range c.Space.Params {
		if _, err := physics.ParseSpaceParameter(k); err != nil {
			return invalid("space param %q", k)
		}
	}

	shapes := make(map[string]bool, len(c.Shapes))
	for _, s := range c.Shapes {
		if shapes[s.Name] {
			return invalid("duplicate shape %q", s.Name)
		}
		if _, err := s.Data(); err != nil {
			return fmt.Errorf("%w: shape %q: %w", ErrInvalidConfig, s.Name, err)
		}
		shapes[s.Name] = true
	}

	bodies := make(map[string]bool, len(c.Bodies))
	for _, b := range c.Bodies {
		if b.Name == "" || bodies[b.Name] {
			return invalid("missing or duplicate body name %q", b.Name)
		}
		bodies[b.Name] = true
		if _, err := b.BodyMode(); err != nil {
			return invalid("body %q: mode %q", b.Name, b.Mode)
		}
		if _, err := b.Lock(); err != nil {
			return invalid("body %q: axis lock %q", b.Name, b.AxisLock)
		}
		if err := checkRefs(shapes, b.Shapes, "body", b.Name); err != nil {
			return err
		}
	}
	for _, b := range c.Bodies {
		if err := checkRefs(bodies, b.Exceptions, "body exception", b.Name); err != nil {
			return err
		}
	}

	for _, a := range c.Areas {
		if _, err := physics.ParseAreaSpaceOverrideMode(a.Override); err != nil {
			return invalid("area %q: override %q", a.Name, a.Override)
		}
		if err := checkRefs(shapes, a.Shapes, "area", a.Name); err != nil {
			return err
		}
	}

	for _, j := range c.Joints {
		if _, err := physics.ParseJointType(j.Type); err != nil {
			return invalid("joint %q: type %q", j.Name, j.Type)
		}
		if !bodies[j.A] || (j.B != "" && !bodies[j.B]) {
			return invalid("joint %q: unknown body", j.Name)
		}
		if len(j.Limit) != 0 && len(j.Limit) != 2 {
			return invalid("joint %q: limit wants two values", j.Name)
		}
	}
	return nil
}

func checkRefs(known map[string]bool, refs []string, kind, owner string) error {
	for _, r := range refs {
		if !known[r] {
			return invalid("%s %q: unknown reference %q", kind, owner, r)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

// ShapeType parses the shape's type name.
func (s ShapeConfig) ShapeType() (shape.Type, error) { return shape.ParseType(s.Type) }

// Data converts the shape fields into the value its shape type accepts.
func (s ShapeConfig) Data() (any, error) {
	t, err := s.ShapeType()
	if err != nil {
		return nil, err
	}
	switch t {
	case shape.TypeSphere:
		return s.Radius, nil
	case shape.TypeBox:
		return s.HalfExtents, nil
	case shape.TypePlane:
		return geom.Plane{Normal: s.Normal, D: s.D}, nil
	case shape.TypeCapsule:
		return shape.CapsuleData{Radius: s.Radius, Height: s.Height}, nil
	case shape.TypeRay:
		return s.Length, nil
	case shape.TypeConvexPolygon, shape.TypeConcavePolygon:
		return s.Points, nil
	}
	return nil, fmt.Errorf("%w: %v", shape.ErrUnsupportedType, t)
}

// BodyMode parses Mode; empty means rigid.
func (b BodyConfig) BodyMode() (physics.BodyMode, error) {
	if b.Mode == "" {
		return physics.BodyModeRigid, nil
	}
	return physics.ParseBodyMode(b.Mode)
}

// Lock parses AxisLock; empty means disabled.
func (b BodyConfig) Lock() (physics.AxisLock, error) {
	if b.AxisLock == "" {
		return physics.AxisLockDisabled, nil
	}
	return physics.ParseAxisLock(b.AxisLock)
}

// Transform places the body at Position, rotated by the axis-angle vector
// Rotation.
func (b BodyConfig) Transform() geom.Transform {
	xf := geom.Translation(b.Position)
	if angle := b.Rotation.Len(); angle > geom.Epsilon {
		xf.Basis = geom.Rotation(b.Rotation.Mul(1/angle), angle)
	}
	return xf
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	data, err := yaml.Marshal(c)
	if err != nil {
		panic(err)
	}
	out := &Config{}
	if err := yaml.Unmarshal(data, out); err != nil {
		panic(err)
	}
	return out
}
