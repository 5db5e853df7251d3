package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
)

type HingeParam int

const (
	HingeParamBias HingeParam = iota
	HingeParamLimitUpper
	HingeParamLimitLower
	HingeParamLimitBias
	HingeParamLimitSoftness
	HingeParamLimitRelaxation
	HingeParamMotorTargetVelocity
	HingeParamMotorMaxImpulse
	HingeParamMax
)

type HingeFlag int

const (
	HingeFlagUseLimit HingeFlag = iota
	HingeFlagEnableMotor
	HingeFlagMax
)

// HingeJoint lets B rotate relative to A about the shared frame Z axis.
type HingeJoint struct {
	frameJoint

	params [HingeParamMax]float64
	flags  [HingeFlagMax]bool

	rows []row
}

func NewHingeJoint(a *Body, frameA geom.Transform, b *Body, frameB geom.Transform) (*HingeJoint, error) {
	j := &HingeJoint{}
	j.frameA, j.frameB = frameA, frameB
	j.params = [HingeParamMax]float64{
		HingeParamBias:                0.3,
		HingeParamLimitUpper:          math.Pi / 2,
		HingeParamLimitLower:          -math.Pi / 2,
		HingeParamLimitBias:           0.3,
		HingeParamLimitSoftness:       0.9,
		HingeParamLimitRelaxation:     1,
		HingeParamMotorTargetVelocity: 0,
		HingeParamMotorMaxImpulse:     1,
	}
	if err := j.attach(j, a, b); err != nil {
		return nil, err
	}
	return j, nil
}

// NewSimpleHingeJoint builds the frames from a pivot and an axis on each
// body.
func NewSimpleHingeJoint(a *Body, pivotA, axisA mgl64.Vec3, b *Body, pivotB, axisB mgl64.Vec3) (*HingeJoint, error) {
	if axisA.LenSqr() < geom.Epsilon || axisB.LenSqr() < geom.Epsilon {
		return nil, fmt.Errorf("%w: zero hinge axis", ErrInvalidParameter)
	}
	return NewHingeJoint(a, geom.AxisFrame(pivotA, axisA, 2), b, geom.AxisFrame(pivotB, axisB, 2))
}

func (j *HingeJoint) Type() JointType { return JointHinge }
func (j *HingeJoint) Detach()         { j.detach(j) }

func (j *HingeJoint) SetParam(p HingeParam, v float64) error {
	if p < 0 || p >= HingeParamMax {
		return fmt.Errorf("%w: hinge param %d", ErrInvalidParameter, p)
	}
	if err := checkFinite(v); err != nil {
		return err
	}
	j.params[p] = v
	return nil
}

func (j *HingeJoint) Param(p HingeParam) float64 {
	if p < 0 || p >= HingeParamMax {
		return 0
	}
	return j.params[p]
}

func (j *HingeJoint) SetFlag(f HingeFlag, enable bool) error {
	if f < 0 || f >= HingeFlagMax {
		return fmt.Errorf("%w: hinge flag %d", ErrInvalidParameter, f)
	}
	j.flags[f] = enable
	return nil
}

func (j *HingeJoint) Flag(f HingeFlag) bool {
	if f < 0 || f >= HingeFlagMax {
		return false
	}
	return j.flags[f]
}

// Angle is the rotation of B relative to A about the hinge axis.
func (j *HingeJoint) Angle() float64 {
	j.computeFrames()
	return j.angle()
}

func (j *HingeJoint) angle() float64 {
	ref0 := j.basisA.Col(0)
	ref1 := j.basisA.Col(1)
	swing := j.basisB.Col(1)
	return math.Atan2(swing.Dot(ref0.Mul(-1)), swing.Dot(ref1))
}

func (j *HingeJoint) Setup(step float64) bool {
	if j.detached {
		return false
	}
	j.computeFrames()
	bias := j.params[HingeParamBias]

	j.setupPoint(bias, step)
	j.rows = j.rows[:0]
	axis := j.basisA.Col(2)
	j.rows = alignmentRows(j.rows, j.a, j.b, axis, j.basisB.Col(2), bias, step)

	if j.flags[HingeFlagUseLimit] {
		r := angularRow(j.a, j.b, axis)
		if limitRow(&r, j.angle(), j.params[HingeParamLimitLower], j.params[HingeParamLimitUpper], j.params[HingeParamLimitBias], step) {
			r.soften(j.params[HingeParamLimitSoftness])
			r.damping = j.params[HingeParamLimitRelaxation]
			j.rows = append(j.rows, r)
		}
	}
	if j.flags[HingeFlagEnableMotor] {
		r := angularRow(j.a, j.b, axis)
		r.target = j.params[HingeParamMotorTargetVelocity]
		max := j.params[HingeParamMotorMaxImpulse]
		r.lo, r.hi = -max, max
		j.rows = append(j.rows, r)
	}
	return true
}

func (j *HingeJoint) Solve(float64) {
	j.point.solve(j.a, j.b)
	j.solveRows(j.rows)
}
