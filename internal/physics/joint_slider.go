package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
)

type SliderParam int

const (
	SliderLinearLimitUpper SliderParam = iota
	SliderLinearLimitLower
	SliderLinearLimitSoftness
	SliderLinearLimitRestitution
	SliderLinearLimitDamping
	SliderLinearMotionSoftness
	SliderLinearMotionRestitution
	SliderLinearMotionDamping
	SliderLinearOrthogonalSoftness
	SliderLinearOrthogonalRestitution
	SliderLinearOrthogonalDamping

	SliderAngularLimitUpper
	SliderAngularLimitLower
	SliderAngularLimitSoftness
	SliderAngularLimitRestitution
	SliderAngularLimitDamping
	SliderAngularMotionSoftness
	SliderAngularMotionRestitution
	SliderAngularMotionDamping
	SliderAngularOrthogonalSoftness
	SliderAngularOrthogonalRestitution
	SliderAngularOrthogonalDamping

	SliderParamMax
)

// SliderJoint lets B translate along, and optionally twist about, frame X
// of A. Restitution parameters act as the error reduction factor of their
// rows, softness scales the row mass and damping scales the velocity error.
// A lower limit above the upper one leaves that motion free.
type SliderJoint struct {
	frameJoint
	params [SliderParamMax]float64
	rows   []row
}

func NewSliderJoint(a *Body, frameA geom.Transform, b *Body, frameB geom.Transform) (*SliderJoint, error) {
	j := &SliderJoint{}
	j.frameA, j.frameB = frameA, frameB
	j.params = [SliderParamMax]float64{
		SliderLinearLimitUpper:             -1,
		SliderLinearLimitLower:             1,
		SliderLinearLimitSoftness:          1,
		SliderLinearLimitRestitution:       0.7,
		SliderLinearLimitDamping:           1,
		SliderLinearMotionSoftness:         1,
		SliderLinearMotionRestitution:      0.7,
		SliderLinearMotionDamping:          0,
		SliderLinearOrthogonalSoftness:     1,
		SliderLinearOrthogonalRestitution:  0.7,
		SliderLinearOrthogonalDamping:      1,
		SliderAngularLimitUpper:            0,
		SliderAngularLimitLower:            0,
		SliderAngularLimitSoftness:         1,
		SliderAngularLimitRestitution:      0.7,
		SliderAngularLimitDamping:          1,
		SliderAngularMotionSoftness:        1,
		SliderAngularMotionRestitution:     0.7,
		SliderAngularMotionDamping:         0,
		SliderAngularOrthogonalSoftness:    1,
		SliderAngularOrthogonalRestitution: 0.7,
		SliderAngularOrthogonalDamping:     1,
	}
	if err := j.attach(j, a, b); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *SliderJoint) Type() JointType { return JointSlider }
func (j *SliderJoint) Detach()         { j.detach(j) }

func (j *SliderJoint) SetParam(p SliderParam, v float64) error {
	if p < 0 || p >= SliderParamMax {
		return fmt.Errorf("%w: slider param %d", ErrInvalidParameter, p)
	}
	if err := checkFinite(v); err != nil {
		return err
	}
	j.params[p] = v
	return nil
}

func (j *SliderJoint) Param(p SliderParam) float64 {
	if p < 0 || p >= SliderParamMax {
		return 0
	}
	return j.params[p]
}

// Offset is the position of B's frame along A's slide axis.
func (j *SliderJoint) Offset() float64 {
	j.computeFrames()
	return j.separation().Mul(-1).Dot(j.basisA.Col(0))
}

func (j *SliderJoint) Setup(step float64) bool {
	if j.detached {
		return false
	}
	j.computeFrames()
	p := &j.params
	axis := j.basisA.Col(0)
	d := j.separation()
	pB := j.b.transform.Origin.Add(j.rB)
	rA := pB.Sub(j.a.transform.Origin)

	j.rows = j.rows[:0]
	for _, n := range [2]mgl64.Vec3{j.basisA.Col(1), j.basisA.Col(2)} {
		r := pointRow(j.a, j.b, rA, j.rB, n, d.Dot(n), p[SliderLinearOrthogonalRestitution], step)
		r.soften(p[SliderLinearOrthogonalSoftness])
		r.damping = p[SliderLinearOrthogonalDamping]
		j.rows = append(j.rows, r)
	}

	slide := pointRow(j.a, j.b, rA, j.rB, axis.Mul(-1), 0, 0, step)
	if limitRow(&slide, -d.Dot(axis), p[SliderLinearLimitLower], p[SliderLinearLimitUpper], p[SliderLinearLimitRestitution], step) {
		slide.soften(p[SliderLinearLimitSoftness])
		slide.damping = p[SliderLinearLimitDamping]
		j.rows = append(j.rows, slide)
	} else if p[SliderLinearMotionDamping] > 0 {
		slide.soften(p[SliderLinearMotionSoftness])
		slide.damping = p[SliderLinearMotionDamping]
		j.rows = append(j.rows, slide)
	}

	e := j.relativeRotation()
	for _, n := range [2]mgl64.Vec3{j.basisA.Col(1), j.basisA.Col(2)} {
		r := angularRow(j.a, j.b, n)
		r.target = -p[SliderAngularOrthogonalRestitution] / step * e.Dot(n)
		r.soften(p[SliderAngularOrthogonalSoftness])
		r.damping = p[SliderAngularOrthogonalDamping]
		j.rows = append(j.rows, r)
	}

	twist := angularRow(j.a, j.b, axis)
	if limitRow(&twist, e.Dot(axis), p[SliderAngularLimitLower], p[SliderAngularLimitUpper], p[SliderAngularLimitRestitution], step) {
		twist.soften(p[SliderAngularLimitSoftness])
		twist.damping = p[SliderAngularLimitDamping]
		j.rows = append(j.rows, twist)
	} else if p[SliderAngularMotionDamping] > 0 {
		twist.soften(p[SliderAngularMotionSoftness])
		twist.damping = p[SliderAngularMotionDamping]
		j.rows = append(j.rows, twist)
	}
	return true
}

func (j *SliderJoint) Solve(float64) { j.solveRows(j.rows) }
