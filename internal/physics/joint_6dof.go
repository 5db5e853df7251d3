package physics

import (
	"fmt"

	"github.com/san-kum/rigidsim/internal/geom"
)

type G6DOFParam int

const (
	G6DOFLinearLowerLimit G6DOFParam = iota
	G6DOFLinearUpperLimit
	G6DOFLinearLimitSoftness
	G6DOFLinearRestitution
	G6DOFLinearDamping
	G6DOFAngularLowerLimit
	G6DOFAngularUpperLimit
	G6DOFAngularLimitSoftness
	G6DOFAngularDamping
	G6DOFAngularRestitution
	G6DOFAngularForceLimit
	G6DOFAngularERP
	G6DOFAngularMotorTargetVelocity
	G6DOFAngularMotorForceLimit
	G6DOFParamMax
)

type G6DOFFlag int

const (
	G6DOFFlagEnableLinearLimit G6DOFFlag = iota
	G6DOFFlagEnableAngularLimit
	G6DOFFlagEnableMotor
	G6DOFFlagMax
)

type g6dofAxis struct {
	params [G6DOFParamMax]float64
	flags  [G6DOFFlagMax]bool
}

// Generic6DOFJoint limits each linear and angular axis of B's frame relative
// to A's frame independently. Angles are measured as the components of the
// relative rotation vector on A's frame axes. Angular restitution is kept
// for callers but does not feed the solve.
type Generic6DOFJoint struct {
	frameJoint
	axes [3]g6dofAxis
	rows []row
}

func NewGeneric6DOFJoint(a *Body, frameA geom.Transform, b *Body, frameB geom.Transform) (*Generic6DOFJoint, error) {
	j := &Generic6DOFJoint{}
	j.frameA, j.frameB = frameA, frameB
	for i := range j.axes {
		ax := &j.axes[i]
		ax.params[G6DOFLinearLimitSoftness] = 0.7
		ax.params[G6DOFLinearRestitution] = 0.5
		ax.params[G6DOFLinearDamping] = 1
		ax.params[G6DOFAngularLimitSoftness] = 0.5
		ax.params[G6DOFAngularDamping] = 1
		ax.params[G6DOFAngularERP] = 0.5
		ax.flags[G6DOFFlagEnableLinearLimit] = true
		ax.flags[G6DOFFlagEnableAngularLimit] = true
	}
	if err := j.attach(j, a, b); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Generic6DOFJoint) Type() JointType { return Joint6DOF }
func (j *Generic6DOFJoint) Detach()         { j.detach(j) }

func (j *Generic6DOFJoint) SetParam(axis int, p G6DOFParam, v float64) error {
	if axis < 0 || axis > 2 {
		return fmt.Errorf("%w: axis %d", ErrInvalidParameter, axis)
	}
	if p < 0 || p >= G6DOFParamMax {
		return fmt.Errorf("%w: 6dof param %d", ErrInvalidParameter, p)
	}
	if err := checkFinite(v); err != nil {
		return err
	}
	j.axes[axis].params[p] = v
	return nil
}

func (j *Generic6DOFJoint) Param(axis int, p G6DOFParam) float64 {
	if axis < 0 || axis > 2 || p < 0 || p >= G6DOFParamMax {
		return 0
	}
	return j.axes[axis].params[p]
}

func (j *Generic6DOFJoint) SetFlag(axis int, f G6DOFFlag, enable bool) error {
	if axis < 0 || axis > 2 {
		return fmt.Errorf("%w: axis %d", ErrInvalidParameter, axis)
	}
	if f < 0 || f >= G6DOFFlagMax {
		return fmt.Errorf("%w: 6dof flag %d", ErrInvalidParameter, f)
	}
	j.axes[axis].flags[f] = enable
	return nil
}

func (j *Generic6DOFJoint) Flag(axis int, f G6DOFFlag) bool {
	if axis < 0 || axis > 2 || f < 0 || f >= G6DOFFlagMax {
		return false
	}
	return j.axes[axis].flags[f]
}

func (j *Generic6DOFJoint) Setup(step float64) bool {
	if j.detached {
		return false
	}
	j.computeFrames()
	d := j.separation()
	pB := j.b.transform.Origin.Add(j.rB)
	rA := pB.Sub(j.a.transform.Origin)
	e := j.relativeRotation()

	j.rows = j.rows[:0]
	for i := range j.axes {
		ax := &j.axes[i]
		p := &ax.params
		n := j.basisA.Col(i)

		if ax.flags[G6DOFFlagEnableLinearLimit] {
			r := pointRow(j.a, j.b, rA, j.rB, n.Mul(-1), 0, 0, step)
			if limitRow(&r, -d.Dot(n), p[G6DOFLinearLowerLimit], p[G6DOFLinearUpperLimit], p[G6DOFLinearRestitution], step) {
				r.soften(p[G6DOFLinearLimitSoftness])
				r.damping = p[G6DOFLinearDamping]
				j.rows = append(j.rows, r)
			}
		}

		if ax.flags[G6DOFFlagEnableAngularLimit] {
			r := angularRow(j.a, j.b, n)
			if limitRow(&r, e.Dot(n), p[G6DOFAngularLowerLimit], p[G6DOFAngularUpperLimit], p[G6DOFAngularERP], step) {
				r.soften(p[G6DOFAngularLimitSoftness])
				r.damping = p[G6DOFAngularDamping]
				if f := p[G6DOFAngularForceLimit]; f > 0 {
					r.clamp = f * step
				}
				j.rows = append(j.rows, r)
			}
		}

		if ax.flags[G6DOFFlagEnableMotor] {
			r := angularRow(j.a, j.b, n)
			r.target = p[G6DOFAngularMotorTargetVelocity]
			max := p[G6DOFAngularMotorForceLimit] * step
			r.lo, r.hi = -max, max
			j.rows = append(j.rows, r)
		}
	}
	return true
}

func (j *Generic6DOFJoint) Solve(float64) { j.solveRows(j.rows) }
