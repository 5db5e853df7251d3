package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

type PinParam int

const (
	PinParamBias PinParam = iota
	PinParamDamping
	PinParamImpulseClamp
)

// PinJoint holds a point of A on a point of B.
type PinJoint struct {
	jointBase
	localA, localB mgl64.Vec3

	bias, damping, impulseClamp float64

	point pointBlock
}

// NewPinJoint pins localA of a to localB of b; both are body-local points.
func NewPinJoint(a *Body, localA mgl64.Vec3, b *Body, localB mgl64.Vec3) (*PinJoint, error) {
	j := &PinJoint{localA: localA, localB: localB, bias: 0.3, damping: 1}
	if err := j.attach(j, a, b); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *PinJoint) Type() JointType { return JointPin }
func (j *PinJoint) Detach()         { j.detach(j) }

func (j *PinJoint) LocalA() mgl64.Vec3     { return j.localA }
func (j *PinJoint) LocalB() mgl64.Vec3     { return j.localB }
func (j *PinJoint) SetLocalA(p mgl64.Vec3) { j.localA = p }
func (j *PinJoint) SetLocalB(p mgl64.Vec3) { j.localB = p }

func (j *PinJoint) SetParam(p PinParam, v float64) error {
	if err := checkFinite(v); err != nil {
		return err
	}
	switch p {
	case PinParamBias:
		j.bias = v
	case PinParamDamping:
		j.damping = v
	case PinParamImpulseClamp:
		j.impulseClamp = v
	default:
		return fmt.Errorf("%w: pin param %d", ErrInvalidParameter, p)
	}
	return nil
}

func (j *PinJoint) Param(p PinParam) float64 {
	switch p {
	case PinParamBias:
		return j.bias
	case PinParamDamping:
		return j.damping
	case PinParamImpulseClamp:
		return j.impulseClamp
	}
	return 0
}

func (j *PinJoint) Setup(step float64) bool {
	if j.detached {
		return false
	}
	rA := j.a.transform.BasisXform(j.localA)
	rB := j.b.transform.BasisXform(j.localB)
	d := j.a.transform.Origin.Add(rA).Sub(j.b.transform.Origin.Add(rB))

	j.point.damping = j.damping
	j.point.clamp = j.impulseClamp
	j.point.setup(j.a, j.b, rA, rB, d, j.bias, step)
	return true
}

func (j *PinJoint) Solve(float64) { j.point.solve(j.a, j.b) }
