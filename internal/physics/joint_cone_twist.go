package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/rigidsim/internal/geom"
)

type ConeTwistParam int

const (
	ConeTwistSwingSpan ConeTwistParam = iota
	ConeTwistTwistSpan
	ConeTwistBias
	ConeTwistSoftness
	ConeTwistRelaxation
	ConeTwistParamMax
)

// ConeTwistJoint pins the frame origins and keeps B's frame X inside a cone
// of half angle SwingSpan around A's frame X, with the twist about that axis
// limited to TwistSpan either way.
type ConeTwistJoint struct {
	frameJoint
	params [ConeTwistParamMax]float64
	rows   []row
}

func NewConeTwistJoint(a *Body, frameA geom.Transform, b *Body, frameB geom.Transform) (*ConeTwistJoint, error) {
	j := &ConeTwistJoint{}
	j.frameA, j.frameB = frameA, frameB
	j.params = [ConeTwistParamMax]float64{
		ConeTwistSwingSpan:  math.Pi / 4,
		ConeTwistTwistSpan:  math.Pi,
		ConeTwistBias:       0.3,
		ConeTwistSoftness:   0.8,
		ConeTwistRelaxation: 1,
	}
	if err := j.attach(j, a, b); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *ConeTwistJoint) Type() JointType { return JointConeTwist }
func (j *ConeTwistJoint) Detach()         { j.detach(j) }

func (j *ConeTwistJoint) SetParam(p ConeTwistParam, v float64) error {
	if p < 0 || p >= ConeTwistParamMax {
		return fmt.Errorf("%w: cone twist param %d", ErrInvalidParameter, p)
	}
	if err := checkFinite(v); err != nil {
		return err
	}
	j.params[p] = v
	return nil
}

func (j *ConeTwistJoint) Param(p ConeTwistParam) float64 {
	if p < 0 || p >= ConeTwistParamMax {
		return 0
	}
	return j.params[p]
}

// angles splits the relative rotation into the swing of the twist axis and
// the remaining twist about it.
func (j *ConeTwistJoint) angles() (swing, twist float64) {
	axA := j.basisA.Col(0)
	axB := j.basisB.Col(0)
	swing = math.Acos(math.Max(-1, math.Min(1, axA.Dot(axB))))

	yB := j.basisB.Col(1)
	if k := axB.Cross(axA); k.Len() > geom.Epsilon {
		yB = geom.Rotation(k, swing).Mul3x1(yB)
	}
	twist = math.Atan2(yB.Dot(j.basisA.Col(2)), yB.Dot(j.basisA.Col(1)))
	return swing, twist
}

func (j *ConeTwistJoint) Setup(step float64) bool {
	if j.detached {
		return false
	}
	j.computeFrames()
	p := &j.params
	bias := p[ConeTwistBias]

	j.setupPoint(bias, step)
	j.rows = j.rows[:0]

	swing, twist := j.angles()
	axA := j.basisA.Col(0)
	if k := axA.Cross(j.basisB.Col(0)); k.Len() > geom.Epsilon {
		r := angularRow(j.a, j.b, k.Normalize())
		span := p[ConeTwistSwingSpan]
		if limitRow(&r, swing, -span, span, bias, step) {
			r.soften(p[ConeTwistSoftness])
			r.damping = p[ConeTwistRelaxation]
			j.rows = append(j.rows, r)
		}
	}

	r := angularRow(j.a, j.b, axA)
	span := p[ConeTwistTwistSpan]
	if limitRow(&r, twist, -span, span, bias, step) {
		r.soften(p[ConeTwistSoftness])
		r.damping = p[ConeTwistRelaxation]
		j.rows = append(j.rows, r)
	}
	return true
}

func (j *ConeTwistJoint) Solve(float64) {
	j.point.solve(j.a, j.b)
	j.solveRows(j.rows)
}
