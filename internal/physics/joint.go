package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/rid"
)

type JointType int

const (
	JointPin JointType = iota
	JointHinge
	JointSlider
	JointConeTwist
	Joint6DOF
)

var jointTypeNames = []string{"pin", "hinge", "slider", "cone_twist", "6dof"}

func (t JointType) String() string { return enumName(jointTypeNames, int(t), "JointType") }

func ParseJointType(s string) (JointType, error) {
	i, err := parseEnum(jointTypeNames, s)
	return JointType(i), err
}

// Joint is a constraint created through the joint API. Only point
// constraints keep their impulse between steps; every other row restarts
// from zero in setup.
type Joint interface {
	Constraint
	Type() JointType
	Self() rid.RID
	SetSelf(r rid.RID)
	BodyA() *Body
	BodyB() *Body

	// Detach unregisters the joint from its bodies. A detached joint never
	// sets up again.
	Detach()
	Detached() bool
}

type jointBase struct {
	constraintBase
	a, b     *Body
	detached bool
}

// attach registers self with both bodies; it fails without touching either
// body when they are the same.
func (j *jointBase) attach(self Joint, a, b *Body) error {
	if a == nil || b == nil {
		return fmt.Errorf("%w: joint needs two bodies", ErrInvalidParameter)
	}
	if a == b {
		return ErrSameBody
	}
	j.a, j.b = a, b
	j.bodies = []*Body{a, b}
	a.addConstraint(self, 0)
	b.addConstraint(self, 1)
	return nil
}

func (j *jointBase) BodyA() *Body { return j.a }
func (j *jointBase) BodyB() *Body { return j.b }

func (j *jointBase) Detached() bool { return j.detached }

func (j *jointBase) detach(self Joint) {
	if j.detached {
		return
	}
	j.detached = true
	j.a.removeConstraint(self)
	j.b.removeConstraint(self)
}

// frameJoint is the shared state of joints defined by a local frame on each
// body.
type frameJoint struct {
	jointBase
	frameA, frameB geom.Transform

	// world-space frames, relative to each body origin, computed in setup
	basisA, basisB mgl64.Mat3
	rA, rB         mgl64.Vec3

	point pointBlock
}

func (j *frameJoint) computeFrames() {
	j.basisA = j.a.transform.Basis.Mul3(j.frameA.Basis)
	j.basisB = j.b.transform.Basis.Mul3(j.frameB.Basis)
	j.rA = j.a.transform.BasisXform(j.frameA.Origin)
	j.rB = j.b.transform.BasisXform(j.frameB.Origin)
}

// separation is pA - pB in world space.
func (j *frameJoint) separation() mgl64.Vec3 {
	pA := j.a.transform.Origin.Add(j.rA)
	pB := j.b.transform.Origin.Add(j.rB)
	return pA.Sub(pB)
}

// setupPoint pins the two frame origins together.
func (j *frameJoint) setupPoint(erp, step float64) {
	j.point.damping = 1
	j.point.setup(j.a, j.b, j.rA, j.rB, j.separation(), erp, step)
}

// relativeRotation is the world-space axis-angle vector taking frame A onto
// frame B; for small angles its rate is wB - wA.
func (j *frameJoint) relativeRotation() mgl64.Vec3 {
	axis, angle := geom.AxisAngle(j.basisB.Mul3(j.basisA.Transpose()))
	return axis.Mul(angle)
}

func (j *frameJoint) solveRows(rows []row) {
	for i := range rows {
		rows[i].solve(j.a, j.b)
	}
}

// soften scales the effective mass, trading stiffness for stability.
func (r *row) soften(softness float64) {
	if softness >= 0 {
		r.effMass *= softness
	}
}

// alignmentRows keeps axisB parallel to axisA with two angular rows.
func alignmentRows(rows []row, a, b *Body, axisA, axisB mgl64.Vec3, erp, step float64) []row {
	p, q := geom.Orthogonal(axisA)
	e := axisA.Cross(axisB)
	for _, ax := range [2]mgl64.Vec3{p, q} {
		r := angularRow(a, b, ax)
		r.target = -erp / step * e.Dot(ax)
		rows = append(rows, r)
	}
	return rows
}

func checkFinite(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidParameter, v)
	}
	return nil
}
