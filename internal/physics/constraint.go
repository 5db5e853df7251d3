package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/rid"
)

// Constraint is anything the stepper sets up and solves: contact pairs, area
// overlap pairs and joints.
type Constraint interface {
	// Bodies lists the bodies the constraint acts on; slot i is Bodies()[i].
	Bodies() []*Body

	// Setup prepares the constraint for this step. Returning false drops it
	// from the solve.
	Setup(step float64) bool
	Solve(step float64)

	// ShiftShapeIndices is called after shape index was removed from obj.
	ShiftShapeIndices(obj *CollisionObject, index int)

	Priority() int
	SetPriority(p int)

	islandStep() uint64
	setIslandStep(s uint64)
}

type constraintBase struct {
	bodies   []*Body
	priority int
	step     uint64
	self     rid.RID
}

func (c *constraintBase) Bodies() []*Body                         { return c.bodies }
func (c *constraintBase) Priority() int                           { return c.priority }
func (c *constraintBase) SetPriority(p int)                       { c.priority = p }
func (c *constraintBase) islandStep() uint64                      { return c.step }
func (c *constraintBase) setIslandStep(s uint64)                  { c.step = s }
func (c *constraintBase) Self() rid.RID                           { return c.self }
func (c *constraintBase) SetSelf(r rid.RID)                       { c.self = r }
func (c *constraintBase) ShiftShapeIndices(*CollisionObject, int) {}

// row is one scalar velocity constraint J·v = target between bodies A and B,
// solved by clamped, accumulated sequential impulses.
type row struct {
	linA, angA mgl64.Vec3
	linB, angB mgl64.Vec3

	effMass float64
	target  float64
	lo, hi  float64
	acc     float64

	// damping scales the current velocity error; 1 is a full correction.
	damping float64
	// clamp limits each single impulse when positive.
	clamp float64
}

// pointRow constrains the relative velocity of two attached points along n.
// err is the current separation (pA-pB)·n.
func pointRow(a, b *Body, rA, rB, n mgl64.Vec3, err, erp, step float64) row {
	r := row{
		linA: n, angA: rA.Cross(n),
		linB: n.Mul(-1), angB: rB.Cross(n).Mul(-1),
		lo: math.Inf(-1), hi: math.Inf(1),
		damping: 1,
	}
	r.target = -erp / step * err
	r.prepare(a, b)
	return r
}

// angularRow constrains the relative angular velocity (wB-wA)·axis.
func angularRow(a, b *Body, axis mgl64.Vec3) row {
	r := row{
		angA: axis.Mul(-1), angB: axis,
		lo: math.Inf(-1), hi: math.Inf(1),
		damping: 1,
	}
	r.prepare(a, b)
	return r
}

func (r *row) prepare(a, b *Body) {
	k := a.invMass*r.linA.LenSqr() + r.angA.Dot(a.invInertiaTensor.Mul3x1(r.angA)) +
		b.invMass*r.linB.LenSqr() + r.angB.Dot(b.invInertiaTensor.Mul3x1(r.angB))
	r.effMass = 0
	if k > 1e-12 {
		r.effMass = 1 / k
	}
	r.acc = 0
}

func (r *row) velocity(a, b *Body) float64 {
	return r.linA.Dot(a.linearVelocity) + r.angA.Dot(a.angularVelocity) +
		r.linB.Dot(b.linearVelocity) + r.angB.Dot(b.angularVelocity)
}

func (r *row) solve(a, b *Body) {
	if r.effMass == 0 {
		return
	}
	lambda := r.effMass * (r.target - r.damping*r.velocity(a, b))
	if r.clamp > 0 {
		lambda = math.Max(-r.clamp, math.Min(r.clamp, lambda))
	}
	old := r.acc
	r.acc = math.Max(r.lo, math.Min(r.hi, old+lambda))
	lambda = r.acc - old
	if lambda == 0 {
		return
	}
	a.applyJacobian(r.linA, r.angA, lambda)
	b.applyJacobian(r.linB, r.angB, lambda)
}

// limitRow turns an angle or offset pos against [lower, upper] into an
// inequality row along the given Jacobian. It reports false when the value
// is inside the limits.
func limitRow(r *row, pos, lower, upper, erp, step float64) bool {
	switch {
	case lower > upper:
		return false
	case lower == upper:
		r.target = -erp / step * (pos - lower)
		r.lo, r.hi = math.Inf(-1), math.Inf(1)
	case pos <= lower:
		r.target = -erp / step * (pos - lower)
		r.lo, r.hi = 0, math.Inf(1)
	case pos >= upper:
		r.target = -erp / step * (pos - upper)
		r.lo, r.hi = math.Inf(-1), 0
	default:
		return false
	}
	return true
}

// pointBlock holds two attached points together with one coupled 3x3 solve.
// Its accumulated impulse is carried into the next step's setup.
type pointBlock struct {
	rA, rB mgl64.Vec3
	invK   mgl64.Mat3
	target mgl64.Vec3
	acc    mgl64.Vec3

	damping float64
	clamp   float64
}

// skew is the matrix of v× so that skew(v)·w == v.Cross(w).
func skew(v mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3{0, v[2], -v[1], -v[2], 0, v[0], v[1], -v[0], 0}
}

// setup builds the block for arms rA, rB and separation d = pA - pB, then
// re-applies the impulse accumulated in the previous step.
func (p *pointBlock) setup(a, b *Body, rA, rB, d mgl64.Vec3, erp, step float64) {
	p.rA, p.rB = rA, rB
	sA, sB := skew(rA), skew(rB)
	k := mgl64.Ident3().Mul(a.invMass + b.invMass).
		Sub(sA.Mul3(a.invInertiaTensor).Mul3(sA)).
		Sub(sB.Mul3(b.invInertiaTensor).Mul3(sB))
	p.invK = mgl64.Mat3{}
	if math.Abs(k.Det()) > 1e-12 {
		p.invK = k.Inv()
	} else {
		p.acc = mgl64.Vec3{}
	}
	p.target = d.Mul(-erp / step)
	p.apply(a, b, p.acc)
}

// velocity is the relative velocity of the attached points.
func (p *pointBlock) velocity(a, b *Body) mgl64.Vec3 {
	vA := a.linearVelocity.Add(a.angularVelocity.Cross(p.rA))
	vB := b.linearVelocity.Add(b.angularVelocity.Cross(p.rB))
	return vA.Sub(vB)
}

func (p *pointBlock) apply(a, b *Body, j mgl64.Vec3) {
	if j == (mgl64.Vec3{}) {
		return
	}
	a.ApplyImpulse(p.rA, j)
	b.ApplyImpulse(p.rB, j.Mul(-1))
}

func (p *pointBlock) solve(a, b *Body) {
	j := p.invK.Mul3x1(p.target.Sub(p.velocity(a, b).Mul(p.damping)))
	if p.clamp > 0 {
		for i := range j {
			j[i] = math.Max(-p.clamp, math.Min(p.clamp, j[i]))
		}
	}
	p.acc = p.acc.Add(j)
	p.apply(a, b, j)
}
