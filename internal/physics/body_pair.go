package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/geom"
)

const (
	maxPairContacts = 4
	minVelocity     = 0.0001
	defaultBias     = 0.3
)

type pairContact struct {
	localA, localB mgl64.Vec3
	normal         mgl64.Vec3
	rA, rB         mgl64.Vec3

	accNormal  float64
	accTangent mgl64.Vec3
	accBias    float64

	massNormal float64
	bias       float64
	bounce     float64
	depth      float64
	active     bool
}

// BodyPair is the contact constraint between one shape of each of two bodies.
type BodyPair struct {
	constraintBase

	a, b           *Body
	shapeA, shapeB int
	space          *Space

	offsetB  mgl64.Vec3
	contacts [maxPairContacts]pairContact
	count    int
	collided bool
}

func newBodyPair(a *Body, shapeA int, b *Body, shapeB int) *BodyPair {
	p := &BodyPair{a: a, b: b, shapeA: shapeA, shapeB: shapeB, space: a.space}
	p.bodies = []*Body{a, b}
	a.addConstraint(p, 0)
	b.addConstraint(p, 1)
	return p
}

func (p *BodyPair) destroy() {
	p.a.removeConstraint(p)
	p.b.removeConstraint(p)
}

// ContactCount is the number of cached contact points.
func (p *BodyPair) ContactCount() int { return p.count }

func (p *BodyPair) ShiftShapeIndices(obj *CollisionObject, index int) {
	if obj == &p.a.CollisionObject && p.shapeA > index {
		p.shapeA--
	}
	if obj == &p.b.CollisionObject && p.shapeB > index {
		p.shapeB--
	}
}

func (p *BodyPair) globalPoints(c *pairContact) (mgl64.Vec3, mgl64.Vec3) {
	ga := p.a.transform.BasisXform(c.localA)
	gb := p.b.transform.BasisXform(c.localB).Add(p.offsetB)
	return ga, gb
}

// addContact caches a narrow-phase contact, reusing accumulated impulses of
// a nearby cached contact.
func (p *BodyPair) addContact(pointA, pointB mgl64.Vec3) {
	localA := p.a.transform.BasisXformInv(pointA.Sub(p.a.transform.Origin))
	localB := p.b.transform.BasisXformInv(pointB.Sub(p.b.transform.Origin))

	c := pairContact{
		localA: localA,
		localB: localB,
		normal: geom.SafeNormalize(pointA.Sub(pointB)),
	}

	idx := p.count
	r := p.space.contactRecycleRadius
	for i := 0; i < p.count; i++ {
		old := &p.contacts[i]
		if old.localA.Sub(localA).LenSqr() < r*r && old.localB.Sub(localB).LenSqr() < r*r {
			c.accNormal = old.accNormal
			c.accBias = old.accBias
			c.accTangent = old.accTangent
			idx = i
			break
		}
	}

	if idx == maxPairContacts {
		least, minDepth := -1, math.Inf(1)
		for i := 0; i <= p.count; i++ {
			cc := &c
			if i < p.count {
				cc = &p.contacts[i]
			}
			ga, gb := p.globalPoints(cc)
			if d := ga.Sub(gb).Dot(cc.normal); d < minDepth {
				least, minDepth = i, d
			}
		}
		if least >= 0 && least < p.count {
			p.contacts[least] = c
		}
		return
	}

	p.contacts[idx] = c
	if idx == p.count {
		p.count++
	}
}

// validateContacts drops cached contacts that separated or slid apart.
func (p *BodyPair) validateContacts() {
	maxSep := p.space.contactMaxSeparation
	for i := 0; i < p.count; i++ {
		c := &p.contacts[i]
		ga, gb := p.globalPoints(c)
		depth := ga.Sub(gb).Dot(c.normal)
		if depth < -maxSep || gb.Add(c.normal.Mul(depth)).Sub(ga).Len() > maxSep {
			if i+1 < p.count {
				p.contacts[i], p.contacts[p.count-1] = p.contacts[p.count-1], p.contacts[i]
			}
			i--
			p.count--
		}
	}
}

func (p *BodyPair) Setup(step float64) bool {
	a, b := p.a, p.b
	if !a.TestCollisionMask(&b.CollisionObject) || a.HasException(b.self) || b.HasException(a.self) ||
		(a.mode <= BodyModeKinematic && b.mode <= BodyModeKinematic && !a.CanReportContacts() && !b.CanReportContacts()) {
		p.collided = false
		return false
	}
	if p.shapeA >= a.ShapeCount() || p.shapeB >= b.ShapeCount() {
		p.collided = false
		return false
	}

	p.offsetB = b.transform.Origin.Sub(a.transform.Origin)
	p.validateContacts()

	shA, shB := a.shapes[p.shapeA].shape, b.shapes[p.shapeB].shape
	xfA := a.transform.Mul(a.shapes[p.shapeA].xform)
	xfB := b.transform.Mul(b.shapes[p.shapeB].xform)

	p.collided = collision.Solve(shA, xfA, shB, xfB, p.addContact)
	if !p.collided {
		if a.continuousCD && a.mode > BodyModeKinematic && b.mode <= BodyModeKinematic {
			p.testCCD(step, a, p.shapeA, xfA, b, p.shapeB, xfB)
		}
		if b.continuousCD && b.mode > BodyModeKinematic && a.mode <= BodyModeKinematic {
			p.testCCD(step, b, p.shapeB, xfB, a, p.shapeA, xfA)
		}
		return false
	}

	bias := defaultBias
	if ba, bb := shA.CustomSolverBias(), shB.CustomSolverBias(); ba != 0 || bb != 0 {
		switch {
		case ba == 0:
			bias = bb
		case bb == 0:
			bias = ba
		default:
			bias = (ba + bb) / 2
		}
	}
	maxPen := p.space.contactMaxAllowedPenetration
	invDt := 1 / step
	origin := a.transform.Origin

	for i := 0; i < p.count; i++ {
		c := &p.contacts[i]
		c.active = false
		ga, gb := p.globalPoints(c)
		depth := c.normal.Dot(ga.Sub(gb))
		if depth <= 0 {
			continue
		}

		p.space.addDebugContact(ga.Add(origin))
		p.space.addDebugContact(gb.Add(origin))

		c.rA = ga
		c.rB = gb.Sub(p.offsetB)

		if a.CanReportContacts() {
			a.addContact(Contact{
				LocalPos: ga, LocalNormal: c.normal.Mul(-1), Depth: depth, LocalShape: p.shapeA,
				ColliderPos: gb, ColliderShape: p.shapeB, ColliderInstanceID: b.instanceID, Collider: b.self,
				ColliderVelocityAtPos: a.angularVelocity.Cross(c.rA).Add(b.linearVelocity),
			})
		}
		if b.CanReportContacts() {
			b.addContact(Contact{
				LocalPos: gb, LocalNormal: c.normal, Depth: depth, LocalShape: p.shapeB,
				ColliderPos: ga, ColliderShape: p.shapeA, ColliderInstanceID: a.instanceID, Collider: a.self,
				ColliderVelocityAtPos: b.angularVelocity.Cross(c.rB).Add(a.linearVelocity),
			})
		}

		if a.IsShapeTrigger(p.shapeA) || b.IsShapeTrigger(p.shapeB) ||
			(a.mode <= BodyModeKinematic && b.mode <= BodyModeKinematic) {
			p.collided = false
			continue
		}
		c.active = true

		inA := a.invInertiaTensor.Mul3x1(c.rA.Cross(c.normal))
		inB := b.invInertiaTensor.Mul3x1(c.rB.Cross(c.normal))
		k := a.invMass + b.invMass + c.normal.Dot(inA.Cross(c.rA)) + c.normal.Dot(inB.Cross(c.rB))
		c.massNormal = 0
		if k > 0 {
			c.massNormal = 1 / k
		}
		c.bias = -bias * invDt * math.Min(0, -depth+maxPen)
		c.depth = depth

		j := c.normal.Mul(c.accNormal).Add(c.accTangent)
		a.ApplyImpulse(c.rA, j.Mul(-1))
		b.ApplyImpulse(c.rB, j)
		c.accBias = 0

		c.bounce = math.Max(a.bounce, b.bounce)
		if c.bounce != 0 {
			dv := b.VelocityInLocalPoint(c.rB).Sub(a.VelocityInLocalPoint(c.rA))
			c.bounce *= dv.Dot(c.normal)
		}
	}
	return true
}

func (p *BodyPair) Solve(step float64) {
	if !p.collided {
		return
	}
	a, b := p.a, p.b
	for i := 0; i < p.count; i++ {
		c := &p.contacts[i]
		if !c.active {
			continue
		}
		c.active = false

		dbv := b.biasedLinearVelocity.Add(b.biasedAngularVelocity.Cross(c.rB)).
			Sub(a.biasedLinearVelocity).Sub(a.biasedAngularVelocity.Cross(c.rA))
		vbn := dbv.Dot(c.normal)
		if math.Abs(-vbn+c.bias) > minVelocity {
			jbn := (-vbn + c.bias) * c.massNormal
			old := c.accBias
			c.accBias = math.Max(old+jbn, 0)
			jb := c.normal.Mul(c.accBias - old)
			a.ApplyBiasImpulse(c.rA, jb.Mul(-1))
			b.ApplyBiasImpulse(c.rB, jb)
			c.active = true
		}

		dv := b.VelocityInLocalPoint(c.rB).Sub(a.VelocityInLocalPoint(c.rA))
		if vn := dv.Dot(c.normal); math.Abs(vn) > minVelocity {
			jn := -(c.bounce + vn) * c.massNormal
			old := c.accNormal
			c.accNormal = math.Max(old+jn, 0)
			j := c.normal.Mul(c.accNormal - old)
			a.ApplyImpulse(c.rA, j.Mul(-1))
			b.ApplyImpulse(c.rB, j)
			c.active = true
		}

		friction := a.friction * b.friction
		dtv := b.VelocityInLocalPoint(c.rB).Sub(a.VelocityInLocalPoint(c.rA))
		tv := dtv.Sub(c.normal.Mul(c.normal.Dot(dtv)))
		tvl := tv.Len()
		if tvl <= minVelocity {
			continue
		}
		tv = tv.Mul(1 / tvl)
		t1 := a.invInertiaTensor.Mul3x1(c.rA.Cross(tv))
		t2 := b.invInertiaTensor.Mul3x1(c.rB.Cross(tv))
		den := a.invMass + b.invMass + tv.Dot(t1.Cross(c.rA).Add(t2.Cross(c.rB)))
		if den <= 0 {
			continue
		}
		jt := tv.Mul(-tvl / den)
		old := c.accTangent
		c.accTangent = c.accTangent.Add(jt)
		maxT := c.accNormal * friction
		if l := c.accTangent.Len(); l > geom.Epsilon && l > maxT {
			c.accTangent = c.accTangent.Mul(maxT / l)
		}
		jt = c.accTangent.Sub(old)
		a.ApplyImpulse(c.rA, jt.Mul(-1))
		b.ApplyImpulse(c.rB, jt)
		c.active = true
	}
}

// testCCD casts fast's leading point along its motion against other and
// shortens the velocity so the next step lands just short of the hit.
func (p *BodyPair) testCCD(step float64, fast *Body, fastShape int, xfFast geom.Transform, other *Body, otherShape int, xfOther geom.Transform) bool {
	motion := fast.linearVelocity.Mul(step)
	mlen := motion.Len()
	if mlen < geom.Epsilon {
		return false
	}
	dir := motion.Mul(1 / mlen)

	box := fast.shapes[fastShape].shape.AABB().Xform(xfFast)
	extent := math.Abs(dir[0])*box.Size[0] + math.Abs(dir[1])*box.Size[1] + math.Abs(dir[2])*box.Size[2]
	if mlen <= extent*0.3 {
		return false
	}

	support := box.Center().Add(dir.Mul(extent / 2))
	from := support.Sub(dir.Mul(mlen * 0.1))
	to := support.Add(motion)
	hit, ok := collision.IntersectSegment(other.shapes[otherShape].shape, xfOther, from, to)
	if !ok {
		return false
	}
	newLen := hit.Sub(support).Len() - extent*0.01
	fast.linearVelocity = dir.Mul(newLen / step)
	return true
}
