package physics

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/rid"
)

// Contact is one reported contact, in the reporting body's local frame.
type Contact struct {
	LocalPos              mgl64.Vec3
	LocalNormal           mgl64.Vec3
	Depth                 float64
	LocalShape            int
	ColliderPos           mgl64.Vec3
	ColliderShape         int
	ColliderInstanceID    uint64
	Collider              rid.RID
	ColliderVelocityAtPos mgl64.Vec3
}

type areaRef struct {
	area     *Area
	refCount int
}

// Body is a simulated rigid body.
type Body struct {
	CollisionObject

	mode BodyMode

	linearVelocity        mgl64.Vec3
	angularVelocity       mgl64.Vec3
	biasedLinearVelocity  mgl64.Vec3
	biasedAngularVelocity mgl64.Vec3

	mass         float64
	bounce       float64
	friction     float64
	linearDamp   float64
	angularDamp  float64
	gravityScale float64
	axisLock     AxisLock

	invMass          float64
	invInertia       mgl64.Vec3
	invInertiaTensor mgl64.Mat3

	gravity         mgl64.Vec3
	areaLinearDamp  float64
	areaAngularDamp float64

	stillTime     float64
	appliedForce  mgl64.Vec3
	appliedTorque mgl64.Vec3

	active               bool
	canSleep             bool
	continuousCD         bool
	omitForceIntegration bool
	firstIntegration     bool
	firstTimeKinematic   bool

	newTransform geom.Transform

	exceptions  []rid.RID
	constraints constraintMap
	areas       []areaRef

	contacts     []Contact
	contactCount int

	islandStep uint64

	fiCallback ForceIntegrationCallback
	fiUserdata any
	state      DirectBodyState
}

// NewBody returns a rigid body with unit mass, not in any space.
func NewBody() *Body {
	b := &Body{
		mode:         BodyModeRigid,
		mass:         1,
		invMass:      1,
		friction:     1,
		linearDamp:   -1,
		angularDamp:  -1,
		gravityScale: 1,
		active:       true,
		newTransform: geom.Identity(),
	}
	b.init(KindBody, b)
	b.state.body = b
	return b
}

func (b *Body) Mode() BodyMode { return b.mode }

func (b *Body) SetMode(mode BodyMode) {
	prev := b.mode
	b.mode = mode

	switch mode {
	case BodyModeStatic, BodyModeKinematic:
		b.setInvTransform(b.transform.AffineInverse())
		b.invMass = 0
		b.invInertia = mgl64.Vec3{}
		b.invInertiaTensor = mgl64.Mat3{}
		b.setStatic(mode == BodyModeStatic)
		b.setActive(mode == BodyModeKinematic && len(b.contacts) > 0)
		b.linearVelocity = mgl64.Vec3{}
		b.angularVelocity = mgl64.Vec3{}
		if mode == BodyModeKinematic && prev != mode {
			b.firstTimeKinematic = true
			b.newTransform = b.transform
		}
	case BodyModeRigid, BodyModeCharacter:
		b.invMass = 0
		if b.mass > 0 {
			b.invMass = 1 / b.mass
		}
		if mode == BodyModeCharacter {
			b.invInertia = mgl64.Vec3{}
			b.invInertiaTensor = mgl64.Mat3{}
		}
		b.setStatic(false)
	}
	b.queueInertiaUpdate()
}

func (b *Body) SetParam(p BodyParameter, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: body param %d = %v", ErrInvalidParameter, p, v)
	}
	switch p {
	case BodyParamBounce:
		b.bounce = v
	case BodyParamFriction:
		b.friction = v
	case BodyParamMass:
		if v <= 0 {
			return fmt.Errorf("%w: mass must be positive, got %v", ErrInvalidParameter, v)
		}
		b.mass = v
		b.queueInertiaUpdate()
	case BodyParamGravityScale:
		b.gravityScale = v
	case BodyParamLinearDamp:
		b.linearDamp = v
	case BodyParamAngularDamp:
		b.angularDamp = v
	default:
		return fmt.Errorf("%w: unknown body param %d", ErrInvalidParameter, p)
	}
	return nil
}

func (b *Body) Param(p BodyParameter) float64 {
	switch p {
	case BodyParamBounce:
		return b.bounce
	case BodyParamFriction:
		return b.friction
	case BodyParamMass:
		return b.mass
	case BodyParamGravityScale:
		return b.gravityScale
	case BodyParamLinearDamp:
		return b.linearDamp
	case BodyParamAngularDamp:
		return b.angularDamp
	}
	return 0
}

// SetState writes one of the body's dynamic states. The value's Go type must
// match the state: geom.Transform, mgl64.Vec3 or bool.
func (b *Body) SetState(s BodyState, v any) error {
	switch s {
	case BodyStateTransform:
		t, ok := v.(geom.Transform)
		if !ok {
			return wrongValue(s, v)
		}
		b.setStateTransform(t)
	case BodyStateLinearVelocity:
		lv, ok := v.(mgl64.Vec3)
		if !ok {
			return wrongValue(s, v)
		}
		b.linearVelocity = lv
		b.Wakeup()
	case BodyStateAngularVelocity:
		av, ok := v.(mgl64.Vec3)
		if !ok {
			return wrongValue(s, v)
		}
		b.angularVelocity = av
		b.Wakeup()
	case BodyStateSleeping:
		sleep, ok := v.(bool)
		if !ok {
			return wrongValue(s, v)
		}
		if b.mode == BodyModeStatic || b.mode == BodyModeKinematic {
			return nil
		}
		if sleep {
			b.linearVelocity = mgl64.Vec3{}
			b.angularVelocity = mgl64.Vec3{}
			b.setActive(false)
		} else {
			b.setActive(true)
		}
	case BodyStateCanSleep:
		can, ok := v.(bool)
		if !ok {
			return wrongValue(s, v)
		}
		b.canSleep = can
		if b.mode == BodyModeRigid && !b.active && !can {
			b.setActive(true)
		}
	default:
		return fmt.Errorf("%w: unknown body state %d", ErrInvalidParameter, s)
	}
	return nil
}

func wrongValue(s BodyState, v any) error {
	return fmt.Errorf("%w: body state %d got %T", ErrWrongValue, s, v)
}

func (b *Body) setStateTransform(t geom.Transform) {
	switch b.mode {
	case BodyModeKinematic:
		b.newTransform = t
		b.setActive(true)
		if b.firstTimeKinematic {
			b.setTransform(t, true)
			b.setInvTransform(t.AffineInverse())
			b.firstTimeKinematic = false
		}
	case BodyModeStatic:
		b.setTransform(t, true)
		b.setInvTransform(t.AffineInverse())
		b.WakeupNeighbours()
	default:
		if !isOrthonormal(t.Basis) {
			t = t.Orthonormalized()
		}
		b.newTransform = b.transform
		if b.transform == t {
			return
		}
		b.setTransform(t, true)
		b.setInvTransform(t.Inverse())
		b.updateTransformDependent()
	}
	b.Wakeup()
}

func isOrthonormal(m mgl64.Mat3) bool {
	const eps = 1e-12
	for i := 0; i < 3; i++ {
		if math.Abs(m.Col(i).LenSqr()-1) > eps {
			return false
		}
		for j := i + 1; j < 3; j++ {
			if math.Abs(m.Col(i).Dot(m.Col(j))) > eps {
				return false
			}
		}
	}
	return true
}

func (b *Body) State(s BodyState) any {
	switch s {
	case BodyStateTransform:
		return b.transform
	case BodyStateLinearVelocity:
		return b.linearVelocity
	case BodyStateAngularVelocity:
		return b.angularVelocity
	case BodyStateSleeping:
		return !b.active
	case BodyStateCanSleep:
		return b.canSleep
	}
	return nil
}

func (b *Body) LinearVelocity() mgl64.Vec3  { return b.linearVelocity }
func (b *Body) AngularVelocity() mgl64.Vec3 { return b.angularVelocity }

func (b *Body) SetLinearVelocity(v mgl64.Vec3)  { b.linearVelocity = v }
func (b *Body) SetAngularVelocity(v mgl64.Vec3) { b.angularVelocity = v }

func (b *Body) BiasedLinearVelocity() mgl64.Vec3  { return b.biasedLinearVelocity }
func (b *Body) BiasedAngularVelocity() mgl64.Vec3 { return b.biasedAngularVelocity }

func (b *Body) InvMass() float64             { return b.invMass }
func (b *Body) InvInertia() mgl64.Vec3       { return b.invInertia }
func (b *Body) InvInertiaTensor() mgl64.Mat3 { return b.invInertiaTensor }
func (b *Body) TotalGravity() mgl64.Vec3     { return b.gravity }
func (b *Body) TotalLinearDamp() float64     { return b.areaLinearDamp }
func (b *Body) TotalAngularDamp() float64    { return b.areaAngularDamp }
func (b *Body) IsActive() bool               { return b.active }
func (b *Body) CanSleep() bool               { return b.canSleep }
func (b *Body) StillTime() float64           { return b.stillTime }
func (b *Body) AppliedForce() mgl64.Vec3     { return b.appliedForce }
func (b *Body) AppliedTorque() mgl64.Vec3    { return b.appliedTorque }
func (b *Body) AxisLock() AxisLock           { return b.axisLock }
func (b *Body) IsContinuousCollisionDetectionEnabled() bool {
	return b.continuousCD
}
func (b *Body) IsOmittingForceIntegration() bool { return b.omitForceIntegration }

func (b *Body) SetAppliedForce(f mgl64.Vec3)  { b.appliedForce = f }
func (b *Body) SetAppliedTorque(t mgl64.Vec3) { b.appliedTorque = t }
func (b *Body) SetAxisLock(l AxisLock)        { b.axisLock = l }
func (b *Body) SetContinuousCollisionDetection(enable bool) {
	b.continuousCD = enable
}
func (b *Body) SetOmitForceIntegration(omit bool) { b.omitForceIntegration = omit }

func (b *Body) AddForce(force, pos mgl64.Vec3) {
	b.appliedForce = b.appliedForce.Add(force)
	b.appliedTorque = b.appliedTorque.Add(pos.Cross(force))
}

// ApplyImpulse applies j at pos, an offset from the body origin in world axes.
func (b *Body) ApplyImpulse(pos, j mgl64.Vec3) {
	b.linearVelocity = b.linearVelocity.Add(j.Mul(b.invMass))
	b.angularVelocity = b.angularVelocity.Add(b.invInertiaTensor.Mul3x1(pos.Cross(j)))
}

func (b *Body) ApplyBiasImpulse(pos, j mgl64.Vec3) {
	b.biasedLinearVelocity = b.biasedLinearVelocity.Add(j.Mul(b.invMass))
	b.biasedAngularVelocity = b.biasedAngularVelocity.Add(b.invInertiaTensor.Mul3x1(pos.Cross(j)))
}

func (b *Body) ApplyTorqueImpulse(j mgl64.Vec3) {
	b.angularVelocity = b.angularVelocity.Add(b.invInertiaTensor.Mul3x1(j))
}

// applyJacobian applies lambda along a constraint row's linear and angular parts.
func (b *Body) applyJacobian(lin, ang mgl64.Vec3, lambda float64) {
	b.linearVelocity = b.linearVelocity.Add(lin.Mul(b.invMass * lambda))
	b.angularVelocity = b.angularVelocity.Add(b.invInertiaTensor.Mul3x1(ang.Mul(lambda)))
}

// SetAxisVelocity replaces the velocity component along v's direction with v.
func (b *Body) SetAxisVelocity(v mgl64.Vec3) {
	axis := geom.SafeNormalize(v)
	lv := b.linearVelocity
	lv = lv.Sub(axis.Mul(axis.Dot(lv))).Add(v)
	b.linearVelocity = lv
	b.Wakeup()
}

func (b *Body) VelocityInLocalPoint(r mgl64.Vec3) mgl64.Vec3 {
	return b.linearVelocity.Add(b.angularVelocity.Cross(r))
}

// ComputeImpulseDenominator is the effective inverse mass seen by an impulse
// along normal applied at world point pos.
func (b *Body) ComputeImpulseDenominator(pos, normal mgl64.Vec3) float64 {
	r0 := pos.Sub(b.transform.Origin)
	c0 := r0.Cross(normal)
	vec := b.invInertiaTensor.Mul3x1(c0).Cross(r0)
	return b.invMass + normal.Dot(vec)
}

func (b *Body) ComputeAngularImpulseDenominator(axis mgl64.Vec3) float64 {
	return axis.Dot(b.invInertiaTensor.Mul3x1(axis))
}

func (b *Body) setActive(active bool) {
	if b.active == active {
		return
	}
	b.active = active
	if !active {
		if b.space != nil {
			b.space.activeList.remove(b)
		}
		return
	}
	if b.mode == BodyModeStatic {
		return
	}
	b.stillTime = 0
	if b.space != nil {
		b.space.activeList.add(b)
	}
}

// Wakeup activates a dynamic body that is in a space.
func (b *Body) Wakeup() {
	if b.space == nil || b.mode == BodyModeStatic || b.mode == BodyModeKinematic {
		return
	}
	b.setActive(true)
}

// WakeupNeighbours activates every rigid body sharing a constraint with b.
func (b *Body) WakeupNeighbours() {
	for _, e := range b.constraints.entries {
		for i, other := range e.c.Bodies() {
			if i == e.slot || other.mode != BodyModeRigid {
				continue
			}
			if !other.active {
				other.setActive(true)
			}
		}
	}
}

func (b *Body) AddException(r rid.RID) {
	i, found := slices.BinarySearch(b.exceptions, r)
	if !found {
		b.exceptions = slices.Insert(b.exceptions, i, r)
	}
}

func (b *Body) RemoveException(r rid.RID) {
	if i, found := slices.BinarySearch(b.exceptions, r); found {
		b.exceptions = slices.Delete(b.exceptions, i, i+1)
	}
}

func (b *Body) HasException(r rid.RID) bool {
	_, found := slices.BinarySearch(b.exceptions, r)
	return found
}

func (b *Body) Exceptions() []rid.RID { return slices.Clone(b.exceptions) }

func (b *Body) addConstraint(c Constraint, slot int) { b.constraints.add(c, slot) }
func (b *Body) removeConstraint(c Constraint)        { b.constraints.remove(c) }

// ClearConstraints forgets every constraint without notifying them.
func (b *Body) ClearConstraints() { b.constraints.clear() }

func (b *Body) ConstraintCount() int { return b.constraints.len() }

func (b *Body) addArea(a *Area) {
	for i := range b.areas {
		if b.areas[i].area == a {
			b.areas[i].refCount++
			return
		}
	}
	i := len(b.areas)
	for i > 0 && b.areas[i-1].area.priority > a.priority {
		i--
	}
	b.areas = slices.Insert(b.areas, i, areaRef{area: a, refCount: 1})
}

func (b *Body) removeArea(a *Area) {
	for i := range b.areas {
		if b.areas[i].area != a {
			continue
		}
		b.areas[i].refCount--
		if b.areas[i].refCount < 1 {
			b.areas = slices.Delete(b.areas, i, i+1)
		}
		return
	}
}

// AreaCount is the number of distinct areas currently affecting b.
func (b *Body) AreaCount() int { return len(b.areas) }

func (b *Body) SetMaxContactsReported(n int) {
	if n < 0 {
		n = 0
	}
	b.contacts = make([]Contact, n)
	b.contactCount = 0
	if b.mode == BodyModeKinematic && n > 0 {
		b.setActive(true)
	}
}

func (b *Body) MaxContactsReported() int { return len(b.contacts) }
func (b *Body) CanReportContacts() bool  { return len(b.contacts) > 0 }
func (b *Body) ContactCount() int        { return b.contactCount }

func (b *Body) Contact(i int) (Contact, bool) {
	if i < 0 || i >= b.contactCount {
		return Contact{}, false
	}
	return b.contacts[i], true
}

// addContact keeps the deepest contacts once the report buffer is full.
func (b *Body) addContact(c Contact) {
	max := len(b.contacts)
	if max == 0 {
		return
	}
	idx := -1
	if b.contactCount < max {
		idx = b.contactCount
		b.contactCount++
	} else {
		least := 0
		for i := 1; i < max; i++ {
			if b.contacts[i].Depth < b.contacts[least].Depth {
				least = i
			}
		}
		if b.contacts[least].Depth < c.Depth {
			idx = least
		}
	}
	if idx >= 0 {
		b.contacts[idx] = c
	}
}

func (b *Body) SetForceIntegrationCallback(cb ForceIntegrationCallback, userdata any) {
	b.fiCallback = cb
	b.fiUserdata = userdata
}

func (b *Body) HasForceIntegrationCallback() bool { return b.fiCallback != nil }

// SetSpace moves the body into space, or out of any space when nil.
// SetSpace moves b to space, or out of any space when nil. Joints that would
// link b to a body in another space are detached first.
func (b *Body) SetSpace(space *Space) {
	if space != b.space {
		b.detachJointsOutside(space)
	}
	if b.space != nil {
		b.space.inertiaUpdateList.remove(b)
		b.space.activeList.remove(b)
		b.space.stateQueryList.remove(b)
	}
	b.setSpace(space)
	if b.space != nil {
		b.queueInertiaUpdate()
		if b.active {
			b.space.activeList.add(b)
		}
	}
	b.firstIntegration = true
}

func (b *Body) detachJointsOutside(space *Space) {
	for _, e := range b.constraints.snapshot() {
		j, ok := e.c.(Joint)
		if !ok {
			continue
		}
		other := j.BodyA()
		if other == b {
			other = j.BodyB()
		}
		if other.space != space {
			j.Detach()
		}
	}
}

func (b *Body) queueInertiaUpdate() {
	if b.space != nil {
		b.space.inertiaUpdateList.add(b)
	}
}

func (b *Body) shapesChanged() { b.queueInertiaUpdate() }

func (b *Body) shapeIndexRemoved(index int) {
	for _, e := range b.constraints.snapshot() {
		e.c.ShiftShapeIndices(&b.CollisionObject, index)
	}
}

func (b *Body) updateTransformDependent() {
	b.invInertiaTensor = geom.ScaledTensor(b.transform.Basis, b.invInertia)
}
