package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/rid"
)

// ForceIntegrationCallback receives a body's direct state once per step,
// from flush queries.
type ForceIntegrationCallback interface {
	IntegrateForces(state *DirectBodyState, userdata any)
}

// ForceIntegrationFunc adapts a function to ForceIntegrationCallback.
type ForceIntegrationFunc func(state *DirectBodyState, userdata any)

func (f ForceIntegrationFunc) IntegrateForces(state *DirectBodyState, userdata any) {
	f(state, userdata)
}

// Expirer may be implemented by callbacks and monitors whose receiver can go
// away. An expired receiver is dropped instead of invoked.
type Expirer interface {
	Expired() bool
}

// DirectBodyState is the view of a body handed to force-integration
// callbacks. Writes land in the body and take effect on the next step.
type DirectBodyState struct {
	body *Body
}

func (s *DirectBodyState) Body() rid.RID              { return s.body.self }
func (s *DirectBodyState) TotalGravity() mgl64.Vec3   { return s.body.gravity }
func (s *DirectBodyState) TotalLinearDamp() float64   { return s.body.areaLinearDamp }
func (s *DirectBodyState) TotalAngularDamp() float64  { return s.body.areaAngularDamp }
func (s *DirectBodyState) InverseMass() float64       { return s.body.invMass }
func (s *DirectBodyState) InverseInertia() mgl64.Vec3 { return s.body.invInertia }
func (s *DirectBodyState) InverseInertiaTensor() mgl64.Mat3 {
	return s.body.invInertiaTensor
}

func (s *DirectBodyState) LinearVelocity() mgl64.Vec3      { return s.body.linearVelocity }
func (s *DirectBodyState) SetLinearVelocity(v mgl64.Vec3)  { s.body.SetLinearVelocity(v) }
func (s *DirectBodyState) AngularVelocity() mgl64.Vec3     { return s.body.angularVelocity }
func (s *DirectBodyState) SetAngularVelocity(v mgl64.Vec3) { s.body.SetAngularVelocity(v) }

func (s *DirectBodyState) Transform() geom.Transform { return s.body.transform }

func (s *DirectBodyState) SetTransform(t geom.Transform) {
	_ = s.body.SetState(BodyStateTransform, t)
}

func (s *DirectBodyState) AddForce(force, pos mgl64.Vec3)       { s.body.AddForce(force, pos) }
func (s *DirectBodyState) ApplyImpulse(pos, impulse mgl64.Vec3) { s.body.ApplyImpulse(pos, impulse) }

func (s *DirectBodyState) SetSleepState(sleep bool) {
	_ = s.body.SetState(BodyStateSleeping, sleep)
}

func (s *DirectBodyState) IsSleeping() bool { return !s.body.active }

func (s *DirectBodyState) ContactCount() int { return s.body.contactCount }

// Contact returns reported contact i; ok is false when i is out of range.
func (s *DirectBodyState) Contact(i int) (Contact, bool) { return s.body.Contact(i) }

// Step is the delta of the last step taken by the body's space.
func (s *DirectBodyState) Step() float64 {
	if s.body.space == nil {
		return 0
	}
	return s.body.space.lastStep
}

// SpaceState returns the direct state of the body's space, subject to the
// same locking rules as the server accessor.
func (s *DirectBodyState) SpaceState() (*DirectSpaceState, error) {
	if s.body.space == nil {
		return nil, ErrNoSpace
	}
	return s.body.space.DirectState()
}

// DirectState returns the body's direct state. The pointer stays valid for
// the life of the body.
func (b *Body) DirectState() *DirectBodyState { return &b.state }
