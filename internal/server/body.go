package server

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/rid"
)

// BodyCreate returns a body in the given mode, optionally asleep.
func (s *Server) BodyCreate(mode physics.BodyMode, initSleeping bool) (rid.RID, error) {
	if mode < physics.BodyModeStatic || mode > physics.BodyModeCharacter {
		return rid.Invalid, s.fail("body_create", rid.Invalid, ErrInvalidParameter)
	}
	b := physics.NewBody()
	if mode != physics.BodyModeRigid {
		b.SetMode(mode)
	}
	if initSleeping {
		_ = b.SetState(physics.BodyStateSleeping, true)
	}
	r := s.bodies.Make(b)
	b.SetSelf(r)
	return r, nil
}

// BodySetSpace moves the body into the space sp, or out of any space when
// sp is rid.Invalid.
func (s *Server) BodySetSpace(r, sp rid.RID) error {
	b, err := s.body("body_set_space", r)
	if err != nil {
		return err
	}
	space, err := s.spaceOf("body_set_space", sp)
	if err != nil {
		return err
	}
	if b.Space() == space {
		return nil
	}
	if err := s.checkUnlocked("body_set_space", r, b.Space(), space); err != nil {
		return err
	}
	b.SetSpace(space)
	return nil
}

func (s *Server) BodySpace(r rid.RID) rid.RID {
	b, err := s.body("body_get_space", r)
	if err != nil || b.Space() == nil {
		return rid.Invalid
	}
	return b.Space().Self()
}

func (s *Server) BodySetMode(r rid.RID, mode physics.BodyMode) error {
	b, err := s.body("body_set_mode", r)
	if err != nil {
		return err
	}
	if mode < physics.BodyModeStatic || mode > physics.BodyModeCharacter {
		return s.fail("body_set_mode", r, ErrInvalidParameter)
	}
	b.SetMode(mode)
	return nil
}

func (s *Server) BodyMode(r rid.RID) physics.BodyMode {
	b, err := s.body("body_get_mode", r)
	if err != nil {
		return physics.BodyModeStatic
	}
	return b.Mode()
}

func (s *Server) BodyAddShape(r, shapeRID rid.RID, xf geom.Transform) error {
	return s.addShape("body_add_shape", r, physics.KindBody, shapeRID, xf)
}

func (s *Server) BodySetShape(r rid.RID, index int, shapeRID rid.RID) error {
	return s.setShape("body_set_shape", r, physics.KindBody, index, shapeRID)
}

func (s *Server) BodySetShapeTransform(r rid.RID, index int, xf geom.Transform) error {
	return s.setShapeTransform("body_set_shape_transform", r, physics.KindBody, index, xf)
}

func (s *Server) BodyShapeCount(r rid.RID) int {
	return s.shapeCount("body_get_shape_count", r, physics.KindBody)
}

func (s *Server) BodyShape(r rid.RID, index int) rid.RID {
	return s.shapeAt("body_get_shape", r, physics.KindBody, index)
}

func (s *Server) BodyShapeTransform(r rid.RID, index int) geom.Transform {
	return s.shapeTransformAt("body_get_shape_transform", r, physics.KindBody, index)
}

func (s *Server) BodyRemoveShape(r rid.RID, index int) error {
	return s.removeShape("body_remove_shape", r, physics.KindBody, index)
}

func (s *Server) BodyClearShapes(r rid.RID) error {
	return s.clearShapes("body_clear_shapes", r, physics.KindBody)
}

// BodySetShapeAsTrigger makes shape index report contacts without a
// collision response.
func (s *Server) BodySetShapeAsTrigger(r rid.RID, index int, trigger bool) error {
	return s.setShapeTrigger("body_set_shape_as_trigger", r, physics.KindBody, index, trigger)
}

func (s *Server) BodyIsShapeTrigger(r rid.RID, index int) bool {
	b, err := s.body("body_is_shape_set_as_trigger", r)
	if err != nil {
		return false
	}
	return b.IsShapeTrigger(index)
}

func (s *Server) BodyAttachObjectInstanceID(r rid.RID, id uint64) error {
	return s.attachInstanceID("body_attach_object_instance_id", r, physics.KindBody, id)
}

func (s *Server) BodyObjectInstanceID(r rid.RID) uint64 {
	return s.instanceID("body_get_object_instance_id", r, physics.KindBody)
}

func (s *Server) BodySetEnableContinuousCollisionDetection(r rid.RID, enable bool) error {
	b, err := s.body("body_set_enable_continuous_collision_detection", r)
	if err != nil {
		return err
	}
	b.SetContinuousCollisionDetection(enable)
	return nil
}

func (s *Server) BodyIsContinuousCollisionDetectionEnabled(r rid.RID) bool {
	b, err := s.body("body_is_continuous_collision_detection_enabled", r)
	if err != nil {
		return false
	}
	return b.IsContinuousCollisionDetectionEnabled()
}

func (s *Server) BodySetLayerMask(r rid.RID, mask uint32) error {
	return s.setLayerMask("body_set_collision_layer", r, physics.KindBody, mask)
}

func (s *Server) BodyLayerMask(r rid.RID) uint32 {
	b, err := s.body("body_get_collision_layer", r)
	if err != nil {
		return 0
	}
	return b.LayerMask()
}

func (s *Server) BodySetCollisionMask(r rid.RID, mask uint32) error {
	return s.setCollisionMask("body_set_collision_mask", r, physics.KindBody, mask)
}

func (s *Server) BodyCollisionMask(r rid.RID) uint32 {
	b, err := s.body("body_get_collision_mask", r)
	if err != nil {
		return 0
	}
	return b.CollisionMask()
}

func (s *Server) BodySetParam(r rid.RID, p physics.BodyParameter, v float64) error {
	b, err := s.body("body_set_param", r)
	if err != nil {
		return err
	}
	if err := b.SetParam(p, v); err != nil {
		return s.fail("body_set_param", r, err)
	}
	return nil
}

func (s *Server) BodyParam(r rid.RID, p physics.BodyParameter) float64 {
	b, err := s.body("body_get_param", r)
	if err != nil {
		return 0
	}
	if p < 0 || p >= physics.BodyParamMax {
		s.logf("body_get_param", r, ErrInvalidParameter)
		return 0
	}
	return b.Param(p)
}

// BodySetState writes a dynamic state. The value is a geom.Transform for
// the transform, an mgl64.Vec3 for velocities and a bool for the sleep
// flags.
func (s *Server) BodySetState(r rid.RID, st physics.BodyState, v any) error {
	b, err := s.body("body_set_state", r)
	if err != nil {
		return err
	}
	if err := b.SetState(st, v); err != nil {
		return s.fail("body_set_state", r, err)
	}
	return nil
}

func (s *Server) BodyState(r rid.RID, st physics.BodyState) any {
	b, err := s.body("body_get_state", r)
	if err != nil {
		return nil
	}
	v := b.State(st)
	if v == nil {
		s.logf("body_get_state", r, ErrInvalidParameter)
	}
	return v
}

func (s *Server) BodySetAppliedForce(r rid.RID, f mgl64.Vec3) error {
	b, err := s.body("body_set_applied_force", r)
	if err != nil {
		return err
	}
	b.SetAppliedForce(f)
	b.Wakeup()
	return nil
}

func (s *Server) BodyAppliedForce(r rid.RID) mgl64.Vec3 {
	b, err := s.body("body_get_applied_force", r)
	if err != nil {
		return mgl64.Vec3{}
	}
	return b.AppliedForce()
}

func (s *Server) BodySetAppliedTorque(r rid.RID, t mgl64.Vec3) error {
	b, err := s.body("body_set_applied_torque", r)
	if err != nil {
		return err
	}
	b.SetAppliedTorque(t)
	b.Wakeup()
	return nil
}

func (s *Server) BodyAppliedTorque(r rid.RID) mgl64.Vec3 {
	b, err := s.body("body_get_applied_torque", r)
	if err != nil {
		return mgl64.Vec3{}
	}
	return b.AppliedTorque()
}

// BodyAddForce accumulates force applied at pos, relative to the body
// origin, for the next step.
func (s *Server) BodyAddForce(r rid.RID, force, pos mgl64.Vec3) error {
	b, err := s.body("body_add_force", r)
	if err != nil {
		return err
	}
	b.AddForce(force, pos)
	b.Wakeup()
	return nil
}

func (s *Server) BodyApplyImpulse(r rid.RID, pos, impulse mgl64.Vec3) error {
	b, err := s.body("body_apply_impulse", r)
	if err != nil {
		return err
	}
	b.ApplyImpulse(pos, impulse)
	b.Wakeup()
	return nil
}

func (s *Server) BodyApplyTorqueImpulse(r rid.RID, impulse mgl64.Vec3) error {
	b, err := s.body("body_apply_torque_impulse", r)
	if err != nil {
		return err
	}
	b.ApplyTorqueImpulse(impulse)
	b.Wakeup()
	return nil
}

// BodySetAxisVelocity replaces the linear velocity component along v with v.
func (s *Server) BodySetAxisVelocity(r rid.RID, v mgl64.Vec3) error {
	b, err := s.body("body_set_axis_velocity", r)
	if err != nil {
		return err
	}
	b.SetAxisVelocity(v)
	return nil
}

func (s *Server) BodySetAxisLock(r rid.RID, lock physics.AxisLock) error {
	b, err := s.body("body_set_axis_lock", r)
	if err != nil {
		return err
	}
	if lock < physics.AxisLockDisabled || lock > physics.AxisLockZ {
		return s.fail("body_set_axis_lock", r, ErrInvalidParameter)
	}
	b.SetAxisLock(lock)
	b.Wakeup()
	return nil
}

func (s *Server) BodyAxisLock(r rid.RID) physics.AxisLock {
	b, err := s.body("body_get_axis_lock", r)
	if err != nil {
		return physics.AxisLockDisabled
	}
	return b.AxisLock()
}

// BodyAddCollisionException stops contacts between r and other. other may
// be any collision object handle.
func (s *Server) BodyAddCollisionException(r, other rid.RID) error {
	b, err := s.body("body_add_collision_exception", r)
	if err != nil {
		return err
	}
	b.AddException(other)
	b.Wakeup()
	return nil
}

func (s *Server) BodyRemoveCollisionException(r, other rid.RID) error {
	b, err := s.body("body_remove_collision_exception", r)
	if err != nil {
		return err
	}
	b.RemoveException(other)
	b.Wakeup()
	return nil
}

func (s *Server) BodyCollisionExceptions(r rid.RID) []rid.RID {
	b, err := s.body("body_get_collision_exceptions", r)
	if err != nil {
		return nil
	}
	return b.Exceptions()
}

func (s *Server) BodySetMaxContactsReported(r rid.RID, n int) error {
	b, err := s.body("body_set_max_contacts_reported", r)
	if err != nil {
		return err
	}
	if n < 0 {
		return s.fail("body_set_max_contacts_reported", r, ErrInvalidParameter)
	}
	b.SetMaxContactsReported(n)
	return nil
}

func (s *Server) BodyMaxContactsReported(r rid.RID) int {
	b, err := s.body("body_get_max_contacts_reported", r)
	if err != nil {
		return 0
	}
	return b.MaxContactsReported()
}

// BodyContacts returns the contacts reported in the last step.
func (s *Server) BodyContacts(r rid.RID) []physics.Contact {
	b, err := s.body("body_get_contacts", r)
	if err != nil {
		return nil
	}
	out := make([]physics.Contact, 0, b.ContactCount())
	for i := 0; i < b.ContactCount(); i++ {
		c, _ := b.Contact(i)
		out = append(out, c)
	}
	return out
}

func (s *Server) BodySetOmitForceIntegration(r rid.RID, omit bool) error {
	b, err := s.body("body_set_omit_force_integration", r)
	if err != nil {
		return err
	}
	b.SetOmitForceIntegration(omit)
	return nil
}

func (s *Server) BodyIsOmittingForceIntegration(r rid.RID) bool {
	b, err := s.body("body_is_omitting_force_integration", r)
	if err != nil {
		return false
	}
	return b.IsOmittingForceIntegration()
}

// BodySetForceIntegrationCallback installs cb, run from FlushQueries after
// every step the body was active in. A nil cb removes it. A callback that
// implements physics.Expirer is dropped once it reports expired.
func (s *Server) BodySetForceIntegrationCallback(r rid.RID, cb physics.ForceIntegrationCallback, userdata any) error {
	b, err := s.body("body_set_force_integration_callback", r)
	if err != nil {
		return err
	}
	b.SetForceIntegrationCallback(cb, userdata)
	return nil
}

func (s *Server) BodySetRayPickable(r rid.RID, enable bool) error {
	return s.setRayPickable("body_set_ray_pickable", r, physics.KindBody, enable)
}

func (s *Server) BodyIsRayPickable(r rid.RID) bool {
	b, err := s.body("body_is_ray_pickable", r)
	if err != nil {
		return false
	}
	return b.IsRayPickable()
}

// BodyDirectState returns the body's direct state under the same rules as
// SpaceDirectState.
func (s *Server) BodyDirectState(r rid.RID) (*physics.DirectBodyState, error) {
	b, err := s.body("body_get_direct_state", r)
	if err != nil {
		return nil, err
	}
	if !s.doingSync || (b.Space() != nil && b.Space().IsLocked()) {
		return nil, s.fail("body_get_direct_state", r, ErrSpaceLocked)
	}
	return b.DirectState(), nil
}
