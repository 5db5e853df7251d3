package server

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/rid"
)

// jointBodies resolves the two bodies of a new joint. An invalid b means the
// static global body of a's space.
func (s *Server) jointBodies(op string, a, b rid.RID) (*physics.Body, *physics.Body, error) {
	ba, err := s.body(op, a)
	if err != nil {
		return nil, nil, err
	}
	if b == rid.Invalid {
		if ba.Space() == nil {
			return nil, nil, s.fail(op, a, ErrNoSpace)
		}
		return ba, ba.Space().StaticGlobalBody(), nil
	}
	bb, err := s.body(op, b)
	if err != nil {
		return nil, nil, err
	}
	return ba, bb, nil
}

func (s *Server) makeJoint(op string, a rid.RID, j physics.Joint, err error) (rid.RID, error) {
	if err != nil {
		return rid.Invalid, s.fail(op, a, err)
	}
	r := s.joints.Make(j)
	j.SetSelf(r)
	return r, nil
}

// JointCreatePin pins localA on body a to localB on body b. Anchors are in
// each body's local space.
func (s *Server) JointCreatePin(a rid.RID, localA mgl64.Vec3, b rid.RID, localB mgl64.Vec3) (rid.RID, error) {
	const op = "joint_create_pin"
	ba, bb, err := s.jointBodies(op, a, b)
	if err != nil {
		return rid.Invalid, err
	}
	j, err := physics.NewPinJoint(ba, localA, bb, localB)
	return s.makeJoint(op, a, j, err)
}

func (s *Server) JointCreateHinge(a rid.RID, frameA geom.Transform, b rid.RID, frameB geom.Transform) (rid.RID, error) {
	const op = "joint_create_hinge"
	ba, bb, err := s.jointBodies(op, a, b)
	if err != nil {
		return rid.Invalid, err
	}
	j, err := physics.NewHingeJoint(ba, frameA, bb, frameB)
	return s.makeJoint(op, a, j, err)
}

// JointCreateHingeSimple builds the hinge frames from a pivot and an axis on
// each body.
func (s *Server) JointCreateHingeSimple(a rid.RID, pivotA, axisA mgl64.Vec3, b rid.RID, pivotB, axisB mgl64.Vec3) (rid.RID, error) {
	const op = "joint_create_hinge_simple"
	ba, bb, err := s.jointBodies(op, a, b)
	if err != nil {
		return rid.Invalid, err
	}
	j, err := physics.NewSimpleHingeJoint(ba, pivotA, axisA, bb, pivotB, axisB)
	return s.makeJoint(op, a, j, err)
}

func (s *Server) JointCreateSlider(a rid.RID, frameA geom.Transform, b rid.RID, frameB geom.Transform) (rid.RID, error) {
	const op = "joint_create_slider"
	ba, bb, err := s.jointBodies(op, a, b)
	if err != nil {
		return rid.Invalid, err
	}
	j, err := physics.NewSliderJoint(ba, frameA, bb, frameB)
	return s.makeJoint(op, a, j, err)
}

func (s *Server) JointCreateConeTwist(a rid.RID, frameA geom.Transform, b rid.RID, frameB geom.Transform) (rid.RID, error) {
	const op = "joint_create_cone_twist"
	ba, bb, err := s.jointBodies(op, a, b)
	if err != nil {
		return rid.Invalid, err
	}
	j, err := physics.NewConeTwistJoint(ba, frameA, bb, frameB)
	return s.makeJoint(op, a, j, err)
}

func (s *Server) JointCreateGeneric6DOF(a rid.RID, frameA geom.Transform, b rid.RID, frameB geom.Transform) (rid.RID, error) {
	const op = "joint_create_generic_6dof"
	ba, bb, err := s.jointBodies(op, a, b)
	if err != nil {
		return rid.Invalid, err
	}
	j, err := physics.NewGeneric6DOFJoint(ba, frameA, bb, frameB)
	return s.makeJoint(op, a, j, err)
}

// JointType reports the kind of joint r. It returns -1 for a bad handle.
func (s *Server) JointType(r rid.RID) physics.JointType {
	j, err := s.joint("joint_get_type", r)
	if err != nil {
		return -1
	}
	return j.Type()
}

func (s *Server) JointSetSolverPriority(r rid.RID, priority int) error {
	j, err := s.joint("joint_set_solver_priority", r)
	if err != nil {
		return err
	}
	j.SetPriority(priority)
	return nil
}

func (s *Server) JointSolverPriority(r rid.RID) int {
	j, err := s.joint("joint_get_solver_priority", r)
	if err != nil {
		return 0
	}
	return j.Priority()
}

// jointAs resolves r to a joint of concrete type T.
func jointAs[T physics.Joint](s *Server, op string, r rid.RID) (T, error) {
	var zero T
	j, err := s.joint(op, r)
	if err != nil {
		return zero, err
	}
	t, ok := j.(T)
	if !ok {
		return zero, s.fail(op, r, ErrWrongType)
	}
	return t, nil
}

func (s *Server) PinJointSetParam(r rid.RID, p physics.PinParam, v float64) error {
	j, err := jointAs[*physics.PinJoint](s, "pin_joint_set_param", r)
	if err != nil {
		return err
	}
	if err := j.SetParam(p, v); err != nil {
		return s.fail("pin_joint_set_param", r, err)
	}
	return nil
}

func (s *Server) PinJointParam(r rid.RID, p physics.PinParam) float64 {
	j, err := jointAs[*physics.PinJoint](s, "pin_joint_get_param", r)
	if err != nil {
		return 0
	}
	return j.Param(p)
}

func (s *Server) PinJointSetLocalA(r rid.RID, p mgl64.Vec3) error {
	j, err := jointAs[*physics.PinJoint](s, "pin_joint_set_local_a", r)
	if err != nil {
		return err
	}
	j.SetLocalA(p)
	return nil
}

func (s *Server) PinJointLocalA(r rid.RID) mgl64.Vec3 {
	j, err := jointAs[*physics.PinJoint](s, "pin_joint_get_local_a", r)
	if err != nil {
		return mgl64.Vec3{}
	}
	return j.LocalA()
}

func (s *Server) PinJointSetLocalB(r rid.RID, p mgl64.Vec3) error {
	j, err := jointAs[*physics.PinJoint](s, "pin_joint_set_local_b", r)
	if err != nil {
		return err
	}
	j.SetLocalB(p)
	return nil
}

func (s *Server) PinJointLocalB(r rid.RID) mgl64.Vec3 {
	j, err := jointAs[*physics.PinJoint](s, "pin_joint_get_local_b", r)
	if err != nil {
		return mgl64.Vec3{}
	}
	return j.LocalB()
}

func (s *Server) HingeJointSetParam(r rid.RID, p physics.HingeParam, v float64) error {
	j, err := jointAs[*physics.HingeJoint](s, "hinge_joint_set_param", r)
	if err != nil {
		return err
	}
	if err := j.SetParam(p, v); err != nil {
		return s.fail("hinge_joint_set_param", r, err)
	}
	return nil
}

func (s *Server) HingeJointParam(r rid.RID, p physics.HingeParam) float64 {
	j, err := jointAs[*physics.HingeJoint](s, "hinge_joint_get_param", r)
	if err != nil {
		return 0
	}
	return j.Param(p)
}

func (s *Server) HingeJointSetFlag(r rid.RID, f physics.HingeFlag, enable bool) error {
	j, err := jointAs[*physics.HingeJoint](s, "hinge_joint_set_flag", r)
	if err != nil {
		return err
	}
	if err := j.SetFlag(f, enable); err != nil {
		return s.fail("hinge_joint_set_flag", r, err)
	}
	return nil
}

func (s *Server) HingeJointFlag(r rid.RID, f physics.HingeFlag) bool {
	j, err := jointAs[*physics.HingeJoint](s, "hinge_joint_get_flag", r)
	if err != nil {
		return false
	}
	return j.Flag(f)
}

func (s *Server) SliderJointSetParam(r rid.RID, p physics.SliderParam, v float64) error {
	j, err := jointAs[*physics.SliderJoint](s, "slider_joint_set_param", r)
	if err != nil {
		return err
	}
	if err := j.SetParam(p, v); err != nil {
		return s.fail("slider_joint_set_param", r, err)
	}
	return nil
}

func (s *Server) SliderJointParam(r rid.RID, p physics.SliderParam) float64 {
	j, err := jointAs[*physics.SliderJoint](s, "slider_joint_get_param", r)
	if err != nil {
		return 0
	}
	return j.Param(p)
}

func (s *Server) ConeTwistJointSetParam(r rid.RID, p physics.ConeTwistParam, v float64) error {
	j, err := jointAs[*physics.ConeTwistJoint](s, "cone_twist_joint_set_param", r)
	if err != nil {
		return err
	}
	if err := j.SetParam(p, v); err != nil {
		return s.fail("cone_twist_joint_set_param", r, err)
	}
	return nil
}

func (s *Server) ConeTwistJointParam(r rid.RID, p physics.ConeTwistParam) float64 {
	j, err := jointAs[*physics.ConeTwistJoint](s, "cone_twist_joint_get_param", r)
	if err != nil {
		return 0
	}
	return j.Param(p)
}

// Generic6DOFJointSetParam sets p on axis, 0 through 2 for X, Y and Z.
func (s *Server) Generic6DOFJointSetParam(r rid.RID, axis int, p physics.G6DOFParam, v float64) error {
	j, err := jointAs[*physics.Generic6DOFJoint](s, "generic_6dof_joint_set_param", r)
	if err != nil {
		return err
	}
	if err := j.SetParam(axis, p, v); err != nil {
		return s.fail("generic_6dof_joint_set_param", r, err)
	}
	return nil
}

func (s *Server) Generic6DOFJointParam(r rid.RID, axis int, p physics.G6DOFParam) float64 {
	j, err := jointAs[*physics.Generic6DOFJoint](s, "generic_6dof_joint_get_param", r)
	if err != nil {
		return 0
	}
	return j.Param(axis, p)
}

func (s *Server) Generic6DOFJointSetFlag(r rid.RID, axis int, f physics.G6DOFFlag, enable bool) error {
	j, err := jointAs[*physics.Generic6DOFJoint](s, "generic_6dof_joint_set_flag", r)
	if err != nil {
		return err
	}
	if err := j.SetFlag(axis, f, enable); err != nil {
		return s.fail("generic_6dof_joint_set_flag", r, err)
	}
	return nil
}

func (s *Server) Generic6DOFJointFlag(r rid.RID, axis int, f physics.G6DOFFlag) bool {
	j, err := jointAs[*physics.Generic6DOFJoint](s, "generic_6dof_joint_get_flag", r)
	if err != nil {
		return false
	}
	return j.Flag(axis, f)
}
