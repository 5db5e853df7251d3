package scenario

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/rid"
	"github.com/san-kum/rigidsim/internal/server"
)

// Named pairs a scenario name with its server handle.
type Named struct {
	Name string
	RID  rid.RID
}

// Event is an area overlap change seen during a run.
type Event struct {
	Step   int    `json:"step"`
	Area   string `json:"area"`
	Object string `json:"object"`
	Added  bool   `json:"added"`
}

// World is a scenario instantiated on a server.
type World struct {
	Space  rid.RID
	Shapes map[string]rid.RID
	Bodies []Named
	Areas  []Named
	Joints []Named

	names  map[rid.RID]string
	events []Event
	step   int
}

// Body returns the handle of the named body.
func (w *World) Body(name string) (rid.RID, bool) {
	for _, b := range w.Bodies {
		if b.Name == name {
			return b.RID, true
		}
	}
	return rid.Invalid, false
}

func (w *World) monitor(area string) physics.AreaMonitor {
	return physics.AreaMonitorFunc(func(ev physics.AreaEvent) {
		w.events = append(w.events, Event{
			Step:   w.step,
			Area:   area,
			Object: w.names[ev.Object],
			Added:  ev.Status == physics.AreaBodyAdded,
		})
	})
}

// Build creates the space, shapes, bodies, areas and joints of cfg on srv.
func Build(cfg *config.Config, srv *server.Server) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := srv.SetIterations(cfg.Iterations); err != nil {
		return nil, err
	}

	w := &World{
		Shapes: make(map[string]rid.RID, len(cfg.Shapes)),
		names:  make(map[rid.RID]string),
	}
	w.Space = srv.SpaceCreate()
	if err := buildSpace(srv, w.Space, cfg.Space); err != nil {
		return nil, err
	}

	for _, sc := range cfg.Shapes {
		r, err := buildShape(srv, sc)
		if err != nil {
			return nil, fmt.Errorf("shape %q: %w", sc.Name, err)
		}
		w.Shapes[sc.Name] = r
	}

	for _, bc := range cfg.Bodies {
		r, err := buildBody(srv, w, bc)
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", bc.Name, err)
		}
		w.Bodies = append(w.Bodies, Named{bc.Name, r})
		w.names[r] = bc.Name
	}
	for _, bc := range cfg.Bodies {
		r, _ := w.Body(bc.Name)
		for _, ex := range bc.Exceptions {
			other, _ := w.Body(ex)
			if err := srv.BodyAddCollisionException(r, other); err != nil {
				return nil, fmt.Errorf("body %q: %w", bc.Name, err)
			}
		}
		if bc.Sleeping {
			if err := srv.BodySetState(r, physics.BodyStateSleeping, true); err != nil {
				return nil, fmt.Errorf("body %q: %w", bc.Name, err)
			}
		}
	}

	for _, ac := range cfg.Areas {
		r, err := buildArea(srv, w, ac)
		if err != nil {
			return nil, fmt.Errorf("area %q: %w", ac.Name, err)
		}
		w.Areas = append(w.Areas, Named{ac.Name, r})
		w.names[r] = ac.Name
	}

	for _, jc := range cfg.Joints {
		r, err := buildJoint(srv, w, jc)
		if err != nil {
			return nil, fmt.Errorf("joint %q: %w", jc.Name, err)
		}
		w.Joints = append(w.Joints, Named{jc.Name, r})
	}
	return w, nil
}

type bodyParam struct {
	p physics.BodyParameter
	v float64
}

type bodyState struct {
	s physics.BodyState
	v any
}

type areaParam struct {
	p physics.AreaParameter
	v any
}

func buildSpace(srv *server.Server, sp rid.RID, sc config.SpaceConfig) error {
	if err := srv.SpaceSetActive(sp, true); err != nil {
		return err
	}
	for k, v := range sc.Params {
		p, err := physics.ParseSpaceParameter(k)
		if err != nil {
			return err
		}
		if err := srv.SpaceSetParam(sp, p, v); err != nil {
			return err
		}
	}
	// the space RID addresses its default area
	params := []areaParam{
		{physics.AreaParamGravity, sc.Gravity},
		{physics.AreaParamGravityVector, sc.GravityVector},
		{physics.AreaParamLinearDamp, sc.LinearDamp},
		{physics.AreaParamAngularDamp, sc.AngularDamp},
	}
	for _, kv := range params {
		if err := srv.AreaSetParam(sp, kv.p, kv.v); err != nil {
			return err
		}
	}
	return nil
}

func buildShape(srv *server.Server, sc config.ShapeConfig) (rid.RID, error) {
	t, err := sc.ShapeType()
	if err != nil {
		return rid.Invalid, err
	}
	data, err := sc.Data()
	if err != nil {
		return rid.Invalid, err
	}
	r, err := srv.ShapeCreate(t)
	if err != nil {
		return rid.Invalid, err
	}
	if err := srv.ShapeSetData(r, data); err != nil {
		return rid.Invalid, err
	}
	if sc.CustomBias != 0 {
		if err := srv.ShapeSetCustomSolverBias(r, sc.CustomBias); err != nil {
			return rid.Invalid, err
		}
	}
	return r, nil
}

func buildBody(srv *server.Server, w *World, bc config.BodyConfig) (rid.RID, error) {
	mode, err := bc.BodyMode()
	if err != nil {
		return rid.Invalid, err
	}
	r, err := srv.BodyCreate(mode, false)
	if err != nil {
		return rid.Invalid, err
	}
	if err := srv.BodySetSpace(r, w.Space); err != nil {
		return rid.Invalid, err
	}
	for _, name := range bc.Shapes {
		if err := srv.BodyAddShape(r, w.Shapes[name], geom.Identity()); err != nil {
			return rid.Invalid, err
		}
	}

	params := []bodyParam{{physics.BodyParamBounce, bc.Bounce}}
	if bc.Mass > 0 {
		params = append(params, bodyParam{physics.BodyParamMass, bc.Mass})
	}
	for _, opt := range []struct {
		p physics.BodyParameter
		v *float64
	}{
		{physics.BodyParamFriction, bc.Friction},
		{physics.BodyParamGravityScale, bc.GravityScale},
		{physics.BodyParamLinearDamp, bc.LinearDamp},
		{physics.BodyParamAngularDamp, bc.AngularDamp},
	} {
		if opt.v != nil {
			params = append(params, bodyParam{opt.p, *opt.v})
		}
	}
	for _, kv := range params {
		if err := srv.BodySetParam(r, kv.p, kv.v); err != nil {
			return rid.Invalid, err
		}
	}

	states := []bodyState{
		{physics.BodyStateTransform, bc.Transform()},
		{physics.BodyStateCanSleep, bc.CanSleep},
	}
	if bc.LinearVelocity != (mgl64.Vec3{}) {
		states = append(states, bodyState{physics.BodyStateLinearVelocity, bc.LinearVelocity})
	}
	if bc.AngularVelocity != (mgl64.Vec3{}) {
		states = append(states, bodyState{physics.BodyStateAngularVelocity, bc.AngularVelocity})
	}
	for _, st := range states {
		if err := srv.BodySetState(r, st.s, st.v); err != nil {
			return rid.Invalid, err
		}
	}

	lock, err := bc.Lock()
	if err != nil {
		return rid.Invalid, err
	}
	if err := srv.BodySetAxisLock(r, lock); err != nil {
		return rid.Invalid, err
	}
	if err := srv.BodySetMaxContactsReported(r, bc.MaxContacts); err != nil {
		return rid.Invalid, err
	}
	if err := srv.BodySetEnableContinuousCollisionDetection(r, bc.CCD); err != nil {
		return rid.Invalid, err
	}
	return r, nil
}

func buildArea(srv *server.Server, w *World, ac config.AreaConfig) (rid.RID, error) {
	mode, err := physics.ParseAreaSpaceOverrideMode(ac.Override)
	if err != nil {
		return rid.Invalid, err
	}
	r := srv.AreaCreate()
	if err := srv.AreaSetSpace(r, w.Space); err != nil {
		return rid.Invalid, err
	}
	for _, name := range ac.Shapes {
		if err := srv.AreaAddShape(r, w.Shapes[name], geom.Identity()); err != nil {
			return rid.Invalid, err
		}
	}
	if err := srv.AreaSetTransform(r, geom.Translation(ac.Position)); err != nil {
		return rid.Invalid, err
	}
	if err := srv.AreaSetSpaceOverrideMode(r, mode); err != nil {
		return rid.Invalid, err
	}

	params := []areaParam{
		{physics.AreaParamGravity, ac.Gravity},
		{physics.AreaParamGravityVector, ac.GravityVector},
		{physics.AreaParamGravityIsPoint, ac.Point},
		{physics.AreaParamGravityDistanceScale, ac.DistanceScale},
		{physics.AreaParamLinearDamp, ac.LinearDamp},
		{physics.AreaParamAngularDamp, ac.AngularDamp},
		{physics.AreaParamPriority, ac.Priority},
	}
	if ac.Attenuation != 0 {
		params = append(params, areaParam{physics.AreaParamGravityPointAttenuation, ac.Attenuation})
	}
	for _, kv := range params {
		if err := srv.AreaSetParam(r, kv.p, kv.v); err != nil {
			return rid.Invalid, err
		}
	}

	if ac.Monitor {
		if err := srv.AreaSetMonitorCallback(r, w.monitor(ac.Name)); err != nil {
			return rid.Invalid, err
		}
	}
	if ac.Monitorable {
		if err := srv.AreaSetMonitorable(r, true); err != nil {
			return rid.Invalid, err
		}
	}
	return r, nil
}

func buildJoint(srv *server.Server, w *World, jc config.JointConfig) (rid.RID, error) {
	jt, err := physics.ParseJointType(jc.Type)
	if err != nil {
		return rid.Invalid, err
	}
	a, _ := w.Body(jc.A)
	b := rid.Invalid
	if jc.B != "" {
		b, _ = w.Body(jc.B)
	}

	axisA, axisB := jc.AxisA, jc.AxisB
	if axisA == (mgl64.Vec3{}) {
		axisA = mgl64.Vec3{0, 0, 1}
	}
	if axisB == (mgl64.Vec3{}) {
		axisB = axisA
	}

	var r rid.RID
	switch jt {
	case physics.JointPin:
		r, err = srv.JointCreatePin(a, jc.AnchorA, b, jc.AnchorB)
	case physics.JointHinge:
		r, err = srv.JointCreateHingeSimple(a, jc.AnchorA, axisA, b, jc.AnchorB, axisB)
	case physics.JointSlider:
		r, err = srv.JointCreateSlider(a, geom.AxisFrame(jc.AnchorA, axisA, 0), b, geom.AxisFrame(jc.AnchorB, axisB, 0))
	case physics.JointConeTwist:
		r, err = srv.JointCreateConeTwist(a, geom.AxisFrame(jc.AnchorA, axisA, 0), b, geom.AxisFrame(jc.AnchorB, axisB, 0))
	case physics.Joint6DOF:
		r, err = srv.JointCreateGeneric6DOF(a, geom.AxisFrame(jc.AnchorA, axisA, 2), b, geom.AxisFrame(jc.AnchorB, axisB, 2))
	}
	if err != nil {
		return rid.Invalid, err
	}
	if err := tuneJoint(srv, r, jt, jc); err != nil {
		return rid.Invalid, err
	}
	if jc.Priority != 0 {
		if err := srv.JointSetSolverPriority(r, jc.Priority); err != nil {
			return rid.Invalid, err
		}
	}
	return r, nil
}

// tuneJoint maps the generic limit, motor and bias fields onto the
// parameters of each joint type.
func tuneJoint(srv *server.Server, r rid.RID, jt physics.JointType, jc config.JointConfig) error {
	var errs []error
	limited := len(jc.Limit) == 2
	switch jt {
	case physics.JointPin:
		if jc.Bias != nil {
			errs = append(errs, srv.PinJointSetParam(r, physics.PinParamBias, *jc.Bias))
		}
	case physics.JointHinge:
		if limited {
			errs = append(errs,
				srv.HingeJointSetFlag(r, physics.HingeFlagUseLimit, true),
				srv.HingeJointSetParam(r, physics.HingeParamLimitLower, jc.Limit[0]),
				srv.HingeJointSetParam(r, physics.HingeParamLimitUpper, jc.Limit[1]))
		}
		if jc.Motor != nil {
			errs = append(errs,
				srv.HingeJointSetFlag(r, physics.HingeFlagEnableMotor, true),
				srv.HingeJointSetParam(r, physics.HingeParamMotorTargetVelocity, jc.Motor.Velocity),
				srv.HingeJointSetParam(r, physics.HingeParamMotorMaxImpulse, jc.Motor.MaxImpulse))
		}
		if jc.Bias != nil {
			errs = append(errs, srv.HingeJointSetParam(r, physics.HingeParamBias, *jc.Bias))
		}
	case physics.JointSlider:
		if limited {
			errs = append(errs,
				srv.SliderJointSetParam(r, physics.SliderLinearLimitLower, jc.Limit[0]),
				srv.SliderJointSetParam(r, physics.SliderLinearLimitUpper, jc.Limit[1]))
		}
	case physics.JointConeTwist:
		if limited {
			errs = append(errs,
				srv.ConeTwistJointSetParam(r, physics.ConeTwistSwingSpan, jc.Limit[0]),
				srv.ConeTwistJointSetParam(r, physics.ConeTwistTwistSpan, jc.Limit[1]))
		}
		if jc.Bias != nil {
			errs = append(errs, srv.ConeTwistJointSetParam(r, physics.ConeTwistBias, *jc.Bias))
		}
	case physics.Joint6DOF:
		if limited {
			for axis := 0; axis < 3; axis++ {
				errs = append(errs,
					srv.Generic6DOFJointSetParam(r, axis, physics.G6DOFAngularLowerLimit, jc.Limit[0]),
					srv.Generic6DOFJointSetParam(r, axis, physics.G6DOFAngularUpperLimit, jc.Limit[1]))
			}
		}
		if jc.Motor != nil {
			errs = append(errs,
				srv.Generic6DOFJointSetFlag(r, 2, physics.G6DOFFlagEnableMotor, true),
				srv.Generic6DOFJointSetParam(r, 2, physics.G6DOFAngularMotorTargetVelocity, jc.Motor.Velocity),
				srv.Generic6DOFJointSetParam(r, 2, physics.G6DOFAngularMotorForceLimit, jc.Motor.MaxImpulse))
		}
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Jitter returns a copy of cfg with every rigid body's position offset by a
// uniform draw from [-amount, amount] per axis. The same seed gives the same
// offsets.
func Jitter(cfg *config.Config, seed int64, amount float64) *config.Config {
	out := cfg.Clone()
	out.Seed = seed
	if amount <= 0 {
		return out
	}
	rng := rand.New(rand.NewSource(seed))
	for i := range out.Bodies {
		if mode, _ := out.Bodies[i].BodyMode(); mode != physics.BodyModeRigid && mode != physics.BodyModeCharacter {
			continue
		}
		for k := 0; k < 3; k++ {
			out.Bodies[i].Position[k] += (rng.Float64()*2 - 1) * amount
		}
	}
	return out
}
