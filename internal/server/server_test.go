package server

import (
	"bytes"
	"log"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/rid"
	"github.com/san-kum/rigidsim/internal/shape"
)

const dt = 1.0 / 60

type fixture struct {
	srv   *Server
	logs  *bytes.Buffer
	space rid.RID
}

func newFixture() *fixture {
	buf := &bytes.Buffer{}
	srv := New(WithLogger(log.New(buf, "", 0)))
	sp := srv.SpaceCreate()
	Expect(srv.SpaceSetActive(sp, true)).To(Succeed())
	return &fixture{srv: srv, logs: buf, space: sp}
}

func (f *fixture) shape(t shape.Type, data any) rid.RID {
	r, err := f.srv.ShapeCreate(t)
	Expect(err).NotTo(HaveOccurred())
	Expect(f.srv.ShapeSetData(r, data)).To(Succeed())
	return r
}

func (f *fixture) body(mode physics.BodyMode, sh rid.RID, at mgl64.Vec3) rid.RID {
	b, err := f.srv.BodyCreate(mode, false)
	Expect(err).NotTo(HaveOccurred())
	Expect(f.srv.BodyAddShape(b, sh, geom.Identity())).To(Succeed())
	Expect(f.srv.BodySetSpace(b, f.space)).To(Succeed())
	Expect(f.srv.BodySetState(b, physics.BodyStateTransform, geom.Translation(at))).To(Succeed())
	return b
}

func (f *fixture) sphere(at mgl64.Vec3) rid.RID {
	return f.body(physics.BodyModeRigid, f.shape(shape.TypeSphere, 0.5), at)
}

func (f *fixture) ground() rid.RID {
	plane := f.shape(shape.TypePlane, geom.Plane{Normal: mgl64.Vec3{0, 1, 0}})
	return f.body(physics.BodyModeStatic, plane, mgl64.Vec3{})
}

func (f *fixture) area(mode physics.AreaSpaceOverrideMode, gravity float64, priority int) rid.RID {
	a := f.srv.AreaCreate()
	Expect(f.srv.AreaAddShape(a, f.shape(shape.TypeBox, mgl64.Vec3{10, 10, 10}), geom.Identity())).To(Succeed())
	Expect(f.srv.AreaSetSpace(a, f.space)).To(Succeed())
	Expect(f.srv.AreaSetSpaceOverrideMode(a, mode)).To(Succeed())
	Expect(f.srv.AreaSetParam(a, physics.AreaParamGravity, gravity)).To(Succeed())
	Expect(f.srv.AreaSetParam(a, physics.AreaParamPriority, priority)).To(Succeed())
	return a
}

func (f *fixture) tick(n int) {
	for i := 0; i < n; i++ {
		f.srv.Step(dt)
		f.srv.FlushQueries()
	}
}

func (f *fixture) origin(b rid.RID) mgl64.Vec3 {
	return f.srv.BodyState(b, physics.BodyStateTransform).(geom.Transform).Origin
}

func (f *fixture) direct(b rid.RID) *physics.DirectBodyState {
	st, err := f.srv.BodyDirectState(b)
	Expect(err).NotTo(HaveOccurred())
	return st
}

type countingCallback struct {
	calls   int
	data    any
	expired bool
}

func (c *countingCallback) IntegrateForces(_ *physics.DirectBodyState, userdata any) {
	c.calls++
	c.data = userdata
}

func (c *countingCallback) Expired() bool { return c.expired }

var _ = Describe("Server", func() {
	var f *fixture

	BeforeEach(func() {
		f = newFixture()
	})

	AfterEach(func() {
		f.srv.Finish()
	})

	Describe("handles", func() {
		It("rejects stale and unknown handles", func() {
			b := f.sphere(mgl64.Vec3{})
			Expect(f.srv.Free(b)).To(Succeed())

			Expect(f.srv.BodySetParam(b, physics.BodyParamMass, 2)).To(MatchError(ErrInvalidRID))
			Expect(f.srv.Free(b)).To(MatchError(ErrInvalidRID))
			Expect(f.srv.BodyMode(b)).To(Equal(physics.BodyModeStatic))
			Expect(f.logs.String()).To(ContainSubstring("physics: body_set_param"))
		})

		It("tells a wrong kind of handle from a stale one", func() {
			Expect(f.srv.BodySetParam(f.space, physics.BodyParamMass, 2)).To(MatchError(ErrWrongType))
			Expect(f.srv.AreaAddShape(f.space, rid.Invalid, geom.Identity())).To(MatchError(ErrWrongType))
		})

		It("refuses custom shapes and unconfigured shapes", func() {
			_, err := f.srv.ShapeCreate(shape.TypeCustom)
			Expect(err).To(MatchError(ErrUnsupportedShape))

			sh, err := f.srv.ShapeCreate(shape.TypeBox)
			Expect(err).NotTo(HaveOccurred())
			b, err := f.srv.BodyCreate(physics.BodyModeRigid, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.srv.BodyAddShape(b, sh, geom.Identity())).To(MatchError(ErrShapeNotConfigured))
			Expect(f.srv.ShapeSetData(sh, -1.0)).To(MatchError(ErrInvalidShapeData))
		})

		It("redirects area parameters of a space to its default area", func() {
			Expect(f.srv.AreaParam(f.space, physics.AreaParamGravity)).To(Equal(9.8))
			Expect(f.srv.AreaSetParam(f.space, physics.AreaParamGravity, 1.5)).To(Succeed())
			sp, _ := f.srv.spaces.Get(f.space)
			Expect(sp.DefaultArea().Param(physics.AreaParamGravity)).To(Equal(1.5))
		})

		It("removes a freed shape from every body using it", func() {
			sh := f.shape(shape.TypeSphere, 0.5)
			a := f.body(physics.BodyModeRigid, sh, mgl64.Vec3{})
			b := f.body(physics.BodyModeRigid, sh, mgl64.Vec3{5, 0, 0})
			Expect(f.srv.BodyShape(a, 0)).To(Equal(sh))

			Expect(f.srv.Free(sh)).To(Succeed())
			Expect(f.srv.BodyShapeCount(a)).To(Equal(0))
			Expect(f.srv.BodyShapeCount(b)).To(Equal(0))
		})

		It("keeps bodies alive when their space is freed", func() {
			b := f.sphere(mgl64.Vec3{})
			Expect(f.srv.Free(f.space)).To(Succeed())
			Expect(f.srv.BodySpace(b)).To(Equal(rid.Invalid))
			Expect(f.srv.SpaceIsActive(f.space)).To(BeFalse())
			f.tick(1)
		})
	})

	Describe("mass and inertia", func() {
		It("keeps the inverse mass in step with the mass", func() {
			b := f.body(physics.BodyModeRigid, f.shape(shape.TypeBox, mgl64.Vec3{0.5, 0.5, 0.5}), mgl64.Vec3{})
			Expect(f.srv.BodySetParam(b, physics.BodyParamMass, 4)).To(Succeed())
			f.tick(1)
			Expect(f.direct(b).InverseMass()).To(Equal(0.25))
			Expect(f.direct(b).InverseInertia()).NotTo(Equal(mgl64.Vec3{}))

			Expect(f.srv.BodySetParam(b, physics.BodyParamMass, 0)).To(MatchError(ErrInvalidParameter))
			Expect(f.srv.BodyParam(b, physics.BodyParamMass)).To(Equal(4.0))
		})

		DescribeTable("clears inverse mass and inertia for non-dynamic modes",
			func(mode physics.BodyMode) {
				b := f.body(physics.BodyModeRigid, f.shape(shape.TypeBox, mgl64.Vec3{0.5, 0.5, 0.5}), mgl64.Vec3{})
				f.tick(1)
				Expect(f.srv.BodySetMode(b, mode)).To(Succeed())
				Expect(f.direct(b).InverseMass()).To(BeZero())
				Expect(f.direct(b).InverseInertia()).To(Equal(mgl64.Vec3{}))
				f.tick(1)
				Expect(f.direct(b).InverseMass()).To(BeZero())
				Expect(f.direct(b).InverseInertia()).To(Equal(mgl64.Vec3{}))
			},
			Entry("static", physics.BodyModeStatic),
			Entry("kinematic", physics.BodyModeKinematic),
		)
	})

	Describe("area gravity", func() {
		BeforeEach(func() {
			Expect(f.srv.AreaSetParam(f.space, physics.AreaParamGravity, 0.0)).To(Succeed())
		})

		It("sums combining areas", func() {
			f.area(physics.AreaOverrideCombine, 5, 1)
			f.area(physics.AreaOverrideCombine, 3, 2)
			b := f.sphere(mgl64.Vec3{})
			f.tick(4)
			g := f.direct(b).TotalGravity()
			Expect(g[1]).To(BeNumerically("~", -8, 1e-12))
			Expect(g[0]).To(BeZero())
		})

		It("stops at a combine-replace area", func() {
			f.area(physics.AreaOverrideCombine, 5, 1)
			f.area(physics.AreaOverrideCombineReplace, 3, 2)
			Expect(f.srv.AreaSetParam(f.space, physics.AreaParamGravity, 9.8)).To(Succeed())
			b := f.sphere(mgl64.Vec3{})
			f.tick(4)
			Expect(f.direct(b).TotalGravity()[1]).To(BeNumerically("~", -3, 1e-12))
		})

		It("gives the same vector on repeated runs", func() {
			run := func() mgl64.Vec3 {
				g := newFixture()
				defer g.srv.Finish()
				Expect(g.srv.AreaSetParam(g.space, physics.AreaParamGravity, 1.0)).To(Succeed())
				g.area(physics.AreaOverrideReplaceCombine, 2, 3)
				g.area(physics.AreaOverrideCombine, 5, 1)
				g.area(physics.AreaOverrideCombine, 0.5, 1)
				b := g.sphere(mgl64.Vec3{1, 2, 3})
				g.tick(4)
				return g.direct(b).TotalGravity()
			}
			first := run()
			Expect(run()).To(Equal(first))
		})
	})

	Describe("sleeping", func() {
		stepsToSleep := func(b rid.RID) int {
			for n := 1; n <= 200; n++ {
				f.tick(1)
				if f.srv.BodyState(b, physics.BodyStateSleeping).(bool) {
					return n
				}
			}
			return -1
		}

		It("falls asleep once and takes the same time after a wakeup", func() {
			Expect(f.srv.AreaSetParam(f.space, physics.AreaParamGravity, 0.0)).To(Succeed())
			b := f.sphere(mgl64.Vec3{})
			Expect(f.srv.BodySetState(b, physics.BodyStateCanSleep, true)).To(Succeed())
			f.tick(1)
			Expect(f.srv.BodySetState(b, physics.BodyStateSleeping, true)).To(Succeed())
			Expect(f.srv.BodySetState(b, physics.BodyStateSleeping, false)).To(Succeed())

			first := stepsToSleep(b)
			Expect(first).To(BeNumerically(">=", 30))
			Expect(first).To(BeNumerically("<=", 32))

			for i := 0; i < 10; i++ {
				f.tick(1)
				Expect(f.srv.BodyState(b, physics.BodyStateSleeping)).To(BeTrue())
			}
			Expect(f.srv.ProcessInfo(InfoActiveObjects)).To(BeZero())

			Expect(f.srv.BodySetState(b, physics.BodyStateSleeping, false)).To(Succeed())
			Expect(f.direct(b).IsSleeping()).To(BeFalse())
			Expect(stepsToSleep(b)).To(Equal(first))
		})
	})

	Describe("islands", func() {
		It("never merges bodies through a static body", func() {
			f.ground()
			box := f.shape(shape.TypeBox, mgl64.Vec3{0.5, 0.5, 0.5})
			for i := 0; i < 3; i++ {
				f.body(physics.BodyModeRigid, box, mgl64.Vec3{float64(i) * 3, 0.5, 0})
			}
			f.tick(10)
			Expect(f.srv.ProcessInfo(InfoIslandCount)).To(Equal(3))
			Expect(f.srv.ProcessInfo(InfoActiveObjects)).To(Equal(3))
			Expect(f.srv.ProcessInfo(InfoCollisionPairs)).To(Equal(3))
		})
	})

	Describe("joints", func() {
		var a, b rid.RID

		BeforeEach(func() {
			a = f.sphere(mgl64.Vec3{})
			b = f.sphere(mgl64.Vec3{2, 0, 0})
		})

		It("refuses a joint on a single body without registering it", func() {
			_, err := f.srv.JointCreatePin(a, mgl64.Vec3{}, a, mgl64.Vec3{})
			Expect(err).To(MatchError(ErrSameBody))
			_, err = f.srv.JointCreateHinge(a, geom.Identity(), a, geom.Identity())
			Expect(err).To(MatchError(ErrSameBody))
			_, err = f.srv.JointCreateSlider(a, geom.Identity(), a, geom.Identity())
			Expect(err).To(MatchError(ErrSameBody))
			_, err = f.srv.JointCreateConeTwist(a, geom.Identity(), a, geom.Identity())
			Expect(err).To(MatchError(ErrSameBody))
			_, err = f.srv.JointCreateGeneric6DOF(a, geom.Identity(), a, geom.Identity())
			Expect(err).To(MatchError(ErrSameBody))

			Expect(f.srv.joints.Len()).To(BeZero())
			body, _ := f.srv.bodies.Get(a)
			Expect(body.ConstraintCount()).To(BeZero())
		})

		It("anchors to the static global body when B is omitted", func() {
			j, err := f.srv.JointCreatePin(a, mgl64.Vec3{}, rid.Invalid, mgl64.Vec3{})
			Expect(err).NotTo(HaveOccurred())
			joint, _ := f.srv.joints.Get(j)
			sp, _ := f.srv.spaces.Get(f.space)
			Expect(joint.BodyB()).To(BeIdenticalTo(sp.StaticGlobalBody()))

			loose, err := f.srv.BodyCreate(physics.BodyModeRigid, false)
			Expect(err).NotTo(HaveOccurred())
			_, err = f.srv.JointCreatePin(loose, mgl64.Vec3{}, rid.Invalid, mgl64.Vec3{})
			Expect(err).To(MatchError(ErrNoSpace))
		})

		It("exposes per-type parameters and checks the joint kind", func() {
			h, err := f.srv.JointCreateHingeSimple(a, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 1}, b, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{0, 0, 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(f.srv.JointType(h)).To(Equal(physics.JointHinge))
			Expect(f.srv.HingeJointSetFlag(h, physics.HingeFlagEnableMotor, true)).To(Succeed())
			Expect(f.srv.HingeJointFlag(h, physics.HingeFlagEnableMotor)).To(BeTrue())
			Expect(f.srv.HingeJointSetParam(h, physics.HingeParamMotorTargetVelocity, 2)).To(Succeed())
			Expect(f.srv.HingeJointParam(h, physics.HingeParamMotorTargetVelocity)).To(Equal(2.0))

			Expect(f.srv.PinJointSetParam(h, physics.PinParamBias, 0.5)).To(MatchError(ErrWrongType))
			Expect(f.srv.SliderJointParam(h, physics.SliderLinearLimitUpper)).To(BeZero())

			Expect(f.srv.JointSetSolverPriority(h, 3)).To(Succeed())
			Expect(f.srv.JointSolverPriority(h)).To(Equal(3))
		})

		It("moves pin anchors", func() {
			j, err := f.srv.JointCreatePin(a, mgl64.Vec3{1, 0, 0}, b, mgl64.Vec3{-1, 0, 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(f.srv.PinJointLocalA(j)).To(Equal(mgl64.Vec3{1, 0, 0}))
			Expect(f.srv.PinJointSetLocalB(j, mgl64.Vec3{0, 1, 0})).To(Succeed())
			Expect(f.srv.PinJointLocalB(j)).To(Equal(mgl64.Vec3{0, 1, 0}))
		})

		It("detaches joints of a freed body", func() {
			j, err := f.srv.JointCreateGeneric6DOF(a, geom.Identity(), b, geom.Translation(mgl64.Vec3{-2, 0, 0}))
			Expect(err).NotTo(HaveOccurred())
			Expect(f.srv.Free(a)).To(Succeed())

			joint, ok := f.srv.joints.Get(j)
			Expect(ok).To(BeTrue())
			Expect(joint.Detached()).To(BeTrue())
			other, _ := f.srv.bodies.Get(b)
			Expect(other.ConstraintCount()).To(BeZero())
			f.tick(2)
			Expect(f.srv.Free(j)).To(Succeed())
		})

		It("detaches joints of a body taken out of its space", func() {
			j, err := f.srv.JointCreatePin(a, mgl64.Vec3{1, 0, 0}, b, mgl64.Vec3{-1, 0, 0})
			Expect(err).NotTo(HaveOccurred())
			f.tick(1)
			Expect(f.srv.BodySetSpace(a, rid.Invalid)).To(Succeed())

			joint, _ := f.srv.joints.Get(j)
			Expect(joint.Detached()).To(BeTrue())
			ba, _ := f.srv.bodies.Get(a)
			bb, _ := f.srv.bodies.Get(b)
			Expect(ba.ConstraintCount()).To(BeZero())
			Expect(bb.ConstraintCount()).To(BeZero())
			Expect(func() { f.tick(5) }).NotTo(Panic())
		})

		It("uncouples a body moved to another space", func() {
			hook, err := f.srv.JointCreatePin(b, mgl64.Vec3{}, rid.Invalid, mgl64.Vec3{2, 0, 0})
			Expect(err).NotTo(HaveOccurred())
			link, err := f.srv.JointCreatePin(a, mgl64.Vec3{1, 0, 0}, b, mgl64.Vec3{-1, 0, 0})
			Expect(err).NotTo(HaveOccurred())
			f.tick(1)

			other := f.srv.SpaceCreate()
			Expect(f.srv.SpaceSetActive(other, true)).To(Succeed())
			Expect(f.srv.BodySetSpace(a, other)).To(Succeed())

			j, _ := f.srv.joints.Get(link)
			Expect(j.Detached()).To(BeTrue())
			j, _ = f.srv.joints.Get(hook)
			Expect(j.Detached()).To(BeFalse())
			ba, _ := f.srv.bodies.Get(a)
			Expect(ba.ConstraintCount()).To(BeZero())

			f.tick(30)
			Expect(f.origin(a).Y()).To(BeNumerically("<", -1))
			Expect(f.origin(b).Sub(mgl64.Vec3{2, 0, 0}).Len()).To(BeNumerically("<", 0.05))
		})
	})

	Describe("state round trip", func() {
		It("orthonormalizes the transform of a rigid body", func() {
			b := f.sphere(mgl64.Vec3{})
			skewed := geom.NewTransform(mgl64.Mat3{2, 0, 0, 0.5, 1, 0, 0, 0, 3}, mgl64.Vec3{1, 2, 3})
			Expect(f.srv.BodySetState(b, physics.BodyStateTransform, skewed)).To(Succeed())

			got := f.srv.BodyState(b, physics.BodyStateTransform).(geom.Transform)
			Expect(got).To(Equal(skewed.Orthonormalized()))
		})

		It("defers a kinematic transform to the next step", func() {
			b := f.body(physics.BodyModeKinematic, f.shape(shape.TypeBox, mgl64.Vec3{0.5, 0.5, 0.5}), mgl64.Vec3{})
			f.tick(1)
			target := geom.Translation(mgl64.Vec3{0.25, 0, 0})
			Expect(f.srv.BodySetState(b, physics.BodyStateTransform, target)).To(Succeed())

			Expect(f.origin(b)).To(Equal(mgl64.Vec3{}))
			f.tick(1)
			Expect(f.srv.BodyState(b, physics.BodyStateTransform)).To(Equal(target))
		})

		It("rejects values of the wrong type", func() {
			b := f.sphere(mgl64.Vec3{})
			Expect(f.srv.BodySetState(b, physics.BodyStateLinearVelocity, 3.0)).To(MatchError(ErrWrongValue))
		})
	})

	Describe("free fall", func() {
		It("converges toward -9.8 t over one second", func() {
			Expect(f.srv.AreaSetParam(f.space, physics.AreaParamLinearDamp, 0.0)).To(Succeed())
			b := f.sphere(mgl64.Vec3{})
			Expect(f.srv.BodySetParam(b, physics.BodyParamMass, 1)).To(Succeed())

			prevY, prevV := 0.0, 0.0
			for i := 0; i < 60; i++ {
				f.tick(1)
				y := f.origin(b)[1]
				v := f.srv.BodyState(b, physics.BodyStateLinearVelocity).(mgl64.Vec3)[1]
				Expect(y).To(BeNumerically("<=", prevY))
				Expect(v).To(BeNumerically("<=", prevV))
				prevY, prevV = y, v
			}
			Expect(prevV).To(BeNumerically("~", -9.8, 0.2))
			Expect(prevY).To(BeNumerically("~", -4.9, 0.15))
		})
	})

	Describe("collision exceptions", func() {
		It("suppresses contacts on both bodies", func() {
			ground := f.ground()
			box := f.body(physics.BodyModeRigid, f.shape(shape.TypeBox, mgl64.Vec3{0.5, 0.5, 0.5}), mgl64.Vec3{0, 0.5, 0})
			Expect(f.srv.BodySetMaxContactsReported(box, 4)).To(Succeed())
			Expect(f.srv.BodySetMaxContactsReported(ground, 4)).To(Succeed())
			Expect(f.srv.BodyAddCollisionException(box, ground)).To(Succeed())
			Expect(f.srv.BodyCollisionExceptions(box)).To(ContainElement(ground))

			for i := 0; i < 30; i++ {
				f.tick(1)
				Expect(f.srv.BodyContacts(box)).To(BeEmpty())
				Expect(f.srv.BodyContacts(ground)).To(BeEmpty())
			}
			Expect(f.origin(box)[1]).To(BeNumerically("<", 0))
		})

		It("reports contacts once the exception is removed", func() {
			ground := f.ground()
			box := f.body(physics.BodyModeRigid, f.shape(shape.TypeBox, mgl64.Vec3{0.5, 0.5, 0.5}), mgl64.Vec3{0, 0.5, 0})
			Expect(f.srv.BodySetMaxContactsReported(box, 4)).To(Succeed())
			Expect(f.srv.BodyAddCollisionException(box, ground)).To(Succeed())
			Expect(f.srv.BodyRemoveCollisionException(box, ground)).To(Succeed())
			Expect(f.srv.BodyCollisionExceptions(box)).To(BeEmpty())

			f.tick(5)
			contacts := f.srv.BodyContacts(box)
			Expect(contacts).NotTo(BeEmpty())
			Expect(contacts[0].Collider).To(Equal(ground))
		})
	})

	Describe("queries", func() {
		It("locks direct space state from Step until FlushQueries returns", func() {
			b := f.sphere(mgl64.Vec3{})
			cb := &countingCallback{}
			var inside error
			Expect(f.srv.BodySetForceIntegrationCallback(b, physics.ForceIntegrationFunc(func(st *physics.DirectBodyState, _ any) {
				_, inside = st.SpaceState()
				cb.calls++
			}), nil)).To(Succeed())

			_, err := f.srv.SpaceDirectState(f.space)
			Expect(err).NotTo(HaveOccurred())

			f.srv.Step(dt)
			_, err = f.srv.SpaceDirectState(f.space)
			Expect(err).To(MatchError(ErrSpaceLocked))
			_, err = f.srv.BodyDirectState(b)
			Expect(err).To(MatchError(ErrSpaceLocked))

			f.srv.FlushQueries()
			Expect(cb.calls).To(Equal(1))
			Expect(inside).To(MatchError(ErrSpaceLocked))
			_, err = f.srv.SpaceDirectState(f.space)
			Expect(err).NotTo(HaveOccurred())
		})

		It("runs force integration callbacks with userdata until they expire", func() {
			b := f.sphere(mgl64.Vec3{})
			cb := &countingCallback{}
			Expect(f.srv.BodySetForceIntegrationCallback(b, cb, "payload")).To(Succeed())
			f.tick(3)
			Expect(cb.calls).To(Equal(3))
			Expect(cb.data).To(Equal("payload"))

			cb.expired = true
			f.tick(3)
			Expect(cb.calls).To(Equal(3))
		})

		It("finds bodies with shape, box and ray queries", func() {
			f.ground()
			b := f.sphere(mgl64.Vec3{0, 3, 0})
			f.tick(1)
			st, err := f.srv.SpaceDirectState(f.space)
			Expect(err).NotTo(HaveOccurred())

			query := f.shape(shape.TypeSphere, 0.25)
			hits := st.IntersectShape(query, geom.Translation(mgl64.Vec3{0, 3, 0}), 0, nil, ^uint32(0))
			Expect(hits).To(HaveLen(1))
			Expect(hits[0].Object).To(Equal(b))

			culled := st.CullAABB(geom.NewAABB(mgl64.Vec3{-1, 2, -1}, mgl64.Vec3{2, 2, 2}), ^uint32(0))
			Expect(culled).NotTo(BeEmpty())

			hit, ok := st.IntersectRay(mgl64.Vec3{-5, 3, 0}, mgl64.Vec3{5, 3, 0}, nil, ^uint32(0))
			Expect(ok).To(BeTrue())
			Expect(hit.Object).To(Equal(b))
			Expect(hit.Position[0]).To(BeNumerically("~", -0.5, 0.05))
		})

		It("reports area monitor events from FlushQueries", func() {
			a := f.area(physics.AreaOverrideDisabled, 0, 0)
			var events []physics.AreaEvent
			Expect(f.srv.AreaSetMonitorCallback(a, physics.AreaMonitorFunc(func(ev physics.AreaEvent) {
				events = append(events, ev)
			}))).To(Succeed())
			b := f.sphere(mgl64.Vec3{})
			Expect(f.srv.BodyAttachObjectInstanceID(b, 42)).To(Succeed())

			f.tick(3)
			Expect(events).To(HaveLen(1))
			Expect(events[0].Status).To(Equal(physics.AreaBodyAdded))
			Expect(events[0].Object).To(Equal(b))
			Expect(events[0].InstanceID).To(Equal(uint64(42)))
		})
	})

	Describe("driver", func() {
		It("does nothing while inactive", func() {
			b := f.sphere(mgl64.Vec3{})
			f.srv.SetActive(false)
			f.tick(5)
			Expect(f.srv.StepCount()).To(BeZero())
			Expect(f.origin(b)).To(Equal(mgl64.Vec3{}))
			f.srv.SetActive(true)
			f.tick(2)
			Expect(f.srv.StepCount()).To(Equal(uint64(2)))
		})

		It("profiles each step", func() {
			f.sphere(mgl64.Vec3{})
			f.tick(1)
			p := f.srv.StepProfile()
			Expect(p.Step).To(BeNumerically(">", 0))
			Expect(p.Step).To(BeNumerically(">=", p.Phases[physics.ElapsedIntegrateForces]))
		})

		It("records debug contacts when asked", func() {
			Expect(f.srv.SpaceSetDebugContacts(f.space, 8)).To(Succeed())
			f.ground()
			f.body(physics.BodyModeRigid, f.shape(shape.TypeBox, mgl64.Vec3{0.5, 0.5, 0.5}), mgl64.Vec3{0, 0.45, 0})
			f.tick(2)
			Expect(f.srv.SpaceContactCount(f.space)).To(BeNumerically(">", 0))
			Expect(f.srv.SpaceContactCount(f.space)).To(BeNumerically("<=", 8))
		})
	})
})
