package scenario_test

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/scenario"
)

func run(cfg *config.Config) *scenario.Result {
	r, err := scenario.New(cfg)
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(r.Close)
	for _, m := range metrics.Default(cfg) {
		r.AddMetric(m)
	}
	res, err := r.Run(context.Background())
	Expect(err).NotTo(HaveOccurred())
	return res
}

func last(res *scenario.Result, name string) scenario.BodySample {
	f := res.Frames[len(res.Frames)-1]
	for _, b := range f.Bodies {
		if b.Name == name {
			return b
		}
	}
	Fail("no body " + name)
	return scenario.BodySample{}
}

var _ = Describe("Build", func() {
	It("creates every named object", func() {
		r, err := scenario.New(config.GetPreset("wind"))
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		w := r.World()
		Expect(w.Shapes).To(HaveLen(4))
		Expect(w.Bodies).To(HaveLen(3))
		Expect(w.Areas).To(HaveLen(1))

		ball, ok := w.Body("ball")
		Expect(ok).To(BeTrue())
		Expect(r.Server().BodyMode(ball)).To(Equal(physics.BodyModeRigid))
		_, ok = w.Body("nobody")
		Expect(ok).To(BeFalse())

		Expect(r.Server().AreaSpaceOverrideMode(w.Areas[0].RID)).To(Equal(physics.AreaOverrideCombine))
	})

	It("rejects an invalid scenario", func() {
		cfg := config.GetPreset("drop")
		cfg.Bodies[1].Shapes = []string{"missing"}
		_, err := scenario.New(cfg)
		Expect(err).To(MatchError(config.ErrInvalidConfig))
	})

	It("applies joint tuning", func() {
		r, err := scenario.New(config.GetPreset("hinge"))
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		j := r.World().Joints[0].RID
		srv := r.Server()
		Expect(srv.JointType(j)).To(Equal(physics.JointHinge))
		Expect(srv.HingeJointFlag(j, physics.HingeFlagUseLimit)).To(BeTrue())
		Expect(srv.HingeJointFlag(j, physics.HingeFlagEnableMotor)).To(BeTrue())
		Expect(srv.HingeJointParam(j, physics.HingeParamLimitLower)).To(Equal(-1.5))
		Expect(srv.HingeJointParam(j, physics.HingeParamMotorTargetVelocity)).To(Equal(1.0))
	})
})

var _ = Describe("Runner", func() {
	It("records a frame per step plus the initial one", func() {
		cfg := config.GetPreset("drop")
		cfg.Steps = 30
		res := run(cfg)

		Expect(res.Finished).To(BeTrue())
		Expect(res.Steps).To(Equal(30))
		Expect(res.Frames).To(HaveLen(31))
		Expect(res.Frames[0].Step).To(Equal(0))
		Expect(res.Frames[30].Time).To(BeNumerically("~", 0.5, 1e-9))
		Expect(res.Metrics).To(HaveKey("kinetic_energy"))
	})

	It("is deterministic", func() {
		cfg := config.GetPreset("stack")
		cfg.Steps = 120
		a, b := run(cfg), run(cfg.Clone())
		Expect(a.Frames[len(a.Frames)-1].Bodies).To(Equal(b.Frames[len(b.Frames)-1].Bodies))
	})

	It("keeps the pendulum on its rod", func() {
		cfg := config.GetPreset("pendulum")
		cfg.Steps = 120
		res := run(cfg)
		for _, f := range res.Frames {
			Expect(f.Bodies[0].Position.Len()).To(BeNumerically("~", 2, 0.2))
		}
		Expect(last(res, "bob").Position.Y()).To(BeNumerically("<", 0))
	})

	It("keeps the door on its hinge", func() {
		cfg := config.GetPreset("hinge")
		cfg.Steps = 60
		res := run(cfg)
		door := last(res, "door")
		anchor := door.Basis.Mul3x1(mgl64.Vec3{-0.5, 0, 0}).Add(door.Position)
		Expect(anchor.Sub(mgl64.Vec3{0, 1, 0}).Len()).To(BeNumerically("<", 0.1))
	})

	It("pushes bodies through a wind area", func() {
		cfg := config.GetPreset("wind")
		cfg.Steps = 60
		res := run(cfg)

		Expect(last(res, "ball").Position.X()).To(BeNumerically(">", -3))
		added := false
		for _, ev := range res.Events {
			if ev.Area == "gust" && ev.Object == "ball" && ev.Added {
				added = true
				Expect(ev.Step).To(BeNumerically(">=", 1))
			}
		}
		Expect(added).To(BeTrue())
	})

	It("puts resting bodies to sleep", func() {
		res := run(config.GetPreset("sleepers"))
		Expect(res.Metrics["sleeping"]).To(Equal(1.0))
		Expect(last(res, "boxb").Sleeping).To(BeTrue())
		Expect(res.Frames[len(res.Frames)-1].Active).To(Equal(0))
	})

	It("stops on a cancelled context", func() {
		r, err := scenario.New(config.GetPreset("drop"))
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := r.Run(ctx)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.Finished).To(BeFalse())
		Expect(res.Frames).To(HaveLen(1))
	})

	It("notifies observers on every step", func() {
		cfg := config.GetPreset("drop")
		cfg.Steps = 10
		r, err := scenario.New(cfg)
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		obs := &countingObserver{}
		r.AddObserver(obs)
		_, err = r.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(obs.steps).To(Equal([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}))
		Expect(r.Done()).To(BeTrue())
	})
})

type countingObserver struct{ steps []int }

func (o *countingObserver) OnStep(f scenario.Frame) { o.steps = append(o.steps, f.Step) }

var _ = Describe("Jitter", func() {
	base := config.GetPreset("stack")

	It("is reproducible per seed", func() {
		a := scenario.Jitter(base, 7, 0.05)
		b := scenario.Jitter(base, 7, 0.05)
		c := scenario.Jitter(base, 8, 0.05)
		Expect(a.Bodies).To(Equal(b.Bodies))
		Expect(a.Bodies[1].Position).NotTo(Equal(c.Bodies[1].Position))
		Expect(a.Seed).To(Equal(int64(7)))
	})

	It("leaves static bodies and the source alone", func() {
		a := scenario.Jitter(base, 3, 0.5)
		Expect(a.Bodies[0].Position).To(Equal(base.Bodies[0].Position))
		Expect(base.Bodies[1].Position).To(Equal(config.GetPreset("stack").Bodies[1].Position))
		for i := 1; i < len(a.Bodies); i++ {
			d := a.Bodies[i].Position.Sub(base.Bodies[i].Position)
			for k := 0; k < 3; k++ {
				Expect(d[k]).To(BeNumerically("<=", 0.5))
				Expect(d[k]).To(BeNumerically(">=", -0.5))
			}
		}
	})
})

var _ = Describe("Ensemble", func() {
	It("runs every seed in order", func() {
		cfg := config.GetPreset("drop")
		cfg.Steps = 20
		cfg.Jitter = 0.1

		e := scenario.NewEnsemble(cfg, 4, 100, func() []scenario.Metric { return metrics.Default(cfg) })
		e.SetLimit(2)
		results, err := e.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))
		for _, res := range results {
			Expect(res.Finished).To(BeTrue())
			Expect(res.Metrics).To(HaveKey("peak_speed"))
		}
		Expect(results[0].Frames[0].Bodies[1].Position).NotTo(Equal(results[1].Frames[0].Bodies[1].Position))
	})

	It("matches a single run without jitter", func() {
		cfg := config.GetPreset("drop")
		cfg.Steps = 20

		results, err := scenario.NewEnsemble(cfg, 2, 0, nil).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		single := run(cfg)
		Expect(results[0].Frames[20].Bodies).To(Equal(single.Frames[20].Bodies))
		Expect(results[1].Frames[20].Bodies).To(Equal(single.Frames[20].Bodies))
	})
})
