// Package scenario builds configured worlds on a physics server and steps
// them, recording per-step body samples.
package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/server"
)

// BodySample is the state of one body after a step.
type BodySample struct {
	Name            string
	Mode            physics.BodyMode
	Position        mgl64.Vec3
	Basis           mgl64.Mat3
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Mass            float64
	Inertia         mgl64.Mat3
	Sleeping        bool
	Contacts        int
}

// Frame is everything observed after one tick.
type Frame struct {
	Step    int
	Time    float64
	Bodies  []BodySample
	Active  int
	Pairs   int
	Islands int
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(f Frame)
}

type Result struct {
	Name     string
	Frames   []Frame
	Events   []Event
	Metrics  map[string]float64
	Steps    int
	Elapsed  time.Duration
	Profile  server.StepProfile
	Finished bool
}

// Runner owns a server with one scenario built on it.
type Runner struct {
	cfg       *config.Config
	srv       *server.Server
	world     *World
	metrics   []Metric
	observers []Observer
	step      int
}

// New builds cfg on a fresh server created with opts. Without a WithLogger
// option the server is silent.
func New(cfg *config.Config, opts ...server.Option) (*Runner, error) {
	srv := server.New(append([]server.Option{server.WithLogger(nil)}, opts...)...)
	w, err := Build(cfg, srv)
	if err != nil {
		srv.Finish()
		return nil, err
	}
	return &Runner{cfg: cfg, srv: srv, world: w}, nil
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) Server() *server.Server      { return r.srv }
func (r *Runner) World() *World               { return r.world }
func (r *Runner) Config() *config.Config      { return r.cfg }
func (r *Runner) StepIndex() int              { return r.step }
func (r *Runner) Events() []Event             { return r.world.events }
func (r *Runner) Close()                      { r.srv.Finish() }
func (r *Runner) Time() float64               { return float64(r.step) * r.cfg.Dt }
func (r *Runner) Done() bool                  { return r.step >= r.cfg.Steps }
func (r *Runner) Profile() server.StepProfile { return r.srv.StepProfile() }

// Sample reads the current state of every body.
func (r *Runner) Sample() (Frame, error) {
	f := Frame{
		Step:    r.step,
		Time:    r.Time(),
		Bodies:  make([]BodySample, 0, len(r.world.Bodies)),
		Active:  r.srv.ProcessInfo(server.InfoActiveObjects),
		Pairs:   r.srv.ProcessInfo(server.InfoCollisionPairs),
		Islands: r.srv.ProcessInfo(server.InfoIslandCount),
	}
	for _, b := range r.world.Bodies {
		st, err := r.srv.BodyDirectState(b.RID)
		if err != nil {
			return f, fmt.Errorf("sample %q: %w", b.Name, err)
		}
		xf := st.Transform()
		s := BodySample{
			Name:            b.Name,
			Mode:            r.srv.BodyMode(b.RID),
			Position:        xf.Origin,
			Basis:           xf.Basis,
			LinearVelocity:  st.LinearVelocity(),
			AngularVelocity: st.AngularVelocity(),
			Sleeping:        st.IsSleeping(),
			Contacts:        st.ContactCount(),
		}
		if im := st.InverseMass(); im > 0 {
			s.Mass = 1 / im
		}
		if inv := st.InverseInertiaTensor(); inv.Det() != 0 {
			s.Inertia = inv.Inv()
		}
		f.Bodies = append(f.Bodies, s)
	}
	return f, nil
}

// Advance runs one tick and returns the resulting frame.
func (r *Runner) Advance() (Frame, error) {
	r.world.step = r.step + 1
	r.srv.Step(r.cfg.Dt)
	r.srv.FlushQueries()
	r.step++

	f, err := r.Sample()
	if err != nil {
		return f, err
	}
	for _, m := range r.metrics {
		m.Observe(f)
	}
	for _, o := range r.observers {
		o.OnStep(f)
	}
	return f, nil
}

// Run steps until the configured step count or ctx is done. A cancelled run
// returns the partial result along with ctx.Err().
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		Name:    r.cfg.Name,
		Frames:  make([]Frame, 0, r.cfg.Steps-r.step+1),
		Metrics: make(map[string]float64),
	}
	for _, m := range r.metrics {
		m.Reset()
	}

	f, err := r.Sample()
	if err != nil {
		return nil, err
	}
	result.Frames = append(result.Frames, f)

	start := time.Now()
	defer func() {
		result.Elapsed = time.Since(start)
		result.Events = append(result.Events[:0], r.world.events...)
		result.Profile = r.srv.StepProfile()
		for _, m := range r.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}()

	for !r.Done() {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		f, err := r.Advance()
		if err != nil {
			return result, err
		}
		result.Frames = append(result.Frames, f)
		result.Steps++
	}
	result.Finished = true
	return result, nil
}
