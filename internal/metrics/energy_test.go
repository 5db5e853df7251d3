package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/scenario"
)

func sample(mass float64, y float64, v, w mgl64.Vec3) scenario.BodySample {
	return scenario.BodySample{
		Mode:            physics.BodyModeRigid,
		Mass:            mass,
		Inertia:         mgl64.Diag3(mgl64.Vec3{2, 2, 2}),
		Position:        mgl64.Vec3{0, y, 0},
		LinearVelocity:  v,
		AngularVelocity: w,
	}
}

func frame(bodies ...scenario.BodySample) scenario.Frame {
	return scenario.Frame{Bodies: bodies}
}

func TestKineticEnergy(t *testing.T) {
	tests := []struct {
		name string
		b    scenario.BodySample
		want float64
	}{
		{"rest", sample(1, 0, mgl64.Vec3{}, mgl64.Vec3{}), 0},
		{"linear", sample(2, 0, mgl64.Vec3{3, 0, 0}, mgl64.Vec3{}), 9},
		{"angular", sample(1, 0, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}), 1},
		{"static", sample(0, 0, mgl64.Vec3{5, 0, 0}, mgl64.Vec3{}), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KineticEnergy(tt.b); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestEnergyReset(t *testing.T) {
	m := NewEnergy()

	m.Observe(frame(sample(1, 0, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{})))
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift(10, mgl64.Vec3{0, 1, 0})

	// free fall trades height for speed exactly
	m.Observe(frame(sample(1, 5, mgl64.Vec3{}, mgl64.Vec3{})))
	m.Observe(frame(sample(1, 0, mgl64.Vec3{0, -10, 0}, mgl64.Vec3{})))
	if m.Value() > 1e-12 {
		t.Errorf("expected no drift, got %f", m.Value())
	}

	m.Observe(frame(sample(1, 0, mgl64.Vec3{}, mgl64.Vec3{})))
	if math.Abs(m.Value()-1) > 1e-12 {
		t.Errorf("expected full drift, got %f", m.Value())
	}
}

func TestStability(t *testing.T) {
	m := NewStability(1)
	m.Observe(frame(sample(1, 0, mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{})))
	m.Observe(frame(sample(1, 0, mgl64.Vec3{2, 0, 0}, mgl64.Vec3{})))
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}

	p := NewPeakSpeed()
	p.Observe(frame(sample(1, 0, mgl64.Vec3{0, 3, 4}, mgl64.Vec3{})))
	if p.Value() != 5 {
		t.Errorf("expected peak 5, got %f", p.Value())
	}
}

func TestSleepFraction(t *testing.T) {
	asleep := sample(1, 0, mgl64.Vec3{}, mgl64.Vec3{})
	asleep.Sleeping = true
	ground := scenario.BodySample{Mode: physics.BodyModeStatic, Sleeping: true}

	m := NewSleepFraction()
	m.Observe(frame(asleep, sample(1, 0, mgl64.Vec3{}, mgl64.Vec3{}), ground))
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}
}

func TestDefault(t *testing.T) {
	ms := Default(config.DefaultConfig())
	seen := make(map[string]bool)
	for _, m := range ms {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if !seen["energy_drift"] || !seen["sleeping"] {
		t.Errorf("missing standard metrics: %v", seen)
	}
}
