package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/rigidsim/internal/scenario"
)

// KineticEnergy returns the translational plus rotational energy of b.
// Bodies without mass contribute nothing.
func KineticEnergy(b scenario.BodySample) float64 {
	if b.Mass == 0 {
		return 0
	}
	v, w := b.LinearVelocity, b.AngularVelocity
	return 0.5*b.Mass*v.Dot(v) + 0.5*w.Dot(b.Inertia.Mul3x1(w))
}

// PotentialEnergy is m g h with h measured along up.
func PotentialEnergy(b scenario.BodySample, gravity float64, up mgl64.Vec3) float64 {
	return b.Mass * gravity * b.Position.Dot(up)
}

func frameKinetic(f scenario.Frame) float64 {
	ke := 0.0
	for _, b := range f.Bodies {
		ke += KineticEnergy(b)
	}
	return ke
}

// Energy is the mean kinetic energy over all observed frames.
type Energy struct {
	name    string
	samples int
	total   float64
}

func NewEnergy() *Energy {
	return &Energy{name: "kinetic_energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f scenario.Frame) {
	e.total += frameKinetic(f)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative change of kinetic plus potential
// energy from the first observed frame.
type EnergyDrift struct {
	name          string
	gravity       float64
	up            mgl64.Vec3
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(gravity float64, up mgl64.Vec3) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		gravity: gravity,
		up:      up,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Total(f scenario.Frame) float64 {
	total := 0.0
	for _, b := range f.Bodies {
		total += KineticEnergy(b) + PotentialEnergy(b, e.gravity, e.up)
	}
	return total
}

func (e *EnergyDrift) Observe(f scenario.Frame) {
	energy := e.Total(f)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
