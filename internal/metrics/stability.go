package metrics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/scenario"
)

// Stability is the fraction of frames in which no body moves faster than
// threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f scenario.Frame) {
	s.samples++
	for _, b := range f.Bodies {
		if b.LinearVelocity.Len() > s.threshold || math.IsNaN(b.Position.Len()) {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// PeakSpeed is the highest linear speed of any body.
type PeakSpeed struct {
	peak float64
}

func NewPeakSpeed() *PeakSpeed { return &PeakSpeed{} }

func (p *PeakSpeed) Name() string { return "peak_speed" }

func (p *PeakSpeed) Observe(f scenario.Frame) {
	for _, b := range f.Bodies {
		p.peak = math.Max(p.peak, b.LinearVelocity.Len())
	}
}

func (p *PeakSpeed) Value() float64 { return p.peak }
func (p *PeakSpeed) Reset()         { p.peak = 0 }
