// Package metrics summarises scenario runs.
package metrics

import (
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/scenario"
)

// Default returns a fresh set of the standard run metrics for cfg.
func Default(cfg *config.Config) []scenario.Metric {
	up := cfg.Space.GravityVector.Mul(-1)
	if l := up.Len(); l > 0 {
		up = up.Mul(1 / l)
	}
	return []scenario.Metric{
		NewEnergy(),
		NewEnergyDrift(cfg.Space.Gravity, up),
		NewStability(100),
		NewPeakSpeed(),
		NewSleepFraction(),
		NewIslands(),
		NewContacts(),
	}
}
