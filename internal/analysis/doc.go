// Package analysis inspects recorded body series.
//
//   - [PowerSpectrum], [DominantFrequency]: spectral content of a series
//   - [Crossings], [MeanPeriod]: period from upward threshold crossings
//   - [NewPortrait], [Portrait.ASCII]: phase portraits of two series
//
// Series are sampled once per step, so frequencies are in cycles per
// second given the step length dt:
//
//	y, _ := traj.Series("bob", "x")
//	f, _ := analysis.DominantFrequency(y, cfg.Dt)
package analysis
