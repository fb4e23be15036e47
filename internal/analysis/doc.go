// Package analysis estimates orbital periods from sampled series.
//
//   - [PowerSpectrum]: FFT magnitude of a mean-removed series
//   - [DominantPeriod]: period of the strongest spectral peak
//   - [CrossingPeriod]: period from upward mean crossings
//
// # Orbital Period
//
// Sampling a body's distance to the primary each frame gives a series
// whose period is the radial (anomalistic) period of the orbit:
//
//	period := analysis.DominantPeriod(report.Distance, dt)
package analysis
