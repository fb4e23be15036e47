package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the magnitude of the real FFT of data with its
// mean removed, one value per frequency bin 0..n/2.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return nil
	}

	mean := stat.Mean(data, nil)
	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	coeff := fourier.NewFFT(n).Coefficients(nil, centered)
	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantPeriod estimates the period of the strongest oscillation in a
// series sampled every dt seconds. It returns 0 when the series is too
// short to hold one full cycle or has no oscillation.
func DominantPeriod(data []float64, dt float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 3 || dt <= 0 {
		return 0
	}

	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if ps[peak] == 0 {
		return 0
	}

	// parabolic interpolation between neighbouring bins
	k := float64(peak)
	if peak+1 < len(ps) {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if den := a - 2*b + c; den != 0 {
			k += 0.5 * (a - c) / den
		}
	}
	if k <= 0 {
		return 0
	}
	return float64(len(data)) * dt / k
}

// CrossingPeriod estimates the period from upward crossings of the mean,
// interpolating each crossing time linearly. It suits series holding only
// a few cycles, where spectral bins are too coarse.
func CrossingPeriod(data []float64, dt float64) float64 {
	if len(data) < 3 || dt <= 0 {
		return 0
	}
	mean := stat.Mean(data, nil)

	var crossings []float64
	for i := 1; i < len(data); i++ {
		a, b := data[i-1]-mean, data[i]-mean
		if a < 0 && b >= 0 {
			crossings = append(crossings, (float64(i-1)+a/(a-b))*dt)
		}
	}
	if len(crossings) < 2 {
		return 0
	}
	span := crossings[len(crossings)-1] - crossings[0]
	if span <= 0 || math.IsNaN(span) {
		return 0
	}
	return span / float64(len(crossings)-1)
}
