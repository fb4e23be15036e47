package integrators

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// Dormand-Prince 5(4) tableau.
var (
	dpC = [7]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1}
	dpA = [7][6]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}
	// fifth minus fourth order weights
	dpE = [7]float64{
		35.0/384 - 5179.0/57600,
		0,
		500.0/1113 - 7571.0/16695,
		125.0/192 - 393.0/640,
		-2187.0/6784 + 92097.0/339200,
		11.0/84 - 187.0/2100,
		-1.0 / 40,
	}
)

const maxSubsteps = 64

// RK45 covers each requested step with as many Dormand-Prince substeps as
// the error tolerance needs. Close encounters get finer substeps while the
// caller keeps its frame-sized dt.
type RK45 struct {
	Tol      float64
	safety   float64
	minScale float64
	maxScale float64

	k     [7]dynamo.State
	stage dynamo.State
	h     float64
}

func NewRK45() *RK45 {
	return &RK45{
		Tol:      1e-6,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 5.0,
	}
}

func (r *RK45) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	cur := x.Clone()
	end := t + dt
	h := dt
	if r.h > 0 && r.h < dt {
		h = r.h
	}

	for i := 0; i < maxSubsteps && t < end; i++ {
		last := h >= end-t
		if last {
			h = end - t
		}
		next, errRatio := r.attempt(sys, cur, t, h)
		if errRatio <= 1 || i == maxSubsteps-1 {
			cur = next
			t += h
			if !last {
				r.h = h
			}
		}
		h *= r.scale(errRatio)
	}

	// ran out of substeps: finish the interval in one go
	if t < end {
		cur, _ = r.attempt(sys, cur, t, end-t)
	}
	return cur
}

func (r *RK45) scale(errRatio float64) float64 {
	switch {
	case math.IsNaN(errRatio):
		return r.minScale
	case errRatio == 0:
		return r.maxScale
	case errRatio > 1:
		return math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
	default:
		return math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
	}
}

// attempt takes one embedded step and returns the fifth order result with
// its error relative to Tol.
func (r *RK45) attempt(sys dynamo.System, x dynamo.State, t, h float64) (dynamo.State, float64) {
	n := len(x)
	if len(r.stage) != n {
		r.stage = make(dynamo.State, n)
		for i := range r.k {
			r.k[i] = make(dynamo.State, n)
		}
	}

	copy(r.k[0], sys.Derive(x, t))
	for s := 1; s < 7; s++ {
		for i := 0; i < n; i++ {
			sum := 0.0
			for j := 0; j < s; j++ {
				sum += dpA[s][j] * r.k[j][i]
			}
			r.stage[i] = x[i] + h*sum
		}
		if s == 6 {
			break
		}
		copy(r.k[s], sys.Derive(r.stage, t+dpC[s]*h))
	}

	out := r.stage.Clone()
	copy(r.k[6], sys.Derive(out, t+h))

	errMax := 0.0
	for i := 0; i < n; i++ {
		est := 0.0
		for j := 0; j < 7; j++ {
			est += dpE[j] * r.k[j][i]
		}
		sc := math.Abs(x[i]) + math.Abs(h*r.k[0][i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(h*est)/sc)
	}
	return out, errMax / r.Tol
}
