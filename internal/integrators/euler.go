package integrators

import "github.com/san-kum/gravsim/internal/dynamo"

// Euler is the explicit forward Euler method. Kept for comparison runs;
// it gains energy on every orbit.
type Euler struct {
	acc []float64
}

func NewEuler() *Euler {
	return &Euler{}
}

// Step moves positions with the old velocities and velocities with the
// old accelerations.
func (e *Euler) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	half := len(x) / 2
	e.acc = grow(e.acc, half)
	accel(sys, x, t, e.acc)

	out := make(dynamo.State, len(x))
	for i, a := range e.acc {
		v := x[half+i]
		out[i] = x[i] + v*dt
		out[half+i] = v + a*dt
	}
	return out
}
