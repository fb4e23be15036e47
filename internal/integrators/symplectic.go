package integrators

import "github.com/san-kum/gravsim/internal/dynamo"

// SemiImplicitEuler is the symplectic Euler method: velocity is advanced
// first, and the new velocity moves the position. Orbital energy drift
// stays bounded where explicit Euler spirals outward.
type SemiImplicitEuler struct {
	acc []float64
}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (s *SemiImplicitEuler) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	half := len(x) / 2

	// accelerations all come from the single snapshot x
	s.acc = grow(s.acc, half)
	accel(sys, x, t, s.acc)

	out := make(dynamo.State, len(x))
	for i, a := range s.acc {
		v := x[half+i] + a*dt
		out[half+i] = v
		out[i] = x[i] + v*dt
	}
	return out
}
