package integrators

import "github.com/san-kum/gravsim/internal/dynamo"

// Verlet is velocity Verlet: positions from a second order Taylor step,
// velocities from the mean of the old and new accelerations.
type Verlet struct {
	a0, a1 []float64
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	half := len(x) / 2
	v.a0 = grow(v.a0, half)
	v.a1 = grow(v.a1, half)

	accel(sys, x, t, v.a0)

	// velocities are carried over so Derive-only systems see a whole state
	out := x.Clone()
	for i, a := range v.a0 {
		out[i] = x[i] + x[half+i]*dt + 0.5*a*dt*dt
	}
	accel(sys, out, t+dt, v.a1)

	for i := range v.a1 {
		out[half+i] = x[half+i] + 0.5*(v.a0[i]+v.a1[i])*dt
	}
	return out
}

// Leapfrog is the kick-drift-kick form.
type Leapfrog struct {
	acc []float64
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	half := len(x) / 2
	h := 0.5 * dt
	l.acc = grow(l.acc, half)

	accel(sys, x, t, l.acc)
	out := make(dynamo.State, len(x))
	for i, a := range l.acc {
		vh := x[half+i] + a*h
		out[half+i] = vh
		out[i] = x[i] + vh*dt
	}

	accel(sys, out, t+dt, l.acc)
	for i, a := range l.acc {
		out[half+i] += a * h
	}
	return out
}
