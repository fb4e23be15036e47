package integrators

import "github.com/san-kum/gravsim/internal/dynamo"

// RK4 is the classical fourth order Runge-Kutta method. With the
// position derivative being the velocity, each stage only needs the
// accelerations at the stage positions plus the stage velocity.
type RK4 struct {
	a     [4][]float64
	v     [4][]float64
	stage dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	for k := range r.a {
		r.a[k] = grow(r.a[k], half)
		r.v[k] = grow(r.v[k], half)
	}
	if len(r.stage) != n {
		r.stage = make(dynamo.State, n)
	}

	copy(r.v[0], x[half:])
	accel(sys, x, t, r.a[0])

	// stage k+1 sits at x + c*dt*(v_k, a_k)
	for k, c := range [3]float64{0.5, 0.5, 1} {
		for i := 0; i < half; i++ {
			r.stage[i] = x[i] + c*dt*r.v[k][i]
			r.v[k+1][i] = x[half+i] + c*dt*r.a[k][i]
			r.stage[half+i] = r.v[k+1][i]
		}
		accel(sys, r.stage, t+c*dt, r.a[k+1])
	}

	out := make(dynamo.State, n)
	dt6 := dt / 6
	for i := 0; i < half; i++ {
		out[i] = x[i] + dt6*(r.v[0][i]+2*r.v[1][i]+2*r.v[2][i]+r.v[3][i])
		out[half+i] = x[half+i] + dt6*(r.a[0][i]+2*r.a[1][i]+2*r.a[2][i]+r.a[3][i])
	}
	return out
}
