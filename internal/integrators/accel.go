package integrators

import "github.com/san-kum/gravsim/internal/dynamo"

// All integrators here expect the state laid out as positions followed by
// velocities, with d(position)/dt equal to the velocity half.

// accel writes the accelerations of x into dst, which must hold len(x)/2
// values. Systems that can skip the velocity half of Derive do.
func accel(sys dynamo.System, x dynamo.State, t float64, dst []float64) {
	if a, ok := sys.(dynamo.Accelerator); ok {
		a.Accel(x, dst)
		return
	}
	copy(dst, sys.Derive(x, t)[len(x)/2:])
}

// grow returns buf resized to n, reusing its storage when it fits.
func grow(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}
