package physics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// BarnesHutMin is the smallest world for which a positive Params.Theta
// switches the field to the Barnes-Hut approximation.
const BarnesHutMin = 64

var (
	_ dynamo.Accelerator = (*Field)(nil)
	_ dynamo.Hamiltonian = (*Field)(nil)
)

// Field is the gravitational vector field of a world, expressed as a
// dynamo.System over the packed state of World.Pack. Masses and params
// are captured when the field is built.
type Field struct {
	Masses []float64
	Params dynamo.Params
	ax, ay []float64
}

func NewField(w *World, p dynamo.Params) *Field {
	n := w.Len()
	return &Field{
		Masses: w.Masses(),
		Params: p,
		ax:     make([]float64, n),
		ay:     make([]float64, n),
	}
}

func (f *Field) StateDim() int { return len(f.Masses) * 4 }

// Derive returns [velocities..., accelerations...].
func (f *Field) Derive(x dynamo.State, t float64) dynamo.State {
	half := len(f.Masses) * 2
	dx := make(dynamo.State, len(x))
	copy(dx[:half], x[half:])
	f.Accel(x, dx[half:])
	return dx
}

// Accel writes the acceleration of every body, interleaved x then y, into
// dst. Only the position half of x is read.
func (f *Field) Accel(x dynamo.State, dst []float64) {
	if !f.useBarnesHut() || !f.accelBarnesHut(x) {
		f.accelDirect(x)
	}
	for i := range f.ax {
		dst[i*2] = f.ax[i]
		dst[i*2+1] = f.ay[i]
	}
}

func (f *Field) useBarnesHut() bool {
	return f.Params.Theta > 0 && f.Params.PlanetaryForces && len(f.Masses) >= BarnesHutMin
}

func (f *Field) accelDirect(x dynamo.State) {
	n := len(f.Masses)
	g := f.Params.G
	eps := f.Params.Proximity
	for i := range f.ax {
		f.ax[i], f.ay[i] = 0, 0
	}

	for i := 0; i < n; i++ {
		xi, yi := x[i*2], x[i*2+1]

		for j := i + 1; j < n; j++ {
			ij := Contributes(i, j, f.Params.PlanetaryForces)
			ji := Contributes(j, i, f.Params.PlanetaryForces)
			if !ij && !ji {
				continue
			}

			rx := x[j*2] - xi
			ry := x[j*2+1] - yi
			d2 := rx*rx + ry*ry
			if d2 <= eps || d2 == 0 {
				continue
			}

			rInv := 1.0 / math.Sqrt(d2)
			r3Inv := rInv * rInv * rInv

			if ij {
				fij := g * f.Masses[j] * r3Inv
				f.ax[i] += fij * rx
				f.ay[i] += fij * ry
			}
			if ji {
				fji := g * f.Masses[i] * r3Inv
				f.ax[j] -= fji * rx
				f.ay[j] -= fji * ry
			}
		}
	}
}

// particle is a unit mass tree entry. Bodies are grouped into one plane
// per distinct mass, so the plane's mass centers are plain centroids and
// its aggregate masses are body counts.
type particle struct {
	pos r2.Vec
}

func (p *particle) Coord2() r2.Vec { return p.pos }
func (p *particle) Mass() float64  { return 1 }

// accelBarnesHut fills ax, ay from one Barnes-Hut plane per mass class.
// It reports false, leaving the caller to sum directly, when a plane
// cannot be built (coincident bodies or an extent beyond float
// precision).
func (f *Field) accelBarnesHut(x dynamo.State) bool {
	n := len(f.Masses)
	ps := make([]*particle, n)
	classes := make(map[float64][]barneshut.Particle2)
	var order []float64
	for i := range ps {
		ps[i] = &particle{pos: r2.Vec{X: x[i*2], Y: x[i*2+1]}}
		m := f.Masses[i]
		if _, ok := classes[m]; !ok {
			order = append(order, m)
		}
		classes[m] = append(classes[m], ps[i])
	}

	planes := make([]barneshut.Plane, len(order))
	for k, m := range order {
		planes[k].Particles = classes[m]
		if err := planes[k].Reset(); err != nil {
			return false
		}
	}

	for i := range f.ax {
		f.ax[i], f.ay[i] = 0, 0
	}
	eps := f.Params.Proximity
	for k, m := range order {
		mass := m
		kernel := func(p1, p2 barneshut.Particle2, _, count float64, v r2.Vec) r2.Vec {
			if p2 != nil {
				// leaf centers are not usable as positions
				v = r2.Sub(p2.Coord2(), p1.Coord2())
			}
			d2 := r2.Norm2(v)
			if d2 <= eps || d2 == 0 {
				return r2.Vec{}
			}
			return r2.Scale(mass*count/(d2*math.Sqrt(d2)), v)
		}
		for i, p := range ps {
			a := planes[k].ForceOn(p, f.Params.Theta, kernel)
			f.ax[i] += f.Params.G * a.X
			f.ay[i] += f.Params.G * a.Y
		}
	}
	return true
}

// Energy is kinetic plus potential energy of the packed state, counting
// only the pairs that interact under the planetary flag.
func (f *Field) Energy(x dynamo.State) float64 {
	n := len(f.Masses)
	half := n * 2
	ke := 0.0
	pe := 0.0

	for i := 0; i < n; i++ {
		vx, vy := x[half+i*2], x[half+i*2+1]
		ke += 0.5 * f.Masses[i] * (vx*vx + vy*vy)

		for j := i + 1; j < n; j++ {
			if !Contributes(j, i, f.Params.PlanetaryForces) {
				continue
			}
			rx := x[j*2] - x[i*2]
			ry := x[j*2+1] - x[i*2+1]
			d2 := rx*rx + ry*ry
			if d2 <= f.Params.Proximity || d2 == 0 {
				continue
			}
			pe -= f.Params.G * f.Masses[i] * f.Masses[j] / math.Sqrt(d2)
		}
	}

	return ke + pe
}

// Momentum is the total linear momentum of the packed state.
func (f *Field) Momentum(x dynamo.State) (px, py float64) {
	half := len(f.Masses) * 2
	for i, m := range f.Masses {
		px += m * x[half+i*2]
		py += m * x[half+i*2+1]
	}
	return
}

// AngularMomentum is the total angular momentum about the origin.
func (f *Field) AngularMomentum(x dynamo.State) float64 {
	half := len(f.Masses) * 2
	L := 0.0
	for i, m := range f.Masses {
		xi, yi := x[i*2], x[i*2+1]
		vx, vy := x[half+i*2], x[half+i*2+1]
		L += m * (xi*vy - yi*vx)
	}
	return L
}
