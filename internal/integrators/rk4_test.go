package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// oscillator is x'' = -x with state [x, v].
type oscillator struct{}

func (s *oscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (s *oscillator) Accel(x dynamo.State, dst []float64) { dst[0] = -x[0] }

func (s *oscillator) StateDim() int { return 2 }

// deriveOnly hides Accel so integrators fall back to Derive.
type deriveOnly struct{ sys dynamo.System }

func (d deriveOnly) Derive(x dynamo.State, t float64) dynamo.State { return d.sys.Derive(x, t) }
func (d deriveOnly) StateDim() int                                 { return d.sys.StateDim() }

func energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

func TestRK4Accuracy(t *testing.T) {
	sys := &oscillator{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(sys, x, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestSemiImplicitEulerOrder(t *testing.T) {
	sys := &oscillator{}
	x := dynamo.State{1.0, 0.0}
	dt := 0.1

	got := NewSemiImplicitEuler().Step(sys, x, 0, dt)

	// v1 = v0 - x0*dt, x1 = x0 + v1*dt
	v1 := -dt
	x1 := 1 + v1*dt
	if got[1] != v1 || got[0] != x1 {
		t.Errorf("step = %v, want [%v %v]", got, x1, v1)
	}

	if x[0] != 1 || x[1] != 0 {
		t.Error("step mutated its input")
	}
}

func TestEnergyDrift(t *testing.T) {
	tests := []struct {
		name     string
		integ    string
		maxDrift float64
	}{
		{"symplectic", "symplectic", 0.06},
		{"verlet", "verlet", 0.01},
		{"leapfrog", "leapfrog", 0.01},
		{"rk4", "rk4", 1e-3},
		{"rk45", "rk45", 1e-4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			integ, err := New(tt.integ)
			if err != nil {
				t.Fatal(err)
			}
			sys := &oscillator{}
			x := dynamo.State{1.0, 0.0}
			e0 := energy(x)
			dt := 0.05

			maxDrift := 0.0
			for i := 0; i < 20000; i++ {
				x = integ.Step(sys, x, float64(i)*dt, dt)
				maxDrift = math.Max(maxDrift, math.Abs(energy(x)-e0)/e0)
			}
			if maxDrift > tt.maxDrift {
				t.Errorf("energy drift %.4f exceeds %.4f", maxDrift, tt.maxDrift)
			}
		})
	}
}

func TestExplicitEulerGainsEnergy(t *testing.T) {
	sys := &oscillator{}
	x := dynamo.State{1.0, 0.0}
	integ := NewEuler()
	for i := 0; i < 1000; i++ {
		x = integ.Step(sys, x, 0, 0.05)
	}
	if energy(x) <= 0.5 {
		t.Errorf("expected explicit Euler to gain energy, got %f", energy(x))
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		if _, err := New(name); err != nil {
			t.Errorf("New(%q): %v", name, err)
		}
	}

	if _, err := New("rk9"); !errors.Is(err, dynamo.ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}

	if _, err := New(Default); err != nil {
		t.Errorf("default integrator: %v", err)
	}
}

func TestRK45Accuracy(t *testing.T) {
	sys := &oscillator{}
	integ := NewRK45()

	x := dynamo.State{1.0, 0.0}
	// one coarse request forces several substeps
	x = integ.Step(sys, x, 0, 1.0)

	if math.Abs(x[0]-math.Cos(1)) > 1e-5 || math.Abs(x[1]+math.Sin(1)) > 1e-5 {
		t.Errorf("got %v, want [%v %v]", x, math.Cos(1), -math.Sin(1))
	}
	if integ.h <= 0 || integ.h >= 1 {
		t.Errorf("substep size %v not carried over", integ.h)
	}
}

func TestAccelMatchesDerive(t *testing.T) {
	w := physics.NewWorld(
		physics.Body{ID: 1, Mass: 1e6, Radius: 20},
		physics.Body{ID: 2, Mass: 1, Radius: 5, Pos: r2.Vec{X: 200}, Vel: r2.Vec{Y: 70}},
		physics.Body{ID: 3, Mass: 2, Radius: 5, Pos: r2.Vec{X: -150, Y: 40}, Vel: r2.Vec{X: 10, Y: -60}},
	)
	p := dynamo.DefaultParams()
	p.PlanetaryForces = true
	field := physics.NewField(w, p)

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			fast, _ := New(name)
			slow, _ := New(name)
			x, y := w.Pack(), w.Pack()
			for i := 0; i < 50; i++ {
				x = fast.Step(field, x, 0, 0.01)
				y = slow.Step(deriveOnly{field}, y, 0, 0.01)
			}
			for i := range x {
				if math.Abs(x[i]-y[i]) > 1e-9*(1+math.Abs(y[i])) {
					t.Fatalf("component %d: accel path %g, derive path %g", i, x[i], y[i])
				}
			}
		})
	}
}
