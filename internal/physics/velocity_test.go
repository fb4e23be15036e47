package physics

import (
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestOrbitalVelocity(t *testing.T) {
	tests := []struct {
		name string
		pos  r2.Vec
		g    float64
		mass float64
	}{
		{"plus x", r2.Vec{X: 200}, 1, 1e6},
		{"minus y", r2.Vec{Y: -350}, 1, 1e6},
		{"diagonal", r2.Vec{X: -90, Y: 120}, 6.674e-1, 5e5},
		{"offset primary", r2.Vec{X: 1000, Y: 1000}, 2, 1e4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := Body{ID: 1, Mass: tt.mass, Radius: 20, Pos: r2.Vec{X: 10, Y: -5}}
			b := Body{ID: 2, Mass: 1, Radius: 5, Pos: tt.pos, Orbital: true}

			v := OrbitalVelocity(b, primary, tt.g, dynamo.DefaultProximity)

			radius := r2.Sub(primary.Pos, b.Pos)
			d := r2.Norm(radius)
			want := math.Sqrt(tt.g * tt.mass / d)
			if got := r2.Norm(v); math.Abs(got-want) > 1e-9*want {
				t.Errorf("speed = %f, want %f", got, want)
			}
			if dot := r2.Dot(v, radius) / (d * r2.Norm(v)); math.Abs(dot) > 1e-12 {
				t.Errorf("velocity not perpendicular to radius: cos = %g", dot)
			}
			// -90° rotation of body→primary: orbits run counter-clockwise
			if cross := radius.X*v.Y - radius.Y*v.X; cross >= 0 {
				t.Errorf("unexpected handedness, cross = %g", cross)
			}
		})
	}
}

func TestOrbitalVelocityDegenerate(t *testing.T) {
	primary := Body{ID: 1, Mass: 1e6, Radius: 20}
	if v := OrbitalVelocity(primary, primary, 1, dynamo.DefaultProximity); v != (r2.Vec{}) {
		t.Errorf("primary got %v", v)
	}
	on := Body{ID: 2, Mass: 1, Radius: 1, Pos: r2.Vec{X: 1}}
	if v := OrbitalVelocity(on, primary, 1, dynamo.DefaultProximity); v != (r2.Vec{}) {
		t.Errorf("body inside proximity radius got %v", v)
	}
}

func TestRandomVelocityRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		v := RandomVelocity(rng, 50)
		if math.Abs(v.X) > 50 || math.Abs(v.Y) > 50 {
			t.Fatalf("velocity %v outside [-50, 50]", v)
		}
	}
}

func TestInitVelocityToggleIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	primary := Body{ID: 1, Mass: 1e6, Radius: 20}
	b := Body{ID: 2, Mass: 1, Radius: 5, Pos: r2.Vec{X: 200}, Orbital: true}

	first := InitVelocity(b, primary, 1, dynamo.DefaultProximity, rng, DefaultVelocitySpread)

	b.Orbital = false
	b.Vel = InitVelocity(b, primary, 1, dynamo.DefaultProximity, rng, DefaultVelocitySpread)
	if b.Vel == first {
		t.Fatal("chaotic mode reproduced the orbital velocity")
	}

	b.Orbital = true
	again := InitVelocity(b, primary, 1, dynamo.DefaultProximity, rng, DefaultVelocitySpread)
	if again != first {
		t.Errorf("re-enabled velocity %v, want %v", again, first)
	}
	if again != OrbitalVelocity(b, primary, 1, dynamo.DefaultProximity) {
		t.Error("toggle does not reproduce the orbital formula")
	}
}

func TestDecompose(t *testing.T) {
	primary := Body{ID: 1, Mass: 1e6, Radius: 20, Pos: r2.Vec{X: 3, Y: 4}, Vel: r2.Vec{X: 9, Y: 9}}
	tests := []struct {
		name string
		pos  r2.Vec
		vel  r2.Vec
	}{
		{"pure tangential", r2.Vec{X: 203, Y: 4}, r2.Vec{Y: 70}},
		{"pure radial", r2.Vec{X: 203, Y: 4}, r2.Vec{X: -10}},
		{"mixed", r2.Vec{X: -50, Y: 80}, r2.Vec{X: 12.5, Y: -31}},
		{"at rest", r2.Vec{X: 10, Y: 10}, r2.Vec{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Body{ID: 2, Mass: 1, Radius: 5, Pos: tt.pos, Vel: tt.vel}
			d := Decompose(b, primary)

			sum := r2.Add(d.Radial, d.Tangential)
			if r2.Norm(r2.Sub(sum, tt.vel)) > 1e-9 {
				t.Errorf("radial+tangential = %v, want %v", sum, tt.vel)
			}

			toPrimary := r2.Sub(primary.Pos, b.Pos)
			if math.Abs(r2.Dot(d.Tangential, toPrimary)) > 1e-9 {
				t.Errorf("tangential %v not perpendicular to radius", d.Tangential)
			}
		})
	}

	if d := Decompose(primary, primary); d.Radial != (r2.Vec{}) || d.Tangential != (r2.Vec{}) {
		t.Errorf("primary decomposed to %+v", d)
	}
}

func TestNewBodyValidation(t *testing.T) {
	tests := []struct {
		name   string
		mass   float64
		radius float64
		ok     bool
	}{
		{"valid", 1, 1, true},
		{"zero mass", 0, 1, false},
		{"negative mass", -3, 1, false},
		{"zero radius", 1, 0, false},
		{"nan mass", math.NaN(), 1, false},
		{"inf radius", 1, math.Inf(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBody(1, r2.Vec{}, tt.mass, tt.radius, KindPlanet)
			if (err == nil) != tt.ok {
				t.Errorf("NewBody err = %v, ok = %v", err, tt.ok)
			}
		})
	}
}
