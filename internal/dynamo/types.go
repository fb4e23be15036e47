package dynamo

import (
	"fmt"
	"math"
)

// State is a flat vector of the simulated degrees of freedom.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is a first-order ODE dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Accelerator is a System over positions followed by velocities whose
// accelerations depend on the positions only. dst receives one value per
// velocity component.
type Accelerator interface {
	System
	Accel(x State, dst []float64)
}

// Hamiltonian is a System with the conserved quantities of its state.
type Hamiltonian interface {
	System
	Energy(x State) float64
	Momentum(x State) (px, py float64)
	AngularMomentum(x State) float64
}

type Integrator interface {
	Step(sys System, x State, t float64, dt float64) State
}

// Default simulation parameters.
const (
	DefaultG         = 1.0
	DefaultTimeScale = 1.0
	DefaultProximity = 25.0
)

// Params are the global simulation parameters. They are passed by value
// into every tick and prediction and never mutated while one runs.
type Params struct {
	G               float64 `yaml:"g"`
	TimeScale       float64 `yaml:"time_scale"`
	PlanetaryForces bool    `yaml:"planetary_forces"`
	Playing         bool    `yaml:"playing"`
	// Proximity is the squared distance at or below which pairwise
	// force is clamped to zero.
	Proximity float64 `yaml:"proximity"`
	// Theta enables the Barnes-Hut approximation for large worlds when
	// positive.
	Theta float64 `yaml:"theta"`
}

func DefaultParams() Params {
	return Params{
		G:         DefaultG,
		TimeScale: DefaultTimeScale,
		Playing:   true,
		Proximity: DefaultProximity,
	}
}

func (p Params) Validate() error {
	for name, v := range map[string]float64{
		"g":          p.G,
		"time_scale": p.TimeScale,
		"proximity":  p.Proximity,
		"theta":      p.Theta,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%s=%v: %w", name, v, ErrParameterBounds)
		}
	}
	return nil
}
