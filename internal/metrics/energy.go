package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// invariants returns the conserved-quantity view of w under p.
func invariants(w *physics.World, p dynamo.Params) (dynamo.Hamiltonian, dynamo.State) {
	return physics.NewField(w, p), w.Pack()
}

// Energy is the running mean of the total mechanical energy.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(w *physics.World, p dynamo.Params, t float64) {
	h, x := invariants(w, p)
	e.totalEnergy += h.Energy(x)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative departure of the total energy
// from its first observed value.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(w *physics.World, p dynamo.Params, t float64) {
	h, x := invariants(w, p)
	energy := h.Energy(x)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Current is the last observed total energy.
func (e *EnergyDrift) Current() float64 { return e.currentEnergy }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// AngularMomentumDrift is EnergyDrift for the total angular momentum
// about the origin.
type AngularMomentumDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewAngularMomentumDrift() *AngularMomentumDrift {
	return &AngularMomentumDrift{name: "angular_momentum_drift"}
}

func (a *AngularMomentumDrift) Name() string { return a.name }

func (a *AngularMomentumDrift) Observe(w *physics.World, p dynamo.Params, t float64) {
	h, x := invariants(w, p)
	L := h.AngularMomentum(x)
	if a.samples == 0 {
		a.initial = L
	}
	a.samples++

	if a.initial != 0 {
		a.maxDrift = math.Max(a.maxDrift, math.Abs(L-a.initial)/math.Abs(a.initial))
	}
}

func (a *AngularMomentumDrift) Value() float64 { return a.maxDrift }

func (a *AngularMomentumDrift) Reset() {
	a.initial = 0
	a.maxDrift = 0
	a.samples = 0
}

// MomentumDrift is the largest change of the total linear momentum,
// relative to the summed momentum magnitudes of the first observation.
// Only planetary forces conserve it: with them off the primary is an
// external anchor.
type MomentumDrift struct {
	name     string
	px0, py0 float64
	scale    float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(w *physics.World, p dynamo.Params, t float64) {
	h, x := invariants(w, p)
	px, py := h.Momentum(x)
	if m.samples == 0 {
		m.px0, m.py0 = px, py
		for _, b := range w.Bodies {
			m.scale += b.Mass * math.Hypot(b.Vel.X, b.Vel.Y)
		}
	}
	m.samples++

	d := math.Hypot(px-m.px0, py-m.py0)
	if m.scale > 0 {
		d /= m.scale
	}
	m.maxDrift = math.Max(m.maxDrift, d)
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.px0, m.py0 = 0, 0
	m.scale = 0
	m.maxDrift = 0
	m.samples = 0
}
