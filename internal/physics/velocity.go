package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultVelocitySpread bounds each component of a randomized
// (non-orbital) velocity: [-spread, spread].
const DefaultVelocitySpread = 50.0

// Rand is the random source used for non-orbital velocities.
type Rand interface {
	Float64() float64
}

// OrbitalVelocity returns the circular-orbit velocity of b around
// primary. The radius vector b→primary is rotated by -90° ((x, y) →
// (y, -x)) so every orbit shares the same handedness. A body at (or
// inside the proximity radius of) the primary gets zero.
func OrbitalVelocity(b, primary Body, g, proximity float64) r2.Vec {
	if b.ID == primary.ID {
		return r2.Vec{}
	}
	d := r2.Sub(primary.Pos, b.Pos)
	d2 := r2.Norm2(d)
	if d2 <= proximity || d2 == 0 {
		return r2.Vec{}
	}
	dist := math.Sqrt(d2)
	u := r2.Scale(1/dist, d)
	perp := r2.Vec{X: u.Y, Y: -u.X}
	speed := math.Sqrt(g * primary.Mass / dist)
	return r2.Scale(speed, perp)
}

// RandomVelocity draws each component uniformly from [-spread, spread].
func RandomVelocity(rng Rand, spread float64) r2.Vec {
	return r2.Vec{
		X: (rng.Float64()*2 - 1) * spread,
		Y: (rng.Float64()*2 - 1) * spread,
	}
}

// InitVelocity is the velocity policy run at creation and on every
// orbital-mode toggle. It is a full recomputation, never an adjustment
// of the current velocity.
func InitVelocity(b, primary Body, g, proximity float64, rng Rand, spread float64) r2.Vec {
	if b.Orbital {
		return OrbitalVelocity(b, primary, g, proximity)
	}
	return RandomVelocity(rng, spread)
}

// Decomposition splits a body's velocity into the part along the line to
// the primary and the part perpendicular to it.
type Decomposition struct {
	ID         uint64
	Radial     r2.Vec
	Tangential r2.Vec
}

// Decompose projects b.Vel on the unit vector toward primary and its
// perpendicular. The primary, or a body sitting on it, decomposes to
// zero.
func Decompose(b, primary Body) Decomposition {
	out := Decomposition{ID: b.ID}
	if b.ID == primary.ID {
		return out
	}
	d := r2.Sub(primary.Pos, b.Pos)
	dist := r2.Norm(d)
	if dist == 0 {
		return out
	}
	u := r2.Scale(1/dist, d)
	perp := r2.Vec{X: u.Y, Y: -u.X}
	out.Radial = r2.Scale(r2.Dot(b.Vel, u), u)
	out.Tangential = r2.Scale(r2.Dot(b.Vel, perp), perp)
	return out
}

// DecomposeAll decomposes every body against the world's primary.
func DecomposeAll(w *World) []Decomposition {
	primary, ok := w.Primary()
	if !ok {
		return nil
	}
	out := make([]Decomposition, len(w.Bodies))
	for i, b := range w.Bodies {
		out[i] = Decompose(b, primary)
	}
	return out
}
