package physics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// PairForce is the force Target feels from Source. Diagnostic only.
type PairForce struct {
	Source uint64
	Target uint64
	F      r2.Vec
}

// ComputeForce returns the attractive force on a from b:
// G*ma*mb/d² along the line from a to b. Inside the proximity radius
// (d² <= proximity) the result is the zero vector.
func ComputeForce(a, b Body, g, proximity float64) r2.Vec {
	return pull(a.Pos, b.Pos, a.Mass, b.Mass, g, proximity)
}

func pull(from, to r2.Vec, m1, m2, g, proximity float64) r2.Vec {
	d := r2.Sub(to, from)
	d2 := r2.Norm2(d)
	if d2 <= proximity || d2 == 0 {
		return r2.Vec{}
	}
	f := g * m1 * m2 / d2
	return r2.Scale(f/math.Sqrt(d2), d)
}

// Contributes reports whether body j exerts force on body i under the
// planetary flag. With planetary forces off only the primary (index 0)
// is a source, and it feels nothing itself.
func Contributes(i, j int, planetary bool) bool {
	if i == j {
		return false
	}
	if planetary {
		return true
	}
	return j == 0
}

// NetForce sums the pairwise forces acting on bodies[i].
func NetForce(bodies []Body, i int, p dynamo.Params) r2.Vec {
	var f r2.Vec
	for j := range bodies {
		if !Contributes(i, j, p.PlanetaryForces) {
			continue
		}
		f = r2.Add(f, ComputeForce(bodies[i], bodies[j], p.G, p.Proximity))
	}
	return f
}

// AccelAt returns the acceleration body i would feel standing at pos,
// with every other body frozen where it is.
func AccelAt(bodies []Body, i int, pos r2.Vec, p dynamo.Params) r2.Vec {
	var a r2.Vec
	for j := range bodies {
		if !Contributes(i, j, p.PlanetaryForces) {
			continue
		}
		// mass of i cancels: F/m_i = G*m_j/d²
		a = r2.Add(a, pull(pos, bodies[j].Pos, 1, bodies[j].Mass, p.G, p.Proximity))
	}
	return a
}

// PairForces lists every nonzero contributing pair.
func PairForces(bodies []Body, p dynamo.Params) []PairForce {
	out := make([]PairForce, 0, len(bodies))
	for i := range bodies {
		for j := range bodies {
			if !Contributes(i, j, p.PlanetaryForces) {
				continue
			}
			f := ComputeForce(bodies[i], bodies[j], p.G, p.Proximity)
			if f.X == 0 && f.Y == 0 {
				continue
			}
			out = append(out, PairForce{Source: bodies[j].ID, Target: bodies[i].ID, F: f})
		}
	}
	return out
}
