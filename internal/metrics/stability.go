package metrics

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Stability is the fraction of observed ticks on which every body was
// still bound to the primary: negative specific orbital energy relative
// to it. Interactions with other bodies are ignored.
type Stability struct {
	name       string
	violations int
	samples    int
	escaped    map[uint64]bool
}

func NewStability() *Stability {
	return &Stability{
		name:    "stability",
		escaped: map[uint64]bool{},
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(w *physics.World, p dynamo.Params, t float64) {
	s.samples++
	primary, ok := w.Primary()
	if !ok {
		return
	}

	unbound := false
	for _, b := range w.Bodies[1:] {
		if !Bound(b, primary, p.G) {
			unbound = true
			s.escaped[b.ID] = true
		}
	}
	if unbound {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

// Escapes counts the distinct bodies seen unbound since the last reset.
func (s *Stability) Escapes() int { return len(s.escaped) }

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
	s.escaped = map[uint64]bool{}
}

// Bound reports whether b is on a closed orbit around primary in the
// two-body approximation.
func Bound(b, primary physics.Body, g float64) bool {
	d := r2.Norm(r2.Sub(b.Pos, primary.Pos))
	if d == 0 {
		return true
	}
	v := r2.Norm(r2.Sub(b.Vel, primary.Vel))
	specific := 0.5*v*v - g*primary.Mass/d
	return specific < 0
}
