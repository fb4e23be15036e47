package physics

import (
	"fmt"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// World is the ordered body roster. Bodies[0] is the primary.
type World struct {
	Bodies []Body
}

func NewWorld(bodies ...Body) *World {
	w := &World{Bodies: make([]Body, 0, len(bodies))}
	w.Bodies = append(w.Bodies, bodies...)
	return w
}

func (w *World) Len() int { return len(w.Bodies) }

// Primary returns the central body, or false for an empty world.
func (w *World) Primary() (Body, bool) {
	if len(w.Bodies) == 0 {
		return Body{}, false
	}
	return w.Bodies[0], true
}

// Index returns the roster position of id, or -1.
func (w *World) Index(id uint64) int {
	for i := range w.Bodies {
		if w.Bodies[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy. Payloads are value types so copying the
// slice is enough to break aliasing.
func (w *World) Clone() *World {
	c := &World{Bodies: make([]Body, len(w.Bodies))}
	copy(c.Bodies, w.Bodies)
	return c
}

// Pack flattens the kinematic state as positions then velocities:
// [x0, y0, ..., xn-1, yn-1, vx0, vy0, ...].
func (w *World) Pack() dynamo.State {
	return w.PackInto(nil)
}

// PackInto is Pack writing into dst when it has the right length.
func (w *World) PackInto(dst dynamo.State) dynamo.State {
	n := len(w.Bodies)
	if len(dst) != n*4 {
		dst = make(dynamo.State, n*4)
	}
	half := n * 2
	for i, b := range w.Bodies {
		dst[i*2] = b.Pos.X
		dst[i*2+1] = b.Pos.Y
		dst[half+i*2] = b.Vel.X
		dst[half+i*2+1] = b.Vel.Y
	}
	return dst
}

// Unpack publishes a packed state back onto the bodies. A state of the
// wrong length or with NaN/Inf components is rejected and the bodies are
// left untouched.
func (w *World) Unpack(x dynamo.State) error {
	n := len(w.Bodies)
	if len(x) != n*4 {
		return fmt.Errorf("unpack %d values into %d bodies: %w", len(x), n, dynamo.ErrDimensionMismatch)
	}
	if !x.IsValid() {
		return fmt.Errorf("unpack: %w", dynamo.ErrInvalidState)
	}
	half := n * 2
	for i := range w.Bodies {
		w.Bodies[i].Pos = r2.Vec{X: x[i*2], Y: x[i*2+1]}
		w.Bodies[i].Vel = r2.Vec{X: x[half+i*2], Y: x[half+i*2+1]}
	}
	return nil
}

// Masses returns the body masses in roster order.
func (w *World) Masses() []float64 {
	m := make([]float64, len(w.Bodies))
	for i, b := range w.Bodies {
		m[i] = b.Mass
	}
	return m
}
