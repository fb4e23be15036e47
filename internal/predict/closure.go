package predict

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

type closer struct {
	cfg     Config
	radius  float64
	first   r2.Vec
	v0      r2.Vec
	primary r2.Vec

	signX, signY int
	reversals    int

	lastAngle float64
	swept     float64
}

func newCloser(cfg Config, radius float64, first, v0, primary r2.Vec) *closer {
	rel := r2.Sub(first, primary)
	return &closer{
		cfg:       cfg,
		radius:    radius,
		first:     first,
		v0:        v0,
		primary:   primary,
		signX:     sign(v0.X),
		signY:     sign(v0.Y),
		lastAngle: math.Atan2(rel.Y, rel.X),
	}
}

// observe feeds one integrated step and reports whether the loop closed.
func (c *closer) observe(step int, pos, vel r2.Vec, h float64) bool {
	c.countReversals(vel)
	c.sweep(pos)

	if c.cfg.Closure == ClosureAngular {
		return math.Abs(c.swept) >= 2*math.Pi
	}

	if step <= c.cfg.WarmUp || c.reversals < c.cfg.MinSignChanges {
		return false
	}

	// never narrower than two steps of travel, or a fast body skips over it
	near := math.Max(c.cfg.CloseFactor*c.radius, 2*r2.Norm(vel)*h)
	if r2.Norm(r2.Sub(pos, c.first)) >= near {
		return false
	}

	n := r2.Norm(vel) * r2.Norm(c.v0)
	if n == 0 {
		return false
	}
	return r2.Dot(vel, c.v0)/n > c.cfg.Alignment
}

// countReversals counts sign flips of each velocity component, ignoring
// exact zeros.
func (c *closer) countReversals(vel r2.Vec) {
	if s := sign(vel.X); s != 0 {
		if c.signX != 0 && s != c.signX {
			c.reversals++
		}
		c.signX = s
	}
	if s := sign(vel.Y); s != 0 {
		if c.signY != 0 && s != c.signY {
			c.reversals++
		}
		c.signY = s
	}
}

func (c *closer) sweep(pos r2.Vec) {
	rel := r2.Sub(pos, c.primary)
	a := math.Atan2(rel.Y, rel.X)
	d := a - c.lastAngle
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d < -math.Pi {
		d += 2 * math.Pi
	}
	c.swept += d
	c.lastAngle = a
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
