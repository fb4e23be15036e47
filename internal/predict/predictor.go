package predict

import (
	"fmt"
	"math"

	"github.com/go-logr/logr"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Path is an ordered, finite sequence of predicted positions.
type Path []r2.Vec

// Reason records why a prediction stopped.
type Reason int

const (
	ReasonNone     Reason = iota // nothing to predict
	ReasonClosed                 // the orbit closed on itself
	ReasonDiverged               // escaped past the divergence radius
	ReasonCapped                 // hit MaxSteps
)

func (r Reason) String() string {
	switch r {
	case ReasonClosed:
		return "closed"
	case ReasonDiverged:
		return "diverged"
	case ReasonCapped:
		return "capped"
	default:
		return "none"
	}
}

// Closure selects the loop-closure test.
type Closure string

const (
	// ClosureHeuristic: distance to the first point, velocity alignment
	// and a count of velocity sign reversals.
	ClosureHeuristic Closure = "heuristic"
	// ClosureAngular: swept angle around the primary reaches 2π.
	ClosureAngular Closure = "angular"
)

type Config struct {
	Step             float64 `yaml:"step"`
	WarmUp           int     `yaml:"warm_up"`
	CloseFactor      float64 `yaml:"close_factor"`
	Alignment        float64 `yaml:"alignment"`
	MinSignChanges   int     `yaml:"min_sign_changes"`
	DivergenceFactor float64 `yaml:"divergence_factor"`
	MaxSteps         int     `yaml:"max_steps"`
	Closure          Closure `yaml:"closure"`
}

func DefaultConfig() Config {
	return Config{
		Step:             0.005,
		WarmUp:           100,
		CloseFactor:      2,
		Alignment:        0.9,
		MinSignChanges:   4,
		DivergenceFactor: 3,
		MaxSteps:         20000,
		Closure:          ClosureHeuristic,
	}
}

func (c Config) Validate() error {
	if !(c.Step > 0) || math.IsInf(c.Step, 0) {
		return fmt.Errorf("predictor step %v: %w", c.Step, dynamo.ErrParameterBounds)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("predictor max_steps %d: %w", c.MaxSteps, dynamo.ErrParameterBounds)
	}
	if c.WarmUp < 0 || c.MinSignChanges < 0 {
		return fmt.Errorf("predictor warm_up/min_sign_changes must not be negative: %w", dynamo.ErrParameterBounds)
	}
	if !(c.DivergenceFactor > 1) {
		return fmt.Errorf("predictor divergence_factor %v: %w", c.DivergenceFactor, dynamo.ErrParameterBounds)
	}
	if c.Alignment < -1 || c.Alignment > 1 {
		return fmt.Errorf("predictor alignment %v: %w", c.Alignment, dynamo.ErrParameterBounds)
	}
	switch c.Closure {
	case ClosureHeuristic, ClosureAngular:
	default:
		return fmt.Errorf("predictor closure %q: %w", c.Closure, dynamo.ErrParameterBounds)
	}
	return nil
}

type Result struct {
	ID     uint64
	Points Path
	Steps  int
	Reason Reason
}

// parallelChunk is the fewest bodies one prediction goroutine takes.
const parallelChunk = 4

// Predictor forward-simulates a single body through the frozen field of
// the others.
type Predictor struct {
	cfg Config
	log logr.Logger
}

func New(cfg Config, log logr.Logger) *Predictor {
	return &Predictor{cfg: cfg, log: log}
}

func (p *Predictor) Config() Config { return p.cfg }

// Predict returns the future path of w.Bodies[i]. The world is only
// read; the integrated state lives in local copies.
func (p *Predictor) Predict(w *physics.World, params dynamo.Params, i int) Result {
	if w == nil || w.Len() < 2 || i <= 0 || i >= w.Len() {
		return Result{Reason: ReasonNone}
	}

	bodies := w.Bodies
	target := bodies[i]
	primary := bodies[0].Pos

	pos := target.Pos
	vel := target.Vel
	v0 := vel
	h := p.cfg.Step

	startDist := r2.Norm(r2.Sub(pos, primary))
	limit := p.cfg.DivergenceFactor * startDist

	path := make(Path, 0, 256)
	path = append(path, pos)

	closer := newCloser(p.cfg, target.Radius, pos, v0, primary)

	res := Result{ID: target.ID, Reason: ReasonCapped}
	for step := 1; step <= p.cfg.MaxSteps; step++ {
		pos, vel = p.rk4(bodies, i, params, pos, vel, h)
		res.Steps = step

		if r2.Norm(r2.Sub(pos, primary)) > limit {
			res.Reason = ReasonDiverged
			break
		}

		path = append(path, pos)

		if closer.observe(step, pos, vel, h) {
			res.Reason = ReasonClosed
			break
		}
	}

	res.Points = path
	p.log.V(2).Info("predicted path", "body", target.ID, "points", len(path), "steps", res.Steps, "reason", res.Reason.String())
	return res
}

// rk4 advances one step: RK4-weighted velocity update from four
// acceleration samples, then the position by the trapezoid of the old
// and new velocity.
func (p *Predictor) rk4(bodies []physics.Body, i int, params dynamo.Params, pos, vel r2.Vec, h float64) (r2.Vec, r2.Vec) {
	accel := func(at r2.Vec) r2.Vec { return physics.AccelAt(bodies, i, at, params) }

	k1v := accel(pos)
	k1x := vel

	k2v := accel(r2.Add(pos, r2.Scale(h/2, k1x)))
	k2x := r2.Add(vel, r2.Scale(h/2, k1v))

	k3v := accel(r2.Add(pos, r2.Scale(h/2, k2x)))
	k3x := r2.Add(vel, r2.Scale(h/2, k2v))

	k4v := accel(r2.Add(pos, r2.Scale(h, k3x)))

	dv := r2.Add(r2.Add(k1v, r2.Scale(2, k2v)), r2.Add(r2.Scale(2, k3v), k4v))
	next := r2.Add(vel, r2.Scale(h/6, dv))

	return r2.Add(pos, r2.Scale(h/2, r2.Add(vel, next))), next
}

// PredictAll predicts every non-primary body. Bodies are predicted
// concurrently; the world is shared read-only.
func (p *Predictor) PredictAll(w *physics.World, params dynamo.Params) map[uint64]Result {
	n := w.Len()
	if n < 2 {
		return map[uint64]Result{}
	}
	results := make([]Result, n)
	dynamo.ParallelFor(n-1, parallelChunk, func(start, end int) {
		for i := start; i < end; i++ {
			results[i+1] = p.Predict(w, params, i+1)
		}
	})

	out := make(map[uint64]Result, n-1)
	for _, res := range results[1:] {
		out[res.ID] = res
	}
	return out
}
