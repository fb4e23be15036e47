package sim

import (
	"time"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// Metric accumulates a scalar over physics ticks. Metrics are reset
// whenever the roster changes.
type Metric interface {
	Name() string
	Observe(w *physics.World, p dynamo.Params, t float64)
	Value() float64
	Reset()
}

// Observer receives every frame, stepped or not.
type Observer interface {
	OnFrame(f Frame)
}

// Frame is what one tick publishes for renderers. Forces and
// Decompositions are diagnostics and never feed back into physics.
type Frame struct {
	Seq            int
	Time           float64 // simulated seconds
	Dt             float64 // simulated seconds advanced by this tick
	Stepped        bool
	Bodies         []physics.Body
	Forces         []physics.PairForce
	Decompositions []physics.Decomposition
	Telemetry      Telemetry
	Err            error
}

// Telemetry is the clock and frame-rate bookkeeping of the host loop.
type Telemetry struct {
	Frames   int
	RealTime time.Duration
	FPS      float64
}

const fpsSmoothing = 0.1

func (t *Telemetry) observe(elapsed time.Duration) {
	t.Frames++
	t.RealTime += elapsed
	if elapsed <= 0 {
		return
	}
	fps := 1 / elapsed.Seconds()
	if t.FPS == 0 {
		t.FPS = fps
		return
	}
	t.FPS += fpsSmoothing * (fps - t.FPS)
}
