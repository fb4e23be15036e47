package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/go-logr/logr"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/predict"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r2"
)

type Options struct {
	Params     dynamo.Params
	Predictor  predict.Config
	Integrator string
	// Spread bounds each component of a randomized velocity.
	Spread float64
	Seed   uint64
	Logger logr.Logger
}

func DefaultOptions() Options {
	return Options{
		Params:     dynamo.DefaultParams(),
		Predictor:  predict.DefaultConfig(),
		Integrator: integrators.Default,
		Spread:     physics.DefaultVelocitySpread,
		Seed:       1,
		Logger:     logr.Discard(),
	}
}

// BodySpec is the kind configuration of AddBody.
type BodySpec struct {
	Kind    physics.Kind
	Mass    float64
	Radius  float64
	Orbital bool
	Payload physics.Payload // nil means the kind's default
}

// DefaultSpec returns typical mass and radius for a kind.
func DefaultSpec(kind physics.Kind) BodySpec {
	spec := BodySpec{Kind: kind, Orbital: true}
	switch kind {
	case physics.KindStar:
		spec.Mass, spec.Radius = 1e6, 20
	case physics.KindMoon:
		spec.Mass, spec.Radius = 1, 3
	case physics.KindAsteroid:
		spec.Mass, spec.Radius = 0.1, 2
	default:
		spec.Kind = physics.KindPlanet
		spec.Mass, spec.Radius = 10, 6
	}
	return spec
}

// Sandbox owns the world and applies commands and ticks to it. It is
// driven from a single host loop and is not safe for concurrent use.
type Sandbox struct {
	world     *physics.World
	params    dynamo.Params
	integ     dynamo.Integrator
	integName string
	predictor *predict.Predictor
	rng       *rand.Rand
	spread    float64
	nextID    uint64

	// generation counts roster and planetary-flag changes; paths are
	// current when pathsGen equals it.
	generation uint64
	paths      map[uint64]predict.Result
	pathsGen   uint64

	time      float64
	seq       int
	telemetry Telemetry
	pool      *StatePool

	metrics   []Metric
	observers []Observer
	log       logr.Logger
}

func New(opts Options) (*Sandbox, error) {
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Predictor.Validate(); err != nil {
		return nil, err
	}
	integ, err := integrators.New(opts.Integrator)
	if err != nil {
		return nil, err
	}
	if opts.Spread < 0 || math.IsNaN(opts.Spread) {
		return nil, fmt.Errorf("velocity spread %v: %w", opts.Spread, dynamo.ErrParameterBounds)
	}

	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	return &Sandbox{
		world:      physics.NewWorld(),
		params:     opts.Params,
		integ:      integ,
		integName:  opts.Integrator,
		predictor:  predict.New(opts.Predictor, log.WithName("predict")),
		rng:        rand.New(rand.NewSource(opts.Seed)),
		spread:     opts.Spread,
		paths:      map[uint64]predict.Result{},
		generation: 1,
		pool:       NewStatePool(0),
		log:        log,
	}, nil
}

func (s *Sandbox) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Sandbox) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// AddBody creates a body at pos and initializes its velocity. The first
// body becomes the primary.
func (s *Sandbox) AddBody(pos r2.Vec, spec BodySpec) (physics.Body, error) {
	b, err := physics.NewBody(s.nextID+1, pos, spec.Mass, spec.Radius, spec.Kind)
	if err != nil {
		return physics.Body{}, err
	}
	if spec.Payload != nil && spec.Payload.Kind() == b.Kind {
		b.Payload = spec.Payload
	}
	b.Orbital = spec.Orbital

	primary, ok := s.world.Primary()
	if !ok {
		primary = b
	}
	b.Vel = physics.InitVelocity(b, primary, s.params.G, s.params.Proximity, s.rng, s.spread)

	s.nextID++
	s.world.Bodies = append(s.world.Bodies, b)
	s.rosterChanged("body added", "id", b.ID, "kind", b.Kind, "orbital", b.Orbital)
	return b, nil
}

// RemoveBody drops a body. Removing the primary promotes the next body
// in insertion order.
func (s *Sandbox) RemoveBody(id uint64) error {
	i := s.world.Index(id)
	if i < 0 {
		return fmt.Errorf("remove body %d: %w", id, dynamo.ErrUnknownBody)
	}
	s.world.Bodies = append(s.world.Bodies[:i], s.world.Bodies[i+1:]...)
	s.rosterChanged("body removed", "id", id, "wasPrimary", i == 0)
	return nil
}

// ToggleOrbitalMode flips the orbital flag of a body and reruns the
// velocity initializer for it.
func (s *Sandbox) ToggleOrbitalMode(id uint64) error {
	i := s.world.Index(id)
	if i < 0 {
		return fmt.Errorf("toggle orbital mode of %d: %w", id, dynamo.ErrUnknownBody)
	}
	b := &s.world.Bodies[i]
	b.Orbital = !b.Orbital
	b.Vel = physics.InitVelocity(*b, s.world.Bodies[0], s.params.G, s.params.Proximity, s.rng, s.spread)
	s.rosterChanged("orbital mode toggled", "id", id, "orbital", b.Orbital)
	return nil
}

func (s *Sandbox) SetPlanetaryForces(on bool) {
	if s.params.PlanetaryForces == on {
		return
	}
	s.params.PlanetaryForces = on
	s.rosterChanged("planetary forces", "on", on)
}

func (s *Sandbox) SetTimeScale(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("time scale %v: %w", v, dynamo.ErrParameterBounds)
	}
	s.params.TimeScale = v
	return nil
}

func (s *Sandbox) SetG(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("gravitational constant %v: %w", v, dynamo.ErrParameterBounds)
	}
	s.params.G = v
	return nil
}

func (s *Sandbox) SetPlaying(on bool) { s.params.Playing = on }

func (s *Sandbox) SetIntegrator(name string) error {
	integ, err := integrators.New(name)
	if err != nil {
		return err
	}
	s.integ = integ
	s.integName = name
	return nil
}

func (s *Sandbox) rosterChanged(msg string, kv ...interface{}) {
	s.generation++
	for _, m := range s.metrics {
		m.Reset()
	}
	s.log.V(1).Info(msg, append(kv, "bodies", s.world.Len(), "generation", s.generation)...)
}

// Tick advances the world by elapsed real time scaled by the time scale.
// All accelerations are computed from one packed snapshot, and the new
// state is published only once the step succeeded.
func (s *Sandbox) Tick(elapsed time.Duration) Frame {
	s.seq++
	s.telemetry.observe(elapsed)
	p := s.params

	frame := Frame{Seq: s.seq}

	if p.Playing && s.world.Len() >= 2 {
		s.step(p, elapsed.Seconds()*p.TimeScale, &frame)
	}

	frame.Time = s.time
	frame.Bodies = s.Bodies()
	frame.Decompositions = physics.DecomposeAll(s.world)
	frame.Telemetry = s.telemetry

	for _, o := range s.observers {
		o.OnFrame(frame)
	}
	return frame
}

func (s *Sandbox) step(p dynamo.Params, dt float64, frame *Frame) {
	n := s.world.Len()
	if s.pool.Size() != n*4 {
		s.pool = NewStatePool(n * 4)
	}
	x := s.world.PackInto(s.pool.Get())
	defer s.pool.Put(x)

	field := physics.NewField(s.world, p)
	if !(p.Theta > 0 && p.PlanetaryForces && n >= physics.BarnesHutMin) {
		frame.Forces = physics.PairForces(s.world.Bodies, p)
	}

	next := s.integ.Step(field, x, s.time, dt)
	if err := s.world.Unpack(next); err != nil {
		frame.Err = &dynamo.SimulationError{Step: s.seq, Time: s.time, Wrapped: err}
		s.log.Error(frame.Err, "tick rejected", "integrator", s.integName, "dt", dt)
		return
	}

	s.time += dt
	frame.Dt = dt
	frame.Stepped = true

	for _, m := range s.metrics {
		m.Observe(s.world, p, s.time)
	}
}

// Bodies returns a copy of the roster in insertion order.
func (s *Sandbox) Bodies() []physics.Body {
	return s.world.Clone().Bodies
}

func (s *Sandbox) Body(id uint64) (physics.Body, bool) {
	i := s.world.Index(id)
	if i < 0 {
		return physics.Body{}, false
	}
	return s.world.Bodies[i], true
}

// World returns a snapshot of the world.
func (s *Sandbox) World() *physics.World { return s.world.Clone() }

func (s *Sandbox) Params() dynamo.Params { return s.params }
func (s *Sandbox) Time() float64         { return s.time }
func (s *Sandbox) Telemetry() Telemetry  { return s.telemetry }
func (s *Sandbox) Integrator() string    { return s.integName }
func (s *Sandbox) Generation() uint64    { return s.generation }

// Predictor returns the orbit predictor settings.
func (s *Sandbox) Predictor() predict.Config { return s.predictor.Config() }

// Metrics returns the current value of every registered metric.
func (s *Sandbox) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}
