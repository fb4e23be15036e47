package automation

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/go-logr/logr"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

// Action names a sandbox command.
type Action string

const (
	ActionAdd        Action = "add"
	ActionRemove     Action = "remove"
	ActionToggle     Action = "toggle"
	ActionPlanetary  Action = "planetary"
	ActionTimeScale  Action = "time_scale"
	ActionG          Action = "g"
	ActionPlay       Action = "play"
	ActionPause      Action = "pause"
	ActionIntegrator Action = "integrator"
)

// Scenario is a scripted headless session: a starting world and a list
// of commands fired at fixed wall-clock offsets.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Preset      string  `yaml:"preset"`
	Dt          float64 `yaml:"dt"`
	Duration    float64 `yaml:"duration"`
	// Track is the body whose distance to the primary is sampled every
	// stepped frame; zero disables sampling.
	Track    uint64    `yaml:"track,omitempty"`
	Commands []Command `yaml:"commands"`
}

// Command is one scheduled sandbox command. Which fields matter depends
// on Action.
type Command struct {
	At     float64            `yaml:"at"`
	Action Action             `yaml:"action"`
	Body   *config.BodyConfig `yaml:"body,omitempty"`
	ID     uint64             `yaml:"id,omitempty"`
	Value  float64            `yaml:"value,omitempty"`
	On     bool               `yaml:"on,omitempty"`
	Name   string             `yaml:"name,omitempty"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &scenario, nil
}

func (sc *Scenario) Validate() error {
	if sc.Dt < 0 || sc.Duration < 0 || math.IsNaN(sc.Dt) || math.IsNaN(sc.Duration) {
		return fmt.Errorf("scenario dt/duration: %w", dynamo.ErrParameterBounds)
	}
	if sc.Preset != "" && config.GetPreset(sc.Preset) == nil {
		return fmt.Errorf("unknown preset %q", sc.Preset)
	}
	for i, c := range sc.Commands {
		switch c.Action {
		case ActionAdd:
			if c.Body == nil {
				return fmt.Errorf("command %d: add without body", i+1)
			}
		case ActionRemove, ActionToggle, ActionPlanetary, ActionTimeScale,
			ActionG, ActionPlay, ActionPause, ActionIntegrator:
		default:
			return fmt.Errorf("command %d: unknown action %q", i+1, c.Action)
		}
		if c.At < 0 {
			return fmt.Errorf("command %d: at %v: %w", i+1, c.At, dynamo.ErrParameterBounds)
		}
	}
	return nil
}

// Apply runs one command against the sandbox.
func (c Command) Apply(s *sim.Sandbox) error {
	switch c.Action {
	case ActionAdd:
		_, err := s.AddBody(r2.Vec{X: c.Body.X, Y: c.Body.Y}, c.Body.Spec())
		return err
	case ActionRemove:
		return s.RemoveBody(c.ID)
	case ActionToggle:
		return s.ToggleOrbitalMode(c.ID)
	case ActionPlanetary:
		s.SetPlanetaryForces(c.On)
	case ActionTimeScale:
		return s.SetTimeScale(c.Value)
	case ActionG:
		return s.SetG(c.Value)
	case ActionPlay:
		s.SetPlaying(true)
	case ActionPause:
		s.SetPlaying(false)
	case ActionIntegrator:
		return s.SetIntegrator(c.Name)
	default:
		return fmt.Errorf("unknown action %q", c.Action)
	}
	return nil
}

// Report summarizes a scenario run.
type Report struct {
	Frames      int
	SimTime     float64
	Applied     int
	Failed      int
	EnergyDrift float64
	Stability   float64
	Escapes     int
	Energy      []float64
	// Distance samples the tracked body, one entry per stepped frame.
	Distance []float64
}

// RunScenario drives s frame by frame for the scenario duration, firing
// each command on the first frame at or after its offset. Command errors
// are logged and counted, not fatal.
func RunScenario(ctx context.Context, sc *Scenario, s *sim.Sandbox, log logr.Logger) (*Report, error) {
	dt := sc.Dt
	if dt <= 0 {
		dt = config.DefaultDt
	}
	frame := time.Duration(dt * float64(time.Second))

	cmds := append([]Command(nil), sc.Commands...)
	sort.SliceStable(cmds, func(i, j int) bool { return cmds[i].At < cmds[j].At })

	drift := metrics.NewEnergyDrift()
	stability := metrics.NewStability()
	s.AddMetric(drift)
	s.AddMetric(stability)

	rep := &Report{}
	frames := int(math.Ceil(sc.Duration/dt - 1e-9))
	next := 0

	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		now := float64(i) * dt
		for next < len(cmds) && cmds[next].At <= now {
			c := cmds[next]
			next++
			if err := c.Apply(s); err != nil {
				rep.Failed++
				log.Error(err, "scenario command failed", "at", c.At, "action", c.Action)
				continue
			}
			rep.Applied++
			log.V(1).Info("scenario command", "at", c.At, "action", c.Action)
		}

		f := s.Tick(frame)
		if f.Err != nil {
			return rep, f.Err
		}
		rep.Frames++
		if f.Stepped {
			rep.Energy = append(rep.Energy, drift.Current())
			if d, ok := distance(f, sc.Track); ok {
				rep.Distance = append(rep.Distance, d)
			}
		}
	}

	rep.SimTime = s.Time()
	rep.EnergyDrift = drift.Value()
	rep.Stability = stability.Value()
	rep.Escapes = stability.Escapes()
	return rep, nil
}

func distance(f sim.Frame, id uint64) (float64, bool) {
	if id == 0 || len(f.Bodies) == 0 {
		return 0, false
	}
	for _, b := range f.Bodies[1:] {
		if b.ID == id {
			return r2.Norm(r2.Sub(b.Pos, f.Bodies[0].Pos)), true
		}
	}
	return 0, false
}

// Sandbox builds the starting world: the named preset, or an empty
// default world.
func (sc *Scenario) Sandbox(log logr.Logger) (*sim.Sandbox, error) {
	cfg := config.DefaultConfig()
	if sc.Preset != "" {
		if cfg = config.GetPreset(sc.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", sc.Preset)
		}
	}
	return cfg.Build(log)
}

// ParameterSweep reruns one configuration across a range of values of a
// single parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue  float64
	EnergyDrift float64
	Stability   float64
	Escapes     int
	MaxEnergy   float64
	MinEnergy   float64
}

func setParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "g":
		cfg.Params.G = v
	case "time_scale":
		cfg.Params.TimeScale = v
	case "proximity":
		cfg.Params.Proximity = v
	case "theta":
		cfg.Params.Theta = v
	case "spread":
		cfg.Spread = v
	default:
		return fmt.Errorf("unknown sweep parameter %q", name)
	}
	return nil
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, log logr.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep steps %d: %w", sweep.NumSteps, dynamo.ErrParameterBounds)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := sweep.Base.Clone()
		if err := setParam(cfg, sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		s, err := cfg.Build(log)
		if err != nil {
			return results, fmt.Errorf("sweep %s=%v: %w", sweep.ParamName, paramVal, err)
		}

		rep, err := RunScenario(ctx, &Scenario{Dt: cfg.Dt, Duration: cfg.Duration}, s, log)
		if err != nil {
			return results, fmt.Errorf("sweep %s=%v: %w", sweep.ParamName, paramVal, err)
		}

		res := SweepResult{
			ParamValue:  paramVal,
			EnergyDrift: rep.EnergyDrift,
			Stability:   rep.Stability,
			Escapes:     rep.Escapes,
		}
		for j, e := range rep.Energy {
			if j == 0 || e > res.MaxEnergy {
				res.MaxEnergy = e
			}
			if j == 0 || e < res.MinEnergy {
				res.MinEnergy = e
			}
		}
		results = append(results, res)

		log.V(1).Info("sweep point", "param", sweep.ParamName, "value", paramVal, "drift", rep.EnergyDrift)
	}

	return results, nil
}
