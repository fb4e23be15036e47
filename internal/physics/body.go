package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Kind tags the kind-specific payload a body carries.
type Kind string

const (
	KindStar     Kind = "star"
	KindPlanet   Kind = "planet"
	KindMoon     Kind = "moon"
	KindAsteroid Kind = "asteroid"
)

func (k Kind) Valid() bool {
	switch k {
	case KindStar, KindPlanet, KindMoon, KindAsteroid:
		return true
	}
	return false
}

// Payload is the kind-specific extension data of a body. The integrator
// never looks at it.
type Payload interface {
	Kind() Kind
}

type StarPayload struct {
	Temperature float64 `yaml:"temperature"` // kelvin, drives the render color
}

func (StarPayload) Kind() Kind { return KindStar }

type PlanetPayload struct {
	Color  string `yaml:"color"`
	Ringed bool   `yaml:"ringed"`
}

func (PlanetPayload) Kind() Kind { return KindPlanet }

type MoonPayload struct {
	Color string `yaml:"color"`
}

func (MoonPayload) Kind() Kind { return KindMoon }

type AsteroidPayload struct {
	Irregularity float64 `yaml:"irregularity"`
}

func (AsteroidPayload) Kind() Kind { return KindAsteroid }

// DefaultPayload returns the zero payload for a kind.
func DefaultPayload(k Kind) Payload {
	switch k {
	case KindStar:
		return StarPayload{Temperature: 5800}
	case KindMoon:
		return MoonPayload{Color: "#bbbbbb"}
	case KindAsteroid:
		return AsteroidPayload{Irregularity: 0.3}
	default:
		return PlanetPayload{Color: "#4f8fff"}
	}
}

// Body is a point mass. Pos, Vel, Mass and Radius are all the physics
// reads; Kind and Payload ride along for renderers.
type Body struct {
	ID      uint64
	Pos     r2.Vec
	Vel     r2.Vec
	Mass    float64
	Radius  float64
	Orbital bool
	Kind    Kind
	Payload Payload
}

// NewBody validates the numeric fields and returns a body at rest.
func NewBody(id uint64, pos r2.Vec, mass, radius float64, kind Kind) (Body, error) {
	if !finite(pos.X) || !finite(pos.Y) || !finite(mass) || !finite(radius) {
		return Body{}, fmt.Errorf("body %d: %w", id, dynamo.ErrInvalidState)
	}
	if mass <= 0 {
		return Body{}, fmt.Errorf("body %d: mass %g: %w", id, mass, dynamo.ErrInvalidMass)
	}
	if radius <= 0 {
		return Body{}, fmt.Errorf("body %d: radius %g: %w", id, radius, dynamo.ErrInvalidRadius)
	}
	if !kind.Valid() {
		kind = KindPlanet
	}
	return Body{
		ID:      id,
		Pos:     pos,
		Mass:    mass,
		Radius:  radius,
		Orbital: true,
		Kind:    kind,
		Payload: DefaultPayload(kind),
	}, nil
}

func (b Body) String() string {
	return fmt.Sprintf("%s#%d m=%.4g p=[%.2f, %.2f] v=[%.2f, %.2f]",
		b.Kind, b.ID, b.Mass, b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
