package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// Default is the live integrator of the sandbox.
const Default = "symplectic"

var registry = map[string]func() dynamo.Integrator{
	"symplectic": func() dynamo.Integrator { return NewSemiImplicitEuler() },
	"euler":      func() dynamo.Integrator { return NewEuler() },
	"rk4":        func() dynamo.Integrator { return NewRK4() },
	"rk45":       func() dynamo.Integrator { return NewRK45() },
	"verlet":     func() dynamo.Integrator { return NewVerlet() },
	"leapfrog":   func() dynamo.Integrator { return NewLeapfrog() },
}

// New returns a fresh integrator by name.
func New(name string) (dynamo.Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%q (available: %v): %w", name, Names(), dynamo.ErrUnknownIntegrator)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
