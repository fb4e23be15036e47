// Package dynamo provides core simulation primitives shared by the
// gravity sandbox.
//
// The package defines the fundamental interfaces and types for numerical
// integration of the N-body equations of motion:
//
//   - [State]: flat vector of positions followed by velocities
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Accelerator]: a System that yields accelerations without the
//     velocity half of the derivative
//   - [Hamiltonian]: a System with energy and momenta
//   - [Integrator]: numerical stepper interface
//   - [Params]: global simulation parameters passed into every call
//
// # Example
//
//	field := physics.NewField(world, dynamo.DefaultParams())
//	integ := integrators.NewSemiImplicitEuler()
//	next := integ.Step(field, world.Pack(), 0, dt)
//
// # Thread Safety
//
// None of the types here hold shared state; a [State] returned by an
// integrator is always a fresh slice.
package dynamo
