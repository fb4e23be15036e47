// Package physics holds the bodies of the sandbox and the laws acting on
// them.
//
//   - [Body] and [World]: point masses in roster order, primary first
//   - [ComputeForce], [NetForce], [PairForces]: Newtonian pairwise gravity
//     with a proximity clamp
//   - [Field]: the world as a [dynamo.System], exact or Barnes-Hut
//   - [InitVelocity], [Decompose]: circular-orbit initialization and
//     radial/tangential projection
//
// # Planetary forces
//
// With Params.PlanetaryForces off only the primary pulls; the other
// bodies neither attract each other nor the primary:
//
//	p := dynamo.DefaultParams()
//	p.PlanetaryForces = false
//	f := physics.NetForce(world.Bodies, 1, p) // primary's pull only
package physics
