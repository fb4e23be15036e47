// Package viz is the terminal front end of the gravity sandbox.
//
// It hosts a [sim.Sandbox] inside a Bubble Tea program:
//
//   - [Model]: the live view; it ticks the sandbox at 60 Hz and runs orbit
//     predictions as background commands
//   - [Canvas]: Braille-based pixel canvas, with [Viewport] mapping world
//     coordinates onto it
//   - a preset picker that tunes a configuration before launching the view
//   - Theme selection with 5 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	A     - Add a body at the cursor
//	X     - Remove the selected body
//	O     - Toggle orbital mode of the selected body
//	P     - Toggle planetary forces
//	R     - Reset to the preset
//	E     - Export an SVG snapshot
//	?     - Show help overlay
//
// # Recording
//
// Shift+R toggles recording; the canvas frames are written to gravsim.gif
// in the current directory when recording stops.
package viz
