// Package viz draws running scenarios in the terminal.
//
// The live view steps a [scenario.Runner] on a timer and renders every body
// as a wireframe on a Braille [Canvas], next to a panel of server counters
// and a kinetic energy chart:
//
//   - [Model]: the Bubble Tea live view for one scenario
//   - [Menu]: preset picker that opens a live view
//   - [Camera], [Wireframe]: orbit camera and line projection
//
// # Key Bindings
//
//	Space - Pause/Resume stepping
//	N     - Single step while paused
//	R     - Rebuild the scenario
//	Tab   - Select the next body
//	A     - Show or hide areas
//	X/Y   - Orbit the camera (shift reverses)
//	+/-   - Zoom
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
