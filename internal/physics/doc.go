// Package physics is the rigid-body core: collision objects, bodies, areas,
// constraints, spaces and the fixed-order stepper.
//
// Nothing here is safe for concurrent use. A [Space] is mutated through the
// server facade between steps and by [Stepper.Step] during a step; the
// space is locked for the duration of the step.
//
// # Step pipeline
//
//   - drain the inertia update list
//   - integrate forces for every active body
//   - build islands from active bodies over their constraint maps
//   - set up and solve constraints island by island
//   - integrate velocities
//   - put whole islands to sleep or wake them
//   - refresh broad-phase pairs
//
// Contacts, area overlaps and joints all implement [Constraint], so the
// solver treats them alike.
package physics
