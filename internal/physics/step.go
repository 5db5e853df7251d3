package physics

import "time"

type island struct {
	bodies      []*Body
	constraints []Constraint
}

// Stepper advances spaces. The step counter stamps bodies and constraints
// during island generation, so one Stepper should drive a space for its
// whole life.
type Stepper struct {
	step    uint64
	islands []island
	stack   []*Body
}

func NewStepper() *Stepper { return &Stepper{step: 1} }

// StepCount is the number of steps taken so far.
func (st *Stepper) StepCount() uint64 { return st.step - 1 }

// Step runs one fixed-order simulation step of dt seconds on space, solving
// every island iterations times.
func (st *Stepper) Step(space *Space, dt float64, iterations int) {
	space.locked = true
	space.lastStep = dt
	space.debugContactCount = 0
	for _, b := range space.inertiaUpdateList.drain() {
		b.updateInertias()
	}

	mark := time.Now()
	lap := func(e ElapsedTime) {
		now := time.Now()
		space.elapsed[e] = now.Sub(mark)
		mark = now
	}

	active := space.activeList.snapshot()
	for _, b := range active {
		b.integrateForces(dt)
	}
	space.activeObjects = len(active)
	lap(ElapsedIntegrateForces)

	st.islands = st.islands[:0]
	space.islandCount = 0
	for _, b := range space.activeList.snapshot() {
		if b.islandStep == st.step {
			continue
		}
		isl := st.populate(b)
		if len(isl.constraints) > 0 {
			space.islandCount++
		}
		st.islands = append(st.islands, isl)
	}

	var loose []Constraint
	for _, a := range space.areaMovedList.drain() {
		for _, c := range a.constraints.snapshot() {
			if c.islandStep() == st.step {
				continue
			}
			c.setIslandStep(st.step)
			loose = append(loose, c)
		}
	}
	lap(ElapsedGenerateIslands)

	for i := range st.islands {
		st.islands[i].constraints = setupConstraints(st.islands[i].constraints, dt)
	}
	loose = setupConstraints(loose, dt)
	lap(ElapsedSetupConstraints)

	for i := range st.islands {
		solveConstraints(st.islands[i].constraints, dt, iterations)
	}
	solveConstraints(loose, dt, iterations)
	lap(ElapsedSolveConstraints)

	for _, b := range space.activeList.snapshot() {
		b.integrateVelocities(dt)
	}
	lap(ElapsedIntegrateVelocities)

	for i := range st.islands {
		checkSuspend(st.islands[i].bodies, dt)
	}

	space.broadphase.Update()
	space.locked = false
	st.step++
}

// populate collects the island reachable from root over constraint maps.
// Static and kinematic bodies end an edge; they are never stamped.
func (st *Stepper) populate(root *Body) island {
	var isl island
	root.islandStep = st.step
	st.stack = append(st.stack[:0], root)
	for len(st.stack) > 0 {
		b := st.stack[len(st.stack)-1]
		st.stack = st.stack[:len(st.stack)-1]
		isl.bodies = append(isl.bodies, b)

		for _, e := range b.constraints.entries {
			c := e.c
			if c.islandStep() == st.step {
				continue
			}
			c.setIslandStep(st.step)
			isl.constraints = append(isl.constraints, c)

			for i, other := range c.Bodies() {
				if i == e.slot || other.islandStep == st.step || other.mode <= BodyModeKinematic || other.space != root.space {
					continue
				}
				other.islandStep = st.step
				st.stack = append(st.stack, other)
			}
		}
	}
	return isl
}

func setupConstraints(cs []Constraint, dt float64) []Constraint {
	kept := cs[:0]
	for _, c := range cs {
		if c.Setup(dt) {
			kept = append(kept, c)
		}
	}
	return kept
}

func solveConstraints(cs []Constraint, dt float64, iterations int) {
	for it := 0; it < iterations; it++ {
		for _, c := range cs {
			c.Solve(dt)
		}
	}
}

// checkSuspend puts the whole island to sleep when every dynamic body in it
// passes the sleep test, and wakes all of them otherwise.
func checkSuspend(bodies []*Body, dt float64) {
	canSleep := true
	for _, b := range bodies {
		if b.mode <= BodyModeKinematic || b.space == nil {
			continue
		}
		if !b.sleepTest(dt) {
			canSleep = false
		}
	}
	for _, b := range bodies {
		if b.mode <= BodyModeKinematic || b.space == nil {
			continue
		}
		if b.active == canSleep {
			b.setActive(!canSleep)
		}
	}
}
