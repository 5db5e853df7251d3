// Package server is the handle-based front end of the physics core.
//
// Every resource (shape, space, area, body, joint) is created through a
// [Server] and referred to by an opaque [rid.RID]. Handles are weak: each
// call validates them against the owning table, and a failed call is logged
// and returns an error or a zero value instead of panicking.
//
// The per-tick driver is
//
//	srv.Step(dt)
//	srv.FlushQueries()
//
// Mutations made between ticks write straight into the live objects and are
// seen by the next Step. A Server is not safe for concurrent use; separate
// servers are independent.
package server

import (
	"io"
	"log"
	"time"

	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/rid"
	"github.com/san-kum/rigidsim/internal/shape"
)

const (
	tagShape uint8 = iota + 1
	tagBody
	tagArea
	tagSpace
	tagJoint
)

const defaultIterations = 8

// ProcessInfo selects a diagnostic counter for ProcessInfo.
type ProcessInfo int

const (
	InfoActiveObjects ProcessInfo = iota
	InfoCollisionPairs
	InfoIslandCount
)

// StepProfile holds the timings of the last Step and FlushQueries, summed
// over every active space.
type StepProfile struct {
	Phases [physics.ElapsedMax]time.Duration
	Step   time.Duration
	Flush  time.Duration
}

type Server struct {
	shapes *rid.Owner[shape.Shape]
	bodies *rid.Owner[*physics.Body]
	areas  *rid.Owner[*physics.Area]
	spaces *rid.Owner[*physics.Space]
	joints *rid.Owner[physics.Joint]

	stepper    *physics.Stepper
	active     bool
	doingSync  bool
	flushing   bool
	iterations int
	lastStep   float64

	// active spaces in activation order
	activeSpaces []*physics.Space

	activeObjects  int
	collisionPairs int
	islandCount    int
	profile        StepProfile

	logger *log.Logger
}

type Option func(*Server)

// WithLogger sends diagnostics to l. A nil logger silences them.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l == nil {
			l = log.New(io.Discard, "", 0)
		}
		s.logger = l
	}
}

// WithIterations sets the solver iterations per step. Values below one are
// ignored.
func WithIterations(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.iterations = n
		}
	}
}

func New(opts ...Option) *Server {
	s := &Server{
		shapes:     rid.NewOwner[shape.Shape](tagShape),
		bodies:     rid.NewOwner[*physics.Body](tagBody),
		areas:      rid.NewOwner[*physics.Area](tagArea),
		spaces:     rid.NewOwner[*physics.Space](tagSpace),
		joints:     rid.NewOwner[physics.Joint](tagJoint),
		active:     true,
		iterations: defaultIterations,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Init()
	return s
}

// Init resets the stepper. New calls it; call it again after Finish to reuse
// the server.
func (s *Server) Init() {
	s.stepper = physics.NewStepper()
	s.doingSync = true
	s.lastStep = 0.001
}

func (s *Server) SetActive(active bool) { s.active = active }
func (s *Server) IsActive() bool        { return s.active }

func (s *Server) Iterations() int { return s.iterations }

func (s *Server) SetIterations(n int) error {
	if n < 1 {
		return s.fail("set_iterations", rid.Invalid, ErrInvalidParameter)
	}
	s.iterations = n
	return nil
}

// Step advances every active space by dt. Force-integration callbacks and
// area monitors queued by the step run in the following FlushQueries.
func (s *Server) Step(dt float64) {
	if !s.active {
		return
	}
	if s.flushing {
		s.logf("step", rid.Invalid, ErrSpaceLocked)
		return
	}
	start := time.Now()
	s.doingSync = false
	s.lastStep = dt
	s.activeObjects, s.collisionPairs, s.islandCount = 0, 0, 0
	s.profile.Phases = [physics.ElapsedMax]time.Duration{}

	for _, sp := range s.activeSpaces {
		sp.BlockQueries(true)
		s.stepper.Step(sp, dt, s.iterations)
		s.activeObjects += sp.ActiveObjects()
		s.collisionPairs += sp.CollisionPairs()
		s.islandCount += sp.IslandCount()
		for e := physics.ElapsedTime(0); e < physics.ElapsedMax; e++ {
			s.profile.Phases[e] += sp.Elapsed(e)
		}
	}
	s.profile.Step = time.Since(start)
}

// Sync marks the point where the owner reads back state. State is written
// directly into live objects, so there is nothing to copy.
func (s *Server) Sync() {}

// FlushQueries runs the callbacks queued by the last Step. Direct space
// state becomes available again once it returns.
func (s *Server) FlushQueries() {
	if !s.active {
		return
	}
	start := time.Now()
	s.flushing = true
	spaces := append([]*physics.Space(nil), s.activeSpaces...)
	for _, sp := range spaces {
		sp.CallQueries()
	}
	for _, sp := range spaces {
		sp.BlockQueries(false)
	}
	s.flushing = false
	s.doingSync = true
	s.profile.Flush = time.Since(start)
}

// Finish frees every resource the server still owns.
func (s *Server) Finish() {
	var all []rid.RID
	collect := func(r rid.RID) { all = append(all, r) }
	s.joints.Each(func(r rid.RID, _ physics.Joint) { collect(r) })
	s.bodies.Each(func(r rid.RID, _ *physics.Body) { collect(r) })
	s.areas.Each(func(r rid.RID, _ *physics.Area) { collect(r) })
	s.spaces.Each(func(r rid.RID, _ *physics.Space) { collect(r) })
	s.shapes.Each(func(r rid.RID, _ shape.Shape) { collect(r) })
	for _, r := range all {
		_ = s.Free(r)
	}
	s.activeSpaces = nil
}

// ProcessInfo reports a counter from the last Step.
func (s *Server) ProcessInfo(info ProcessInfo) int {
	switch info {
	case InfoActiveObjects:
		return s.activeObjects
	case InfoCollisionPairs:
		return s.collisionPairs
	case InfoIslandCount:
		return s.islandCount
	}
	s.logf("get_process_info", rid.Invalid, ErrInvalidParameter)
	return 0
}

func (s *Server) StepProfile() StepProfile { return s.profile }

func (s *Server) StepCount() uint64 { return s.stepper.StepCount() }

// Free releases r. Handles are looked up in the order shape, body, area,
// space, joint.
func (s *Server) Free(r rid.RID) error {
	switch {
	case s.shapes.Owns(r):
		s.freeShape(r)
	case s.bodies.Owns(r):
		return s.freeBody(r)
	case s.areas.Owns(r):
		return s.freeArea(r)
	case s.spaces.Owns(r):
		return s.freeSpace(r)
	case s.joints.Owns(r):
		j, _ := s.joints.Get(r)
		j.Detach()
		s.joints.Free(r)
	default:
		return s.fail("free", r, ErrInvalidRID)
	}
	return nil
}

func (s *Server) freeShape(r rid.RID) {
	sh, _ := s.shapes.Get(r)
	for _, o := range sh.Owners() {
		o.RemoveShape(sh)
	}
	s.shapes.Free(r)
}

func (s *Server) freeBody(r rid.RID) error {
	b, _ := s.bodies.Get(r)
	if sp := b.Space(); sp != nil && sp.IsLocked() {
		return s.fail("free", r, ErrSpaceLocked)
	}
	s.detachJoints(func(j physics.Joint) bool { return j.BodyA() == b || j.BodyB() == b })
	b.SetSpace(nil)
	b.ClearShapes()
	b.SetForceIntegrationCallback(nil, nil)
	s.bodies.Free(r)
	return nil
}

func (s *Server) freeArea(r rid.RID) error {
	a, _ := s.areas.Get(r)
	if sp := a.Space(); sp != nil && sp.IsLocked() {
		return s.fail("free", r, ErrSpaceLocked)
	}
	a.SetSpace(nil)
	a.ClearShapes()
	a.SetMonitor(nil)
	a.SetAreaMonitor(nil)
	s.areas.Free(r)
	return nil
}

func (s *Server) freeSpace(r rid.RID) error {
	sp, _ := s.spaces.Get(r)
	if sp.IsLocked() {
		return s.fail("free", r, ErrSpaceLocked)
	}
	static := sp.StaticGlobalBody()
	s.detachJoints(func(j physics.Joint) bool { return j.BodyA() == static || j.BodyB() == static })
	s.deactivate(sp)
	sp.Release()
	s.spaces.Free(r)
	return nil
}

// detachJoints detaches every live joint matching fn. Detached joints keep
// their handles until freed.
func (s *Server) detachJoints(fn func(physics.Joint) bool) {
	s.joints.Each(func(_ rid.RID, j physics.Joint) {
		if !j.Detached() && fn(j) {
			j.Detach()
		}
	})
}

func (s *Server) deactivate(sp *physics.Space) {
	for i, o := range s.activeSpaces {
		if o == sp {
			s.activeSpaces = append(s.activeSpaces[:i], s.activeSpaces[i+1:]...)
			return
		}
	}
}

// kindError tells a stale handle from a live handle of another kind.
func (s *Server) kindError(r rid.RID) error {
	if s.shapes.Owns(r) || s.bodies.Owns(r) || s.areas.Owns(r) || s.spaces.Owns(r) || s.joints.Owns(r) {
		return ErrWrongType
	}
	return ErrInvalidRID
}

func (s *Server) fail(op string, r rid.RID, err error) error {
	e := &OpError{Op: op, RID: r, Wrapped: err}
	s.logger.Printf("physics: %v", e)
	return e
}

// logf is fail for getters, which have no error to return.
func (s *Server) logf(op string, r rid.RID, err error) {
	_ = s.fail(op, r, err)
}

func (s *Server) shape(op string, r rid.RID) (shape.Shape, error) {
	if sh, ok := s.shapes.Get(r); ok {
		return sh, nil
	}
	return nil, s.fail(op, r, s.kindError(r))
}

func (s *Server) space(op string, r rid.RID) (*physics.Space, error) {
	if sp, ok := s.spaces.Get(r); ok {
		return sp, nil
	}
	return nil, s.fail(op, r, s.kindError(r))
}

func (s *Server) body(op string, r rid.RID) (*physics.Body, error) {
	if b, ok := s.bodies.Get(r); ok {
		return b, nil
	}
	return nil, s.fail(op, r, s.kindError(r))
}

func (s *Server) area(op string, r rid.RID) (*physics.Area, error) {
	if a, ok := s.areas.Get(r); ok {
		return a, nil
	}
	return nil, s.fail(op, r, s.kindError(r))
}

// areaOrDefault is area, except that a space handle resolves to the
// space's default area.
func (s *Server) areaOrDefault(op string, r rid.RID) (*physics.Area, error) {
	if sp, ok := s.spaces.Get(r); ok {
		return sp.DefaultArea(), nil
	}
	return s.area(op, r)
}

func (s *Server) joint(op string, r rid.RID) (physics.Joint, error) {
	if j, ok := s.joints.Get(r); ok {
		return j, nil
	}
	return nil, s.fail(op, r, s.kindError(r))
}

// spaceOf resolves an optional space handle; rid.Invalid means no space.
func (s *Server) spaceOf(op string, r rid.RID) (*physics.Space, error) {
	if r == rid.Invalid {
		return nil, nil
	}
	return s.space(op, r)
}
