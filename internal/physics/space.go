package physics

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/broadphase"
	"github.com/san-kum/rigidsim/internal/rid"
)

// pairDestroyer is implemented by every constraint the broad phase creates.
type pairDestroyer interface {
	destroy()
}

// Space is one simulation domain: its objects, broad phase, default area and
// solver parameters.
type Space struct {
	self rid.RID

	broadphase broadphase.BroadPhase[*CollisionObject]

	objects           orderedSet[*CollisionObject]
	activeList        orderedSet[*Body]
	inertiaUpdateList orderedSet[*Body]
	stateQueryList    orderedSet[*Body]
	monitorQueryList  orderedSet[*Area]
	areaMovedList     orderedSet[*Area]

	defaultArea      *Area
	staticGlobalBody *Body

	contactRecycleRadius         float64
	contactMaxSeparation         float64
	contactMaxAllowedPenetration float64
	linearSleepThreshold         float64
	angularSleepThreshold        float64
	timeToSleep                  float64
	angularDampRatio             float64
	constraintBias               float64

	locked         bool
	queriesBlocked bool
	lastStep       float64

	activeObjects  int
	collisionPairs int
	islandCount    int

	elapsed [ElapsedMax]time.Duration

	debugContacts     []mgl64.Vec3
	debugContactCount int
}

// NewSpace returns an empty space using the given broad phase, or a sweep and
// prune broad phase when bp is nil.
func NewSpace(bp broadphase.BroadPhase[*CollisionObject]) *Space {
	if bp == nil {
		bp = broadphase.NewSweepAndPrune[*CollisionObject]()
	}
	s := &Space{
		broadphase:                   bp,
		contactRecycleRadius:         0.01,
		contactMaxSeparation:         0.05,
		contactMaxAllowedPenetration: 0.01,
		linearSleepThreshold:         defaultSleepThresholdLinear,
		angularSleepThreshold:        defaultSleepThresholdAngular,
		timeToSleep:                  defaultTimeToSleep,
		angularDampRatio:             10,
		constraintBias:               0.01,
	}
	bp.SetPairCallback(s.pair)
	bp.SetUnpairCallback(s.unpair)

	s.defaultArea = NewArea()
	s.defaultArea.priority = -1
	s.defaultArea.SetSpace(s)
	s.staticGlobalBody = NewBody()
	s.staticGlobalBody.SetMode(BodyModeStatic)
	return s
}

func (s *Space) DefaultArea() *Area      { return s.defaultArea }
func (s *Space) StaticGlobalBody() *Body { return s.staticGlobalBody }
func (s *Space) IsLocked() bool          { return s.locked }
func (s *Space) LastStep() float64       { return s.lastStep }

func (s *Space) Self() rid.RID     { return s.self }
func (s *Space) SetSelf(r rid.RID) { s.self = r }

// Release detaches every object from the space. The space must not be used
// afterwards.
func (s *Space) Release() {
	for _, co := range s.objects.snapshot() {
		co.hooks.SetSpace(nil)
	}
}

func (s *Space) SetParam(p SpaceParameter, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: space param %d = %v", ErrInvalidParameter, p, v)
	}
	switch p {
	case SpaceParamContactRecycleRadius:
		s.contactRecycleRadius = v
	case SpaceParamContactMaxSeparation:
		s.contactMaxSeparation = v
	case SpaceParamContactMaxAllowedPenetration:
		s.contactMaxAllowedPenetration = v
	case SpaceParamBodyLinearVelocitySleepThreshold:
		s.linearSleepThreshold = v
	case SpaceParamBodyAngularVelocitySleepThreshold:
		s.angularSleepThreshold = v
	case SpaceParamBodyTimeToSleep:
		s.timeToSleep = v
	case SpaceParamBodyAngularVelocityDampRatio:
		s.angularDampRatio = v
	case SpaceParamConstraintDefaultBias:
		s.constraintBias = v
	default:
		return fmt.Errorf("%w: unknown space param %d", ErrInvalidParameter, p)
	}
	return nil
}

func (s *Space) Param(p SpaceParameter) float64 {
	switch p {
	case SpaceParamContactRecycleRadius:
		return s.contactRecycleRadius
	case SpaceParamContactMaxSeparation:
		return s.contactMaxSeparation
	case SpaceParamContactMaxAllowedPenetration:
		return s.contactMaxAllowedPenetration
	case SpaceParamBodyLinearVelocitySleepThreshold:
		return s.linearSleepThreshold
	case SpaceParamBodyAngularVelocitySleepThreshold:
		return s.angularSleepThreshold
	case SpaceParamBodyTimeToSleep:
		return s.timeToSleep
	case SpaceParamBodyAngularVelocityDampRatio:
		return s.angularDampRatio
	case SpaceParamConstraintDefaultBias:
		return s.constraintBias
	}
	return 0
}

func (s *Space) ActiveObjects() int  { return s.activeObjects }
func (s *Space) CollisionPairs() int { return s.collisionPairs }
func (s *Space) IslandCount() int    { return s.islandCount }
func (s *Space) ObjectCount() int    { return s.objects.len() }

// Elapsed is the time the last step spent in phase e.
func (s *Space) Elapsed(e ElapsedTime) time.Duration {
	if e < 0 || e >= ElapsedMax {
		return 0
	}
	return s.elapsed[e]
}

// SetDebugContacts sets how many contact points are recorded per step; zero
// turns recording off.
func (s *Space) SetDebugContacts(max int) {
	if max < 0 {
		max = 0
	}
	s.debugContacts = make([]mgl64.Vec3, max)
	s.debugContactCount = 0
}

func (s *Space) DebugContacts() []mgl64.Vec3 {
	return append([]mgl64.Vec3(nil), s.debugContacts[:s.debugContactCount]...)
}

func (s *Space) addDebugContact(p mgl64.Vec3) {
	if s.debugContactCount < len(s.debugContacts) {
		s.debugContacts[s.debugContactCount] = p
		s.debugContactCount++
	}
}

// BlockQueries marks the window between a step and the end of the following
// flush, during which direct space state is unavailable.
func (s *Space) BlockQueries(blocked bool) { s.queriesBlocked = blocked }

// DirectState returns the query view of the space.
func (s *Space) DirectState() (*DirectSpaceState, error) {
	if s.locked || s.queriesBlocked {
		return nil, ErrSpaceLocked
	}
	return &DirectSpaceState{space: s}, nil
}

// CallQueries runs queued force-integration callbacks and area monitors.
func (s *Space) CallQueries() {
	for items := s.stateQueryList.drain(); len(items) > 0; items = s.stateQueryList.drain() {
		for _, b := range items {
			b.callQueries()
		}
	}
	for items := s.monitorQueryList.drain(); len(items) > 0; items = s.monitorQueryList.drain() {
		for _, a := range items {
			a.callQueries()
		}
	}
}

func (s *Space) addObject(co *CollisionObject)    { s.objects.add(co) }
func (s *Space) removeObject(co *CollisionObject) { s.objects.remove(co) }

// pair creates the constraint for two newly overlapping shapes. Areas sort
// first, so an area is always a.
func (s *Space) pair(a *CollisionObject, subA int, b *CollisionObject, subB int) any {
	if a.kind > b.kind {
		a, b = b, a
		subA, subB = subB, subA
	}
	s.collisionPairs++

	// A new area pair is set up on the next step even if neither side moves.
	switch {
	case a.kind == KindArea && b.kind == KindArea:
		a.Area().markMoved()
		return newAreaAreaPair(a.Area(), subA, b.Area(), subB)
	case a.kind == KindArea:
		a.Area().markMoved()
		return newAreaPair(b.Body(), subB, a.Area(), subA)
	default:
		return newBodyPair(a.Body(), subA, b.Body(), subB)
	}
}

func (s *Space) unpair(_ *CollisionObject, _ int, _ *CollisionObject, _ int, data any) {
	s.collisionPairs--
	if d, ok := data.(pairDestroyer); ok {
		d.destroy()
	}
}
