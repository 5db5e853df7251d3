package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/rid"
)

// AreaEvent is one overlap change delivered to an AreaMonitor.
type AreaEvent struct {
	Status      AreaBodyStatus
	Object      rid.RID
	InstanceID  uint64
	ObjectShape int
	AreaShape   int
}

// AreaMonitor receives overlap changes from flush queries.
type AreaMonitor interface {
	OnAreaOverlap(ev AreaEvent)
}

// AreaMonitorFunc adapts a function to AreaMonitor.
type AreaMonitorFunc func(ev AreaEvent)

func (f AreaMonitorFunc) OnAreaOverlap(ev AreaEvent) { f(ev) }

type monitorKey struct {
	object      rid.RID
	instanceID  uint64
	objectShape int
	areaShape   int
}

type monitorTable struct {
	state map[monitorKey]int
	order []monitorKey
}

func (t *monitorTable) inc(k monitorKey, d int) {
	if t.state == nil {
		t.state = make(map[monitorKey]int)
	}
	if _, ok := t.state[k]; !ok {
		t.order = append(t.order, k)
	}
	t.state[k] += d
}

func (t *monitorTable) empty() bool { return len(t.order) == 0 }

func (t *monitorTable) clear() {
	t.state = nil
	t.order = nil
}

// flush emits one event per key whose count is non-zero, then clears.
func (t *monitorTable) flush(m AreaMonitor) {
	for _, k := range t.order {
		n := t.state[k]
		if n == 0 {
			continue
		}
		status := AreaBodyAdded
		if n < 0 {
			status = AreaBodyRemoved
		}
		m.OnAreaOverlap(AreaEvent{
			Status:      status,
			Object:      k.object,
			InstanceID:  k.instanceID,
			ObjectShape: k.objectShape,
			AreaShape:   k.areaShape,
		})
	}
	t.clear()
}

// Area is a region that can override gravity and damping for the bodies it
// overlaps and report overlaps to monitors.
type Area struct {
	CollisionObject

	overrideMode         AreaSpaceOverrideMode
	gravity              float64
	gravityVector        mgl64.Vec3
	gravityIsPoint       bool
	gravityDistanceScale float64
	pointAttenuation     float64
	linearDamp           float64
	angularDamp          float64
	priority             int
	monitorable          bool

	monitor     AreaMonitor
	areaMonitor AreaMonitor

	monitoredBodies monitorTable
	monitoredAreas  monitorTable

	constraints orderedSet[Constraint]
}

func NewArea() *Area {
	a := &Area{
		gravity:          9.8,
		gravityVector:    mgl64.Vec3{0, -1, 0},
		pointAttenuation: 1,
		linearDamp:       0.1,
		angularDamp:      1,
	}
	a.init(KindArea, a)
	return a
}

func (a *Area) SetSpace(space *Space) {
	if a.space != nil {
		a.space.monitorQueryList.remove(a)
		a.space.areaMovedList.remove(a)
	}
	a.monitoredBodies.clear()
	a.monitoredAreas.clear()
	a.setSpace(space)
}

func (a *Area) SetTransform(t geom.Transform) {
	if a.space != nil {
		a.space.areaMovedList.add(a)
	}
	a.setTransform(t, true)
	a.setInvTransform(t.AffineInverse())
}

func (a *Area) SpaceOverrideMode() AreaSpaceOverrideMode { return a.overrideMode }

// SetSpaceOverrideMode re-registers the shapes when overriding is switched
// on or off so body membership is rebuilt.
func (a *Area) SetSpaceOverrideMode(mode AreaSpaceOverrideMode) {
	wasOn := a.overrideMode != AreaOverrideDisabled
	if (mode != AreaOverrideDisabled) == wasOn {
		a.overrideMode = mode
		return
	}
	a.unregisterShapes()
	a.overrideMode = mode
	a.updateShapes()
	a.shapesChanged()
}

func (a *Area) SetParam(p AreaParameter, v any) error {
	switch p {
	case AreaParamGravityVector:
		vec, ok := v.(mgl64.Vec3)
		if !ok {
			return fmt.Errorf("%w: gravity vector wants mgl64.Vec3, got %T", ErrWrongValue, v)
		}
		a.gravityVector = vec
		return nil
	case AreaParamGravityIsPoint:
		is, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%w: gravity is point wants bool, got %T", ErrWrongValue, v)
		}
		a.gravityIsPoint = is
		return nil
	case AreaParamPriority:
		n, ok := v.(int)
		if !ok {
			return fmt.Errorf("%w: priority wants int, got %T", ErrWrongValue, v)
		}
		a.priority = n
		return nil
	}

	f, ok := v.(float64)
	if !ok {
		return fmt.Errorf("%w: area param %d wants float64, got %T", ErrWrongValue, p, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: area param %d = %v", ErrInvalidParameter, p, f)
	}
	switch p {
	case AreaParamGravity:
		a.gravity = f
	case AreaParamGravityDistanceScale:
		a.gravityDistanceScale = f
	case AreaParamGravityPointAttenuation:
		a.pointAttenuation = f
	case AreaParamLinearDamp:
		a.linearDamp = f
	case AreaParamAngularDamp:
		a.angularDamp = f
	default:
		return fmt.Errorf("%w: unknown area param %d", ErrInvalidParameter, p)
	}
	return nil
}

func (a *Area) Param(p AreaParameter) any {
	switch p {
	case AreaParamGravity:
		return a.gravity
	case AreaParamGravityVector:
		return a.gravityVector
	case AreaParamGravityIsPoint:
		return a.gravityIsPoint
	case AreaParamGravityDistanceScale:
		return a.gravityDistanceScale
	case AreaParamGravityPointAttenuation:
		return a.pointAttenuation
	case AreaParamLinearDamp:
		return a.linearDamp
	case AreaParamAngularDamp:
		return a.angularDamp
	case AreaParamPriority:
		return a.priority
	}
	return nil
}

func (a *Area) Priority() int { return a.priority }

func (a *Area) IsMonitorable() bool { return a.monitorable }

func (a *Area) SetMonitorable(m bool) {
	if a.monitorable == m {
		return
	}
	a.monitorable = m
	a.markMoved()
}

func (a *Area) HasMonitor() bool     { return a.monitor != nil }
func (a *Area) HasAreaMonitor() bool { return a.areaMonitor != nil }

// SetMonitor replaces the body monitor and rebuilds overlap state so the new
// monitor sees every current overlap as an addition.
func (a *Area) SetMonitor(m AreaMonitor) {
	a.unregisterShapes()
	a.monitor = m
	a.monitoredBodies.clear()
	a.updateShapes()
	a.shapesChanged()
}

func (a *Area) SetAreaMonitor(m AreaMonitor) {
	a.unregisterShapes()
	a.areaMonitor = m
	a.monitoredAreas.clear()
	a.updateShapes()
	a.shapesChanged()
}

func (a *Area) addBodyToQuery(b *Body, bodyShape, areaShape int) {
	a.monitoredBodies.inc(monitorKey{b.self, b.instanceID, bodyShape, areaShape}, 1)
	a.queueMonitorUpdate()
}

func (a *Area) removeBodyFromQuery(b *Body, bodyShape, areaShape int) {
	a.monitoredBodies.inc(monitorKey{b.self, b.instanceID, bodyShape, areaShape}, -1)
	a.queueMonitorUpdate()
}

func (a *Area) addAreaToQuery(other *Area, otherShape, areaShape int) {
	a.monitoredAreas.inc(monitorKey{other.self, other.instanceID, otherShape, areaShape}, 1)
	a.queueMonitorUpdate()
}

func (a *Area) removeAreaFromQuery(other *Area, otherShape, areaShape int) {
	a.monitoredAreas.inc(monitorKey{other.self, other.instanceID, otherShape, areaShape}, -1)
	a.queueMonitorUpdate()
}

func (a *Area) queueMonitorUpdate() {
	if a.space != nil {
		a.space.monitorQueryList.add(a)
	}
}

func (a *Area) markMoved() {
	if a.space != nil {
		a.space.areaMovedList.add(a)
	}
}

func (a *Area) addConstraint(c Constraint)    { a.constraints.add(c) }
func (a *Area) removeConstraint(c Constraint) { a.constraints.remove(c) }

// ClearConstraints forgets every overlap pair without notifying them.
func (a *Area) ClearConstraints() { a.constraints.clear() }

func (a *Area) callQueries() {
	if a.monitor != nil && !a.monitoredBodies.empty() {
		if e, ok := a.monitor.(Expirer); ok && e.Expired() {
			a.monitor = nil
		} else {
			a.monitoredBodies.flush(a.monitor)
		}
	}
	a.monitoredBodies.clear()

	if a.areaMonitor != nil && !a.monitoredAreas.empty() {
		if e, ok := a.areaMonitor.(Expirer); ok && e.Expired() {
			a.areaMonitor = nil
		} else {
			a.monitoredAreas.flush(a.areaMonitor)
		}
	}
	a.monitoredAreas.clear()
}

func (a *Area) shapesChanged() { a.markMoved() }

func (a *Area) shapeIndexRemoved(index int) {
	for _, c := range a.constraints.snapshot() {
		c.ShiftShapeIndices(&a.CollisionObject, index)
	}
}
