package physics

import "github.com/san-kum/rigidsim/internal/collision"

// AreaPair tracks the overlap of one body shape with one area shape. It never
// takes part in the solve; its Setup only updates membership.
type AreaPair struct {
	constraintBase

	body      *Body
	bodyShape int
	area      *Area
	areaShape int
	colliding bool
}

func newAreaPair(body *Body, bodyShape int, area *Area, areaShape int) *AreaPair {
	p := &AreaPair{body: body, bodyShape: bodyShape, area: area, areaShape: areaShape}
	p.bodies = []*Body{body}
	area.addConstraint(p)
	body.addConstraint(p, 0)
	return p
}

func (p *AreaPair) Setup(float64) bool {
	overlap := p.body.TestCollisionMask(&p.area.CollisionObject) && p.overlaps()
	if overlap == p.colliding {
		return false
	}
	p.colliding = overlap
	if overlap {
		if p.area.overrideMode != AreaOverrideDisabled {
			p.body.addArea(p.area)
		}
		if p.area.HasMonitor() {
			p.area.addBodyToQuery(p.body, p.bodyShape, p.areaShape)
		}
	} else {
		if p.area.overrideMode != AreaOverrideDisabled {
			p.body.removeArea(p.area)
		}
		if p.area.HasMonitor() {
			p.area.removeBodyFromQuery(p.body, p.bodyShape, p.areaShape)
		}
	}
	return false
}

func (p *AreaPair) overlaps() bool {
	if p.bodyShape >= p.body.ShapeCount() || p.areaShape >= p.area.ShapeCount() {
		return false
	}
	return collision.Solve(
		p.body.shapes[p.bodyShape].shape, p.body.transform.Mul(p.body.shapes[p.bodyShape].xform),
		p.area.shapes[p.areaShape].shape, p.area.transform.Mul(p.area.shapes[p.areaShape].xform),
		nil,
	)
}

func (p *AreaPair) Solve(float64) {}

func (p *AreaPair) ShiftShapeIndices(obj *CollisionObject, index int) {
	if obj == &p.body.CollisionObject && p.bodyShape > index {
		p.bodyShape--
	}
	if obj == &p.area.CollisionObject && p.areaShape > index {
		p.areaShape--
	}
}

func (p *AreaPair) destroy() {
	if p.colliding {
		if p.area.overrideMode != AreaOverrideDisabled {
			p.body.removeArea(p.area)
		}
		if p.area.HasMonitor() {
			p.area.removeBodyFromQuery(p.body, p.bodyShape, p.areaShape)
		}
	}
	p.body.removeConstraint(p)
	p.area.removeConstraint(p)
}

// AreaAreaPair tracks the overlap of two area shapes for area monitors.
type AreaAreaPair struct {
	constraintBase

	a, b           *Area
	shapeA, shapeB int
	colliding      bool
}

func newAreaAreaPair(a *Area, shapeA int, b *Area, shapeB int) *AreaAreaPair {
	p := &AreaAreaPair{a: a, shapeA: shapeA, b: b, shapeB: shapeB}
	a.addConstraint(p)
	b.addConstraint(p)
	return p
}

func (p *AreaAreaPair) Setup(float64) bool {
	overlap := p.a.TestCollisionMask(&p.b.CollisionObject) && p.overlaps()
	if overlap == p.colliding {
		return false
	}
	p.colliding = overlap
	p.notify(overlap)
	return false
}

func (p *AreaAreaPair) notify(added bool) {
	if p.b.HasAreaMonitor() && p.a.IsMonitorable() {
		if added {
			p.b.addAreaToQuery(p.a, p.shapeA, p.shapeB)
		} else {
			p.b.removeAreaFromQuery(p.a, p.shapeA, p.shapeB)
		}
	}
	if p.a.HasAreaMonitor() && p.b.IsMonitorable() {
		if added {
			p.a.addAreaToQuery(p.b, p.shapeB, p.shapeA)
		} else {
			p.a.removeAreaFromQuery(p.b, p.shapeB, p.shapeA)
		}
	}
}

func (p *AreaAreaPair) overlaps() bool {
	if p.shapeA >= p.a.ShapeCount() || p.shapeB >= p.b.ShapeCount() {
		return false
	}
	return collision.Solve(
		p.a.shapes[p.shapeA].shape, p.a.transform.Mul(p.a.shapes[p.shapeA].xform),
		p.b.shapes[p.shapeB].shape, p.b.transform.Mul(p.b.shapes[p.shapeB].xform),
		nil,
	)
}

func (p *AreaAreaPair) Solve(float64) {}

func (p *AreaAreaPair) ShiftShapeIndices(obj *CollisionObject, index int) {
	if obj == &p.a.CollisionObject && p.shapeA > index {
		p.shapeA--
	}
	if obj == &p.b.CollisionObject && p.shapeB > index {
		p.shapeB--
	}
}

func (p *AreaAreaPair) destroy() {
	if p.colliding {
		p.notify(false)
	}
	p.a.removeConstraint(p)
	p.b.removeConstraint(p)
}
