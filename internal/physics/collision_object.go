package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/broadphase"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/rid"
	"github.com/san-kum/rigidsim/internal/shape"
)

// ObjectKind orders areas before bodies; pair creation relies on it.
type ObjectKind int

const (
	KindArea ObjectKind = iota
	KindBody
)

// aabbMargin grows broad-phase boxes by this fraction of their mean size.
const aabbMargin = 0.05

type shapeSlot struct {
	shape    shape.Shape
	xform    geom.Transform
	xformInv geom.Transform
	aabb     geom.AABB
	volume   float64
	bpid     broadphase.ID
	trigger  bool
}

// objectHooks is implemented by Body and Area.
type objectHooks interface {
	SetSpace(s *Space)
	shapesChanged()
	shapeIndexRemoved(index int)
}

// CollisionObject is the state shared by bodies and areas.
type CollisionObject struct {
	kind  ObjectKind
	hooks objectHooks

	self       rid.RID
	instanceID uint64
	space      *Space

	shapes       []shapeSlot
	transform    geom.Transform
	invTransform geom.Transform

	layerMask     uint32
	collisionMask uint32
	static        bool
	rayPickable   bool
}

func (co *CollisionObject) init(kind ObjectKind, hooks objectHooks) {
	co.kind = kind
	co.hooks = hooks
	co.transform = geom.Identity()
	co.invTransform = geom.Identity()
	co.layerMask = 1
	co.collisionMask = 1
	co.rayPickable = true
}

func (co *CollisionObject) Kind() ObjectKind          { return co.kind }
func (co *CollisionObject) Self() rid.RID             { return co.self }
func (co *CollisionObject) SetSelf(r rid.RID)         { co.self = r }
func (co *CollisionObject) InstanceID() uint64        { return co.instanceID }
func (co *CollisionObject) SetInstanceID(id uint64)   { co.instanceID = id }
func (co *CollisionObject) Space() *Space             { return co.space }
func (co *CollisionObject) Transform() geom.Transform { return co.transform }
func (co *CollisionObject) InvTransform() geom.Transform {
	return co.invTransform
}
func (co *CollisionObject) LayerMask() uint32          { return co.layerMask }
func (co *CollisionObject) SetLayerMask(m uint32)      { co.layerMask = m }
func (co *CollisionObject) CollisionMask() uint32      { return co.collisionMask }
func (co *CollisionObject) SetCollisionMask(m uint32)  { co.collisionMask = m }
func (co *CollisionObject) IsRayPickable() bool        { return co.rayPickable }
func (co *CollisionObject) SetRayPickable(enable bool) { co.rayPickable = enable }
func (co *CollisionObject) IsStatic() bool             { return co.static }

// Body returns the owning body, or nil for areas.
func (co *CollisionObject) Body() *Body {
	b, _ := co.hooks.(*Body)
	return b
}

// Area returns the owning area, or nil for bodies.
func (co *CollisionObject) Area() *Area {
	a, _ := co.hooks.(*Area)
	return a
}

// TestCollisionMask reports whether either object's layer is in the other's mask.
func (co *CollisionObject) TestCollisionMask(other *CollisionObject) bool {
	return co.layerMask&other.collisionMask != 0 || other.layerMask&co.collisionMask != 0
}

func (co *CollisionObject) ShapeCount() int { return len(co.shapes) }

func (co *CollisionObject) checkIndex(i int) error {
	if i < 0 || i >= len(co.shapes) {
		return fmt.Errorf("%w: %d of %d", ErrShapeIndex, i, len(co.shapes))
	}
	return nil
}

func (co *CollisionObject) Shape(i int) (shape.Shape, error) {
	if err := co.checkIndex(i); err != nil {
		return nil, err
	}
	return co.shapes[i].shape, nil
}

func (co *CollisionObject) ShapeTransform(i int) (geom.Transform, error) {
	if err := co.checkIndex(i); err != nil {
		return geom.Transform{}, err
	}
	return co.shapes[i].xform, nil
}

// ShapeInvTransform is the inverse of the shape's local transform.
func (co *CollisionObject) ShapeInvTransform(i int) geom.Transform {
	return co.shapes[i].xformInv
}

// ShapeAABB is the shape's cached world box, margin included.
func (co *CollisionObject) ShapeAABB(i int) geom.AABB { return co.shapes[i].aabb }

// ShapeVolume is the volume of the shape's box in object space.
func (co *CollisionObject) ShapeVolume(i int) float64 { return co.shapes[i].volume }

func (co *CollisionObject) IsShapeTrigger(i int) bool {
	return i >= 0 && i < len(co.shapes) && co.shapes[i].trigger
}

func (co *CollisionObject) SetShapeAsTrigger(i int, trigger bool) error {
	if err := co.checkIndex(i); err != nil {
		return err
	}
	co.shapes[i].trigger = trigger
	return nil
}

func (co *CollisionObject) AddShape(s shape.Shape, xform geom.Transform) {
	co.shapes = append(co.shapes, shapeSlot{shape: s, xform: xform, xformInv: xform.AffineInverse()})
	s.AddOwner(co)
	co.updateShapes()
	co.hooks.shapesChanged()
}

func (co *CollisionObject) SetShape(i int, s shape.Shape) error {
	if err := co.checkIndex(i); err != nil {
		return err
	}
	co.shapes[i].shape.RemoveOwner(co)
	co.shapes[i].shape = s
	s.AddOwner(co)
	co.removeBroadphaseFrom(i, i+1)
	co.updateShapes()
	co.hooks.shapesChanged()
	return nil
}

func (co *CollisionObject) SetShapeTransform(i int, xform geom.Transform) error {
	if err := co.checkIndex(i); err != nil {
		return err
	}
	co.shapes[i].xform = xform
	co.shapes[i].xformInv = xform.AffineInverse()
	co.updateShapes()
	co.hooks.shapesChanged()
	return nil
}

// RemoveShapeAt drops shape i. Later shapes are re-registered in the broad
// phase so their sub-indices stay valid.
func (co *CollisionObject) RemoveShapeAt(i int) error {
	if err := co.checkIndex(i); err != nil {
		return err
	}
	co.removeBroadphaseFrom(i, len(co.shapes))
	s := co.shapes[i].shape
	co.shapes = append(co.shapes[:i], co.shapes[i+1:]...)
	s.RemoveOwner(co)
	co.hooks.shapeIndexRemoved(i)
	co.updateShapes()
	co.hooks.shapesChanged()
	return nil
}

// RemoveShape drops every occurrence of s.
func (co *CollisionObject) RemoveShape(s shape.Shape) {
	for i := len(co.shapes) - 1; i >= 0; i-- {
		if co.shapes[i].shape == s {
			_ = co.RemoveShapeAt(i)
		}
	}
}

func (co *CollisionObject) ClearShapes() {
	for len(co.shapes) > 0 {
		_ = co.RemoveShapeAt(len(co.shapes) - 1)
	}
}

// ShapeChanged is called by a shape whose data changed.
func (co *CollisionObject) ShapeChanged(shape.Shape) {
	co.updateShapes()
	co.hooks.shapesChanged()
}

func (co *CollisionObject) removeBroadphaseFrom(from, to int) {
	if co.space == nil {
		return
	}
	for i := from; i < to; i++ {
		if co.shapes[i].bpid != 0 {
			co.space.broadphase.Remove(co.shapes[i].bpid)
			co.shapes[i].bpid = 0
		}
	}
}

func (co *CollisionObject) unregisterShapes() {
	co.removeBroadphaseFrom(0, len(co.shapes))
}

func (co *CollisionObject) setTransform(t geom.Transform, updateShapes bool) {
	co.transform = t
	if updateShapes {
		co.updateShapes()
	}
}

func (co *CollisionObject) setInvTransform(t geom.Transform) { co.invTransform = t }

func (co *CollisionObject) setStatic(static bool) {
	if co.static == static {
		return
	}
	co.static = static
	if co.space == nil {
		return
	}
	for _, s := range co.shapes {
		if s.bpid != 0 {
			co.space.broadphase.SetStatic(s.bpid, static)
		}
	}
}

func (co *CollisionObject) setSpace(space *Space) {
	if co.space != nil {
		co.space.removeObject(co)
		co.unregisterShapes()
	}
	co.space = space
	if co.space != nil {
		co.space.addObject(co)
		co.updateShapes()
	}
}

func (co *CollisionObject) updateShapes() {
	co.updateShapesWithMotion(nil)
}

// updateShapesWithMotion refreshes cached boxes; with a motion the box is
// swept along it for continuous collision detection.
func (co *CollisionObject) updateShapesWithMotion(motion *mgl64.Vec3) {
	for i := range co.shapes {
		s := &co.shapes[i]
		local := s.shape.AABB().Xform(s.xform)
		s.volume = local.Volume()
		if co.space == nil {
			continue
		}
		if s.bpid == 0 {
			s.bpid = co.space.broadphase.Create(co, i)
			co.space.broadphase.SetStatic(s.bpid, co.static)
		}
		box := s.shape.AABB().Xform(co.transform.Mul(s.xform))
		if motion != nil {
			box = box.Merge(box.Translated(*motion))
		}
		box = box.Grow((box.Size[0] + box.Size[1]) * 0.5 * aabbMargin)
		s.aabb = box
		co.space.broadphase.Move(s.bpid, box)
	}
}
