// Package shape defines the collision shapes a body or area can carry.
//
// A shape is created unconfigured, becomes configured on the first valid
// SetData call and keeps a reference-counted list of the collision objects
// using it so they can be told when its geometry changes.
package shape

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/rid"
)

var (
	ErrInvalidData     = errors.New("shape: invalid shape data")
	ErrUnsupportedType = errors.New("shape: unsupported shape type")
)

type Type int

const (
	TypePlane Type = iota
	TypeRay
	TypeSphere
	TypeBox
	TypeCapsule
	TypeConvexPolygon
	TypeConcavePolygon
	TypeHeightMap
	TypeCustom
)

var typeNames = [...]string{
	"plane", "ray", "sphere", "box", "capsule",
	"convex_polygon", "concave_polygon", "heightmap", "custom",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType is the inverse of Type.String.
func ParseType(s string) (Type, error) {
	for i, n := range typeNames {
		if n == s {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedType, s)
}

// Owner is implemented by collision objects that reference shapes.
type Owner interface {
	ShapeChanged(s Shape)
	RemoveShape(s Shape)
}

type Shape interface {
	Type() Type
	SetData(data any) error
	Data() any
	AABB() geom.AABB
	IsConfigured() bool
	MomentOfInertia(mass float64) mgl64.Vec3

	CustomSolverBias() float64
	SetCustomSolverBias(bias float64)

	AddOwner(o Owner)
	RemoveOwner(o Owner)
	IsOwner(o Owner) bool
	Owners() []Owner

	Self() rid.RID
	SetSelf(r rid.RID)
}

// New returns an unconfigured shape of type t.
func New(t Type) (Shape, error) {
	switch t {
	case TypePlane:
		return &Plane{}, nil
	case TypeRay:
		return &Ray{}, nil
	case TypeSphere:
		return &Sphere{}, nil
	case TypeBox:
		return &Box{}, nil
	case TypeCapsule:
		return &Capsule{}, nil
	case TypeConvexPolygon:
		return &ConvexPolygon{}, nil
	case TypeConcavePolygon:
		return &ConcavePolygon{}, nil
	case TypeHeightMap:
		return &HeightMap{}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, t)
}

type ownerRef struct {
	owner Owner
	count int
}

type base struct {
	self       rid.RID
	aabb       geom.AABB
	configured bool
	customBias float64
	owners     []ownerRef
}

func (b *base) AABB() geom.AABB               { return b.aabb }
func (b *base) IsConfigured() bool            { return b.configured }
func (b *base) CustomSolverBias() float64     { return b.customBias }
func (b *base) SetCustomSolverBias(v float64) { b.customBias = v }
func (b *base) Self() rid.RID                 { return b.self }
func (b *base) SetSelf(r rid.RID)             { b.self = r }

func (b *base) AddOwner(o Owner) {
	for i := range b.owners {
		if b.owners[i].owner == o {
			b.owners[i].count++
			return
		}
	}
	b.owners = append(b.owners, ownerRef{owner: o, count: 1})
}

func (b *base) RemoveOwner(o Owner) {
	for i := range b.owners {
		if b.owners[i].owner != o {
			continue
		}
		b.owners[i].count--
		if b.owners[i].count <= 0 {
			b.owners = append(b.owners[:i], b.owners[i+1:]...)
		}
		return
	}
}

func (b *base) IsOwner(o Owner) bool {
	for _, r := range b.owners {
		if r.owner == o {
			return true
		}
	}
	return false
}

func (b *base) Owners() []Owner {
	out := make([]Owner, len(b.owners))
	for i, r := range b.owners {
		out[i] = r.owner
	}
	return out
}

func (b *base) configure(self Shape, aabb geom.AABB) {
	b.aabb = aabb
	b.configured = true
	for _, o := range b.Owners() {
		o.ShapeChanged(self)
	}
}

// boxInertia is the solid box moment for half extents e.
func boxInertia(mass float64, e mgl64.Vec3) mgl64.Vec3 {
	k := mass / 3
	return mgl64.Vec3{
		k * (e[1]*e[1] + e[2]*e[2]),
		k * (e[0]*e[0] + e[2]*e[2]),
		k * (e[0]*e[0] + e[1]*e[1]),
	}
}

// approxInertia is used by shapes without an exact moment. The Z term uses
// the Y extent twice; kept for parity with existing scenes.
func approxInertia(mass float64, aabb geom.AABB) mgl64.Vec3 {
	e := aabb.Size.Mul(0.5)
	k := mass / 3
	return mgl64.Vec3{
		k * (e[1]*e[1] + e[2]*e[2]),
		k * (e[0]*e[0] + e[2]*e[2]),
		k * (e[1]*e[1] + e[1]*e[1]),
	}
}
