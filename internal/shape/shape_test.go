package shape

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
)

type countingOwner struct {
	changed int
	removed int
}

func (o *countingOwner) ShapeChanged(Shape) { o.changed++ }
func (o *countingOwner) RemoveShape(Shape)  { o.removed++ }

func TestNewRejectsCustom(t *testing.T) {
	if _, err := New(TypeCustom); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("New(custom) err = %v, want ErrUnsupportedType", err)
	}
	for ty := TypePlane; ty < TypeCustom; ty++ {
		s, err := New(ty)
		if err != nil {
			t.Fatalf("New(%v): %v", ty, err)
		}
		if s.Type() != ty {
			t.Errorf("New(%v).Type() = %v", ty, s.Type())
		}
		if s.IsConfigured() {
			t.Errorf("%v configured before SetData", ty)
		}
	}
}

func TestSetData(t *testing.T) {
	tests := []struct {
		name    string
		ty      Type
		data    any
		wantErr bool
		aabb    geom.AABB
	}{
		{"sphere", TypeSphere, 2.0, false, geom.NewAABB(mgl64.Vec3{-2, -2, -2}, mgl64.Vec3{4, 4, 4})},
		{"sphere zero", TypeSphere, 0.0, true, geom.AABB{}},
		{"sphere wrong type", TypeSphere, "big", true, geom.AABB{}},
		{"box", TypeBox, mgl64.Vec3{1, 2, 3}, false, geom.NewAABB(mgl64.Vec3{-1, -2, -3}, mgl64.Vec3{2, 4, 6})},
		{"box negative", TypeBox, mgl64.Vec3{1, -2, 3}, true, geom.AABB{}},
		{"capsule", TypeCapsule, CapsuleData{Radius: 0.5, Height: 2}, false,
			geom.NewAABB(mgl64.Vec3{-0.5, -0.5, -1.5}, mgl64.Vec3{1, 1, 3})},
		{"ray", TypeRay, 3.0, false, geom.NewAABB(mgl64.Vec3{}, mgl64.Vec3{0.1, 0.1, 3})},
		{"plane zero normal", TypePlane, geom.Plane{}, true, geom.AABB{}},
		{"convex", TypeConvexPolygon, []mgl64.Vec3{{0, 0, 0}, {1, 2, 3}}, false,
			geom.NewAABB(mgl64.Vec3{}, mgl64.Vec3{1, 2, 3})},
		{"convex empty", TypeConvexPolygon, []mgl64.Vec3{}, true, geom.AABB{}},
		{"concave partial face", TypeConcavePolygon, []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}}, true, geom.AABB{}},
		{"heightmap", TypeHeightMap, HeightMapData{Width: 2, Depth: 2, CellSize: 1, Heights: []float64{0, 1, 2, 3}}, false,
			geom.NewAABB(mgl64.Vec3{}, mgl64.Vec3{1, 3, 1})},
		{"heightmap short", TypeHeightMap, HeightMapData{Width: 2, Depth: 2, CellSize: 1, Heights: []float64{0}}, true, geom.AABB{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := New(tt.ty)
			err := s.SetData(tt.data)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidData) {
					t.Errorf("err = %v, want ErrInvalidData", err)
				}
				if s.IsConfigured() {
					t.Error("failed SetData configured the shape")
				}
				return
			}
			if err != nil {
				t.Fatalf("SetData: %v", err)
			}
			if !s.IsConfigured() {
				t.Error("not configured")
			}
			if s.AABB() != tt.aabb {
				t.Errorf("AABB = %+v, want %+v", s.AABB(), tt.aabb)
			}
		})
	}
}

func TestMomentOfInertia(t *testing.T) {
	sphere, _ := New(TypeSphere)
	_ = sphere.SetData(1.0)
	if got := sphere.MomentOfInertia(5); math.Abs(got[0]-2) > 1e-12 || got[0] != got[1] || got[1] != got[2] {
		t.Errorf("sphere inertia = %v, want 2 on all axes", got)
	}

	box, _ := New(TypeBox)
	_ = box.SetData(mgl64.Vec3{1, 2, 3})
	got := box.MomentOfInertia(3)
	want := mgl64.Vec3{13, 10, 5}
	if !geom.Near(got, want, 1e-12) {
		t.Errorf("box inertia = %v, want %v", got, want)
	}

	plane, _ := New(TypePlane)
	_ = plane.SetData(geom.Plane{Normal: mgl64.Vec3{0, 1, 0}})
	if got := plane.MomentOfInertia(10); got != (mgl64.Vec3{}) {
		t.Errorf("plane inertia = %v, want zero", got)
	}
}

func TestOwnersNotifiedAndRefcounted(t *testing.T) {
	s, _ := New(TypeSphere)
	o := &countingOwner{}
	s.AddOwner(o)
	s.AddOwner(o)

	_ = s.SetData(1.0)
	if o.changed != 1 {
		t.Errorf("owner notified %d times, want 1", o.changed)
	}

	s.RemoveOwner(o)
	if !s.IsOwner(o) {
		t.Error("owner dropped while one reference remains")
	}
	s.RemoveOwner(o)
	if s.IsOwner(o) || len(s.Owners()) != 0 {
		t.Error("owner kept after last reference removed")
	}
}

func TestPlaneNormalized(t *testing.T) {
	s, _ := New(TypePlane)
	_ = s.SetData(geom.Plane{Normal: mgl64.Vec3{0, 2, 0}, D: 4})
	p := s.(*Plane).Plane()
	if p.Normal != (mgl64.Vec3{0, 1, 0}) || p.D != 2 {
		t.Errorf("plane = %+v, want unit normal and D 2", p)
	}
}
