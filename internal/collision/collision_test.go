package collision

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/shape"
)

func mustShape(t *testing.T, ty shape.Type, data any) shape.Shape {
	t.Helper()
	s, err := shape.New(ty)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetData(data); err != nil {
		t.Fatal(err)
	}
	return s
}

type contact struct{ a, b mgl64.Vec3 }

func collect(a shape.Shape, xfA geom.Transform, b shape.Shape, xfB geom.Transform) (bool, []contact) {
	var out []contact
	hit := Solve(a, xfA, b, xfB, func(pa, pb mgl64.Vec3) { out = append(out, contact{pa, pb}) })
	return hit, out
}

func TestSolve(t *testing.T) {
	ground := geom.Plane{Normal: mgl64.Vec3{0, 1, 0}}
	tests := []struct {
		name      string
		a         shape.Shape
		xfA       geom.Transform
		b         shape.Shape
		xfB       geom.Transform
		hit       bool
		contacts  int
		wantDepth float64
	}{
		{
			name: "sphere on plane",
			a:    mustShape(t, shape.TypeSphere, 1.0), xfA: geom.Translation(mgl64.Vec3{0, 0.9, 0}),
			b: mustShape(t, shape.TypePlane, ground), xfB: geom.Identity(),
			hit: true, contacts: 1, wantDepth: 0.1,
		},
		{
			name: "sphere above plane",
			a:    mustShape(t, shape.TypeSphere, 1.0), xfA: geom.Translation(mgl64.Vec3{0, 1.5, 0}),
			b: mustShape(t, shape.TypePlane, ground), xfB: geom.Identity(),
		},
		{
			name: "plane first is swapped",
			a:    mustShape(t, shape.TypePlane, ground), xfA: geom.Identity(),
			b: mustShape(t, shape.TypeSphere, 1.0), xfB: geom.Translation(mgl64.Vec3{0, 0.8, 0}),
			hit: true, contacts: 1, wantDepth: 0.2,
		},
		{
			name: "sphere sphere",
			a:    mustShape(t, shape.TypeSphere, 1.0), xfA: geom.Identity(),
			b: mustShape(t, shape.TypeSphere, 1.0), xfB: geom.Translation(mgl64.Vec3{1.5, 0, 0}),
			hit: true, contacts: 1, wantDepth: 0.5,
		},
		{
			name: "box resting on plane",
			a:    mustShape(t, shape.TypeBox, mgl64.Vec3{1, 1, 1}), xfA: geom.Translation(mgl64.Vec3{0, 0.95, 0}),
			b: mustShape(t, shape.TypePlane, ground), xfB: geom.Identity(),
			hit: true, contacts: 4, wantDepth: 0.05,
		},
		{
			name: "sphere touching box face",
			a:    mustShape(t, shape.TypeSphere, 0.5), xfA: geom.Translation(mgl64.Vec3{0, 1.4, 0}),
			b: mustShape(t, shape.TypeBox, mgl64.Vec3{1, 1, 1}), xfB: geom.Identity(),
			hit: true, contacts: 1, wantDepth: 0.1,
		},
		{
			name: "capsule lying on plane",
			a:    mustShape(t, shape.TypeCapsule, shape.CapsuleData{Radius: 0.5, Height: 2}),
			xfA:  geom.Translation(mgl64.Vec3{0, 0.45, 0}),
			b:    mustShape(t, shape.TypePlane, ground), xfB: geom.Identity(),
			hit: true, contacts: 2, wantDepth: 0.05,
		},
		{
			name: "ray into plane",
			a:    mustShape(t, shape.TypeRay, 2.0),
			xfA:  geom.NewTransform(geom.Rotation(mgl64.Vec3{1, 0, 0}, math.Pi/2), mgl64.Vec3{0, 1.5, 0}),
			b:    mustShape(t, shape.TypePlane, ground), xfB: geom.Identity(),
			hit: true, contacts: 1, wantDepth: 0.5,
		},
		{
			name: "unsupported pair",
			a:    mustShape(t, shape.TypeConcavePolygon, []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}), xfA: geom.Identity(),
			b: mustShape(t, shape.TypeSphere, 5.0), xfB: geom.Identity(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, cs := collect(tt.a, tt.xfA, tt.b, tt.xfB)
			if hit != tt.hit {
				t.Fatalf("hit = %v, want %v", hit, tt.hit)
			}
			if len(cs) != tt.contacts {
				t.Fatalf("contacts = %d, want %d", len(cs), tt.contacts)
			}
			for _, c := range cs {
				if d := c.a.Sub(c.b).Len(); math.Abs(d-tt.wantDepth) > 1e-9 {
					t.Errorf("depth = %v, want %v", d, tt.wantDepth)
				}
			}
		})
	}
}

func TestNormalPointsFromAToB(t *testing.T) {
	ball := mustShape(t, shape.TypeSphere, 1.0)
	floor := mustShape(t, shape.TypePlane, geom.Plane{Normal: mgl64.Vec3{0, 1, 0}})

	_, cs := collect(ball, geom.Translation(mgl64.Vec3{0, 0.9, 0}), floor, geom.Identity())
	n := cs[0].a.Sub(cs[0].b).Normalize()
	if !geom.Near(n, mgl64.Vec3{0, -1, 0}, 1e-9) {
		t.Errorf("ball-on-floor normal = %v, want -Y", n)
	}

	_, cs = collect(floor, geom.Identity(), ball, geom.Translation(mgl64.Vec3{0, 0.9, 0}))
	n = cs[0].a.Sub(cs[0].b).Normalize()
	if !geom.Near(n, mgl64.Vec3{0, 1, 0}, 1e-9) {
		t.Errorf("floor-under-ball normal = %v, want +Y", n)
	}
}

func TestBoxBoxStack(t *testing.T) {
	a := mustShape(t, shape.TypeBox, mgl64.Vec3{0.5, 0.5, 0.5})
	b := mustShape(t, shape.TypeBox, mgl64.Vec3{1, 1, 1})
	hit, cs := collect(a, geom.Translation(mgl64.Vec3{0, 1.45, 0}), b, geom.Identity())
	if !hit || len(cs) != 4 {
		t.Fatalf("hit %v with %d contacts, want 4 bottom corners", hit, len(cs))
	}
	for _, c := range cs {
		n := c.a.Sub(c.b).Normalize()
		if !geom.Near(n, mgl64.Vec3{0, -1, 0}, 1e-9) {
			t.Errorf("normal = %v, want -Y", n)
		}
	}
}

func TestSupported(t *testing.T) {
	if !Supported(shape.TypePlane, shape.TypeBox) || !Supported(shape.TypeBox, shape.TypePlane) {
		t.Error("box/plane should be supported both ways")
	}
	if Supported(shape.TypeHeightMap, shape.TypeHeightMap) {
		t.Error("heightmap pair should be unsupported")
	}
}
