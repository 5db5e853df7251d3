package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/rid"
	"github.com/san-kum/rigidsim/internal/shape"
)

const testDt = 1.0 / 60

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

type world struct {
	t       *testing.T
	space   *Space
	stepper *Stepper
	next    rid.RID
}

func newWorld(t *testing.T) *world {
	return &world{t: t, space: NewSpace(nil), stepper: NewStepper(), next: 1}
}

func (w *world) body(mode BodyMode, s shape.Shape, at mgl64.Vec3) *Body {
	w.t.Helper()
	b := NewBody()
	b.SetSelf(w.next)
	w.next++
	b.SetMode(mode)
	if s != nil {
		b.AddShape(s, geom.Identity())
	}
	b.SetSpace(w.space)
	if err := b.SetState(BodyStateTransform, geom.Translation(at)); err != nil {
		w.t.Fatal(err)
	}
	return b
}

func (w *world) ground() *Body {
	w.t.Helper()
	plane := mustShape(w.t, shape.TypePlane, geom.Plane{Normal: mgl64.Vec3{0, 1, 0}})
	return w.body(BodyModeStatic, plane, mgl64.Vec3{})
}

func (w *world) step(n int) {
	for i := 0; i < n; i++ {
		w.stepper.Step(w.space, testDt, 8)
	}
}
