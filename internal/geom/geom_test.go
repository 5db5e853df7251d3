package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestRotationAxisAngleRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		axis  mgl64.Vec3
		angle float64
	}{
		{"z quarter", mgl64.Vec3{0, 0, 1}, math.Pi / 2},
		{"x small", mgl64.Vec3{1, 0, 0}, 0.01},
		{"diagonal", mgl64.Vec3{1, 1, 1}.Normalize(), 1.2},
		{"near pi", mgl64.Vec3{0, 1, 0}, math.Pi - 1e-4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Rotation(tt.axis, tt.angle)
			axis, angle := AxisAngle(m)
			if math.Abs(angle-tt.angle) > 1e-6 {
				t.Errorf("angle = %v, want %v", angle, tt.angle)
			}
			if !Near(axis, tt.axis, 1e-4) {
				t.Errorf("axis = %v, want %v", axis, tt.axis)
			}
		})
	}
}

func TestRotationIsRightHanded(t *testing.T) {
	m := Rotation(mgl64.Vec3{0, 0, 1}, math.Pi/2)
	got := m.Mul3x1(mgl64.Vec3{1, 0, 0})
	if !Near(got, mgl64.Vec3{0, 1, 0}, 1e-12) {
		t.Errorf("rotating X by +90° about Z = %v, want +Y", got)
	}
}

func TestAxisAngleIdentity(t *testing.T) {
	axis, angle := AxisAngle(mgl64.Ident3())
	if angle != 0 || axis != (mgl64.Vec3{}) {
		t.Errorf("identity gave axis %v angle %v", axis, angle)
	}
}

func TestOrthonormalize(t *testing.T) {
	m := mgl64.Mat3FromCols(
		mgl64.Vec3{1, 0.01, 0},
		mgl64.Vec3{0.02, 1, 0.001},
		mgl64.Vec3{0, 0.03, 0.98},
	)
	o := Orthonormalize(m)
	for i := 0; i < 3; i++ {
		if math.Abs(o.Col(i).Len()-1) > 1e-12 {
			t.Errorf("column %d not unit: %v", i, o.Col(i).Len())
		}
		for j := i + 1; j < 3; j++ {
			if d := o.Col(i).Dot(o.Col(j)); math.Abs(d) > 1e-12 {
				t.Errorf("columns %d,%d not orthogonal: %v", i, j, d)
			}
		}
	}
}

func TestTransformInverse(t *testing.T) {
	tr := NewTransform(Rotation(mgl64.Vec3{0, 1, 0}, 0.7), mgl64.Vec3{1, 2, 3})
	p := mgl64.Vec3{-4, 5, 0.5}

	back := tr.XformInv(tr.Xform(p))
	if !Near(back, p, 1e-12) {
		t.Errorf("XformInv(Xform(p)) = %v, want %v", back, p)
	}
	if !tr.Mul(tr.Inverse()).ApproxEqual(Identity(), 1e-12) {
		t.Error("t * t^-1 is not identity")
	}
	if !tr.AffineInverse().ApproxEqual(tr.Inverse(), 1e-12) {
		t.Error("affine inverse differs from rigid inverse")
	}
}

func TestAABB(t *testing.T) {
	a := NewAABB(mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{2, 2, 2})
	b := NewAABB(mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{2, 2, 2})
	c := NewAABB(mgl64.Vec3{5, 0, 0}, mgl64.Vec3{1, 1, 1})

	if !a.Intersects(b) {
		t.Error("a and b should intersect")
	}
	if a.Intersects(c) {
		t.Error("a and c should not intersect")
	}
	if v := a.Volume(); v != 8 {
		t.Errorf("Volume = %v, want 8", v)
	}
	m := a.Merge(c)
	if m.Pos != a.Pos || m.End() != c.End() {
		t.Errorf("Merge = %+v", m)
	}

	rot := NewTransform(Rotation(mgl64.Vec3{0, 0, 1}, math.Pi/4), mgl64.Vec3{})
	x := a.Xform(rot)
	want := math.Sqrt2
	if math.Abs(x.End()[0]-want) > 1e-12 {
		t.Errorf("rotated extent = %v, want %v", x.End()[0], want)
	}
}

func TestPlaneDistance(t *testing.T) {
	p := Plane{Normal: mgl64.Vec3{0, 1, 0}, D: 2}
	if d := p.Distance(mgl64.Vec3{0, 5, 0}); d != 3 {
		t.Errorf("Distance = %v, want 3", d)
	}
	moved := p.Xform(Translation(mgl64.Vec3{0, 1, 0}))
	if math.Abs(moved.D-3) > 1e-12 {
		t.Errorf("translated D = %v, want 3", moved.D)
	}
}

func TestAxisFrame(t *testing.T) {
	axis := mgl64.Vec3{1, 2, -0.5}
	for col := 0; col < 3; col++ {
		f := AxisFrame(mgl64.Vec3{1, 0, 0}, axis, col)
		if !Near(f.Basis.Col(col), axis.Normalize(), 1e-12) {
			t.Errorf("col %d = %v, want %v", col, f.Basis.Col(col), axis.Normalize())
		}
		if d := f.Basis.Det(); math.Abs(d-1) > 1e-12 {
			t.Errorf("col %d: det = %v, want 1", col, d)
		}
		if f.Origin != (mgl64.Vec3{1, 0, 0}) {
			t.Errorf("origin = %v", f.Origin)
		}
	}
}
