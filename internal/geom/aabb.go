package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis aligned box given by its minimum corner and its size.
type AABB struct {
	Pos  mgl64.Vec3
	Size mgl64.Vec3
}

func NewAABB(pos, size mgl64.Vec3) AABB { return AABB{Pos: pos, Size: size} }

// AABBFromPoints returns the tight box around pts. Empty input yields the zero box.
func AABBFromPoints(pts []mgl64.Vec3) AABB {
	if len(pts) == 0 {
		return AABB{}
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo, hi = minVec(lo, p), maxVec(hi, p)
	}
	return AABB{Pos: lo, Size: hi.Sub(lo)}
}

func (a AABB) End() mgl64.Vec3 { return a.Pos.Add(a.Size) }

func (a AABB) Center() mgl64.Vec3 { return a.Pos.Add(a.Size.Mul(0.5)) }

// Volume is the box's size product. Flat boxes have zero volume.
func (a AABB) Volume() float64 { return a.Size[0] * a.Size[1] * a.Size[2] }

func (a AABB) Intersects(b AABB) bool {
	ae, be := a.End(), b.End()
	for i := 0; i < 3; i++ {
		if a.Pos[i] > be[i] || b.Pos[i] > ae[i] {
			return false
		}
	}
	return true
}

func (a AABB) Contains(p mgl64.Vec3) bool {
	e := a.End()
	for i := 0; i < 3; i++ {
		if p[i] < a.Pos[i] || p[i] > e[i] {
			return false
		}
	}
	return true
}

func (a AABB) Merge(b AABB) AABB {
	lo := minVec(a.Pos, b.Pos)
	hi := maxVec(a.End(), b.End())
	return AABB{Pos: lo, Size: hi.Sub(lo)}
}

func (a AABB) Translated(d mgl64.Vec3) AABB {
	return AABB{Pos: a.Pos.Add(d), Size: a.Size}
}

func (a AABB) Grow(by float64) AABB {
	m := mgl64.Vec3{by, by, by}
	return AABB{Pos: a.Pos.Sub(m), Size: a.Size.Add(m.Mul(2))}
}

// Xform returns the box enclosing a transformed by t.
func (a AABB) Xform(t Transform) AABB {
	center := t.Xform(a.Center())
	half := a.Size.Mul(0.5)
	var ext mgl64.Vec3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			ext[r] += math.Abs(t.Basis.At(r, c)) * half[c]
		}
	}
	return AABB{Pos: center.Sub(ext), Size: ext.Mul(2)}
}

// Plane is the set of points p with Normal·p == D.
type Plane struct {
	Normal mgl64.Vec3
	D      float64
}

func (p Plane) Distance(v mgl64.Vec3) float64 { return p.Normal.Dot(v) - p.D }

func (p Plane) Project(v mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(p.Normal.Mul(p.Distance(v)))
}

// Xform transforms the plane by a rigid transform.
func (p Plane) Xform(t Transform) Plane {
	n := SafeNormalize(t.BasisXform(p.Normal))
	point := t.Xform(p.Normal.Mul(p.D))
	return Plane{Normal: n, D: n.Dot(point)}
}

func minVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])}
}

func maxVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])}
}
