package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/shape"
)

// A ray shape collides only through its tip: the contact is the end of the
// ray against the first surface point it crosses.

func rayEnds(r *shape.Ray, xf geom.Transform) (mgl64.Vec3, mgl64.Vec3) {
	from := xf.Origin
	return from, xf.Xform(mgl64.Vec3{0, 0, r.Length()})
}

func rayPlane(a shape.Shape, xfA geom.Transform, b shape.Shape, xfB geom.Transform, cb ContactFunc) bool {
	from, to := rayEnds(a.(*shape.Ray), xfA)
	p := b.(*shape.Plane).Plane().Xform(xfB)
	d0, d1 := p.Distance(from), p.Distance(to)
	if d1 > 0 || d0 < 0 {
		return false
	}
	t := d0 / (d0 - d1)
	cb(to, from.Add(to.Sub(from).Mul(t)))
	return true
}

func raySphere(a shape.Shape, xfA geom.Transform, b shape.Shape, xfB geom.Transform, cb ContactFunc) bool {
	from, to := rayEnds(a.(*shape.Ray), xfA)
	r := b.(*shape.Sphere).Radius()
	seg := to.Sub(from)
	l := seg.Len()
	if l < geom.Epsilon {
		return false
	}
	dir := seg.Mul(1 / l)
	m := from.Sub(xfB.Origin)
	bb := m.Dot(dir)
	c := m.Dot(m) - r*r
	disc := bb*bb - c
	if disc < 0 {
		return false
	}
	t := -bb - math.Sqrt(disc)
	if t < 0 || t > l {
		return false
	}
	cb(to, from.Add(dir.Mul(t)))
	return true
}

func rayBox(a shape.Shape, xfA geom.Transform, b shape.Shape, xfB geom.Transform, cb ContactFunc) bool {
	from, to := rayEnds(a.(*shape.Ray), xfA)
	half := b.(*shape.Box).HalfExtents()
	lf, lt := xfB.XformInv(from), xfB.XformInv(to)
	d := lt.Sub(lf)

	tmin, tmax := 0.0, 1.0
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < geom.Epsilon {
			if math.Abs(lf[i]) > half[i] {
				return false
			}
			continue
		}
		t0 := (-half[i] - lf[i]) / d[i]
		t1 := (half[i] - lf[i]) / d[i]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tmin, tmax = math.Max(tmin, t0), math.Min(tmax, t1)
		if tmin > tmax {
			return false
		}
	}
	cb(to, xfB.Xform(lf.Add(d.Mul(tmin))))
	return true
}

// IntersectSegment casts the segment from-to against s placed at xf and
// returns the first hit point. Planes, spheres and boxes are supported.
func IntersectSegment(s shape.Shape, xf geom.Transform, from, to mgl64.Vec3) (mgl64.Vec3, bool) {
	if !s.IsConfigured() {
		return mgl64.Vec3{}, false
	}
	var (
		hit mgl64.Vec3
		ok  bool
	)
	grab := func(_, pb mgl64.Vec3) { hit, ok = pb, true }
	seg := segmentRay(from, to)
	if seg == nil {
		return mgl64.Vec3{}, false
	}
	segXf := segmentTransform(from, to)
	switch s.Type() {
	case shape.TypePlane:
		rayPlane(seg, segXf, s, xf, grab)
	case shape.TypeSphere:
		raySphere(seg, segXf, s, xf, grab)
	case shape.TypeBox:
		rayBox(seg, segXf, s, xf, grab)
	}
	return hit, ok
}

func segmentRay(from, to mgl64.Vec3) *shape.Ray {
	l := to.Sub(from).Len()
	if l < geom.Epsilon {
		return nil
	}
	r := &shape.Ray{}
	if err := r.SetData(l); err != nil {
		return nil
	}
	return r
}

// segmentTransform places a ray shape so that its local +Z runs from-to.
func segmentTransform(from, to mgl64.Vec3) geom.Transform {
	z := to.Sub(from).Normalize()
	x, y := geom.Orthogonal(z)
	return geom.NewTransform(mgl64.Mat3FromCols(x, y, z), from)
}
