package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/shape"
)

var up = mgl64.Vec3{0, 1, 0}

func sphereSphere(a shape.Shape, xfA geom.Transform, b shape.Shape, xfB geom.Transform, cb ContactFunc) bool {
	return spheres(xfA.Origin, a.(*shape.Sphere).Radius(), xfB.Origin, b.(*shape.Sphere).Radius(), cb)
}

func spheres(ca mgl64.Vec3, ra float64, cc mgl64.Vec3, rb float64, cb ContactFunc) bool {
	d := cc.Sub(ca)
	dist := d.Len()
	if dist > ra+rb {
		return false
	}
	n := up
	if dist > geom.Epsilon {
		n = d.Mul(1 / dist)
	}
	cb(ca.Add(n.Mul(ra)), cc.Sub(n.Mul(rb)))
	return true
}

func spherePlane(a shape.Shape, xfA geom.Transform, b shape.Shape, xfB geom.Transform, cb ContactFunc) bool {
	return pointRadiusPlane(xfA.Origin, a.(*shape.Sphere).Radius(), b.(*shape.Plane).Plane().Xform(xfB), cb)
}

func pointRadiusPlane(c mgl64.Vec3, r float64, p geom.Plane, cb ContactFunc) bool {
	dist := p.Distance(c)
	if dist > r {
		return false
	}
	cb(c.Sub(p.Normal.Mul(r)), c.Sub(p.Normal.Mul(dist)))
	return true
}

func sphereBox(a shape.Shape, xfA geom.Transform, b shape.Shape, xfB geom.Transform, cb ContactFunc) bool {
	return pointRadiusBox(xfA.Origin, a.(*shape.Sphere).Radius(), b.(*shape.Box).HalfExtents(), xfB, cb)
}

func pointRadiusBox(c mgl64.Vec3, r float64, half mgl64.Vec3, xf geom.Transform, cb ContactFunc) bool {
	local := xf.XformInv(c)
	var q mgl64.Vec3
	for i := 0; i < 3; i++ {
		q[i] = math.Max(-half[i], math.Min(half[i], local[i]))
	}

	diff := local.Sub(q)
	dist := diff.Len()
	var nOut mgl64.Vec3
	if dist > geom.Epsilon {
		if dist > r {
			return false
		}
		nOut = diff.Mul(1 / dist)
	} else {
		axis, face := deepestFace(local, half)
		nOut[axis] = face
		q = local
		q[axis] = face * half[axis]
	}

	n := xf.BasisXform(nOut)
	cb(c.Sub(n.Mul(r)), xf.Xform(q))
	return true
}

// deepestFace picks the face of the box nearest to a contained point.
func deepestFace(p, half mgl64.Vec3) (int, float64) {
	axis, best := 0, math.Inf(1)
	for i := 0; i < 3; i++ {
		if d := half[i] - math.Abs(p[i]); d < best {
			axis, best = i, d
		}
	}
	if p[axis] < 0 {
		return axis, -1
	}
	return axis, 1
}

func pointsPlane(pts []mgl64.Vec3, xf geom.Transform, p geom.Plane, cb ContactFunc) bool {
	found := false
	for _, v := range pts {
		w := xf.Xform(v)
		dist := p.Distance(w)
		if dist > 0 {
			continue
		}
		cb(w, w.Sub(p.Normal.Mul(dist)))
		found = true
	}
	return found
}

func boxPlane(a shape.Shape, xfA geom.Transform, b shape.Shape, xfB geom.Transform, cb ContactFunc) bool {
	v := a.(*shape.Box).Vertices()
	return pointsPlane(v[:], xfA, b.(*shape.Plane).Plane().Xform(xfB), cb)
}

func convexPlane(a shape.Shape, xfA geom.Transform, b shape.Shape, xfB geom.Transform, cb ContactFunc) bool {
	return pointsPlane(a.(*shape.ConvexPolygon).Points(), xfA, b.(*shape.Plane).Plane().Xform(xfB), cb)
}

// boxBox reports vertices of either box contained in the other. Edge-edge
// crossings are not detected.
func boxBox(a shape.Shape, xfA geom.Transform, b shape.Shape, xfB geom.Transform, cb ContactFunc) bool {
	ba, bb := a.(*shape.Box), b.(*shape.Box)
	found := false

	for _, v := range bb.Vertices() {
		w := xfB.Xform(v)
		if face, depth, ok := insideBox(w, ba.HalfExtents(), xfA); ok {
			cb(w.Add(face.Mul(depth)), w)
			found = true
		}
	}
	for _, v := range ba.Vertices() {
		w := xfA.Xform(v)
		if face, depth, ok := insideBox(w, bb.HalfExtents(), xfB); ok {
			cb(w, w.Add(face.Mul(depth)))
			found = true
		}
	}
	return found
}

// insideBox returns the world outward normal of the nearest face and the
// distance to it when w lies inside the box.
func insideBox(w, half mgl64.Vec3, xf geom.Transform) (mgl64.Vec3, float64, bool) {
	local := xf.XformInv(w)
	for i := 0; i < 3; i++ {
		if math.Abs(local[i]) > half[i] {
			return mgl64.Vec3{}, 0, false
		}
	}
	axis, face := deepestFace(local, half)
	var n mgl64.Vec3
	n[axis] = face
	return xf.BasisXform(n), half[axis] - math.Abs(local[axis]), true
}

func capsuleEnds(c *shape.Capsule, xf geom.Transform) (mgl64.Vec3, mgl64.Vec3) {
	p, q := c.Segment()
	return xf.Xform(p), xf.Xform(q)
}

func capsulePlane(a shape.Shape, xfA geom.Transform, b shape.Shape, xfB geom.Transform, cb ContactFunc) bool {
	c := a.(*shape.Capsule)
	p0, p1 := capsuleEnds(c, xfA)
	pl := b.(*shape.Plane).Plane().Xform(xfB)
	hit0 := pointRadiusPlane(p0, c.Radius(), pl, cb)
	hit1 := pointRadiusPlane(p1, c.Radius(), pl, cb)
	return hit0 || hit1
}

func capsuleSphere(a shape.Shape, xfA geom.Transform, b shape.Shape, xfB geom.Transform, cb ContactFunc) bool {
	c := a.(*shape.Capsule)
	p0, p1 := capsuleEnds(c, xfA)
	q := closestOnSegment(p0, p1, xfB.Origin)
	return spheres(q, c.Radius(), xfB.Origin, b.(*shape.Sphere).Radius(), cb)
}

func capsuleBox(a shape.Shape, xfA geom.Transform, b shape.Shape, xfB geom.Transform, cb ContactFunc) bool {
	c := a.(*shape.Capsule)
	p0, p1 := capsuleEnds(c, xfA)
	half := b.(*shape.Box).HalfExtents()
	hit0 := pointRadiusBox(p0, c.Radius(), half, xfB, cb)
	hit1 := pointRadiusBox(p1, c.Radius(), half, xfB, cb)
	return hit0 || hit1
}

func capsuleCapsule(a shape.Shape, xfA geom.Transform, b shape.Shape, xfB geom.Transform, cb ContactFunc) bool {
	ca, cbb := a.(*shape.Capsule), b.(*shape.Capsule)
	a0, a1 := capsuleEnds(ca, xfA)
	b0, b1 := capsuleEnds(cbb, xfB)
	pa, pb := closestSegments(a0, a1, b0, b1)
	return spheres(pa, ca.Radius(), pb, cbb.Radius(), cb)
}

func closestOnSegment(a, b, p mgl64.Vec3) mgl64.Vec3 {
	ab := b.Sub(a)
	l := ab.LenSqr()
	if l < geom.Epsilon {
		return a
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l))
	return a.Add(ab.Mul(t))
}

// closestSegments returns the closest points between segments p1q1 and p2q2.
func closestSegments(p1, q1, p2, q2 mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	d1, d2 := q1.Sub(p1), q2.Sub(p2)
	r := p1.Sub(p2)
	a, e, f := d1.Dot(d1), d2.Dot(d2), d2.Dot(r)

	var s, t float64
	switch {
	case a <= geom.Epsilon && e <= geom.Epsilon:
		return p1, p2
	case a <= geom.Epsilon:
		t = clamp01(f / e)
	default:
		c := d1.Dot(r)
		if e <= geom.Epsilon {
			s = clamp01(-c / a)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom != 0 {
				s = clamp01((b*f - c*e) / denom)
			}
			t = (b*s + f) / e
			if t < 0 {
				t, s = 0, clamp01(-c/a)
			} else if t > 1 {
				t, s = 1, clamp01((b-c)/a)
			}
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }
