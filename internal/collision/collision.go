// Package collision is the default narrow phase. It reports contact points
// between pairs of primitive shapes placed by world transforms.
//
// For every contact the callback gets pointA, the point of A deepest inside
// B, and pointB, the matching point on B's surface. pointA-pointB points
// from A toward B and its length is the penetration depth.
package collision

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/shape"
)

type ContactFunc func(pointA, pointB mgl64.Vec3)

type solver func(a shape.Shape, xfA geom.Transform, b shape.Shape, xfB geom.Transform, cb ContactFunc) bool

type pairKey struct{ a, b shape.Type }

var solvers = map[pairKey]solver{
	{shape.TypeSphere, shape.TypeSphere}:       sphereSphere,
	{shape.TypeSphere, shape.TypePlane}:        spherePlane,
	{shape.TypeSphere, shape.TypeBox}:          sphereBox,
	{shape.TypeBox, shape.TypePlane}:           boxPlane,
	{shape.TypeBox, shape.TypeBox}:             boxBox,
	{shape.TypeCapsule, shape.TypePlane}:       capsulePlane,
	{shape.TypeCapsule, shape.TypeSphere}:      capsuleSphere,
	{shape.TypeCapsule, shape.TypeBox}:         capsuleBox,
	{shape.TypeCapsule, shape.TypeCapsule}:     capsuleCapsule,
	{shape.TypeConvexPolygon, shape.TypePlane}: convexPlane,
	{shape.TypeRay, shape.TypePlane}:           rayPlane,
	{shape.TypeRay, shape.TypeSphere}:          raySphere,
	{shape.TypeRay, shape.TypeBox}:             rayBox,
}

// Supported reports whether a pair of shape types has a solver.
func Supported(a, b shape.Type) bool {
	_, ok := solvers[pairKey{a, b}]
	if !ok {
		_, ok = solvers[pairKey{b, a}]
	}
	return ok
}

// Solve reports whether a and b touch, calling cb once per contact point.
// cb may be nil when only the overlap result matters. Unsupported pairs
// never collide.
func Solve(a shape.Shape, xfA geom.Transform, b shape.Shape, xfB geom.Transform, cb ContactFunc) bool {
	if !a.IsConfigured() || !b.IsConfigured() {
		return false
	}
	if cb == nil {
		cb = func(mgl64.Vec3, mgl64.Vec3) {}
	}
	if fn, ok := solvers[pairKey{a.Type(), b.Type()}]; ok {
		return fn(a, xfA, b, xfB, cb)
	}
	if fn, ok := solvers[pairKey{b.Type(), a.Type()}]; ok {
		return fn(b, xfB, a, xfA, func(pb, pa mgl64.Vec3) { cb(pa, pb) })
	}
	return false
}
