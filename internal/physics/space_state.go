package physics

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/rid"
	"github.com/san-kum/rigidsim/internal/shape"
)

// ShapeResult is one object shape returned by a space query.
type ShapeResult struct {
	Object     rid.RID
	InstanceID uint64
	Shape      int
}

// RayResult is the closest hit of a ray query.
type RayResult struct {
	ShapeResult
	Position mgl64.Vec3
}

// DirectSpaceState runs immediate queries against a space's broad and narrow
// phase. It is only valid while the space is unlocked.
type DirectSpaceState struct {
	space *Space
}

type queryFilter struct {
	exclude []rid.RID
	mask    uint32
}

func (f queryFilter) skip(co *CollisionObject) bool {
	return co.layerMask&f.mask == 0 || slices.Contains(f.exclude, co.self)
}

// CullAABB returns the object shapes whose broad-phase box overlaps box and
// whose layer matches mask.
func (s *DirectSpaceState) CullAABB(box geom.AABB, mask uint32) []ShapeResult {
	f := queryFilter{mask: mask}
	var out []ShapeResult
	for _, h := range s.space.broadphase.CullAABB(box) {
		if f.skip(h.Owner) {
			continue
		}
		out = append(out, ShapeResult{Object: h.Owner.self, InstanceID: h.Owner.instanceID, Shape: h.Subindex})
	}
	return out
}

// IntersectShape returns up to max object shapes that touch sh placed at xf.
// A max of zero or less means no limit.
func (s *DirectSpaceState) IntersectShape(sh shape.Shape, xf geom.Transform, max int, exclude []rid.RID, mask uint32) []ShapeResult {
	if sh == nil || !sh.IsConfigured() {
		return nil
	}
	f := queryFilter{exclude: exclude, mask: mask}
	var out []ShapeResult
	for _, h := range s.space.broadphase.CullAABB(sh.AABB().Xform(xf)) {
		if max > 0 && len(out) >= max {
			break
		}
		co := h.Owner
		if f.skip(co) || h.Subindex >= len(co.shapes) {
			continue
		}
		slot := &co.shapes[h.Subindex]
		if !collision.Solve(sh, xf, slot.shape, co.transform.Mul(slot.xform), nil) {
			continue
		}
		out = append(out, ShapeResult{Object: co.self, InstanceID: co.instanceID, Shape: h.Subindex})
	}
	return out
}

// IntersectRay returns the body shape hit closest to from along the segment
// from-to. Areas and bodies that are not ray pickable are ignored.
func (s *DirectSpaceState) IntersectRay(from, to mgl64.Vec3, exclude []rid.RID, mask uint32) (RayResult, bool) {
	f := queryFilter{exclude: exclude, mask: mask}
	box := geom.AABBFromPoints([]mgl64.Vec3{from, to})

	var (
		best  RayResult
		found bool
		bestD float64
	)
	for _, h := range s.space.broadphase.CullAABB(box) {
		co := h.Owner
		if co.kind != KindBody || !co.rayPickable || f.skip(co) || h.Subindex >= len(co.shapes) {
			continue
		}
		slot := &co.shapes[h.Subindex]
		xf := co.transform.Mul(slot.xform)
		hit, ok := collision.IntersectSegment(slot.shape, xf, from, to)
		if !ok {
			continue
		}
		d := hit.Sub(from).LenSqr()
		if found && d >= bestD {
			continue
		}
		found, bestD = true, d
		best = RayResult{
			ShapeResult: ShapeResult{Object: co.self, InstanceID: co.instanceID, Shape: h.Subindex},
			Position:    hit,
		}
	}
	return best, found
}
