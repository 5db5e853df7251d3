package shape

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
)

type ConvexPolygon struct {
	base
	points []mgl64.Vec3
}

func (s *ConvexPolygon) Type() Type           { return TypeConvexPolygon }
func (s *ConvexPolygon) Data() any            { return append([]mgl64.Vec3(nil), s.points...) }
func (s *ConvexPolygon) Points() []mgl64.Vec3 { return s.points }

func (s *ConvexPolygon) SetData(data any) error {
	pts, ok := data.([]mgl64.Vec3)
	if !ok || len(pts) == 0 {
		return fmt.Errorf("%w: convex polygon wants a non-empty []mgl64.Vec3", ErrInvalidData)
	}
	s.points = append(s.points[:0], pts...)
	s.configure(s, geom.AABBFromPoints(s.points))
	return nil
}

func (s *ConvexPolygon) MomentOfInertia(mass float64) mgl64.Vec3 {
	return approxInertia(mass, s.aabb)
}

// ConcavePolygon is a triangle soup: every three points form a face.
type ConcavePolygon struct {
	base
	faces []mgl64.Vec3
}

func (s *ConcavePolygon) Type() Type          { return TypeConcavePolygon }
func (s *ConcavePolygon) Data() any           { return append([]mgl64.Vec3(nil), s.faces...) }
func (s *ConcavePolygon) Faces() []mgl64.Vec3 { return s.faces }

func (s *ConcavePolygon) SetData(data any) error {
	f, ok := data.([]mgl64.Vec3)
	if !ok || len(f)%3 != 0 {
		return fmt.Errorf("%w: concave polygon wants a []mgl64.Vec3 of whole triangles", ErrInvalidData)
	}
	s.faces = append(s.faces[:0], f...)
	s.configure(s, geom.AABBFromPoints(s.faces))
	return nil
}

func (s *ConcavePolygon) MomentOfInertia(mass float64) mgl64.Vec3 {
	return approxInertia(mass, s.aabb)
}

// HeightMapData is a Width x Depth grid of heights, row-major by depth.
type HeightMapData struct {
	Width    int
	Depth    int
	CellSize float64
	Heights  []float64
}

type HeightMap struct {
	base
	data HeightMapData
}

func (s *HeightMap) Type() Type { return TypeHeightMap }
func (s *HeightMap) Data() any {
	d := s.data
	d.Heights = append([]float64(nil), d.Heights...)
	return d
}

func (s *HeightMap) SetData(data any) error {
	d, ok := data.(HeightMapData)
	if !ok || d.Width <= 0 || d.Depth <= 0 || d.CellSize <= geom.Epsilon || len(d.Heights) != d.Width*d.Depth {
		return fmt.Errorf("%w: heightmap wants HeightMapData with width*depth heights and cell size > 0", ErrInvalidData)
	}
	d.Heights = append([]float64(nil), d.Heights...)
	s.data = d

	pts := make([]mgl64.Vec3, 0, len(d.Heights))
	for i := 0; i < d.Depth; i++ {
		for j := 0; j < d.Width; j++ {
			pts = append(pts, mgl64.Vec3{float64(j) * d.CellSize, d.Heights[i*d.Width+j], float64(i) * d.CellSize})
		}
	}
	s.configure(s, geom.AABBFromPoints(pts))
	return nil
}

// Height returns the height at grid cell (x, z).
func (s *HeightMap) Height(x, z int) float64 { return s.data.Heights[z*s.data.Width+x] }

func (s *HeightMap) MomentOfInertia(mass float64) mgl64.Vec3 {
	return approxInertia(mass, s.aabb)
}
