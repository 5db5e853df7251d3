package shape

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
)

// planeExtent bounds the otherwise infinite plane for broad-phase purposes.
const planeExtent = 1e4

type Plane struct {
	base
	plane geom.Plane
}

func (s *Plane) Type() Type        { return TypePlane }
func (s *Plane) Data() any         { return s.plane }
func (s *Plane) Plane() geom.Plane { return s.plane }

func (s *Plane) SetData(data any) error {
	p, ok := data.(geom.Plane)
	if !ok {
		return fmt.Errorf("%w: plane wants geom.Plane, got %T", ErrInvalidData, data)
	}
	l := p.Normal.Len()
	if l < geom.Epsilon {
		return fmt.Errorf("%w: zero plane normal", ErrInvalidData)
	}
	s.plane = geom.Plane{Normal: p.Normal.Mul(1 / l), D: p.D / l}
	e := mgl64.Vec3{planeExtent, planeExtent, planeExtent}
	s.configure(s, geom.NewAABB(e.Mul(-1), e.Mul(2)))
	return nil
}

func (s *Plane) MomentOfInertia(float64) mgl64.Vec3 { return mgl64.Vec3{} }

// Ray points along local +Z.
type Ray struct {
	base
	length float64
}

func (s *Ray) Type() Type      { return TypeRay }
func (s *Ray) Data() any       { return s.length }
func (s *Ray) Length() float64 { return s.length }

func (s *Ray) SetData(data any) error {
	l, ok := data.(float64)
	if !ok || l < 0 || math.IsNaN(l) {
		return fmt.Errorf("%w: ray wants a non-negative float64 length, got %v", ErrInvalidData, data)
	}
	s.length = l
	s.configure(s, geom.NewAABB(mgl64.Vec3{}, mgl64.Vec3{0.1, 0.1, l}))
	return nil
}

func (s *Ray) MomentOfInertia(float64) mgl64.Vec3 { return mgl64.Vec3{} }

type Sphere struct {
	base
	radius float64
}

func (s *Sphere) Type() Type      { return TypeSphere }
func (s *Sphere) Data() any       { return s.radius }
func (s *Sphere) Radius() float64 { return s.radius }

func (s *Sphere) SetData(data any) error {
	r, ok := data.(float64)
	if !ok || !(r > 0) {
		return fmt.Errorf("%w: sphere wants a positive float64 radius, got %v", ErrInvalidData, data)
	}
	s.radius = r
	e := mgl64.Vec3{r, r, r}
	s.configure(s, geom.NewAABB(e.Mul(-1), e.Mul(2)))
	return nil
}

func (s *Sphere) MomentOfInertia(mass float64) mgl64.Vec3 {
	i := 0.4 * mass * s.radius * s.radius
	return mgl64.Vec3{i, i, i}
}

type Box struct {
	base
	half mgl64.Vec3
}

func (s *Box) Type() Type              { return TypeBox }
func (s *Box) Data() any               { return s.half }
func (s *Box) HalfExtents() mgl64.Vec3 { return s.half }

func (s *Box) SetData(data any) error {
	h, ok := data.(mgl64.Vec3)
	if !ok || h[0] < 0 || h[1] < 0 || h[2] < 0 {
		return fmt.Errorf("%w: box wants non-negative mgl64.Vec3 half extents, got %v", ErrInvalidData, data)
	}
	s.half = h
	s.configure(s, geom.NewAABB(h.Mul(-1), h.Mul(2)))
	return nil
}

func (s *Box) MomentOfInertia(mass float64) mgl64.Vec3 { return boxInertia(mass, s.half) }

// Vertices returns the eight corners in local space.
func (s *Box) Vertices() [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	h := s.half
	for i := 0; i < 8; i++ {
		out[i] = mgl64.Vec3{
			sign(i&1 != 0) * h[0],
			sign(i&2 != 0) * h[1],
			sign(i&4 != 0) * h[2],
		}
	}
	return out
}

func sign(neg bool) float64 {
	if neg {
		return -1
	}
	return 1
}

type CapsuleData struct {
	Radius float64
	Height float64
}

// Capsule is a segment of length Height along local Z swept by Radius.
type Capsule struct {
	base
	data CapsuleData
}

func (s *Capsule) Type() Type      { return TypeCapsule }
func (s *Capsule) Data() any       { return s.data }
func (s *Capsule) Radius() float64 { return s.data.Radius }
func (s *Capsule) Height() float64 { return s.data.Height }

func (s *Capsule) SetData(data any) error {
	d, ok := data.(CapsuleData)
	if !ok || !(d.Radius > 0) || d.Height < 0 {
		return fmt.Errorf("%w: capsule wants CapsuleData with radius > 0, got %v", ErrInvalidData, data)
	}
	s.data = d
	r, h := d.Radius, d.Height
	s.configure(s, geom.NewAABB(mgl64.Vec3{-r, -r, -h/2 - r}, mgl64.Vec3{2 * r, 2 * r, h + 2*r}))
	return nil
}

// Segment returns the capsule's core segment end points in local space.
func (s *Capsule) Segment() (mgl64.Vec3, mgl64.Vec3) {
	h := s.data.Height / 2
	return mgl64.Vec3{0, 0, -h}, mgl64.Vec3{0, 0, h}
}

func (s *Capsule) MomentOfInertia(mass float64) mgl64.Vec3 {
	return approxInertia(mass, s.aabb)
}
