package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/rigidsim/internal/geom"
)

const (
	circleSegments = 16
	gridLines      = 9
	gridExtent     = 8.0
)

// Camera orbits Target at Distance. Span is the world width that fills the
// shorter screen side.
type Camera struct {
	Target     mgl64.Vec3
	Yaw, Pitch float64
	Distance   float64
	Span       float64
	Zoom       float64
	Near       float64
}

func NewCamera() *Camera {
	return &Camera{
		Target:   mgl64.Vec3{0, 2, 0},
		Yaw:      0.6,
		Pitch:    0.35,
		Distance: 40,
		Span:     18,
		Zoom:     1,
		Near:     0.1,
	}
}

func (c *Camera) RotateYaw(a float64) { c.Yaw += a }
func (c *Camera) RotatePitch(a float64) {
	c.Pitch = math.Max(-math.Pi/2, math.Min(math.Pi/2, c.Pitch+a))
}
func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// View maps a world point into camera space, +Z towards the viewer.
func (c *Camera) View(p mgl64.Vec3) mgl64.Vec3 {
	p = p.Sub(c.Target)
	p = mgl64.Rotate3DY(-c.Yaw).Mul3x1(p)
	p = mgl64.Rotate3DX(c.Pitch).Mul3x1(p)
	return p.Mul(c.Zoom)
}

// Project converts a world point to sub-pixel screen coordinates on an
// sw x sh screen. front is false for points behind the near plane.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (x, y int, depth float64, front bool) {
	v := c.View(p)
	if v.Z() >= c.Distance-c.Near {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - v.Z())
	pScale := math.Min(float64(sw), float64(sh)) / c.Span
	x = int(v.X()*scale*pScale) + sw/2
	y = int(-v.Y()*scale*pScale) + sh/2
	return x, y, v.Z(), true
}

type Edge struct {
	Start, End mgl64.Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe               { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e mgl64.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) AddPoint(p mgl64.Vec3)   { w.Edges = append(w.Edges, Edge{p, p}) }
func (w *Wireframe) Clear()                  { w.Edges = w.Edges[:0] }

// AddBox adds the twelve edges of a box with half extents h placed by xf.
func (w *Wireframe) AddBox(xf geom.Transform, h mgl64.Vec3) {
	var v [8]mgl64.Vec3
	for i := range v {
		c := mgl64.Vec3{-h[0], -h[1], -h[2]}
		for k := 0; k < 3; k++ {
			if i&(1<<k) != 0 {
				c[k] = h[k]
			}
		}
		v[i] = xf.Xform(c)
	}
	for i := range v {
		for k := 0; k < 3; k++ {
			if j := i | 1<<k; j != i {
				w.AddEdge(v[i], v[j])
			}
		}
	}
}

// AddCircle adds a circle of radius r around axis col of xf's basis.
func (w *Wireframe) AddCircle(xf geom.Transform, r float64, col int) {
	u, v := xf.Basis.Col((col+1)%3), xf.Basis.Col((col+2)%3)
	prev := xf.Origin.Add(u.Mul(r))
	for i := 1; i <= circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		next := xf.Origin.Add(u.Mul(r * math.Cos(a))).Add(v.Mul(r * math.Sin(a)))
		w.AddEdge(prev, next)
		prev = next
	}
}

func (w *Wireframe) AddSphere(xf geom.Transform, r float64) {
	for col := 0; col < 3; col++ {
		w.AddCircle(xf, r, col)
	}
}

// AddCapsule draws a capsule whose core segment runs along local Z.
func (w *Wireframe) AddCapsule(xf geom.Transform, r, height float64) {
	axis := xf.Basis.Col(2)
	for _, s := range []float64{-height / 2, height / 2} {
		end := xf
		end.Origin = xf.Origin.Add(axis.Mul(s))
		w.AddCircle(end, r, 2)
		w.AddCircle(end, r, 0)
	}
	for _, dir := range []mgl64.Vec3{xf.Basis.Col(0), xf.Basis.Col(1)} {
		for _, side := range []float64{-r, r} {
			off := xf.Origin.Add(dir.Mul(side))
			w.AddEdge(off.Add(axis.Mul(-height/2)), off.Add(axis.Mul(height/2)))
		}
	}
}

// AddPlane draws a square grid on p around the point of p nearest the
// origin.
func (w *Wireframe) AddPlane(p geom.Plane) {
	n := geom.SafeNormalize(p.Normal)
	u, v := geom.Orthogonal(n)
	center := n.Mul(p.D)
	for i := 0; i < gridLines; i++ {
		t := -gridExtent + 2*gridExtent*float64(i)/float64(gridLines-1)
		w.AddEdge(center.Add(u.Mul(t)).Add(v.Mul(-gridExtent)), center.Add(u.Mul(t)).Add(v.Mul(gridExtent)))
		w.AddEdge(center.Add(v.Mul(t)).Add(u.Mul(-gridExtent)), center.Add(v.Mul(t)).Add(u.Mul(gridExtent)))
	}
}

// AddTriangles draws every face of a triangle soup.
func (w *Wireframe) AddTriangles(xf geom.Transform, pts []mgl64.Vec3) {
	for i := 0; i+2 < len(pts); i += 3 {
		a, b, c := xf.Xform(pts[i]), xf.Xform(pts[i+1]), xf.Xform(pts[i+2])
		w.AddEdge(a, b)
		w.AddEdge(b, c)
		w.AddEdge(c, a)
	}
}

// AddHull draws a point cloud as its points joined to their centroid.
func (w *Wireframe) AddHull(xf geom.Transform, pts []mgl64.Vec3) {
	if len(pts) == 0 {
		return
	}
	var c mgl64.Vec3
	for _, p := range pts {
		c = c.Add(p)
	}
	c = xf.Xform(c.Mul(1 / float64(len(pts))))
	for _, p := range pts {
		w.AddEdge(c, xf.Xform(p))
	}
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D draws the wireframe far to near. Edges with an end behind the
// camera are skipped.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.Width*2, c.Height*4
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, f1 := cam.Project(e.Start, sw, sh)
		x2, y2, d2, f2 := cam.Project(e.End, sw, sh)
		if f1 && f2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.SliceStable(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.Set(e.x1, e.y1)
		} else {
			c.DrawLine(e.x1, e.y1, e.x2, e.y2)
		}
	}
}
