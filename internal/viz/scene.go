package viz

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/scenario"
	"github.com/san-kum/rigidsim/internal/server"
	"github.com/san-kum/rigidsim/internal/shape"
)

type shapeInstance struct {
	typ   shape.Type
	data  any
	local geom.Transform
}

// Scene holds the shapes of a built world so frames can be drawn without
// going back to the server.
type Scene struct {
	bodies map[string][]shapeInstance
	areas  []placedShape
}

type placedShape struct {
	shapeInstance
	xf geom.Transform
}

func NewScene(srv *server.Server, w *scenario.World) *Scene {
	s := &Scene{bodies: make(map[string][]shapeInstance, len(w.Bodies))}
	for _, b := range w.Bodies {
		n := srv.BodyShapeCount(b.RID)
		insts := make([]shapeInstance, 0, n)
		for i := 0; i < n; i++ {
			sh := srv.BodyShape(b.RID, i)
			insts = append(insts, shapeInstance{
				typ:   srv.ShapeType(sh),
				data:  srv.ShapeData(sh),
				local: srv.BodyShapeTransform(b.RID, i),
			})
		}
		s.bodies[b.Name] = insts
	}
	for _, a := range w.Areas {
		xf := srv.AreaTransform(a.RID)
		for i := 0; i < srv.AreaShapeCount(a.RID); i++ {
			sh := srv.AreaShape(a.RID, i)
			s.areas = append(s.areas, placedShape{
				shapeInstance: shapeInstance{
					typ:   srv.ShapeType(sh),
					data:  srv.ShapeData(sh),
					local: srv.AreaShapeTransform(a.RID, i),
				},
				xf: xf,
			})
		}
	}
	return s
}

// Wireframe appends every body of f, and areas when withAreas is set.
func (s *Scene) Wireframe(wf *Wireframe, f scenario.Frame, withAreas bool) {
	for _, b := range f.Bodies {
		xf := geom.NewTransform(b.Basis, b.Position)
		for _, inst := range s.bodies[b.Name] {
			addShape(wf, xf.Mul(inst.local), inst.typ, inst.data)
		}
	}
	if withAreas {
		for _, a := range s.areas {
			addShape(wf, a.xf.Mul(a.local), a.typ, a.data)
		}
	}
}

func addShape(wf *Wireframe, xf geom.Transform, typ shape.Type, data any) {
	switch d := data.(type) {
	case float64:
		if typ == shape.TypeRay {
			wf.AddEdge(xf.Origin, xf.Xform(mgl64.Vec3{0, 0, d}))
			return
		}
		wf.AddSphere(xf, d)
	case mgl64.Vec3:
		wf.AddBox(xf, d)
	case geom.Plane:
		wf.AddPlane(d.Xform(xf))
	case shape.CapsuleData:
		wf.AddCapsule(xf, d.Radius, d.Height)
	case []mgl64.Vec3:
		if typ == shape.TypeConcavePolygon {
			wf.AddTriangles(xf, d)
		} else {
			wf.AddHull(xf, d)
		}
	case shape.HeightMapData:
		addHeightMap(wf, xf, d)
	default:
		wf.AddPoint(xf.Origin)
	}
}

func addHeightMap(wf *Wireframe, xf geom.Transform, d shape.HeightMapData) {
	at := func(x, z int) mgl64.Vec3 {
		return xf.Xform(mgl64.Vec3{float64(x) * d.CellSize, d.Heights[z*d.Width+x], float64(z) * d.CellSize})
	}
	for z := 0; z < d.Depth; z++ {
		for x := 0; x < d.Width; x++ {
			if x+1 < d.Width {
				wf.AddEdge(at(x, z), at(x+1, z))
			}
			if z+1 < d.Depth {
				wf.AddEdge(at(x, z), at(x, z+1))
			}
		}
	}
}
