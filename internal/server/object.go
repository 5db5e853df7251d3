package server

import (
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/rid"
)

// Shape bookkeeping shared by bodies and areas. op carries the public
// operation name for diagnostics.

func (s *Server) objectOf(op string, r rid.RID, kind physics.ObjectKind) (*physics.CollisionObject, error) {
	switch kind {
	case physics.KindBody:
		b, err := s.body(op, r)
		if err != nil {
			return nil, err
		}
		return &b.CollisionObject, nil
	default:
		a, err := s.area(op, r)
		if err != nil {
			return nil, err
		}
		return &a.CollisionObject, nil
	}
}

func (s *Server) addShape(op string, r rid.RID, kind physics.ObjectKind, shapeRID rid.RID, xf geom.Transform) error {
	co, err := s.objectOf(op, r, kind)
	if err != nil {
		return err
	}
	sh, err := s.shape(op, shapeRID)
	if err != nil {
		return err
	}
	if !sh.IsConfigured() {
		return s.fail(op, shapeRID, ErrShapeNotConfigured)
	}
	co.AddShape(sh, xf)
	return nil
}

func (s *Server) setShape(op string, r rid.RID, kind physics.ObjectKind, index int, shapeRID rid.RID) error {
	co, err := s.objectOf(op, r, kind)
	if err != nil {
		return err
	}
	sh, err := s.shape(op, shapeRID)
	if err != nil {
		return err
	}
	if !sh.IsConfigured() {
		return s.fail(op, shapeRID, ErrShapeNotConfigured)
	}
	if err := co.SetShape(index, sh); err != nil {
		return s.fail(op, r, err)
	}
	return nil
}

func (s *Server) setShapeTransform(op string, r rid.RID, kind physics.ObjectKind, index int, xf geom.Transform) error {
	co, err := s.objectOf(op, r, kind)
	if err != nil {
		return err
	}
	if err := co.SetShapeTransform(index, xf); err != nil {
		return s.fail(op, r, err)
	}
	return nil
}

func (s *Server) shapeCount(op string, r rid.RID, kind physics.ObjectKind) int {
	co, err := s.objectOf(op, r, kind)
	if err != nil {
		return 0
	}
	return co.ShapeCount()
}

func (s *Server) shapeAt(op string, r rid.RID, kind physics.ObjectKind, index int) rid.RID {
	co, err := s.objectOf(op, r, kind)
	if err != nil {
		return rid.Invalid
	}
	sh, err := co.Shape(index)
	if err != nil {
		s.logf(op, r, err)
		return rid.Invalid
	}
	return sh.Self()
}

func (s *Server) shapeTransformAt(op string, r rid.RID, kind physics.ObjectKind, index int) geom.Transform {
	co, err := s.objectOf(op, r, kind)
	if err != nil {
		return geom.Identity()
	}
	xf, err := co.ShapeTransform(index)
	if err != nil {
		s.logf(op, r, err)
		return geom.Identity()
	}
	return xf
}

func (s *Server) removeShape(op string, r rid.RID, kind physics.ObjectKind, index int) error {
	co, err := s.objectOf(op, r, kind)
	if err != nil {
		return err
	}
	if err := co.RemoveShapeAt(index); err != nil {
		return s.fail(op, r, err)
	}
	return nil
}

func (s *Server) clearShapes(op string, r rid.RID, kind physics.ObjectKind) error {
	co, err := s.objectOf(op, r, kind)
	if err != nil {
		return err
	}
	co.ClearShapes()
	return nil
}

func (s *Server) setShapeTrigger(op string, r rid.RID, kind physics.ObjectKind, index int, trigger bool) error {
	co, err := s.objectOf(op, r, kind)
	if err != nil {
		return err
	}
	if err := co.SetShapeAsTrigger(index, trigger); err != nil {
		return s.fail(op, r, err)
	}
	return nil
}

func (s *Server) instanceID(op string, r rid.RID, kind physics.ObjectKind) uint64 {
	co, err := s.objectOf(op, r, kind)
	if err != nil {
		return 0
	}
	return co.InstanceID()
}

func (s *Server) attachInstanceID(op string, r rid.RID, kind physics.ObjectKind, id uint64) error {
	co, err := s.objectOf(op, r, kind)
	if err != nil {
		return err
	}
	co.SetInstanceID(id)
	return nil
}

func (s *Server) setLayerMask(op string, r rid.RID, kind physics.ObjectKind, mask uint32) error {
	co, err := s.objectOf(op, r, kind)
	if err != nil {
		return err
	}
	co.SetLayerMask(mask)
	return nil
}

func (s *Server) setCollisionMask(op string, r rid.RID, kind physics.ObjectKind, mask uint32) error {
	co, err := s.objectOf(op, r, kind)
	if err != nil {
		return err
	}
	co.SetCollisionMask(mask)
	return nil
}

func (s *Server) setRayPickable(op string, r rid.RID, kind physics.ObjectKind, enable bool) error {
	co, err := s.objectOf(op, r, kind)
	if err != nil {
		return err
	}
	co.SetRayPickable(enable)
	return nil
}

// checkUnlocked refuses changes to the space membership of an object while
// the space it leaves or joins is stepping.
func (s *Server) checkUnlocked(op string, r rid.RID, spaces ...*physics.Space) error {
	for _, sp := range spaces {
		if sp != nil && sp.IsLocked() {
			return s.fail(op, r, ErrSpaceLocked)
		}
	}
	return nil
}
