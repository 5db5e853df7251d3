package server

import (
	"github.com/san-kum/rigidsim/internal/rid"
	"github.com/san-kum/rigidsim/internal/shape"
)

// ShapeCreate returns an unconfigured shape of type t. Custom shapes are
// not supported.
func (s *Server) ShapeCreate(t shape.Type) (rid.RID, error) {
	sh, err := shape.New(t)
	if err != nil {
		return rid.Invalid, s.fail("shape_create", rid.Invalid, err)
	}
	r := s.shapes.Make(sh)
	sh.SetSelf(r)
	return r, nil
}

// ShapeSetData configures the shape. Every body and area using it picks up
// the new geometry.
func (s *Server) ShapeSetData(r rid.RID, data any) error {
	sh, err := s.shape("shape_set_data", r)
	if err != nil {
		return err
	}
	if err := sh.SetData(data); err != nil {
		return s.fail("shape_set_data", r, err)
	}
	return nil
}

func (s *Server) ShapeType(r rid.RID) shape.Type {
	sh, err := s.shape("shape_get_type", r)
	if err != nil {
		return shape.TypeCustom
	}
	return sh.Type()
}

func (s *Server) ShapeData(r rid.RID) any {
	sh, err := s.shape("shape_get_data", r)
	if err != nil {
		return nil
	}
	if !sh.IsConfigured() {
		s.logf("shape_get_data", r, ErrShapeNotConfigured)
		return nil
	}
	return sh.Data()
}

func (s *Server) ShapeSetCustomSolverBias(r rid.RID, bias float64) error {
	sh, err := s.shape("shape_set_custom_solver_bias", r)
	if err != nil {
		return err
	}
	sh.SetCustomSolverBias(bias)
	return nil
}

func (s *Server) ShapeCustomSolverBias(r rid.RID) float64 {
	sh, err := s.shape("shape_get_custom_solver_bias", r)
	if err != nil {
		return 0
	}
	return sh.CustomSolverBias()
}
