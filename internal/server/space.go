package server

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/rid"
)

// SpaceCreate returns an inactive space with its own default area and
// static global body.
func (s *Server) SpaceCreate() rid.RID {
	sp := physics.NewSpace(nil)
	r := s.spaces.Make(sp)
	sp.SetSelf(r)
	sp.DefaultArea().SetSelf(r)
	return r
}

// SpaceSetActive adds the space to, or removes it from, the set stepped by
// Step.
func (s *Server) SpaceSetActive(r rid.RID, active bool) error {
	sp, err := s.space("space_set_active", r)
	if err != nil {
		return err
	}
	if sp.IsLocked() {
		return s.fail("space_set_active", r, ErrSpaceLocked)
	}
	s.deactivate(sp)
	if active {
		s.activeSpaces = append(s.activeSpaces, sp)
	} else {
		sp.BlockQueries(false)
	}
	return nil
}

func (s *Server) SpaceIsActive(r rid.RID) bool {
	sp, err := s.space("space_is_active", r)
	if err != nil {
		return false
	}
	for _, o := range s.activeSpaces {
		if o == sp {
			return true
		}
	}
	return false
}

func (s *Server) SpaceSetParam(r rid.RID, p physics.SpaceParameter, v float64) error {
	sp, err := s.space("space_set_param", r)
	if err != nil {
		return err
	}
	if err := sp.SetParam(p, v); err != nil {
		return s.fail("space_set_param", r, err)
	}
	return nil
}

func (s *Server) SpaceParam(r rid.RID, p physics.SpaceParameter) float64 {
	sp, err := s.space("space_get_param", r)
	if err != nil {
		return 0
	}
	return sp.Param(p)
}

// SpaceSetDebugContacts sets how many contact points the space records per
// step for debug drawing.
func (s *Server) SpaceSetDebugContacts(r rid.RID, max int) error {
	sp, err := s.space("space_set_debug_contacts", r)
	if err != nil {
		return err
	}
	sp.SetDebugContacts(max)
	return nil
}

func (s *Server) SpaceDebugContacts(r rid.RID) []mgl64.Vec3 {
	sp, err := s.space("space_get_contacts", r)
	if err != nil {
		return nil
	}
	return sp.DebugContacts()
}

func (s *Server) SpaceContactCount(r rid.RID) int {
	return len(s.SpaceDebugContacts(r))
}

// DirectSpaceState is the server's query view of one space. Shapes are
// passed by handle.
type DirectSpaceState struct {
	srv   *Server
	state *physics.DirectSpaceState
}

// SpaceDirectState returns the query view of r. It fails with
// ErrSpaceLocked from Step until the following FlushQueries has returned.
func (s *Server) SpaceDirectState(r rid.RID) (*DirectSpaceState, error) {
	sp, err := s.space("space_get_direct_state", r)
	if err != nil {
		return nil, err
	}
	if !s.doingSync {
		return nil, s.fail("space_get_direct_state", r, ErrSpaceLocked)
	}
	st, err := sp.DirectState()
	if err != nil {
		return nil, s.fail("space_get_direct_state", r, err)
	}
	return &DirectSpaceState{srv: s, state: st}, nil
}

func (d *DirectSpaceState) CullAABB(box geom.AABB, mask uint32) []physics.ShapeResult {
	return d.state.CullAABB(box, mask)
}

// IntersectShape returns up to max object shapes touching the shape r placed
// at xf.
func (d *DirectSpaceState) IntersectShape(r rid.RID, xf geom.Transform, max int, exclude []rid.RID, mask uint32) []physics.ShapeResult {
	sh, err := d.srv.shape("intersect_shape", r)
	if err != nil {
		return nil
	}
	return d.state.IntersectShape(sh, xf, max, exclude, mask)
}

func (d *DirectSpaceState) IntersectRay(from, to mgl64.Vec3, exclude []rid.RID, mask uint32) (physics.RayResult, bool) {
	return d.state.IntersectRay(from, to, exclude, mask)
}
