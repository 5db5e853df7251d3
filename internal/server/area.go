package server

import (
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/rid"
)

func (s *Server) AreaCreate() rid.RID {
	a := physics.NewArea()
	r := s.areas.Make(a)
	a.SetSelf(r)
	return r
}

// AreaSetSpace moves the area into the space sp, or out of any space when
// sp is rid.Invalid.
func (s *Server) AreaSetSpace(r, sp rid.RID) error {
	a, err := s.area("area_set_space", r)
	if err != nil {
		return err
	}
	space, err := s.spaceOf("area_set_space", sp)
	if err != nil {
		return err
	}
	if err := s.checkUnlocked("area_set_space", r, a.Space(), space); err != nil {
		return err
	}
	a.SetSpace(space)
	return nil
}

func (s *Server) AreaSpace(r rid.RID) rid.RID {
	a, err := s.area("area_get_space", r)
	if err != nil || a.Space() == nil {
		return rid.Invalid
	}
	return a.Space().Self()
}

func (s *Server) AreaSetSpaceOverrideMode(r rid.RID, mode physics.AreaSpaceOverrideMode) error {
	a, err := s.areaOrDefault("area_set_space_override_mode", r)
	if err != nil {
		return err
	}
	if mode < physics.AreaOverrideDisabled || mode > physics.AreaOverrideReplaceCombine {
		return s.fail("area_set_space_override_mode", r, ErrInvalidParameter)
	}
	a.SetSpaceOverrideMode(mode)
	return nil
}

func (s *Server) AreaSpaceOverrideMode(r rid.RID) physics.AreaSpaceOverrideMode {
	a, err := s.areaOrDefault("area_get_space_override_mode", r)
	if err != nil {
		return physics.AreaOverrideDisabled
	}
	return a.SpaceOverrideMode()
}

func (s *Server) AreaAddShape(r, shapeRID rid.RID, xf geom.Transform) error {
	return s.addShape("area_add_shape", r, physics.KindArea, shapeRID, xf)
}

func (s *Server) AreaSetShape(r rid.RID, index int, shapeRID rid.RID) error {
	return s.setShape("area_set_shape", r, physics.KindArea, index, shapeRID)
}

func (s *Server) AreaSetShapeTransform(r rid.RID, index int, xf geom.Transform) error {
	return s.setShapeTransform("area_set_shape_transform", r, physics.KindArea, index, xf)
}

func (s *Server) AreaShapeCount(r rid.RID) int {
	return s.shapeCount("area_get_shape_count", r, physics.KindArea)
}

func (s *Server) AreaShape(r rid.RID, index int) rid.RID {
	return s.shapeAt("area_get_shape", r, physics.KindArea, index)
}

func (s *Server) AreaShapeTransform(r rid.RID, index int) geom.Transform {
	return s.shapeTransformAt("area_get_shape_transform", r, physics.KindArea, index)
}

func (s *Server) AreaRemoveShape(r rid.RID, index int) error {
	return s.removeShape("area_remove_shape", r, physics.KindArea, index)
}

func (s *Server) AreaClearShapes(r rid.RID) error {
	return s.clearShapes("area_clear_shapes", r, physics.KindArea)
}

// AreaAttachObjectInstanceID accepts a space handle and writes to its
// default area.
func (s *Server) AreaAttachObjectInstanceID(r rid.RID, id uint64) error {
	a, err := s.areaOrDefault("area_attach_object_instance_id", r)
	if err != nil {
		return err
	}
	a.SetInstanceID(id)
	return nil
}

func (s *Server) AreaObjectInstanceID(r rid.RID) uint64 {
	a, err := s.areaOrDefault("area_get_object_instance_id", r)
	if err != nil {
		return 0
	}
	return a.InstanceID()
}

// AreaSetParam accepts a space handle and writes to its default area. The
// value type depends on p: mgl64.Vec3 for the gravity vector, bool for
// point gravity, int for priority and float64 otherwise.
func (s *Server) AreaSetParam(r rid.RID, p physics.AreaParameter, v any) error {
	a, err := s.areaOrDefault("area_set_param", r)
	if err != nil {
		return err
	}
	if err := a.SetParam(p, v); err != nil {
		return s.fail("area_set_param", r, err)
	}
	return nil
}

func (s *Server) AreaParam(r rid.RID, p physics.AreaParameter) any {
	a, err := s.areaOrDefault("area_get_param", r)
	if err != nil {
		return nil
	}
	v := a.Param(p)
	if v == nil {
		s.logf("area_get_param", r, ErrInvalidParameter)
	}
	return v
}

func (s *Server) AreaSetTransform(r rid.RID, xf geom.Transform) error {
	a, err := s.area("area_set_transform", r)
	if err != nil {
		return err
	}
	a.SetTransform(xf)
	return nil
}

func (s *Server) AreaTransform(r rid.RID) geom.Transform {
	a, err := s.area("area_get_transform", r)
	if err != nil {
		return geom.Identity()
	}
	return a.Transform()
}

func (s *Server) AreaSetCollisionMask(r rid.RID, mask uint32) error {
	return s.setCollisionMask("area_set_collision_mask", r, physics.KindArea, mask)
}

func (s *Server) AreaSetLayerMask(r rid.RID, mask uint32) error {
	return s.setLayerMask("area_set_collision_layer", r, physics.KindArea, mask)
}

func (s *Server) AreaSetMonitorable(r rid.RID, monitorable bool) error {
	a, err := s.area("area_set_monitorable", r)
	if err != nil {
		return err
	}
	if err := s.checkUnlocked("area_set_monitorable", r, a.Space()); err != nil {
		return err
	}
	a.SetMonitorable(monitorable)
	return nil
}

func (s *Server) AreaSetRayPickable(r rid.RID, enable bool) error {
	return s.setRayPickable("area_set_ray_pickable", r, physics.KindArea, enable)
}

// AreaSetMonitorCallback installs m as the body overlap monitor; nil
// removes it. A monitor that implements physics.Expirer is dropped once it
// reports expired.
func (s *Server) AreaSetMonitorCallback(r rid.RID, m physics.AreaMonitor) error {
	a, err := s.area("area_set_monitor_callback", r)
	if err != nil {
		return err
	}
	a.SetMonitor(m)
	return nil
}

func (s *Server) AreaSetAreaMonitorCallback(r rid.RID, m physics.AreaMonitor) error {
	a, err := s.area("area_set_area_monitor_callback", r)
	if err != nil {
		return err
	}
	a.SetAreaMonitor(m)
	return nil
}
