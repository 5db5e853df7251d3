package config

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Presets builds each named scenario afresh so callers may mutate the result.
var Presets = map[string]func() *Config{
	"drop":     dropPreset,
	"stack":    stackPreset,
	"pendulum": pendulumPreset,
	"wind":     windPreset,
	"hinge":    hingePreset,
	"sleepers": sleepersPreset,
}

func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func ptr(v float64) *float64 { return &v }

var groundShapes = []ShapeConfig{
	{Name: "ground", Type: "plane", Normal: mgl64.Vec3{0, 1, 0}},
	{Name: "box", Type: "box", HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}},
	{Name: "ball", Type: "sphere", Radius: 0.5},
}

func withGround(name string) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	cfg.Shapes = append([]ShapeConfig(nil), groundShapes...)
	cfg.Bodies = []BodyConfig{{Name: "ground", Mode: "static", Shapes: []string{"ground"}}}
	return cfg
}

func dropPreset() *Config {
	cfg := withGround("drop")
	cfg.Steps = 240
	cfg.Bodies = append(cfg.Bodies,
		BodyConfig{Name: "ball", Shapes: []string{"ball"}, Position: mgl64.Vec3{0, 5, 0}, Bounce: 0.5, CanSleep: true, MaxContacts: 4},
		BodyConfig{Name: "crate", Shapes: []string{"box"}, Position: mgl64.Vec3{2, 3, 0}, Rotation: mgl64.Vec3{0.3, 0, 0.2}, CanSleep: true},
	)
	return cfg
}

func stackPreset() *Config {
	cfg := withGround("stack")
	for i := 0; i < 5; i++ {
		cfg.Bodies = append(cfg.Bodies, BodyConfig{
			Name:     "box" + string(rune('a'+i)),
			Shapes:   []string{"box"},
			Position: mgl64.Vec3{0, 0.5 + float64(i)*1.01, 0},
			Friction: ptr(0.8),
			CanSleep: true,
		})
	}
	return cfg
}

func pendulumPreset() *Config {
	cfg := DefaultConfig()
	cfg.Name = "pendulum"
	cfg.Space.LinearDamp = 0
	cfg.Space.AngularDamp = 0
	cfg.Shapes = []ShapeConfig{{Name: "bob", Type: "sphere", Radius: 0.25}}
	cfg.Bodies = []BodyConfig{
		{Name: "bob", Shapes: []string{"bob"}, Position: mgl64.Vec3{2, 0, 0}},
	}
	cfg.Joints = []JointConfig{
		{Name: "rod", Type: "pin", A: "bob", AnchorA: mgl64.Vec3{-2, 0, 0}},
	}
	return cfg
}

func windPreset() *Config {
	cfg := withGround("wind")
	cfg.Shapes = append(cfg.Shapes, ShapeConfig{Name: "zone", Type: "box", HalfExtents: mgl64.Vec3{4, 4, 4}})
	cfg.Bodies = append(cfg.Bodies,
		BodyConfig{Name: "ball", Shapes: []string{"ball"}, Position: mgl64.Vec3{-3, 2, 0}},
		BodyConfig{Name: "crate", Shapes: []string{"box"}, Position: mgl64.Vec3{-3, 0.5, 2}},
	)
	cfg.Areas = []AreaConfig{{
		Name:          "gust",
		Override:      "combine",
		Shapes:        []string{"zone"},
		Position:      mgl64.Vec3{0, 4, 0},
		Gravity:       4,
		GravityVector: mgl64.Vec3{1, 0, 0},
		Monitor:       true,
	}}
	return cfg
}

func hingePreset() *Config {
	cfg := DefaultConfig()
	cfg.Name = "hinge"
	cfg.Shapes = []ShapeConfig{{Name: "door", Type: "box", HalfExtents: mgl64.Vec3{0.5, 1, 0.05}}}
	cfg.Bodies = []BodyConfig{
		{Name: "door", Shapes: []string{"door"}, Position: mgl64.Vec3{0.5, 1, 0}},
	}
	cfg.Joints = []JointConfig{{
		Name:    "hinge",
		Type:    "hinge",
		A:       "door",
		AnchorA: mgl64.Vec3{-0.5, 0, 0},
		AnchorB: mgl64.Vec3{0, 1, 0},
		AxisA:   mgl64.Vec3{0, 1, 0},
		AxisB:   mgl64.Vec3{0, 1, 0},
		Limit:   []float64{-1.5, 1.5},
		Motor:   &MotorConfig{Velocity: 1, MaxImpulse: 1},
	}}
	return cfg
}

func sleepersPreset() *Config {
	cfg := withGround("sleepers")
	cfg.Steps = 300
	for i := 0; i < 4; i++ {
		cfg.Bodies = append(cfg.Bodies, BodyConfig{
			Name:     "box" + string(rune('a'+i)),
			Shapes:   []string{"box"},
			Position: mgl64.Vec3{float64(i) * 2, 0.5, 0},
			CanSleep: true,
			Sleeping: i%2 == 1,
		})
	}
	return cfg
}
