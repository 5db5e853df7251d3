package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/shape"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Steps <= 0 {
		t.Error("steps should be positive")
	}
	if cfg.Space.Gravity != DefaultGravity {
		t.Errorf("expected gravity %v, got %v", DefaultGravity, cfg.Space.Gravity)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			if cfg == nil {
				t.Fatal("expected preset, got nil")
			}
			if cfg.Name != name {
				t.Errorf("expected name %s, got %s", name, cfg.Name)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("validate: %v", err)
			}
		})
	}
}

func TestGetPreset_Fresh(t *testing.T) {
	a := GetPreset("stack")
	a.Bodies[1].Position[1] = 100
	b := GetPreset("stack")
	if b.Bodies[1].Position[1] == 100 {
		t.Error("presets should not share state")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("presets not sorted: %v", names)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hinge.yaml")
	orig := GetPreset("hinge")

	if err := Save(path, orig); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got.Name != orig.Name || got.Steps != orig.Steps {
		t.Errorf("header mismatch: %+v", got)
	}
	if len(got.Joints) != 1 || got.Joints[0].Motor == nil {
		t.Fatalf("joint lost: %+v", got.Joints)
	}
	if got.Joints[0].AxisA != (mgl64.Vec3{0, 1, 0}) {
		t.Errorf("axis mismatch: %v", got.Joints[0].AxisA)
	}
	if got.Bodies[0].Position != orig.Bodies[0].Position {
		t.Errorf("position mismatch: %v", got.Bodies[0].Position)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.yaml")
	src := "name: small\nshapes:\n  - {name: s, type: sphere, radius: 1}\nbodies:\n  - {name: a, shapes: [s]}\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dt != DefaultDt || cfg.Iterations != DefaultIterations {
		t.Errorf("defaults not applied: dt=%v iterations=%d", cfg.Dt, cfg.Iterations)
	}
	if cfg.Space.GravityVector != (mgl64.Vec3{0, -1, 0}) {
		t.Errorf("gravity vector: %v", cfg.Space.GravityVector)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"zero steps", func(c *Config) { c.Steps = 0 }},
		{"zero iterations", func(c *Config) { c.Iterations = 0 }},
		{"space param", func(c *Config) { c.Space.Params = map[string]float64{"bogus": 1} }},
		{"shape type", func(c *Config) { c.Shapes[0].Type = "torus" }},
		{"duplicate shape", func(c *Config) { c.Shapes = append(c.Shapes, c.Shapes[0]) }},
		{"duplicate body", func(c *Config) { c.Bodies = append(c.Bodies, c.Bodies[0]) }},
		{"body mode", func(c *Config) { c.Bodies[1].Mode = "floating" }},
		{"axis lock", func(c *Config) { c.Bodies[1].AxisLock = "w" }},
		{"body shape", func(c *Config) { c.Bodies[1].Shapes = []string{"missing"} }},
		{"exception", func(c *Config) { c.Bodies[1].Exceptions = []string{"ghost"} }},
		{"joint type", func(c *Config) {
			c.Joints = []JointConfig{{Name: "j", Type: "weld", A: "ball"}}
		}},
		{"joint body", func(c *Config) {
			c.Joints = []JointConfig{{Name: "j", Type: "pin", A: "ball", B: "ghost"}}
		}},
		{"joint limit", func(c *Config) {
			c.Joints = []JointConfig{{Name: "j", Type: "hinge", A: "ball", Limit: []float64{1}}}
		}},
		{"area mode", func(c *Config) {
			c.Areas = []AreaConfig{{Name: "a", Override: "sometimes", Shapes: []string{"box"}}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetPreset("drop")
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestShapeData(t *testing.T) {
	tests := []struct {
		cfg  ShapeConfig
		want any
	}{
		{ShapeConfig{Type: "sphere", Radius: 2}, 2.0},
		{ShapeConfig{Type: "ray", Length: 3}, 3.0},
		{ShapeConfig{Type: "box", HalfExtents: mgl64.Vec3{1, 2, 3}}, mgl64.Vec3{1, 2, 3}},
		{ShapeConfig{Type: "plane", Normal: mgl64.Vec3{0, 1, 0}, D: 1}, geom.Plane{Normal: mgl64.Vec3{0, 1, 0}, D: 1}},
		{ShapeConfig{Type: "capsule", Radius: 0.5, Height: 2}, shape.CapsuleData{Radius: 0.5, Height: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.cfg.Type, func(t *testing.T) {
			got, err := tt.cfg.Data()
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	if _, err := (ShapeConfig{Type: "heightmap"}).Data(); !errors.Is(err, shape.ErrUnsupportedType) {
		t.Errorf("heightmap: expected ErrUnsupportedType, got %v", err)
	}
}

func TestBodyTransform(t *testing.T) {
	b := BodyConfig{Position: mgl64.Vec3{1, 2, 3}}
	if !b.Transform().ApproxEqual(geom.Translation(b.Position), 1e-12) {
		t.Error("unrotated body should be a pure translation")
	}

	b.Rotation = mgl64.Vec3{0, 0, 1.2}
	xf := b.Transform()
	if d := xf.Basis.Det(); d < 1-1e-9 || d > 1+1e-9 {
		t.Errorf("rotation determinant %v", d)
	}
	if xf.Origin != b.Position {
		t.Errorf("origin %v", xf.Origin)
	}
}
