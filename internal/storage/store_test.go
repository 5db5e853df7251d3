package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/scenario"
)

func testResult() *scenario.Result {
	body := func(name string, y, vy float64, sleeping bool) scenario.BodySample {
		return scenario.BodySample{
			Name:           name,
			Position:       mgl64.Vec3{1, y, 0},
			LinearVelocity: mgl64.Vec3{0, vy, 0},
			Sleeping:       sleeping,
		}
	}
	return &scenario.Result{
		Name: "drop",
		Frames: []scenario.Frame{
			{Step: 0, Time: 0, Bodies: []scenario.BodySample{body("ground", 0, 0, true), body("ball", 5, 0, false)}},
			{Step: 1, Time: 0.5, Bodies: []scenario.BodySample{body("ground", 0, 0, true), body("ball", 4, -3, false)}},
		},
		Events:   []scenario.Event{{Step: 1, Area: "gust", Object: "ball", Added: true}},
		Metrics:  map[string]float64{"kinetic_energy": 1.5},
		Steps:    1,
		Finished: true,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.GetPreset("drop")
	cfg.Seed = 42
	runID, err := st.Save(cfg, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scenario != "drop" {
		t.Errorf("expected scenario 'drop', got '%s'", meta.Scenario)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Metrics["kinetic_energy"] != 1.5 {
		t.Errorf("expected energy 1.5, got %f", meta.Metrics["kinetic_energy"])
	}
	if len(meta.Bodies) != 2 || meta.Bodies[1] != "ball" {
		t.Errorf("bodies: %v", meta.Bodies)
	}
	if len(meta.Events) != 1 || meta.Events[0].Object != "ball" {
		t.Errorf("events: %v", meta.Events)
	}

	traj, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(traj.Times) != 2 || traj.Times[1] != 0.5 {
		t.Errorf("times: %v", traj.Times)
	}
	ball, err := traj.Track("ball")
	if err != nil {
		t.Fatal(err)
	}
	if ball.Positions[1] != (mgl64.Vec3{1, 4, 0}) {
		t.Errorf("position: %v", ball.Positions[1])
	}
	ground, _ := traj.Track("ground")
	if !ground.Sleeping[0] || ball.Sleeping[0] {
		t.Error("sleeping flags not round-tripped")
	}

	back, err := st.LoadScenario(runID)
	if err != nil {
		t.Fatalf("load scenario failed: %v", err)
	}
	if back.Name != "drop" || len(back.Bodies) != len(cfg.Bodies) {
		t.Errorf("scenario: %+v", back)
	}
}

func TestSeries(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(config.GetPreset("drop"), testResult())
	if err != nil {
		t.Fatal(err)
	}
	traj, err := st.LoadStates(runID)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		column string
		want   []float64
	}{
		{"y", []float64{5, 4}},
		{"x", []float64{1, 1}},
		{"vy", []float64{0, -3}},
		{"speed", []float64{0, 3}},
		{"sleeping", []float64{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			got, err := traj.Series("ball", tt.column)
			if err != nil {
				t.Fatal(err)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("expected %v, got %v", tt.want, got)
					break
				}
			}
		})
	}

	if _, err := traj.Series("ghost", "y"); !errors.Is(err, ErrNoBody) {
		t.Errorf("expected ErrNoBody, got %v", err)
	}
	if _, err := traj.Series("ball", "q"); !errors.Is(err, ErrNoBody) {
		t.Errorf("expected ErrNoBody for column, got %v", err)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save(config.GetPreset("drop"), testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save(config.GetPreset("stack"), testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Scenario != "drop" {
		t.Errorf("expected oldest run first, got %s", runs[0].Scenario)
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(config.GetPreset("drop"), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "states.csv", "scenario.yaml"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(config.GetPreset("drop"), testResult())
	if err != nil {
		t.Fatal(err)
	}
	meta, _ := st.Load(runID)
	traj, _ := st.LoadStates(runID)

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, traj); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if data.Run.ID != runID || len(data.Bodies) != 2 {
		t.Errorf("unexpected export: %+v", data)
	}
	if data.Bodies[1].Positions[0] != [3]float64{1, 5, 0} {
		t.Errorf("position: %v", data.Bodies[1].Positions[0])
	}
}
