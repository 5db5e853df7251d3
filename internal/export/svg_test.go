package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/rigidsim/internal/storage"
	"github.com/san-kum/rigidsim/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 1) != "" {
		t.Error("nil canvas should give empty output")
	}
	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(3, 5)
	out := CanvasToSVG(c, 2)
	if n := strings.Count(out, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.Contains(out, `width="16" height="16"`) {
		t.Error("unexpected svg size")
	}
}

func TestParsePlane(t *testing.T) {
	tests := []struct {
		plane  string
		a, b   int
		wantOK bool
	}{
		{"xy", 0, 1, true},
		{"xz", 0, 2, true},
		{"zy", 2, 1, true},
		{"xx", 0, 0, false},
		{"xw", 0, 0, false},
		{"xyz", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.plane, func(t *testing.T) {
			a, b, err := ParsePlane(tt.plane)
			if !tt.wantOK {
				if !errors.Is(err, ErrBadPlane) {
					t.Errorf("expected ErrBadPlane, got %v", err)
				}
				return
			}
			if err != nil || a != tt.a || b != tt.b {
				t.Errorf("got %d %d %v", a, b, err)
			}
		})
	}
}

func testTrajectory() *storage.Trajectory {
	return &storage.Trajectory{
		Steps: []int{0, 1, 2},
		Times: []float64{0, 0.1, 0.2},
		Tracks: []storage.Track{
			{Body: "ground", Positions: []mgl64.Vec3{{}, {}, {}}},
			{Body: "ball", Positions: []mgl64.Vec3{{0, 5, 0}, {0.5, 4, 0}, {1, 2, 0}}},
		},
	}
}

func TestWriteTrajectories(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTrajectories(&buf, testTrajectory(), nil, "xy", 200, 100); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Count(out, "<path") != 1 {
		t.Error("expected one path for the moving body")
	}
	if !strings.Contains(out, "<title>ground</title></circle>") {
		t.Error("expected a dot for the resting body")
	}
	if !strings.HasSuffix(out, "</svg>") {
		t.Error("unterminated svg")
	}

	buf.Reset()
	if err := WriteTrajectories(&buf, testTrajectory(), []string{"ball"}, "xz", 200, 100); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "ground") {
		t.Error("unselected body was drawn")
	}

	if err := WriteTrajectories(&buf, testTrajectory(), []string{"ghost"}, "xy", 200, 100); !errors.Is(err, storage.ErrNoBody) {
		t.Errorf("expected ErrNoBody, got %v", err)
	}
}
