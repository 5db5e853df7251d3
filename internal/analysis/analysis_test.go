package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func sine(freq, dt float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2*math.Pi*freq*float64(i)*dt) + 3
	}
	return out
}

func TestFFTImpulse(t *testing.T) {
	out := FFT([]float64{1, 0, 0, 0})
	for i, c := range out {
		if c != 1 {
			t.Errorf("bin %d: expected 1, got %v", i, c)
		}
	}
}

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		freq float64
		n    int
	}{
		{2, 1024},
		{0.5, 1000},
		{5, 700},
	}
	for _, tt := range tests {
		dt := 0.01
		f, err := DominantFrequency(sine(tt.freq, dt, tt.n), dt)
		if err != nil {
			t.Fatal(err)
		}
		res := 1 / (float64(tt.n) * dt)
		if math.Abs(f-tt.freq) > res {
			t.Errorf("expected %.3f hz, got %.3f", tt.freq, f)
		}
	}

	if _, err := DominantFrequency([]float64{1, 2}, 0.01); !errors.Is(err, ErrShortSeries) {
		t.Errorf("expected ErrShortSeries, got %v", err)
	}
}

func TestCrossings(t *testing.T) {
	c := Crossings([]float64{0, 2, 0, 2}, 1)
	if len(c) != 2 || c[0] != 0.5 || c[1] != 2.5 {
		t.Errorf("unexpected crossings %v", c)
	}
}

func TestMeanPeriod(t *testing.T) {
	p, err := MeanPeriod(sine(2, 0.01, 500), 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p-0.5) > 0.01 {
		t.Errorf("expected period 0.5, got %f", p)
	}
	if _, err := MeanPeriod([]float64{1, 1, 1}, 0.01); err == nil {
		t.Error("flat series has no period")
	}
}

func TestPortraitASCII(t *testing.T) {
	n := 200
	xs, ys := make([]float64, n), make([]float64, n)
	for i := range xs {
		a := 2 * math.Pi * float64(i) / float64(n)
		xs[i], ys[i] = math.Cos(a), math.Sin(a)
	}
	out := NewPortrait(xs, ys[:150]).ASCII(40, 12)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 12 {
		t.Errorf("expected 12 rows, got %d", len(lines))
	}
	if !strings.Contains(out, "•") || !strings.Contains(out, "│") {
		t.Error("expected points and an axis")
	}
	if (*Portrait)(nil).ASCII(10, 10) != "" {
		t.Error("nil portrait should render empty")
	}
}
