package analysis

import (
	"strings"
)

type Point struct{ X, Y float64 }

// Portrait pairs two equally sampled series.
type Portrait struct {
	Points []Point
}

func NewPortrait(xs, ys []float64) *Portrait {
	n := min(len(xs), len(ys))
	p := &Portrait{Points: make([]Point, n)}
	for i := 0; i < n; i++ {
		p.Points[i] = Point{xs[i], ys[i]}
	}
	return p
}

// Crossings returns the interpolated sample positions where data rises
// through threshold.
func Crossings(data []float64, threshold float64) []float64 {
	var out []float64
	for i := 1; i < len(data); i++ {
		prev, cur := data[i-1], data[i]
		if prev < threshold && cur >= threshold {
			out = append(out, float64(i-1)+(threshold-prev)/(cur-prev))
		}
	}
	return out
}

// MeanPeriod is the average time between upward crossings of the series
// mean. It needs at least two crossings.
func MeanPeriod(data []float64, dt float64) (float64, error) {
	if len(data) == 0 {
		return 0, ErrShortSeries
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	c := Crossings(data, mean)
	if len(c) < 2 {
		return 0, ErrShortSeries
	}
	return (c[len(c)-1] - c[0]) / float64(len(c)-1) * dt, nil
}

// ASCII plots the portrait on a width x height grid with axes where zero is
// in view.
func (p *Portrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	for _, pt := range p.Points {
		r, c := row(pt.Y), col(pt.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			canvas[r][c] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := 0; r < height; r++ {
			if canvas[r][c] == ' ' {
				canvas[r][c] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := 0; c < width; c++ {
			if canvas[r][c] == ' ' {
				canvas[r][c] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, r := range canvas {
		sb.WriteString(string(r))
		sb.WriteRune('\n')
	}
	return sb.String()
}
