// Package export renders canvases and stored trajectories as SVG.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/rigidsim/internal/storage"
	"github.com/san-kum/rigidsim/internal/viz"
)

var ErrBadPlane = errors.New("plane must name two of x, y, z")

var palette = []string{"#00ff88", "#00ccff", "#ff00ff", "#ffcc00", "#ff4444", "#88ff88"}

// CanvasToSVG draws every lit sub-pixel of canvas as a dot scale units wide.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	r := scale * 0.4
	canvas.Each(func(x, y int) {
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
			float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
	})

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// ParsePlane maps a name such as "xy" or "zy" to position component indices.
func ParsePlane(plane string) (int, int, error) {
	if len(plane) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadPlane, plane)
	}
	idx := func(c byte) int { return strings.IndexByte("xyz", c) }
	a, b := idx(plane[0]), idx(plane[1])
	if a < 0 || b < 0 || a == b {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadPlane, plane)
	}
	return a, b, nil
}

// WriteTrajectories draws the path of each named body projected onto plane.
// No names means every body. Bodies that never move are drawn as a dot.
func WriteTrajectories(w io.Writer, traj *storage.Trajectory, bodies []string, plane string, width, height int) error {
	ax, ay, err := ParsePlane(plane)
	if err != nil {
		return err
	}
	if len(bodies) == 0 {
		for _, t := range traj.Tracks {
			bodies = append(bodies, t.Body)
		}
	}
	tracks := make([]*storage.Track, 0, len(bodies))
	for _, name := range bodies {
		t, err := traj.Track(name)
		if err != nil {
			return err
		}
		tracks = append(tracks, t)
	}

	first := true
	var minX, maxX, minY, maxY float64
	for _, t := range tracks {
		for _, p := range t.Positions {
			x, y := p[ax], p[ay]
			if first {
				minX, maxX, minY, maxY = x, x, y, y
				first = false
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
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
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	px := func(x float64) float64 { return (x - minX) / rangeX * float64(width) }
	py := func(y float64) float64 { return float64(height) - (y-minY)/rangeY*float64(height) }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i, t := range tracks {
		color := palette[i%len(palette)]
		if len(t.Positions) == 0 {
			continue
		}
		if stationary(t, ax, ay) {
			p := t.Positions[0]
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"2\" fill=\"%s\"><title>%s</title></circle>\n",
				px(p[ax]), py(p[ay]), color, t.Body)
			continue
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, color)
		for j, p := range t.Positions {
			cmd := " L"
			if j == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&sb, "%s%.1f,%.1f", cmd, px(p[ax]), py(p[ay]))
		}
		fmt.Fprintf(&sb, "\"><title>%s</title></path>\n", t.Body)
	}
	sb.WriteString("</svg>")

	_, err = io.WriteString(w, sb.String())
	return err
}

func stationary(t *storage.Track, ax, ay int) bool {
	p0 := t.Positions[0]
	for _, p := range t.Positions[1:] {
		if p[ax] != p0[ax] || p[ay] != p0[ay] {
			return false
		}
	}
	return true
}
