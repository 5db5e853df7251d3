package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
)

const (
	dotSize  = 4
	gifDelay = 2
)

// Recorder collects canvas frames for an animated GIF.
type Recorder struct {
	frames []*image.Paletted
}

// Capture rasterizes c with one dotSize square per lit sub-pixel.
func (r *Recorder) Capture(c *Canvas) {
	img := image.NewPaletted(
		image.Rect(0, 0, c.Width*2*dotSize, c.Height*4*dotSize),
		color.Palette{color.Black, color.White},
	)
	c.Each(func(x, y int) {
		for dy := 0; dy < dotSize; dy++ {
			for dx := 0; dx < dotSize; dx++ {
				img.SetColorIndex(x*dotSize+dx, y*dotSize+dy, 1)
			}
		}
	})
	r.frames = append(r.frames, img)
}

func (r *Recorder) Len() int { return len(r.frames) }

// Save encodes the captured frames to path.
func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return fmt.Errorf("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, f := range r.frames {
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, gifDelay)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
