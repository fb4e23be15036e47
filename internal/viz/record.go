package viz

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"
)

// dotSize is the edge length in image pixels of one braille dot.
const dotSize = 3

var recordPalette = color.Palette{color.Black, color.White}

// gifRecorder rasterizes canvas frames for an animated GIF.
type gifRecorder struct {
	frames []*image.Paletted
}

func newGIFRecorder() *gifRecorder {
	return &gifRecorder{}
}

func (r *gifRecorder) len() int { return len(r.frames) }

func (r *gifRecorder) capture(c *Canvas) {
	r.frames = append(r.frames, rasterize(c))
}

// rasterize paints every lit sub-pixel as a dotSize square.
func rasterize(c *Canvas) *image.Paletted {
	w, h := c.Width*2, c.Height*4
	img := image.NewPaletted(image.Rect(0, 0, w*dotSize, h*dotSize), recordPalette)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotSize; py++ {
				for px := 0; px < dotSize; px++ {
					img.SetColorIndex(x*dotSize+px, y*dotSize+py, 1)
				}
			}
		}
	}
	return img
}

func (r *gifRecorder) save(path string) error {
	if len(r.frames) == 0 {
		return errors.New("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}
