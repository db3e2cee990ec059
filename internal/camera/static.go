package camera

import (
	"image"
	"image/color"

	"kiosk-go/internal/kiosk"
)

// StaticCamera yields the same blank frame on every poll. It lets the kiosk
// run without a capture device.
type StaticCamera struct {
	img *image.NRGBA
	seq uint64
}

// NewStaticCamera creates a camera producing mid-grey frames of width x height.
func NewStaticCamera(width, height int) *StaticCamera {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	grey := color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, grey)
		}
	}
	return &StaticCamera{img: img}
}

func (c *StaticCamera) ReadFrame() (kiosk.Frame, bool, error) {
	c.seq++
	return kiosk.Frame{Seq: c.seq, Image: c.img}, true, nil
}

func (c *StaticCamera) Close() error { return nil }

// Compile-time check that StaticCamera implements kiosk.Camera interface
var _ kiosk.Camera = (*StaticCamera)(nil)
