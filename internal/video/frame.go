package video

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Normalize returns img as an NRGBA image of exactly width x height,
// resizing when the geometry differs.
func Normalize(img image.Image, width, height int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == width*4 {
			return n
		}
		return imaging.Clone(img)
	}
	return imaging.Resize(img, width, height, imaging.Linear)
}

// FromRGBA wraps a raw RGBA buffer of width x height as an image.
func FromRGBA(buf []byte, width, height int) (*image.NRGBA, error) {
	if len(buf) != width*height*4 {
		return nil, fmt.Errorf("frame buffer is %d bytes, want %d", len(buf), width*height*4)
	}
	return &image.NRGBA{
		Pix:    buf,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}, nil
}
