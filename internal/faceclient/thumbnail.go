package faceclient

import (
	"context"
	"fmt"
	"image/color"

	"github.com/disintegration/imaging"

	"kiosk-go/internal/kiosk"
)

// ThumbnailSize is the side of the grayscale thumbnail used as a descriptor.
const ThumbnailSize = 8

// ThumbnailEngine is an offline stand-in for a face service. Every frame with
// an image holds exactly one "face" spanning the whole frame, and its
// descriptor is the frame shrunk to an 8x8 grayscale thumbnail. It is only
// good enough to exercise the kiosk without a model.
type ThumbnailEngine struct {
	EuclideanComparator
}

// NewThumbnailEngine creates a thumbnail engine with the given tolerance on
// the 0..1 scaled thumbnail distance.
func NewThumbnailEngine(tolerance float64) *ThumbnailEngine {
	return &ThumbnailEngine{EuclideanComparator{Tolerance: tolerance}}
}

func (e *ThumbnailEngine) DetectFaces(_ context.Context, frame kiosk.Frame) ([]kiosk.BoundingBox, error) {
	if frame.Image == nil {
		return nil, nil
	}
	b := frame.Image.Bounds()
	return []kiosk.BoundingBox{{Top: b.Min.Y, Right: b.Max.X, Bottom: b.Max.Y, Left: b.Min.X}}, nil
}

func (e *ThumbnailEngine) EncodeFaces(_ context.Context, frame kiosk.Frame) ([]kiosk.Encoding, error) {
	if frame.Image == nil {
		return nil, nil
	}
	if frame.Image.Bounds().Empty() {
		return nil, fmt.Errorf("frame %d is empty", frame.Seq)
	}

	thumb := imaging.Grayscale(imaging.Resize(frame.Image, ThumbnailSize, ThumbnailSize, imaging.Box))
	enc := make(kiosk.Encoding, 0, ThumbnailSize*ThumbnailSize)
	for y := 0; y < ThumbnailSize; y++ {
		for x := 0; x < ThumbnailSize; x++ {
			g := color.GrayModel.Convert(thumb.At(x, y)).(color.Gray)
			enc = append(enc, float64(g.Y)/255/ThumbnailSize)
		}
	}
	return []kiosk.Encoding{enc}, nil
}

// Compile-time check that ThumbnailEngine implements kiosk.FaceEngine interface
var _ kiosk.FaceEngine = (*ThumbnailEngine)(nil)
