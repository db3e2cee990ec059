package testutil

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"

	"kiosk-go/internal/kiosk"
)

// FaceImage is a tiny image tagged with the identity of the face it shows.
// An empty Label means no face is visible.
type FaceImage struct {
	*image.Gray
	Label string
}

// Face returns a frame showing label's face.
func Face(seq uint64, label string) kiosk.Frame {
	return kiosk.Frame{Seq: seq, Image: &FaceImage{Gray: image.NewGray(image.Rect(0, 0, 4, 4)), Label: label}}
}

// Blank returns a frame with no face in it.
func Blank(seq uint64) kiosk.Frame {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	img.SetGray(0, 0, color.Gray{Y: 255})
	return kiosk.Frame{Seq: seq, Image: img}
}

// FakeFaceEngine recognizes FaceImage labels. Every distinct label encodes to
// a distinct one-element descriptor, and descriptors match only themselves.
type FakeFaceEngine struct {
	mu        sync.Mutex
	ids       map[string]float64
	Calls     int
	DetectErr error
}

func NewFakeFaceEngine() *FakeFaceEngine {
	return &FakeFaceEngine{ids: make(map[string]float64)}
}

func label(frame kiosk.Frame) string {
	if img, ok := frame.Image.(*FaceImage); ok {
		return img.Label
	}
	return ""
}

func (e *FakeFaceEngine) DetectFaces(_ context.Context, frame kiosk.Frame) ([]kiosk.BoundingBox, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Calls++
	if e.DetectErr != nil {
		return nil, e.DetectErr
	}
	if label(frame) == "" {
		return nil, nil
	}
	return []kiosk.BoundingBox{{Top: 0, Right: 4, Bottom: 4, Left: 0}}, nil
}

func (e *FakeFaceEngine) EncodeFaces(_ context.Context, frame kiosk.Frame) ([]kiosk.Encoding, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if frame.Image == nil {
		return nil, errors.New("frame has no image")
	}
	l := label(frame)
	if l == "" {
		return nil, nil
	}
	id, ok := e.ids[l]
	if !ok {
		id = float64(len(e.ids) + 1)
		e.ids[l] = id
	}
	return []kiosk.Encoding{{id}}, nil
}

func (e *FakeFaceEngine) Compare(known []kiosk.Encoding, candidate kiosk.Encoding) []bool {
	out := make([]bool, len(known))
	for i, k := range known {
		out[i] = len(k) == 1 && len(candidate) == 1 && k[0] == candidate[0]
	}
	return out
}

// Compile-time check that FakeFaceEngine implements kiosk.FaceEngine interface
var _ kiosk.FaceEngine = (*FakeFaceEngine)(nil)
