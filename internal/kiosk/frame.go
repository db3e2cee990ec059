package kiosk

import (
	"context"
	"image"
)

// Frame is a single camera sample. Seq orders frames within a capture session.
// A Frame is never modified once it has been captured.
type Frame struct {
	Seq   uint64
	Image image.Image
}

// BoundingBox locates a detected face inside a frame.
type BoundingBox struct {
	Top, Right, Bottom, Left int
}

// Encoding is a face descriptor produced by a FaceEncoder.
type Encoding []float64

// Camera delivers frames from the webcam.
// ReadFrame returns ok=false when no frame is available on this poll.
type Camera interface {
	ReadFrame() (frame Frame, ok bool, err error)
	Close() error
}

// FaceDetector locates faces in a frame.
type FaceDetector interface {
	DetectFaces(ctx context.Context, frame Frame) ([]BoundingBox, error)
}

// FaceEncoder produces one encoding per face found in a frame.
type FaceEncoder interface {
	EncodeFaces(ctx context.Context, frame Frame) ([]Encoding, error)
}

// FaceComparator reports, for each known encoding, whether candidate is the same face.
type FaceComparator interface {
	Compare(known []Encoding, candidate Encoding) []bool
}

// FaceEngine bundles the face primitives the kiosk depends on.
type FaceEngine interface {
	FaceDetector
	FaceEncoder
	FaceComparator
}

// HasFace reports whether the detector finds at least one face in frame.
// Detector errors count as no face.
func HasFace(ctx context.Context, d FaceDetector, frame Frame, logger Logger) bool {
	boxes, err := d.DetectFaces(ctx, frame)
	if err != nil {
		logger.Warn("face detection failed", "seq", frame.Seq, "error", err)
		return false
	}
	return len(boxes) > 0
}
