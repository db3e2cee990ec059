package faceclient

import "kiosk-go/internal/kiosk"

// Engine joins a detector/encoder with a comparator into a kiosk.FaceEngine.
type Engine struct {
	kiosk.FaceDetector
	kiosk.FaceEncoder
	kiosk.FaceComparator
}

// NewHTTPEngine returns an engine backed by the face service at baseURL.
func NewHTTPEngine(client *Client, tolerance float64) *Engine {
	return &Engine{
		FaceDetector:   client,
		FaceEncoder:    client,
		FaceComparator: EuclideanComparator{Tolerance: tolerance},
	}
}

// Compile-time check that Engine implements kiosk.FaceEngine interface
var _ kiosk.FaceEngine = (*Engine)(nil)
