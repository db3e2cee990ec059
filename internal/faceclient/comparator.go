package faceclient

import (
	"math"

	"kiosk-go/internal/kiosk"
)

// DefaultTolerance is the usual distance threshold for 128-d face descriptors.
const DefaultTolerance = 0.6

// EuclideanComparator matches encodings whose Euclidean distance is within Tolerance.
type EuclideanComparator struct {
	Tolerance float64
}

// Compare returns one result per known encoding, in order.
// Encodings of different lengths never match.
func (c EuclideanComparator) Compare(known []kiosk.Encoding, candidate kiosk.Encoding) []bool {
	tolerance := c.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	matches := make([]bool, len(known))
	for i, k := range known {
		d, ok := Distance(k, candidate)
		matches[i] = ok && d <= tolerance
	}
	return matches
}

// Distance returns the Euclidean distance between a and b.
// ok is false when the lengths differ or either is empty.
func Distance(a, b kiosk.Encoding) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), true
}

// Compile-time check that EuclideanComparator implements kiosk.FaceComparator interface
var _ kiosk.FaceComparator = EuclideanComparator{}
