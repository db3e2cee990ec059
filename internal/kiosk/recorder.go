package kiosk

import "time"

// Recorder receives kiosk measurements.
type Recorder interface {
	FrameCaptured(mode Mode)
	LoginRecorded(dir Direction)
	AccessDenied()
	EnrollmentFinished(result string)
	RecognitionObserved(d time.Duration)
}

// NopRecorder discards all measurements.
type NopRecorder struct{}

func (NopRecorder) FrameCaptured(Mode)                {}
func (NopRecorder) LoginRecorded(Direction)           {}
func (NopRecorder) AccessDenied()                     {}
func (NopRecorder) EnrollmentFinished(string)         {}
func (NopRecorder) RecognitionObserved(time.Duration) {}

// Replicator copies persisted artifacts off the kiosk.
type Replicator interface {
	// Enqueue schedules the file at path for replication. kind is "enrollment",
	// "event" or "ledger".
	Enqueue(kind, path string) error
}

// NopReplicator replicates nothing.
type NopReplicator struct{}

func (NopReplicator) Enqueue(string, string) error { return nil }
