package kiosk

import (
	"context"
	"time"
)

// Mode selects how a capture session terminates.
type Mode int

const (
	ModeEnroll Mode = iota
	ModeLogin
)

func (m Mode) String() string {
	switch m {
	case ModeEnroll:
		return "enroll"
	case ModeLogin:
		return "login"
	default:
		return "unknown"
	}
}

// DefaultEnrollDuration is how long an enrollment capture records.
const DefaultEnrollDuration = 30 * time.Second

// CaptureSession buffers frames for one enrollment or login attempt.
// It is not safe for concurrent use; the kiosk drives it from a single loop.
type CaptureSession struct {
	detector       FaceDetector
	clock          Clock
	logger         Logger
	enrollDuration time.Duration

	id        string
	mode      Mode
	startTime time.Time
	frames    []Frame
	active    bool
}

// NewCaptureSession creates an idle session.
func NewCaptureSession(detector FaceDetector, clock Clock, logger Logger, enrollDuration time.Duration) *CaptureSession {
	if enrollDuration <= 0 {
		enrollDuration = DefaultEnrollDuration
	}
	return &CaptureSession{
		detector:       detector,
		clock:          clock,
		logger:         logger,
		enrollDuration: enrollDuration,
	}
}

// Start resets the buffer and begins recording in mode.
func (s *CaptureSession) Start(id string, mode Mode) error {
	if s.active {
		return ErrSessionActive
	}
	s.id = id
	s.mode = mode
	s.startTime = s.clock.Now()
	s.frames = nil
	s.active = true
	s.logger.Info("capture started", "session", id, "mode", mode.String())
	return nil
}

// OnFrame appends frame while the session is active and ignores it otherwise.
// It reports whether the frame was appended.
func (s *CaptureSession) OnFrame(frame Frame) bool {
	if !s.active {
		return false
	}
	s.frames = append(s.frames, frame)
	return true
}

// ShouldTerminate reports whether the session has reached its end condition:
// the enroll duration for ModeEnroll, a detected face in the latest frame for ModeLogin.
func (s *CaptureSession) ShouldTerminate(ctx context.Context) bool {
	if !s.active {
		return false
	}
	switch s.mode {
	case ModeEnroll:
		return s.clock.Now().Sub(s.startTime) >= s.enrollDuration
	case ModeLogin:
		if len(s.frames) == 0 {
			return false
		}
		return HasFace(ctx, s.detector, s.frames[len(s.frames)-1], s.logger)
	}
	return false
}

// Stop marks the session inactive. The buffer stays readable until the next Start.
func (s *CaptureSession) Stop() {
	if !s.active {
		return
	}
	s.active = false
	s.logger.Info("capture stopped", "session", s.id, "mode", s.mode.String(), "frames", len(s.frames))
}

// Discard stops the session and drops its frames.
func (s *CaptureSession) Discard() {
	s.Stop()
	s.frames = nil
}

// Active reports whether frames are being recorded.
func (s *CaptureSession) Active() bool { return s.active }

// ID returns the identifier passed to the last Start.
func (s *CaptureSession) ID() string { return s.id }

// Mode returns the mode passed to the last Start.
func (s *CaptureSession) Mode() Mode { return s.mode }

// StartTime returns when the last Start happened.
func (s *CaptureSession) StartTime() time.Time { return s.startTime }

// Frames returns the buffered frames in capture order.
func (s *CaptureSession) Frames() []Frame { return s.frames }

// Latest returns the most recently buffered frame.
func (s *CaptureSession) Latest() (Frame, bool) {
	if len(s.frames) == 0 {
		return Frame{}, false
	}
	return s.frames[len(s.frames)-1], true
}
