package kiosk

import "errors"

var (
	// ErrNoFrameCaptured is returned when recognition or persistence finds an empty buffer.
	ErrNoFrameCaptured = errors.New("no video captured")

	// ErrNoFaceDetected is returned when no buffered frame contains a face.
	ErrNoFaceDetected = errors.New("no face detected")

	// ErrUnknownIdentity is returned when no captured frame matches the gallery.
	ErrUnknownIdentity = errors.New("unknown user")

	// ErrTimeDriftExceeded blocks a login when the local clock is too far off.
	ErrTimeDriftExceeded = errors.New("local time is not updated")

	// ErrTimeAuthorityUnavailable is reported by a TimeAuthority that cannot be reached.
	// TimeVerifier.Verify treats it as success.
	ErrTimeAuthorityUnavailable = errors.New("time authority unavailable")

	// ErrEmptyUsername rejects a registration before any capture starts.
	ErrEmptyUsername = errors.New("username is empty")

	// ErrInvalidUsername rejects names that cannot be used as a file name.
	ErrInvalidUsername = errors.New("username is not a valid file name")

	// ErrSessionActive is returned when a capture is requested while one is running.
	ErrSessionActive = errors.New("a capture session is already active")

	// ErrNoRegistration is returned when accepting without an open registration.
	ErrNoRegistration = errors.New("no registration in progress")
)
