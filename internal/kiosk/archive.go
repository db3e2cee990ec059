package kiosk

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ClipFormat fixes the geometry and rate of every persisted clip.
type ClipFormat struct {
	FPS      float64
	Width    int
	Height   int
	CodecTag string
}

// DefaultClipFormat is 20 fps, 640x480, mp4v.
var DefaultClipFormat = ClipFormat{FPS: 20, Width: 640, Height: 480, CodecTag: "mp4v"}

// ClipStore persists encoded clips under slash-free relative paths.
type ClipStore interface {
	ClipReader

	// WriteClip encodes frames into a clip at relPath, replacing any existing
	// file and creating parent directories.
	WriteClip(relPath string, frames []Frame, format ClipFormat) error

	// List returns the names of regular files in relDir, sorted.
	// A missing directory yields an empty list.
	List(relDir string) ([]string, error)

	// Remove deletes the clip at relPath.
	Remove(relPath string) error

	// Path returns where relPath lives, for logs and replication.
	Path(relPath string) string
}

// Archive stores enrollment clips and per-event login clips:
//
//	<root>/USERNAME.mp4
//	<root>/USERNAME/YEAR/MONTH/USERNAME, DD Mon YYYY, IN TIME, hh.mm AM.mp4
type Archive struct {
	store    ClipStore
	detector FaceDetector
	format   ClipFormat
	logger   Logger
}

// NewArchive creates an Archive writing clips in format.
func NewArchive(store ClipStore, detector FaceDetector, format ClipFormat, logger Logger) *Archive {
	return &Archive{store: store, detector: detector, format: format, logger: logger}
}

// Store exposes the underlying clip store.
func (a *Archive) Store() ClipStore { return a.store }

// SaveEnrollmentClip writes all frames as the user's enrollment clip, replacing
// any previous one. At least one frame must contain a face.
// It returns the location of the written clip.
func (a *Archive) SaveEnrollmentClip(ctx context.Context, username string, frames []Frame) (string, error) {
	if len(frames) == 0 {
		return "", ErrNoFrameCaptured
	}

	faceFound := false
	for _, frame := range frames {
		if HasFace(ctx, a.detector, frame, a.logger) {
			faceFound = true
			break
		}
	}
	if !faceFound {
		return "", ErrNoFaceDetected
	}

	rel := EnrollmentClipName(username)
	if err := a.store.WriteClip(rel, frames, a.format); err != nil {
		return "", fmt.Errorf("writing enrollment clip: %w", err)
	}

	a.logger.Info("enrollment clip saved", "username", username, "frames", len(frames))
	return a.store.Path(rel), nil
}

// Enrollments lists one record per enrollment clip at the archive root, ordered by name.
func (a *Archive) Enrollments() ([]EnrollmentRecord, error) {
	names, err := a.store.List("")
	if err != nil {
		return nil, fmt.Errorf("listing enrollment clips: %w", err)
	}
	sort.Strings(names)

	var records []EnrollmentRecord
	for _, name := range names {
		if !strings.HasSuffix(name, clipExt) {
			continue
		}
		records = append(records, EnrollmentRecord{
			Username:  strings.TrimSuffix(name, clipExt),
			VideoPath: name,
		})
	}
	return records, nil
}

// SaveEventClip writes the clip for a login mark. An OUT mark first removes
// the day's previous OUT clip; IN clips are never removed.
// It returns the location of the written clip.
func (a *Archive) SaveEventClip(username string, dir Direction, frames []Frame, ts time.Time) (string, error) {
	if len(frames) == 0 {
		return "", ErrNoFrameCaptured
	}

	relDir := filepath.Join(EventDir(username, ts)...)

	if dir == OutTime {
		prev, err := a.findEventClip(relDir, OutTime, ts)
		if err != nil {
			return "", err
		}
		if prev != "" {
			if err := a.store.Remove(filepath.Join(relDir, prev)); err != nil {
				return "", fmt.Errorf("removing previous out clip: %w", err)
			}
			a.logger.Info("previous out clip removed", "username", username, "clip", prev)
		}
	}

	rel := filepath.Join(relDir, FormatClipName(username, dir, ts))
	if err := a.store.WriteClip(rel, frames, a.format); err != nil {
		return "", fmt.Errorf("writing event clip: %w", err)
	}

	a.logger.Info("event clip saved", "username", username, "direction", dir.String(), "frames", len(frames))
	return a.store.Path(rel), nil
}

// HasEventClip reports whether a dir clip exists for username on the day of ts.
func (a *Archive) HasEventClip(username string, dir Direction, ts time.Time) (bool, error) {
	name, err := a.findEventClip(filepath.Join(EventDir(username, ts)...), dir, ts)
	if err != nil {
		return false, err
	}
	return name != "", nil
}

// findEventClip returns the first clip name in relDir recording dir on the day of ts.
func (a *Archive) findEventClip(relDir string, dir Direction, ts time.Time) (string, error) {
	names, err := a.store.List(relDir)
	if err != nil {
		return "", fmt.Errorf("listing event clips: %w", err)
	}
	for _, name := range names {
		clip, err := ParseClipName(name)
		if err != nil {
			continue
		}
		if clip.Matches(dir, ts) {
			return name, nil
		}
	}
	return "", nil
}
