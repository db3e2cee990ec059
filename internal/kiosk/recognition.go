package kiosk

import (
	"context"
	"fmt"
)

// EnrollmentRecord points at the reference clip of a registered user.
type EnrollmentRecord struct {
	Username  string
	VideoPath string
}

// GalleryEntry is a username paired with the face encoding taken from its
// enrollment clip. Galleries are rebuilt on every login attempt.
type GalleryEntry struct {
	Username string
	Encoding Encoding
}

// ClipReader reads the first frame of an archived clip.
// ok is false when the clip holds no decodable frame.
type ClipReader interface {
	ReadFirstFrame(relPath string) (frame Frame, ok bool, err error)
}

// Recognizer turns captured frames into an identity decision.
type Recognizer struct {
	faces  FaceEngine
	clips  ClipReader
	logger Logger
}

// NewRecognizer creates a Recognizer.
func NewRecognizer(faces FaceEngine, clips ClipReader, logger Logger) *Recognizer {
	return &Recognizer{faces: faces, clips: clips, logger: logger}
}

// BuildGallery encodes the first frame of each enrollment clip.
// Records whose first frame is unreadable or faceless are left out.
func (r *Recognizer) BuildGallery(ctx context.Context, records []EnrollmentRecord) ([]GalleryEntry, error) {
	gallery := make([]GalleryEntry, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("building gallery: %w", err)
		}

		frame, ok, err := r.clips.ReadFirstFrame(rec.VideoPath)
		if err != nil {
			r.logger.Warn("enrollment clip unreadable", "username", rec.Username, "path", rec.VideoPath, "error", err)
			continue
		}
		if !ok {
			continue
		}

		encodings, err := r.faces.EncodeFaces(ctx, frame)
		if err != nil {
			r.logger.Warn("encoding enrollment frame failed", "username", rec.Username, "error", err)
			continue
		}
		if len(encodings) == 0 {
			r.logger.Debug("enrollment clip has no face in first frame", "username", rec.Username)
			continue
		}

		gallery = append(gallery, GalleryEntry{Username: rec.Username, Encoding: encodings[0]})
	}

	r.logger.Debug("gallery built", "records", len(records), "entries", len(gallery))
	return gallery, nil
}

// Identify scans frames in order and returns the username of the first gallery
// entry matching the first encoding of the first frame that matches anything.
// It returns ErrUnknownIdentity when no frame matches.
func (r *Recognizer) Identify(ctx context.Context, frames []Frame, gallery []GalleryEntry) (string, error) {
	if len(frames) == 0 {
		return "", ErrNoFrameCaptured
	}
	if len(gallery) == 0 {
		return "", ErrUnknownIdentity
	}

	known := make([]Encoding, len(gallery))
	for i, entry := range gallery {
		known[i] = entry.Encoding
	}

	for _, frame := range frames {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("identifying: %w", err)
		}

		encodings, err := r.faces.EncodeFaces(ctx, frame)
		if err != nil {
			r.logger.Warn("encoding captured frame failed", "seq", frame.Seq, "error", err)
			continue
		}
		if len(encodings) == 0 {
			continue
		}

		for i, match := range r.faces.Compare(known, encodings[0]) {
			if match && i < len(gallery) {
				r.logger.Info("face matched", "username", gallery[i].Username, "seq", frame.Seq)
				return gallery[i].Username, nil
			}
		}
	}

	return "", ErrUnknownIdentity
}
