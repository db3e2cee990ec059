package staging

import (
	"io"

	"kiosk-go/internal/kiosk"
)

// stagingStore abstracts the storage mechanics for a staging area.
// Implementations handle content storage and artifact queue management.
// Concurrency is managed by the caller (stagingArea.mu), so stores
// do not need to be safe for concurrent use.
type stagingStore interface {
	// StoreContent reads from r, computes SHA-256, and stores content.
	// Deduplicates if checksum already exists. Returns checksum and size.
	StoreContent(r io.Reader) (checksum string, size int64, err error)

	// RemoveContent removes stored content by checksum (best-effort).
	RemoveContent(checksum string)

	// OpenContent returns a reader for stored content by checksum.
	OpenContent(checksum string) (io.ReadCloser, error)

	// ContentSize returns total bytes of all stored content.
	ContentSize() (int64, error)

	// Append adds an artifact to the end of the queue.
	Append(a kiosk.Artifact) error

	// Peek returns the first artifact in the queue without removing it.
	// ok is false if the queue is empty.
	Peek() (a kiosk.Artifact, ok bool, err error)

	// Pop removes the artifact with the given ID.
	// Returns the number of remaining artifacts referencing the same checksum
	// (so the caller can decide whether to call RemoveContent).
	Pop(id string) (checksumRefsRemaining int, err error)

	// Len returns the number of artifacts in the queue.
	Len() (int, error)
}
