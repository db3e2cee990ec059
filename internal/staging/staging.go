package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"kiosk-go/internal/kiosk"
)

// stagingArea implements kiosk.StagingArea using a pluggable stagingStore
// for the storage mechanics. All shared algorithm logic lives here.
type stagingArea struct {
	root    string
	store   stagingStore
	clock   kiosk.Clock
	ids     kiosk.IDGenerator
	maxSize int64
	mu      sync.Mutex
}

var _ kiosk.StagingArea = (*stagingArea)(nil)

// Stage snapshots root/relPath into the staging area.
func (s *stagingArea) Stage(kind, relPath string) error {
	fullPath := filepath.Join(s.root, relPath)

	// 1. Initial stat
	info1, err := os.Stat(fullPath)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if !info1.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", fullPath)
	}

	// 2. Open the source file
	f, err := os.Open(fullPath)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}

	// 3. Store content (hash + store), then close reader
	s.mu.Lock()
	checksum, size, err := s.store.StoreContent(f)
	s.mu.Unlock()
	f.Close()
	if err != nil {
		return fmt.Errorf("storing content: %w", err)
	}

	// 4. Re-stat to validate file hasn't changed
	info2, err := os.Stat(fullPath)
	if err != nil {
		s.removeContent(checksum)
		return fmt.Errorf("re-stat file: %w", err)
	}
	if err := validateUnchanged(info1, info2); err != nil {
		s.removeContent(checksum)
		return fmt.Errorf("file changed during staging: %w", err)
	}

	// 5. Check size limit and enqueue
	s.mu.Lock()
	defer s.mu.Unlock()

	contentSize, err := s.store.ContentSize()
	if err != nil {
		s.store.RemoveContent(checksum)
		return fmt.Errorf("getting current size: %w", err)
	}
	if contentSize > s.maxSize {
		s.store.RemoveContent(checksum)
		return fmt.Errorf("staging area full: would exceed max size of %d bytes", s.maxSize)
	}

	// 6. Add artifact to queue
	a := kiosk.Artifact{
		ID:       s.ids.New(),
		Kind:     kind,
		RelPath:  relPath,
		Checksum: checksum,
		Size:     size,
		StagedAt: s.clock.Now(),
	}
	if err := s.store.Append(a); err != nil {
		s.store.RemoveContent(checksum)
		return fmt.Errorf("adding to queue: %w", err)
	}

	return nil
}

func (s *stagingArea) removeContent(checksum string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.RemoveContent(checksum)
}

// ProcessNext gets the oldest staged artifact and calls fn with its content.
// If fn returns nil, the artifact is removed (committed).
// If fn returns an error, the artifact stays in queue for retry.
func (s *stagingArea) ProcessNext(fn kiosk.ReplicateFunc) (bool, error) {
	s.mu.Lock()
	a, ok, err := s.store.Peek()
	if err != nil || !ok {
		s.mu.Unlock()
		return false, err
	}

	reader, err := s.store.OpenContent(a.Checksum)
	s.mu.Unlock()
	if err != nil {
		return false, fmt.Errorf("content not found: %s", a.Checksum)
	}
	defer reader.Close()

	// Call the replicate function outside the lock
	if err := fn(reader, a); err != nil {
		return false, err
	}

	// Success - remove the artifact
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining, err := s.store.Pop(a.ID)
	if err != nil {
		return false, err
	}
	if remaining == 0 {
		s.store.RemoveContent(a.Checksum)
	}

	return true, nil
}

// Count returns the number of staged artifacts in the queue.
func (s *stagingArea) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}

// Size returns the total size of staged content in bytes.
func (s *stagingArea) Size() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ContentSize()
}
