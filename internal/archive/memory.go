package archive

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"kiosk-go/internal/kiosk"
)

// MemoryClipStore keeps clips as frame slices in memory, making it useful for
// testing. This implementation is safe for concurrent use.
type MemoryClipStore struct {
	clips  map[string][]kiosk.Frame // cleaned relative path -> frames
	writes map[string]int           // cleaned relative path -> number of writes
	mu     sync.RWMutex
}

// NewMemoryClipStore creates an empty store.
func NewMemoryClipStore() *MemoryClipStore {
	return &MemoryClipStore{
		clips:  make(map[string][]kiosk.Frame),
		writes: make(map[string]int),
	}
}

// WriteClip stores a copy of frames, replacing any existing clip.
func (m *MemoryClipStore) WriteClip(relPath string, frames []kiosk.Frame, format kiosk.ClipFormat) error {
	if format.FPS <= 0 || format.Width <= 0 || format.Height <= 0 {
		return fmt.Errorf("invalid clip format: %+v", format)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := filepath.Clean(relPath)
	m.clips[key] = append([]kiosk.Frame(nil), frames...)
	m.writes[key]++
	return nil
}

// ReadFirstFrame returns the first stored frame of a clip.
func (m *MemoryClipStore) ReadFirstFrame(relPath string) (kiosk.Frame, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	frames, ok := m.clips[filepath.Clean(relPath)]
	if !ok {
		return kiosk.Frame{}, false, fmt.Errorf("clip not found: %s", relPath)
	}
	if len(frames) == 0 {
		return kiosk.Frame{}, false, nil
	}
	return frames[0], true, nil
}

// List returns the names of clips stored directly in relDir.
func (m *MemoryClipStore) List(relDir string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dir := filepath.Clean(relDir)
	var names []string
	for key := range m.clips {
		if filepath.Dir(key) == dir {
			names = append(names, filepath.Base(key))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes a clip.
func (m *MemoryClipStore) Remove(relPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := filepath.Clean(relPath)
	if _, ok := m.clips[key]; !ok {
		return fmt.Errorf("clip not found: %s", relPath)
	}
	delete(m.clips, key)
	return nil
}

// Path returns relPath unchanged.
func (m *MemoryClipStore) Path(relPath string) string {
	return filepath.Clean(relPath)
}

// Frames returns the frames of a stored clip.
func (m *MemoryClipStore) Frames(relPath string) ([]kiosk.Frame, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	frames, ok := m.clips[filepath.Clean(relPath)]
	return frames, ok
}

// Writes reports how many times relPath has been written.
func (m *MemoryClipStore) Writes(relPath string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes[filepath.Clean(relPath)]
}

// Compile-time check that MemoryClipStore implements kiosk.ClipStore interface
var _ kiosk.ClipStore = (*MemoryClipStore)(nil)
