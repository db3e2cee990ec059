package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"kiosk-go/internal/kiosk"
)

// Codec encodes frames into a clip file and decodes the first frame back.
type Codec interface {
	Encode(dst string, frames []kiosk.Frame, format kiosk.ClipFormat) error
	FirstFrame(src string) (frame kiosk.Frame, ok bool, err error)
}

// FileSystemClipStore keeps clips as files under a root directory:
//
//	<root>/
//	  USERNAME.mp4
//	  USERNAME/YEAR/MONTH/<event clip>.mp4
//	  ATTENDANCE REPORT/...   (ledger files, not managed here)
type FileSystemClipStore struct {
	root  string
	codec Codec
}

// NewFileSystemClipStore creates the root directory if needed.
func NewFileSystemClipStore(root string, codec Codec) (*FileSystemClipStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &FileSystemClipStore{root: root, codec: codec}, nil
}

// WriteClip encodes into a temp file beside the destination, then renames it
// into place so a failed encode never leaves a partial clip.
func (s *FileSystemClipStore) WriteClip(relPath string, frames []kiosk.Frame, format kiosk.ClipFormat) error {
	destPath := s.Path(relPath)
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create clip directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*.mp4")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := s.codec.Encode(tmpPath, frames, format); err != nil {
		return fmt.Errorf("encoding clip: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// ReadFirstFrame decodes the first frame of the clip at relPath.
func (s *FileSystemClipStore) ReadFirstFrame(relPath string) (kiosk.Frame, bool, error) {
	path := s.Path(relPath)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return kiosk.Frame{}, false, fmt.Errorf("clip not found: %s", relPath)
		}
		return kiosk.Frame{}, false, fmt.Errorf("stat clip: %w", err)
	}
	return s.codec.FirstFrame(path)
}

// List returns the regular, non-temporary files directly inside relDir.
func (s *FileSystemClipStore) List(relDir string) ([]string, error) {
	entries, err := os.ReadDir(s.Path(relDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if filepath.Ext(entry.Name()) == "" || entry.Name()[0] == '.' {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes the clip at relPath.
func (s *FileSystemClipStore) Remove(relPath string) error {
	if err := os.Remove(s.Path(relPath)); err != nil {
		return fmt.Errorf("removing clip: %w", err)
	}
	return nil
}

// Path joins relPath onto the store root.
func (s *FileSystemClipStore) Path(relPath string) string {
	return filepath.Join(s.root, relPath)
}

// ValidateSetup verifies that the archive root is an accessible directory.
func (s *FileSystemClipStore) ValidateSetup() error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("archive root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("archive root is not a directory: %s", s.root)
	}
	return nil
}

// Compile-time check that FileSystemClipStore implements kiosk.ClipStore interface
var _ kiosk.ClipStore = (*FileSystemClipStore)(nil)
