package staging

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"kiosk-go/internal/kiosk"
)

// NewFileSystemStagingArea creates a filesystem-based staging area for files under root.
//
// Directory structure:
//
//	<staging_dir>/
//	  queue.json    (ordered list of staged artifacts)
//	  content/
//	    <checksum>  (staged content, named by SHA-256)
func NewFileSystemStagingArea(root, stagingDir string, maxSize int64, clock kiosk.Clock, ids kiosk.IDGenerator) (kiosk.StagingArea, error) {
	store, err := newFileSystemStore(stagingDir)
	if err != nil {
		return nil, err
	}
	return &stagingArea{
		root:    root,
		store:   store,
		clock:   clock,
		ids:     ids,
		maxSize: maxSize,
	}, nil
}

type fileSystemStore struct {
	queuePath  string
	contentDir string
}

func newFileSystemStore(stagingDir string) (*fileSystemStore, error) {
	contentDir := filepath.Join(stagingDir, "content")
	if err := os.MkdirAll(contentDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	return &fileSystemStore{
		queuePath:  filepath.Join(stagingDir, "queue.json"),
		contentDir: contentDir,
	}, nil
}

func (s *fileSystemStore) StoreContent(r io.Reader) (string, int64, error) {
	tmp, err := os.CreateTemp(s.contentDir, ".tmp-*")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, h), r)
	if err != nil {
		tmp.Close()
		return "", 0, fmt.Errorf("failed to write content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to close temp file: %w", err)
	}

	checksum := hex.EncodeToString(h.Sum(nil))
	dest := filepath.Join(s.contentDir, checksum)
	if _, err := os.Stat(dest); err == nil {
		return checksum, size, nil
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return "", 0, fmt.Errorf("failed to rename temp file: %w", err)
	}
	return checksum, size, nil
}

func (s *fileSystemStore) RemoveContent(checksum string) {
	os.Remove(filepath.Join(s.contentDir, checksum))
}

func (s *fileSystemStore) OpenContent(checksum string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.contentDir, checksum))
	if err != nil {
		return nil, fmt.Errorf("opening staged content: %w", err)
	}
	return f, nil
}

func (s *fileSystemStore) ContentSize() (int64, error) {
	entries, err := os.ReadDir(s.contentDir)
	if err != nil {
		return 0, fmt.Errorf("reading staging directory: %w", err)
	}
	var total int64
	for _, e := range entries {
		if e.IsDir() || e.Name()[0] == '.' {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}

func (s *fileSystemStore) Append(a kiosk.Artifact) error {
	queue, err := s.load()
	if err != nil {
		return err
	}
	return s.save(append(queue, a))
}

func (s *fileSystemStore) Peek() (kiosk.Artifact, bool, error) {
	queue, err := s.load()
	if err != nil || len(queue) == 0 {
		return kiosk.Artifact{}, false, err
	}
	return queue[0], true, nil
}

func (s *fileSystemStore) Pop(id string) (int, error) {
	queue, err := s.load()
	if err != nil {
		return 0, err
	}
	for i, a := range queue {
		if a.ID != id {
			continue
		}
		queue = append(queue[:i], queue[i+1:]...)
		if err := s.save(queue); err != nil {
			return 0, err
		}
		return countRefs(queue, a.Checksum), nil
	}
	return 0, fmt.Errorf("artifact not found in queue: %s", id)
}

func (s *fileSystemStore) Len() (int, error) {
	queue, err := s.load()
	return len(queue), err
}

func (s *fileSystemStore) load() ([]kiosk.Artifact, error) {
	data, err := os.ReadFile(s.queuePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading queue: %w", err)
	}
	var queue []kiosk.Artifact
	if err := json.Unmarshal(data, &queue); err != nil {
		return nil, fmt.Errorf("decoding queue: %w", err)
	}
	return queue, nil
}

// save writes the queue atomically (temp file + rename).
func (s *fileSystemStore) save(queue []kiosk.Artifact) error {
	data, err := json.MarshalIndent(queue, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding queue: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.queuePath), ".queue-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing queue: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing queue: %w", err)
	}
	if err := os.Rename(tmpPath, s.queuePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing queue: %w", err)
	}
	return nil
}
