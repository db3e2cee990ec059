package staging

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"kiosk-go/internal/kiosk"
)

// NewMemoryStagingArea creates a new in-memory staging area for files under root.
// maxSize is the maximum total size in bytes; must be positive.
func NewMemoryStagingArea(root string, maxSize int64, clock kiosk.Clock, ids kiosk.IDGenerator) kiosk.StagingArea {
	return &stagingArea{
		root:    root,
		store:   newMemoryStore(),
		clock:   clock,
		ids:     ids,
		maxSize: maxSize,
	}
}

type memoryStore struct {
	content map[string][]byte
	queue   []kiosk.Artifact
}

func newMemoryStore() *memoryStore {
	return &memoryStore{content: make(map[string][]byte)}
}

func (m *memoryStore) StoreContent(r io.Reader) (string, int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, fmt.Errorf("reading content: %w", err)
	}
	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])
	if _, ok := m.content[checksum]; !ok {
		m.content[checksum] = data
	}
	return checksum, int64(len(data)), nil
}

func (m *memoryStore) RemoveContent(checksum string) {
	delete(m.content, checksum)
}

func (m *memoryStore) OpenContent(checksum string) (io.ReadCloser, error) {
	data, ok := m.content[checksum]
	if !ok {
		return nil, fmt.Errorf("content not found: %s", checksum)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryStore) ContentSize() (int64, error) {
	var total int64
	for _, data := range m.content {
		total += int64(len(data))
	}
	return total, nil
}

func (m *memoryStore) Append(a kiosk.Artifact) error {
	m.queue = append(m.queue, a)
	return nil
}

func (m *memoryStore) Peek() (kiosk.Artifact, bool, error) {
	if len(m.queue) == 0 {
		return kiosk.Artifact{}, false, nil
	}
	return m.queue[0], true, nil
}

func (m *memoryStore) Pop(id string) (int, error) {
	var checksum string
	found := false
	for i, a := range m.queue {
		if a.ID == id {
			checksum = a.Checksum
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return 0, fmt.Errorf("artifact not found in queue: %s", id)
	}
	return countRefs(m.queue, checksum), nil
}

func (m *memoryStore) Len() (int, error) {
	return len(m.queue), nil
}

func countRefs(queue []kiosk.Artifact, checksum string) int {
	n := 0
	for _, a := range queue {
		if a.Checksum == checksum {
			n++
		}
	}
	return n
}
