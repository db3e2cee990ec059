package staging

import (
	"fmt"
	"io/fs"
)

// validateUnchanged checks that file metadata hasn't changed while it was copied.
func validateUnchanged(info1, info2 fs.FileInfo) error {
	if info1.Size() != info2.Size() {
		return fmt.Errorf("size changed: %d -> %d", info1.Size(), info2.Size())
	}
	if info1.Mode() != info2.Mode() {
		return fmt.Errorf("mode changed: %v -> %v", info1.Mode(), info2.Mode())
	}
	if !info1.ModTime().Equal(info2.ModTime()) {
		return fmt.Errorf("mtime changed: %v -> %v", info1.ModTime(), info2.ModTime())
	}
	return nil
}
