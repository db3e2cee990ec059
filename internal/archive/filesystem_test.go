package archive_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"kiosk-go/internal/archive"
	"kiosk-go/internal/config"
	"kiosk-go/internal/kiosk"
	"kiosk-go/internal/testutil"
)

// countingCodec writes the number of frames as the file body.
type countingCodec struct {
	encodeErr error
}

func (c countingCodec) Encode(dst string, frames []kiosk.Frame, _ kiosk.ClipFormat) error {
	if c.encodeErr != nil {
		os.WriteFile(dst, []byte("partial"), 0o644)
		return c.encodeErr
	}
	return os.WriteFile(dst, []byte(strconv.Itoa(len(frames))), 0o644)
}

func (c countingCodec) FirstFrame(src string) (kiosk.Frame, bool, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return kiosk.Frame{}, false, err
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return kiosk.Frame{}, false, fmt.Errorf("corrupt clip: %w", err)
	}
	if n == 0 {
		return kiosk.Frame{}, false, nil
	}
	return testutil.Blank(1), true, nil
}

func newStore(t *testing.T, codec archive.Codec) (*archive.FileSystemClipStore, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "db")
	store, err := archive.NewFileSystemClipStore(root, codec)
	if err != nil {
		t.Fatalf("NewFileSystemClipStore() error = %v", err)
	}
	return store, root
}

func TestFileSystemClipStore_WriteClip(t *testing.T) {
	store, root := newStore(t, countingCodec{})
	rel := filepath.Join("ALICE", "2024", "January", "clip.mp4")
	frames := []kiosk.Frame{testutil.Blank(1), testutil.Blank(2)}

	if err := store.WriteClip(rel, frames, kiosk.DefaultClipFormat); err != nil {
		t.Fatalf("WriteClip() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "2" {
		t.Errorf("clip content = %q, want %q", data, "2")
	}

	if err := store.WriteClip(rel, frames[:1], kiosk.DefaultClipFormat); err != nil {
		t.Fatalf("WriteClip() replace error = %v", err)
	}
	data, _ = os.ReadFile(filepath.Join(root, rel))
	if string(data) != "1" {
		t.Errorf("replaced clip content = %q, want %q", data, "1")
	}
}

func TestFileSystemClipStore_WriteClip_EncodeFailure(t *testing.T) {
	store, root := newStore(t, countingCodec{encodeErr: errors.New("encoder crashed")})

	if err := store.WriteClip("ALICE.mp4", []kiosk.Frame{testutil.Blank(1)}, kiosk.DefaultClipFormat); err == nil {
		t.Fatal("WriteClip() expected error")
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("archive root has %d entries after failed write, want 0", len(entries))
	}
}

func TestFileSystemClipStore_List(t *testing.T) {
	store, root := newStore(t, countingCodec{})
	for _, name := range []string{"CAROL.mp4", "ALICE.mp4"} {
		store.WriteClip(name, []kiosk.Frame{testutil.Blank(1)}, kiosk.DefaultClipFormat)
	}
	store.WriteClip(filepath.Join("ALICE", "2024", "January", "clip.mp4"), []kiosk.Frame{testutil.Blank(1)}, kiosk.DefaultClipFormat)
	os.WriteFile(filepath.Join(root, ".tmp-123.mp4"), nil, 0o644)
	os.WriteFile(filepath.Join(root, "README"), nil, 0o644)

	names, err := store.List("")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"ALICE.mp4", "CAROL.mp4"}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Errorf("List() = %v, want %v", names, want)
	}

	missing, err := store.List("NOBODY")
	if err != nil {
		t.Fatalf("List() missing dir error = %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("List() missing dir = %v, want empty", missing)
	}
}

func TestFileSystemClipStore_ReadFirstFrame(t *testing.T) {
	store, _ := newStore(t, countingCodec{})
	store.WriteClip("ALICE.mp4", []kiosk.Frame{testutil.Blank(1)}, kiosk.DefaultClipFormat)
	store.WriteClip("EMPTY.mp4", nil, kiosk.DefaultClipFormat)

	if _, ok, err := store.ReadFirstFrame("ALICE.mp4"); err != nil || !ok {
		t.Errorf("ReadFirstFrame(ALICE) = %v, %v, want true, nil", ok, err)
	}
	if _, ok, err := store.ReadFirstFrame("EMPTY.mp4"); err != nil || ok {
		t.Errorf("ReadFirstFrame(EMPTY) = %v, %v, want false, nil", ok, err)
	}
	if _, _, err := store.ReadFirstFrame("GONE.mp4"); err == nil {
		t.Error("ReadFirstFrame(GONE) expected error")
	}
}

func TestFileSystemClipStore_Remove(t *testing.T) {
	store, root := newStore(t, countingCodec{})
	store.WriteClip("ALICE.mp4", []kiosk.Frame{testutil.Blank(1)}, kiosk.DefaultClipFormat)

	if err := store.Remove("ALICE.mp4"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "ALICE.mp4")); !os.IsNotExist(err) {
		t.Errorf("clip still exists after Remove()")
	}
	if err := store.Remove("ALICE.mp4"); err == nil {
		t.Error("second Remove() expected error")
	}
}

func TestFileSystemClipStore_ValidateSetup(t *testing.T) {
	store, root := newStore(t, countingCodec{})
	if err := store.ValidateSetup(); err != nil {
		t.Errorf("ValidateSetup() error = %v", err)
	}
	os.RemoveAll(root)
	if err := store.ValidateSetup(); err == nil {
		t.Error("ValidateSetup() on removed root expected error")
	}
}

func TestMemoryClipStore_RejectsInvalidFormat(t *testing.T) {
	store := archive.NewMemoryClipStore()
	if err := store.WriteClip("ALICE.mp4", nil, kiosk.ClipFormat{}); err == nil {
		t.Error("WriteClip() with zero format expected error")
	}
}

func TestNewClipStoreFromConfig(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		cfg     config.ArchiveConfig
		dbDir   string
		codec   archive.Codec
		wantErr bool
	}{
		{"memory", config.ArchiveConfig{Type: "memory"}, "", nil, false},
		{"filesystem", config.ArchiveConfig{Type: "filesystem"}, dir, countingCodec{}, false},
		{"default is filesystem", config.ArchiveConfig{}, dir, countingCodec{}, false},
		{"filesystem without dir", config.ArchiveConfig{Type: "filesystem"}, "", countingCodec{}, true},
		{"filesystem without codec", config.ArchiveConfig{Type: "filesystem"}, dir, nil, true},
		{"unknown", config.ArchiveConfig{Type: "tape"}, dir, countingCodec{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := archive.NewClipStoreFromConfig(tt.cfg, tt.dbDir, tt.codec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClipStoreFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && store == nil {
				t.Error("NewClipStoreFromConfig() returned nil store")
			}
		})
	}
}
