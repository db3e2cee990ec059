package vault

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kiosk-go/internal/kiosk"
)

func forEachVault(t *testing.T, fn func(t *testing.T, v kiosk.Vault)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryVault("test"))
	})
	t.Run("filesystem", func(t *testing.T) {
		v, err := NewFileSystemVault("test", filepath.Join(t.TempDir(), "vault"))
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
		fn(t, v)
	})
}

func TestVault_PutGet(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		data    string
		size    int64
		wantErr bool
	}{
		{name: "clip", key: "front-desk/ALICE.mp4", data: "clip", size: 4},
		{name: "nested ledger", key: "front-desk/ATTENDANCE REPORT/2024/ATTENDANCE REPORT, January 2024.xlsx", data: "xlsx", size: 4},
		{name: "empty content", key: "front-desk/empty", data: "", size: 0},
		{name: "large content", key: "front-desk/large", data: strings.Repeat("x", 10000), size: 10000},
		{name: "size mismatch", key: "front-desk/bad", data: "hello", size: 100, wantErr: true},
		{name: "escaping key", key: "../outside", data: "x", size: 1, wantErr: true},
		{name: "empty key", key: "", data: "x", size: 1, wantErr: true},
	}

	forEachVault(t, func(t *testing.T, v kiosk.Vault) {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := v.Put(tt.key, strings.NewReader(tt.data), tt.size)
				if (err != nil) != tt.wantErr {
					t.Fatalf("Put() error = %v, wantErr %v", err, tt.wantErr)
				}
				if tt.wantErr {
					return
				}

				var buf bytes.Buffer
				if err := v.Get(tt.key, &buf); err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if buf.String() != tt.data {
					t.Errorf("Get() = %q, want %q", buf.String(), tt.data)
				}
			})
		}
	})
}

func TestVault_PutReplaces(t *testing.T) {
	forEachVault(t, func(t *testing.T, v kiosk.Vault) {
		key := "front-desk/ledger.xlsx"
		for _, data := range []string{"v1", "v2"} {
			if err := v.Put(key, strings.NewReader(data), int64(len(data))); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
		}

		var buf bytes.Buffer
		if err := v.Get(key, &buf); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if buf.String() != "v2" {
			t.Errorf("Get() = %q, want %q", buf.String(), "v2")
		}
	})
}

func TestVault_GetMissing(t *testing.T) {
	forEachVault(t, func(t *testing.T, v kiosk.Vault) {
		var buf bytes.Buffer
		if err := v.Get("front-desk/missing.mp4", &buf); err == nil {
			t.Error("Get() expected error for missing key")
		}
	})
}

func TestFileSystemVault_Layout(t *testing.T) {
	root := t.TempDir()
	v, err := NewFileSystemVault("test", root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}

	if err := v.Put("front-desk/ALICE/2024/January/clip.mp4", strings.NewReader("x"), 1); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "front-desk", "ALICE", "2024", "January", "clip.mp4")); err != nil {
		t.Errorf("replica not written at expected path: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(root, "front-desk", "ALICE", "2024", "January"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("found %d entries, want 1 (no leftover temp files)", len(entries))
	}
}

func TestFileSystemVault_ValidateSetup(t *testing.T) {
	t.Run("valid root", func(t *testing.T) {
		v, err := NewFileSystemVault("test", t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
		if err := v.ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})

	t.Run("root removed", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "vault")
		v, err := NewFileSystemVault("test", root)
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
		os.RemoveAll(root)
		if err := v.ValidateSetup(); err == nil {
			t.Error("ValidateSetup() expected error after root removal")
		}
	})
}

func TestMemoryVault_Keys(t *testing.T) {
	v := NewMemoryVault("test")
	for _, k := range []string{"b/2", "a/1"} {
		if err := v.Put(k, strings.NewReader("x"), 1); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	got := v.Keys()
	if len(got) != 2 || got[0] != "a/1" || got[1] != "b/2" {
		t.Errorf("Keys() = %v, want [a/1 b/2]", got)
	}
}

func TestS3Vault_ObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		want   string
	}{
		{prefix: "", key: "front-desk/ALICE.mp4", want: "front-desk/ALICE.mp4"},
		{prefix: "kiosks", key: "front-desk/ALICE.mp4", want: "kiosks/front-desk/ALICE.mp4"},
		{prefix: "kiosks/", key: "front-desk/ALICE.mp4", want: "kiosks/front-desk/ALICE.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix+"|"+tt.key, func(t *testing.T) {
			v := &S3Vault{prefix: tt.prefix}
			got, err := v.objectKey(tt.key)
			if err != nil {
				t.Fatalf("objectKey() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("objectKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
