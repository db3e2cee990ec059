package kiosk_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kiosk-go/internal/config"
	"kiosk-go/internal/encryption"
	"kiosk-go/internal/kiosk"
	"kiosk-go/internal/staging"
	"kiosk-go/internal/testutil"
	"kiosk-go/internal/vault"
)

type replicationFixture struct {
	root    string
	staging kiosk.StagingArea
	vault   *vault.MemoryVault
}

func newReplicationFixture(t *testing.T) *replicationFixture {
	t.Helper()
	root := t.TempDir()
	return &replicationFixture{
		root:    root,
		staging: staging.NewMemoryStagingArea(root, 1<<20, testutil.FixedClock(), testutil.NewStubIDGenerator()),
		vault:   vault.NewMemoryVault("test"),
	}
}

func (f *replicationFixture) write(t *testing.T, rel, content string) string {
	t.Helper()
	full := filepath.Join(f.root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return full
}

func TestStagingReplicator_Enqueue(t *testing.T) {
	f := newReplicationFixture(t)
	r := kiosk.NewStagingReplicator(f.root, f.staging)

	path := f.write(t, filepath.Join("ALICE", "2024", "January", "clip.mp4"), "clip")
	if err := r.Enqueue("event", path); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	var got kiosk.Artifact
	ok, err := f.staging.ProcessNext(func(_ io.Reader, a kiosk.Artifact) error {
		got = a
		return nil
	})
	if err != nil || !ok {
		t.Fatalf("ProcessNext() = %v, %v", ok, err)
	}
	if got.Kind != "event" || got.RelPath != filepath.Join("ALICE", "2024", "January", "clip.mp4") {
		t.Errorf("artifact = %+v", got)
	}

	outside := filepath.Join(t.TempDir(), "elsewhere.mp4")
	if err := r.Enqueue("event", outside); err == nil {
		t.Error("Enqueue() of a path outside the root expected error")
	}
	if err := r.Enqueue("event", filepath.Join(f.root, "missing.mp4")); err == nil {
		t.Error("Enqueue() of a missing file expected error")
	}
}

func TestSyncService_VaultKey(t *testing.T) {
	f := newReplicationFixture(t)
	rel := filepath.Join("ALICE", "2024", "January", "clip.mp4")

	plain := kiosk.NewSyncService("front-desk", f.staging, f.vault, nil, kiosk.NewNopLogger())
	if got, want := plain.VaultKey(rel), "front-desk/ALICE/2024/January/clip.mp4"; got != want {
		t.Errorf("VaultKey() = %q, want %q", got, want)
	}

	enc := kiosk.NewSyncService("front-desk", f.staging, f.vault, encryption.NewTestEncryptor(), kiosk.NewNopLogger())
	if got, want := enc.VaultKey(rel), "front-desk/ALICE/2024/January/clip.mp4.age"; got != want {
		t.Errorf("VaultKey() = %q, want %q", got, want)
	}
}

func TestSyncService_Sync(t *testing.T) {
	ctx := context.Background()

	t.Run("empty queue", func(t *testing.T) {
		f := newReplicationFixture(t)
		svc := kiosk.NewSyncService("kiosk", f.staging, f.vault, nil, kiosk.NewNopLogger())
		n, err := svc.Sync(ctx)
		if err != nil || n != 0 {
			t.Errorf("Sync() = %d, %v, want 0, nil", n, err)
		}
	})

	t.Run("encrypted replicas restore", func(t *testing.T) {
		f := newReplicationFixture(t)
		svc := kiosk.NewSyncService("kiosk", f.staging, f.vault, encryption.NewTestEncryptor(), kiosk.NewNopLogger())

		f.write(t, "ALICE.mp4", "enrollment")
		f.staging.Stage("enrollment", "ALICE.mp4")

		n, err := svc.Sync(ctx)
		if err != nil {
			t.Fatalf("Sync() error = %v", err)
		}
		if n != 1 {
			t.Errorf("Sync() = %d, want 1", n)
		}
		if count, _ := f.staging.Count(); count != 0 {
			t.Errorf("Count() = %d after sync, want 0", count)
		}

		var stored bytes.Buffer
		if err := f.vault.Get("kiosk/ALICE.mp4.age", &stored); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !strings.HasPrefix(stored.String(), "KIOSKENC") {
			t.Errorf("replica stored in plaintext: %q", stored.String())
		}

		dec, err := encryption.NewTestEncryptor().Unlock("secret")
		if err != nil {
			t.Fatalf("Unlock() error = %v", err)
		}
		var restored bytes.Buffer
		if err := svc.Restore("ALICE.mp4", dec, &restored); err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		if restored.String() != "enrollment" {
			t.Errorf("Restore() = %q, want %q", restored.String(), "enrollment")
		}
	})

	t.Run("ledger snapshots ship in order", func(t *testing.T) {
		f := newReplicationFixture(t)
		svc := kiosk.NewSyncService("kiosk", f.staging, f.vault, nil, kiosk.NewNopLogger())

		f.write(t, "attendance.xlsx", "v1")
		f.staging.Stage("ledger", "attendance.xlsx")
		f.write(t, "attendance.xlsx", "v2 longer")
		f.staging.Stage("ledger", "attendance.xlsx")

		if n, err := svc.Sync(ctx); err != nil || n != 2 {
			t.Fatalf("Sync() = %d, %v, want 2, nil", n, err)
		}
		var restored bytes.Buffer
		if err := svc.Restore("attendance.xlsx", nil, &restored); err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		if restored.String() != "v2 longer" {
			t.Errorf("Restore() = %q, want the latest snapshot", restored.String())
		}
	})

	t.Run("failure keeps artifact queued", func(t *testing.T) {
		f := newReplicationFixture(t)
		svc := kiosk.NewSyncService("kiosk", f.staging, failingVault{}, nil, kiosk.NewNopLogger())

		f.write(t, "ALICE.mp4", "enrollment")
		f.staging.Stage("enrollment", "ALICE.mp4")

		if _, err := svc.Sync(ctx); err == nil {
			t.Fatal("Sync() expected error")
		}
		if count, _ := f.staging.Count(); count != 1 {
			t.Errorf("Count() = %d, want 1", count)
		}
	})

	t.Run("unconfigured encryptor", func(t *testing.T) {
		f := newReplicationFixture(t)
		enc := encryption.NewAgeEncryptor(config.EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(t.TempDir(), "kiosk.pub"),
			PrivateKeyPath: filepath.Join(t.TempDir(), "kiosk.key"),
		})
		svc := kiosk.NewSyncService("kiosk", f.staging, f.vault, enc, kiosk.NewNopLogger())
		if _, err := svc.Sync(ctx); err == nil {
			t.Error("Sync() without keys expected error")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		f := newReplicationFixture(t)
		svc := kiosk.NewSyncService("kiosk", f.staging, f.vault, nil, kiosk.NewNopLogger())
		f.write(t, "ALICE.mp4", "enrollment")
		f.staging.Stage("enrollment", "ALICE.mp4")

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := svc.Sync(cancelled); !errors.Is(err, context.Canceled) {
			t.Errorf("Sync() error = %v, want context.Canceled", err)
		}
	})
}

type failingVault struct{}

func (failingVault) Put(string, io.Reader, int64) error { return errors.New("vault offline") }
func (failingVault) Get(string, io.Writer) error         { return errors.New("vault offline") }
func (failingVault) ValidateSetup() error                { return errors.New("vault offline") }
