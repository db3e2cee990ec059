package kiosk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Artifact is a staged copy of a persisted kiosk file awaiting replication.
type Artifact struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	RelPath  string    `json:"rel_path"`
	Checksum string    `json:"checksum"`
	Size     int64     `json:"size"`
	StagedAt time.Time `json:"staged_at"`
}

// ReplicateFunc ships one staged artifact. r yields exactly a.Size bytes.
type ReplicateFunc func(r io.Reader, a Artifact) error

// StagingArea queues snapshots of persisted files for later replication.
// The content is copied at stage time, so later rewrites of the same file
// (the ledger) do not affect queued snapshots.
type StagingArea interface {
	// Stage snapshots the file at relPath (relative to the staging area's
	// data root) and appends it to the queue.
	Stage(kind, relPath string) error

	// ProcessNext calls fn with the oldest artifact. The artifact is removed
	// only when fn returns nil. ok is false when the queue is empty.
	ProcessNext(fn ReplicateFunc) (ok bool, err error)

	// Count returns the number of queued artifacts.
	Count() (int, error)

	// Size returns the total bytes of staged content.
	Size() (int64, error)
}

// Vault is an off-station replica store.
type Vault interface {
	// Put stores size bytes read from r under key, replacing any previous value.
	Put(key string, r io.Reader, size int64) error

	// Get writes the value stored under key to w.
	Get(key string, w io.Writer) error

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}

// Encryptor encrypts replicas with a public key; decryption requires a
// passphrase to unlock the private key.
type Encryptor interface {
	// Setup performs one-time key generation, protecting the private key
	// with passphrase.
	Setup(passphrase string) error

	// Encrypt encrypts data read from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key and returns a context able to decrypt replicas.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured returns true if both key files exist.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key for the duration of a restore.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}

// StagingReplicator implements Replicator by staging files found under root.
type StagingReplicator struct {
	root    string
	staging StagingArea
}

// NewStagingReplicator creates a replicator for files persisted under root.
func NewStagingReplicator(root string, staging StagingArea) *StagingReplicator {
	return &StagingReplicator{root: root, staging: staging}
}

func (r *StagingReplicator) Enqueue(kind, p string) error {
	rel, err := filepath.Rel(r.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%s is outside %s", p, r.root)
	}
	if err := r.staging.Stage(kind, rel); err != nil {
		return fmt.Errorf("staging %s: %w", rel, err)
	}
	return nil
}

// EncryptedSuffix is appended to vault keys of encrypted replicas.
const EncryptedSuffix = ".age"

// SyncService drains the staging area into a vault.
type SyncService struct {
	stationID string
	staging   StagingArea
	vault     Vault
	encryptor Encryptor
	logger    Logger
}

// NewSyncService creates a sync service. A nil encryptor stores replicas in plaintext.
func NewSyncService(stationID string, staging StagingArea, vault Vault, encryptor Encryptor, logger Logger) *SyncService {
	return &SyncService{
		stationID: stationID,
		staging:   staging,
		vault:     vault,
		encryptor: encryptor,
		logger:    logger,
	}
}

// VaultKey returns the vault key for a file at relPath on this station.
func (s *SyncService) VaultKey(relPath string) string {
	key := path.Join(s.stationID, filepath.ToSlash(relPath))
	if s.encryptor != nil {
		key += EncryptedSuffix
	}
	return key
}

// Sync replicates every queued artifact in order and returns how many were
// shipped. It stops at the first failure, leaving that artifact queued.
func (s *SyncService) Sync(ctx context.Context) (int, error) {
	if s.encryptor != nil && !s.encryptor.IsConfigured() {
		return 0, fmt.Errorf("encryption keys are not set up")
	}

	shipped := 0
	for {
		if err := ctx.Err(); err != nil {
			return shipped, err
		}

		ok, err := s.staging.ProcessNext(s.ship)
		if err != nil {
			return shipped, err
		}
		if !ok {
			break
		}
		shipped++
	}

	s.logger.Info("sync complete", "shipped", shipped)
	return shipped, nil
}

func (s *SyncService) ship(r io.Reader, a Artifact) error {
	key := s.VaultKey(a.RelPath)

	if s.encryptor == nil {
		if err := s.vault.Put(key, r, a.Size); err != nil {
			return fmt.Errorf("uploading %s: %w", key, err)
		}
		s.logger.Debug("replicated artifact", "kind", a.Kind, "key", key, "size", a.Size)
		return nil
	}

	var buf bytes.Buffer
	if err := s.encryptor.Encrypt(r, &buf); err != nil {
		return fmt.Errorf("encrypting %s: %w", a.RelPath, err)
	}
	size := int64(buf.Len())
	if err := s.vault.Put(key, &buf, size); err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	s.logger.Debug("replicated artifact", "kind", a.Kind, "key", key, "size", size)
	return nil
}

// Restore fetches the replica of relPath and writes the plaintext to w.
// dec may be nil when replicas are not encrypted.
func (s *SyncService) Restore(relPath string, dec DecryptionContext, w io.Writer) error {
	key := s.VaultKey(relPath)
	if dec == nil {
		return s.vault.Get(key, w)
	}

	var buf bytes.Buffer
	if err := s.vault.Get(key, &buf); err != nil {
		return err
	}
	if err := dec.Decrypt(&buf, w); err != nil {
		return fmt.Errorf("decrypting %s: %w", key, err)
	}
	return nil
}

// Compile-time check that StagingReplicator implements Replicator interface
var _ Replicator = (*StagingReplicator)(nil)
