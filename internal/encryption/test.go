package encryption

import (
	"bytes"
	"fmt"
	"io"

	"kiosk-go/internal/kiosk"
)

// testMagic marks replicas produced by TestEncryptor.
var testMagic = []byte("KIOSKENC")

// TestEncryptor is a deterministic, reversible stand-in for age in tests.
// Output is the plaintext behind a fixed marker, so replicas visibly differ
// from the files they were made from.
type TestEncryptor struct {
	setupCalls int
}

// NewTestEncryptor creates a new TestEncryptor.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (e *TestEncryptor) Setup(string) error {
	e.setupCalls++
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testMagic); err != nil {
		return fmt.Errorf("writing marker: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Unlock(string) (kiosk.DecryptionContext, error) {
	return testDecryptor{}, nil
}

func (e *TestEncryptor) IsConfigured() bool { return true }

type testDecryptor struct{}

func (testDecryptor) Decrypt(r io.Reader, w io.Writer) error {
	marker := make([]byte, len(testMagic))
	if _, err := io.ReadFull(r, marker); err != nil {
		return fmt.Errorf("reading marker: %w", err)
	}
	if !bytes.Equal(marker, testMagic) {
		return fmt.Errorf("not a test-encrypted replica")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

// Compile-time check that TestEncryptor implements kiosk.Encryptor interface
var _ kiosk.Encryptor = (*TestEncryptor)(nil)
