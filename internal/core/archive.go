package core

import "io"

// Archive stores versioned snapshots of the history database off-host so
// the rename log can outlive the local machine. Backends are pluggable;
// the snapshot payload is opaque bytes.
type Archive interface {
	// PutSnapshot stores a snapshot for a host along with its version
	// marker. Storing a newer version replaces the visible snapshot.
	PutSnapshot(hostID string, r io.Reader, size int64, version int64) error

	// LatestVersion returns the stored snapshot version for a host,
	// 0 if none has been stored.
	LatestVersion(hostID string) (int64, error)

	// GetSnapshot retrieves the current snapshot for a host.
	GetSnapshot(hostID string, w io.Writer) error
}

// Encryptor wraps snapshots on their way to the archive.
type Encryptor interface {
	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Decrypt reads ciphertext from r and writes plaintext to w.
	// May require prior setup (e.g. an unlocked key).
	Decrypt(r io.Reader, w io.Writer) error
}

// NopEncryptor passes data through unchanged.
type NopEncryptor struct{}

func (NopEncryptor) Encrypt(r io.Reader, w io.Writer) error { _, err := io.Copy(w, r); return err }
func (NopEncryptor) Decrypt(r io.Reader, w io.Writer) error { _, err := io.Copy(w, r); return err }
