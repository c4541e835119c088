// Package archive stores history database snapshots in pluggable backends.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"nameforge/internal/core"
)

// MemoryArchive keeps snapshots in memory. Useful for testing.
// Safe for concurrent use.
type MemoryArchive struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
	versions  map[string]int64
}

var _ core.Archive = (*MemoryArchive)(nil)

func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{
		snapshots: make(map[string][]byte),
		versions:  make(map[string]int64),
	}
}

func (a *MemoryArchive) PutSnapshot(hostID string, r io.Reader, size int64, version int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapshots[hostID] = data
	a.versions[hostID] = version
	return nil
}

func (a *MemoryArchive) LatestVersion(hostID string) (int64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.versions[hostID], nil
}

func (a *MemoryArchive) GetSnapshot(hostID string, w io.Writer) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	data, ok := a.snapshots[hostID]
	if !ok {
		return fmt.Errorf("no snapshot for host: %s", hostID)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}
