package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"nameforge/internal/core"
)

// FileSystemArchive stores snapshots as files:
//
//	<root>/
//	  <hostID>.db       (latest snapshot)
//	  <hostID>.version  (version marker)
type FileSystemArchive struct {
	root string
}

var _ core.Archive = (*FileSystemArchive)(nil)

// NewFileSystemArchive creates an archive rooted at the given directory,
// creating it if needed.
func NewFileSystemArchive(root string) (*FileSystemArchive, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	return &FileSystemArchive{root: root}, nil
}

func (a *FileSystemArchive) PutSnapshot(hostID string, r io.Reader, size int64, version int64) error {
	destPath := filepath.Join(a.root, hostID+".db")
	if err := a.writeFile(destPath, r, size); err != nil {
		return err
	}

	versionPath := filepath.Join(a.root, hostID+".version")
	return os.WriteFile(versionPath, []byte(strconv.FormatInt(version, 10)), 0644)
}

func (a *FileSystemArchive) LatestVersion(hostID string) (int64, error) {
	data, err := os.ReadFile(filepath.Join(a.root, hostID+".version"))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading version file: %w", err)
	}
	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

func (a *FileSystemArchive) GetSnapshot(hostID string, w io.Writer) error {
	f, err := os.Open(filepath.Join(a.root, hostID+".db"))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no snapshot for host: %s", hostID)
		}
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	return nil
}

// writeFile writes atomically via a temp file in the same directory.
func (a *FileSystemArchive) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	success = true
	return nil
}
