package testutil

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	ModTime time.Time
}

// MockFilesystemManager is an in-memory filesystem for testing. Safe for
// concurrent use.
type MockFilesystemManager struct {
	mu    sync.Mutex
	files map[string]*MockFile

	// RenameErr, when set, is consulted per source path to inject
	// failures.
	RenameErr map[string]error

	// Renames records every successful rename as [source, destination].
	Renames [][2]string
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files: make(map[string]*MockFile),
	}
}

// AddFile adds a file to the mock filesystem.
func (m *MockFilesystemManager) AddFile(path string) {
	m.AddFileWithModTime(path, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
}

// AddFileWithModTime adds a file with a specific modification time.
func (m *MockFilesystemManager) AddFileWithModTime(path string, modTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = &MockFile{ModTime: modTime}
}

// RemoveFile deletes a file from the mock filesystem.
func (m *MockFilesystemManager) RemoveFile(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
}

// Paths returns all file paths currently present, sorted.
func (m *MockFilesystemManager) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (m *MockFilesystemManager) Exists(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok, nil
}

func (m *MockFilesystemManager) Rename(oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.RenameErr[oldPath]; err != nil {
		return err
	}

	f, ok := m.files[oldPath]
	if !ok {
		return fmt.Errorf("rename %s: no such file", oldPath)
	}
	if _, taken := m.files[newPath]; taken {
		return fmt.Errorf("rename %s: %s already exists", oldPath, newPath)
	}

	delete(m.files, oldPath)
	m.files[newPath] = f
	m.Renames = append(m.Renames, [2]string{oldPath, newPath})
	return nil
}

func (m *MockFilesystemManager) ListDirectoryNames(dir string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var names []string
	for p := range m.files {
		if filepath.Dir(p) == dir {
			names = append(names, filepath.Base(p))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("stat %s: no such file", path)
	}
	return &mockFileInfo{name: filepath.Base(path), modTime: f.ModTime}, nil
}

type mockFileInfo struct {
	name    string
	modTime time.Time
}

func (i *mockFileInfo) Name() string       { return i.name }
func (i *mockFileInfo) Size() int64        { return 0 }
func (i *mockFileInfo) Mode() fs.FileMode  { return 0644 }
func (i *mockFileInfo) ModTime() time.Time { return i.modTime }
func (i *mockFileInfo) IsDir() bool        { return false }
func (i *mockFileInfo) Sys() any           { return nil }
