package core

import "io/fs"

// FilesystemManager provides the filesystem operations the engine needs.
// No transactional guarantee is assumed from the OS; renames are ordinary
// single-file operations.
type FilesystemManager interface {
	// Exists reports whether a path exists. A stat failure other than
	// not-exist is returned as an error.
	Exists(path string) (bool, error)

	// Rename moves a file from oldPath to newPath.
	Rename(oldPath, newPath string) error

	// ListDirectoryNames returns the base names of all entries in dir.
	ListDirectoryNames(dir string) ([]string, error)

	// Stat returns file info for a path.
	Stat(path string) (fs.FileInfo, error)
}
