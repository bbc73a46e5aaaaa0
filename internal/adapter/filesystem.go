package adapter

import (
	"io"
	"io/fs"
	"os"
)

// FileSystem defines an interface for file system operations to enable mocking
//
//go:generate mockgen -source=filesystem.go -destination=../mocks/filesystem.go -package=mocks -mock_names=FileSystem=MockFileSystem
type FileSystem interface {
	// MkdirAll creates the named directory along with any necessary parents
	MkdirAll(path string, perm fs.FileMode) error

	// WriteFile writes data to the named file, creating it if necessary
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Open opens the named file for reading
	Open(name string) (File, error)

	// Stat returns file info for the named file
	Stat(name string) (fs.FileInfo, error)

	// Remove removes the named file or directory
	Remove(name string) error
}

// File defines an interface for file read operations
type File interface {
	io.Reader
	io.Closer
}

// RealFileSystem implements FileSystem using the standard os package
type RealFileSystem struct{}

// NewFileSystem creates a new real file system
func NewFileSystem() FileSystem {
	return &RealFileSystem{}
}

// MkdirAll creates the named directory along with any necessary parents
func (fsys *RealFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

// WriteFile writes data to the named file, creating it if necessary
func (fsys *RealFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm) //nolint:gosec,G306
}

// Open opens the named file for reading
func (fsys *RealFileSystem) Open(name string) (File, error) {
	return os.Open(name) //nolint:gosec,G304
}

// Stat returns file info for the named file
func (fsys *RealFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

// Remove removes the named file or directory
func (fsys *RealFileSystem) Remove(name string) error {
	return os.Remove(name)
}
