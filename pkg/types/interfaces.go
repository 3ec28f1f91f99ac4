package types

import (
	"io"
	"io/fs"
	"time"
)

// FS is the filesystem interface shared by the download router and the small tools
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Open(name string) (io.ReadCloser, error)
	Create(name string, perm fs.FileMode) (io.WriteCloser, error)
	Rename(oldpath, newpath string) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error

	// Lstat and Lchtimes act on a symlink itself.
	// In-memory implementations fall back to Stat and Chtimes.
	Lstat(name string) (fs.FileInfo, error)
	Lchtimes(name string, atime, mtime time.Time) error
}
