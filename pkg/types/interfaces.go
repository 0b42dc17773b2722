package types

import (
	"io/fs"
)

// FS is the filesystem interface required for scaffolding operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	// Mkdir fails with fs.ErrExist when name already exists; the instantiator
	// relies on it as an exclusive-create primitive.
	Mkdir(name string, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Chmod(name string, mode fs.FileMode) error
	// Rename fails with fs.ErrExist when newpath already exists, even as an
	// empty directory; staged projects are moved into place with it.
	Rename(oldpath, newpath string) error
	Remove(name string) error
	RemoveAll(path string) error

	// For testing, Lstat can fall back to Stat
	Lstat(name string) (fs.FileInfo, error)
}
