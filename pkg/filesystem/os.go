package filesystem

import (
	"io/fs"
	"os"

	"github.com/arthur-debert/lumina-project/pkg/types"
)

// diskFS implements types.FS on the real filesystem.
type diskFS struct{}

// NewOS returns the filesystem generation writes projects to.
func NewOS() types.FS {
	return &diskFS{}
}

// Stat follows symlinks, so a linked template directory is walked like a
// real one.
func (d *diskFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

func (d *diskFS) Lstat(name string) (fs.FileInfo, error) { return os.Lstat(name) }

func (d *diskFS) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

func (d *diskFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// Mkdir is the exclusive create the destination guard relies on.
func (d *diskFS) Mkdir(name string, perm fs.FileMode) error { return os.Mkdir(name, perm) }

func (d *diskFS) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }

func (d *diskFS) ReadDir(name string) ([]fs.DirEntry, error) { return os.ReadDir(name) }

func (d *diskFS) Chmod(name string, mode fs.FileMode) error { return os.Chmod(name, mode) }

// Rename never replaces newpath. os.Rename would silently swap out an empty
// directory on Linux.
func (d *diskFS) Rename(oldpath, newpath string) error {
	return renameNoReplace(oldpath, newpath)
}

func (d *diskFS) Remove(name string) error { return os.Remove(name) }

func (d *diskFS) RemoveAll(path string) error { return os.RemoveAll(path) }

// checkedRename is the portable Rename: a look before the move. Another
// process can still create newpath in between.
func checkedRename(oldpath, newpath string) error {
	if _, err := os.Lstat(newpath); err == nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrExist}
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.Rename(oldpath, newpath)
}
