package filesystem

import (
	"io/fs"
	"os"

	"github.com/arthur-debert/lumina-project/pkg/types"
	"github.com/spf13/afero"
)

// aferoFS implements types.FS over an afero backend. Tests run whole
// generations against a MemMapFs through it.
type aferoFS struct {
	backend afero.Fs
}

// NewAferoFS wraps backend as a types.FS.
func NewAferoFS(backend afero.Fs) types.FS {
	return &aferoFS{backend: backend}
}

func (a *aferoFS) Stat(name string) (fs.FileInfo, error) { return a.backend.Stat(name) }

// Lstat falls back to Stat on backends without symlinks, such as MemMapFs.
func (a *aferoFS) Lstat(name string) (fs.FileInfo, error) {
	if l, ok := a.backend.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(name)
		return info, err
	}
	return a.backend.Stat(name)
}

// ReadFile refuses directories like os.ReadFile does; MemMapFs would return
// an empty read.
func (a *aferoFS) ReadFile(name string) ([]byte, error) {
	info, err := a.backend.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	return afero.ReadFile(a.backend, name)
}

func (a *aferoFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return afero.WriteFile(a.backend, name, data, perm)
}

func (a *aferoFS) Mkdir(name string, perm fs.FileMode) error { return a.backend.Mkdir(name, perm) }

func (a *aferoFS) MkdirAll(path string, perm fs.FileMode) error {
	return a.backend.MkdirAll(path, perm)
}

func (a *aferoFS) ReadDir(name string) ([]fs.DirEntry, error) {
	infos, err := afero.ReadDir(a.backend, name)
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, fs.FileInfoToDirEntry(info))
	}
	return entries, nil
}

func (a *aferoFS) Chmod(name string, mode fs.FileMode) error { return a.backend.Chmod(name, mode) }

// Rename never replaces newpath.
func (a *aferoFS) Rename(oldpath, newpath string) error {
	if _, err := a.Lstat(newpath); err == nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrExist}
	}
	return a.backend.Rename(oldpath, newpath)
}

func (a *aferoFS) Remove(name string) error { return a.backend.Remove(name) }

func (a *aferoFS) RemoveAll(path string) error { return a.backend.RemoveAll(path) }
