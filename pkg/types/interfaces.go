package types

import (
	"io/fs"
)

// FS is the filesystem interface required for dtsync operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error

	// Lstat does not follow a final symlink. Implementations without
	// symlink support fall back to Stat.
	Lstat(name string) (fs.FileInfo, error)

	// Writable reports whether entries may be created inside dir
	Writable(dir string) bool

	// DirFS returns a read-only io/fs view rooted at dir, used for glob
	// evaluation.
	DirFS(dir string) fs.FS
}
