package paths

import (
	"errors"
	"io/fs"
	"path/filepath"
	"syscall"

	"github.com/arthur-debert/dtsync/pkg/types"
)

// Creatable reports whether a missing directory at path could be created:
// its nearest existing ancestor must be a writable directory. It only
// issues stat and access queries. The nearest existing ancestor is returned
// for diagnostics.
func Creatable(fsys types.FS, path string) (bool, string, error) {
	dir := filepath.Clean(path)
	for {
		info, err := fsys.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return false, dir, nil
			}
			return fsys.Writable(dir), dir, nil
		}
		if !NotExist(err) {
			return false, dir, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false, dir, nil
		}
		dir = parent
	}
}

// NotExist reports whether err means the path is absent, including the
// ENOTDIR returned when an ancestor is a regular file
func NotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
