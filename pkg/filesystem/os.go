package filesystem

import (
	"io/fs"
	"os"

	"github.com/arthur-debert/dtsync/pkg/types"
	"github.com/spf13/afero"
)

// osFS implements types.FS on the host filesystem. File operations go
// through afero's OS backend; glob views and the writability probe talk to
// the OS directly.
type osFS struct {
	*aferoFS
}

// NewOS creates a new OS filesystem implementation
func NewOS() types.FS {
	return &osFS{aferoFS: &aferoFS{fs: afero.NewOsFs()}}
}

// DirFS uses os.DirFS so that glob evaluation sees the same entries,
// symlinks included, as Lstat and ReadDir
func (o *osFS) DirFS(dir string) fs.FS {
	return os.DirFS(dir)
}
