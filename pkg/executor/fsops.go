package executor

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"

	"github.com/arthur-debert/dtsync/pkg/errors"
	"github.com/arthur-debert/dtsync/pkg/paths"
)

type destKind int

const (
	kindAbsent destKind = iota
	kindDeadLink
	kindLink
	kindFile
	kindDir
	kindOther
)

// destState is what currently sits at a path
type destState struct {
	kind destKind
	link string
}

func (e *Executor) inspect(path string) (destState, error) {
	info, err := e.fs.Lstat(path)
	if err != nil {
		if paths.NotExist(err) {
			return destState{kind: kindAbsent}, nil
		}
		return destState{}, errors.Wrapf(err, errors.ErrFileRead, "cannot stat %s", path)
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		link, err := e.fs.Readlink(path)
		if err != nil {
			return destState{}, errors.Wrapf(err, errors.ErrFileRead, "cannot read link %s", path)
		}
		if _, err := e.fs.Stat(path); err != nil {
			if paths.NotExist(err) {
				return destState{kind: kindDeadLink, link: link}, nil
			}
			return destState{}, errors.Wrapf(err, errors.ErrFileRead, "cannot stat link target of %s", path)
		}
		return destState{kind: kindLink, link: link}, nil
	}

	switch {
	case info.IsDir():
		return destState{kind: kindDir}, nil
	case info.Mode().IsRegular():
		return destState{kind: kindFile}, nil
	default:
		return destState{kind: kindOther}, nil
	}
}

func (e *Executor) sameContent(path string, content []byte) (bool, error) {
	data, err := e.fs.ReadFile(path)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileRead, "cannot read %s", path)
	}
	return bytes.Equal(data, content), nil
}

// writeFile writes content next to path and renames it into place. It
// returns the number of mutations performed.
func (e *Executor) writeFile(path string, content []byte, mode fs.FileMode) (int, error) {
	n, err := e.ensureDir(filepath.Dir(path))
	if err != nil {
		return n, err
	}

	tmp := tempName(path)
	if err := e.fs.WriteFile(tmp, content, mode); err != nil {
		_ = e.fs.Remove(tmp)
		return n, errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path)
	}
	if err := e.fs.Rename(tmp, path); err != nil {
		_ = e.fs.Remove(tmp)
		return n, errors.Wrapf(err, errors.ErrFileWrite, "cannot move %s into place", path)
	}
	return n + 1, nil
}

// placeLink creates a symlink to target next to path and renames it over
// path
func (e *Executor) placeLink(path, target string) (int, error) {
	n, err := e.ensureDir(filepath.Dir(path))
	if err != nil {
		return n, err
	}

	tmp := tempName(path)
	if err := e.fs.Symlink(target, tmp); err != nil {
		return n, errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot create symlink for %s", path)
	}
	if err := e.fs.Rename(tmp, path); err != nil {
		_ = e.fs.Remove(tmp)
		return n, errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot move symlink %s into place", path)
	}
	return n + 1, nil
}

// ensureDir creates dir and any missing parents, returning how many
// directories it created
func (e *Executor) ensureDir(dir string) (int, error) {
	e.dirMu.Lock()
	defer e.dirMu.Unlock()

	missing := 0
	for d := dir; ; d = filepath.Dir(d) {
		info, err := e.fs.Stat(d)
		if err == nil {
			if !info.IsDir() {
				return 0, errors.Wrapf(syscall.ENOTDIR, errors.ErrDirCreate, "%s is not a directory", d)
			}
			break
		}
		if !paths.NotExist(err) {
			return 0, errors.Wrapf(err, errors.ErrDirCreate, "cannot stat %s", d)
		}
		missing++
		if filepath.Dir(d) == d {
			break
		}
	}
	if missing == 0 {
		return 0, nil
	}

	if err := e.fs.MkdirAll(dir, 0755); err != nil {
		return 0, errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dir)
	}
	return missing, nil
}

var tempSeq atomic.Uint64

// tempName returns a hidden sibling of path for create-then-swap
func tempName(path string) string {
	dir, base := filepath.Split(path)
	return filepath.Join(dir, fmt.Sprintf(".%s.dtsync-%d-%d", base, os.Getpid(), tempSeq.Add(1)))
}

// isItemLevel reports whether err only concerns the current item
func isItemLevel(err error) bool {
	switch errors.GetErrorCode(err) {
	case errors.ErrOverwriteDenied, errors.ErrDestinationDir, errors.ErrRender:
		return true
	}
	return stderrors.Is(err, fs.ErrPermission) ||
		stderrors.Is(err, fs.ErrNotExist) ||
		stderrors.Is(err, syscall.EROFS) ||
		stderrors.Is(err, syscall.ENOSPC) ||
		stderrors.Is(err, syscall.ENOTDIR) ||
		stderrors.Is(err, syscall.EISDIR)
}

func asDtError(err error) *errors.DtError {
	var dtErr *errors.DtError
	if stderrors.As(err, &dtErr) {
		return dtErr
	}
	return errors.Wrap(err, errors.ErrUnknown, "item failed")
}
