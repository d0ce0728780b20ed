package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Entry describes one node of a snapshotted tree
type Entry struct {
	Mode    fs.FileMode
	ModTime time.Time
	Content string
	Link    string
}

// Snapshot records every entry under root (symlinks are not followed).
// Two equal snapshots mean nothing under root was created, removed or
// rewritten in between.
func Snapshot(t *testing.T, root string) map[string]Entry {
	t.Helper()

	snap := make(map[string]Entry)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := os.Lstat(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		e := Entry{Mode: info.Mode(), ModTime: info.ModTime()}
		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			if e.Link, err = os.Readlink(path); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			e.Content = string(data)
		}
		snap[filepath.ToSlash(rel)] = e
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to snapshot %s: %v", root, err)
	}
	return snap
}
