//go:build unix

package watch

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isFatal reports inotify resource exhaustion: the watch limit (ENOSPC)
// or file descriptor limits (EMFILE, ENFILE)
func isFatal(err error) bool {
	return errors.Is(err, unix.ENOSPC) ||
		errors.Is(err, unix.EMFILE) ||
		errors.Is(err, unix.ENFILE)
}
