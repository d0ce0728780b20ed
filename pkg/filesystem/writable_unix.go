//go:build unix

package filesystem

import "golang.org/x/sys/unix"

// Writable asks the kernel whether the current user may create entries in
// dir, honouring read-only mounts.
func (o *osFS) Writable(dir string) bool {
	return unix.Access(dir, unix.W_OK|unix.X_OK) == nil
}
