//go:build !unix

package filesystem

// Writable cannot be answered without creating an entry on this platform;
// creation failures surface later as item errors.
func (o *osFS) Writable(dir string) bool {
	return true
}
