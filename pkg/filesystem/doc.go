// Package filesystem provides filesystem implementations for dtsync.
//
// Both implementations of types.FS are built on afero: NewOS wraps the OS
// backend and adds a kernel writability probe, NewAferoFS wraps any afero
// filesystem, typically an in-memory one in tests.
package filesystem
