// Package types defines the core types and interfaces shared by the dtsync
// pipeline: sync methods and scopes, host classification, the items flowing
// between the expander, resolver and executor, and the FS abstraction every
// filesystem-touching package works against.
package types
