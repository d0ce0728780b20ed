// Package expand turns a group's source patterns into concrete files.
//
// Expansion is read-only: it stats, lists and globs but never writes. It
// picks the effective basedir (the host-specific one when present), runs
// every pattern as a doublestar glob, flattens matched directories with an
// explicit worklist, and resolves host-specific variants so exactly one
// member of each file family survives. Problems that invalidate the whole
// run (a target that is a file, an uncreatable staging root, an ambiguous
// host suffix) are returned as *errors.ExpansionError; everything else is a
// warning.
package expand
