// Package testutil provides helpers shared by dtsync tests.
//
// Key components:
//   - NewTestFS: in-memory types.FS for tests that need no symlinks
//   - WriteTree: declarative file tree setup on any types.FS
//   - CreateFile/CreateSymlink/ReadFile: real-filesystem helpers for t.TempDir trees
//   - Snapshot: a comparable picture of a directory tree, used to prove a
//     step performed no mutations
package testutil
