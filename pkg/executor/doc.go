// Package executor applies a sync plan to the filesystem.
//
// Each plan item runs through a small state machine:
//
//	Pending -> (Staged, symlink method only) -> Done | Skipped | Failed
//
// Copy items write their (optionally rendered) content at the destination.
// Symlink items first materialize the content under the staging root and
// then point the destination at the staged file. Existing destinations are
// only replaced when the item allows overwriting, except dead symlinks which
// are always replaced. Replacement is create-then-swap: the new file or link
// is created next to the destination and renamed over it, so the
// destination never disappears.
//
// Anticipated OS errors (permissions, read-only or full filesystems, path
// type mismatches, vanished sources) and template failures only fail the
// item concerned. Anything else aborts the remaining items.
package executor
