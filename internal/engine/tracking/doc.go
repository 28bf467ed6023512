// Package tracking records the diffs applied to a text so that edits made
// against an older revision can be brought up to date.
//
// This package supports:
//   - Revision-based change queries ("what changed since revision X?")
//   - Rebasing a diff made against an old revision onto the current text
//   - Named snapshots for checkpointing text state
//   - Cheap storage through structural sharing of persistent ropes
//
// # Usage
//
// Create a log and record each applied diff:
//
//	log := tracking.NewLog(initial, tracking.WithMaxRevisions(500))
//	rev := log.Record(d, after)
//
//	// A collaborator sends an edit made at revision old.
//	rebased, err := log.Rebase(remote, old)
//
// # Snapshots
//
//	id := log.CreateSnapshot("before_format")
//	d, err := log.DiffSinceSnapshot(id)
//
// When a snapshot's revision has been trimmed from the log, the diff is
// recomputed from the two texts.
//
// # Thread Safety
//
// Log and SnapshotManager are safe for concurrent use. Revisions and
// snapshots are immutable once created.
package tracking
