package tracking

import "errors"

// Errors returned by the revision log.
var (
	// ErrRevisionNotFound is returned for revisions that were trimmed from
	// the log or have not been recorded yet.
	ErrRevisionNotFound = errors.New("revision not found")

	// ErrSnapshotNotFound is returned when a snapshot does not exist.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)
