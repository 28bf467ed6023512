package engine

import (
	"errors"

	"github.com/dshills/ropecore/internal/engine/history"
	"github.com/dshills/ropecore/internal/engine/tracking"
)

// Errors returned by engine operations.
var (
	// ErrReadOnly indicates an operation was attempted on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")

	// ErrLineOutOfRange indicates a line index past the end of the text.
	ErrLineOutOfRange = errors.New("line out of range")

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = history.ErrNothingToRedo

	// ErrRevisionNotFound indicates a revision was trimmed or never existed.
	ErrRevisionNotFound = tracking.ErrRevisionNotFound

	// ErrSnapshotNotFound indicates a snapshot was not found.
	ErrSnapshotNotFound = tracking.ErrSnapshotNotFound
)
