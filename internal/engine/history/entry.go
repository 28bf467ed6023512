package history

import (
	"fmt"
	"slices"
	"time"

	"github.com/dshills/ropecore/internal/engine/cursor"
	"github.com/dshills/ropecore/internal/engine/diff"
	"github.com/dshills/ropecore/internal/engine/rope"
	"github.com/dshills/ropecore/internal/engine/text"
)

// Entry represents a single undoable edit.
// It captures all information needed to undo or redo the edit.
type Entry struct {
	// Edit data
	Forward diff.Diff // Diff that was applied
	Inverse diff.Diff // Diff that restores the text before Forward

	// Cursor state for restore
	CursorsBefore []cursor.Cursor
	CursorsAfter  []cursor.Cursor

	// Metadata
	Kind        Kind
	Description string
	Timestamp   time.Time
}

// NewEntry creates an entry for d, which was applied to original.
func NewEntry(d diff.Diff, original rope.Rope) (*Entry, error) {
	inv, err := diff.Invert(d, original)
	if err != nil {
		return nil, fmt.Errorf("history entry: %w", err)
	}
	return &Entry{
		Forward:   d,
		Inverse:   inv,
		Timestamp: time.Now(),
	}, nil
}

// WithCursors sets the cursor state and returns the entry for chaining.
func (e *Entry) WithCursors(before, after []cursor.Cursor) *Entry {
	e.CursorsBefore = before
	e.CursorsAfter = after
	return e
}

// WithKind sets the kind and description and returns the entry for
// chaining.
func (e *Entry) WithKind(k Kind, description string) *Entry {
	e.Kind = k
	e.Description = description
	return e
}

// IsNoop returns true if the entry does not change the text.
func (e *Entry) IsNoop() bool {
	return e.Forward.IsIdentity()
}

// Compose returns an entry equivalent to e followed by next.
func (e *Entry) Compose(next *Entry) (*Entry, error) {
	fwd, err := diff.Compose(e.Forward, next.Forward)
	if err != nil {
		return nil, fmt.Errorf("compose history entries: %w", err)
	}
	inv, err := diff.Compose(next.Inverse, e.Inverse)
	if err != nil {
		return nil, fmt.Errorf("compose history entries: %w", err)
	}
	return &Entry{
		Forward:       fwd,
		Inverse:       inv,
		CursorsBefore: e.CursorsBefore,
		CursorsAfter:  next.CursorsAfter,
		Kind:          e.Kind,
		Description:   e.Description,
		Timestamp:     next.Timestamp,
	}, nil
}

// Clone creates a copy of the entry with its own cursor slices.
func (e *Entry) Clone() *Entry {
	clone := *e
	clone.CursorsBefore = slices.Clone(e.CursorsBefore)
	clone.CursorsAfter = slices.Clone(e.CursorsAfter)
	return &clone
}

// Info returns display information about the entry.
func (e *Entry) Info() OperationInfo {
	return OperationInfo{
		Description: e.Description,
		Kind:        e.Kind,
		Timestamp:   e.Timestamp,
		BaseLen:     e.Forward.BaseLen(),
		TargetLen:   e.Forward.TargetLen(),
	}
}

// OperationInfo provides read-only info about an entry.
// Used for displaying undo/redo history to users.
type OperationInfo struct {
	Description string
	Kind        Kind
	Timestamp   time.Time
	BaseLen     text.Length // Length of the text before the edit
	TargetLen   text.Length // Length of the text after the edit
}
