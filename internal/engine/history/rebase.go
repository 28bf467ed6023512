package history

import (
	"fmt"
	"slices"

	"github.com/dshills/ropecore/internal/engine/cursor"
	"github.com/dshills/ropecore/internal/engine/diff"
	"github.com/dshills/ropecore/internal/engine/rope"
)

// Rebase rewrites the undo stack after d, an edit made elsewhere, was
// applied to the text. current is the text after d. Every entry is
// transformed over d so that undoing it reverts only this session's edit
// and leaves d in place. The redo stack is dropped.
//
// On error the history is unchanged and no longer matches the text; the
// caller should Clear it.
func (h *History) Rebase(d diff.Diff, current rope.Rope) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := slices.Clone(h.undoStack)
	if h.group != nil {
		entries = append(entries, h.group)
	}

	rebased := make([]*Entry, len(entries))
	r, text := d, current
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		inv, next, err := diff.Transform(e.Inverse, r)
		if err != nil {
			return fmt.Errorf("rebase history: %w", err)
		}
		prev, err := diff.Apply(inv, text)
		if err != nil {
			return fmt.Errorf("rebase history: %w", err)
		}
		fwd, err := diff.Invert(inv, text)
		if err != nil {
			return fmt.Errorf("rebase history: %w", err)
		}

		out := e.Clone()
		out.Forward, out.Inverse = fwd, inv
		out.CursorsBefore = moveCursors(e.CursorsBefore, next)
		out.CursorsAfter = moveCursors(e.CursorsAfter, r)
		rebased[i] = out

		r, text = next, prev
	}

	if h.group != nil {
		h.group = rebased[len(rebased)-1]
		rebased = rebased[:len(rebased)-1]
	}
	h.undoStack = rebased
	h.redoStack = nil
	h.sealed = true
	h.log.Debug("rebased history", "entries", len(entries))
	return nil
}

func moveCursors(cs []cursor.Cursor, d diff.Diff) []cursor.Cursor {
	out := make([]cursor.Cursor, len(cs))
	for i, c := range cs {
		out[i] = cursor.ApplyDiff(c, d, false)
	}
	return out
}
