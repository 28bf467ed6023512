package history

import "errors"

// Transaction runs fn with the entries it pushes grouped into one undo
// step. If fn fails, the recorded edits are reverted through rollback and
// nothing is pushed. Inside an open group fn simply joins that group.
func (h *History) Transaction(name string, rollback ApplyFunc, fn func() error) error {
	h.mu.Lock()
	if h.grouping {
		h.mu.Unlock()
		return fn()
	}
	h.grouping = true
	h.groupName = name
	h.group = nil
	h.mu.Unlock()

	if err := fn(); err != nil {
		h.mu.Lock()
		g, log := h.group, h.log
		h.grouping = false
		h.group = nil
		h.mu.Unlock()

		if g == nil || rollback == nil {
			return err
		}
		if rerr := rollback(g.Inverse, g.CursorsBefore); rerr != nil {
			return errors.Join(err, rerr)
		}
		log.Debug("rolled back transaction", "name", name)
		return err
	}

	return h.EndGroup()
}

// Checkpoint represents a point in history that can be returned to.
type Checkpoint struct {
	undoDepth int
}

// CreateCheckpoint creates a checkpoint at the current history position.
func (h *History) CreateCheckpoint() Checkpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Checkpoint{undoDepth: len(h.undoStack)}
}

// UndoToCheckpoint undoes all entries pushed since the checkpoint.
func (h *History) UndoToCheckpoint(cp Checkpoint, apply ApplyFunc) error {
	for h.UndoCount() > cp.undoDepth {
		if err := h.Undo(apply); err != nil {
			return err
		}
	}
	return nil
}

// RedoToCheckpoint redoes entries until the checkpoint depth is reached.
// Note: This only works if the redo stack has the entries.
func (h *History) RedoToCheckpoint(cp Checkpoint, apply ApplyFunc) error {
	for h.UndoCount() < cp.undoDepth && h.CanRedo() {
		if err := h.Redo(apply); err != nil {
			return err
		}
	}
	return nil
}
