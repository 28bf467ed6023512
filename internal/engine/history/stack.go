package history

import (
	"errors"
	"sync"

	"github.com/dshills/ropecore/internal/engine/cursor"
	"github.com/dshills/ropecore/internal/engine/diff"
	"github.com/dshills/ropecore/internal/logging"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// ApplyFunc applies d to the text and replaces the cursors.
type ApplyFunc func(d diff.Diff, cursors []cursor.Cursor) error

// History manages undo/redo state for a text.
type History struct {
	mu sync.Mutex

	undoStack []*Entry
	redoStack []*Entry

	// Grouping state
	grouping  bool
	groupName string
	group     *Entry

	// sealed stops the next push from coalescing with the top entry.
	sealed bool

	// Configuration
	maxEntries int
	log        *logging.Logger
}

// NewHistory creates a new history manager.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = 1000 // Default
	}
	return &History{
		maxEntries: maxEntries,
	}
}

// SetLogger sets the logger used for debug output.
func (h *History) SetLogger(l *logging.Logger) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.log = l.WithComponent("history")
}

// Push adds an entry to the undo stack and clears the redo stack.
// While grouping, the entry is composed into the open group instead.
func (h *History) Push(e *Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		if h.group == nil {
			h.group = e.Clone()
			h.group.Kind = KindOther
			h.group.Description = h.groupName
			return nil
		}
		g, err := h.group.Compose(e)
		if err != nil {
			return err
		}
		h.group = g
		return nil
	}

	return h.pushLocked(e)
}

// pushLocked adds an entry without acquiring the lock.
func (h *History) pushLocked(e *Entry) error {
	h.redoStack = nil

	if n := len(h.undoStack); n > 0 && !h.sealed && e.Kind.Coalesces() && h.undoStack[n-1].Kind == e.Kind {
		merged, err := h.undoStack[n-1].Compose(e)
		if err != nil {
			return err
		}
		h.undoStack[n-1] = merged
		h.log.Debug("coalesced entry", "kind", e.Kind, "depth", n)
		return nil
	}

	h.undoStack = append(h.undoStack, e)
	h.sealed = false

	// Enforce max entries
	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
	h.log.Debug("pushed entry", "kind", e.Kind, "depth", len(h.undoStack))
	return nil
}

// BreakCoalescing makes the next pushed entry start a new undo step.
func (h *History) BreakCoalescing() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sealed = true
}

// Undo undoes the last entry by passing its inverse and earlier cursors to
// apply. The lock is released while apply runs. If apply fails the entry
// stays on the undo stack.
func (h *History) Undo(apply ApplyFunc) error {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToUndo
	}

	entry := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.mu.Unlock()

	if err := apply(entry.Inverse, entry.CursorsBefore); err != nil {
		// Restore entry on failure
		h.mu.Lock()
		h.undoStack = append(h.undoStack, entry)
		h.mu.Unlock()
		return err
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, entry)
	h.sealed = true
	h.log.Debug("undo", "kind", entry.Kind, "depth", len(h.undoStack))
	h.mu.Unlock()
	return nil
}

// Redo reapplies the last undone entry.
func (h *History) Redo(apply ApplyFunc) error {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToRedo
	}

	entry := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	if err := apply(entry.Forward, entry.CursorsAfter); err != nil {
		h.mu.Lock()
		h.redoStack = append(h.redoStack, entry)
		h.mu.Unlock()
		return err
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, entry)
	h.sealed = true
	h.log.Debug("redo", "kind", entry.Kind, "depth", len(h.undoStack))
	h.mu.Unlock()
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// BeginGroup starts an entry group.
// Entries pushed while grouping are composed into a single undo unit.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		// Already grouping, ignore nested calls
		return
	}

	h.grouping = true
	h.groupName = name
	h.group = nil
}

// EndGroup finishes an entry group and pushes the composed entry, if any.
func (h *History) EndGroup() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return nil
	}

	h.grouping = false
	g := h.group
	h.group = nil
	if g == nil {
		return nil
	}
	return h.pushLocked(g)
}

// CancelGroup cancels an entry group without adding to history.
// Note: edits already applied still affect the text!
func (h *History) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.grouping = false
	h.group = nil
}

// IsGrouping returns true if currently in a group.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.group = nil
}

// UndoInfo returns info about available undo operations, oldest first.
func (h *History) UndoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.undoStack)
}

// RedoInfo returns info about available redo operations, oldest first.
func (h *History) RedoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.redoStack)
}

func infos(stack []*Entry) []OperationInfo {
	result := make([]OperationInfo, len(stack))
	for i, entry := range stack {
		result[i] = entry.Info()
	}
	return result
}

// PeekUndo returns info about the next undo operation without removing it.
func (h *History) PeekUndo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return OperationInfo{}, false
	}
	return h.undoStack[len(h.undoStack)-1].Info(), true
}

// PeekRedo returns info about the next redo operation without removing it.
func (h *History) PeekRedo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return OperationInfo{}, false
	}
	return h.redoStack[len(h.redoStack)-1].Info(), true
}

// SetMaxEntries changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(n int) {
	if n <= 0 {
		n = 1000
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = n

	if len(h.undoStack) > n {
		excess := len(h.undoStack) - n
		h.undoStack = h.undoStack[excess:]
	}
}

// MaxEntries returns the maximum number of undo entries.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
