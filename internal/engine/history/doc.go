// Package history provides undo/redo for the editing engine.
//
// Every undoable edit is recorded as an Entry: the diff that was applied,
// its inverse computed against the text it was applied to, and the cursor
// positions before and after. Undo applies the inverse and restores the
// earlier cursors; Redo applies the forward diff again.
//
// # History Stack
//
// The History type manages the undo and redo stacks:
//
//	h := NewHistory(1000) // Max 1000 undo entries
//
//	entry, err := NewEntry(d, before)
//	h.Push(entry.WithCursors(cursorsBefore, cursorsAfter))
//
//	h.Undo(apply) // apply(entry.Inverse, entry.CursorsBefore)
//	h.Redo(apply) // apply(entry.Forward, entry.CursorsAfter)
//
// # Coalescing
//
// Consecutive entries of a kind that coalesces, such as typed characters
// or backspaces, are composed into one entry so a run of typing undoes in
// one step. BreakCoalescing ends the current run; the engine calls it when
// a cursor moves.
//
// # Grouping
//
// Entries pushed between BeginGroup and EndGroup are composed into a single
// undo unit:
//
//	h.BeginGroup("Replace All")
//	// ... multiple edits ...
//	h.EndGroup()
//
// # Remote Edits
//
// Rebase transforms every entry over an edit made elsewhere, so that undo
// keeps that edit and reverts only the entry's own.
package history
