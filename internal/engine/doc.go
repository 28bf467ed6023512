// Package engine provides a multi-cursor text editing session.
//
// The engine package serves as the main facade, combining a persistent
// rope, a cursor set, per-line caches, undo/redo history and a revision
// log into a unified, thread-safe API.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - text: Positions, lengths and ranges in line/byte coordinates
//   - rope: Persistent B+ tree rope with byte, line, char and grapheme counts
//   - grapheme: Grapheme boundaries and visual column widths
//   - diff: Edit operations with compose, invert and transform
//   - cursor: Multi-cursor sets, merging and motion
//   - cache: Per-line indentation, decoration and token caches
//   - history: Undo/redo built from inverted diffs
//   - tracking: Revision log for rebasing and snapshots
//
// Every edit is a diff. It is applied to the rope, then to the cursors,
// then to the caches, and is finally recorded in the revision log and,
// for local edits, in the undo history.
//
// # Thread Safety
//
// All Engine operations are thread-safe. The engine uses a read-write mutex
// to allow concurrent reads while serializing writes. Cache reads take the
// write lock because they refresh dirty lines on demand.
//
// # Basic Usage
//
//	e := engine.New(engine.WithContent("Hello, World!"))
//
//	e.SetSelection(text.Pos(0, 7), text.Pos(0, 12))
//	e.InsertText("Go") // "Hello, Go!"
//
//	e.Undo() // "Hello, World!"
//
// # Multi-Cursor Support
//
//	e := engine.New(engine.WithContent("foo\nfoo"))
//	e.SetCursor(text.Pos(0, 0))
//	e.AddCursor(text.Pos(1, 0))
//	e.InsertText("X") // "Xfoo\nXfoo"
//
// Typing at several cursors produces one diff and one undo step. Runs of
// typed characters coalesce into a single undo step until a cursor moves.
//
// Group multiple operations into a single undo unit:
//
//	e.BeginUndoGroup("format code")
//	e.InsertText("fn")
//	e.InsertNewline()
//	e.EndUndoGroup()
//
//	e.Undo() // Undoes both operations at once
//
// Transaction does the same and reverts the edits when fn fails:
//
//	err := e.Transaction("rename", func() error {
//	    return e.InsertText("newName")
//	})
//
// # Remote Edits
//
// A diff made by a collaborator against an older revision is rebased over
// everything applied since and applied as a remote edit:
//
//	rev := e.Revision()
//	// ... local edits ...
//	err := e.Rebase(remoteDiff, rev)
//
// Remote edits are not undoable. Undo still reverts this session's own
// edits, which are rebased over every remote edit.
//
// # Configuration
//
//	s, _ := config.Load("settings.toml")
//	e, err := engine.NewFromConfig(s, engine.WithContent(src))
//
// # Read-Only Mode
//
//	e := engine.New(
//	    engine.WithContent("read-only content"),
//	    engine.WithReadOnly(),
//	)
//
//	err := e.InsertText("text")
//	// err == engine.ErrReadOnly
package engine
