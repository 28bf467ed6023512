// Package cursor provides cursors, multi-cursor sets and cursor motion.
//
// Selection Model:
//
// A Cursor is a caret and an anchor. The caret is where typing happens;
// the anchor is where the selection started. When they are equal the
// cursor is empty. A cursor is forward when its caret is not before its
// anchor. Cursors also remember a sticky visual column so that vertical
// motion across short lines keeps its horizontal intent.
//
// Multi-Cursor Support:
//
// Set holds the most recently placed cursor (the latest) apart from the
// others, which are kept sorted by start and free of overlaps. Moving the
// latest cursor only merges it with the cursors it touches; updating every
// cursor re-sorts and sweeps the whole set. A set always holds at least
// one cursor.
//
// Cursors touching each other merge. The merged cursor covers both ranges
// and takes the direction of the survivor: a non-empty cursor wins over
// an empty one, then a shared direction, then the latest cursor, then the
// longer cursor. Two cursors of equal length and opposite direction have
// no defined merge; merging them panics with ErrMergeUndefined.
//
// Edits:
//
// After a diff is applied to the text, Set.ApplyDiff moves every cursor
// through it. Local edits carry each caret past its own insertion and
// collapse the selection. Remote edits keep selections, growing them
// for text inserted strictly inside and never absorbing text inserted at
// their edges.
//
// Basic usage:
//
//	s := cursor.NewSet()
//	s.Push(cursor.At(text.Pos(0, 3)))
//	s.UpdateAll(func(c cursor.Cursor) cursor.Cursor {
//		return cursor.MoveRight(r, c, false)
//	})
//	s.ApplyDiff(d, true)
//
// Thread Safety:
//
// Cursor is an immutable value type. Set is not safe for concurrent use.
package cursor
