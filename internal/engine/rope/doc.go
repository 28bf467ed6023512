// Package rope provides a persistent rope for efficient text storage and editing.
//
// A rope is a B-tree whose leaves hold bounded UTF-8 chunks and whose
// internal nodes store the aggregated Info (bytes, lines, chars, graphemes)
// of their subtree. Nodes are never mutated after they are published, so a
// Rope value is an immutable snapshot: copying it is O(1), it can be handed
// to other goroutines, and every edit returns a new Rope that shares all
// untouched subtrees with the old one.
//
// Tree shape:
//   - all leaves are at the same depth
//   - internal nodes have at most MaxChildren children and, except for the
//     root, at least MinChildren
//   - a chunk never splits a code point or a grapheme cluster
//
// Basic usage:
//
//	r := rope.FromString("hello\nworld")
//	r = r.Edit([]rope.Op{rope.Retain(6), rope.Insert("brave "), rope.Retain(5)})
//	text := r.String() // "hello\nbrave world"
//
// Traversal uses cursors that keep the root-to-leaf path, so stepping is
// amortised O(1):
//
//	c := r.GraphemeCursorFront()
//	for !c.IsAtBack() {
//		c.MoveNext()
//	}
//
// Misuse (positions out of range, offsets inside a code point, edits whose
// shape does not match the rope) is a programming error and panics with an
// error wrapping one of the sentinel errors in errors.go.
package rope
