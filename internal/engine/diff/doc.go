// Package diff describes edits as sequences of retain, insert and delete
// operations over line-aware lengths.
//
// A Diff spans its whole base text: the retained and deleted lengths add up
// to the length of the text it applies to, and the retained and inserted
// lengths add up to the length of the result. Lengths are text.Length
// values, so an operation can cross line breaks without knowing byte
// offsets in the rope.
//
// Diffs form an algebra:
//
//	inv, _ := diff.Invert(d, before)   // undo d
//	ab, _ := diff.Compose(a, b)        // a then b as one diff
//	a2, b2, _ := diff.Transform(a, b)  // a then b2 equals b then a2
//
// Diffs built through Builder are canonical: adjacent operations of the
// same kind are coalesced, zero-length operations are dropped, and a delete
// always precedes an insert at the same position. Canonical diffs with the
// same effect compare equal with Equal.
//
// Length mismatches between diffs, or between a diff and a rope, are
// reported as *LengthMismatchError values wrapping ErrLengthMismatch.
package diff
