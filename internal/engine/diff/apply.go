package diff

import (
	"iter"

	"github.com/dshills/ropecore/internal/engine/rope"
	"github.com/dshills/ropecore/internal/engine/text"
)

// Apply returns r with d applied. The rope is left untouched on error.
func Apply(d Diff, r rope.Rope) (rope.Rope, error) {
	if base := d.BaseLen(); base != r.Length() {
		return r, mismatch("apply", base, r.Length())
	}
	if d.IsIdentity() {
		return r, nil
	}

	ops := make([]rope.Op, 0, len(d.ops))
	var pos text.Position
	off := 0
	for _, op := range d.ops {
		if op.Kind == Insert {
			ops = append(ops, rope.Insert(op.Text))
			continue
		}
		end := pos.Add(op.Len)
		if r.ClampPosition(end) != end {
			return r, mismatch("apply", end.ToLength(), r.Length())
		}
		endOff := r.PositionToOffset(end)
		if op.Kind == Retain {
			ops = append(ops, rope.Retain(endOff-off))
		} else {
			ops = append(ops, rope.Delete(endOff-off))
		}
		pos, off = end, endOff
	}
	return r.Edit(ops), nil
}

// Mode decides where a position lands when text is inserted exactly at it.
type Mode uint8

const (
	// InsertBefore treats the insertion as happening before the position,
	// which ends up after the inserted text.
	InsertBefore Mode = iota
	// InsertAfter treats the insertion as happening after the position,
	// which stays in front of the inserted text.
	InsertAfter
)

func (m Mode) String() string {
	if m == InsertAfter {
		return "insert-after"
	}
	return "insert-before"
}

// ApplyToPosition maps p through d. A position inside a retained run keeps
// its distance from the start of the run; a position inside a deleted run
// collapses to where the run was. An insertion at the position moves it
// past the inserted text only in InsertBefore mode.
func ApplyToPosition(p text.Position, d Diff, mode Mode) text.Position {
	var oldPos, newPos text.Position
	for _, op := range d.ops {
		switch op.Kind {
		case Retain:
			end := oldPos.Add(op.Len)
			if p.Before(end) {
				return newPos.Add(p.Sub(oldPos))
			}
			oldPos, newPos = end, newPos.Add(op.Len)
		case Delete:
			end := oldPos.Add(op.Len)
			if p.Before(end) {
				p = end
			}
			oldPos = end
		case Insert:
			if p == oldPos && mode == InsertAfter {
				return newPos
			}
			newPos = newPos.Add(op.Len)
		}
	}
	return newPos.Add(p.Sub(oldPos))
}

// OperationRange locates a non-retain operation. For an insert, Old is the
// empty range at the insertion point in the base text and New spans the
// inserted text in the result. For a delete, Old spans the deleted text and
// New is the empty range where it was.
//
// New ranges are measured in a text where all earlier operations have
// been applied and later ones have not, so a line-indexed structure can be
// updated in place by visiting the ranges in order.
type OperationRange struct {
	Kind Kind
	Old  text.Range
	New  text.Range
}

// OperationRanges yields the location of every insert and delete in order.
func (d Diff) OperationRanges() iter.Seq[OperationRange] {
	return func(yield func(OperationRange) bool) {
		var oldPos, newPos text.Position
		for _, op := range d.ops {
			switch op.Kind {
			case Retain:
				oldPos, newPos = oldPos.Add(op.Len), newPos.Add(op.Len)
			case Insert:
				end := newPos.Add(op.Len)
				if !yield(OperationRange{
					Kind: Insert,
					Old:  text.Range{Start: oldPos, End: oldPos},
					New:  text.Range{Start: newPos, End: end},
				}) {
					return
				}
				newPos = end
			case Delete:
				end := oldPos.Add(op.Len)
				if !yield(OperationRange{
					Kind: Delete,
					Old:  text.Range{Start: oldPos, End: end},
					New:  text.Range{Start: newPos, End: newPos},
				}) {
					return
				}
				oldPos = end
			}
		}
	}
}
