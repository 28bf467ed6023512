package diff

import (
	"fmt"

	"github.com/dshills/ropecore/internal/engine/rope"
	"github.com/dshills/ropecore/internal/engine/text"
)

// Invert returns the diff that undoes d. The original must be the text d
// applies to; deleted text is recovered from it.
func Invert(d Diff, original rope.Rope) (Diff, error) {
	if base := d.BaseLen(); base != original.Length() {
		return Diff{}, fmt.Errorf("%w: diff base %v, text %v", ErrBadOriginal, base, original.Length())
	}

	b := NewBuilder()
	var pos text.Position
	for _, op := range d.ops {
		switch op.Kind {
		case Retain:
			b.Retain(op.Len)
			pos = pos.Add(op.Len)
		case Insert:
			b.Delete(op.Len)
		case Delete:
			end := pos.Add(op.Len)
			start := original.PositionToOffset(pos)
			b.Insert(original.Slice(start, original.PositionToOffset(end)).String())
			pos = end
		}
	}
	return b.Finish(), nil
}

// Compose returns a single diff equivalent to applying a and then b.
func Compose(a, b Diff) (Diff, error) {
	if a.TargetLen() != b.BaseLen() {
		return Diff{}, mismatch("compose", a.TargetLen(), b.BaseLen())
	}

	out := NewBuilder()
	sa, sb := newStream(a), newStream(b)
	for sa.ok || sb.ok {
		switch {
		case sa.is(Delete):
			out.Delete(sa.cur.Len)
			sa.next()
		case sb.is(Insert):
			out.Insert(sb.cur.Text)
			sb.next()
		case !sa.ok || !sb.ok:
			return Diff{}, mismatch("compose", a.TargetLen(), b.BaseLen())
		default:
			// a is a retain or insert, b a retain or delete of it.
			ah, bh := cut(sa, sb)
			switch {
			case ah.Kind == Retain && bh.Kind == Retain:
				out.Retain(ah.Len)
			case ah.Kind == Retain && bh.Kind == Delete:
				out.Delete(ah.Len)
			case ah.Kind == Insert && bh.Kind == Retain:
				out.Insert(ah.Text)
			}
		}
	}
	return out.Finish(), nil
}

// Transform rebases two diffs made against the same text onto each other.
// It returns (a', b') such that a followed by b' equals b followed by a'.
//
// When both diffs insert at the same position, the insert whose text sorts
// first goes first; for equal texts, a's insert goes first. Transform(b, a)
// is therefore the mirror image of Transform(a, b).
func Transform(a, b Diff) (Diff, Diff, error) {
	if a.BaseLen() != b.BaseLen() {
		return Diff{}, Diff{}, mismatch("transform", a.BaseLen(), b.BaseLen())
	}

	outA, outB := NewBuilder(), NewBuilder()
	sa, sb := newStream(a), newStream(b)
	for sa.ok || sb.ok {
		switch {
		case sa.is(Insert) && (!sb.is(Insert) || sa.cur.Text <= sb.cur.Text):
			outA.Insert(sa.cur.Text)
			outB.Retain(sa.cur.Len)
			sa.next()
		case sb.is(Insert):
			outA.Retain(sb.cur.Len)
			outB.Insert(sb.cur.Text)
			sb.next()
		case !sa.ok || !sb.ok:
			return Diff{}, Diff{}, mismatch("transform", a.BaseLen(), b.BaseLen())
		default:
			ah, bh := cut(sa, sb)
			switch {
			case ah.Kind == Retain && bh.Kind == Retain:
				outA.Retain(ah.Len)
				outB.Retain(ah.Len)
			case ah.Kind == Delete && bh.Kind == Retain:
				outA.Delete(ah.Len)
			case ah.Kind == Retain && bh.Kind == Delete:
				outB.Delete(ah.Len)
			}
		}
	}
	return outA.Finish(), outB.Finish(), nil
}
