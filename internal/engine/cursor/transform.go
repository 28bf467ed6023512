package cursor

import (
	"github.com/dshills/ropecore/internal/engine/diff"
)

// ApplyDiff moves c through d.
//
// Local edits are the ones this cursor made: the caret moves past text
// inserted at it and the anchor collapses onto the caret.
//
// Remote edits were made elsewhere. An empty cursor stays in front of text
// inserted at it. A selection keeps its direction; text inserted at either
// edge stays outside it and deletions shrink it.
func ApplyDiff(c Cursor, d diff.Diff, local bool) Cursor {
	if local {
		return At(diff.ApplyToPosition(c.Caret, d, diff.InsertBefore))
	}
	if c.IsEmpty() {
		p := diff.ApplyToPosition(c.Caret, d, diff.InsertAfter)
		return Cursor{Caret: p, Anchor: p, sticky: c.sticky}
	}

	start := diff.ApplyToPosition(c.Start(), d, diff.InsertBefore)
	end := diff.ApplyToPosition(c.End(), d, diff.InsertAfter)
	if end.Before(start) {
		end = start
	}
	if c.IsForward() {
		return Cursor{Caret: end, Anchor: start, sticky: c.sticky}
	}
	return Cursor{Caret: start, Anchor: end, sticky: c.sticky}
}

// ApplyDiff moves every cursor through d and merges those that now touch.
// It must be called with every diff applied to the text, in order.
func (s *Set) ApplyDiff(d diff.Diff, local bool) {
	s.UpdateAll(func(c Cursor) Cursor {
		return ApplyDiff(c, d, local)
	})
}
