package cursor

import (
	"fmt"

	"github.com/dshills/ropecore/internal/engine/text"
)

// Cursor is a caret with an anchor and an optional sticky column.
// Cursor is an immutable value type.
type Cursor struct {
	Caret  text.Position
	Anchor text.Position

	// sticky is the remembered visual column plus one; zero means unset.
	sticky int
}

// At creates an empty cursor at p.
func At(p text.Position) Cursor {
	return Cursor{Caret: p, Anchor: p}
}

// Select creates a cursor selecting from anchor to caret.
func Select(anchor, caret text.Position) Cursor {
	return Cursor{Caret: caret, Anchor: anchor}
}

// IsEmpty returns true if the cursor selects nothing.
func (c Cursor) IsEmpty() bool {
	return c.Caret == c.Anchor
}

// IsForward returns true if the caret is not before the anchor.
func (c Cursor) IsForward() bool {
	return !c.Caret.Before(c.Anchor)
}

// Start returns the lower bound of the selection.
func (c Cursor) Start() text.Position {
	return text.Min(c.Caret, c.Anchor)
}

// End returns the upper bound of the selection.
func (c Cursor) End() text.Position {
	return text.Max(c.Caret, c.Anchor)
}

// Range returns the selected range.
func (c Cursor) Range() text.Range {
	return text.Range{Start: c.Start(), End: c.End()}
}

// Sticky returns the remembered visual column, if any.
func (c Cursor) Sticky() (int, bool) {
	return c.sticky - 1, c.sticky > 0
}

// WithSticky returns c remembering visual column col.
func (c Cursor) WithSticky(col int) Cursor {
	c.sticky = col + 1
	return c
}

// ClearSticky returns c without a remembered column.
func (c Cursor) ClearSticky() Cursor {
	c.sticky = 0
	return c
}

// Collapse returns an empty cursor at the caret, keeping the sticky column.
func (c Cursor) Collapse() Cursor {
	c.Anchor = c.Caret
	return c
}

// MoveTo returns c with the caret at p. Unless extend is set the anchor
// follows the caret. The sticky column is cleared.
func (c Cursor) MoveTo(p text.Position, extend bool) Cursor {
	if extend {
		return Cursor{Caret: p, Anchor: c.Anchor}
	}
	return At(p)
}

// String returns a string representation of the cursor.
func (c Cursor) String() string {
	s := fmt.Sprintf("Cursor(%v", c.Caret)
	if !c.IsEmpty() {
		s += fmt.Sprintf(" anchor %v", c.Anchor)
	}
	if col, ok := c.Sticky(); ok {
		s += fmt.Sprintf(" sticky %d", col)
	}
	return s + ")"
}
