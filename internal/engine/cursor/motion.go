package cursor

import (
	"strings"

	"github.com/dshills/ropecore/internal/engine/grapheme"
	"github.com/dshills/ropecore/internal/engine/rope"
	"github.com/dshills/ropecore/internal/engine/text"
)

// lineContent returns the text of line up to its visual end, which
// excludes a carriage return that precedes the line feed.
func lineContent(r rope.Rope, line int) string {
	s := r.LineText(line)
	if line < r.LenLines()-1 {
		s = strings.TrimSuffix(s, "\r")
	}
	return s
}

// LineEnd returns the byte offset of the visual end of line.
func LineEnd(r rope.Rope, line int) int {
	return len(lineContent(r, line))
}

// MoveLeft moves the caret to the previous grapheme boundary. At the start
// of a line it moves to the end of the previous line; at the start of the
// text it does nothing.
func MoveLeft(r rope.Rope, c Cursor, extend bool) Cursor {
	p := c.Caret
	switch {
	case p.Byte > 0:
		line := r.LineText(p.Line)
		p.Byte, _ = grapheme.PrevBoundary(line, min(p.Byte, len(line)))
	case p.Line > 0:
		p = text.Pos(p.Line-1, LineEnd(r, p.Line-1))
	default:
		return c
	}
	return c.MoveTo(p, extend)
}

// MoveRight moves the caret to the next grapheme boundary. At the end of a
// line it moves to the start of the next line; at the end of the text it
// does nothing.
func MoveRight(r rope.Rope, c Cursor, extend bool) Cursor {
	p := c.Caret
	line := lineContent(r, p.Line)
	switch {
	case p.Byte < len(line):
		p.Byte, _ = grapheme.NextBoundary(line, p.Byte)
	case p.Line < r.LenLines()-1:
		p = text.Pos(p.Line+1, 0)
	default:
		return c
	}
	return c.MoveTo(p, extend)
}

// MoveUp moves the caret to the same visual column on the previous line,
// clamped to its end. The column is remembered across vertical moves. On
// the first line the caret moves to the start of the line and the column
// is forgotten.
func MoveUp(r rope.Rope, m grapheme.Measurer, c Cursor, extend bool) Cursor {
	if c.Caret.Line == 0 {
		return c.MoveTo(text.Pos(0, 0), extend)
	}
	col := stickyColumn(r, m, c)
	line := c.Caret.Line - 1
	b := m.ByteAtColumn(lineContent(r, line), col)
	return c.MoveTo(text.Pos(line, b), extend).WithSticky(col)
}

// MoveDown moves the caret to the same visual column on the next line,
// clamped to its end. On the last line the caret moves to the end of the
// line and the column is forgotten.
func MoveDown(r rope.Rope, m grapheme.Measurer, c Cursor, extend bool) Cursor {
	last := r.LenLines() - 1
	if c.Caret.Line >= last {
		return c.MoveTo(text.Pos(last, LineEnd(r, last)), extend)
	}
	col := stickyColumn(r, m, c)
	line := c.Caret.Line + 1
	b := m.ByteAtColumn(lineContent(r, line), col)
	return c.MoveTo(text.Pos(line, b), extend).WithSticky(col)
}

func stickyColumn(r rope.Rope, m grapheme.Measurer, c Cursor) int {
	if col, ok := c.Sticky(); ok {
		return col
	}
	return m.Column(lineContent(r, c.Caret.Line), c.Caret.Byte)
}

// MoveToLineStart moves the caret to the start of its line.
func MoveToLineStart(c Cursor, extend bool) Cursor {
	return c.MoveTo(text.Pos(c.Caret.Line, 0), extend)
}

// MoveToLineEnd moves the caret to the visual end of its line.
func MoveToLineEnd(r rope.Rope, c Cursor, extend bool) Cursor {
	return c.MoveTo(text.Pos(c.Caret.Line, LineEnd(r, c.Caret.Line)), extend)
}

// MoveToTextStart moves the caret to the origin.
func MoveToTextStart(c Cursor, extend bool) Cursor {
	return c.MoveTo(text.Position{}, extend)
}

// MoveToTextEnd moves the caret to the end of the text.
func MoveToTextEnd(r rope.Rope, c Cursor, extend bool) Cursor {
	return c.MoveTo(r.Length().ToPosition(), extend)
}

// SelectAll returns a forward cursor covering the whole text.
func SelectAll(r rope.Rope) Cursor {
	return Select(text.Position{}, r.Length().ToPosition())
}
