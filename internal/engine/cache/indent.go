package cache

import (
	"github.com/dshills/ropecore/internal/engine/diff"
	"github.com/dshills/ropecore/internal/engine/grapheme"
	"github.com/dshills/ropecore/internal/engine/rope"
)

// Indent describes the indentation of one line in visual columns.
type Indent struct {
	// Leading is the width of the line's leading whitespace.
	Leading int

	// Blank is true if the line holds only whitespace.
	Blank bool

	// Above is the Leading width of the nearest non-blank line above,
	// or 0 if there is none.
	Above int

	// Below is the Leading width of the nearest non-blank line below,
	// or 0 if there is none.
	Below int
}

// Virtual returns the indentation a line appears to have. Blank lines take
// the deeper of their neighbours so indent guides run through them.
func (i Indent) Virtual() int {
	if !i.Blank {
		return i.Leading
	}
	return max(i.Above, i.Below)
}

// IndentCache tracks the indentation of every line.
type IndentCache struct {
	lines *Lines[Indent]
	m     grapheme.Measurer
	stale bool
}

// NewIndentCache creates an indent cache for r and fills it.
func NewIndentCache(r rope.Rope, m grapheme.Measurer) *IndentCache {
	c := &IndentCache{lines: NewLines[Indent](r.LenLines()), m: m}
	c.Refresh(r)
	return c
}

// Len returns the number of lines in the cache.
func (c *IndentCache) Len() int {
	return c.lines.Len()
}

// Get returns the indentation of line as of the last Refresh.
func (c *IndentCache) Get(line int) Indent {
	return c.lines.Value(line)
}

// Virtual returns the virtual indentation of line.
func (c *IndentCache) Virtual(line int) int {
	return c.lines.Value(line).Virtual()
}

// IsDirty reports whether any line awaits a Refresh.
func (c *IndentCache) IsDirty() bool {
	return c.stale
}

// Invalidate realigns the cache with text edited by d.
func (c *IndentCache) Invalidate(d diff.Diff) {
	c.lines.Invalidate(d)
	c.stale = true
}

// Reset marks every line dirty and resizes the cache to r.
func (c *IndentCache) Reset(r rope.Rope) {
	c.lines.Reset(r.LenLines())
	c.Refresh(r)
}

// Refresh recomputes dirty lines from r and then recomputes the above and
// below summaries of every line. It returns the number of lines measured.
func (c *IndentCache) Refresh(r rope.Rope) int {
	c.lines.Check(r)
	if !c.stale && c.lines.DirtyCount() == 0 {
		return 0
	}

	n := 0
	for line := range c.lines.Dirty() {
		w, blank := c.m.LeadingWidth(lineText(r, line))
		c.lines.Set(line, Indent{Leading: w, Blank: blank})
		n++
	}

	above := 0
	for line := 0; line < c.lines.Len(); line++ {
		in := c.lines.Value(line)
		in.Above = above
		if !in.Blank {
			above = in.Leading
		}
		c.lines.Update(line, in)
	}
	below := 0
	for line := c.lines.Len() - 1; line >= 0; line-- {
		in := c.lines.Value(line)
		in.Below = below
		if !in.Blank {
			below = in.Leading
		}
		c.lines.Update(line, in)
	}

	c.stale = false
	return n
}
