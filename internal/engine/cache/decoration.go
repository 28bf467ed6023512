package cache

import (
	"cmp"
	"slices"

	"github.com/dshills/ropecore/internal/engine/diff"
	"github.com/dshills/ropecore/internal/engine/grapheme"
	"github.com/dshills/ropecore/internal/engine/rope"
)

// MessageID identifies the message attached to a decoration, such as a
// diagnostic held by the host.
type MessageID uint32

// Span is a decoration covering visual columns [StartCol, EndCol) of a line.
type Span struct {
	StartCol int
	EndCol   int
	Message  MessageID
}

// DecorationSource provides the decorations of a line.
type DecorationSource interface {
	// Decorations returns the spans for line, whose current text is given.
	Decorations(line int, text string) []Span
}

// DecorationCache tracks decoration spans per line.
//
// Spans are kept sorted by start column. When a line is dirtied by an
// edit, Refresh asks the source for new spans if there is one; otherwise
// the old spans are clamped to the line's new width and empty ones are
// dropped.
type DecorationCache struct {
	lines  *Lines[[]Span]
	m      grapheme.Measurer
	source DecorationSource
}

// NewDecorationCache creates a decoration cache for r. source may be nil.
func NewDecorationCache(r rope.Rope, m grapheme.Measurer, source DecorationSource) *DecorationCache {
	c := &DecorationCache{lines: NewLines[[]Span](r.LenLines()), m: m, source: source}
	c.Refresh(r)
	return c
}

// SetSource replaces the decoration source. Every line is marked dirty.
func (c *DecorationCache) SetSource(source DecorationSource) {
	c.source = source
	for line := 0; line < c.lines.Len(); line++ {
		c.lines.MarkDirty(line)
	}
}

// Len returns the number of lines in the cache.
func (c *DecorationCache) Len() int {
	return c.lines.Len()
}

// Spans returns a copy of the spans on line.
func (c *DecorationCache) Spans(line int) []Span {
	return slices.Clone(c.lines.Value(line))
}

// Set replaces the spans on line.
func (c *DecorationCache) Set(line int, spans []Span) {
	spans = slices.Clone(spans)
	sortSpans(spans)
	c.lines.Set(line, spans)
}

// Add inserts a span on line.
func (c *DecorationCache) Add(line int, s Span) {
	spans := c.lines.Value(line)
	i, _ := slices.BinarySearchFunc(spans, s, compareSpan)
	c.lines.Update(line, slices.Insert(slices.Clip(spans), i, s))
}

// Clear removes every span on line.
func (c *DecorationCache) Clear(line int) {
	c.lines.Update(line, nil)
}

// ClearAll removes every span in the cache.
func (c *DecorationCache) ClearAll() {
	for line := 0; line < c.lines.Len(); line++ {
		c.lines.Update(line, nil)
	}
}

// Invalidate realigns the cache with text edited by d.
func (c *DecorationCache) Invalidate(d diff.Diff) {
	c.lines.Invalidate(d)
}

// Refresh recomputes dirty lines from r and returns how many it touched.
func (c *DecorationCache) Refresh(r rope.Rope) int {
	c.lines.Check(r)
	n := 0
	for line := range c.lines.Dirty() {
		text := lineText(r, line)
		spans := c.lines.Value(line)
		if c.source != nil {
			spans = slices.Clone(c.source.Decorations(line, text))
			sortSpans(spans)
		}
		c.lines.Set(line, clampSpans(spans, c.m.Width(text)))
		n++
	}
	return n
}

func clampSpans(spans []Span, width int) []Span {
	out := spans[:0]
	for _, s := range spans {
		s.StartCol = max(0, min(s.StartCol, width))
		s.EndCol = min(s.EndCol, width)
		if s.EndCol > s.StartCol {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sortSpans(spans []Span) {
	slices.SortStableFunc(spans, compareSpan)
}

func compareSpan(a, b Span) int {
	return cmp.Or(cmp.Compare(a.StartCol, b.StartCol), cmp.Compare(a.EndCol, b.EndCol))
}
