package cache

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/dshills/ropecore/internal/engine/diff"
	"github.com/dshills/ropecore/internal/engine/rope"
)

type entry[T any] struct {
	value T
	dirty bool
}

// Lines is a per-line vector of T with a dirty flag on every line.
type Lines[T any] struct {
	entries []entry[T]
}

// NewLines creates a cache of n dirty lines.
func NewLines[T any](n int) *Lines[T] {
	c := &Lines[T]{}
	c.Reset(n)
	return c
}

// Reset discards every entry and resizes the cache to n dirty lines.
func (c *Lines[T]) Reset(n int) {
	c.entries = make([]entry[T], n)
	for i := range c.entries {
		c.entries[i].dirty = true
	}
}

// Len returns the number of lines.
func (c *Lines[T]) Len() int {
	return len(c.entries)
}

// Value returns the payload of line, which may be stale if the line is
// dirty.
func (c *Lines[T]) Value(line int) T {
	return c.entries[c.index(line)].value
}

// Set stores the payload of line and marks it clean.
func (c *Lines[T]) Set(line int, v T) {
	c.entries[c.index(line)] = entry[T]{value: v}
}

// Update replaces the payload of line without changing its dirty flag.
func (c *Lines[T]) Update(line int, v T) {
	c.entries[c.index(line)].value = v
}

// IsDirty reports whether line needs recomputing.
func (c *Lines[T]) IsDirty(line int) bool {
	return c.entries[c.index(line)].dirty
}

// MarkDirty flags line for recomputation.
func (c *Lines[T]) MarkDirty(line int) {
	c.entries[c.index(line)].dirty = true
}

// DirtyCount returns the number of dirty lines.
func (c *Lines[T]) DirtyCount() int {
	n := 0
	for _, e := range c.entries {
		if e.dirty {
			n++
		}
	}
	return n
}

// Dirty yields the index of every dirty line in ascending order.
func (c *Lines[T]) Dirty() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i, e := range c.entries {
			if e.dirty && !yield(i) {
				return
			}
		}
	}
}

// Invalidate realigns the cache with text edited by d.
func (c *Lines[T]) Invalidate(d diff.Diff) {
	for op := range d.OperationRanges() {
		line := op.New.Start.Line
		switch op.Kind {
		case diff.Insert:
			c.entries[c.index(line)].dirty = true
			if k := op.New.Len().Lines; k > 0 {
				fresh := make([]entry[T], k)
				for i := range fresh {
					fresh[i].dirty = true
				}
				c.entries = slices.Insert(c.entries, line+1, fresh...)
			}
		case diff.Delete:
			c.entries[c.index(line)].dirty = true
			if k := op.Old.Len().Lines; k > 0 {
				if line+1+k > len(c.entries) {
					panic(fmt.Errorf("%w: delete of lines %d..%d in %d lines",
						ErrCacheDesync, line, line+k, len(c.entries)))
				}
				c.entries = slices.Delete(c.entries, line+1, line+1+k)
			}
		}
	}
}

// Check panics with ErrCacheDesync if the cache does not have one entry per
// line of r.
func (c *Lines[T]) Check(r rope.Rope) {
	if n := r.LenLines(); n != len(c.entries) {
		panic(fmt.Errorf("%w: cache has %d lines, text has %d", ErrCacheDesync, len(c.entries), n))
	}
}

func (c *Lines[T]) index(line int) int {
	if line < 0 || line >= len(c.entries) {
		panic(fmt.Errorf("%w: line %d of %d", ErrCacheDesync, line, len(c.entries)))
	}
	return line
}

// lineText returns line without its line break.
func lineText(r rope.Rope, line int) string {
	s := r.LineText(line)
	if line < r.LenLines()-1 {
		s = strings.TrimSuffix(s, "\r")
	}
	return s
}
