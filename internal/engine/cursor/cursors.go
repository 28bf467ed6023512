package cursor

import (
	"fmt"
	"iter"
	"slices"

	"github.com/dshills/ropecore/internal/engine/text"
)

// Set manages multiple cursors. The latest cursor is held apart; the
// earlier ones are sorted by start and never touch each other or the
// latest one.
type Set struct {
	latest  Cursor
	earlier []Cursor
}

// NewSet creates a set with one empty cursor at the origin.
func NewSet() *Set {
	return &Set{}
}

// NewSetFrom creates a set from cursors. The last cursor becomes the
// latest one. An empty argument list yields NewSet().
func NewSetFrom(cursors ...Cursor) *Set {
	s := &Set{}
	if len(cursors) == 0 {
		return s
	}
	s.latest = cursors[len(cursors)-1]
	s.earlier = slices.Clone(cursors[:len(cursors)-1])
	s.Normalize()
	return s
}

// Len returns the number of cursors.
func (s *Set) Len() int {
	return len(s.earlier) + 1
}

// IsMulti returns true if there are multiple cursors.
func (s *Set) IsMulti() bool {
	return len(s.earlier) > 0
}

// Latest returns the most recently placed cursor.
func (s *Set) Latest() Cursor {
	return s.latest
}

// All yields every cursor in ascending start order.
func (s *Set) All() iter.Seq[Cursor] {
	return func(yield func(Cursor) bool) {
		placed := false
		for _, c := range s.earlier {
			if !placed && s.latest.Start().Before(c.Start()) {
				placed = true
				if !yield(s.latest) {
					return
				}
			}
			if !yield(c) {
				return
			}
		}
		if !placed {
			yield(s.latest)
		}
	}
}

// Slice returns a copy of all cursors in ascending start order.
func (s *Set) Slice() []Cursor {
	return slices.Collect(s.All())
}

// Ranges returns the selected range of every cursor in ascending order.
func (s *Set) Ranges() []text.Range {
	out := make([]text.Range, 0, s.Len())
	for c := range s.All() {
		out = append(out, c.Range())
	}
	return out
}

// HasSelection returns true if any cursor is non-empty.
func (s *Set) HasSelection() bool {
	for c := range s.All() {
		if !c.IsEmpty() {
			return true
		}
	}
	return false
}

// Push makes c the latest cursor, keeping the previous latest one.
func (s *Set) Push(c Cursor) {
	i, _ := slices.BinarySearchFunc(s.earlier, s.latest.Start(), compareStart)
	s.earlier = slices.Insert(s.earlier, i, s.latest)
	s.latest = c
	s.mergeLatest()
}

// Set replaces every cursor with c.
func (s *Set) Set(c Cursor) {
	s.latest = c
	s.earlier = nil
}

// ClearEarlier removes every cursor except the latest.
func (s *Set) ClearEarlier() {
	s.earlier = nil
}

// UpdateLatest replaces the latest cursor with f(latest).
func (s *Set) UpdateLatest(f func(Cursor) Cursor) {
	s.latest = f(s.latest)
	s.mergeLatest()
}

// UpdateAll replaces every cursor c with f(c).
func (s *Set) UpdateAll(f func(Cursor) Cursor) {
	s.latest = f(s.latest)
	for i, c := range s.earlier {
		s.earlier[i] = f(c)
	}
	s.Normalize()
}

// Normalize sorts the cursors and merges those that touch.
// It is a no-op on a normalized set.
func (s *Set) Normalize() {
	type entry struct {
		c      Cursor
		latest bool
	}
	all := make([]entry, 0, s.Len())
	all = append(all, entry{c: s.latest, latest: true})
	for _, c := range s.earlier {
		all = append(all, entry{c: c})
	}
	slices.SortStableFunc(all, func(a, b entry) int {
		return a.c.Start().Compare(b.c.Start())
	})

	merged := all[:1]
	for _, e := range all[1:] {
		last := &merged[len(merged)-1]
		if !touches(last.c, e.c) {
			merged = append(merged, e)
			continue
		}
		switch {
		case last.latest:
			last.c = merge(last.c, e.c, 0)
		case e.latest:
			last.c = merge(last.c, e.c, 1)
			last.latest = true
		default:
			last.c = merge(last.c, e.c, -1)
		}
	}

	s.earlier = s.earlier[:0]
	for _, e := range merged {
		if e.latest {
			s.latest = e.c
		} else {
			s.earlier = append(s.earlier, e.c)
		}
	}
}

// mergeLatest merges the latest cursor with every earlier cursor it
// touches. Merging can grow the latest cursor, so it repeats until stable.
func (s *Set) mergeLatest() {
	for changed := true; changed; {
		changed = false
		kept := s.earlier[:0]
		for _, c := range s.earlier {
			if !touches(c, s.latest) {
				kept = append(kept, c)
				continue
			}
			if c.Start().Compare(s.latest.Start()) <= 0 {
				s.latest = merge(c, s.latest, 1)
			} else {
				s.latest = merge(s.latest, c, 0)
			}
			changed = true
		}
		s.earlier = kept
	}
}

func (s *Set) String() string {
	return fmt.Sprintf("Set%v", s.Slice())
}

func compareStart(c Cursor, p text.Position) int {
	return c.Start().Compare(p)
}

// touches reports whether two cursors overlap, or meet while one of them
// is empty.
func touches(a, b Cursor) bool {
	if b.Start().Before(a.Start()) {
		a, b = b, a
	}
	if a.IsEmpty() || b.IsEmpty() {
		return !a.End().Before(b.Start())
	}
	return a.End().After(b.Start())
}

// merge combines two touching cursors, a starting no later than b.
// latest is 0 or 1 when a or b is the latest cursor, or -1.
func merge(a, b Cursor, latest int) Cursor {
	pair := [2]Cursor{a, b}
	survivor := -1
	switch {
	case a.IsEmpty() && b.IsEmpty():
		survivor = max(latest, 0)
	case b.IsEmpty():
		survivor = 0
	case a.IsEmpty():
		survivor = 1
	case a.IsForward() == b.IsForward():
		survivor = max(latest, 0)
	case latest >= 0:
		survivor = latest
	default:
		switch a.Range().Len().Compare(b.Range().Len()) {
		case 1:
			survivor = 0
		case -1:
			survivor = 1
		default:
			panic(fmt.Errorf("%w: %v and %v", ErrMergeUndefined, a, b))
		}
	}

	win := pair[survivor]
	r := a.Range().Union(b.Range())
	out := Cursor{Caret: r.End, Anchor: r.Start}
	if !win.IsForward() {
		out = Cursor{Caret: r.Start, Anchor: r.End}
	}
	if out.Caret == win.Caret {
		out.sticky = win.sticky
	}
	return out
}
