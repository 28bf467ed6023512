package text

import "fmt"

// Range is a span of text. Start is inclusive, End is exclusive.
type Range struct {
	Start Position
	End   Position
}

// NewRange creates a range, swapping the ends if needed.
func NewRange(a, b Position) Range {
	if b.Before(a) {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// RangeAt returns the range of length l starting at start.
func RangeAt(start Position, l Length) Range {
	return Range{Start: start, End: start.Add(l)}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%v-%v)", r.Start, r.End)
}

// Len returns the length spanned by the range.
func (r Range) Len() Length {
	return r.End.Sub(r.Start)
}

// IsEmpty returns true if the range spans nothing.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Contains reports whether p lies in [Start, End).
func (r Range) Contains(p Position) bool {
	return !p.Before(r.Start) && p.Before(r.End)
}

// Overlaps returns true if the ranges share at least one position.
func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Touches returns true if the ranges overlap or meet end to start.
func (r Range) Touches(other Range) bool {
	return !r.End.Before(other.Start) && !other.End.Before(r.Start)
}

// Union returns the smallest range covering both.
func (r Range) Union(other Range) Range {
	return Range{Start: Min(r.Start, other.Start), End: Max(r.End, other.End)}
}

// Lines returns the number of line breaks the range crosses.
func (r Range) Lines() int {
	return r.End.Line - r.Start.Line
}
