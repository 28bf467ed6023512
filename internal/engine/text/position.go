// Package text defines line-aware positions, lengths and ranges.
//
// A Position addresses a byte within a line. A Length is the distance
// between two positions, measured as a number of line breaks crossed plus
// the bytes on the final line. Adding a Length to a Position therefore
// resets the byte column whenever a line break is crossed, which makes
// Length addition associative but not commutative.
package text

import "fmt"

// Position is a 0-based (line, byte-in-line) pair.
type Position struct {
	Line int
	Byte int
}

// Pos is shorthand for Position{Line: line, Byte: b}.
func Pos(line, b int) Position {
	return Position{Line: line, Byte: b}
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Byte)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Position) Compare(other Position) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Byte < other.Byte:
		return -1
	case p.Byte > other.Byte:
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Position) After(other Position) bool {
	return p.Compare(other) > 0
}

// IsZero returns true for the origin.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Byte == 0
}

// Add advances p by l.
func (p Position) Add(l Length) Position {
	if l.Lines == 0 {
		return Position{Line: p.Line, Byte: p.Byte + l.Bytes}
	}
	return Position{Line: p.Line + l.Lines, Byte: l.Bytes}
}

// Sub returns the length from origin to p. It panics if origin is after p.
func (p Position) Sub(origin Position) Length {
	if p.Before(origin) {
		panic(fmt.Sprintf("text: position %v before %v", p, origin))
	}
	if p.Line == origin.Line {
		return Length{Bytes: p.Byte - origin.Byte}
	}
	return Length{Lines: p.Line - origin.Line, Bytes: p.Byte}
}

// ToLength returns the distance of p from the origin.
func (p Position) ToLength() Length {
	return Length{Lines: p.Line, Bytes: p.Byte}
}

// Min returns the earlier of two positions.
func Min(a, b Position) Position {
	if b.Before(a) {
		return b
	}
	return a
}

// Max returns the later of two positions.
func Max(a, b Position) Position {
	if b.After(a) {
		return b
	}
	return a
}
