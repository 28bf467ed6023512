package text

import (
	"fmt"
	"strings"
)

// Length is the distance between two positions: Lines line breaks followed
// by Bytes bytes on the last line.
type Length struct {
	Lines int
	Bytes int
}

// Len is shorthand for Length{Lines: lines, Bytes: b}.
func Len(lines, b int) Length {
	return Length{Lines: lines, Bytes: b}
}

// Bytes is a single-line length of n bytes.
func Bytes(n int) Length {
	return Length{Bytes: n}
}

// LengthOf measures s.
func LengthOf(s string) Length {
	lines := strings.Count(s, "\n")
	if lines == 0 {
		return Length{Bytes: len(s)}
	}
	return Length{Lines: lines, Bytes: len(s) - strings.LastIndexByte(s, '\n') - 1}
}

// String returns a human-readable representation of the length.
func (l Length) String() string {
	if l.Lines == 0 {
		return fmt.Sprintf("%db", l.Bytes)
	}
	return fmt.Sprintf("%dl+%db", l.Lines, l.Bytes)
}

// IsZero reports whether l spans nothing.
func (l Length) IsZero() bool {
	return l.Lines == 0 && l.Bytes == 0
}

// Compare orders lengths lexicographically on (Lines, Bytes).
func (l Length) Compare(other Length) int {
	return l.ToPosition().Compare(other.ToPosition())
}

// Add concatenates other after l.
func (l Length) Add(other Length) Length {
	if other.Lines == 0 {
		return Length{Lines: l.Lines, Bytes: l.Bytes + other.Bytes}
	}
	return Length{Lines: l.Lines + other.Lines, Bytes: other.Bytes}
}

// Sub removes the prefix other from l. It panics if other is longer than l.
func (l Length) Sub(other Length) Length {
	return l.ToPosition().Sub(other.ToPosition())
}

// ToPosition returns the position reached by l from the origin.
func (l Length) ToPosition() Position {
	return Position{Line: l.Lines, Byte: l.Bytes}
}

// OffsetOf returns the byte offset in s reached by advancing l from the
// start of s. It panics if s is shorter than l.
func OffsetOf(s string, l Length) int {
	off := 0
	for i := 0; i < l.Lines; i++ {
		nl := strings.IndexByte(s[off:], '\n')
		if nl < 0 {
			panic(fmt.Sprintf("text: length %v exceeds %q", l, s))
		}
		off += nl + 1
	}
	if off+l.Bytes > len(s) {
		panic(fmt.Sprintf("text: length %v exceeds %q", l, s))
	}
	return off + l.Bytes
}
