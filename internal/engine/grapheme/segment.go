package grapheme

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Segmenter finds grapheme boundaries in line strings.
type Segmenter interface {
	// NextBoundary returns the first boundary after i, or false at the end.
	NextBoundary(s string, i int) (int, bool)
	// PrevBoundary returns the last boundary before i, or false at the start.
	PrevBoundary(s string, i int) (int, bool)
}

// Default is the UAX #29 segmenter.
var Default Segmenter = uaxSegmenter{}

type uaxSegmenter struct{}

func (uaxSegmenter) NextBoundary(s string, i int) (int, bool) { return NextBoundary(s, i) }
func (uaxSegmenter) PrevBoundary(s string, i int) (int, bool) { return PrevBoundary(s, i) }

// NextBoundary returns the grapheme boundary following byte offset i.
// i must itself be a boundary. It reports false when i is at or past the end.
func NextBoundary(s string, i int) (int, bool) {
	if i < 0 {
		i = 0
	}
	if i >= len(s) {
		return len(s), false
	}
	return i + clusterLen(s, i), true
}

// PrevBoundary returns the grapheme boundary preceding byte offset i.
// It reports false when i is at or before the start.
func PrevBoundary(s string, i int) (int, bool) {
	if i > len(s) {
		i = len(s)
	}
	if i <= 0 {
		return 0, false
	}

	// ASCII fast path.
	if s[i-1] < utf8.RuneSelf && (i == 1 || s[i-2] < utf8.RuneSelf) {
		if s[i-1] == '\n' && i >= 2 && s[i-2] == '\r' {
			return i - 2, true
		}
		return i - 1, true
	}

	b := safeStart(s, i-1)
	prev := b
	for b < i {
		prev = b
		b += clusterLen(s, b)
	}
	return prev, true
}

// IsBoundary reports whether byte offset i falls on a grapheme boundary.
func IsBoundary(s string, i int) bool {
	if i <= 0 || i >= len(s) {
		return i == 0 || i == len(s)
	}
	if !utf8.RuneStart(s[i]) {
		return false
	}
	if s[i-1] < utf8.RuneSelf && s[i] < utf8.RuneSelf {
		return !(s[i-1] == '\r' && s[i] == '\n')
	}
	b := safeStart(s, i)
	for b < i {
		b += clusterLen(s, b)
	}
	return b == i
}

// Count returns the number of graphemes in s.
func Count(s string) int {
	n := 0
	for i := 0; i < len(s); i += clusterLen(s, i) {
		n++
	}
	return n
}

// clusterLen returns the byte length of the grapheme starting at boundary i.
func clusterLen(s string, i int) int {
	c := s[i]
	if c < utf8.RuneSelf {
		if i+1 == len(s) {
			return 1
		}
		next := s[i+1]
		if next < utf8.RuneSelf {
			if c == '\r' && next == '\n' {
				return 2
			}
			return 1
		}
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s[i:], -1)
	if len(cluster) == 0 {
		return 1
	}
	return len(cluster)
}

// safeStart scans backwards from i for an offset that is certainly a
// boundary: the start of the string, the byte after a line feed, or a
// position between two ASCII bytes that are not CR LF.
func safeStart(s string, i int) int {
	for j := i; j > 0; j-- {
		prev := s[j-1]
		if prev == '\n' {
			return j
		}
		if prev < utf8.RuneSelf && s[j] < utf8.RuneSelf && !(prev == '\r' && s[j] == '\n') {
			return j
		}
	}
	return 0
}
