// Package grapheme segments UTF-8 text into user-perceived characters and
// measures their visual width.
//
// Boundaries follow Unicode UAX #29 as implemented by github.com/rivo/uniseg,
// with an ASCII fast path: two adjacent ASCII bytes always form a boundary
// unless they are CR followed by LF. CR LF is a single grapheme.
//
// All functions work on plain strings and byte offsets. Callers are expected
// to pass offsets that are already boundaries when asking for the next or
// previous one; chunk starts and line starts always qualify.
//
// Widths are measured in terminal columns. A Measurer expands tabs to the
// next tab stop and can treat East Asian ambiguous characters as wide.
package grapheme
