package grapheme

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// DefaultTabWidth is used when a Measurer is built with a non-positive tab width.
const DefaultTabWidth = 4

// Measurer converts between byte offsets and visual columns on a line.
type Measurer struct {
	tabWidth int
	cond     *runewidth.Condition
}

// NewMeasurer creates a Measurer. When eastAsianWide is set, characters of
// ambiguous East Asian width occupy two columns.
func NewMeasurer(tabWidth int, eastAsianWide bool) Measurer {
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	m := Measurer{tabWidth: tabWidth}
	if eastAsianWide {
		m.cond = runewidth.NewCondition()
		m.cond.EastAsianWidth = true
	}
	return m
}

// TabWidth returns the tab stop distance.
func (m Measurer) TabWidth() int {
	if m.tabWidth <= 0 {
		return DefaultTabWidth
	}
	return m.tabWidth
}

// ClusterWidth returns the width of one grapheme drawn at column col.
func (m Measurer) ClusterWidth(cluster string, col int) int {
	switch cluster {
	case "":
		return 0
	case "\t":
		tw := m.TabWidth()
		return tw - col%tw
	}
	if m.cond != nil {
		if r, size := utf8.DecodeRuneInString(cluster); size == len(cluster) {
			return m.cond.RuneWidth(r)
		}
	}
	return uniseg.StringWidth(cluster)
}

// Column returns the visual column of byte offset b within line.
// Offsets inside a grapheme count the whole grapheme.
func (m Measurer) Column(line string, b int) int {
	if b > len(line) {
		b = len(line)
	}
	col := 0
	for i := 0; i < b; {
		next, _ := NextBoundary(line, i)
		col += m.ClusterWidth(line[i:next], col)
		i = next
	}
	return col
}

// ByteAtColumn returns the byte offset of the grapheme boundary at visual
// column col. A column inside a wide grapheme resolves to its start; a column
// past the end resolves to len(line).
func (m Measurer) ByteAtColumn(line string, col int) int {
	c := 0
	for i := 0; i < len(line); {
		if c >= col {
			return i
		}
		next, _ := NextBoundary(line, i)
		w := m.ClusterWidth(line[i:next], c)
		if c+w > col {
			return i
		}
		c += w
		i = next
	}
	return len(line)
}

// Width returns the visual width of s starting at column 0.
func (m Measurer) Width(s string) int {
	return m.Column(s, len(s))
}

// LeadingWidth returns the visual width of the leading spaces and tabs of
// line, and whether the line holds nothing else.
func (m Measurer) LeadingWidth(line string) (int, bool) {
	col := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			col++
		case '\t':
			col += m.TabWidth() - col%m.TabWidth()
		case '\r', '\n':
			return col, true
		default:
			return col, false
		}
	}
	return col, true
}
