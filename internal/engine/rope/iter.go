package rope

import "strings"

// LineIterator iterates over the lines of a rope, streaming through its
// chunks. Line texts exclude the line feed.
type LineIterator struct {
	chunks    *ChunkCursor
	off       int // offset into the current chunk
	lineNum   int
	lineStart int
	text      string
	done      bool
}

// Lines returns an iterator over all lines in the rope.
// An empty rope has a single empty line.
func (r Rope) Lines() *LineIterator {
	return &LineIterator{chunks: r.ChunkCursorFront(), lineNum: -1}
}

// LinesFrom returns an iterator whose first line is line.
func (r Rope) LinesFrom(line int) *LineIterator {
	start := r.LineStart(line)
	it := &LineIterator{chunks: r.ChunkCursorAt(start), lineNum: line - 1}
	it.off = start - it.chunks.Start()
	return it
}

// Next advances to the next line.
// Returns true if there is a line, false if iteration is complete.
func (it *LineIterator) Next() bool {
	if it.done {
		return false
	}
	it.lineNum++
	it.lineStart = it.chunks.Start() + it.off

	var sb strings.Builder
	for {
		c := it.chunks.Chunk()
		nl := c.newlines.NewlineAfter(it.off)
		if nl >= 0 {
			sb.WriteString(c.text[it.off:nl])
			it.off = nl + 1
			if it.off == c.Len() && !it.chunks.IsAtBack() {
				it.chunks.MoveNext()
				it.off = 0
			}
			break
		}
		sb.WriteString(c.text[it.off:])
		it.off = c.Len()
		if it.chunks.IsAtBack() {
			it.done = true
			break
		}
		it.chunks.MoveNext()
		it.off = 0
	}
	it.text = sb.String()
	return true
}

// Text returns the text of the current line.
func (it *LineIterator) Text() string {
	return it.text
}

// Line returns the current line number (0-indexed).
func (it *LineIterator) Line() int {
	return it.lineNum
}

// StartOffset returns the byte offset of the start of the current line.
func (it *LineIterator) StartOffset() int {
	return it.lineStart
}

// EndOffset returns the byte offset of the end of the current line.
func (it *LineIterator) EndOffset() int {
	return it.lineStart + len(it.text)
}
