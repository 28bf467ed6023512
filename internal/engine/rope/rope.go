package rope

import (
	"io"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/dshills/ropecore/internal/engine/text"
)

// Rope is a persistent rope of UTF-8 text.
// Operations return new Rope values; the original is never modified.
// The zero value is an empty rope.
type Rope struct {
	root *node
}

// New creates an empty rope.
func New() Rope {
	return Rope{}
}

// FromString creates a rope from a string in O(n).
func FromString(s string) Rope {
	return Rope{root: buildTree(s)}
}

// FromReader creates a rope from an io.Reader.
func FromReader(r io.Reader) (Rope, error) {
	b := NewBuilder()
	if _, err := io.Copy(b, r); err != nil {
		return Rope{}, err
	}
	if !b.Valid() {
		return Rope{}, ErrInvalidUTF8
	}
	return b.Build(), nil
}

// Info returns the summary of the whole rope.
func (r Rope) Info() Info {
	if r.root == nil {
		return Info{}
	}
	return r.root.info
}

// LenBytes returns the length in bytes.
func (r Rope) LenBytes() int {
	return r.Info().Bytes
}

// LenChars returns the number of Unicode scalar values.
func (r Rope) LenChars() int {
	return r.Info().Chars
}

// LenGraphemes returns the number of grapheme clusters.
func (r Rope) LenGraphemes() int {
	return r.Info().Graphemes
}

// LenLines returns the number of lines. An empty rope has one line.
func (r Rope) LenLines() int {
	return r.Info().Lines + 1
}

// IsEmpty returns true if the rope contains no text.
func (r Rope) IsEmpty() bool {
	return r.root == nil || r.root.info.Bytes == 0
}

// Length returns the position of the end of the rope as a Length.
func (r Rope) Length() text.Length {
	last := r.Info().Lines
	return text.Length{Lines: last, Bytes: r.LenBytes() - r.LineStart(last)}
}

// String returns the entire rope content as a string.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(r.root.info.Bytes)
	r.root.appendTo(&sb)
	return sb.String()
}

// Height returns the number of levels in the tree.
func (r Rope) Height() int {
	if r.root == nil {
		return 0
	}
	return r.root.height + 1
}

// ChunkCount returns the number of chunks in the rope.
func (r Rope) ChunkCount() int {
	n := 0
	for range r.Chunks() {
		n++
	}
	return n
}

// Append returns the concatenation of r followed by other.
func (r Rope) Append(other Rope) Rope {
	return Rope{root: concat(r.root, other.root)}
}

// Prepend returns the concatenation of other followed by r.
func (r Rope) Prepend(other Rope) Rope {
	return Rope{root: concat(other.root, r.root)}
}

// Split splits the rope at a char-aligned byte offset.
func (r Rope) Split(at int) (Rope, Rope) {
	r.checkOffset(at)
	return Rope{root: sliceNode(r.root, 0, at)}, Rope{root: sliceNode(r.root, at, r.LenBytes())}
}

// ByteAt returns the byte at offset.
func (r Rope) ByteAt(offset int) byte {
	if offset < 0 || offset >= r.LenBytes() {
		fail(ErrOutOfRange, "byte %d of %d", offset, r.LenBytes())
	}
	n := r.root
	for !n.isLeaf() {
		for _, c := range n.children {
			if offset < c.info.Bytes {
				n = c
				break
			}
			offset -= c.info.Bytes
		}
	}
	return n.chunk.text[offset]
}

// IsCharBoundary reports whether offset lies between two code points.
func (r Rope) IsCharBoundary(offset int) bool {
	if offset == 0 || offset == r.LenBytes() {
		return true
	}
	if offset < 0 || offset > r.LenBytes() {
		return false
	}
	return utf8.RuneStart(r.ByteAt(offset))
}

// checkOffset panics unless offset is a char boundary within the rope.
func (r Rope) checkOffset(offset int) {
	if offset < 0 || offset > r.LenBytes() {
		fail(ErrOutOfRange, "byte %d of %d", offset, r.LenBytes())
	}
	if !r.IsCharBoundary(offset) {
		fail(ErrNotCharAligned, "byte %d", offset)
	}
}

// InfoBefore returns the summary of bytes [0, offset).
func (r Rope) InfoBefore(offset int) Info {
	if offset < 0 || offset > r.LenBytes() {
		fail(ErrOutOfRange, "byte %d of %d", offset, r.LenBytes())
	}
	var acc Info
	n := r.root
	for n != nil && offset > 0 {
		if offset == n.info.Bytes {
			return acc.Add(n.info)
		}
		if n.isLeaf() {
			return acc.Add(InfoOf(n.chunk.text[:offset]))
		}
		for _, c := range n.children {
			if offset < c.info.Bytes {
				n = c
				break
			}
			acc = acc.Add(c.info)
			offset -= c.info.Bytes
		}
	}
	return acc
}

// LineStart returns the byte offset of the start of line.
func (r Rope) LineStart(line int) int {
	if line < 0 || line >= r.LenLines() {
		fail(ErrOutOfRange, "line %d of %d", line, r.LenLines())
	}
	if line == 0 {
		return 0
	}
	off := 0
	n := r.root
	for !n.isLeaf() {
		for _, c := range n.children {
			if line <= c.info.Lines {
				n = c
				break
			}
			line -= c.info.Lines
			off += c.info.Bytes
		}
	}
	return off + n.chunk.newlines.LineStart(line)
}

// LineEnd returns the byte offset of the end of line, before its line feed.
func (r Rope) LineEnd(line int) int {
	if line == r.LenLines()-1 {
		r.LineStart(line)
		return r.LenBytes()
	}
	return r.LineStart(line+1) - 1
}

// LineText returns the text of line without its line feed. A carriage
// return preceding the line feed is kept.
func (r Rope) LineText(line int) string {
	return r.Slice(r.LineStart(line), r.LineEnd(line)).String()
}

// LineLen returns the byte length of line without its line feed.
func (r Rope) LineLen(line int) int {
	return r.LineEnd(line) - r.LineStart(line)
}

// OffsetToPosition converts a byte offset to a line/byte position.
func (r Rope) OffsetToPosition(offset int) text.Position {
	line := r.InfoBefore(offset).Lines
	return text.Position{Line: line, Byte: offset - r.LineStart(line)}
}

// PositionToOffset converts a line/byte position to a byte offset.
func (r Rope) PositionToOffset(p text.Position) int {
	start := r.LineStart(p.Line)
	if p.Byte < 0 || start+p.Byte > r.LineEnd(p.Line) {
		fail(ErrOutOfRange, "position %v", p)
	}
	return start + p.Byte
}

// ClampPosition returns the nearest valid position to p.
func (r Rope) ClampPosition(p text.Position) text.Position {
	if p.Line < 0 {
		return text.Position{}
	}
	if p.Line >= r.LenLines() {
		last := r.LenLines() - 1
		return text.Position{Line: last, Byte: r.LineLen(last)}
	}
	if p.Byte < 0 {
		p.Byte = 0
	}
	if n := r.LineLen(p.Line); p.Byte > n {
		p.Byte = n
	}
	return p
}

// Slice returns a view of bytes [start, end).
func (r Rope) Slice(start, end int) Slice {
	if start > end {
		fail(ErrOutOfRange, "slice %d..%d", start, end)
	}
	r.checkOffset(start)
	r.checkOffset(end)
	return Slice{root: r.root, start: start, end: end}
}

// Equals returns true if two ropes contain the same text.
func (r Rope) Equals(other Rope) bool {
	if r.root == other.root {
		return true
	}
	if r.LenBytes() != other.LenBytes() {
		return false
	}
	return equalChunks(r.Chunks(), other.Chunks())
}

func equalChunks(a, b iter.Seq[Chunk]) bool {
	nextA, stopA := iter.Pull(a)
	defer stopA()
	nextB, stopB := iter.Pull(b)
	defer stopB()

	var sa, sb string
	for {
		if sa == "" {
			c, ok := nextA()
			if !ok {
				_, more := nextB()
				return sb == "" && !more
			}
			sa = c.text
		}
		if sb == "" {
			c, ok := nextB()
			if !ok {
				return false
			}
			sb = c.text
		}
		n := min(len(sa), len(sb))
		if sa[:n] != sb[:n] {
			return false
		}
		sa, sb = sa[n:], sb[n:]
	}
}

// Chunks yields the rope's chunks in order.
func (r Rope) Chunks() iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		walkChunks(r.root, yield)
	}
}

func walkChunks(n *node, yield func(Chunk) bool) bool {
	if n == nil {
		return true
	}
	if n.isLeaf() {
		return yield(n.chunk)
	}
	for _, c := range n.children {
		if !walkChunks(c, yield) {
			return false
		}
	}
	return true
}
