package rope

import (
	"unicode/utf8"

	"github.com/dshills/ropecore/internal/engine/grapheme"
)

// cursorFrame is one internal node on the path from the root to the
// current leaf, together with the index of the child we descended into.
type cursorFrame struct {
	node     *node
	childIdx int
}

// ChunkCursor walks the chunks of a rope in either direction. It keeps the
// root-to-leaf path so that stepping to a neighbouring chunk is amortised
// O(1). A cursor is bound to the rope version it was created from.
type ChunkCursor struct {
	root  *node
	path  []cursorFrame
	leaf  *node
	start int
}

// ChunkCursorFront returns a cursor at the first chunk.
func (r Rope) ChunkCursorFront() *ChunkCursor {
	return r.ChunkCursorAt(0)
}

// ChunkCursorBack returns a cursor at the last chunk.
func (r Rope) ChunkCursorBack() *ChunkCursor {
	return r.ChunkCursorAt(r.LenBytes())
}

// ChunkCursorAt returns a cursor at the chunk containing offset. The end
// offset selects the last chunk.
func (r Rope) ChunkCursorAt(offset int) *ChunkCursor {
	if offset < 0 || offset > r.LenBytes() {
		fail(ErrOutOfRange, "byte %d of %d", offset, r.LenBytes())
	}
	c := &ChunkCursor{root: r.root, path: make([]cursorFrame, 0, r.Height())}
	c.seek(offset)
	return c
}

// seek descends from the root to the leaf containing offset.
func (c *ChunkCursor) seek(offset int) {
	c.path = c.path[:0]
	c.start = 0
	c.leaf = nil
	n := c.root
	if n == nil {
		return
	}
	for !n.isLeaf() {
		idx := 0
		for idx < len(n.children)-1 && offset >= n.children[idx].info.Bytes {
			offset -= n.children[idx].info.Bytes
			c.start += n.children[idx].info.Bytes
			idx++
		}
		c.path = append(c.path, cursorFrame{node: n, childIdx: idx})
		n = n.children[idx]
	}
	c.leaf = n
}

// Chunk returns the current chunk. It is empty for an empty rope.
func (c *ChunkCursor) Chunk() Chunk {
	if c.leaf == nil {
		return Chunk{}
	}
	return c.leaf.chunk
}

// Start returns the byte offset of the current chunk.
func (c *ChunkCursor) Start() int {
	return c.start
}

// End returns the byte offset just past the current chunk.
func (c *ChunkCursor) End() int {
	return c.start + c.Chunk().Len()
}

// IsAtFront reports whether the current chunk is the first one.
func (c *ChunkCursor) IsAtFront() bool {
	return c.start == 0
}

// IsAtBack reports whether the current chunk is the last one.
func (c *ChunkCursor) IsAtBack() bool {
	return c.root == nil || c.End() == c.root.info.Bytes
}

// MoveNext moves to the following chunk. It panics at the last chunk.
func (c *ChunkCursor) MoveNext() {
	if c.IsAtBack() {
		fail(ErrOutOfRange, "chunk cursor past back")
	}
	c.start = c.End()

	depth := len(c.path) - 1
	for c.path[depth].childIdx == len(c.path[depth].node.children)-1 {
		depth--
	}
	c.path[depth].childIdx++
	n := c.path[depth].node.children[c.path[depth].childIdx]
	c.path = c.path[:depth+1]
	for !n.isLeaf() {
		c.path = append(c.path, cursorFrame{node: n, childIdx: 0})
		n = n.children[0]
	}
	c.leaf = n
}

// MovePrev moves to the preceding chunk. It panics at the first chunk.
func (c *ChunkCursor) MovePrev() {
	if c.IsAtFront() {
		fail(ErrOutOfRange, "chunk cursor past front")
	}

	depth := len(c.path) - 1
	for c.path[depth].childIdx == 0 {
		depth--
	}
	c.path[depth].childIdx--
	n := c.path[depth].node.children[c.path[depth].childIdx]
	c.path = c.path[:depth+1]
	for !n.isLeaf() {
		last := len(n.children) - 1
		c.path = append(c.path, cursorFrame{node: n, childIdx: last})
		n = n.children[last]
	}
	c.leaf = n
	c.start -= n.info.Bytes
}

// textCursor is a position inside a rope expressed as a chunk cursor plus
// an offset into the current chunk. Unless the cursor is at the back, the
// offset always points inside the current chunk.
type textCursor struct {
	chunks ChunkCursor
	off    int
}

func newTextCursor(r Rope, offset int) textCursor {
	tc := textCursor{chunks: *r.ChunkCursorAt(offset)}
	tc.off = offset - tc.chunks.start
	return tc
}

// Position returns the absolute byte offset.
func (tc *textCursor) Position() int {
	return tc.chunks.start + tc.off
}

// IsAtFront reports whether the cursor is at offset 0.
func (tc *textCursor) IsAtFront() bool {
	return tc.Position() == 0
}

// IsAtBack reports whether the cursor is at the end of the rope.
func (tc *textCursor) IsAtBack() bool {
	return tc.chunks.root == nil || tc.Position() == tc.chunks.root.info.Bytes
}

func (tc *textCursor) text() string {
	return tc.chunks.Chunk().text
}

// normalize steps onto the next chunk when the offset reached the end of
// a chunk that is not the last one.
func (tc *textCursor) normalize() {
	if tc.off == len(tc.text()) && !tc.chunks.IsAtBack() {
		tc.chunks.MoveNext()
		tc.off = 0
	}
}

// backUp steps onto the previous chunk when the offset is at a chunk start.
func (tc *textCursor) backUp() {
	if tc.off == 0 {
		tc.chunks.MovePrev()
		tc.off = len(tc.text())
	}
}

// ByteCursor walks a rope byte by byte.
type ByteCursor struct {
	textCursor
}

// ByteCursorAt returns a byte cursor at offset.
func (r Rope) ByteCursorAt(offset int) *ByteCursor {
	return &ByteCursor{newTextCursor(r, offset)}
}

// ByteCursorFront returns a byte cursor at the start of the rope.
func (r Rope) ByteCursorFront() *ByteCursor { return r.ByteCursorAt(0) }

// ByteCursorBack returns a byte cursor at the end of the rope.
func (r Rope) ByteCursorBack() *ByteCursor { return r.ByteCursorAt(r.LenBytes()) }

// Current returns the byte at the cursor. It panics at the back.
func (c *ByteCursor) Current() byte {
	if c.IsAtBack() {
		fail(ErrOutOfRange, "byte cursor at back")
	}
	return c.text()[c.off]
}

// MoveNext advances one byte. It panics at the back.
func (c *ByteCursor) MoveNext() {
	if c.IsAtBack() {
		fail(ErrOutOfRange, "byte cursor past back")
	}
	c.off++
	c.normalize()
}

// MovePrev steps back one byte. It panics at the front.
func (c *ByteCursor) MovePrev() {
	if c.IsAtFront() {
		fail(ErrOutOfRange, "byte cursor past front")
	}
	c.backUp()
	c.off--
}

// CharCursor walks a rope one Unicode scalar value at a time.
type CharCursor struct {
	textCursor
}

// CharCursorAt returns a char cursor at offset, which must be a char boundary.
func (r Rope) CharCursorAt(offset int) *CharCursor {
	r.checkOffset(offset)
	return &CharCursor{newTextCursor(r, offset)}
}

// CharCursorFront returns a char cursor at the start of the rope.
func (r Rope) CharCursorFront() *CharCursor { return r.CharCursorAt(0) }

// CharCursorBack returns a char cursor at the end of the rope.
func (r Rope) CharCursorBack() *CharCursor { return r.CharCursorAt(r.LenBytes()) }

// Current returns the rune at the cursor. It panics at the back.
func (c *CharCursor) Current() rune {
	if c.IsAtBack() {
		fail(ErrOutOfRange, "char cursor at back")
	}
	r, _ := utf8.DecodeRuneInString(c.text()[c.off:])
	return r
}

// MoveNext advances by the UTF-8 width of the current char. It panics at the back.
func (c *CharCursor) MoveNext() {
	if c.IsAtBack() {
		fail(ErrOutOfRange, "char cursor past back")
	}
	_, size := utf8.DecodeRuneInString(c.text()[c.off:])
	c.off += size
	c.normalize()
}

// MovePrev steps back to the previous char boundary. It panics at the front.
func (c *CharCursor) MovePrev() {
	if c.IsAtFront() {
		fail(ErrOutOfRange, "char cursor past front")
	}
	c.backUp()
	s := c.text()
	c.off--
	for c.off > 0 && !utf8.RuneStart(s[c.off]) {
		c.off--
	}
}

// GraphemeCursor walks a rope one grapheme cluster at a time.
type GraphemeCursor struct {
	textCursor
}

// GraphemeCursorAt returns a grapheme cursor at offset, which must be a
// grapheme boundary.
func (r Rope) GraphemeCursorAt(offset int) *GraphemeCursor {
	r.checkOffset(offset)
	c := &GraphemeCursor{newTextCursor(r, offset)}
	if !grapheme.IsBoundary(c.text(), c.off) {
		fail(ErrNotGraphemeAligned, "byte %d", offset)
	}
	return c
}

// GraphemeCursorFront returns a grapheme cursor at the start of the rope.
func (r Rope) GraphemeCursorFront() *GraphemeCursor { return r.GraphemeCursorAt(0) }

// GraphemeCursorBack returns a grapheme cursor at the end of the rope.
func (r Rope) GraphemeCursorBack() *GraphemeCursor { return r.GraphemeCursorAt(r.LenBytes()) }

// Current returns the grapheme at the cursor. It panics at the back.
func (c *GraphemeCursor) Current() string {
	if c.IsAtBack() {
		fail(ErrOutOfRange, "grapheme cursor at back")
	}
	s := c.text()
	next, _ := grapheme.NextBoundary(s, c.off)
	return s[c.off:next]
}

// MoveNext advances to the next grapheme boundary. It panics at the back.
func (c *GraphemeCursor) MoveNext() {
	if c.IsAtBack() {
		fail(ErrOutOfRange, "grapheme cursor past back")
	}
	c.off, _ = grapheme.NextBoundary(c.text(), c.off)
	c.normalize()
}

// MovePrev steps back to the previous grapheme boundary. It panics at the front.
func (c *GraphemeCursor) MovePrev() {
	if c.IsAtFront() {
		fail(ErrOutOfRange, "grapheme cursor past front")
	}
	c.backUp()
	c.off, _ = grapheme.PrevBoundary(c.text(), c.off)
}
