package rope

import (
	"unicode/utf8"

	"github.com/dshills/ropecore/internal/engine/grapheme"
)

// Chunk size constants control the granularity of text storage.
const (
	// MinChunkSize is the size below which a chunk is merged with a neighbour
	// when the two meet at an edit seam.
	MinChunkSize = 512

	// MaxChunkSize is the maximum bytes per chunk. A single grapheme
	// cluster longer than this occupies one oversized chunk.
	MaxChunkSize = 1024
)

// Chunk is an immutable UTF-8 segment stored in a leaf, together with its
// precomputed summary. A chunk always starts and ends on grapheme boundaries.
type Chunk struct {
	text     string
	info     Info
	newlines NewlineIndex
}

// NewChunk creates a chunk from s.
func NewChunk(s string) Chunk {
	return Chunk{
		text:     s,
		info:     InfoOf(s),
		newlines: ComputeNewlineIndex(s),
	}
}

// String returns the chunk's text.
func (c Chunk) String() string {
	return c.text
}

// Info returns the chunk's summary.
func (c Chunk) Info() Info {
	return c.info
}

// Len returns the byte length of the chunk.
func (c Chunk) Len() int {
	return len(c.text)
}

// IsEmpty returns true if the chunk contains no text.
func (c Chunk) IsEmpty() bool {
	return len(c.text) == 0
}

// Newlines returns the chunk's newline index.
func (c *Chunk) Newlines() *NewlineIndex {
	return &c.newlines
}

// IsCharBoundary reports whether i is 0, len, or the first byte of a UTF-8 sequence.
func (c Chunk) IsCharBoundary(i int) bool {
	if i == 0 || i == len(c.text) {
		return true
	}
	return i > 0 && i < len(c.text) && utf8.RuneStart(c.text[i])
}

// IsGraphemeBoundary reports whether i falls between two grapheme clusters.
func (c Chunk) IsGraphemeBoundary(i int) bool {
	return grapheme.IsBoundary(c.text, i)
}

// NextGraphemeBoundary returns the boundary after i, or false at the end.
func (c Chunk) NextGraphemeBoundary(i int) (int, bool) {
	return grapheme.NextBoundary(c.text, i)
}

// PrevGraphemeBoundary returns the boundary before i, or false at the start.
func (c Chunk) PrevGraphemeBoundary(i int) (int, bool) {
	return grapheme.PrevBoundary(c.text, i)
}

// Split splits the chunk at byte offset i, which must be both a char and a
// grapheme boundary.
func (c Chunk) Split(i int) (Chunk, Chunk) {
	if i < 0 || i > len(c.text) {
		fail(ErrOutOfRange, "split at %d of %d", i, len(c.text))
	}
	if !c.IsCharBoundary(i) {
		fail(ErrNotCharAligned, "split at %d", i)
	}
	if !c.IsGraphemeBoundary(i) {
		fail(ErrNotGraphemeAligned, "split at %d", i)
	}
	return NewChunk(c.text[:i]), NewChunk(c.text[i:])
}

// splitText cuts s into chunk-sized pieces at grapheme boundaries. Pieces
// are at most MaxChunkSize unless a single grapheme is longer, and the last
// two pieces are balanced so that neither falls far below MinChunkSize.
func splitText(s string) []string {
	if len(s) <= MaxChunkSize {
		if len(s) == 0 {
			return nil
		}
		return []string{s}
	}

	pieces := make([]string, 0, len(s)/MaxChunkSize+1)
	start := 0
	for len(s)-start > MaxChunkSize {
		remaining := len(s) - start
		target := start + MaxChunkSize
		if remaining < MaxChunkSize+MinChunkSize {
			target = start + remaining/2
		}
		cut := boundaryAtOrBefore(s, target)
		if cut <= start {
			cut, _ = grapheme.NextBoundary(s, start)
		}
		pieces = append(pieces, s[start:cut])
		start = cut
	}
	if start < len(s) {
		pieces = append(pieces, s[start:])
	}
	return pieces
}

// splitInHalf cuts s into two pieces near the middle at a grapheme boundary.
// The second piece is empty when no interior boundary exists.
func splitInHalf(s string) (string, string) {
	cut := boundaryAtOrBefore(s, len(s)/2)
	if cut == 0 {
		cut, _ = grapheme.NextBoundary(s, 0)
	}
	return s[:cut], s[cut:]
}

func boundaryAtOrBefore(s string, i int) int {
	if grapheme.IsBoundary(s, i) {
		return i
	}
	b, _ := grapheme.PrevBoundary(s, i)
	return b
}
