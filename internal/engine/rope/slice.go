package rope

import (
	"iter"
	"strings"
)

// Slice is a read-only view of a byte range of a rope. Creating a slice
// allocates no nodes; Rope materialises it as a rope sharing the interior
// subtrees.
type Slice struct {
	root       *node
	start, end int
}

// LenBytes returns the length of the slice in bytes.
func (s Slice) LenBytes() int {
	return s.end - s.start
}

// Start returns the offset of the slice within its rope.
func (s Slice) Start() int {
	return s.start
}

// End returns the end offset of the slice within its rope.
func (s Slice) End() int {
	return s.end
}

// Info returns the summary of the slice.
func (s Slice) Info() Info {
	r := Rope{root: s.root}
	return r.InfoBefore(s.end).Sub(r.InfoBefore(s.start))
}

// Chunks yields the pieces of chunk text covered by the slice.
func (s Slice) Chunks() iter.Seq[string] {
	return func(yield func(string) bool) {
		walkRange(s.root, 0, s.start, s.end, yield)
	}
}

func walkRange(n *node, off, start, end int, yield func(string) bool) bool {
	if n == nil || off >= end || off+n.info.Bytes <= start {
		return true
	}
	if n.isLeaf() {
		lo := max(start-off, 0)
		hi := min(end-off, n.info.Bytes)
		return yield(n.chunk.text[lo:hi])
	}
	for _, c := range n.children {
		if !walkRange(c, off, start, end, yield) {
			return false
		}
		off += c.info.Bytes
		if off >= end {
			break
		}
	}
	return true
}

// String returns the slice content.
func (s Slice) String() string {
	var sb strings.Builder
	sb.Grow(s.LenBytes())
	for piece := range s.Chunks() {
		sb.WriteString(piece)
	}
	return sb.String()
}

// Rope returns the slice as a standalone rope.
func (s Slice) Rope() Rope {
	return Rope{root: sliceNode(s.root, s.start, s.end)}
}
