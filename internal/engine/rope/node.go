package rope

import (
	"strings"

	"github.com/dshills/ropecore/internal/engine/grapheme"
)

// Tree structure constants
const (
	// MinChildren is the minimum children per internal node (except root).
	MinChildren = 4

	// MaxChildren is the maximum children per internal node before splitting.
	MaxChildren = 8
)

// node is a node in the rope B-tree.
// Leaf nodes (height == 0) hold exactly one chunk.
// Internal nodes (height > 0) hold between MinChildren and MaxChildren
// children of height-1, except the root which may hold as few as two.
// Nodes are immutable once constructed.
type node struct {
	height   int
	info     Info
	children []*node
	chunk    Chunk
}

func newLeaf(c Chunk) *node {
	return &node{chunk: c, info: c.info}
}

func newBranch(children []*node) *node {
	n := &node{
		height:   children[0].height + 1,
		children: children,
	}
	for _, c := range children {
		n.info = n.info.Add(c.info)
	}
	return n
}

func (n *node) isLeaf() bool {
	return n.height == 0
}

// isFull reports whether n may stand as a non-root child.
func (n *node) isFull() bool {
	if n.isLeaf() {
		return n.chunk.Len() >= MinChunkSize
	}
	return len(n.children) >= MinChildren
}

// appendTo appends all text in this subtree to the builder.
func (n *node) appendTo(sb *strings.Builder) {
	if n.isLeaf() {
		sb.WriteString(n.chunk.text)
		return
	}
	for _, child := range n.children {
		child.appendTo(sb)
	}
}

func (n *node) firstLeaf() *node {
	for !n.isLeaf() {
		n = n.children[0]
	}
	return n
}

func (n *node) lastLeaf() *node {
	for !n.isLeaf() {
		n = n.children[len(n.children)-1]
	}
	return n
}

// buildTree builds a balanced tree from text in O(n).
func buildTree(s string) *node {
	pieces := splitText(s)
	if len(pieces) == 0 {
		return nil
	}
	level := make([]*node, len(pieces))
	for i, p := range pieces {
		level[i] = newLeaf(NewChunk(p))
	}
	return buildLevels(level)
}

// buildLevels groups nodes of equal height into parents until one remains.
// Groups are sized evenly so that every parent has at least MinChildren
// children whenever more than one parent is needed.
func buildLevels(level []*node) *node {
	for len(level) > 1 {
		groups := (len(level) + MaxChildren - 1) / MaxChildren
		next := make([]*node, 0, groups)
		start := 0
		for g := 0; g < groups; g++ {
			end := start + (len(level)-start)/(groups-g)
			next = append(next, newBranch(cloneNodes(level[start:end])))
			start = end
		}
		level = next
	}
	return level[0]
}

// join concatenates two trees, either of which may be nil. The result is
// balanced; under-full roots are absorbed into, or redistributed with, the
// sibling they land next to. Seams are not re-segmented.
func join(a, b *node) *node {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	var parts []*node
	if a.height >= b.height {
		parts = appendTree(a, b)
	} else {
		parts = prependTree(a, b)
	}
	if len(parts) == 1 {
		return collapse(parts[0])
	}
	return newBranch(parts)
}

func collapse(n *node) *node {
	for !n.isLeaf() && len(n.children) == 1 {
		n = n.children[0]
	}
	return n
}

// appendTree attaches b (height <= a.height) after the last leaf of a and
// returns one or two nodes of a's height.
func appendTree(a, b *node) []*node {
	if a.height == b.height {
		return mergeSiblings(a, b)
	}
	last := len(a.children) - 1
	parts := appendTree(a.children[last], b)
	children := make([]*node, 0, last+len(parts))
	children = append(children, a.children[:last]...)
	children = append(children, parts...)
	return splitChildren(children)
}

// prependTree attaches a (height < b.height) before the first leaf of b.
func prependTree(a, b *node) []*node {
	if a.height == b.height {
		return mergeSiblings(a, b)
	}
	parts := prependTree(a, b.children[0])
	children := make([]*node, 0, len(parts)+len(b.children)-1)
	children = append(children, parts...)
	children = append(children, b.children[1:]...)
	return splitChildren(children)
}

// mergeSiblings combines two nodes of equal height. If both are full they
// stay as they are. Otherwise the smaller one is absorbed when the combined
// size fits in one node, or the two are redistributed evenly.
func mergeSiblings(a, b *node) []*node {
	if a.isFull() && b.isFull() {
		return []*node{a, b}
	}
	if a.isLeaf() {
		s := a.chunk.text + b.chunk.text
		if len(s) <= MaxChunkSize {
			return []*node{newLeaf(NewChunk(s))}
		}
		left, right := splitInHalf(s)
		if right == "" {
			return []*node{newLeaf(NewChunk(left))}
		}
		return []*node{newLeaf(NewChunk(left)), newLeaf(NewChunk(right))}
	}
	children := make([]*node, 0, len(a.children)+len(b.children))
	children = append(children, a.children...)
	children = append(children, b.children...)
	return splitChildren(children)
}

// splitChildren wraps children in one node, or in two evenly sized nodes
// when they exceed MaxChildren.
func splitChildren(children []*node) []*node {
	if len(children) <= MaxChildren {
		return []*node{newBranch(children)}
	}
	mid := len(children) / 2
	return []*node{
		newBranch(cloneNodes(children[:mid])),
		newBranch(cloneNodes(children[mid:])),
	}
}

func cloneNodes(nodes []*node) []*node {
	out := make([]*node, len(nodes))
	copy(out, nodes)
	return out
}

// sliceNode returns the tree holding bytes [start, end) of n. Untouched
// subtrees are shared; only the cut leaves are rebuilt.
func sliceNode(n *node, start, end int) *node {
	if n == nil {
		return nil
	}
	if start < 0 {
		start = 0
	}
	if end > n.info.Bytes {
		end = n.info.Bytes
	}
	if start >= end {
		return nil
	}
	if start == 0 && end == n.info.Bytes {
		return n
	}
	if n.isLeaf() {
		return newLeaf(NewChunk(n.chunk.text[start:end]))
	}

	var acc *node
	off := 0
	for _, c := range n.children {
		cend := off + c.info.Bytes
		if cend > start && off < end {
			acc = join(acc, sliceNode(c, start-off, end-off))
		}
		if cend >= end {
			break
		}
		off = cend
	}
	return acc
}

// concat joins two trees and repairs the seam between them: when the
// boundary chunks are small, or the seam falls inside a grapheme cluster
// (for example a base letter followed by a combining mark), the two chunks
// are merged and re-chunked.
func concat(a, b *node) *node {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	left := a.lastLeaf().chunk
	right := b.firstLeaf().chunk
	seam := left.text + right.text
	small := left.Len() < MinChunkSize || right.Len() < MinChunkSize
	if !small && grapheme.IsBoundary(seam, left.Len()) {
		return join(a, b)
	}
	a = sliceNode(a, 0, a.info.Bytes-left.Len())
	b = sliceNode(b, right.Len(), b.info.Bytes)
	return join(join(a, buildTree(seam)), b)
}
