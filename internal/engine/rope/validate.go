package rope

import (
	"errors"
	"fmt"

	"github.com/dshills/ropecore/internal/engine/grapheme"
)

// ErrInvariant is wrapped by every error returned from Validate.
var ErrInvariant = errors.New("rope invariant violated")

// Validate checks the structural invariants of the tree: uniform leaf
// depth, fan-out bounds, summaries equal to the sum of their children, and
// chunks that are non-empty, bounded and cut on grapheme boundaries.
// It is O(n) and meant for tests and debugging.
func (r Rope) Validate() error {
	if r.root == nil {
		return nil
	}
	if !r.root.isLeaf() && len(r.root.children) < 2 {
		return fmt.Errorf("%w: root has %d children", ErrInvariant, len(r.root.children))
	}
	if err := validateNode(r.root, true); err != nil {
		return err
	}

	var prev string
	for c := range r.Chunks() {
		if prev != "" {
			tail := prev[max(0, len(prev)-64):]
			head := c.text[:min(len(c.text), 64)]
			if !grapheme.IsBoundary(tail+head, len(tail)) {
				return fmt.Errorf("%w: chunk seam inside grapheme %q|%q", ErrInvariant, tail, head)
			}
		}
		prev = c.text
	}
	return nil
}

func validateNode(n *node, root bool) error {
	if n.isLeaf() {
		c := n.chunk
		if c.Len() == 0 {
			return fmt.Errorf("%w: empty chunk", ErrInvariant)
		}
		if c.Len() > MaxChunkSize && grapheme.Count(c.text) > 1 {
			return fmt.Errorf("%w: chunk of %d bytes", ErrInvariant, c.Len())
		}
		if n.info != InfoOf(c.text) {
			return fmt.Errorf("%w: leaf info %+v, want %+v", ErrInvariant, n.info, InfoOf(c.text))
		}
		return nil
	}

	if len(n.children) > MaxChildren {
		return fmt.Errorf("%w: node with %d children", ErrInvariant, len(n.children))
	}
	if !root && len(n.children) < MinChildren {
		return fmt.Errorf("%w: non-root node with %d children", ErrInvariant, len(n.children))
	}
	var sum Info
	for _, c := range n.children {
		if c.height != n.height-1 {
			return fmt.Errorf("%w: child height %d under height %d", ErrInvariant, c.height, n.height)
		}
		if err := validateNode(c, false); err != nil {
			return err
		}
		sum = sum.Add(c.info)
	}
	if sum != n.info {
		return fmt.Errorf("%w: node info %+v, children sum %+v", ErrInvariant, n.info, sum)
	}
	return nil
}
