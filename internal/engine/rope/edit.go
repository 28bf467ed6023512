package rope

import "unicode/utf8"

// OpKind identifies a byte-level edit operation.
type OpKind uint8

const (
	// OpRetain keeps bytes unchanged.
	OpRetain OpKind = iota
	// OpInsert inserts text.
	OpInsert
	// OpDelete removes bytes.
	OpDelete
)

// String returns the operation name.
func (k OpKind) String() string {
	switch k {
	case OpRetain:
		return "retain"
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Op is one step of a byte-level edit. N is the byte count for retain and
// delete; Text is the inserted text.
type Op struct {
	Kind OpKind
	N    int
	Text string
}

// Retain keeps n bytes.
func Retain(n int) Op { return Op{Kind: OpRetain, N: n} }

// Insert inserts s.
func Insert(s string) Op { return Op{Kind: OpInsert, N: len(s), Text: s} }

// Delete removes n bytes.
func Delete(n int) Op { return Op{Kind: OpDelete, N: n} }

// Edit applies ops to r and returns the new rope. Retained spans are shared
// with r, cut points are re-chunked, and inserted text is chunked afresh.
// The retain and delete counts must cover r exactly and every cut must be a
// char boundary; otherwise Edit panics.
func (r Rope) Edit(ops []Op) Rope {
	total := r.LenBytes()
	var acc *node
	pos := 0
	for _, op := range ops {
		switch op.Kind {
		case OpRetain, OpDelete:
			if op.N < 0 || pos+op.N > total {
				fail(ErrShapeMismatch, "%s %d at byte %d of %d", op.Kind, op.N, pos, total)
			}
			end := pos + op.N
			if end < total && !utf8.RuneStart(r.ByteAt(end)) {
				fail(ErrNotCharAligned, "%s ends at byte %d", op.Kind, end)
			}
			if op.Kind == OpRetain {
				acc = concat(acc, sliceNode(r.root, pos, end))
			}
			pos = end
		case OpInsert:
			acc = concat(acc, buildTree(op.Text))
		}
	}
	if pos != total {
		fail(ErrShapeMismatch, "edit covers %d of %d bytes", pos, total)
	}
	return Rope{root: acc}
}

// Insert returns a rope with s inserted at a char-aligned byte offset.
func (r Rope) Insert(offset int, s string) Rope {
	r.checkOffset(offset)
	return r.Edit([]Op{Retain(offset), Insert(s), Retain(r.LenBytes() - offset)})
}

// Delete returns a rope without bytes [start, end).
func (r Rope) Delete(start, end int) Rope {
	if start > end {
		fail(ErrOutOfRange, "delete %d..%d", start, end)
	}
	r.checkOffset(start)
	r.checkOffset(end)
	return r.Edit([]Op{Retain(start), Delete(end - start), Retain(r.LenBytes() - end)})
}

// Replace returns a rope with bytes [start, end) replaced by s.
func (r Rope) Replace(start, end int, s string) Rope {
	if start > end {
		fail(ErrOutOfRange, "replace %d..%d", start, end)
	}
	r.checkOffset(start)
	r.checkOffset(end)
	return r.Edit([]Op{Retain(start), Delete(end - start), Insert(s), Retain(r.LenBytes() - end)})
}
