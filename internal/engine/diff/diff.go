package diff

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dshills/ropecore/internal/engine/text"
)

// Kind identifies an operation type.
type Kind uint8

const (
	// Retain keeps a run of the base text.
	Retain Kind = iota
	// Insert adds new text.
	Insert
	// Delete removes a run of the base text.
	Delete
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Retain:
		return "retain"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// Op is a single operation. For inserts Len is the length of Text.
type Op struct {
	Kind Kind
	Len  text.Length
	Text string
}

func (o Op) String() string {
	if o.Kind == Insert {
		return fmt.Sprintf("insert(%q)", o.Text)
	}
	return fmt.Sprintf("%s(%v)", o.Kind, o.Len)
}

// Diff is an immutable, canonical sequence of operations.
// The zero value is the identity on the empty text.
type Diff struct {
	ops []Op
}

// Identity returns the diff that keeps a text of length l unchanged.
func Identity(l text.Length) Diff {
	return NewBuilder().Retain(l).Finish()
}

// Replace returns the diff that replaces r with s in a text of length base.
func Replace(base text.Length, r text.Range, s string) Diff {
	return NewBuilder().
		Retain(r.Start.ToLength()).
		Delete(r.Len()).
		Insert(s).
		Retain(base.ToPosition().Sub(r.End)).
		Finish()
}

// FromOps builds a canonical diff from arbitrary operations.
func FromOps(ops ...Op) Diff {
	b := NewBuilder()
	for _, op := range ops {
		b.Add(op)
	}
	return b.Finish()
}

// Ops returns a copy of the operations.
func (d Diff) Ops() []Op {
	return slices.Clone(d.ops)
}

// Len returns the number of operations.
func (d Diff) Len() int {
	return len(d.ops)
}

// BaseLen returns the length of the text the diff applies to.
func (d Diff) BaseLen() text.Length {
	var l text.Length
	for _, op := range d.ops {
		if op.Kind != Insert {
			l = l.Add(op.Len)
		}
	}
	return l
}

// TargetLen returns the length of the text the diff produces.
func (d Diff) TargetLen() text.Length {
	var l text.Length
	for _, op := range d.ops {
		if op.Kind != Delete {
			l = l.Add(op.Len)
		}
	}
	return l
}

// IsIdentity reports whether the diff changes nothing.
func (d Diff) IsIdentity() bool {
	for _, op := range d.ops {
		if op.Kind != Retain {
			return false
		}
	}
	return true
}

// Equal reports whether two diffs have identical operations.
func (d Diff) Equal(other Diff) bool {
	return slices.Equal(d.ops, other.ops)
}

func (d Diff) String() string {
	parts := make([]string, len(d.ops))
	for i, op := range d.ops {
		parts[i] = op.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Builder accumulates operations in canonical form.
type Builder struct {
	ops []Op
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends op, dispatching on its kind.
func (b *Builder) Add(op Op) *Builder {
	switch op.Kind {
	case Retain:
		return b.Retain(op.Len)
	case Insert:
		return b.Insert(op.Text)
	default:
		return b.Delete(op.Len)
	}
}

// Retain keeps l of the base text.
func (b *Builder) Retain(l text.Length) *Builder {
	if l.IsZero() {
		return b
	}
	if n := len(b.ops); n > 0 && b.ops[n-1].Kind == Retain {
		b.ops[n-1].Len = b.ops[n-1].Len.Add(l)
		return b
	}
	b.ops = append(b.ops, Op{Kind: Retain, Len: l})
	return b
}

// Insert adds s at the current position.
func (b *Builder) Insert(s string) *Builder {
	if s == "" {
		return b
	}
	if n := len(b.ops); n > 0 && b.ops[n-1].Kind == Insert {
		last := &b.ops[n-1]
		last.Text += s
		last.Len = text.LengthOf(last.Text)
		return b
	}
	b.ops = append(b.ops, Op{Kind: Insert, Len: text.LengthOf(s), Text: s})
	return b
}

// Delete removes l of the base text. A delete following an insert is
// moved in front of it.
func (b *Builder) Delete(l text.Length) *Builder {
	if l.IsZero() {
		return b
	}
	n := len(b.ops)
	switch {
	case n > 0 && b.ops[n-1].Kind == Delete:
		b.ops[n-1].Len = b.ops[n-1].Len.Add(l)
	case n > 1 && b.ops[n-1].Kind == Insert && b.ops[n-2].Kind == Delete:
		b.ops[n-2].Len = b.ops[n-2].Len.Add(l)
	case n > 0 && b.ops[n-1].Kind == Insert:
		b.ops = slices.Insert(b.ops, n-1, Op{Kind: Delete, Len: l})
	default:
		b.ops = append(b.ops, Op{Kind: Delete, Len: l})
	}
	return b
}

// Finish returns the diff and resets the builder.
func (b *Builder) Finish() Diff {
	d := Diff{ops: b.ops}
	b.ops = nil
	return d
}

// split cuts op after n, which must not exceed op.Len.
func split(op Op, n text.Length) (Op, Op) {
	rest := op.Len.Sub(n)
	if op.Kind != Insert {
		return Op{Kind: op.Kind, Len: n}, Op{Kind: op.Kind, Len: rest}
	}
	at := text.OffsetOf(op.Text, n)
	return Op{Kind: Insert, Len: n, Text: op.Text[:at]}, Op{Kind: Insert, Len: rest, Text: op.Text[at:]}
}

// stream walks the operations of a diff, holding a partially consumed
// operation in cur.
type stream struct {
	ops []Op
	i   int
	cur Op
	ok  bool
}

func newStream(d Diff) *stream {
	s := &stream{ops: d.ops}
	s.next()
	return s
}

func (s *stream) next() {
	if s.i < len(s.ops) {
		s.cur, s.ok = s.ops[s.i], true
		s.i++
		return
	}
	s.cur, s.ok = Op{}, false
}

func (s *stream) is(k Kind) bool {
	return s.ok && s.cur.Kind == k
}

// consume replaces the current operation with its unconsumed rest.
func (s *stream) consume(rest Op) {
	if rest.Len.IsZero() {
		s.next()
		return
	}
	s.cur = rest
}

// cut splits the current operations of a and b at their common length.
func cut(a, b *stream) (Op, Op) {
	n := a.cur.Len
	if b.cur.Len.Compare(n) < 0 {
		n = b.cur.Len
	}
	ah, ar := split(a.cur, n)
	bh, br := split(b.cur, n)
	a.consume(ar)
	b.consume(br)
	return ah, bh
}
