package rope

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Builder provides efficient incremental construction of a rope.
// Text is buffered and cut into leaves after line feeds, which are always
// grapheme boundaries, so writes may split code points or clusters freely.
type Builder struct {
	leaves   []*node
	buffer   strings.Builder
	totalLen int
	invalid  bool
}

// NewBuilder creates a new rope builder.
func NewBuilder() *Builder {
	return &Builder{
		leaves: make([]*node, 0, 64),
	}
}

// WriteString appends a string to the builder.
func (b *Builder) WriteString(s string) (int, error) {
	if len(s) == 0 {
		return 0, nil
	}
	b.totalLen += len(s)
	b.buffer.WriteString(s)
	if b.buffer.Len() >= 4*MaxChunkSize {
		b.flush(false)
	}
	return len(s), nil
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (int, error) {
	return b.WriteString(string(p))
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) error {
	b.totalLen++
	return b.buffer.WriteByte(c)
}

// WriteRune appends a single rune.
func (b *Builder) WriteRune(r rune) (int, error) {
	n, err := b.buffer.WriteRune(r)
	b.totalLen += n
	return n, err
}

// ReadFrom implements io.ReaderFrom.
func (b *Builder) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, 64*1024)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			b.WriteString(string(buf[:n]))
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// flush moves buffered text into leaves. Unless all is set, only text up
// to the last line feed is moved, and only when that is a sizeable amount.
func (b *Builder) flush(all bool) {
	s := b.buffer.String()
	cut := len(s)
	if !all {
		cut = strings.LastIndexByte(s, '\n') + 1
		if cut < 2*MaxChunkSize {
			return
		}
	}
	if !utf8.ValidString(s[:cut]) {
		b.invalid = true
	}
	for _, piece := range splitText(s[:cut]) {
		b.leaves = append(b.leaves, newLeaf(NewChunk(piece)))
	}
	rest := s[cut:]
	b.buffer.Reset()
	b.buffer.WriteString(rest)
}

// Len returns the total number of bytes written.
func (b *Builder) Len() int {
	return b.totalLen
}

// Valid reports whether everything written so far is valid UTF-8.
func (b *Builder) Valid() bool {
	return !b.invalid && utf8.ValidString(b.buffer.String())
}

// Reset clears the builder for reuse.
func (b *Builder) Reset() {
	b.leaves = b.leaves[:0]
	b.buffer.Reset()
	b.totalLen = 0
	b.invalid = false
}

// Build creates the rope from accumulated data.
// After calling Build, the builder is reset.
func (b *Builder) Build() Rope {
	b.flush(true)
	if len(b.leaves) == 0 {
		b.Reset()
		return New()
	}
	root := buildLevels(b.leaves)
	b.leaves = nil
	b.Reset()
	return Rope{root: root}
}

// FromLines creates a rope from a slice of lines.
// Each line will have a newline appended except the last.
func FromLines(lines []string) Rope {
	b := NewBuilder()
	for i, line := range lines {
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.Build()
}

// Join concatenates multiple ropes with a separator.
func Join(ropes []Rope, sep string) Rope {
	if len(ropes) == 0 {
		return New()
	}
	result := ropes[0]
	sepRope := FromString(sep)
	for _, r := range ropes[1:] {
		result = result.Append(sepRope).Append(r)
	}
	return result
}
