package cache

import (
	"slices"

	"github.com/dshills/ropecore/internal/engine/diff"
	"github.com/dshills/ropecore/internal/engine/rope"
)

// TokenKind is an opaque token classification chosen by the tokenizer.
type TokenKind uint16

// Token covers Len bytes of a line.
type Token struct {
	Len  int
	Kind TokenKind
}

// Tokenizer splits one line into tokens. The state carries context such as
// an open block comment from the end of one line to the start of the next.
// S must be comparable so the cache can tell when a line's result no
// longer holds.
type Tokenizer[S comparable] interface {
	Tokenize(line string, state S) ([]Token, S)
}

// TokenizerFunc adapts a function to the Tokenizer interface.
type TokenizerFunc[S comparable] func(line string, state S) ([]Token, S)

// Tokenize calls f.
func (f TokenizerFunc[S]) Tokenize(line string, state S) ([]Token, S) {
	return f(line, state)
}

type tokenLine[S comparable] struct {
	tokens []Token
	start  S
	end    S
}

// TokenCache holds the tokens of every line.
type TokenCache[S comparable] struct {
	lines *Lines[tokenLine[S]]
	tok   Tokenizer[S]
}

// NewTokenCache creates a token cache for r and tokenizes every line.
func NewTokenCache[S comparable](r rope.Rope, tok Tokenizer[S]) *TokenCache[S] {
	c := &TokenCache[S]{lines: NewLines[tokenLine[S]](r.LenLines()), tok: tok}
	c.Refresh(r)
	return c
}

// Len returns the number of lines in the cache.
func (c *TokenCache[S]) Len() int {
	return c.lines.Len()
}

// Tokens returns a copy of the tokens of line.
func (c *TokenCache[S]) Tokens(line int) []Token {
	return slices.Clone(c.lines.Value(line).tokens)
}

// EndState returns the tokenizer state at the end of line.
func (c *TokenCache[S]) EndState(line int) S {
	return c.lines.Value(line).end
}

// Invalidate realigns the cache with text edited by d.
func (c *TokenCache[S]) Invalidate(d diff.Diff) {
	c.lines.Invalidate(d)
}

// Refresh re-tokenizes dirty lines in r. A line whose incoming state has
// changed is re-tokenized too, so a change in state ripples down until it
// settles. It returns the number of lines tokenized.
func (c *TokenCache[S]) Refresh(r rope.Rope) int {
	c.lines.Check(r)
	var state S
	n := 0
	for line := 0; line < c.lines.Len(); line++ {
		tl := c.lines.Value(line)
		if !c.lines.IsDirty(line) && tl.start == state {
			state = tl.end
			continue
		}
		tokens, end := c.tok.Tokenize(lineText(r, line), state)
		c.lines.Set(line, tokenLine[S]{tokens: tokens, start: state, end: end})
		state = end
		n++
	}
	return n
}
