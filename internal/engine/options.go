package engine

import (
	"github.com/dshills/ropecore/internal/config"
	"github.com/dshills/ropecore/internal/engine/cache"
	"github.com/dshills/ropecore/internal/engine/rope"
	"github.com/dshills/ropecore/internal/logging"
)

// LineEnding is the line break inserted by InsertNewline.
type LineEnding string

// Line ending styles.
const (
	LineEndingLF   LineEnding = "\n"
	LineEndingCRLF LineEnding = "\r\n"
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithContent sets the initial content of the engine.
func WithContent(content string) Option {
	return func(e *Engine) {
		e.initContent = content
	}
}

// WithTabWidth sets the tab width for the engine.
func WithTabWidth(width int) Option {
	return func(e *Engine) {
		if width > 0 {
			e.tabWidth = width
		}
	}
}

// WithIndentWidth sets the number of columns InsertTab indents by.
func WithIndentWidth(width int) Option {
	return func(e *Engine) {
		if width > 0 {
			e.indentWidth = width
		}
	}
}

// WithEastAsianWide measures ambiguous-width characters as two columns.
func WithEastAsianWide(wide bool) Option {
	return func(e *Engine) {
		e.eastAsianWide = wide
	}
}

// WithLineEnding sets the line ending style for the engine.
func WithLineEnding(ending LineEnding) Option {
	return func(e *Engine) {
		e.lineEnding = ending
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxUndoEntries = max
		}
	}
}

// WithMaxRevisions sets the maximum number of revisions kept for rebasing.
func WithMaxRevisions(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxRevisions = max
		}
	}
}

// WithReadOnly creates a read-only engine.
// Write operations will return ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.readOnly = true
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.baseLog = l
		}
	}
}

// withLogLevel gives the engine its own copy of the logger at level, so
// the caller's logger keeps its level.
func withLogLevel(level logging.Level) Option {
	return func(e *Engine) {
		e.baseLog = e.baseLog.WithLevel(level)
	}
}

// WithDecorationSource sets the producer of per-line decorations.
func WithDecorationSource(src cache.DecorationSource) Option {
	return func(e *Engine) {
		e.decorationSource = src
	}
}

// WithTokenizer enables the token cache.
func WithTokenizer[S comparable](tok cache.Tokenizer[S]) Option {
	return func(e *Engine) {
		e.newTokens = func(r rope.Rope) tokenCache {
			return cache.NewTokenCache[S](r, tok)
		}
	}
}

// settingsOptions turns settings into options.
func settingsOptions(s config.Settings) []Option {
	return []Option{
		WithTabWidth(s.TabWidth),
		WithIndentWidth(s.IndentWidth),
		WithEastAsianWide(s.EastAsianWide),
		WithMaxUndoEntries(s.MaxUndoEntries),
		WithMaxRevisions(s.MaxRevisions),
	}
}
