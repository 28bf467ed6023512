package engine

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/ropecore/internal/config"
	"github.com/dshills/ropecore/internal/engine/cache"
	"github.com/dshills/ropecore/internal/engine/cursor"
	"github.com/dshills/ropecore/internal/engine/diff"
	"github.com/dshills/ropecore/internal/engine/grapheme"
	"github.com/dshills/ropecore/internal/engine/history"
	"github.com/dshills/ropecore/internal/engine/rope"
	"github.com/dshills/ropecore/internal/engine/text"
	"github.com/dshills/ropecore/internal/engine/tracking"
	"github.com/dshills/ropecore/internal/logging"
)

// Re-export commonly used types for convenience.
type (
	// Position is a line and a byte offset within it.
	Position = text.Position

	// Cursor is a caret with an anchor.
	Cursor = cursor.Cursor

	// RevisionID identifies a text state in the revision log.
	RevisionID = tracking.RevisionID

	// SnapshotID uniquely identifies a named snapshot.
	SnapshotID = tracking.SnapshotID
)

// tokenCache is the type-erased view of a cache.TokenCache.
type tokenCache interface {
	Len() int
	Tokens(line int) []cache.Token
	Invalidate(d diff.Diff)
	Refresh(r rope.Rope) int
}

// Engine is an editing session: a text with cursors, derived caches,
// undo history and a revision log. Every edit, local or remote, goes
// through the same path: the diff is applied to the text, then to the
// cursors, then to the caches, and is finally recorded.
//
// All operations are thread-safe and can be called from multiple goroutines.
type Engine struct {
	mu sync.RWMutex

	id uuid.UUID

	// Core components
	rope        rope.Rope
	cursors     *cursor.Set
	measurer    grapheme.Measurer
	history     *history.History
	revisions   *tracking.Log
	indent      *cache.IndentCache
	decorations *cache.DecorationCache
	tokens      tokenCache

	// Configuration
	tabWidth         int
	indentWidth      int
	eastAsianWide    bool
	lineEnding       LineEnding
	maxUndoEntries   int
	maxRevisions     int
	readOnly         bool
	decorationSource cache.DecorationSource
	newTokens        func(rope.Rope) tokenCache

	baseLog *logging.Logger
	log     *logging.Logger

	// Initialization
	initContent string
}

// New creates a new Engine with the given options.
func New(opts ...Option) *Engine {
	e := newEngine(opts)
	e.init(rope.FromString(e.initContent))
	return e
}

// NewFromReader creates an Engine from an io.Reader.
func NewFromReader(r io.Reader, opts ...Option) (*Engine, error) {
	e := newEngine(opts)
	rp, err := rope.FromReader(r)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	e.init(rp)
	return e, nil
}

// NewFromConfig creates an Engine from validated settings. Options given
// after the settings take precedence.
func NewFromConfig(s config.Settings, opts ...Option) (*Engine, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("engine settings: %w", err)
	}
	opts = append(settingsOptions(s), opts...)
	return New(append(opts, withLogLevel(s.Level()))...), nil
}

func newEngine(opts []Option) *Engine {
	e := &Engine{
		id:             uuid.New(),
		tabWidth:       config.DefaultTabWidth,
		indentWidth:    config.DefaultIndentWidth,
		lineEnding:     LineEndingLF,
		maxUndoEntries: config.DefaultMaxUndoEntries,
		maxRevisions:   config.DefaultMaxRevisions,
		baseLog:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) init(r rope.Rope) {
	session := e.baseLog.WithField("session", e.id.String())
	e.log = session.WithComponent("engine")

	e.rope = r
	e.cursors = cursor.NewSet()
	e.measurer = grapheme.NewMeasurer(e.tabWidth, e.eastAsianWide)

	e.history = history.NewHistory(e.maxUndoEntries)
	e.history.SetLogger(session)
	e.revisions = tracking.NewLog(r,
		tracking.WithMaxRevisions(e.maxRevisions),
		tracking.WithLogger(session),
	)

	e.indent = cache.NewIndentCache(r, e.measurer)
	e.decorations = cache.NewDecorationCache(r, e.measurer, e.decorationSource)
	if e.newTokens != nil {
		e.tokens = e.newTokens(r)
	}
	e.log.Debug("session started", "bytes", r.LenBytes(), "lines", r.LenLines())
}

// ID returns the session ID attached to every log record.
func (e *Engine) ID() uuid.UUID {
	return e.id
}

// ============================================================================
// Read Operations
// ============================================================================

// Text returns the full content.
// For large texts, prefer Rope.
func (e *Engine) Text() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rope.String()
}

// Rope returns the current text. Ropes are persistent, so the result stays
// valid and unchanged while the engine keeps editing.
func (e *Engine) Rope() rope.Rope {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rope
}

// Length returns the length of the text.
func (e *Engine) Length() text.Length {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rope.Length()
}

// LineCount returns the number of lines.
func (e *Engine) LineCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rope.LenLines()
}

// LineText returns the text of a line without its line break, or "" past
// the last line.
func (e *Engine) LineText(line int) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if line < 0 || line >= e.rope.LenLines() {
		return ""
	}
	return e.rope.LineText(line)[:cursor.LineEnd(e.rope, line)]
}

// IsEmpty returns true if the text is empty.
func (e *Engine) IsEmpty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rope.IsEmpty()
}

// Column returns the visual column of p.
func (e *Engine) Column(p Position) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p = e.clampLocked(p)
	return e.measurer.Column(e.rope.LineText(p.Line), p.Byte)
}

// ============================================================================
// Derived Caches
// ============================================================================

// Indent returns the indentation of line, refreshing the cache first.
func (e *Engine) Indent(line int) (cache.Indent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkLineLocked(line); err != nil {
		return cache.Indent{}, err
	}
	e.indent.Refresh(e.rope)
	return e.indent.Get(line), nil
}

// Decorations returns the spans of line, refreshing the cache first.
func (e *Engine) Decorations(line int) ([]cache.Span, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkLineLocked(line); err != nil {
		return nil, err
	}
	e.decorations.Refresh(e.rope)
	return e.decorations.Spans(line), nil
}

// SetDecorations replaces the spans of line until it is next edited.
func (e *Engine) SetDecorations(line int, spans []cache.Span) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkLineLocked(line); err != nil {
		return err
	}
	e.decorations.Set(line, spans)
	return nil
}

// SetDecorationSource replaces the decoration producer and marks every
// line for recomputation.
func (e *Engine) SetDecorationSource(src cache.DecorationSource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.decorationSource = src
	e.decorations.SetSource(src)
}

// Tokens returns the tokens of line, refreshing the cache first. It
// returns nil when no tokenizer was configured.
func (e *Engine) Tokens(line int) ([]cache.Token, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkLineLocked(line); err != nil {
		return nil, err
	}
	if e.tokens == nil {
		return nil, nil
	}
	e.tokens.Refresh(e.rope)
	return e.tokens.Tokens(line), nil
}

// Refresh recomputes every dirty cache line and returns how many lines
// were recomputed.
func (e *Engine) Refresh() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := e.indent.Refresh(e.rope) + e.decorations.Refresh(e.rope)
	if e.tokens != nil {
		n += e.tokens.Refresh(e.rope)
	}
	if n > 0 {
		e.log.Debug("refreshed caches", "lines", n)
	}
	return n
}

func (e *Engine) checkLineLocked(line int) error {
	if line < 0 || line >= e.rope.LenLines() {
		return fmt.Errorf("%w: %d of %d", ErrLineOutOfRange, line, e.rope.LenLines())
	}
	return nil
}

// ============================================================================
// Write Operations
// ============================================================================

// ApplyDiff applies d to the text. Local diffs were made by this session:
// carets move past inserted text and the edit is recorded for undo. Remote
// diffs keep cursors in front of text inserted at them and are not undoable;
// the undo history is rebased over them so that undo still reverts only
// this session's edits.
func (e *Engine) ApplyDiff(d diff.Diff, local bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	return e.applyLocked(d, local, nil, history.KindOther, "Apply diff")
}

// applyLocked runs the edit data flow. When after is non-nil it replaces
// the cursors instead of moving them through d.
func (e *Engine) applyLocked(d diff.Diff, local bool, after []cursor.Cursor, kind history.Kind, desc string) error {
	before := e.rope
	next, err := diff.Apply(d, before)
	if err != nil {
		return fmt.Errorf("apply diff: %w", err)
	}
	if d.IsIdentity() {
		return nil
	}

	var entry *history.Entry
	if local {
		if entry, err = history.NewEntry(d, before); err != nil {
			return err
		}
	}
	cursorsBefore := orderedCursors(e.cursors)

	if after != nil {
		e.cursors = cursor.NewSetFrom(after...)
	} else {
		e.cursors.ApplyDiff(d, local)
	}
	rev := e.commitLocked(d, next)

	if !local {
		if err := e.history.Rebase(d, next); err != nil {
			e.log.Warn("dropping undo history", "rev", rev, "err", err)
			e.history.Clear()
		}
		e.log.Debug("applied remote diff", "rev", rev, "ops", d.Len())
		return nil
	}
	entry.WithCursors(cursorsBefore, orderedCursors(e.cursors)).WithKind(kind, desc)
	if err := e.history.Push(entry); err != nil {
		return err
	}
	e.log.Debug("applied diff", "rev", rev, "kind", kind, "ops", d.Len())
	return nil
}

// commitLocked installs next as the text and brings the caches and the
// revision log up to date with d.
func (e *Engine) commitLocked(d diff.Diff, next rope.Rope) RevisionID {
	e.rope = next
	e.indent.Invalidate(d)
	e.decorations.Invalidate(d)
	if e.tokens != nil {
		e.tokens.Invalidate(d)
	}
	return e.revisions.Record(d, next)
}

// orderedCursors lists the cursors in ascending order with the latest one
// moved to the end, so that cursor.NewSetFrom restores it as the latest.
func orderedCursors(s *cursor.Set) []cursor.Cursor {
	latest := s.Latest()
	out := make([]cursor.Cursor, 0, s.Len())
	for c := range s.All() {
		if c != latest {
			out = append(out, c)
		}
	}
	return append(out, latest)
}

// editEach replaces, at every cursor, the range f returns with s followed
// by tail. The ranges are combined into one diff and each cursor ends up
// as a caret between its own s and tail.
func (e *Engine) editEach(kind history.Kind, desc string, f func(c cursor.Cursor) (r text.Range, s, tail string)) error {
	b := diff.NewBuilder()
	latest := e.cursors.Latest()
	var (
		prev, newPos text.Position
		carets       []cursor.Cursor
		latestCaret  cursor.Cursor
	)
	for c := range e.cursors.All() {
		r, s, tail := f(c)
		if r.Start.Before(prev) {
			r.Start = prev
		}
		if r.End.Before(r.Start) {
			r.End = r.Start
		}
		gap := r.Start.Sub(prev)
		b.Retain(gap).Delete(r.End.Sub(r.Start)).Insert(s + tail)

		caret := newPos.Add(gap).Add(text.LengthOf(s))
		newPos = caret.Add(text.LengthOf(tail))
		if c == latest {
			latestCaret = cursor.At(caret)
		} else {
			carets = append(carets, cursor.At(caret))
		}
		prev = r.End
	}
	b.Retain(e.rope.Length().ToPosition().Sub(prev))
	return e.applyLocked(b.Finish(), true, append(carets, latestCaret), kind, desc)
}

// InsertText replaces every selection, or inserts at every caret, with s.
func (e *Engine) InsertText(s string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	kind := insertKind(s)
	return e.editEach(kind, kind.String(), func(c cursor.Cursor) (text.Range, string, string) {
		return c.Range(), s, ""
	})
}

func insertKind(s string) history.Kind {
	switch {
	case s == " ":
		return history.KindSpace
	case s == "\t":
		return history.KindTab
	case s == "\n" || s == "\r\n":
		return history.KindNewline
	case grapheme.Count(s) == 1:
		return history.KindInsert
	default:
		return history.KindPaste
	}
}

// InsertNewline breaks the line at every cursor. The new line starts with
// the whitespace that begins the old one, up to the cursor. After an
// unclosed bracket the new line is indented one level deeper, and when the
// matching closer follows the cursor it moves to a line of its own.
func (e *Engine) InsertNewline() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	ending := string(e.lineEnding)
	return e.editEach(history.KindNewline, "newline", func(c cursor.Cursor) (text.Range, string, string) {
		start, end := c.Start(), c.End()
		before := e.rope.LineText(start.Line)[:start.Byte]
		indent := before[:len(before)-len(strings.TrimLeft(before, " \t"))]
		if !opensBlock(before) {
			return c.Range(), ending + indent, ""
		}
		s := ending + indent + strings.Repeat(" ", e.indentWidth)
		if closesBlock(e.rope.LineText(end.Line)[end.Byte:]) {
			return c.Range(), s, ending + indent
		}
		return c.Range(), s, ""
	})
}

// opensBlock reports whether the last bracket in line is an opening one.
func opensBlock(line string) bool {
	i := strings.LastIndexAny(line, "()[]{}")
	return i >= 0 && strings.IndexByte("([{", line[i]) >= 0
}

// closesBlock reports whether rest starts with a closing bracket after any
// whitespace.
func closesBlock(rest string) bool {
	rest = strings.TrimLeft(rest, " \t")
	return rest != "" && strings.IndexByte(")]}", rest[0]) >= 0
}

// InsertTab indents every line touched by a selection. Without
// selections it inserts at every caret the spaces that reach the next
// indent stop.
func (e *Engine) InsertTab() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	if e.cursors.HasSelection() {
		return e.indentLocked()
	}
	return e.editEach(history.KindTab, "indent", func(c cursor.Cursor) (text.Range, string, string) {
		start := c.Start()
		col := e.measurer.Column(e.rope.LineText(start.Line), start.Byte)
		return c.Range(), strings.Repeat(" ", e.indentWidth-col%e.indentWidth), ""
	})
}

// IndentLines moves every line touched by a cursor to its next indent
// stop. Selections are kept.
func (e *Engine) IndentLines() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	return e.indentLocked()
}

func (e *Engine) indentLocked() error {
	w := e.indentWidth
	return e.editLines(history.KindTab, "indent lines", func(line int) (text.Range, string) {
		lt := e.rope.LineText(line)
		ws := leadingSpace(lt)
		p := text.Pos(line, ws)
		return text.Range{Start: p, End: p}, strings.Repeat(" ", w-e.measurer.Column(lt, ws)%w)
	})
}

// OutdentLines moves every line touched by a cursor back to its previous
// indent stop. Selections are kept.
func (e *Engine) OutdentLines() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	w := e.indentWidth
	return e.editLines(history.KindOther, "outdent lines", func(line int) (text.Range, string) {
		lt := e.rope.LineText(line)
		ws := leadingSpace(lt)
		col := e.measurer.Column(lt, ws)
		target := col - min(col, (col+w-1)%w+1)

		// Keep the longest whitespace prefix that fits, then pad with spaces.
		keep := 0
		for b := 1; b <= ws && e.measurer.Column(lt, b) <= target; b++ {
			keep = b
		}
		pad := target - e.measurer.Column(lt, keep)
		return text.Range{Start: text.Pos(line, keep), End: text.Pos(line, ws)}, strings.Repeat(" ", pad)
	})
}

func leadingSpace(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// editLines replaces, on every line touched by a cursor, the range f
// returns for that line. A selection ending at the start of a line does
// not touch it. Each line is edited once however many cursors touch it,
// and cursors keep their selections, moving with the edit.
func (e *Engine) editLines(kind history.Kind, desc string, f func(line int) (text.Range, string)) error {
	var lines []int
	for c := range e.cursors.All() {
		first, last := c.Start().Line, c.End().Line
		if last > first && c.End().Byte == 0 {
			last--
		}
		for l := first; l <= last; l++ {
			if len(lines) == 0 || lines[len(lines)-1] < l {
				lines = append(lines, l)
			}
		}
	}

	b := diff.NewBuilder()
	var prev text.Position
	for _, l := range lines {
		r, s := f(l)
		b.Retain(r.Start.Sub(prev)).Delete(r.End.Sub(r.Start)).Insert(s)
		prev = r.End
	}
	b.Retain(e.rope.Length().ToPosition().Sub(prev))
	d := b.Finish()

	after := orderedCursors(e.cursors)
	for i, c := range after {
		after[i] = cursor.Select(
			diff.ApplyToPosition(c.Anchor, d, diff.InsertBefore),
			diff.ApplyToPosition(c.Caret, d, diff.InsertBefore),
		)
	}
	return e.applyLocked(d, true, after, kind, desc)
}

// DeleteBackward deletes every selection, or the grapheme before every
// caret. A line break counts as one grapheme.
func (e *Engine) DeleteBackward() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	kind := history.KindBackspace
	if e.cursors.HasSelection() {
		kind = history.KindOther
	}
	return e.editEach(kind, "delete backward", func(c cursor.Cursor) (text.Range, string, string) {
		if !c.IsEmpty() {
			return c.Range(), "", ""
		}
		prev := cursor.MoveLeft(e.rope, c, false).Caret
		return text.Range{Start: prev, End: c.Caret}, "", ""
	})
}

// DeleteForward deletes every selection, or the grapheme after every caret.
func (e *Engine) DeleteForward() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	kind := history.KindDelete
	if e.cursors.HasSelection() {
		kind = history.KindOther
	}
	return e.editEach(kind, "delete forward", func(c cursor.Cursor) (text.Range, string, string) {
		if !c.IsEmpty() {
			return c.Range(), "", ""
		}
		next := cursor.MoveRight(e.rope, c, false).Caret
		return text.Range{Start: c.Caret, End: next}, "", ""
	})
}

// SelectedText returns the text of every selection in document order,
// joined without a separator.
func (e *Engine) SelectedText() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selectedLocked()
}

func (e *Engine) selectedLocked() string {
	var sb strings.Builder
	for c := range e.cursors.All() {
		if c.IsEmpty() {
			continue
		}
		start := e.rope.PositionToOffset(c.Start())
		end := e.rope.PositionToOffset(c.End())
		sb.WriteString(e.rope.Slice(start, end).String())
	}
	return sb.String()
}

// Cut removes every selection and returns the removed text as
// SelectedText would. Carets are left alone.
func (e *Engine) Cut() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return "", ErrReadOnly
	}
	cut := e.selectedLocked()
	if cut == "" {
		return "", nil
	}
	err := e.editEach(history.KindCut, "cut", func(c cursor.Cursor) (text.Range, string, string) {
		return c.Range(), "", ""
	})
	if err != nil {
		return "", err
	}
	return cut, nil
}

// Replace replaces r with s as a single local edit. Cursors move through
// the edit.
func (e *Engine) Replace(r text.Range, s string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	r = text.Range{Start: e.clampLocked(r.Start), End: e.clampLocked(r.End)}
	if r.End.Before(r.Start) {
		r.Start, r.End = r.End, r.Start
	}
	return e.applyLocked(diff.Replace(e.rope.Length(), r, s), true, nil, history.KindOther, "replace")
}

// SetText replaces the content with s using a minimal diff, so that
// cursors and cached lines in unchanged regions survive.
func (e *Engine) SetText(s string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	d := diff.FromTexts(e.rope.String(), s)
	return e.applyLocked(d, true, nil, history.KindOther, "set text")
}

// Clear removes all content. The removal can be undone.
func (e *Engine) Clear() error {
	return e.SetText("")
}

// ============================================================================
// Cursor Operations
// ============================================================================

// Cursors returns all cursors in ascending order.
func (e *Engine) Cursors() []Cursor {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cursors.Slice()
}

// LatestCursor returns the most recently placed cursor.
func (e *Engine) LatestCursor() Cursor {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cursors.Latest()
}

// CursorCount returns the number of cursors.
func (e *Engine) CursorCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cursors.Len()
}

// SetCursor replaces every cursor with a caret at p, clamped to the text.
func (e *Engine) SetCursor(p Position) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursors.Set(cursor.At(e.clampLocked(p)))
	e.history.BreakCoalescing()
}

// SetSelection replaces every cursor with one selecting anchor to caret.
func (e *Engine) SetSelection(anchor, caret Position) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursors.Set(cursor.Select(e.clampLocked(anchor), e.clampLocked(caret)))
	e.history.BreakCoalescing()
}

// AddCursor adds a caret at p as the latest cursor. It merges with any
// cursor it touches.
func (e *Engine) AddCursor(p Position) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursors.Push(cursor.At(e.clampLocked(p)))
	e.history.BreakCoalescing()
}

// AddSelection adds a selection as the latest cursor.
func (e *Engine) AddSelection(anchor, caret Position) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursors.Push(cursor.Select(e.clampLocked(anchor), e.clampLocked(caret)))
	e.history.BreakCoalescing()
}

// ClearSecondary removes all cursors except the latest.
func (e *Engine) ClearSecondary() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursors.ClearEarlier()
}

// clampLocked returns the nearest grapheme boundary to p that lies within
// the visual extent of its line.
func (e *Engine) clampLocked(p Position) Position {
	last := e.rope.LenLines() - 1
	switch {
	case p.Line < 0:
		return text.Position{}
	case p.Line > last:
		return text.Pos(last, cursor.LineEnd(e.rope, last))
	}
	line := e.rope.LineText(p.Line)
	b := max(0, min(p.Byte, cursor.LineEnd(e.rope, p.Line)))
	if !grapheme.IsBoundary(line, b) {
		b, _ = grapheme.PrevBoundary(line, b)
	}
	return text.Pos(p.Line, b)
}

// ============================================================================
// Motion
// ============================================================================

// move applies a motion to every cursor and ends the current undo step.
func (e *Engine) move(f func(c cursor.Cursor) cursor.Cursor) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursors.UpdateAll(f)
	e.history.BreakCoalescing()
}

// MoveLeft moves every caret one grapheme left.
func (e *Engine) MoveLeft(extend bool) {
	e.move(func(c cursor.Cursor) cursor.Cursor { return cursor.MoveLeft(e.rope, c, extend) })
}

// MoveRight moves every caret one grapheme right.
func (e *Engine) MoveRight(extend bool) {
	e.move(func(c cursor.Cursor) cursor.Cursor { return cursor.MoveRight(e.rope, c, extend) })
}

// MoveUp moves every caret one line up, keeping its visual column.
func (e *Engine) MoveUp(extend bool) {
	e.move(func(c cursor.Cursor) cursor.Cursor { return cursor.MoveUp(e.rope, e.measurer, c, extend) })
}

// MoveDown moves every caret one line down, keeping its visual column.
func (e *Engine) MoveDown(extend bool) {
	e.move(func(c cursor.Cursor) cursor.Cursor { return cursor.MoveDown(e.rope, e.measurer, c, extend) })
}

// MoveToLineStart moves every caret to the start of its line.
func (e *Engine) MoveToLineStart(extend bool) {
	e.move(func(c cursor.Cursor) cursor.Cursor { return cursor.MoveToLineStart(c, extend) })
}

// MoveToLineEnd moves every caret to the end of its line.
func (e *Engine) MoveToLineEnd(extend bool) {
	e.move(func(c cursor.Cursor) cursor.Cursor { return cursor.MoveToLineEnd(e.rope, c, extend) })
}

// MoveToTextStart moves every caret to the start of the text.
func (e *Engine) MoveToTextStart(extend bool) {
	e.move(func(c cursor.Cursor) cursor.Cursor { return cursor.MoveToTextStart(c, extend) })
}

// MoveToTextEnd moves every caret to the end of the text.
func (e *Engine) MoveToTextEnd(extend bool) {
	e.move(func(c cursor.Cursor) cursor.Cursor { return cursor.MoveToTextEnd(e.rope, c, extend) })
}

// SelectAll replaces every cursor with one selecting the whole text.
func (e *Engine) SelectAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursors.Set(cursor.SelectAll(e.rope))
	e.history.BreakCoalescing()
}

// ============================================================================
// Undo/Redo Operations
// ============================================================================

// Undo undoes the last operation.
func (e *Engine) Undo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	return e.history.Undo(e.restoreLocked)
}

// Redo redoes the last undone operation.
func (e *Engine) Redo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	return e.history.Redo(e.restoreLocked)
}

// restoreLocked is the history.ApplyFunc for undo and redo.
func (e *Engine) restoreLocked(d diff.Diff, cursors []cursor.Cursor) error {
	next, err := diff.Apply(d, e.rope)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if d.IsIdentity() {
		if len(cursors) > 0 {
			e.cursors = cursor.NewSetFrom(cursors...)
		}
		return nil
	}
	if len(cursors) > 0 {
		e.cursors = cursor.NewSetFrom(cursors...)
	} else {
		e.cursors.ApplyDiff(d, true)
	}
	e.commitLocked(d, next)
	return nil
}

// CanUndo returns true if undo is available.
func (e *Engine) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (e *Engine) CanRedo() bool {
	return e.history.CanRedo()
}

// UndoCount returns the number of available undo operations.
func (e *Engine) UndoCount() int {
	return e.history.UndoCount()
}

// RedoCount returns the number of available redo operations.
func (e *Engine) RedoCount() int {
	return e.history.RedoCount()
}

// BeginUndoGroup starts a new undo group.
// All operations until EndUndoGroup will be undone as a single unit.
func (e *Engine) BeginUndoGroup(name string) {
	e.history.BeginGroup(name)
}

// EndUndoGroup ends the current undo group.
func (e *Engine) EndUndoGroup() error {
	return e.history.EndGroup()
}

// CancelUndoGroup cancels the current undo group without recording.
func (e *Engine) CancelUndoGroup() {
	e.history.CancelGroup()
}

// Transaction runs fn as one undo step: edits made while fn runs are
// grouped. If fn fails they are reverted and its error is returned. fn
// runs without the engine's lock held, so it may call any Engine method.
func (e *Engine) Transaction(name string, fn func() error) error {
	if e.readOnly {
		return ErrReadOnly
	}
	rollback := func(d diff.Diff, cursors []cursor.Cursor) error {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.restoreLocked(d, cursors)
	}
	return e.history.Transaction(name, rollback, fn)
}

// Checkpoint marks the current undo depth.
func (e *Engine) Checkpoint() history.Checkpoint {
	return e.history.CreateCheckpoint()
}

// UndoToCheckpoint undoes every step recorded after cp was taken.
func (e *Engine) UndoToCheckpoint(cp history.Checkpoint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	return e.history.UndoToCheckpoint(cp, e.restoreLocked)
}

// RedoToCheckpoint redoes undone steps until the undo depth of cp is
// reached again.
func (e *Engine) RedoToCheckpoint(cp history.Checkpoint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	return e.history.RedoToCheckpoint(cp, e.restoreLocked)
}

// ClearHistory removes all undo/redo history.
func (e *Engine) ClearHistory() {
	e.history.Clear()
}

// UndoInfo describes the available undo steps, oldest first.
func (e *Engine) UndoInfo() []history.OperationInfo {
	return e.history.UndoInfo()
}

// ============================================================================
// Revision Tracking
// ============================================================================

// Revision returns the current revision.
func (e *Engine) Revision() RevisionID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.revisions.Current()
}

// ChangesSince returns one diff taking revision rev to the current text.
func (e *Engine) ChangesSince(rev RevisionID) (diff.Diff, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.revisions.ChangesSince(rev)
}

// ChangesBetween returns one diff taking revision from to revision to.
func (e *Engine) ChangesBetween(from, to RevisionID) (diff.Diff, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.revisions.ChangesBetween(from, to)
}

// ChangeSummary counts the edits made since revision rev.
func (e *Engine) ChangeSummary(rev RevisionID) (tracking.Summary, error) {
	d, err := e.ChangesSince(rev)
	if err != nil {
		return tracking.Summary{}, err
	}
	return tracking.Summarize(d), nil
}

// Rebase applies d, which was made against revision base, as a remote
// edit after transforming it over everything applied since.
func (e *Engine) Rebase(d diff.Diff, base RevisionID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readOnly {
		return ErrReadOnly
	}
	rebased, err := e.revisions.Rebase(d, base)
	if err != nil {
		return err
	}
	return e.applyLocked(rebased, false, nil, history.KindOther, "rebase")
}

// CreateSnapshot creates a named snapshot of the current state.
func (e *Engine) CreateSnapshot(name string) SnapshotID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.revisions.CreateSnapshot(name)
}

// GetSnapshot retrieves a snapshot by ID.
func (e *Engine) GetSnapshot(id SnapshotID) (*tracking.Snapshot, error) {
	snap, ok := e.revisions.Snapshots().Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	return snap, nil
}

// GetSnapshotByName retrieves a snapshot by name.
func (e *Engine) GetSnapshotByName(name string) (*tracking.Snapshot, error) {
	snap, ok := e.revisions.Snapshots().GetByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSnapshotNotFound, name)
	}
	return snap, nil
}

// ListSnapshots returns every snapshot, oldest first.
func (e *Engine) ListSnapshots() []*tracking.Snapshot {
	return e.revisions.Snapshots().List()
}

// SnapshotCount returns the number of snapshots.
func (e *Engine) SnapshotCount() int {
	return e.revisions.Snapshots().Count()
}

// DeleteSnapshot removes a snapshot by ID.
func (e *Engine) DeleteSnapshot(id SnapshotID) error {
	if !e.revisions.Snapshots().Delete(id) {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	return nil
}

// DeleteSnapshotByName removes a snapshot by name.
func (e *Engine) DeleteSnapshotByName(name string) error {
	if !e.revisions.Snapshots().DeleteByName(name) {
		return fmt.Errorf("%w: %q", ErrSnapshotNotFound, name)
	}
	return nil
}

// PruneSnapshots keeps the keep newest snapshots and returns how many
// were removed.
func (e *Engine) PruneSnapshots(keep int) int {
	n := e.revisions.Snapshots().PruneKeepN(keep)
	e.log.Debug("pruned snapshots", "removed", n)
	return n
}

// PruneSnapshotsOlderThan removes snapshots taken more than age ago and
// returns how many were removed.
func (e *Engine) PruneSnapshotsOlderThan(age time.Duration) int {
	n := e.revisions.Snapshots().Prune(age)
	e.log.Debug("pruned snapshots", "removed", n, "age", age)
	return n
}

// DiffSinceSnapshot returns a diff taking the snapshot's text to the
// current text.
func (e *Engine) DiffSinceSnapshot(id SnapshotID) (diff.Diff, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.revisions.DiffSinceSnapshot(id)
}

// RestoreSnapshot makes the snapshot's text current as one undoable edit.
func (e *Engine) RestoreSnapshot(id SnapshotID) error {
	snap, err := e.GetSnapshot(id)
	if err != nil {
		return err
	}
	return e.SetText(snap.Text())
}

// ============================================================================
// Configuration
// ============================================================================

// TabWidth returns the tab width.
func (e *Engine) TabWidth() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tabWidth
}

// IsReadOnly returns true if the engine is read-only.
func (e *Engine) IsReadOnly() bool {
	return e.readOnly
}
