package engine

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dshills/ropecore/internal/config"
	"github.com/dshills/ropecore/internal/engine/cache"
	"github.com/dshills/ropecore/internal/engine/cursor"
	"github.com/dshills/ropecore/internal/engine/diff"
	"github.com/dshills/ropecore/internal/engine/rope"
	"github.com/dshills/ropecore/internal/engine/text"
	"github.com/dshills/ropecore/internal/logging"
)

func expectText(t *testing.T, e *Engine, want string) {
	t.Helper()
	if got := e.Text(); got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func expectCarets(t *testing.T, e *Engine, want ...text.Position) {
	t.Helper()
	var got []text.Position
	for _, c := range e.Cursors() {
		if !c.IsEmpty() {
			t.Fatalf("cursor %v is a selection", c)
		}
		got = append(got, c.Caret)
	}
	if !slices.Equal(got, want) {
		t.Fatalf("carets = %v, want %v", got, want)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ============================================================================
// Construction
// ============================================================================

func TestNew(t *testing.T) {
	e := New()
	if !e.IsEmpty() || e.LineCount() != 1 || e.Text() != "" {
		t.Errorf("expected empty engine, got %q", e.Text())
	}
	if e.ID() == uuid.Nil {
		t.Error("session has no ID")
	}
	if New().ID() == e.ID() {
		t.Error("sessions share an ID")
	}
	expectCarets(t, e, text.Pos(0, 0))
}

func TestNewWithContent(t *testing.T) {
	content := "Hello,\r\nWorld!"
	e := New(WithContent(content))

	expectText(t, e, content)
	if e.LineCount() != 2 {
		t.Errorf("expected 2 lines, got %d", e.LineCount())
	}
	if e.LineText(0) != "Hello," || e.LineText(1) != "World!" || e.LineText(2) != "" {
		t.Errorf("unexpected line text %q %q", e.LineText(0), e.LineText(1))
	}
	if e.Length() != text.Len(1, 6) {
		t.Errorf("length = %v", e.Length())
	}
}

func TestNewFromReader(t *testing.T) {
	e, err := NewFromReader(strings.NewReader("Hello, World!"))
	must(t, err)
	expectText(t, e, "Hello, World!")
}

func TestNewFromConfig(t *testing.T) {
	s := config.Default()
	s.TabWidth = 2
	e, err := NewFromConfig(s, WithContent("\tx"))
	must(t, err)
	if got := e.Column(text.Pos(0, 1)); got != 2 {
		t.Errorf("column after tab = %d, want 2", got)
	}
	if e.TabWidth() != 2 {
		t.Errorf("TabWidth() = %d", e.TabWidth())
	}

	var buf bytes.Buffer
	caller := logging.New(logging.Config{Level: logging.LevelInfo, Output: &buf})
	s.LogLevel = "debug"
	e, err = NewFromConfig(s, WithLogger(caller))
	must(t, err)
	must(t, e.InsertText("x"))
	if !strings.Contains(buf.String(), "applied diff") {
		t.Errorf("engine did not log at the configured level:\n%s", buf.String())
	}
	if caller.Enabled(logging.LevelDebug) {
		t.Error("settings changed the caller's logger level")
	}

	s.TabWidth = 0
	if _, err := NewFromConfig(s); !errors.Is(err, config.ErrValidationFailed) {
		t.Errorf("invalid settings: err = %v", err)
	}
}

func TestSessionLogging(t *testing.T) {
	var buf bytes.Buffer
	e := New(WithLogger(logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf})))
	must(t, e.InsertText("x"))

	out := buf.String()
	for _, want := range []string{"session=" + e.ID().String(), "component=engine", "applied diff", "component=history"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

// ============================================================================
// Editing
// ============================================================================

func TestInsertText(t *testing.T) {
	e := New(WithContent("hello"))
	e.SetCursor(text.Pos(0, 5))
	must(t, e.InsertText(" world"))

	expectText(t, e, "hello world")
	expectCarets(t, e, text.Pos(0, 11))
}

func TestInsertReplacesSelection(t *testing.T) {
	e := New(WithContent("Hello, World!"))
	e.SetSelection(text.Pos(0, 7), text.Pos(0, 12))
	must(t, e.InsertText("Go"))

	expectText(t, e, "Hello, Go!")
	expectCarets(t, e, text.Pos(0, 9))
}

func TestMultiCursorInsert(t *testing.T) {
	e := New(WithContent("foo\nfoo"))
	e.AddCursor(text.Pos(1, 0))
	if e.CursorCount() != 2 || e.LatestCursor().Caret != text.Pos(1, 0) {
		t.Fatalf("cursors = %v", e.Cursors())
	}

	must(t, e.InsertText("X"))
	expectText(t, e, "Xfoo\nXfoo")
	expectCarets(t, e, text.Pos(0, 1), text.Pos(1, 1))
	if e.UndoCount() != 1 {
		t.Errorf("multi-cursor insert made %d undo steps", e.UndoCount())
	}
	if e.LatestCursor().Caret != text.Pos(1, 1) {
		t.Errorf("latest cursor = %v", e.LatestCursor())
	}

	must(t, e.Undo())
	expectText(t, e, "foo\nfoo")
	expectCarets(t, e, text.Pos(0, 0), text.Pos(1, 0))

	must(t, e.Redo())
	expectText(t, e, "Xfoo\nXfoo")
	expectCarets(t, e, text.Pos(0, 1), text.Pos(1, 1))
}

func TestTypingCoalesces(t *testing.T) {
	e := New()
	for _, s := range []string{"a", "b", "c"} {
		must(t, e.InsertText(s))
	}
	if e.UndoCount() != 1 {
		t.Fatalf("typing made %d undo steps, want 1", e.UndoCount())
	}

	e.MoveLeft(false)
	must(t, e.InsertText("d"))
	expectText(t, e, "abdc")
	if e.UndoCount() != 2 {
		t.Fatalf("typing after a move made %d undo steps, want 2", e.UndoCount())
	}

	must(t, e.Undo())
	expectText(t, e, "abc")
	must(t, e.Undo())
	expectText(t, e, "")
	if err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("err = %v, want ErrNothingToUndo", err)
	}
}

func TestDeleteBackward(t *testing.T) {
	tests := []struct {
		name    string
		content string
		carets  []text.Position
		want    string
		after   []text.Position
	}{
		{"char", "abc", []text.Position{text.Pos(0, 2)}, "ac", []text.Position{text.Pos(0, 1)}},
		{"crlf", "ab\r\ncd", []text.Position{text.Pos(1, 0)}, "abcd", []text.Position{text.Pos(0, 2)}},
		{"emoji", "a\U0001F44Db", []text.Position{text.Pos(0, 5)}, "ab", []text.Position{text.Pos(0, 1)}},
		{"origin", "ab", []text.Position{text.Pos(0, 0)}, "ab", []text.Position{text.Pos(0, 0)}},
		{
			"multi", "abc\nabc",
			[]text.Position{text.Pos(0, 3), text.Pos(1, 3)},
			"ab\nab",
			[]text.Position{text.Pos(0, 2), text.Pos(1, 2)},
		},
		{
			"adjacent carets merge", "abcd",
			[]text.Position{text.Pos(0, 2), text.Pos(0, 3)},
			"ad",
			[]text.Position{text.Pos(0, 1)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(WithContent(tt.content))
			e.SetCursor(tt.carets[0])
			for _, p := range tt.carets[1:] {
				e.AddCursor(p)
			}
			must(t, e.DeleteBackward())
			expectText(t, e, tt.want)
			expectCarets(t, e, tt.after...)
		})
	}
}

func TestDeleteBackwardAtOriginRecordsNothing(t *testing.T) {
	e := New(WithContent("ab"))
	must(t, e.DeleteBackward())
	if e.CanUndo() || e.Revision() != 0 {
		t.Error("a no-op delete was recorded")
	}
}

func TestDeleteForward(t *testing.T) {
	e := New(WithContent("ab\r\ncd"))
	e.SetCursor(text.Pos(0, 2))
	must(t, e.DeleteForward())
	expectText(t, e, "abcd")
	expectCarets(t, e, text.Pos(0, 2))

	e.MoveToTextEnd(false)
	must(t, e.DeleteForward())
	expectText(t, e, "abcd")

	e.SetCursor(text.Pos(0, 1))
	e.AddCursor(text.Pos(0, 2))
	must(t, e.DeleteForward())
	expectText(t, e, "ad")
	expectCarets(t, e, text.Pos(0, 1))
}

func TestDeleteSelection(t *testing.T) {
	e := New(WithContent("one two three"))
	e.SetSelection(text.Pos(0, 8), text.Pos(0, 3))
	must(t, e.DeleteForward())
	expectText(t, e, "onethree")
	expectCarets(t, e, text.Pos(0, 3))

	e.SelectAll()
	must(t, e.DeleteBackward())
	expectText(t, e, "")
}

func TestInsertNewline(t *testing.T) {
	t.Run("copies indentation", func(t *testing.T) {
		e := New(WithContent("    foo\n\tbar"))
		e.SetCursor(text.Pos(0, 7))
		e.AddCursor(text.Pos(1, 4))
		must(t, e.InsertNewline())
		expectText(t, e, "    foo\n    \n\tbar\n\t")
		expectCarets(t, e, text.Pos(1, 4), text.Pos(3, 1))
	})

	t.Run("crlf", func(t *testing.T) {
		e := New(WithContent("x"), WithLineEnding(LineEndingCRLF))
		e.MoveToLineEnd(false)
		must(t, e.InsertNewline())
		expectText(t, e, "x\r\n")
		expectCarets(t, e, text.Pos(1, 0))
	})

	tests := []struct {
		name    string
		content string
		caret   text.Position
		want    string
		caretAt text.Position
	}{
		{"between braces", "f() {}", text.Pos(0, 5), "f() {\n    \n}", text.Pos(1, 4)},
		{"indented brackets", "  []", text.Pos(0, 3), "  [\n      \n  ]", text.Pos(1, 6)},
		{"closer after a space", "{ }", text.Pos(0, 1), "{\n    \n }", text.Pos(1, 4)},
		{"after open bracket", "[1,", text.Pos(0, 3), "[1,\n    ", text.Pos(1, 4)},
		{"after closed bracket", "(a) b", text.Pos(0, 5), "(a) b\n", text.Pos(1, 0)},
		{"no brackets", "  ab", text.Pos(0, 3), "  a\n  b", text.Pos(1, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(WithContent(tt.content), WithIndentWidth(4))
			e.SetCursor(tt.caret)
			must(t, e.InsertNewline())
			expectText(t, e, tt.want)
			expectCarets(t, e, tt.caretAt)
		})
	}

	t.Run("brackets at several cursors", func(t *testing.T) {
		e := New(WithContent("{}\n{}"), WithIndentWidth(2))
		e.SetCursor(text.Pos(0, 1))
		e.AddCursor(text.Pos(1, 1))
		must(t, e.InsertNewline())
		expectText(t, e, "{\n  \n}\n{\n  \n}")
		expectCarets(t, e, text.Pos(1, 2), text.Pos(4, 2))
		must(t, e.Undo())
		expectText(t, e, "{}\n{}")
	})
}

func TestInsertTab(t *testing.T) {
	e := New(WithContent("ab\nabcde"), WithIndentWidth(4))
	e.SetCursor(text.Pos(0, 2))
	e.AddCursor(text.Pos(1, 5))
	must(t, e.InsertTab())
	expectText(t, e, "ab  \nabcde   ")
	expectCarets(t, e, text.Pos(0, 4), text.Pos(1, 8))
}

func TestInsertTabIndentsSelection(t *testing.T) {
	e := New(WithContent("a\n  b\nc"), WithIndentWidth(4))
	e.SetSelection(text.Pos(0, 0), text.Pos(1, 3))
	must(t, e.InsertTab())
	expectText(t, e, "    a\n    b\nc")
	if got := e.Cursors(); !slices.Equal(got, []Cursor{cursor.Select(text.Pos(0, 4), text.Pos(1, 5))}) {
		t.Errorf("cursors = %v", got)
	}
}

func TestIndentLines(t *testing.T) {
	t.Run("each line once", func(t *testing.T) {
		e := New(WithContent("a\nb\nc\nd"), WithIndentWidth(2))
		e.SetSelection(text.Pos(0, 0), text.Pos(1, 1))
		e.AddCursor(text.Pos(1, 0))
		e.AddSelection(text.Pos(2, 0), text.Pos(3, 0))
		must(t, e.IndentLines())
		expectText(t, e, "  a\n  b\n  c\nd")
		if e.UndoCount() != 1 {
			t.Errorf("UndoCount() = %d", e.UndoCount())
		}
	})

	t.Run("aligns to indent stops", func(t *testing.T) {
		e := New(WithContent(" x\n\ty"), WithTabWidth(4), WithIndentWidth(4))
		e.SetSelection(text.Pos(0, 0), text.Pos(1, 2))
		must(t, e.IndentLines())
		expectText(t, e, "    x\n\t    y")
	})

	t.Run("read-only", func(t *testing.T) {
		e := New(WithContent("x"), WithReadOnly())
		if err := e.IndentLines(); !errors.Is(err, ErrReadOnly) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestOutdentLines(t *testing.T) {
	e := New(WithContent("\t  foo\n    bar\n  baz\nqux"), WithTabWidth(4), WithIndentWidth(4))
	e.SelectAll()
	must(t, e.OutdentLines())
	expectText(t, e, "\tfoo\nbar\nbaz\nqux")

	must(t, e.OutdentLines())
	expectText(t, e, "foo\nbar\nbaz\nqux")
	if got := e.Cursors(); !slices.Equal(got, []Cursor{cursor.Select(text.Pos(0, 0), text.Pos(3, 3))}) {
		t.Errorf("selection not kept: %v", got)
	}

	must(t, e.Undo())
	must(t, e.Undo())
	expectText(t, e, "\t  foo\n    bar\n  baz\nqux")

	t.Run("pads to the stop", func(t *testing.T) {
		e := New(WithContent("      x"), WithIndentWidth(4))
		must(t, e.OutdentLines())
		expectText(t, e, "    x")
		expectCarets(t, e, text.Pos(0, 0))
	})
}

func TestSelectedTextAndCut(t *testing.T) {
	e := New(WithContent("one two three"))
	e.SetSelection(text.Pos(0, 0), text.Pos(0, 3))
	e.AddSelection(text.Pos(0, 13), text.Pos(0, 8))

	if got := e.SelectedText(); got != "onethree" {
		t.Fatalf("SelectedText() = %q", got)
	}
	cut, err := e.Cut()
	must(t, err)
	if cut != "onethree" {
		t.Errorf("Cut() = %q", cut)
	}
	expectText(t, e, " two ")
	expectCarets(t, e, text.Pos(0, 0), text.Pos(0, 5))
	if info := e.UndoInfo(); info[len(info)-1].Description != "cut" {
		t.Errorf("undo step = %+v", info[len(info)-1])
	}

	if got, err := e.Cut(); got != "" || err != nil || e.UndoCount() != 1 {
		t.Errorf("cut without selections = %q, %v", got, err)
	}
	must(t, e.Undo())
	expectText(t, e, "one two three")
}

func TestReplaceAndSetText(t *testing.T) {
	e := New(WithContent("one\ntwo\nthree"))
	e.SetCursor(text.Pos(2, 2))

	must(t, e.SetText("one\n2\nthree"))
	expectText(t, e, "one\n2\nthree")
	expectCarets(t, e, text.Pos(2, 2))

	must(t, e.Replace(text.Range{Start: text.Pos(0, 0), End: text.Pos(0, 3)}, "1"))
	expectText(t, e, "1\n2\nthree")

	must(t, e.Undo())
	must(t, e.Undo())
	expectText(t, e, "one\ntwo\nthree")

	must(t, e.Clear())
	expectText(t, e, "")
	must(t, e.Undo())
	expectText(t, e, "one\ntwo\nthree")
}

func TestUndoGroup(t *testing.T) {
	e := New()
	e.BeginUndoGroup("header")
	must(t, e.InsertText("a"))
	must(t, e.InsertNewline())
	must(t, e.InsertText("b"))
	must(t, e.EndUndoGroup())

	expectText(t, e, "a\nb")
	if e.UndoCount() != 1 {
		t.Fatalf("group made %d undo steps", e.UndoCount())
	}
	if info := e.UndoInfo(); info[0].Description != "header" {
		t.Errorf("group description %q", info[0].Description)
	}
	must(t, e.Undo())
	expectText(t, e, "")
	expectCarets(t, e, text.Pos(0, 0))
}

func TestTransaction(t *testing.T) {
	e := New(WithContent("x"))
	e.MoveToTextEnd(false)
	must(t, e.Transaction("pair", func() error {
		if err := e.InsertText("("); err != nil {
			return err
		}
		return e.InsertText(")")
	}))
	expectText(t, e, "x()")
	if e.UndoCount() != 1 {
		t.Fatalf("transaction made %d undo steps", e.UndoCount())
	}

	boom := errors.New("boom")
	err := e.Transaction("broken", func() error {
		must(t, e.InsertText("!"))
		must(t, e.InsertNewline())
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	expectText(t, e, "x()")
	expectCarets(t, e, text.Pos(0, 3))
	if e.UndoCount() != 1 {
		t.Errorf("failed transaction recorded a step")
	}

	ro := New(WithReadOnly())
	if err := ro.Transaction("t", func() error { return nil }); !errors.Is(err, ErrReadOnly) {
		t.Errorf("read-only err = %v", err)
	}
}

func TestCheckpoints(t *testing.T) {
	e := New()
	must(t, e.InsertText("a"))
	must(t, e.InsertNewline())
	cp := e.Checkpoint()
	must(t, e.InsertText("b"))
	must(t, e.InsertText("c"))
	must(t, e.InsertNewline())
	end := e.Checkpoint()

	must(t, e.UndoToCheckpoint(cp))
	expectText(t, e, "a\n")
	expectCarets(t, e, text.Pos(1, 0))
	must(t, e.RedoToCheckpoint(end))
	expectText(t, e, "a\nbc\n")
	if e.RedoCount() != 0 {
		t.Errorf("RedoCount() = %d", e.RedoCount())
	}
}

func TestReadOnly(t *testing.T) {
	e := New(WithContent("fixed"), WithReadOnly())
	if !e.IsReadOnly() {
		t.Fatal("engine should be read-only")
	}
	ops := map[string]func() error{
		"insert":    func() error { return e.InsertText("x") },
		"newline":   e.InsertNewline,
		"backspace": e.DeleteBackward,
		"delete":    e.DeleteForward,
		"set":       func() error { return e.SetText("") },
		"indent":    e.IndentLines,
		"outdent":   e.OutdentLines,
		"cut":       func() error { _, err := e.Cut(); return err },
		"undo to":   func() error { return e.UndoToCheckpoint(e.Checkpoint()) },
		"undo":      e.Undo,
		"apply":     func() error { return e.ApplyDiff(diff.Identity(e.Length()), true) },
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, ErrReadOnly) {
			t.Errorf("%s: err = %v, want ErrReadOnly", name, err)
		}
	}
	expectText(t, e, "fixed")
}

// ============================================================================
// Diffs and Revisions
// ============================================================================

func TestApplyDiffRemote(t *testing.T) {
	e := New(WithContent("hello"))
	e.SetCursor(text.Pos(0, 5))
	must(t, e.InsertText("?"))
	if !e.CanUndo() {
		t.Fatal("local edit not recorded")
	}

	d := diff.Replace(e.Length(), text.Range{Start: text.Pos(0, 6), End: text.Pos(0, 6)}, "!")
	must(t, e.ApplyDiff(d, false))
	expectText(t, e, "hello?!")
	expectCarets(t, e, text.Pos(0, 6))
	if e.Revision() != 2 {
		t.Errorf("revision = %d, want 2", e.Revision())
	}
	if e.UndoCount() != 1 {
		t.Fatalf("UndoCount() = %d, want the local edit only", e.UndoCount())
	}

	must(t, e.Undo())
	expectText(t, e, "hello!")
	expectCarets(t, e, text.Pos(0, 5))
	must(t, e.Redo())
	expectText(t, e, "hello?!")
}

func TestRemoteEditUnderLocalHistory(t *testing.T) {
	e := New(WithContent("hello"))
	e.MoveToTextEnd(false)
	must(t, e.InsertText(" world"))
	must(t, e.InsertNewline())

	must(t, e.ApplyDiff(diff.Replace(e.Length(), text.Range{}, ">> "), false))
	expectText(t, e, ">> hello world\n")

	must(t, e.Undo())
	must(t, e.Undo())
	expectText(t, e, ">> hello")
	expectCarets(t, e, text.Pos(0, 8))
	must(t, e.Redo())
	expectText(t, e, ">> hello world")

	t.Run("remote removes the local text", func(t *testing.T) {
		e := New()
		must(t, e.InsertText("xyz"))
		must(t, e.ApplyDiff(diff.Replace(e.Length(), text.Range{End: text.Pos(0, 3)}, ""), false))
		must(t, e.Undo())
		expectText(t, e, "")
	})
}

func TestApplyDiffLocal(t *testing.T) {
	e := New(WithContent("hello"))
	d := diff.Replace(e.Length(), text.Range{Start: text.Pos(0, 0), End: text.Pos(0, 0)}, ">> ")
	must(t, e.ApplyDiff(d, true))
	expectText(t, e, ">> hello")
	expectCarets(t, e, text.Pos(0, 3))
	must(t, e.Undo())
	expectText(t, e, "hello")
}

func TestApplyDiffLengthMismatch(t *testing.T) {
	e := New(WithContent("hello"))
	d := diff.Replace(text.Bytes(3), text.Range{}, "x")
	if err := e.ApplyDiff(d, true); !errors.Is(err, diff.ErrLengthMismatch) {
		t.Errorf("err = %v, want ErrLengthMismatch", err)
	}
	expectText(t, e, "hello")
}

func TestRebase(t *testing.T) {
	e := New(WithContent("hello world"))
	base := e.Revision()
	remote := diff.Replace(e.Length(), text.Range{Start: text.Pos(0, 11), End: text.Pos(0, 11)}, "!")

	must(t, e.InsertText("Oh, "))
	must(t, e.Rebase(remote, base))
	expectText(t, e, "Oh, hello world!")
	expectCarets(t, e, text.Pos(0, 4))
	if e.Revision() != 2 {
		t.Errorf("revision = %d, want 2", e.Revision())
	}

	changes, err := e.ChangesSince(base)
	must(t, err)
	got, err := diff.Apply(changes, rope.FromString("hello world"))
	must(t, err)
	if got.String() != e.Text() {
		t.Errorf("changes since base give %q", got.String())
	}
}

func TestRebaseStaleRevision(t *testing.T) {
	e := New(WithContent("ab"), WithMaxRevisions(1))
	remote := diff.Replace(e.Length(), text.Range{}, "x")
	must(t, e.InsertText("1"))
	must(t, e.InsertText("2"))

	if err := e.Rebase(remote, 0); !errors.Is(err, ErrRevisionNotFound) {
		t.Errorf("err = %v, want ErrRevisionNotFound", err)
	}
	expectText(t, e, "12ab")
}

func TestSnapshots(t *testing.T) {
	e := New(WithContent("draft"))
	id := e.CreateSnapshot("start")

	e.MoveToTextEnd(false)
	must(t, e.InsertText(" two"))

	snap, err := e.GetSnapshotByName("start")
	must(t, err)
	if snap.ID != id || snap.Text() != "draft" {
		t.Fatalf("snapshot = %v %q", snap.ID, snap.Text())
	}

	d, err := e.DiffSinceSnapshot(id)
	must(t, err)
	got, err := diff.Apply(d, snap.Rope())
	must(t, err)
	if got.String() != "draft two" {
		t.Errorf("diff since snapshot gives %q", got.String())
	}

	must(t, e.RestoreSnapshot(id))
	expectText(t, e, "draft")

	if _, err := e.GetSnapshot(uuid.New()); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestSnapshotManagement(t *testing.T) {
	e := New(WithContent("v0"))
	first := e.CreateSnapshot("first")
	e.CreateSnapshot("second")
	e.CreateSnapshot("third")

	var names []string
	for _, snap := range e.ListSnapshots() {
		names = append(names, snap.Name)
	}
	if !slices.Equal(names, []string{"first", "second", "third"}) {
		t.Fatalf("ListSnapshots() names = %v", names)
	}

	must(t, e.DeleteSnapshot(first))
	if err := e.DeleteSnapshot(first); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("second delete: err = %v", err)
	}
	must(t, e.DeleteSnapshotByName("second"))
	if err := e.DeleteSnapshotByName("second"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("second delete by name: err = %v", err)
	}
	if e.SnapshotCount() != 1 {
		t.Errorf("SnapshotCount() = %d", e.SnapshotCount())
	}

	e.CreateSnapshot("fourth")
	e.CreateSnapshot("fifth")
	if n := e.PruneSnapshots(1); n != 2 {
		t.Errorf("PruneSnapshots(1) removed %d", n)
	}
	if _, err := e.GetSnapshotByName("fifth"); err != nil {
		t.Errorf("newest snapshot pruned: %v", err)
	}
	if n := e.PruneSnapshotsOlderThan(time.Hour); n != 0 {
		t.Errorf("PruneSnapshotsOlderThan(hour) removed %d", n)
	}
	if n := e.PruneSnapshotsOlderThan(-time.Second); n != 1 || e.SnapshotCount() != 0 {
		t.Errorf("PruneSnapshotsOlderThan(future) removed %d", n)
	}
}

func TestChangesBetween(t *testing.T) {
	e := New(WithContent("ab"))
	e.MoveToTextEnd(false)
	must(t, e.InsertText("c"))
	mid := e.Revision()
	must(t, e.InsertNewline())
	must(t, e.InsertText("d"))

	d, err := e.ChangesBetween(0, mid)
	must(t, err)
	if d.BaseLen() != text.Bytes(2) || d.TargetLen() != text.Bytes(3) {
		t.Errorf("ChangesBetween(0, %d) = %v", mid, d)
	}
	if _, err := e.ChangesBetween(mid, 1); !errors.Is(err, ErrRevisionNotFound) {
		t.Errorf("reversed range: err = %v", err)
	}

	sum, err := e.ChangeSummary(0)
	must(t, err)
	if sum.Inserts != 1 || sum.Deletes != 0 || sum.Inserted != text.Len(1, 1) {
		t.Errorf("ChangeSummary(0) = %+v", sum)
	}
	if sum.FirstLine != 0 || sum.LastLine != 1 {
		t.Errorf("touched lines %d..%d", sum.FirstLine, sum.LastLine)
	}
	if sum, _ := e.ChangeSummary(e.Revision()); !sum.IsEmpty() {
		t.Errorf("summary of no changes = %+v", sum)
	}
}

// ============================================================================
// Cursors and Motion
// ============================================================================

func TestMotion(t *testing.T) {
	e := New(WithContent("long line\nab\nlong line"))
	e.SetCursor(text.Pos(0, 7))

	e.MoveDown(false)
	expectCarets(t, e, text.Pos(1, 2))
	e.MoveDown(false)
	expectCarets(t, e, text.Pos(2, 7))
	e.MoveUp(false)
	e.MoveUp(false)
	expectCarets(t, e, text.Pos(0, 7))

	e.MoveToLineStart(false)
	e.MoveRight(true)
	e.MoveRight(true)
	if c := e.LatestCursor(); c.Anchor != text.Pos(0, 0) || c.Caret != text.Pos(0, 2) {
		t.Errorf("extended cursor = %v", c)
	}

	e.MoveToTextEnd(false)
	expectCarets(t, e, text.Pos(2, 9))
	e.MoveToTextStart(false)
	e.MoveLeft(false)
	expectCarets(t, e, text.Pos(0, 0))
}

func TestCursorClamping(t *testing.T) {
	e := New(WithContent("a\U0001F44D\r\nb"))
	tests := []struct {
		in, want text.Position
	}{
		{text.Pos(-1, 3), text.Pos(0, 0)},
		{text.Pos(0, 3), text.Pos(0, 1)},
		{text.Pos(0, 99), text.Pos(0, 5)},
		{text.Pos(7, 0), text.Pos(1, 1)},
	}
	for _, tt := range tests {
		e.SetCursor(tt.in)
		if got := e.LatestCursor().Caret; got != tt.want {
			t.Errorf("SetCursor(%v) put the caret at %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAddSelectionMerges(t *testing.T) {
	e := New(WithContent("abcdef"))
	e.SetSelection(text.Pos(0, 0), text.Pos(0, 3))
	e.AddSelection(text.Pos(0, 2), text.Pos(0, 5))
	if e.CursorCount() != 1 {
		t.Fatalf("overlapping selections did not merge: %v", e.Cursors())
	}
	if c := e.LatestCursor(); c.Range() != (text.Range{Start: text.Pos(0, 0), End: text.Pos(0, 5)}) {
		t.Errorf("merged cursor = %v", c)
	}

	e.AddCursor(text.Pos(0, 6))
	e.ClearSecondary()
	if e.CursorCount() != 1 || e.LatestCursor() != cursor.At(text.Pos(0, 6)) {
		t.Errorf("cursors = %v", e.Cursors())
	}
}

// ============================================================================
// Caches
// ============================================================================

func TestIndent(t *testing.T) {
	e := New(WithContent("if x {\n\tfoo\n\n}"))
	tests := []struct {
		line    int
		leading int
		virtual int
	}{
		{0, 0, 0},
		{1, 4, 4},
		{2, 0, 4},
		{3, 0, 0},
	}
	for _, tt := range tests {
		in, err := e.Indent(tt.line)
		must(t, err)
		if in.Leading != tt.leading || in.Virtual() != tt.virtual {
			t.Errorf("line %d: %+v, want leading %d virtual %d", tt.line, in, tt.leading, tt.virtual)
		}
	}

	e.SetCursor(text.Pos(1, 0))
	must(t, e.InsertText("\t"))
	in, err := e.Indent(1)
	must(t, err)
	if in.Leading != 8 {
		t.Errorf("after indenting: %+v", in)
	}
	if in, _ := e.Indent(2); in.Virtual() != 8 {
		t.Errorf("blank line follows its neighbour: %+v", in)
	}

	if _, err := e.Indent(4); !errors.Is(err, ErrLineOutOfRange) {
		t.Errorf("err = %v, want ErrLineOutOfRange", err)
	}
}

type todoSource struct{}

func (todoSource) Decorations(line int, s string) []cache.Span {
	i := strings.Index(s, "TODO")
	if i < 0 {
		return nil
	}
	return []cache.Span{{StartCol: i, EndCol: i + 4, Message: 1}}
}

func TestDecorations(t *testing.T) {
	e := New(WithContent("x TODO\nok"), WithDecorationSource(todoSource{}))

	spans, err := e.Decorations(0)
	must(t, err)
	if !slices.Equal(spans, []cache.Span{{StartCol: 2, EndCol: 6, Message: 1}}) {
		t.Errorf("line 0 spans %v", spans)
	}

	manual := []cache.Span{{StartCol: 0, EndCol: 1, Message: 7}}
	must(t, e.SetDecorations(1, manual))

	e.SetSelection(text.Pos(0, 2), text.Pos(0, 6))
	must(t, e.DeleteBackward())
	if spans, _ := e.Decorations(0); spans != nil {
		t.Errorf("line 0 spans after delete %v", spans)
	}
	if spans, _ := e.Decorations(1); !slices.Equal(spans, manual) {
		t.Errorf("untouched line lost its spans: %v", spans)
	}

	if err := e.SetDecorations(5, manual); !errors.Is(err, ErrLineOutOfRange) {
		t.Errorf("err = %v", err)
	}
}

// continuation marks lines that follow a line ending in a backslash.
var continuation = cache.TokenizerFunc[bool](func(line string, in bool) ([]cache.Token, bool) {
	if line == "" {
		return nil, false
	}
	kind := cache.TokenKind(0)
	if in {
		kind = 1
	}
	return []cache.Token{{Len: len(line), Kind: kind}}, strings.HasSuffix(line, "\\")
})

func TestTokens(t *testing.T) {
	e := New(WithContent("a\\\nb\nc"), WithTokenizer[bool](continuation))

	kinds := func() []cache.TokenKind {
		var out []cache.TokenKind
		for line := range e.LineCount() {
			toks, err := e.Tokens(line)
			must(t, err)
			out = append(out, toks[0].Kind)
		}
		return out
	}
	if got := kinds(); !slices.Equal(got, []cache.TokenKind{0, 1, 0}) {
		t.Errorf("kinds = %v", got)
	}

	e.SetCursor(text.Pos(0, 2))
	must(t, e.DeleteBackward())
	if got := kinds(); !slices.Equal(got, []cache.TokenKind{0, 0, 0}) {
		t.Errorf("kinds after removing the backslash = %v", got)
	}

	plain := New(WithContent("x"))
	if toks, err := plain.Tokens(0); toks != nil || err != nil {
		t.Errorf("tokens without a tokenizer: %v, %v", toks, err)
	}
}

func TestRefresh(t *testing.T) {
	e := New(WithContent("a\nb"))
	if n := e.Refresh(); n != 0 {
		t.Errorf("refresh of a fresh engine recomputed %d lines", n)
	}
	must(t, e.InsertText("x"))
	if n := e.Refresh(); n != 2 {
		t.Errorf("refresh after a one-line edit recomputed %d lines, want 2", n)
	}
	if n := e.Refresh(); n != 0 {
		t.Errorf("second refresh recomputed %d lines", n)
	}
}

// ============================================================================
// Concurrency and Properties
// ============================================================================

func TestConcurrentAccess(t *testing.T) {
	e := New(WithContent("start"))
	var wg sync.WaitGroup

	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_ = e.Text()
				_ = e.Cursors()
				_, _ = e.Indent(0)
			}
		}()
	}
	for i := range 100 {
		if err := e.InsertText(string(rune('a' + i%26))); err != nil {
			t.Error(err)
		}
	}
	wg.Wait()

	if got := len(e.Text()); got != len("start")+100 {
		t.Errorf("text length = %d", got)
	}
}

// FuzzUndoRestores drives the engine with arbitrary edits and checks that
// undoing everything restores the original text.
func FuzzUndoRestores(f *testing.F) {
	f.Add("hello\nworld", []byte{0, 1, 2, 3, 4, 5})
	f.Add("", []byte{3, 3, 1, 0, 7})
	f.Add("a\r\nb\u00e9\u0301c", []byte{6, 2, 6, 2, 5, 1})
	f.Add("f(x) {\n\t  y\n}", []byte{4, 12, 8, 9, 1, 0})

	f.Fuzz(func(t *testing.T, content string, ops []byte) {
		if !utf8.ValidString(content) || len(ops) > 256 {
			t.Skip()
		}
		e := New(WithContent(content), WithMaxUndoEntries(1000))
		original := e.Text()
		for _, op := range ops {
			var err error
			switch op % 10 {
			case 0:
				err = e.InsertText("x")
			case 1:
				err = e.InsertNewline()
			case 2:
				err = e.DeleteBackward()
			case 3:
				err = e.DeleteForward()
			case 4:
				e.MoveRight(op&8 != 0)
			case 5:
				e.MoveDown(false)
			case 6:
				e.AddCursor(text.Pos(int(op)%3, int(op)%5))
			case 7:
				err = e.InsertText("\u00e9 ")
			case 8:
				err = e.InsertTab()
			case 9:
				err = e.OutdentLines()
			}
			if err != nil {
				t.Fatalf("op %d: %v", op, err)
			}
		}
		for e.CanUndo() {
			if err := e.Undo(); err != nil {
				t.Fatal(err)
			}
		}
		if e.Text() != original {
			t.Fatalf("undo all gave %q, want %q", e.Text(), original)
		}
	})
}
