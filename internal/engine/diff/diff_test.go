package diff

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dshills/ropecore/internal/engine/rope"
	"github.com/dshills/ropecore/internal/engine/text"
)

var alphabet = []string{"a", "b", "c", "\n", "日", "é", "\r\n", " "}

func randText(rng *rand.Rand, n int) string {
	var sb strings.Builder
	for k := rng.IntN(n + 1); k > 0; k-- {
		sb.WriteString(alphabet[rng.IntN(len(alphabet))])
	}
	return sb.String()
}

// randomDiff returns a diff whose base is s, cut only at char boundaries.
func randomDiff(rng *rand.Rand, s string) Diff {
	b := NewBuilder()
	for i := 0; i < len(s); {
		j := i + 1 + rng.IntN(min(6, len(s)-i))
		for j < len(s) && !utf8.RuneStart(s[j]) {
			j++
		}
		l := text.LengthOf(s[i:j])
		switch rng.IntN(5) {
		case 0:
			b.Delete(l)
		case 1:
			b.Insert(randText(rng, 3))
			b.Retain(l)
		case 2:
			b.Delete(l)
			b.Insert(randText(rng, 3))
		default:
			b.Retain(l)
		}
		i = j
	}
	if rng.IntN(3) == 0 {
		b.Insert(randText(rng, 4))
	}
	return b.Finish()
}

func mustApply(t *testing.T, d Diff, s string) string {
	t.Helper()
	r, err := Apply(d, rope.FromString(s))
	if err != nil {
		t.Fatalf("Apply(%v, %q): %v", d, s, err)
	}
	if err := r.Validate(); err != nil {
		t.Fatal(err)
	}
	return r.String()
}

func TestBuilderCanonical(t *testing.T) {
	tests := []struct {
		name  string
		build func(*Builder)
		want  []Op
	}{
		{
			name:  "coalesce retains",
			build: func(b *Builder) { b.Retain(text.Bytes(2)).Retain(text.Len(1, 3)) },
			want:  []Op{{Kind: Retain, Len: text.Len(1, 3)}},
		},
		{
			name:  "coalesce inserts",
			build: func(b *Builder) { b.Insert("ab").Insert("\nc") },
			want:  []Op{{Kind: Insert, Len: text.Len(1, 1), Text: "ab\nc"}},
		},
		{
			name:  "drop empty",
			build: func(b *Builder) { b.Retain(text.Length{}).Insert("").Delete(text.Length{}) },
			want:  nil,
		},
		{
			name:  "delete moves before insert",
			build: func(b *Builder) { b.Retain(text.Bytes(1)).Insert("x").Delete(text.Bytes(2)) },
			want: []Op{
				{Kind: Retain, Len: text.Bytes(1)},
				{Kind: Delete, Len: text.Bytes(2)},
				{Kind: Insert, Len: text.Bytes(1), Text: "x"},
			},
		},
		{
			name:  "delete merges across insert",
			build: func(b *Builder) { b.Delete(text.Bytes(1)).Insert("x").Delete(text.Len(1, 0)) },
			want: []Op{
				{Kind: Delete, Len: text.Len(1, 0)},
				{Kind: Insert, Len: text.Bytes(1), Text: "x"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			tt.build(b)
			got := b.Finish()
			if !got.Equal(Diff{ops: tt.want}) {
				t.Errorf("got %v, want %v", got, Diff{ops: tt.want})
			}
		})
	}
}

func TestLengths(t *testing.T) {
	d := NewBuilder().Retain(text.Bytes(6)).Insert("brave ").Retain(text.Bytes(5)).Finish()
	if d.BaseLen() != text.Bytes(11) || d.TargetLen() != text.Bytes(17) {
		t.Errorf("lengths %v -> %v", d.BaseLen(), d.TargetLen())
	}
	if d.IsIdentity() || !Identity(text.Len(3, 2)).IsIdentity() {
		t.Error("IsIdentity")
	}
	if got := d.String(); got != `[retain(6b) insert("brave ") retain(5b)]` {
		t.Errorf("String() = %s", got)
	}
}

func TestApplyScenarios(t *testing.T) {
	tests := []struct {
		name   string
		before string
		d      Diff
		after  string
	}{
		{
			name:   "simple insert",
			before: "hello\nworld",
			d:      NewBuilder().Retain(text.Len(1, 0)).Insert("brave ").Retain(text.Bytes(5)).Finish(),
			after:  "hello\nbrave world",
		},
		{
			name:   "line-breaking insert",
			before: "ab",
			d:      NewBuilder().Retain(text.Bytes(1)).Insert("\nX").Retain(text.Bytes(1)).Finish(),
			after:  "a\nXb",
		},
		{
			name:   "delete across lines",
			before: "a\nb\nc",
			d:      NewBuilder().Retain(text.Bytes(1)).Delete(text.Len(2, 1)).Retain(text.Length{}).Finish(),
			after:  "a",
		},
		{
			name:   "multi-cursor insert",
			before: "abc",
			d:      NewBuilder().Insert("X").Retain(text.Bytes(3)).Insert("X").Finish(),
			after:  "XabcX",
		},
		{
			name:   "replace",
			before: "one\ntwo\nthree",
			d:      Replace(text.Len(2, 5), text.Range{Start: text.Pos(0, 1), End: text.Pos(2, 2)}, "--"),
			after:  "o--ree",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustApply(t, tt.d, tt.before); got != tt.after {
				t.Errorf("got %q, want %q", got, tt.after)
			}
		})
	}
}

func TestApplyLengthMismatch(t *testing.T) {
	r := rope.FromString("abc")
	d := NewBuilder().Retain(text.Bytes(2)).Finish()
	got, err := Apply(d, r)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	var lm *LengthMismatchError
	if !errors.As(err, &lm) || lm.Op != "apply" || lm.Left != text.Bytes(2) || lm.Right != text.Bytes(3) {
		t.Errorf("unexpected error detail: %+v", lm)
	}
	if got.String() != "abc" {
		t.Error("rope changed on error")
	}

	// Same total length but a retain that runs past the end of line 0.
	bad := FromOps(Op{Kind: Retain, Len: text.Bytes(5)}, Op{Kind: Delete, Len: text.Len(1, 2)})
	if bad.BaseLen() != text.Len(1, 2) {
		t.Fatalf("BaseLen = %v", bad.BaseLen())
	}
	if _, err := Apply(bad, rope.FromString("ab\ncd")); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestInvert(t *testing.T) {
	before := "hello\nworld"
	d := NewBuilder().Retain(text.Bytes(2)).Delete(text.Len(1, 1)).Insert("XY\nZ").Retain(text.Bytes(4)).Finish()
	inv, err := Invert(d, rope.FromString(before))
	if err != nil {
		t.Fatal(err)
	}
	after := mustApply(t, d, before)
	if got := mustApply(t, inv, after); got != before {
		t.Errorf("round trip = %q", got)
	}

	_, err = Invert(d, rope.FromString("short"))
	if !errors.Is(err, ErrBadOriginal) {
		t.Errorf("expected ErrBadOriginal, got %v", err)
	}
}

func TestInvertRoundTripProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 500; i++ {
		s := randText(rng, 40)
		d := randomDiff(rng, s)
		inv, err := Invert(d, rope.FromString(s))
		if err != nil {
			t.Fatal(err)
		}
		if got := mustApply(t, inv, mustApply(t, d, s)); got != s {
			t.Fatalf("case %d: %v inverted by %v gives %q, want %q", i, d, inv, got, s)
		}
	}
}

func TestCompose(t *testing.T) {
	a := NewBuilder().Retain(text.Bytes(5)).Insert(" there").Finish()
	b := NewBuilder().Delete(text.Bytes(1)).Insert("H").Retain(text.Bytes(10)).Insert("!").Finish()
	ab, err := Compose(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if got := mustApply(t, ab, "hello"); got != "Hello there!" {
		t.Errorf("got %q", got)
	}

	_, err = Compose(a, a)
	var lm *LengthMismatchError
	if !errors.As(err, &lm) || lm.Op != "compose" {
		t.Errorf("expected compose length mismatch, got %v", err)
	}
}

func TestComposeEqualsSequential(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 500; i++ {
		s := randText(rng, 40)
		a := randomDiff(rng, s)
		mid := mustApply(t, a, s)
		b := randomDiff(rng, mid)

		ab, err := Compose(a, b)
		if err != nil {
			t.Fatal(err)
		}
		want := mustApply(t, b, mid)
		if got := mustApply(t, ab, s); got != want {
			t.Fatalf("case %d: compose(%v, %v) = %v gives %q, want %q", i, a, b, ab, got, want)
		}
		if ab.BaseLen() != a.BaseLen() || ab.TargetLen() != b.TargetLen() {
			t.Fatalf("case %d: composed lengths %v -> %v", i, ab.BaseLen(), ab.TargetLen())
		}
	}
}

func TestTransformConvergence(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 17))
	for i := 0; i < 500; i++ {
		s := randText(rng, 40)
		a := randomDiff(rng, s)
		b := randomDiff(rng, s)

		a2, b2, err := Transform(a, b)
		if err != nil {
			t.Fatal(err)
		}
		left := mustApply(t, b2, mustApply(t, a, s))
		right := mustApply(t, a2, mustApply(t, b, s))
		if left != right {
			t.Fatalf("case %d: a∘b' = %q, b∘a' = %q (a=%v b=%v)", i, left, right, a, b)
		}

		// Both sites compute their own transform and still converge.
		b3, _, err := Transform(b, a)
		if err != nil {
			t.Fatal(err)
		}
		if site := mustApply(t, b3, mustApply(t, a, s)); site != right {
			t.Fatalf("case %d: transform(b, a) gives %q, want %q", i, site, right)
		}
	}
}

func TestTransformTieBreak(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{"x", "y", "xy"},
		{"y", "x", "xy"},
		{"z", "z", "zz"},
	}
	for _, tt := range tests {
		a := NewBuilder().Insert(tt.a).Finish()
		b := NewBuilder().Insert(tt.b).Finish()
		a2, b2, err := Transform(a, b)
		if err != nil {
			t.Fatal(err)
		}
		if got := mustApply(t, b2, mustApply(t, a, "")); got != tt.want {
			t.Errorf("a=%q b=%q: a then b' = %q, want %q", tt.a, tt.b, got, tt.want)
		}
		if got := mustApply(t, a2, mustApply(t, b, "")); got != tt.want {
			t.Errorf("a=%q b=%q: b then a' = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTransformLengthMismatch(t *testing.T) {
	a := Identity(text.Bytes(3))
	b := Identity(text.Bytes(4))
	if _, _, err := Transform(a, b); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestApplyToPosition(t *testing.T) {
	word := NewBuilder().Retain(text.Len(1, 0)).Insert("brave ").Retain(text.Bytes(5)).Finish()
	split := NewBuilder().Retain(text.Bytes(1)).Insert("\nX").Retain(text.Bytes(1)).Finish()
	join := NewBuilder().Retain(text.Bytes(1)).Delete(text.Len(2, 1)).Finish()
	wrap := NewBuilder().Insert("X").Retain(text.Bytes(3)).Insert("X").Finish()
	repl := NewBuilder().Retain(text.Bytes(1)).Delete(text.Bytes(2)).Insert("xyz").Retain(text.Bytes(1)).Finish()

	tests := []struct {
		name string
		p    text.Position
		d    Diff
		mode Mode
		want text.Position
	}{
		{"later on the insert line", text.Pos(1, 3), word, InsertAfter, text.Pos(1, 9)},
		{"line before the insert", text.Pos(0, 2), word, InsertAfter, text.Pos(0, 2)},
		{"at insert, after", text.Pos(1, 0), word, InsertAfter, text.Pos(1, 0)},
		{"at insert, before", text.Pos(1, 0), word, InsertBefore, text.Pos(1, 6)},
		{"after a line break insert", text.Pos(0, 2), split, InsertAfter, text.Pos(1, 2)},
		{"inside a multi-line delete", text.Pos(1, 1), join, InsertAfter, text.Pos(0, 1)},
		{"end of a multi-line delete", text.Pos(2, 0), join, InsertBefore, text.Pos(0, 1)},
		{"text end after a delete", text.Pos(2, 1), join, InsertBefore, text.Pos(0, 1)},
		{"insert at text start", text.Pos(0, 0), wrap, InsertBefore, text.Pos(0, 1)},
		{"insert at text end", text.Pos(0, 3), wrap, InsertBefore, text.Pos(0, 5)},
		{"insert at text end, after", text.Pos(0, 3), wrap, InsertAfter, text.Pos(0, 4)},
		{"replace start, before", text.Pos(0, 1), repl, InsertBefore, text.Pos(0, 4)},
		{"replace start, after", text.Pos(0, 1), repl, InsertAfter, text.Pos(0, 1)},
		{"replace inside", text.Pos(0, 2), repl, InsertAfter, text.Pos(0, 1)},
		{"replace end, before", text.Pos(0, 3), repl, InsertBefore, text.Pos(0, 4)},
		{"after replace", text.Pos(0, 4), repl, InsertAfter, text.Pos(0, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyToPosition(tt.p, tt.d, tt.mode); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyToPositionIdentity(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	for i := 0; i < 200; i++ {
		s := randText(rng, 30)
		r := rope.FromString(s)
		d := Identity(r.Length())
		for off := 0; off <= len(s); off++ {
			if !r.IsCharBoundary(off) {
				continue
			}
			p := r.OffsetToPosition(off)
			if ApplyToPosition(p, d, InsertBefore) != p || ApplyToPosition(p, d, InsertAfter) != p {
				t.Fatalf("identity moved %v in %q", p, s)
			}
		}
	}
}

func TestApplyToPositionStaysInText(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 4))
	for i := 0; i < 300; i++ {
		s := randText(rng, 30)
		d := randomDiff(rng, s)
		r := rope.FromString(s)
		after := rope.FromString(mustApply(t, d, s))
		for off := 0; off <= len(s); off++ {
			if !r.IsCharBoundary(off) {
				continue
			}
			p := r.OffsetToPosition(off)
			for _, mode := range []Mode{InsertBefore, InsertAfter} {
				q := ApplyToPosition(p, d, mode)
				if after.ClampPosition(q) != q {
					t.Fatalf("%v through %v (%v) = %v, outside result", p, d, mode, q)
				}
			}
		}
	}
}

func TestOperationRanges(t *testing.T) {
	d := NewBuilder().
		Retain(text.Bytes(1)).
		Delete(text.Len(1, 1)).
		Insert("X\nY\n").
		Retain(text.Len(1, 0)).
		Insert("Z").
		Retain(text.Bytes(1)).
		Finish()

	var got []OperationRange
	for r := range d.OperationRanges() {
		got = append(got, r)
	}
	want := []OperationRange{
		{Kind: Delete, Old: text.Range{Start: text.Pos(0, 1), End: text.Pos(1, 1)}, New: text.Range{Start: text.Pos(0, 1), End: text.Pos(0, 1)}},
		{Kind: Insert, Old: text.Range{Start: text.Pos(1, 1), End: text.Pos(1, 1)}, New: text.Range{Start: text.Pos(0, 1), End: text.Pos(2, 0)}},
		{Kind: Insert, Old: text.Range{Start: text.Pos(2, 0), End: text.Pos(2, 0)}, New: text.Range{Start: text.Pos(3, 0), End: text.Pos(3, 1)}},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d ranges, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("range %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	n := 0
	for range d.OperationRanges() {
		n++
		break
	}
	if n != 1 {
		t.Error("iteration did not stop early")
	}
}

func TestFromTexts(t *testing.T) {
	tests := []struct {
		name          string
		before, after string
	}{
		{"equal", "same\ntext", "same\ntext"},
		{"empty to text", "", "new\nfile"},
		{"text to empty", "old\nfile\n", ""},
		{"line added", "a\nb\nc\n", "a\nb\nx\nc\n"},
		{"line removed", "a\nb\nc\n", "a\nc\n"},
		{"word changed", "hello world\n", "hello brave world\n"},
		{"unicode", "日本語\nテキスト", "日本\nテキスト!"},
		{"crlf", "a\r\nb\r\n", "a\r\nc\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := FromTexts(tt.before, tt.after)
			if d.BaseLen() != text.LengthOf(tt.before) || d.TargetLen() != text.LengthOf(tt.after) {
				t.Fatalf("lengths %v -> %v", d.BaseLen(), d.TargetLen())
			}
			if got := mustApply(t, d, tt.before); got != tt.after {
				t.Errorf("got %q, want %q", got, tt.after)
			}
		})
	}
}

func TestFromTextsIsMinimal(t *testing.T) {
	d := FromTexts("hello world\nsecond line\n", "hello brave world\nsecond line\n")
	var inserted []string
	for _, op := range d.Ops() {
		switch op.Kind {
		case Delete:
			t.Errorf("unexpected delete %v", op)
		case Insert:
			inserted = append(inserted, op.Text)
		}
	}
	if strings.Join(inserted, "") != "brave " {
		t.Errorf("inserted %q, want %q", inserted, "brave ")
	}
}

func FuzzTransform(f *testing.F) {
	f.Add("hello\nworld", uint64(1))
	f.Add("", uint64(2))
	f.Add("a\r\nb", uint64(3))

	f.Fuzz(func(t *testing.T, s string, seed uint64) {
		if !utf8.ValidString(s) || len(s) > 200 {
			return
		}
		rng := rand.New(rand.NewPCG(seed, seed>>1))
		a := randomDiff(rng, s)
		b := randomDiff(rng, s)

		a2, b2, err := Transform(a, b)
		if err != nil {
			t.Fatal(err)
		}
		if mustApply(t, b2, mustApply(t, a, s)) != mustApply(t, a2, mustApply(t, b, s)) {
			t.Fatalf("transform diverged for %v and %v", a, b)
		}

		ab, err := Compose(a, b2)
		if err != nil {
			t.Fatal(err)
		}
		ba, err := Compose(b, a2)
		if err != nil {
			t.Fatal(err)
		}
		if mustApply(t, ab, s) != mustApply(t, ba, s) {
			t.Fatalf("composed transforms diverged")
		}
	})
}
