package diff

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/dshills/ropecore/internal/engine/text"
)

// FromTexts computes a diff turning before into after. Lines are matched
// first; each replaced block of lines is then refined character by
// character so that small edits stay small.
func FromTexts(before, after string) Diff {
	b := NewBuilder()
	if before == after {
		return b.Retain(text.LengthOf(before)).Finish()
	}

	dmp := diffmatchpatch.New()
	chars1, chars2, lineArray := dmp.DiffLinesToChars(before, after)
	lineDiffs := dmp.DiffCharsToLines(dmp.DiffMain(chars1, chars2, false), lineArray)

	for i := 0; i < len(lineDiffs); i++ {
		ld := lineDiffs[i]
		switch ld.Type {
		case diffmatchpatch.DiffEqual:
			b.Retain(text.LengthOf(ld.Text))
		case diffmatchpatch.DiffInsert:
			b.Insert(ld.Text)
		case diffmatchpatch.DiffDelete:
			if i+1 < len(lineDiffs) && lineDiffs[i+1].Type == diffmatchpatch.DiffInsert {
				refine(b, dmp, ld.Text, lineDiffs[i+1].Text)
				i++
				continue
			}
			b.Delete(text.LengthOf(ld.Text))
		}
	}
	return b.Finish()
}

// refine emits a character-level diff between a deleted and an inserted
// block of lines.
func refine(b *Builder, dmp *diffmatchpatch.DiffMatchPatch, deleted, inserted string) {
	diffs := dmp.DiffCleanupEfficiency(dmp.DiffMain(deleted, inserted, false))
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.Retain(text.LengthOf(d.Text))
		case diffmatchpatch.DiffInsert:
			b.Insert(d.Text)
		case diffmatchpatch.DiffDelete:
			b.Delete(text.LengthOf(d.Text))
		}
	}
}
