package tracking

import (
	"github.com/dshills/ropecore/internal/engine/diff"
	"github.com/dshills/ropecore/internal/engine/text"
)

// Summary counts what a diff changes.
type Summary struct {
	Inserts  int         // Number of insert operations
	Deletes  int         // Number of delete operations
	Inserted text.Length // Inserted texts measured end to end
	Deleted  text.Length // Deleted texts measured end to end

	// FirstLine and LastLine bound the lines of the result that were
	// touched. Both are -1 for an identity diff.
	FirstLine int
	LastLine  int
}

// Summarize describes d.
func Summarize(d diff.Diff) Summary {
	s := Summary{FirstLine: -1, LastLine: -1}
	for or := range d.OperationRanges() {
		switch or.Kind {
		case diff.Insert:
			s.Inserts++
			s.Inserted = s.Inserted.Add(or.New.Len())
		case diff.Delete:
			s.Deletes++
			s.Deleted = s.Deleted.Add(or.Old.Len())
		}
		if s.FirstLine < 0 {
			s.FirstLine = or.New.Start.Line
		}
		s.LastLine = or.New.End.Line
	}
	return s
}

// IsEmpty reports whether the summarized diff changed nothing.
func (s Summary) IsEmpty() bool {
	return s.Inserts == 0 && s.Deletes == 0
}
