package tracking

import (
	"time"

	"github.com/dshills/ropecore/internal/engine/diff"
	"github.com/dshills/ropecore/internal/engine/rope"
	"github.com/dshills/ropecore/internal/engine/text"
)

// RevisionID identifies a text state in a Log. IDs increase by one per
// recorded diff.
type RevisionID uint64

// Revision is a recorded edit: the diff that produced it and the text
// after it was applied. Ropes are persistent, so holding one per revision
// only shares structure with its neighbours.
type Revision struct {
	// ID uniquely identifies this revision.
	ID RevisionID

	// Timestamp when this revision was recorded.
	Timestamp time.Time

	// Diff transforms the previous revision's text into this one.
	Diff diff.Diff

	rope rope.Rope
}

func newRevision(id RevisionID, d diff.Diff, after rope.Rope) *Revision {
	return &Revision{
		ID:        id,
		Timestamp: time.Now(),
		Diff:      d,
		rope:      after,
	}
}

// Rope returns the text after this revision.
func (r *Revision) Rope() rope.Rope {
	return r.rope
}

// Text returns the full text at this revision.
// Use sparingly for large texts.
func (r *Revision) Text() string {
	return r.rope.String()
}

// Length returns the length of the text at this revision.
func (r *Revision) Length() text.Length {
	return r.rope.Length()
}
