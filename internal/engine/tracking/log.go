package tracking

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/ropecore/internal/engine/diff"
	"github.com/dshills/ropecore/internal/engine/rope"
	"github.com/dshills/ropecore/internal/logging"
)

// DefaultMaxRevisions is the default number of revisions a Log keeps.
const DefaultMaxRevisions = 1000

// Option configures a Log.
type Option func(*Log)

// WithMaxRevisions sets the maximum number of revisions to retain.
func WithMaxRevisions(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.maxRevisions = n
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(lg *logging.Logger) Option {
	return func(l *Log) {
		l.log = lg.WithComponent("tracking")
	}
}

// Log records the diffs applied to a text, one revision per diff.
// Diffs made against an older revision can be rebased onto the current
// text as long as that revision is still retained.
//
// Log is safe for concurrent use.
type Log struct {
	mu sync.RWMutex

	// base is the text at revision baseID, the oldest one retained.
	base   rope.Rope
	baseID RevisionID

	// revs[i] has ID baseID+i+1.
	revs []*Revision

	maxRevisions int
	snapshots    *SnapshotManager
	log          *logging.Logger
}

// NewLog creates a log whose revision 0 is initial.
func NewLog(initial rope.Rope, opts ...Option) *Log {
	l := &Log{
		base:         initial,
		maxRevisions: DefaultMaxRevisions,
		snapshots:    NewSnapshotManager(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends d, whose result is after, and returns the new revision.
func (l *Log) Record(d diff.Diff, after rope.Rope) RevisionID {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.currentLocked() + 1
	l.revs = append(l.revs, newRevision(id, d, after))

	if excess := len(l.revs) - l.maxRevisions; excess > 0 {
		l.base = l.revs[excess-1].rope
		l.baseID += RevisionID(excess)
		clear(l.revs[:excess])
		l.revs = l.revs[excess:]
		l.log.Debug("trimmed revisions", "count", excess, "oldest", l.baseID)
	}
	return id
}

// Reset discards all revisions and starts again from r. Revision numbers
// keep increasing so stale IDs are never mistaken for new ones.
func (l *Log) Reset(r rope.Rope) RevisionID {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.baseID = l.currentLocked()
	l.base = r
	l.revs = nil
	return l.baseID
}

// Current returns the latest revision.
func (l *Log) Current() RevisionID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.currentLocked()
}

func (l *Log) currentLocked() RevisionID {
	return l.baseID + RevisionID(len(l.revs))
}

// Oldest returns the oldest revision that ChangesSince accepts.
func (l *Log) Oldest() RevisionID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.baseID
}

// Len returns the number of retained revisions.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.revs)
}

// Revision returns a retained revision. The oldest retained text has no
// Revision of its own; use Rope for it.
func (l *Log) Revision(id RevisionID) (*Revision, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if id <= l.baseID || id > l.currentLocked() {
		return nil, false
	}
	return l.revs[id-l.baseID-1], true
}

// Rope returns the text at revision id.
func (l *Log) Rope(id RevisionID) (rope.Rope, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ropeLocked(id)
}

func (l *Log) ropeLocked(id RevisionID) (rope.Rope, error) {
	switch {
	case id < l.baseID || id > l.currentLocked():
		return rope.Rope{}, fmt.Errorf("%w: %d", ErrRevisionNotFound, id)
	case id == l.baseID:
		return l.base, nil
	default:
		return l.revs[id-l.baseID-1].rope, nil
	}
}

// ChangesSince returns the composition of every diff recorded after rev.
// For the current revision it is the identity diff.
func (l *Log) ChangesSince(rev RevisionID) (diff.Diff, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.changesLocked(rev, l.currentLocked())
}

// ChangesBetween returns the composition of the diffs taking revision from
// to revision to.
func (l *Log) ChangesBetween(from, to RevisionID) (diff.Diff, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if from > to {
		return diff.Diff{}, fmt.Errorf("%w: range %d..%d is reversed", ErrRevisionNotFound, from, to)
	}
	return l.changesLocked(from, to)
}

func (l *Log) changesLocked(from, to RevisionID) (diff.Diff, error) {
	start, err := l.ropeLocked(from)
	if err != nil {
		return diff.Diff{}, err
	}
	if to > l.currentLocked() {
		return diff.Diff{}, fmt.Errorf("%w: %d", ErrRevisionNotFound, to)
	}

	out := diff.Identity(start.Length())
	for _, rev := range l.revs[from-l.baseID : to-l.baseID] {
		if out, err = diff.Compose(out, rev.Diff); err != nil {
			return diff.Diff{}, fmt.Errorf("changes since %d: %w", from, err)
		}
	}
	return out, nil
}

// Rebase transforms d, made against revision rev, so that it applies to
// the current text.
func (l *Log) Rebase(d diff.Diff, rev RevisionID) (diff.Diff, error) {
	changes, err := l.ChangesSince(rev)
	if err != nil {
		return diff.Diff{}, err
	}
	if changes.IsIdentity() {
		return d, nil
	}
	rebased, _, err := diff.Transform(d, changes)
	if err != nil {
		return diff.Diff{}, fmt.Errorf("rebase from %d: %w", rev, err)
	}
	l.log.Debug("rebased diff", "from", rev, "ops", rebased.Len())
	return rebased, nil
}

// Snapshots returns the snapshot manager.
func (l *Log) Snapshots() *SnapshotManager {
	return l.snapshots
}

// CreateSnapshot snapshots the current text under name.
func (l *Log) CreateSnapshot(name string) SnapshotID {
	l.mu.RLock()
	id := l.currentLocked()
	r, _ := l.ropeLocked(id)
	l.mu.RUnlock()
	return l.snapshots.Create(name, r, id)
}

// DiffSinceSnapshot returns a diff taking the snapshot's text to the
// current text. When the snapshot's revision has been trimmed the diff is
// computed from the two texts instead.
func (l *Log) DiffSinceSnapshot(id SnapshotID) (diff.Diff, error) {
	snap, ok := l.snapshots.Get(id)
	if !ok {
		return diff.Diff{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}

	d, err := l.ChangesSince(snap.Revision)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, ErrRevisionNotFound) {
		return diff.Diff{}, err
	}

	l.mu.RLock()
	current, _ := l.ropeLocked(l.currentLocked())
	l.mu.RUnlock()
	l.log.Debug("snapshot revision trimmed, diffing texts", "snapshot", snap.Name)
	return diff.FromTexts(snap.Text(), current.String()), nil
}
