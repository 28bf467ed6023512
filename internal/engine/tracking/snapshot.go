package tracking

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/ropecore/internal/engine/rope"
	"github.com/dshills/ropecore/internal/engine/text"
)

// SnapshotID uniquely identifies a snapshot.
type SnapshotID = uuid.UUID

// Snapshot is a named checkpoint of the text.
// Snapshots are immutable and can be safely shared across goroutines.
type Snapshot struct {
	// ID uniquely identifies this snapshot.
	ID SnapshotID

	// Name is the human-readable name for this snapshot, such as
	// "before_format". It may be empty.
	Name string

	// Timestamp when this snapshot was created.
	Timestamp time.Time

	// Revision is the log revision at the time of the snapshot.
	Revision RevisionID

	rope rope.Rope
}

// NewSnapshot creates a new snapshot with the given parameters.
func NewSnapshot(name string, rp rope.Rope, revision RevisionID) *Snapshot {
	return &Snapshot{
		ID:        uuid.New(),
		Name:      name,
		Timestamp: time.Now(),
		Revision:  revision,
		rope:      rp,
	}
}

// Rope returns the rope snapshot.
func (s *Snapshot) Rope() rope.Rope {
	return s.rope
}

// Text returns the full text at this snapshot.
// Use sparingly for large texts.
func (s *Snapshot) Text() string {
	return s.rope.String()
}

// Length returns the length of the text at this snapshot.
func (s *Snapshot) Length() text.Length {
	return s.rope.Length()
}

// Age returns how long ago this snapshot was created.
func (s *Snapshot) Age() time.Duration {
	return time.Since(s.Timestamp)
}

// SnapshotManager keeps snapshots in creation order, so the oldest are
// always at the front. Names are unique; the empty name is never indexed.
// All operations are thread-safe.
type SnapshotManager struct {
	mu     sync.RWMutex
	order  []*Snapshot
	byID   map[SnapshotID]*Snapshot
	byName map[string]*Snapshot
}

// NewSnapshotManager creates an empty snapshot manager.
func NewSnapshotManager() *SnapshotManager {
	return &SnapshotManager{
		byID:   make(map[SnapshotID]*Snapshot),
		byName: make(map[string]*Snapshot),
	}
}

// Create snapshots rp at revision. A snapshot already holding name is
// replaced.
func (sm *SnapshotManager) Create(name string, rp rope.Rope, revision RevisionID) SnapshotID {
	snap := NewSnapshot(name, rp, revision)

	sm.mu.Lock()
	defer sm.mu.Unlock()
	if old, ok := sm.byName[name]; ok {
		sm.removeLocked(old)
	}
	sm.order = append(sm.order, snap)
	sm.byID[snap.ID] = snap
	if name != "" {
		sm.byName[name] = snap
	}
	return snap.ID
}

// Get retrieves a snapshot by ID.
func (sm *SnapshotManager) Get(id SnapshotID) (*Snapshot, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	snap, ok := sm.byID[id]
	return snap, ok
}

// GetByName retrieves a snapshot by name.
func (sm *SnapshotManager) GetByName(name string) (*Snapshot, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	snap, ok := sm.byName[name]
	return snap, ok
}

// Delete removes the snapshot with id and reports whether it existed.
func (sm *SnapshotManager) Delete(id SnapshotID) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	snap, ok := sm.byID[id]
	if ok {
		sm.removeLocked(snap)
	}
	return ok
}

// DeleteByName removes the snapshot called name and reports whether it
// existed.
func (sm *SnapshotManager) DeleteByName(name string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	snap, ok := sm.byName[name]
	if ok {
		sm.removeLocked(snap)
	}
	return ok
}

// List returns every snapshot, oldest first.
func (sm *SnapshotManager) List() []*Snapshot {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Clone(sm.order)
}

// Count returns the number of snapshots.
func (sm *SnapshotManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.order)
}

// Prune removes snapshots older than maxAge and returns how many it
// removed.
func (sm *SnapshotManager) Prune(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	sm.mu.Lock()
	defer sm.mu.Unlock()
	n, _ := slices.BinarySearchFunc(sm.order, cutoff, func(s *Snapshot, t time.Time) int {
		if s.Timestamp.Before(t) {
			return -1
		}
		return 1
	})
	return sm.dropOldestLocked(n)
}

// PruneKeepN removes all but the n newest snapshots and returns how many
// it removed.
func (sm *SnapshotManager) PruneKeepN(n int) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.dropOldestLocked(max(len(sm.order)-max(n, 0), 0))
}

func (sm *SnapshotManager) dropOldestLocked(k int) int {
	for _, snap := range sm.order[:k] {
		sm.unindexLocked(snap)
	}
	sm.order = slices.Delete(sm.order, 0, k)
	return k
}

func (sm *SnapshotManager) removeLocked(snap *Snapshot) {
	sm.unindexLocked(snap)
	sm.order = slices.DeleteFunc(sm.order, func(s *Snapshot) bool { return s == snap })
}

func (sm *SnapshotManager) unindexLocked(snap *Snapshot) {
	delete(sm.byID, snap.ID)
	if snap.Name != "" && sm.byName[snap.Name] == snap {
		delete(sm.byName, snap.Name)
	}
}
