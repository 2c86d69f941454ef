// Package cache owns the single live snapshot. Readers get consistent deep
// copies; writers install fully assembled snapshots in one atomic swap.
// Collection happens entirely outside the lock, so slow hardware I/O never
// blocks a menu open.
package cache

import (
	"sync"

	"deskstate/internal/models"
)

// StateCache holds the current snapshot under a read-write mutex.
type StateCache struct {
	mu   sync.RWMutex
	snap models.Snapshot
}

// New returns a cache primed with the empty snapshot, so Read is
// well-defined before the first successful collection.
func New() *StateCache {
	return &StateCache{snap: models.EmptySnapshot()}
}

// Read returns a deep copy of the current snapshot. Never blocks on
// external I/O.
func (c *StateCache) Read() models.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.DeepCopy()
}

// Replace installs snap as the current snapshot and reports whether it was
// accepted. Snapshots whose Seq is not newer than the live one are discarded:
// overlapping refreshes are not serialized, so a slow pass may finish after a
// newer one, and publishing it would momentarily roll displayed state back.
func (c *StateCache) Replace(snap models.Snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap.Seq != 0 && snap.Seq <= c.snap.Seq {
		return false
	}
	c.snap = snap
	return true
}

// UpdateMapping swaps in a derived snapshot that differs from the live one
// only in its mapping table. Used after a mapping write so the UI shows the
// new mapping immediately, without waiting for the full refresh that
// re-derives scale readings under it. The sequence number is unchanged; the
// follow-up refresh supersedes this snapshot.
func (c *StateCache) UpdateMapping(table models.MappingTable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.snap.DeepCopy()
	next.Mapping = table.Clone()
	c.snap = next
}

// Seq returns the sequence number of the live snapshot.
func (c *StateCache) Seq() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Seq
}
