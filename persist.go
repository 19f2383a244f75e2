package lineage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrSnapshotNotFound is returned by SnapshotStore.Load for an unknown key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotStore persists snapshots under caller-chosen keys. Saving under an
// existing key replaces the earlier snapshot.
type SnapshotStore interface {
	Save(ctx context.Context, key string, s Snapshot) error
	Load(ctx context.Context, key string) (Snapshot, error)
	Delete(ctx context.Context, key string) error
}

// MemorySnapshotStore keeps snapshots in process. Safe for concurrent use.
type MemorySnapshotStore struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

// NewMemorySnapshotStore creates an empty store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{snaps: make(map[string]Snapshot)}
}

// Save implements SnapshotStore.
func (m *MemorySnapshotStore) Save(_ context.Context, key string, s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[key] = cloneSnapshot(s)
	return nil
}

// Load implements SnapshotStore.
func (m *MemorySnapshotStore) Load(_ context.Context, key string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snaps[key]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, key)
	}
	return cloneSnapshot(s), nil
}

// Delete implements SnapshotStore. Deleting an unknown key is not an error.
func (m *MemorySnapshotStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, key)
	return nil
}

// Keys returns the stored keys, sorted.
func (m *MemorySnapshotStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.snaps))
	for k := range m.snaps {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func cloneSnapshot(s Snapshot) Snapshot {
	out := Snapshot{Name: s.Name, Events: make([]EventRecord, len(s.Events))}
	for i, rec := range s.Events {
		rec.Payload = slices.Clone(rec.Payload)
		out.Events[i] = rec
	}
	return out
}

var _ SnapshotStore = (*MemorySnapshotStore)(nil)
