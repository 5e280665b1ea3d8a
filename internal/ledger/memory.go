package ledger

import "context"

// MemoryStore is an in-memory Store used by tests and dry runs.
type MemoryStore struct {
	snapshot Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshot: Snapshot{}}
}

func (m *MemoryStore) Load(_ context.Context) (Snapshot, error) {
	copied := make(Snapshot, len(m.snapshot))
	for k, v := range m.snapshot {
		copied[k] = v
	}
	return copied, nil
}

func (m *MemoryStore) Save(_ context.Context, s Snapshot) error {
	copied := make(Snapshot, len(s))
	for k, v := range s {
		copied[k] = v
	}
	m.snapshot = copied
	return nil
}
