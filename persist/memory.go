package persist

import (
	"context"
	"sync"

	"slate/board"
)

// MemoryStore is an ephemeral in-process store, used for unauthenticated
// sessions where edits should survive navigation but not the process.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]*board.FullState
}

// NewMemoryStore returns an empty ephemeral store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*board.FullState)}
}

func (ms *MemoryStore) Load(_ context.Context, id string) (*board.FullState, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	st, ok := ms.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := st.Clone()
	clone.Normalize()
	return clone, nil
}

func (ms *MemoryStore) Save(_ context.Context, id string, st *board.FullState) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.docs[id] = st.Clone()
	return nil
}

// Len returns the number of stored documents.
func (ms *MemoryStore) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.docs)
}
