package storage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/matzehuels/rose/pkg/network"
)

// MemoryStore keeps the state in memory. Saved states are deep-copied so
// callers cannot mutate the stored value.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements network.Store.
func (s *MemoryStore) Load(ctx context.Context) (*network.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return nil, network.ErrNoState
	}
	var st network.State
	if err := json.Unmarshal(s.data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Save implements network.Store.
func (s *MemoryStore) Save(ctx context.Context, st *network.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Close implements network.Store.
func (s *MemoryStore) Close() error { return nil }

var _ network.Store = (*MemoryStore)(nil)
