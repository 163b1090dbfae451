package store

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"sync"
)

// MemStore is an in-memory Store. It round-trips values through JSON so it
// behaves exactly like the file store, and is safe for concurrent use.
// Intended for tests and throwaway sessions.
type MemStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{slots: make(map[string][]byte)}
}

// Load implements Store.
func (s *MemStore) Load(slot string, v interface{}) error {
	s.mu.RLock()
	raw, ok := s.slots[slot]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("load slot %q: %w", slot, fs.ErrNotExist)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("load slot %q: decode: %w", slot, err)
	}
	return nil
}

// Save implements Store.
func (s *MemStore) Save(slot string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("save slot %q: encode: %w", slot, err)
	}

	s.mu.Lock()
	s.slots[slot] = raw
	s.mu.Unlock()
	return nil
}

var _ Store = (*MemStore)(nil)
