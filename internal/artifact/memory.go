package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore implements Store in process memory. Useful for testing and
// development. Values round-trip through JSON so callers see the same
// decoding behavior as the filesystem store.
type MemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string][]byte
}

// NewMemoryStore creates an empty in-memory artifact store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{artifacts: make(map[string][]byte)}
}

func (s *MemoryStore) Save(_ context.Context, name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal artifact %s: %w", name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[name] = data
	return nil
}

func (s *MemoryStore) Load(_ context.Context, name string, v interface{}) error {
	s.mu.RLock()
	data, ok := s.artifacts[name]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("artifact %s: %w", name, ErrMissing)
	}
	if len(data) == 0 {
		return fmt.Errorf("artifact %s is empty: %w", name, ErrCorrupt)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("artifact %s: %w: %v", name, ErrCorrupt, err)
	}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts = make(map[string][]byte)
	return nil
}

// Corrupt replaces the named artifact with undecodable bytes. Test hook.
func (s *MemoryStore) Corrupt(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[name] = []byte("{truncated")
}

// Has reports whether the named artifact exists. Test hook.
func (s *MemoryStore) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.artifacts[name]
	return ok
}
