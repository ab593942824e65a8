package translate

import (
	"context"
	"sync"
)

// CacheKey identifies a translation by exact text and language codes.
type CacheKey struct {
	Text   string
	Source string
	Target string
}

// Store persists cached translations. Implementations never evict.
type Store interface {
	Get(ctx context.Context, key CacheKey) (string, bool, error)
	Set(ctx context.Context, key CacheKey, value string) error
	Len() int
}

// MemoryStore is the process-lifetime in-memory store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[CacheKey]string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[CacheKey]string)}
}

func (s *MemoryStore) Get(_ context.Context, key CacheKey) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key CacheKey, value string) error {
	s.mu.Lock()
	s.entries[key] = value
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
