package embedding

import "sync"

// MemoryStore keeps vectors in a map. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vectors: make(map[string][]float32)}
}

func (s *MemoryStore) Vector(term string) ([]float32, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vec, ok := s.vectors[Normalize(term)]
	return vec, ok, nil
}

func (s *MemoryStore) Put(term string, vec []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors[Normalize(term)] = append([]float32(nil), vec...)
	return nil
}

// Len returns the number of stored terms
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

func (s *MemoryStore) Close() error { return nil }
