package storage

import (
	"sync"

	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.KeyValue = (*Memory)(nil)

// Memory is the in-memory KeyValue used by tests and by runs with
// persistence disabled. Values survive only for the process lifetime.
type Memory struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string][]byte)}
}

func (s *Memory) Load(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.m[key]
	if !ok {
		return nil, port.ErrNoValue
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (s *Memory) Save(key string, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)

	s.mu.Lock()
	s.m[key] = cp
	s.mu.Unlock()
	return nil
}

func (s *Memory) Remove(key string) error {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
	return nil
}
