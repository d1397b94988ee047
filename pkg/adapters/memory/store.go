package memory

import (
	"context"
	"sync"

	"github.com/duvall/marquee/pkg/domain"
)

// Store implements ports.SettingsStore in memory. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewStore creates an empty in-memory settings store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]map[string][]byte),
	}
}

// Get retrieves a value copy.
func (s *Store) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.data[namespace]
	if !ok {
		return nil, domain.ErrPresetNotFound
	}
	value, ok := ns[key]
	if !ok {
		return nil, domain.ErrPresetNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores a value copy.
func (s *Store) Set(ctx context.Context, namespace, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.data[namespace]
	if !ok {
		ns = make(map[string][]byte)
		s.data[namespace] = ns
	}
	ns[key] = stored
	return nil
}

// Delete removes a value.
func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ns, ok := s.data[namespace]; ok {
		delete(ns, key)
	}
	return nil
}

// List returns the keys in a namespace.
func (s *Store) List(ctx context.Context, namespace string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ns := s.data[namespace]
	keys := make([]string, 0, len(ns))
	for k := range ns {
		keys = append(keys, k)
	}
	return keys, nil
}
