package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/weaver/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.ProjectState
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.ProjectState),
	}
}

// Save persists a deep copy of the state in memory.
func (s *Store) Save(ctx context.Context, name string, state *domain.ProjectState) error {
	copied := state.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = copied
	return nil
}

// Load retrieves a copy of the state so callers cannot mutate the stored one.
func (s *Store) Load(ctx context.Context, name string) (*domain.ProjectState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[name]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return state.Snapshot(), nil
}

// List returns the stored project names in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
