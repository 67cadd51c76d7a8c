package audit

import (
	"context"
	"sync"

	id "admissio/pkg/domain"
)

// InMemoryStore keeps audit events per principal. Used in tests and when no
// database is configured.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.PrincipalID][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.PrincipalID][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.PrincipalID] = append(s.events[event.PrincipalID], event)
	return nil
}

func (s *InMemoryStore) ListByPrincipal(_ context.Context, principalID id.PrincipalID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[principalID]...), nil
}
