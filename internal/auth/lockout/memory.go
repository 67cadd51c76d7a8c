package lockout

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count     int
	expiresAt time.Time
}

// InMemoryStore is the single-node fallback when Redis is not configured.
type InMemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (s *InMemoryStore) RecordFailure(_ context.Context, email string, windowLen time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w := s.windows[email]
	if w == nil || now.After(w.expiresAt) {
		w = &window{expiresAt: now.Add(windowLen)}
		s.windows[email] = w
	}
	w.count++
	return w.count, nil
}

func (s *InMemoryStore) Failures(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.windows[email]
	if w == nil || s.now().After(w.expiresAt) {
		return 0, nil
	}
	return w.count, nil
}

func (s *InMemoryStore) Clear(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, email)
	return nil
}
