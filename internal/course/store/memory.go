package store

import (
	"context"
	"sort"
	"sync"

	"admissio/internal/course"
	id "admissio/pkg/domain"
	"admissio/pkg/platform/sentinel"
)

// InMemory keeps courses in a map guarded by a RWMutex. Name uniqueness is
// enforced under the write lock.
type InMemory struct {
	mu     sync.RWMutex
	byID   map[id.CourseID]*course.Course
	byName map[string]id.CourseID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:   make(map[id.CourseID]*course.Course),
		byName: make(map[string]id.CourseID),
	}
}

func (s *InMemory) Create(_ context.Context, c *course.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byName[c.Name]; taken {
		return sentinel.ErrAlreadyExists
	}
	copied := *c
	s.byID[c.ID] = &copied
	s.byName[c.Name] = c.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, courseID id.CourseID) (*course.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[courseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *InMemory) FindAll(_ context.Context) ([]*course.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*course.Course, 0, len(s.byID))
	for _, c := range s.byID {
		copied := *c
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemory) Update(_ context.Context, c *course.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing.Name != c.Name {
		delete(s.byName, existing.Name)
		s.byName[c.Name] = c.ID
	}
	copied := *c
	s.byID[c.ID] = &copied
	return nil
}

func (s *InMemory) Delete(_ context.Context, courseID id.CourseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[courseID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byName, c.Name)
	delete(s.byID, courseID)
	return nil
}
