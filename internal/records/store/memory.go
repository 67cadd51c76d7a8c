package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"admissio/internal/records"
	id "admissio/pkg/domain"
	"admissio/pkg/platform/sentinel"
)

// InMemory keeps every collection in process memory. Used by tests and by
// deployments without a database.
type InMemory struct {
	mu          sync.RWMutex
	collections map[string]map[id.RecordID]*records.Record
}

func NewInMemory() *InMemory {
	return &InMemory{collections: make(map[string]map[id.RecordID]*records.Record)}
}

func (s *InMemory) Save(_ context.Context, collection string, rec *records.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.collections[collection]
	if !ok {
		byID = make(map[id.RecordID]*records.Record)
		s.collections[collection] = byID
	}
	byID[rec.ID] = clone(rec)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, collection string, recordID id.RecordID) (*records.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.collections[collection][recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(rec), nil
}

func (s *InMemory) FindAll(_ context.Context, collection string) ([]*records.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID := s.collections[collection]
	out := make([]*records.Record, 0, len(byID))
	for _, rec := range byID {
		out = append(out, clone(rec))
	}
	slices.SortFunc(out, func(a, b *records.Record) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (s *InMemory) DeleteByID(_ context.Context, collection string, recordID id.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := s.collections[collection]
	if _, ok := byID[recordID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(byID, recordID)
	return nil
}

func clone(rec *records.Record) *records.Record {
	copied := *rec
	copied.Body = slices.Clone(rec.Body)
	return &copied
}
