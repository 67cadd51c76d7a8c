package store

import (
	"context"
	"sort"
	"sync"

	"admissio/internal/admission/models"
	id "admissio/pkg/domain"
	"admissio/pkg/platform/sentinel"
)

// InMemory keeps whole aggregates under a single mutex so a version check and
// the write it guards are one critical section.
type InMemory struct {
	mu   sync.Mutex
	apps map[id.ApplicationID]*models.Application
}

func NewInMemory() *InMemory {
	return &InMemory{apps: make(map[id.ApplicationID]*models.Application)}
}

func (s *InMemory) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.apps[app.ID]; exists {
		return sentinel.ErrAlreadyExists
	}
	s.apps[app.ID] = app.Clone()
	return nil
}

// Update commits the aggregate only when the stored version still equals
// expectedVersion. The caller has already advanced app.Version past it.
func (s *InMemory) Update(_ context.Context, app *models.Application, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.apps[app.ID]
	if !exists {
		return sentinel.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return sentinel.ErrVersionMismatch
	}
	s.apps[app.ID] = app.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, exists := s.apps[applicationID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return app.Clone(), nil
}

func (s *InMemory) FindByPaymentID(_ context.Context, paymentID id.PaymentID) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, app := range s.apps {
		if app.Payment != nil && app.Payment.ID == paymentID {
			return app.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByStudent(_ context.Context, studentID id.PrincipalID) ([]*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Application
	for _, app := range s.apps {
		if app.StudentID == studentID {
			out = append(out, app.Clone())
		}
	}
	sortByCreation(out)
	return out, nil
}

func (s *InMemory) FindAll(_ context.Context) ([]*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Application, 0, len(s.apps))
	for _, app := range s.apps {
		out = append(out, app.Clone())
	}
	sortByCreation(out)
	return out, nil
}

func sortByCreation(apps []*models.Application) {
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return apps[i].ID.String() < apps[j].ID.String()
		}
		return apps[i].CreatedAt.Before(apps[j].CreatedAt)
	})
}
