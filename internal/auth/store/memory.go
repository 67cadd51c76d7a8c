package store

import (
	"context"
	"sync"

	"admissio/internal/auth/models"
	id "admissio/pkg/domain"
	"admissio/pkg/platform/sentinel"
)

// InMemory implements the credential store with a map guarded by a RWMutex.
// Email uniqueness is enforced under the write lock.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[id.PrincipalID]*models.Principal
	byEmail map[string]id.PrincipalID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[id.PrincipalID]*models.Principal),
		byEmail: make(map[string]id.PrincipalID),
	}
}

func (s *InMemory) Create(_ context.Context, principal *models.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := models.NormalizeEmail(principal.Email)
	if _, taken := s.byEmail[email]; taken {
		return sentinel.ErrAlreadyExists
	}

	copied := *principal
	s.byID[principal.ID] = &copied
	s.byEmail[email] = principal.ID
	return nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	principalID, ok := s.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *s.byID[principalID]
	return &copied, nil
}

func (s *InMemory) FindByID(_ context.Context, principalID id.PrincipalID) (*models.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	principal, ok := s.byID[principalID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *principal
	return &copied, nil
}

func (s *InMemory) Update(_ context.Context, principal *models.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[principal.ID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *principal
	s.byID[principal.ID] = &copied
	return nil
}
