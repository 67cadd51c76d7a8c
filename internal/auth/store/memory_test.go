package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"admissio/internal/auth/models"
	id "admissio/pkg/domain"
	"admissio/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func (s *InMemoryStoreSuite) newPrincipal(email string, role id.Role) *models.Principal {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	dob := time.Date(2004, 6, 1, 0, 0, 0, 0, time.UTC)
	principal, err := models.NewPrincipal(id.NewPrincipalID(), email, []byte("$2a$10$hash"), role, models.Profile{
		Name:        "Asha Rao",
		DateOfBirth: &dob,
	}, now)
	s.Require().NoError(err)
	return principal
}

func (s *InMemoryStoreSuite) TestCreate() {
	ctx := context.Background()

	s.Run("stores and retrieves by id and email", func() {
		principal := s.newPrincipal("asha@example.com", id.RoleStudent)
		s.Require().NoError(s.store.Create(ctx, principal))

		byID, err := s.store.FindByID(ctx, principal.ID)
		s.Require().NoError(err)
		s.Equal(principal.Email, byID.Email)

		byEmail, err := s.store.FindByEmail(ctx, "asha@example.com")
		s.Require().NoError(err)
		s.Equal(principal.ID, byEmail.ID)
	})

	s.Run("duplicate email returns ErrAlreadyExists across roles", func() {
		s.Require().NoError(s.store.Create(ctx, s.newPrincipal("shared@example.com", id.RoleStudent)))

		err := s.store.Create(ctx, s.newPrincipal("shared@example.com", id.RoleOfficer))
		s.ErrorIs(err, sentinel.ErrAlreadyExists)
	})

	s.Run("email lookup is case-insensitive", func() {
		principal := s.newPrincipal("mixed@example.com", id.RoleStudent)
		s.Require().NoError(s.store.Create(ctx, principal))

		found, err := s.store.FindByEmail(ctx, "MIXED@Example.com")
		s.Require().NoError(err)
		s.Equal(principal.ID, found.ID)
	})
}

func (s *InMemoryStoreSuite) TestFind() {
	ctx := context.Background()

	s.Run("unknown id returns ErrNotFound", func() {
		_, err := s.store.FindByID(ctx, id.NewPrincipalID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("unknown email returns ErrNotFound", func() {
		_, err := s.store.FindByEmail(ctx, "missing@example.com")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned record is a copy", func() {
		principal := s.newPrincipal("copy@example.com", id.RoleStudent)
		s.Require().NoError(s.store.Create(ctx, principal))

		found, err := s.store.FindByID(ctx, principal.ID)
		s.Require().NoError(err)
		found.Name = "mutated"

		again, err := s.store.FindByID(ctx, principal.ID)
		s.Require().NoError(err)
		s.Equal("Asha Rao", again.Name)
	})
}

func (s *InMemoryStoreSuite) TestUpdate() {
	ctx := context.Background()

	s.Run("persists changed fields", func() {
		principal := s.newPrincipal("update@example.com", id.RoleStudent)
		s.Require().NoError(s.store.Create(ctx, principal))

		principal.Name = "Asha R. Rao"
		s.Require().NoError(s.store.Update(ctx, principal))

		found, err := s.store.FindByID(ctx, principal.ID)
		s.Require().NoError(err)
		s.Equal("Asha R. Rao", found.Name)
	})

	s.Run("unknown principal returns ErrNotFound", func() {
		err := s.store.Update(ctx, s.newPrincipal("ghost@example.com", id.RoleStudent))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}
