package records_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"admissio/internal/records"
	"admissio/internal/records/store"
	id "admissio/pkg/domain"
	dErrors "admissio/pkg/domain-errors"
)

type RecordsServiceSuite struct {
	suite.Suite
	service *records.Service
}

func TestRecordsServiceSuite(t *testing.T) {
	suite.Run(t, new(RecordsServiceSuite))
}

func (s *RecordsServiceSuite) SetupTest() {
	s.service = records.NewService(store.NewInMemory())
}

func (s *RecordsServiceSuite) ctx() context.Context {
	return context.Background()
}

func (s *RecordsServiceSuite) TestSaveAndGet() {
	s.Run("round trips an opaque document", func() {
		body := json.RawMessage(`{"title":"Dune","author":"Herbert"}`)
		saved, err := s.service.Save(s.ctx(), "library", "books", body)
		s.Require().NoError(err)
		s.False(saved.ID.IsNil())

		found, err := s.service.Get(s.ctx(), "library", "books", saved.ID)
		s.Require().NoError(err)
		s.JSONEq(string(body), string(found.Body))
	})

	s.Run("unknown backend is NotFound", func() {
		_, err := s.service.Save(s.ctx(), "payroll", "runs", json.RawMessage(`{}`))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("malformed body is a validation error", func() {
		_, err := s.service.Save(s.ctx(), "budget", "expenses", json.RawMessage(`{"amount":`))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("collection name is validated", func() {
		_, err := s.service.Save(s.ctx(), "budget", "Expen ses", json.RawMessage(`{}`))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("missing record is NotFound", func() {
		_, err := s.service.Get(s.ctx(), "grocery", "orders", id.NewRecordID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *RecordsServiceSuite) TestCollectionIsolation() {
	saved, err := s.service.Save(s.ctx(), "library", "books", json.RawMessage(`{"title":"Dune"}`))
	s.Require().NoError(err)

	// The same collection name under another backend is a different scope.
	_, err = s.service.Get(s.ctx(), "patient", "books", saved.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	other, err := s.service.List(s.ctx(), "library", "loans")
	s.Require().NoError(err)
	s.Empty(other)

	books, err := s.service.List(s.ctx(), "library", "books")
	s.Require().NoError(err)
	s.Len(books, 1)
}

func (s *RecordsServiceSuite) TestDelete() {
	saved, err := s.service.Save(s.ctx(), "grocery", "orders", json.RawMessage(`{"item":"rice"}`))
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(s.ctx(), "grocery", "orders", saved.ID))

	_, err = s.service.Get(s.ctx(), "grocery", "orders", saved.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	err = s.service.Delete(s.ctx(), "grocery", "orders", saved.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
