//go:build integration

package store_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"admissio/internal/records"
	"admissio/internal/records/store"
	id "admissio/pkg/domain"
	"admissio/pkg/platform/sentinel"
	"admissio/pkg/testutil/containers"
)

type PostgresRecordsSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresRecordsSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresRecordsSuite))
}

func (s *PostgresRecordsSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresRecordsSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "record")
	s.Require().NoError(err)
}

func newTestRecord(body string) *records.Record {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &records.Record{
		ID:        id.NewRecordID(),
		Body:      json.RawMessage(body),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *PostgresRecordsSuite) TestRoundTrip() {
	ctx := context.Background()

	rec := newTestRecord(`{"title": "Dune", "copies": 3}`)
	s.Require().NoError(s.store.Save(ctx, "library/books", rec))

	found, err := s.store.FindByID(ctx, "library/books", rec.ID)
	s.Require().NoError(err)
	s.JSONEq(string(rec.Body), string(found.Body))
	s.Equal(rec.CreatedAt, found.CreatedAt.UTC())
}

func (s *PostgresRecordsSuite) TestSaveIsUpsert() {
	ctx := context.Background()

	rec := newTestRecord(`{"copies": 3}`)
	s.Require().NoError(s.store.Save(ctx, "library/books", rec))

	rec.Body = json.RawMessage(`{"copies": 2}`)
	rec.UpdatedAt = rec.UpdatedAt.Add(time.Minute)
	s.Require().NoError(s.store.Save(ctx, "library/books", rec))

	found, err := s.store.FindByID(ctx, "library/books", rec.ID)
	s.Require().NoError(err)
	s.JSONEq(`{"copies": 2}`, string(found.Body))

	all, err := s.store.FindAll(ctx, "library/books")
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *PostgresRecordsSuite) TestCollectionsDoNotLeak() {
	ctx := context.Background()

	rec := newTestRecord(`{"patient": "anonymous"}`)
	s.Require().NoError(s.store.Save(ctx, "patient/visits", rec))

	_, err := s.store.FindByID(ctx, "library/visits", rec.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	empty, err := s.store.FindAll(ctx, "budget/visits")
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *PostgresRecordsSuite) TestDelete() {
	ctx := context.Background()

	rec := newTestRecord(`{"item": "rice"}`)
	s.Require().NoError(s.store.Save(ctx, "grocery/orders", rec))

	s.Require().NoError(s.store.DeleteByID(ctx, "grocery/orders", rec.ID))
	s.ErrorIs(s.store.DeleteByID(ctx, "grocery/orders", rec.ID), sentinel.ErrNotFound)
}
