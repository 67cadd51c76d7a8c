package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"admissio/internal/admission/models"
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

func (s *InMemoryStoreSuite) newSubmitted() *models.Application {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	app, err := models.NewApplication(id.NewApplicationID(), id.NewPrincipalID(), id.NewCourseID(), "12 College Road", 87.5, now)
	s.Require().NoError(err)
	s.Require().NoError(app.Submit(now))
	return app
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	app := s.newSubmitted()

	s.Require().NoError(s.store.Create(ctx, app))
	s.ErrorIs(s.store.Create(ctx, app), sentinel.ErrAlreadyExists)

	found, err := s.store.FindByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(app.Version, found.Version)

	_, err = s.store.FindByID(ctx, id.NewApplicationID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestUpdateVersionCheck() {
	ctx := context.Background()
	app := s.newSubmitted()
	s.Require().NoError(s.store.Create(ctx, app))

	expected := app.Version
	s.Require().NoError(app.AttachDocument(models.Document{
		ID:            id.NewDocumentID(),
		ApplicationID: app.ID,
		Type:          "transcript",
		BlobReference: "blob://transcript",
		UploadedAt:    time.Now(),
	}, []string{"transcript", "identity_proof"}, time.Now()))

	s.Require().NoError(s.store.Update(ctx, app, expected))

	// The same expected version no longer matches.
	s.ErrorIs(s.store.Update(ctx, app, expected), sentinel.ErrVersionMismatch)

	missing := s.newSubmitted()
	s.ErrorIs(s.store.Update(ctx, missing, missing.Version), sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestReturnedAggregatesAreCopies() {
	ctx := context.Background()
	app := s.newSubmitted()
	s.Require().NoError(s.store.Create(ctx, app))

	found, err := s.store.FindByID(ctx, app.ID)
	s.Require().NoError(err)
	found.Address = "mutated"
	found.Documents = append(found.Documents, models.Document{Type: "bogus"})

	again, err := s.store.FindByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal("12 College Road", again.Address)
	s.Empty(again.Documents)
}

// TestConcurrentUpdates verifies that racing commits from one version admit
// exactly one winner.
func (s *InMemoryStoreSuite) TestConcurrentUpdates() {
	ctx := context.Background()
	app := s.newSubmitted()
	s.Require().NoError(s.store.Create(ctx, app))

	const goroutines = 20
	startingVersion := app.Version

	var wg sync.WaitGroup
	var wins, losses atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			candidate := app.Clone()
			candidate.Version = startingVersion + 1
			switch err := s.store.Update(ctx, candidate, startingVersion); {
			case err == nil:
				wins.Add(1)
			default:
				losses.Add(1)
			}
		}()
	}
	wg.Wait()

	s.EqualValues(1, wins.Load())
	s.EqualValues(goroutines-1, losses.Load())

	stored, err := s.store.FindByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(startingVersion+1, stored.Version)
}

func (s *InMemoryStoreSuite) TestListFilters() {
	ctx := context.Background()
	mine := s.newSubmitted()
	other := s.newSubmitted()
	s.Require().NoError(s.store.Create(ctx, mine))
	s.Require().NoError(s.store.Create(ctx, other))

	own, err := s.store.FindByStudent(ctx, mine.StudentID)
	s.Require().NoError(err)
	s.Len(own, 1)
	s.Equal(mine.ID, own[0].ID)

	all, err := s.store.FindAll(ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
}
