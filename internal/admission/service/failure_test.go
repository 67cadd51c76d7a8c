package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"admissio/internal/admission/mocks"
	"admissio/internal/admission/models"
	id "admissio/pkg/domain"
	dErrors "admissio/pkg/domain-errors"
	"admissio/pkg/platform/sentinel"
	"admissio/pkg/requestcontext"
)

// StoreFailureSuite scripts the store per call to pin how infrastructure
// errors translate into the caller-facing taxonomy. The happy paths run
// against the in-memory store in AdmissionServiceSuite.
type StoreFailureSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	store    *mocks.MockStore
	courses  *mocks.MockCourseDirectory
	service  *Service
	student  id.Identity
	courseID id.CourseID
	now      time.Time
}

func TestStoreFailureSuite(t *testing.T) {
	suite.Run(t, new(StoreFailureSuite))
}

func (s *StoreFailureSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.courses = mocks.NewMockCourseDirectory(s.ctrl)
	s.service = New(s.store, s.courses)
	s.student = id.Identity{PrincipalID: id.NewPrincipalID(), Role: id.RoleStudent}
	s.courseID = id.NewCourseID()
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
}

func (s *StoreFailureSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *StoreFailureSuite) submittedApplication() *models.Application {
	app, err := models.NewApplication(id.NewApplicationID(), s.student.PrincipalID, s.courseID, "12 Marine Drive", 88.5, s.now)
	s.Require().NoError(err)
	app.ApplySubmit(s.now)
	return app
}

func (s *StoreFailureSuite) TestSubmit() {
	s.Run("create failure surfaces as Internal", func() {
		s.courses.EXPECT().RequiredDocumentTypes(gomock.Any(), s.courseID).Return([]string{"transcript"}, nil)
		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

		_, err := s.service.Submit(s.ctx(), s.student, SubmitRequest{
			CourseID:   s.courseID,
			Address:    "12 Marine Drive",
			Percentage: 88.5,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *StoreFailureSuite) TestUploadDocument() {
	s.Run("lookup failure surfaces as Internal", func() {
		app := s.submittedApplication()
		s.store.EXPECT().FindByID(gomock.Any(), app.ID).Return(nil, errors.New("connection reset"))

		_, err := s.service.UploadDocument(s.ctx(), s.student, DocumentRequest{
			ApplicationID: app.ID,
			Type:          "transcript",
			BlobReference: "blob://transcript",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("version mismatch on commit is Conflict", func() {
		app := s.submittedApplication()
		s.store.EXPECT().FindByID(gomock.Any(), app.ID).Return(app, nil)
		s.courses.EXPECT().RequiredDocumentTypes(gomock.Any(), s.courseID).Return([]string{"transcript", "identity_proof"}, nil)
		s.store.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(sentinel.ErrVersionMismatch)

		_, err := s.service.UploadDocument(s.ctx(), s.student, DocumentRequest{
			ApplicationID: app.ID,
			Type:          "transcript",
			BlobReference: "blob://transcript",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("application vanishing before commit is NotFound", func() {
		app := s.submittedApplication()
		s.store.EXPECT().FindByID(gomock.Any(), app.ID).Return(app, nil)
		s.courses.EXPECT().RequiredDocumentTypes(gomock.Any(), s.courseID).Return([]string{"transcript", "identity_proof"}, nil)
		s.store.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(sentinel.ErrNotFound)

		_, err := s.service.UploadDocument(s.ctx(), s.student, DocumentRequest{
			ApplicationID: app.ID,
			Type:          "transcript",
			BlobReference: "blob://transcript",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *StoreFailureSuite) TestConfirmPayment() {
	s.Run("settlement lookup failure surfaces as Internal", func() {
		paymentID := id.NewPaymentID()
		s.store.EXPECT().FindByPaymentID(gomock.Any(), paymentID).Return(nil, errors.New("connection reset"))

		_, err := s.service.ConfirmPayment(s.ctx(), paymentID, SettlementResult{
			TransactionID: "txn-1",
			Succeeded:     true,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
