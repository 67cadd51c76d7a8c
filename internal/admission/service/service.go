//go:generate mockgen -source=service.go -destination=../mocks/mocks.go -package=mocks Store,CourseDirectory,AuditPublisher

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"admissio/internal/admission/metrics"
	"admissio/internal/admission/models"
	"admissio/internal/audit"
	"admissio/internal/policy"
	id "admissio/pkg/domain"
	dErrors "admissio/pkg/domain-errors"
	"admissio/pkg/platform/sentinel"
	"admissio/pkg/requestcontext"
)

// Store is the aggregate's single consistency boundary. Update commits the
// whole aggregate only when the stored version equals expectedVersion.
type Store interface {
	Create(ctx context.Context, app *models.Application) error
	Update(ctx context.Context, app *models.Application, expectedVersion int64) error
	FindByID(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error)
	FindByPaymentID(ctx context.Context, paymentID id.PaymentID) (*models.Application, error)
	FindByStudent(ctx context.Context, studentID id.PrincipalID) ([]*models.Application, error)
	FindAll(ctx context.Context) ([]*models.Application, error)
}

// CourseDirectory answers course existence and the document checklist.
type CourseDirectory interface {
	RequiredDocumentTypes(ctx context.Context, courseID id.CourseID) ([]string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service drives the application lifecycle. All transition legality lives on
// the model; this layer adds authorization, persistence and observability.
type Service struct {
	store   Store
	courses CourseDirectory

	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor AuditPublisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditor = publisher }
}

func New(store Store, courses CourseDirectory, opts ...Option) *Service {
	s := &Service{
		store:   store,
		courses: courses,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitRequest carries the validated application input.
type SubmitRequest struct {
	CourseID   id.CourseID
	Address    string
	Percentage float64
}

// Submit creates the application and applies Draft to Submitted in one
// commit, so a stored application is never observable in Draft.
func (s *Service) Submit(ctx context.Context, identity id.Identity, req SubmitRequest) (*models.Application, error) {
	if identity.Role != id.RoleStudent {
		return nil, dErrors.New(dErrors.CodeForbidden, "only students submit applications")
	}

	// Unknown course references fail validation before the aggregate exists.
	required, err := s.courses.RequiredDocumentTypes(ctx, req.CourseID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "course does not exist")
		}
		return nil, err
	}
	// An empty checklist would strand the application in Submitted: document
	// completeness is only re-checked on upload, and no upload is accepted.
	if len(required) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "course has no document checklist")
	}

	now := requestcontext.Now(ctx)
	app, err := models.NewApplication(id.NewApplicationID(), identity.PrincipalID, req.CourseID, req.Address, req.Percentage, now)
	if err != nil {
		return nil, err
	}
	app.ApplySubmit(now)

	if err := s.store.Create(ctx, app); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create application")
	}

	s.metrics.IncrementTransitions(string(models.StateSubmitted))
	s.emit(ctx, audit.Event{
		Category:    audit.CategoryCompliance,
		PrincipalID: identity.PrincipalID,
		Action:      audit.ActionApplicationSubmitted,
		Subject:     app.ID.String(),
	})
	s.logger.InfoContext(ctx, "application submitted",
		"application_id", app.ID,
		"course_id", app.CourseID,
	)
	return app, nil
}

// DocumentRequest carries a validated document upload.
type DocumentRequest struct {
	ApplicationID id.ApplicationID
	Type          string
	BlobReference string
}

// UploadDocument appends a document to an owned application. When the last
// required type arrives the same commit advances to DocumentsComplete.
func (s *Service) UploadDocument(ctx context.Context, identity id.Identity, req DocumentRequest) (*models.Application, error) {
	app, err := s.ownedForWrite(ctx, identity, req.ApplicationID)
	if err != nil {
		return nil, err
	}

	required, err := s.courses.RequiredDocumentTypes(ctx, app.CourseID)
	if err != nil {
		return nil, err
	}

	docType := strings.ToLower(strings.TrimSpace(req.Type))
	doc := models.Document{
		ID:            id.NewDocumentID(),
		ApplicationID: app.ID,
		Type:          docType,
		BlobReference: req.BlobReference,
		UploadedAt:    requestcontext.Now(ctx),
	}

	expectedVersion := app.Version
	if err := app.AttachDocument(doc, required, doc.UploadedAt); err != nil {
		s.observeRejection(err)
		return nil, err
	}
	if err := s.commit(ctx, app, expectedVersion); err != nil {
		return nil, err
	}

	s.metrics.IncrementTransitions(string(app.State))
	s.emit(ctx, audit.Event{
		Category:    audit.CategoryCompliance,
		PrincipalID: identity.PrincipalID,
		Action:      audit.ActionDocumentUploaded,
		Subject:     app.ID.String(),
		Reason:      docType,
	})
	if app.State == models.StateDocumentsComplete {
		s.emit(ctx, audit.Event{
			Category:    audit.CategoryCompliance,
			PrincipalID: identity.PrincipalID,
			Action:      audit.ActionDocumentsComplete,
			Subject:     app.ID.String(),
		})
	}
	return app, nil
}

// PaymentRequest carries a validated fee payment.
type PaymentRequest struct {
	ApplicationID id.ApplicationID
	Method        string
	FeeCents      int64
}

// RecordPayment records the admission fee and moves to PaymentPending.
func (s *Service) RecordPayment(ctx context.Context, identity id.Identity, req PaymentRequest) (*models.Application, error) {
	app, err := s.ownedForWrite(ctx, identity, req.ApplicationID)
	if err != nil {
		return nil, err
	}

	payment := models.Payment{
		ID:            id.NewPaymentID(),
		ApplicationID: app.ID,
		Method:        strings.TrimSpace(req.Method),
		FeeCents:      req.FeeCents,
		RecordedAt:    requestcontext.Now(ctx),
	}

	expectedVersion := app.Version
	if err := app.RecordPayment(payment, payment.RecordedAt); err != nil {
		s.observeRejection(err)
		return nil, err
	}
	if err := s.commit(ctx, app, expectedVersion); err != nil {
		return nil, err
	}

	s.metrics.IncrementTransitions(string(app.State))
	s.emit(ctx, audit.Event{
		Category:    audit.CategoryCompliance,
		PrincipalID: identity.PrincipalID,
		Action:      audit.ActionPaymentRecorded,
		Subject:     app.ID.String(),
	})
	return app, nil
}

// SettlementResult is what the payment gateway reports back.
type SettlementResult struct {
	TransactionID string
	Succeeded     bool
}

// ConfirmPayment applies the gateway settlement, addressed by the payment the
// gateway knows. Success moves to UnderReview; failure marks the payment
// Failed and keeps the state so the student can pay again. The caller has
// already authenticated the gateway.
func (s *Service) ConfirmPayment(ctx context.Context, paymentID id.PaymentID, result SettlementResult) (*models.Application, error) {
	app, err := s.store.FindByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "payment not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "payment lookup failed")
	}

	if err := app.CanSettlePayment(); err != nil {
		s.observeRejection(err)
		return nil, err
	}

	now := requestcontext.Now(ctx)
	expectedVersion := app.Version
	action := audit.ActionPaymentConfirmed
	if result.Succeeded {
		app.ApplyConfirmPayment(result.TransactionID, now)
	} else {
		app.ApplyFailPayment(result.TransactionID, now)
		action = audit.ActionPaymentFailed
	}
	if err := s.commit(ctx, app, expectedVersion); err != nil {
		return nil, err
	}

	s.metrics.IncrementTransitions(string(app.State))
	s.emit(ctx, audit.Event{
		Category:    audit.CategoryOperations,
		PrincipalID: app.StudentID,
		Action:      action,
		Subject:     app.ID.String(),
		Reason:      result.TransactionID,
	})
	return app, nil
}

// DecisionRequest carries the officer's decision.
type DecisionRequest struct {
	ApplicationID id.ApplicationID
	Decision      models.State
	Review        string
}

// Decide writes the review record, the decision status and the terminal
// state in one commit. Two racing decisions on the same version: exactly one
// commits, the other observes Conflict.
func (s *Service) Decide(ctx context.Context, identity id.Identity, req DecisionRequest) (*models.Application, error) {
	if identity.Role != id.RoleOfficer {
		return nil, dErrors.New(dErrors.CodeForbidden, "only officers decide applications")
	}

	app, err := s.load(ctx, req.ApplicationID)
	if err != nil {
		return nil, err
	}

	expectedVersion := app.Version
	if err := app.Decide(identity.PrincipalID, req.Decision, req.Review, requestcontext.Now(ctx)); err != nil {
		s.observeRejection(err)
		return nil, err
	}
	if err := s.commit(ctx, app, expectedVersion); err != nil {
		return nil, err
	}

	s.metrics.IncrementTransitions(string(app.State))
	s.emit(ctx, audit.Event{
		Category:    audit.CategoryCompliance,
		PrincipalID: identity.PrincipalID,
		Action:      audit.ActionApplicationDecided,
		Subject:     app.ID.String(),
		Reason:      string(req.Decision),
	})
	s.logger.InfoContext(ctx, "application decided",
		"application_id", app.ID,
		"decision", req.Decision,
	)
	return app, nil
}

// GetByID returns an application the identity may see. Applications outside
// a student's ownership are indistinguishable from missing ones.
func (s *Service) GetByID(ctx context.Context, identity id.Identity, applicationID id.ApplicationID) (*models.Application, error) {
	app, err := s.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeOwnership(identity, app); err != nil {
		s.auditOwnershipDenied(ctx, identity, applicationID)
		return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	return app, nil
}

// List returns the applications visible to the identity: a student's own, or
// everything for an officer.
func (s *Service) List(ctx context.Context, identity id.Identity) ([]*models.Application, error) {
	var apps []*models.Application
	var err error
	switch identity.Role {
	case id.RoleOfficer:
		apps, err = s.store.FindAll(ctx)
	case id.RoleStudent:
		apps, err = s.store.FindByStudent(ctx, identity.PrincipalID)
	default:
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "application listing failed")
	}
	return apps, nil
}

func (s *Service) load(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	app, err := s.store.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "application lookup failed")
	}
	return app, nil
}

// ownedForWrite loads an application for a student mutation. Non-owner
// students get Forbidden; the aggregate stays untouched.
func (s *Service) ownedForWrite(ctx context.Context, identity id.Identity, applicationID id.ApplicationID) (*models.Application, error) {
	if identity.Role != id.RoleStudent {
		return nil, dErrors.New(dErrors.CodeForbidden, "access denied")
	}
	app, err := s.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeOwnership(identity, app); err != nil {
		s.auditOwnershipDenied(ctx, identity, applicationID)
		return nil, err
	}
	return app, nil
}

// commit persists an already-applied transition, translating the store's
// sentinel errors into the caller-facing taxonomy.
func (s *Service) commit(ctx context.Context, app *models.Application, expectedVersion int64) error {
	if err := s.store.Update(ctx, app, expectedVersion); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrVersionMismatch):
			s.metrics.IncrementConflicts()
			return dErrors.Newf(dErrors.CodeConflict, "application changed concurrently, expected version %d", expectedVersion)
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.New(dErrors.CodeNotFound, "application not found")
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit transition")
		}
	}
	return nil
}

func (s *Service) observeRejection(err error) {
	if dErrors.HasCode(err, dErrors.CodeInvalidTransition) {
		s.metrics.IncrementInvalidTransitions()
	}
}

func (s *Service) auditOwnershipDenied(ctx context.Context, identity id.Identity, applicationID id.ApplicationID) {
	s.emit(ctx, audit.Event{
		Category:    audit.CategorySecurity,
		PrincipalID: identity.PrincipalID,
		Action:      audit.ActionOwnershipDenied,
		Subject:     applicationID.String(),
	})
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}
