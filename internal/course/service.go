package course

import (
	"context"
	"errors"
	"log/slog"

	id "admissio/pkg/domain"
	dErrors "admissio/pkg/domain-errors"
	"admissio/pkg/platform/sentinel"
	"admissio/pkg/requestcontext"
)

// Store is the durable course collection.
type Store interface {
	Create(ctx context.Context, course *Course) error
	FindByID(ctx context.Context, courseID id.CourseID) (*Course, error)
	FindAll(ctx context.Context) ([]*Course, error)
	Update(ctx context.Context, course *Course) error
	Delete(ctx context.Context, courseID id.CourseID) error
}

// Service manages reference courses and answers document checklist lookups.
type Service struct {
	store       Store
	defaultDocs []string
	logger      *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithDefaultDocuments sets the checklist used when a course defines none.
func WithDefaultDocuments(docs []string) Option {
	return func(s *Service) { s.defaultDocs = docs }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest carries the validated course input.
type CreateRequest struct {
	Name                  string
	Department            string
	DurationDays          int
	RequiredDocumentTypes []string
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Course, error) {
	course, err := New(id.NewCourseID(), req.Name, req.Department, req.DurationDays, req.RequiredDocumentTypes, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, course); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return nil, dErrors.New(dErrors.CodeConflict, "course name already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create course")
	}

	s.logger.InfoContext(ctx, "course created", "course_id", course.ID, "name", course.Name)
	return course, nil
}

func (s *Service) Get(ctx context.Context, courseID id.CourseID) (*Course, error) {
	course, err := s.store.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "course not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "course lookup failed")
	}
	return course, nil
}

func (s *Service) List(ctx context.Context) ([]*Course, error) {
	courses, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "course listing failed")
	}
	return courses, nil
}

func (s *Service) Update(ctx context.Context, courseID id.CourseID, req CreateRequest) (*Course, error) {
	course, err := s.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := course.ApplyUpdate(req.Name, req.Department, req.DurationDays, req.RequiredDocumentTypes, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, course); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update course")
	}
	return course, nil
}

func (s *Service) Delete(ctx context.Context, courseID id.CourseID) error {
	if err := s.store.Delete(ctx, courseID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "course not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete course")
	}
	return nil
}

// RequiredDocumentTypes answers the checklist the admission service must see
// completed before an application can advance past document collection.
func (s *Service) RequiredDocumentTypes(ctx context.Context, courseID id.CourseID) ([]string, error) {
	course, err := s.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if len(course.RequiredDocumentTypes) == 0 {
		return s.defaultDocs, nil
	}
	return course.RequiredDocumentTypes, nil
}
