// Package records fronts the flat record-keeping backends. Each backend is a
// set of named collections holding opaque JSON documents; there are no
// cross-record invariants and no state transitions, so the whole surface is
// save, find and delete.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"time"

	id "admissio/pkg/domain"
	dErrors "admissio/pkg/domain-errors"
	"admissio/pkg/platform/sentinel"
	"admissio/pkg/requestcontext"
)

// Backends registered with the facade. Anything else is not proxied.
var Backends = []string{"budget", "grocery", "library", "patient"}

var collectionName = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// Record is an opaque document inside one backend collection.
type Record struct {
	ID        id.RecordID     `json:"id"`
	Body      json.RawMessage `json:"body"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Store persists records keyed by a fully qualified collection name.
type Store interface {
	Save(ctx context.Context, collection string, rec *Record) error
	FindByID(ctx context.Context, collection string, recordID id.RecordID) (*Record, error)
	FindAll(ctx context.Context, collection string) ([]*Record, error)
	DeleteByID(ctx context.Context, collection string, recordID id.RecordID) error
}

type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
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

// Save stores a new document and returns it with its assigned id.
func (s *Service) Save(ctx context.Context, backend, collection string, body json.RawMessage) (*Record, error) {
	scope, err := qualify(backend, collection)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || !json.Valid(body) {
		return nil, dErrors.New(dErrors.CodeValidation, "body must be a JSON document")
	}

	now := requestcontext.Now(ctx)
	rec := &Record{
		ID:        id.NewRecordID(),
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, scope, rec); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save record")
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, backend, collection string, recordID id.RecordID) (*Record, error) {
	scope, err := qualify(backend, collection)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.FindByID(ctx, scope, recordID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "record not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load record")
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, backend, collection string) ([]*Record, error) {
	scope, err := qualify(backend, collection)
	if err != nil {
		return nil, err
	}
	recs, err := s.store.FindAll(ctx, scope)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list records")
	}
	return recs, nil
}

func (s *Service) Delete(ctx context.Context, backend, collection string, recordID id.RecordID) error {
	scope, err := qualify(backend, collection)
	if err != nil {
		return err
	}
	if err := s.store.DeleteByID(ctx, scope, recordID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "record not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete record")
	}
	return nil
}

// qualify validates both path segments and joins them into the store key, so
// one backend's collections never collide with another's.
func qualify(backend, collection string) (string, error) {
	if !registered(backend) {
		return "", dErrors.Newf(dErrors.CodeNotFound, "unknown backend %q", backend)
	}
	if !collectionName.MatchString(collection) {
		return "", dErrors.New(dErrors.CodeValidation, "collection name must be lowercase alphanumeric")
	}
	return backend + "/" + collection, nil
}

func registered(backend string) bool {
	for _, known := range Backends {
		if known == backend {
			return true
		}
	}
	return false
}
