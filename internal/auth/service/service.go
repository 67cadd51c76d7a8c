//go:generate mockgen -source=service.go -destination=../mocks/mocks.go -package=mocks CredentialStore,LockoutStore,AuditPublisher,TokenIssuer

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"admissio/internal/audit"
	"admissio/internal/auth/metrics"
	"admissio/internal/auth/models"
	id "admissio/pkg/domain"
	dErrors "admissio/pkg/domain-errors"
	"admissio/pkg/email"
	"admissio/pkg/platform/sentinel"
	"admissio/pkg/requestcontext"
)

// CredentialStore is the durable mapping from email to credential record.
// A single lookup keyed on email serves both roles.
type CredentialStore interface {
	Create(ctx context.Context, principal *models.Principal) error
	FindByEmail(ctx context.Context, email string) (*models.Principal, error)
	FindByID(ctx context.Context, principalID id.PrincipalID) (*models.Principal, error)
	Update(ctx context.Context, principal *models.Principal) error
}

// LockoutStore counts failed logins per email within a sliding window.
type LockoutStore interface {
	RecordFailure(ctx context.Context, email string, window time.Duration) (int, error)
	Failures(ctx context.Context, email string) (int, error)
	Clear(ctx context.Context, email string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// TokenIssuer signs identity tokens for authenticated principals.
type TokenIssuer interface {
	GenerateToken(identity id.Identity, now time.Time) (string, error)
}

// Service implements registration and login over the credential store.
type Service struct {
	credentials CredentialStore
	lockout     LockoutStore
	tokens      TokenIssuer

	bcryptCost       int
	lockoutThreshold int
	lockoutWindow    time.Duration

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

func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func WithLockout(threshold int, window time.Duration) Option {
	return func(s *Service) {
		s.lockoutThreshold = threshold
		s.lockoutWindow = window
	}
}

func New(credentials CredentialStore, lockout LockoutStore, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		credentials:      credentials,
		lockout:          lockout,
		tokens:           tokens,
		bcryptCost:       bcrypt.DefaultCost,
		lockoutThreshold: 10,
		lockoutWindow:    15 * time.Minute,
		logger:           slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRequest carries the validated registration input.
type RegisterRequest struct {
	Email    string
	Password string
	Role     id.Role
	Profile  models.Profile
}

// Register creates a credential record. The email must be unused across both
// roles; the role is fixed here and immutable afterwards.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (id.PrincipalID, error) {
	if len(req.Password) < 8 {
		return id.PrincipalID{}, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return id.PrincipalID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	if strings.TrimSpace(req.Profile.Name) == "" {
		first, last := email.DeriveNameFromEmail(models.NormalizeEmail(req.Email))
		req.Profile.Name = first + " " + last
	}

	principal, err := models.NewPrincipal(id.NewPrincipalID(), req.Email, hash, req.Role, req.Profile, requestcontext.Now(ctx))
	if err != nil {
		return id.PrincipalID{}, err
	}

	if err := s.credentials.Create(ctx, principal); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return id.PrincipalID{}, dErrors.New(dErrors.CodeDuplicateEmail, "email already registered")
		}
		return id.PrincipalID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create principal")
	}

	s.metrics.IncrementRegistrations(string(req.Role))
	s.emit(ctx, audit.Event{
		Category:    audit.CategoryCompliance,
		PrincipalID: principal.ID,
		Action:      audit.ActionPrincipalRegistered,
		Subject:     string(req.Role),
	})
	s.logger.InfoContext(ctx, "principal registered",
		"principal_id", principal.ID,
		"role", req.Role,
	)
	return principal.ID, nil
}

// LoginResult is what a successful authentication hands back to the caller.
type LoginResult struct {
	Identity id.Identity
	Token    string
}

// Login verifies credentials and issues an identity token. Unknown email,
// wrong password, and wrong role path all collapse into InvalidCredentials so
// the response never leaks which part failed. bcrypt's comparison is
// constant-time over the supplied password.
func (s *Service) Login(ctx context.Context, email, password string, expectedRole id.Role) (LoginResult, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, dErrors.New(dErrors.CodeInvalidCredentials, "invalid email or password")
	}

	if s.locked(ctx, email) {
		s.metrics.IncrementLogins("locked")
		s.emit(ctx, audit.Event{
			Category: audit.CategorySecurity,
			Action:   audit.ActionLoginLocked,
			Subject:  email,
		})
		return LoginResult{}, dErrors.New(dErrors.CodeInvalidCredentials, "invalid email or password")
	}

	principal, err := s.credentials.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return LoginResult{}, s.failLogin(ctx, email, "unknown email")
		}
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "credential lookup failed")
	}

	if bcrypt.CompareHashAndPassword(principal.PasswordHash, []byte(password)) != nil {
		return LoginResult{}, s.failLogin(ctx, email, "password mismatch")
	}
	if principal.Role != expectedRole {
		return LoginResult{}, s.failLogin(ctx, email, "role mismatch")
	}

	if err := s.lockout.Clear(ctx, email); err != nil {
		s.logger.WarnContext(ctx, "failed to clear lockout counter", "error", err)
	}

	identity := principal.Identity()
	token, err := s.tokens.GenerateToken(identity, requestcontext.Now(ctx))
	if err != nil {
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.metrics.IncrementLogins("success")
	s.emit(ctx, audit.Event{
		Category:    audit.CategorySecurity,
		PrincipalID: principal.ID,
		Action:      audit.ActionLoginSucceeded,
	})
	return LoginResult{Identity: identity, Token: token}, nil
}

// ChangePassword re-hashes after verifying the current password. The only
// mutation a credential record supports besides profile fields.
func (s *Service) ChangePassword(ctx context.Context, identity id.Identity, current, next string) error {
	if len(next) < 8 {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}

	principal, err := s.credentials.FindByID(ctx, identity.PrincipalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "principal not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "credential lookup failed")
	}

	if bcrypt.CompareHashAndPassword(principal.PasswordHash, []byte(current)) != nil {
		return dErrors.New(dErrors.CodeInvalidCredentials, "invalid email or password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	principal.ApplyPasswordChange(hash, requestcontext.Now(ctx))
	if err := s.credentials.Update(ctx, principal); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update principal")
	}

	s.emit(ctx, audit.Event{
		Category:    audit.CategorySecurity,
		PrincipalID: principal.ID,
		Action:      audit.ActionPasswordChanged,
	})
	return nil
}

// Profile returns the principal record for the authenticated identity.
func (s *Service) Profile(ctx context.Context, identity id.Identity) (*models.Principal, error) {
	principal, err := s.credentials.FindByID(ctx, identity.PrincipalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "principal not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "credential lookup failed")
	}
	return principal, nil
}

// UpdateProfile updates the mutable profile fields. Email is immutable.
func (s *Service) UpdateProfile(ctx context.Context, identity id.Identity, profile models.Profile) (*models.Principal, error) {
	principal, err := s.Profile(ctx, identity)
	if err != nil {
		return nil, err
	}
	if err := principal.ApplyProfileUpdate(profile, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.credentials.Update(ctx, principal); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update principal")
	}
	return principal, nil
}

func (s *Service) locked(ctx context.Context, email string) bool {
	count, err := s.lockout.Failures(ctx, email)
	if err != nil {
		s.logger.WarnContext(ctx, "lockout lookup failed, allowing attempt", "error", err)
		return false
	}
	return count >= s.lockoutThreshold
}

// failLogin records the failure and returns the single InvalidCredentials
// error. The reason stays in logs and audit, never in the response.
func (s *Service) failLogin(ctx context.Context, email, reason string) error {
	if _, err := s.lockout.RecordFailure(ctx, email, s.lockoutWindow); err != nil {
		s.logger.WarnContext(ctx, "failed to record login failure", "error", err)
	}
	s.metrics.IncrementLogins("invalid")
	s.emit(ctx, audit.Event{
		Category: audit.CategorySecurity,
		Action:   audit.ActionLoginFailed,
		Subject:  email,
		Reason:   reason,
	})
	s.logger.WarnContext(ctx, "login failed", "reason", reason)
	return dErrors.New(dErrors.CodeInvalidCredentials, "invalid email or password")
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}
