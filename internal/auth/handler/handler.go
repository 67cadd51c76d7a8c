package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"admissio/internal/auth/models"
	"admissio/internal/auth/service"
	id "admissio/pkg/domain"
	dErrors "admissio/pkg/domain-errors"
	"admissio/pkg/platform/httputil"
	"admissio/pkg/requestcontext"
)

// Service defines the credential operations the handler depends on.
type Service interface {
	Register(ctx context.Context, req service.RegisterRequest) (id.PrincipalID, error)
	Login(ctx context.Context, email, password string, expectedRole id.Role) (service.LoginResult, error)
	ChangePassword(ctx context.Context, identity id.Identity, current, next string) error
	Profile(ctx context.Context, identity id.Identity) (*models.Principal, error)
	UpdateProfile(ctx context.Context, identity id.Identity, profile models.Profile) (*models.Principal, error)
}

// Handler wires registration, login and profile endpoints to the auth service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the endpoints that require no token.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/student/register", h.handleRegister(id.RoleStudent))
	r.Post("/auth/officer/register", h.handleRegister(id.RoleOfficer))
	r.Post("/auth/student/login", h.handleLogin(id.RoleStudent))
	r.Post("/auth/officer/login", h.handleLogin(id.RoleOfficer))
}

// RegisterProtected mounts the endpoints that run behind token auth.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Put("/auth/password", h.HandleChangePassword)
	r.Get("/students/me", h.HandleProfile)
	r.Put("/students/me", h.HandleUpdateProfile)
	r.Get("/officers/me", h.HandleProfile)
}

func (h *Handler) handleRegister(role id.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		req, ok := httputil.Decode[RegisterRequest](w, r, h.logger)
		if !ok {
			return
		}

		principalID, err := h.service.Register(ctx, service.RegisterRequest{
			Email:    req.Email,
			Password: req.Password,
			Role:     role,
			Profile:  req.Profile(),
		})
		if err != nil {
			h.logger.WarnContext(ctx, "registration failed",
				"request_id", requestcontext.RequestID(ctx),
				"role", role,
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, RegisterResponse{ID: principalID.String()})
	}
}

func (h *Handler) handleLogin(role id.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		req, ok := httputil.Decode[LoginRequest](w, r, h.logger)
		if !ok {
			return
		}

		result, err := h.service.Login(ctx, req.Email, req.Password, role)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, LoginResponse{
			Token:       result.Token,
			PrincipalID: result.Identity.PrincipalID.String(),
			Role:        string(result.Identity.Role),
		})
	}
}

// HandleChangePassword handles PUT /auth/password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity := requestcontext.Identity(ctx)
	if identity.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.Decode[ChangePasswordRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.ChangePassword(ctx, identity, req.CurrentPassword, req.NewPassword); err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleProfile handles GET /students/me and GET /officers/me.
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity := requestcontext.Identity(ctx)
	if identity.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	principal, err := h.service.Profile(ctx, identity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromPrincipal(principal))
}

// HandleUpdateProfile handles PUT /students/me.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity := requestcontext.Identity(ctx)
	if identity.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.Decode[UpdateProfileRequest](w, r, h.logger)
	if !ok {
		return
	}

	principal, err := h.service.UpdateProfile(ctx, identity, req.Profile())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromPrincipal(principal))
}
