package handler

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"admissio/internal/admission/models"
	"admissio/internal/admission/service"
	"admissio/internal/policy"
	id "admissio/pkg/domain"
	dErrors "admissio/pkg/domain-errors"
	"admissio/pkg/platform/httputil"
	"admissio/pkg/requestcontext"
)

// gatewaySecretHeader carries the shared secret on the settlement callback.
const gatewaySecretHeader = "X-Gateway-Secret"

// Service is the application lifecycle surface the handler depends on.
type Service interface {
	Submit(ctx context.Context, identity id.Identity, req service.SubmitRequest) (*models.Application, error)
	UploadDocument(ctx context.Context, identity id.Identity, req service.DocumentRequest) (*models.Application, error)
	RecordPayment(ctx context.Context, identity id.Identity, req service.PaymentRequest) (*models.Application, error)
	ConfirmPayment(ctx context.Context, paymentID id.PaymentID, result service.SettlementResult) (*models.Application, error)
	Decide(ctx context.Context, identity id.Identity, req service.DecisionRequest) (*models.Application, error)
	GetByID(ctx context.Context, identity id.Identity, applicationID id.ApplicationID) (*models.Application, error)
	List(ctx context.Context, identity id.Identity) ([]*models.Application, error)
}

// Handler wires the admission endpoints to the lifecycle service.
type Handler struct {
	service       Service
	gatewaySecret string
	logger        *slog.Logger
}

func New(service Service, gatewaySecret string, logger *slog.Logger) *Handler {
	return &Handler{service: service, gatewaySecret: gatewaySecret, logger: logger}
}

// Register mounts the authenticated admission endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/applications", h.HandleSubmit)
	r.Get("/applications", h.HandleList)
	r.Get("/applications/{applicationID}", h.HandleGet)
	r.Post("/documents", h.HandleUploadDocument)
	r.Post("/payments", h.HandleRecordPayment)

	r.Group(func(r chi.Router) {
		r.Use(policy.RequireRole(id.RoleOfficer))
		r.Put("/applications/{applicationID}/decision", h.HandleDecide)
	})
}

// RegisterGateway mounts the settlement callback. It is not behind token
// auth; the shared secret header authenticates the payment gateway.
func (h *Handler) RegisterGateway(r chi.Router) {
	r.Put("/payments/{paymentID}/confirm", h.HandleConfirmPayment)
}

// HandleSubmit handles POST /applications.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := h.authenticated(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.Decode[SubmitRequest](w, r, h.logger)
	if !ok {
		return
	}

	app, err := h.service.Submit(ctx, identity, req.ToServiceRequest())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, app)
}

// HandleList handles GET /applications. The service filters by role, so a
// student only ever sees their own applications.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := h.authenticated(w, ctx)
	if !ok {
		return
	}

	apps, err := h.service.List(ctx, identity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if apps == nil {
		apps = []*models.Application{}
	}
	httputil.WriteJSON(w, http.StatusOK, apps)
}

// HandleGet handles GET /applications/{applicationID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := h.authenticated(w, ctx)
	if !ok {
		return
	}
	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.GetByID(ctx, identity, applicationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

// HandleUploadDocument handles POST /documents.
func (h *Handler) HandleUploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := h.authenticated(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.Decode[DocumentRequest](w, r, h.logger)
	if !ok {
		return
	}

	app, err := h.service.UploadDocument(ctx, identity, req.ToServiceRequest())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, app)
}

// HandleRecordPayment handles POST /payments.
func (h *Handler) HandleRecordPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := h.authenticated(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.Decode[PaymentRequest](w, r, h.logger)
	if !ok {
		return
	}

	app, err := h.service.RecordPayment(ctx, identity, req.ToServiceRequest())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, app)
}

// HandleConfirmPayment handles PUT /payments/{paymentID}/confirm.
func (h *Handler) HandleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.gatewayAuthenticated(r) {
		h.logger.WarnContext(ctx, "rejected settlement callback with bad gateway secret")
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "gateway authentication required"))
		return
	}
	paymentID, err := id.ParsePaymentID(chi.URLParam(r, "paymentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[ConfirmRequest](w, r, h.logger)
	if !ok {
		return
	}

	app, err := h.service.ConfirmPayment(ctx, paymentID, req.ToSettlementResult())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

// HandleDecide handles PUT /applications/{applicationID}/decision.
func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := h.authenticated(w, ctx)
	if !ok {
		return
	}
	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[DecisionRequest](w, r, h.logger)
	if !ok {
		return
	}

	app, err := h.service.Decide(ctx, identity, service.DecisionRequest{
		ApplicationID: applicationID,
		Decision:      models.State(req.Decision),
		Review:        req.Review,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) authenticated(w http.ResponseWriter, ctx context.Context) (id.Identity, bool) {
	identity := requestcontext.Identity(ctx)
	if identity.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.Identity{}, false
	}
	return identity, true
}

// gatewayAuthenticated compares the shared secret in constant time. An empty
// configured secret rejects everything rather than accepting everything.
func (h *Handler) gatewayAuthenticated(r *http.Request) bool {
	if h.gatewaySecret == "" {
		return false
	}
	presented := r.Header.Get(gatewaySecretHeader)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(h.gatewaySecret)) == 1
}
