package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"admissio/internal/policy"
	"admissio/internal/records"
	id "admissio/pkg/domain"
	dErrors "admissio/pkg/domain-errors"
	"admissio/pkg/platform/httputil"
)

// maxBodyBytes caps a single record document.
const maxBodyBytes = 1 << 20

// Handler proxies the flat record-keeping backends. Documents pass through
// opaque; only the path segments and JSON well-formedness are checked here.
type Handler struct {
	service *records.Service
	logger  *slog.Logger
}

func New(service *records.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the records facade. The whole subtree is officer only.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(policy.RequireRole(id.RoleOfficer))
		r.Post("/records/{backend}/{collection}", h.HandleSave)
		r.Get("/records/{backend}/{collection}", h.HandleList)
		r.Get("/records/{backend}/{collection}/{recordID}", h.HandleGet)
		r.Delete("/records/{backend}/{collection}/{recordID}", h.HandleDelete)
	})
}

// HandleSave handles POST /records/{backend}/{collection}.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "failed to read request body"))
		return
	}

	rec, err := h.service.Save(r.Context(), chi.URLParam(r, "backend"), chi.URLParam(r, "collection"), body)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

// HandleList handles GET /records/{backend}/{collection}.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.List(r.Context(), chi.URLParam(r, "backend"), chi.URLParam(r, "collection"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if recs == nil {
		recs = []*records.Record{}
	}
	httputil.WriteJSON(w, http.StatusOK, recs)
}

// HandleGet handles GET /records/{backend}/{collection}/{recordID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	recordID, err := id.ParseRecordID(chi.URLParam(r, "recordID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rec, err := h.service.Get(r.Context(), chi.URLParam(r, "backend"), chi.URLParam(r, "collection"), recordID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

// HandleDelete handles DELETE /records/{backend}/{collection}/{recordID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	recordID, err := id.ParseRecordID(chi.URLParam(r, "recordID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "backend"), chi.URLParam(r, "collection"), recordID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
