package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"admissio/internal/course"
	"admissio/internal/policy"
	id "admissio/pkg/domain"
	"admissio/pkg/platform/httputil"
)

// Handler wires course endpoints to the course service.
type Handler struct {
	service *course.Service
	logger  *slog.Logger
}

func New(service *course.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts course endpoints. Reads are open to any authenticated
// identity; writes are officer only.
func (h *Handler) Register(r chi.Router) {
	r.Get("/courses", h.HandleList)
	r.Get("/courses/{courseID}", h.HandleGet)

	r.Group(func(r chi.Router) {
		r.Use(policy.RequireRole(id.RoleOfficer))
		r.Post("/courses", h.HandleCreate)
		r.Put("/courses/{courseID}", h.HandleUpdate)
		r.Delete("/courses/{courseID}", h.HandleDelete)
	})
}

// HandleCreate handles POST /courses.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[CourseRequest](w, r, h.logger)
	if !ok {
		return
	}

	created, err := h.service.Create(ctx, req.ToCreateRequest())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

// HandleList handles GET /courses.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if courses == nil {
		courses = []*course.Course{}
	}
	httputil.WriteJSON(w, http.StatusOK, courses)
}

// HandleGet handles GET /courses/{courseID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	courseID, err := id.ParseCourseID(chi.URLParam(r, "courseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	found, err := h.service.Get(r.Context(), courseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, found)
}

// HandleUpdate handles PUT /courses/{courseID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	courseID, err := id.ParseCourseID(chi.URLParam(r, "courseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.Decode[CourseRequest](w, r, h.logger)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), courseID, req.ToCreateRequest())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /courses/{courseID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	courseID, err := id.ParseCourseID(chi.URLParam(r, "courseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), courseID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
