package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"admissio/internal/admission/models"
	"admissio/internal/admission/service"
	admissionstore "admissio/internal/admission/store"
	"admissio/internal/course"
	coursestore "admissio/internal/course/store"
	"admissio/internal/jwttoken"
	"admissio/internal/platform/middleware"
	"admissio/internal/policy"
	id "admissio/pkg/domain"
)

const testGatewaySecret = "test-gateway-secret"

type admissionFixture struct {
	router  chi.Router
	tokens  *jwttoken.Service
	courses *course.Service
}

func newAdmissionFixture(t *testing.T) *admissionFixture {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	tokens := jwttoken.NewService("test-signing-key-at-least-32-bytes!", "admissio", "admissio-api", time.Hour)
	courses := course.NewService(coursestore.NewInMemory())
	svc := service.New(admissionstore.NewInMemory(), courses)
	h := New(svc, testGatewaySecret, logger)

	router := chi.NewRouter()
	h.RegisterGateway(router)
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens, logger))
		r.Use(policy.Middleware())
		h.Register(r)
	})
	return &admissionFixture{router: router, tokens: tokens, courses: courses}
}

func (f *admissionFixture) token(t *testing.T, role id.Role) string {
	t.Helper()
	token, err := f.tokens.GenerateToken(id.Identity{PrincipalID: id.NewPrincipalID(), Role: role}, time.Now())
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

func (f *admissionFixture) createCourse(t *testing.T, name string, docs []string) *course.Course {
	t.Helper()
	created, err := f.courses.Create(t.Context(), course.CreateRequest{
		Name:                  name,
		Department:            "Physics",
		DurationDays:          365,
		RequiredDocumentTypes: docs,
	})
	if err != nil {
		t.Fatalf("failed to create course: %v", err)
	}
	return created
}

func (f *admissionFixture) sendJSON(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *admissionFixture) confirm(t *testing.T, paymentID, secret string, succeeded bool) *httptest.ResponseRecorder {
	t.Helper()
	payload := map[string]any{"transaction_id": "txn-77", "succeeded": succeeded}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPut, "/payments/"+paymentID+"/confirm", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Gateway-Secret", secret)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *admissionFixture) submit(t *testing.T, token, courseID string) *models.Application {
	t.Helper()
	rec := f.sendJSON(t, http.MethodPost, "/applications", token, map[string]any{
		"course_id":  courseID,
		"address":    "12 College Road",
		"percentage": 91.5,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 submitting application, got %d: %s", rec.Code, rec.Body.String())
	}
	return decodeApplication(t, rec)
}

func decodeApplication(t *testing.T, rec *httptest.ResponseRecorder) *models.Application {
	t.Helper()
	var app models.Application
	if err := json.NewDecoder(rec.Body).Decode(&app); err != nil {
		t.Fatalf("failed to decode application: %v", err)
	}
	return &app
}

func decodeErrorKind(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Kind
}

func TestApplicationLifecycleOverHTTP(t *testing.T) {
	f := newAdmissionFixture(t)
	created := f.createCourse(t, "Astrophysics", []string{"transcript", "identity_proof"})
	student := f.token(t, id.RoleStudent)
	officer := f.token(t, id.RoleOfficer)

	app := f.submit(t, student, created.ID.String())
	if app.State != models.StateSubmitted {
		t.Fatalf("expected Submitted after POST /applications, got %s", app.State)
	}

	for _, docType := range []string{"transcript", "identity_proof"} {
		rec := f.sendJSON(t, http.MethodPost, "/documents", student, map[string]any{
			"application_id": app.ID.String(),
			"type":           docType,
			"blob_reference": fmt.Sprintf("s3://docs/%s.pdf", docType),
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 uploading %s, got %d: %s", docType, rec.Code, rec.Body.String())
		}
		app = decodeApplication(t, rec)
	}
	if app.State != models.StateDocumentsComplete {
		t.Fatalf("expected DocumentsComplete after the checklist, got %s", app.State)
	}

	rec := f.sendJSON(t, http.MethodPost, "/payments", student, map[string]any{
		"application_id": app.ID.String(),
		"method":         "card",
		"fee_cents":      50000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 recording payment, got %d: %s", rec.Code, rec.Body.String())
	}
	app = decodeApplication(t, rec)
	if app.Payment == nil {
		t.Fatal("expected a payment on the application")
	}

	rec = f.confirm(t, app.Payment.ID.String(), testGatewaySecret, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 confirming payment, got %d: %s", rec.Code, rec.Body.String())
	}
	app = decodeApplication(t, rec)
	if app.State != models.StateUnderReview {
		t.Fatalf("expected UnderReview after settlement, got %s", app.State)
	}

	rec = f.sendJSON(t, http.MethodPut, "/applications/"+app.ID.String()+"/decision", officer, map[string]any{
		"decision": "Approved",
		"review":   "complete file, strong academics",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 deciding, got %d: %s", rec.Code, rec.Body.String())
	}
	app = decodeApplication(t, rec)
	if app.State != models.StateApproved {
		t.Fatalf("expected Approved, got %s", app.State)
	}
	if app.Review == nil || app.Status == nil {
		t.Fatal("expected exactly one review record and one status on the decided application")
	}
}

func TestSubmitValidation(t *testing.T) {
	f := newAdmissionFixture(t)
	created := f.createCourse(t, "Chemistry", nil)
	student := f.token(t, id.RoleStudent)

	t.Run("unknown course is a validation error", func(t *testing.T) {
		rec := f.sendJSON(t, http.MethodPost, "/applications", student, map[string]any{
			"course_id":  id.NewCourseID().String(),
			"address":    "12 College Road",
			"percentage": 80,
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		if kind := decodeErrorKind(t, rec); kind != "ValidationError" {
			t.Fatalf("expected ValidationError, got %q", kind)
		}
	})

	t.Run("missing address is a validation error", func(t *testing.T) {
		rec := f.sendJSON(t, http.MethodPost, "/applications", student, map[string]any{
			"course_id":  created.ID.String(),
			"percentage": 80,
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("officer cannot submit", func(t *testing.T) {
		rec := f.sendJSON(t, http.MethodPost, "/applications", f.token(t, id.RoleOfficer), map[string]any{
			"course_id":  created.ID.String(),
			"address":    "officer lane",
			"percentage": 80,
		})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("anonymous request is rejected", func(t *testing.T) {
		rec := f.sendJSON(t, http.MethodPost, "/applications", "", map[string]any{
			"course_id":  created.ID.String(),
			"address":    "12 College Road",
			"percentage": 80,
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestOwnershipOverHTTP(t *testing.T) {
	f := newAdmissionFixture(t)
	created := f.createCourse(t, "History", []string{"transcript"})
	owner := f.token(t, id.RoleStudent)
	other := f.token(t, id.RoleStudent)
	officer := f.token(t, id.RoleOfficer)

	app := f.submit(t, owner, created.ID.String())

	t.Run("another student cannot read the application", func(t *testing.T) {
		rec := f.sendJSON(t, http.MethodGet, "/applications/"+app.ID.String(), other, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for a non-owner read, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("another student cannot upload documents", func(t *testing.T) {
		rec := f.sendJSON(t, http.MethodPost, "/documents", other, map[string]any{
			"application_id": app.ID.String(),
			"type":           "transcript",
			"blob_reference": "s3://docs/fake.pdf",
		})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for a non-owner write, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("officer reads any application", func(t *testing.T) {
		rec := f.sendJSON(t, http.MethodGet, "/applications/"+app.ID.String(), officer, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for an officer read, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("student list only contains owned applications", func(t *testing.T) {
		rec := f.sendJSON(t, http.MethodGet, "/applications", other, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var apps []*models.Application
		if err := json.NewDecoder(rec.Body).Decode(&apps); err != nil {
			t.Fatalf("failed to decode list: %v", err)
		}
		if len(apps) != 0 {
			t.Fatalf("expected an empty list for the other student, got %d", len(apps))
		}
	})
}

func TestGatewayConfirm(t *testing.T) {
	f := newAdmissionFixture(t)
	created := f.createCourse(t, "Botany", []string{"transcript"})
	student := f.token(t, id.RoleStudent)

	app := f.submit(t, student, created.ID.String())
	rec := f.sendJSON(t, http.MethodPost, "/documents", student, map[string]any{
		"application_id": app.ID.String(),
		"type":           "transcript",
		"blob_reference": "s3://docs/transcript.pdf",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 uploading, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = f.sendJSON(t, http.MethodPost, "/payments", student, map[string]any{
		"application_id": app.ID.String(),
		"method":         "upi",
		"fee_cents":      50000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 recording payment, got %d: %s", rec.Code, rec.Body.String())
	}
	app = decodeApplication(t, rec)

	t.Run("missing secret is rejected", func(t *testing.T) {
		rec := f.confirm(t, app.Payment.ID.String(), "", true)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without the secret, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		rec := f.confirm(t, app.Payment.ID.String(), "not-the-secret", true)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 with the wrong secret, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown payment is NotFound", func(t *testing.T) {
		rec := f.confirm(t, id.NewPaymentID().String(), testGatewaySecret, true)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for an unknown payment, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("failed settlement keeps the application payable", func(t *testing.T) {
		rec := f.confirm(t, app.Payment.ID.String(), testGatewaySecret, false)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for a failed settlement, got %d: %s", rec.Code, rec.Body.String())
		}
		confirmed := decodeApplication(t, rec)
		if confirmed.State != models.StatePaymentPending {
			t.Fatalf("expected PaymentPending after a failed settlement, got %s", confirmed.State)
		}
		if confirmed.Payment.Status != models.PaymentFailed {
			t.Fatalf("expected a Failed payment, got %s", confirmed.Payment.Status)
		}
	})
}

func TestDecisionErrorsOverHTTP(t *testing.T) {
	f := newAdmissionFixture(t)
	created := f.createCourse(t, "Geology", []string{"transcript"})
	student := f.token(t, id.RoleStudent)
	officer := f.token(t, id.RoleOfficer)

	app := f.submit(t, student, created.ID.String())

	t.Run("student cannot decide", func(t *testing.T) {
		rec := f.sendJSON(t, http.MethodPut, "/applications/"+app.ID.String()+"/decision", student, map[string]any{
			"decision": "Approved",
			"review":   "self approval",
		})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("deciding before review is InvalidTransition", func(t *testing.T) {
		rec := f.sendJSON(t, http.MethodPut, "/applications/"+app.ID.String()+"/decision", officer, map[string]any{
			"decision": "Approved",
			"review":   "premature",
		})
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
		}
		if kind := decodeErrorKind(t, rec); kind != "InvalidTransition" {
			t.Fatalf("expected InvalidTransition, got %q", kind)
		}
	})

	t.Run("unknown application is NotFound", func(t *testing.T) {
		rec := f.sendJSON(t, http.MethodPut, "/applications/"+id.NewApplicationID().String()+"/decision", officer, map[string]any{
			"decision": "Approved",
			"review":   "ghost",
		})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}
