// Package httputil centralizes JSON encoding and domain error translation for
// HTTP handlers, ensuring a consistent {kind, message} error envelope across
// every endpoint.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "admissio/pkg/domain-errors"
)

// ErrorBody is the wire format for every failed request.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
}

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeValidation:         http.StatusBadRequest,
	dErrors.CodeUnauthorized:       http.StatusUnauthorized,
	dErrors.CodeInvalidCredentials: http.StatusUnauthorized,
	dErrors.CodeForbidden:          http.StatusForbidden,
	dErrors.CodeNotFound:           http.StatusNotFound,
	dErrors.CodeConflict:           http.StatusConflict,
	dErrors.CodeInvalidTransition:  http.StatusConflict,
	dErrors.CodeDuplicateEmail:     http.StatusConflict,
	dErrors.CodeInternal:           http.StatusInternalServerError,
}

// StatusForCode maps a domain error code to its HTTP status.
func StatusForCode(code dErrors.Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError translates a domain error into the {kind, message} envelope.
// Internal errors keep their message out of the response; everything the
// caller can act on (current state, expected version) passes through.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := ErrorBody{Kind: string(code)}
	if code != dErrors.CodeInternal {
		body.Message = dErrors.MessageOf(err)
	}
	WriteJSON(w, StatusForCode(code), body)
}

// Validatable is implemented by request types that normalize and check their
// own fields after decoding.
type Validatable interface {
	Validate() error
}

// Decode parses the JSON body into T and runs its validation. On failure it
// writes the error response and returns ok=false; the handler just returns.
func Decode[T any, PT interface {
	Validatable
	*T
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	req := new(T)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		if logger != nil {
			logger.WarnContext(r.Context(), "malformed request body", "error", err)
		}
		WriteError(w, dErrors.New(dErrors.CodeValidation, "request body must be valid JSON"))
		return nil, false
	}
	if err := PT(req).Validate(); err != nil {
		WriteError(w, err)
		return nil, false
	}
	return req, true
}
