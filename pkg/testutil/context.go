package testutil

import (
	"net/http"

	id "admissio/pkg/domain"
	"admissio/pkg/requestcontext"
)

// WithIdentity attaches a resolved identity to the request context, the way
// the auth middleware would for an authenticated request.
func WithIdentity(req *http.Request, identity id.Identity) *http.Request {
	return req.WithContext(requestcontext.WithIdentity(req.Context(), identity))
}

// AsStudent attaches a fresh student identity and returns it alongside the
// request so tests can assert on ownership.
func AsStudent(req *http.Request) (*http.Request, id.Identity) {
	identity := id.Identity{PrincipalID: id.NewPrincipalID(), Role: id.RoleStudent}
	return WithIdentity(req, identity), identity
}

// AsOfficer attaches a fresh officer identity.
func AsOfficer(req *http.Request) (*http.Request, id.Identity) {
	identity := id.Identity{PrincipalID: id.NewPrincipalID(), Role: id.RoleOfficer}
	return WithIdentity(req, identity), identity
}
