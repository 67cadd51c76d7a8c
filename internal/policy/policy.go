// Package policy is the single authorization point. Handlers never inspect
// roles themselves; route access comes from the rule table here and
// per-record access from the ownership check.
package policy

import (
	"strings"

	id "admissio/pkg/domain"
	dErrors "admissio/pkg/domain-errors"
)

// rule maps a path prefix to the roles allowed through it. A nil Roles slice
// means any authenticated principal.
type rule struct {
	Prefix string
	Roles  []id.Role
}

// Evaluation order is first match wins, so more specific prefixes come first.
var rules = []rule{
	{Prefix: "/auth/", Roles: nil},
	{Prefix: "/students/", Roles: []id.Role{id.RoleStudent}},
	{Prefix: "/officers/", Roles: []id.Role{id.RoleOfficer}},
	{Prefix: "/records/", Roles: []id.Role{id.RoleOfficer}},
	{Prefix: "/courses", Roles: nil},
	{Prefix: "/applications", Roles: nil},
}

// Public paths bypass authentication entirely.
var publicPrefixes = []string{
	"/auth/",
	"/healthz",
	"/metrics",
}

// Public reports whether the path requires no token at all.
func Public(path string) bool {
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Authorize checks route-level access for an authenticated identity.
// Unknown paths default to any-authenticated rather than open.
func Authorize(identity id.Identity, path string) error {
	if Public(path) {
		return nil
	}
	if identity.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	for _, r := range rules {
		if !strings.HasPrefix(path, r.Prefix) {
			continue
		}
		if r.Roles == nil {
			return nil
		}
		for _, role := range r.Roles {
			if identity.Role == role {
				return nil
			}
		}
		return dErrors.New(dErrors.CodeForbidden, "access denied")
	}
	return nil
}

// Owned is implemented by resources that belong to a single student.
type Owned interface {
	OwnerID() id.PrincipalID
}

// AuthorizeOwnership checks per-record access: officers see everything,
// students only their own records. NotFound for the missing case stays the
// caller's concern; this only answers "may this identity touch this record".
func AuthorizeOwnership(identity id.Identity, resource Owned) error {
	if identity.Role == id.RoleOfficer {
		return nil
	}
	if identity.Role == id.RoleStudent && resource.OwnerID() == identity.PrincipalID {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "access denied")
}
