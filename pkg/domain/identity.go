package domain

import dErrors "admissio/pkg/domain-errors"

// Role is the principal kind fixed at registration. There are exactly two;
// the role is carried as a tag on the identity rather than inferred from
// which lookup succeeded.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleOfficer Role = "OFFICER"
)

// ParseRole validates a role string from storage or a token claim.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleStudent, RoleOfficer:
		return Role(raw), nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown role %q", raw)
}

// Identity is a resolved authenticated actor: who they are and what kind of
// principal they registered as. It is the only thing authorization ever sees.
type Identity struct {
	PrincipalID PrincipalID
	Role        Role
}

// IsZero reports whether the identity has been resolved at all.
func (i Identity) IsZero() bool {
	return i.PrincipalID.IsNil() && i.Role == ""
}
