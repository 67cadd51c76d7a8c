package models

import (
	"net/mail"
	"strings"
	"time"

	id "admissio/pkg/domain"
	dErrors "admissio/pkg/domain-errors"
)

// Principal is the credential record for an authenticated actor.
//
// Invariants:
//   - Email is unique across BOTH roles and immutable after registration
//   - PasswordHash is a bcrypt hash, never a raw password
//   - Role is fixed at registration
//   - DateOfBirth is set for students only
type Principal struct {
	ID           id.PrincipalID `json:"id"`
	Email        string         `json:"email"`
	PasswordHash []byte         `json:"-"`
	Role         id.Role        `json:"role"`
	Name         string         `json:"name"`
	DateOfBirth  *time.Time     `json:"date_of_birth,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Profile carries the role-specific registration fields.
type Profile struct {
	Name        string
	DateOfBirth *time.Time
}

func NewPrincipal(principalID id.PrincipalID, email string, passwordHash []byte, role id.Role, profile Profile, now time.Time) (*Principal, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "email is not valid")
	}
	if len(passwordHash) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "password hash is required")
	}
	if strings.TrimSpace(profile.Name) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if role == id.RoleStudent && profile.DateOfBirth == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "date_of_birth is required for students")
	}

	return &Principal{
		ID:           principalID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Name:         strings.TrimSpace(profile.Name),
		DateOfBirth:  profile.DateOfBirth,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Identity returns the resolved identity this principal authenticates as.
func (p *Principal) Identity() id.Identity {
	return id.Identity{PrincipalID: p.ID, Role: p.Role}
}

// ApplyPasswordChange swaps in a new hash. Email stays immutable; this is the
// only mutation the credential record supports besides profile fields.
func (p *Principal) ApplyPasswordChange(newHash []byte, now time.Time) {
	p.PasswordHash = newHash
	p.UpdatedAt = now
}

// ApplyProfileUpdate updates the mutable profile fields.
func (p *Principal) ApplyProfileUpdate(profile Profile, now time.Time) error {
	if strings.TrimSpace(profile.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	p.Name = strings.TrimSpace(profile.Name)
	if profile.DateOfBirth != nil {
		p.DateOfBirth = profile.DateOfBirth
	}
	p.UpdatedAt = now
	return nil
}

// NormalizeEmail lowercases and trims so lookups and uniqueness are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
