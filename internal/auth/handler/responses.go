package handler

import (
	"time"

	"admissio/internal/auth/models"
)

// RegisterResponse is returned from POST /auth/{student,officer}/register.
type RegisterResponse struct {
	ID string `json:"id"`
}

// LoginResponse is returned from POST /auth/{student,officer}/login.
type LoginResponse struct {
	Token       string `json:"token"`
	PrincipalID string `json:"principal_id"`
	Role        string `json:"role"`
}

// ProfileResponse is the public view of a credential record.
type ProfileResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// FromPrincipal builds the wire view. The password hash never leaves here.
func FromPrincipal(p *models.Principal) ProfileResponse {
	resp := ProfileResponse{
		ID:        p.ID.String(),
		Email:     p.Email,
		Role:      string(p.Role),
		Name:      p.Name,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
	if p.DateOfBirth != nil {
		resp.DateOfBirth = p.DateOfBirth.Format("2006-01-02")
	}
	return resp
}
