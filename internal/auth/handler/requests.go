package handler

import (
	"strings"
	"time"

	"admissio/internal/auth/models"
	dErrors "admissio/pkg/domain-errors"
)

// RegisterRequest is the HTTP request body for POST /auth/{student,officer}/register.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth,omitempty"`

	parsedDOB *time.Time
}

func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if len(r.Email) > 254 {
		return dErrors.New(dErrors.CodeValidation, "email must be at most 254 characters")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	// Name is optional on registration; a missing name is derived from the
	// email address.
	if r.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", r.DateOfBirth)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "date_of_birth must be YYYY-MM-DD")
		}
		r.parsedDOB = &dob
	}
	return nil
}

// Profile returns the validated profile fields.
func (r *RegisterRequest) Profile() models.Profile {
	return models.Profile{Name: strings.TrimSpace(r.Name), DateOfBirth: r.parsedDOB}
}

// LoginRequest is the HTTP request body for POST /auth/{student,officer}/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	// Missing fields fail authentication, not validation, so the response
	// shape is identical to a wrong password.
	return nil
}

// ChangePasswordRequest is the HTTP request body for PUT /auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r *ChangePasswordRequest) Validate() error {
	if r.CurrentPassword == "" {
		return dErrors.New(dErrors.CodeValidation, "current_password is required")
	}
	if r.NewPassword == "" {
		return dErrors.New(dErrors.CodeValidation, "new_password is required")
	}
	return nil
}

// UpdateProfileRequest is the HTTP request body for PUT /students/me.
type UpdateProfileRequest struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth,omitempty"`

	parsedDOB *time.Time
}

func (r *UpdateProfileRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", r.DateOfBirth)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "date_of_birth must be YYYY-MM-DD")
		}
		r.parsedDOB = &dob
	}
	return nil
}

// Profile returns the validated profile fields.
func (r *UpdateProfileRequest) Profile() models.Profile {
	return models.Profile{Name: strings.TrimSpace(r.Name), DateOfBirth: r.parsedDOB}
}
