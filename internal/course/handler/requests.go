package handler

import (
	"strings"

	"admissio/internal/course"
	dErrors "admissio/pkg/domain-errors"
)

// CourseRequest is the HTTP request body for POST and PUT on /courses.
type CourseRequest struct {
	Name                  string   `json:"name"`
	Department            string   `json:"department"`
	DurationDays          int      `json:"duration_days"`
	RequiredDocumentTypes []string `json:"required_document_types"`
}

func (r *CourseRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(r.Department) == "" {
		return dErrors.New(dErrors.CodeValidation, "department is required")
	}
	if r.DurationDays <= 0 {
		return dErrors.New(dErrors.CodeValidation, "duration_days must be positive")
	}
	return nil
}

// ToCreateRequest maps the wire body onto the service request.
func (r *CourseRequest) ToCreateRequest() course.CreateRequest {
	return course.CreateRequest{
		Name:                  r.Name,
		Department:            r.Department,
		DurationDays:          r.DurationDays,
		RequiredDocumentTypes: r.RequiredDocumentTypes,
	}
}
