// Package course holds the reference data applications point at. Courses
// change rarely and carry the per-course document checklist.
package course

import (
	"strings"
	"time"

	id "admissio/pkg/domain"
	dErrors "admissio/pkg/domain-errors"
	pstrings "admissio/pkg/platform/strings"
)

// Course is an admissions program a student can apply to.
type Course struct {
	ID                    id.CourseID `json:"id"`
	Name                  string      `json:"name"`
	Department            string      `json:"department"`
	DurationDays          int         `json:"duration_days"`
	RequiredDocumentTypes []string    `json:"required_document_types"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// New validates and builds a course. An empty document list is allowed; the
// admission service substitutes the configured default set.
func New(courseID id.CourseID, name, department string, durationDays int, requiredDocs []string, now time.Time) (*Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "department is required")
	}
	if durationDays <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "duration_days must be positive")
	}

	docs, err := normalizeDocumentTypes(requiredDocs)
	if err != nil {
		return nil, err
	}

	return &Course{
		ID:                    courseID,
		Name:                  name,
		Department:            department,
		DurationDays:          durationDays,
		RequiredDocumentTypes: docs,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

// ApplyUpdate replaces the mutable fields.
func (c *Course) ApplyUpdate(name, department string, durationDays int, requiredDocs []string, now time.Time) error {
	updated, err := New(c.ID, name, department, durationDays, requiredDocs, now)
	if err != nil {
		return err
	}
	c.Name = updated.Name
	c.Department = updated.Department
	c.DurationDays = updated.DurationDays
	c.RequiredDocumentTypes = updated.RequiredDocumentTypes
	c.UpdatedAt = now
	return nil
}

func normalizeDocumentTypes(docs []string) ([]string, error) {
	for _, doc := range docs {
		if strings.TrimSpace(doc) == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "document type must not be empty")
		}
	}
	return pstrings.DedupeAndTrimLower(docs), nil
}
