package handler

import (
	"strings"

	"admissio/internal/admission/service"
	id "admissio/pkg/domain"
	dErrors "admissio/pkg/domain-errors"
)

// SubmitRequest is the HTTP request body for POST /applications.
type SubmitRequest struct {
	CourseID   string  `json:"course_id"`
	Address    string  `json:"address"`
	Percentage float64 `json:"percentage"`

	parsedCourseID id.CourseID
}

func (r *SubmitRequest) Validate() error {
	courseID, err := id.ParseCourseID(r.CourseID)
	if err != nil {
		return err
	}
	r.parsedCourseID = courseID
	if strings.TrimSpace(r.Address) == "" {
		return dErrors.New(dErrors.CodeValidation, "address is required")
	}
	if r.Percentage < 0 || r.Percentage > 100 {
		return dErrors.New(dErrors.CodeValidation, "percentage must be between 0 and 100")
	}
	return nil
}

func (r *SubmitRequest) ToServiceRequest() service.SubmitRequest {
	return service.SubmitRequest{
		CourseID:   r.parsedCourseID,
		Address:    r.Address,
		Percentage: r.Percentage,
	}
}

// DocumentRequest is the HTTP request body for POST /documents.
type DocumentRequest struct {
	ApplicationID string `json:"application_id"`
	Type          string `json:"type"`
	BlobReference string `json:"blob_reference"`

	parsedApplicationID id.ApplicationID
}

func (r *DocumentRequest) Validate() error {
	applicationID, err := id.ParseApplicationID(r.ApplicationID)
	if err != nil {
		return err
	}
	r.parsedApplicationID = applicationID
	if strings.TrimSpace(r.Type) == "" {
		return dErrors.New(dErrors.CodeValidation, "type is required")
	}
	if strings.TrimSpace(r.BlobReference) == "" {
		return dErrors.New(dErrors.CodeValidation, "blob_reference is required")
	}
	return nil
}

func (r *DocumentRequest) ToServiceRequest() service.DocumentRequest {
	return service.DocumentRequest{
		ApplicationID: r.parsedApplicationID,
		Type:          r.Type,
		BlobReference: r.BlobReference,
	}
}

// PaymentRequest is the HTTP request body for POST /payments.
type PaymentRequest struct {
	ApplicationID string `json:"application_id"`
	Method        string `json:"method"`
	FeeCents      int64  `json:"fee_cents"`

	parsedApplicationID id.ApplicationID
}

func (r *PaymentRequest) Validate() error {
	applicationID, err := id.ParseApplicationID(r.ApplicationID)
	if err != nil {
		return err
	}
	r.parsedApplicationID = applicationID
	if strings.TrimSpace(r.Method) == "" {
		return dErrors.New(dErrors.CodeValidation, "method is required")
	}
	if r.FeeCents <= 0 {
		return dErrors.New(dErrors.CodeValidation, "fee_cents must be positive")
	}
	return nil
}

func (r *PaymentRequest) ToServiceRequest() service.PaymentRequest {
	return service.PaymentRequest{
		ApplicationID: r.parsedApplicationID,
		Method:        r.Method,
		FeeCents:      r.FeeCents,
	}
}

// ConfirmRequest is the settlement callback body for PUT /payments/{id}/confirm.
type ConfirmRequest struct {
	TransactionID string `json:"transaction_id"`
	Succeeded     bool   `json:"succeeded"`
}

func (r *ConfirmRequest) Validate() error {
	if r.Succeeded && strings.TrimSpace(r.TransactionID) == "" {
		return dErrors.New(dErrors.CodeValidation, "transaction_id is required for a successful settlement")
	}
	return nil
}

func (r *ConfirmRequest) ToSettlementResult() service.SettlementResult {
	return service.SettlementResult{
		TransactionID: r.TransactionID,
		Succeeded:     r.Succeeded,
	}
}

// DecisionRequest is the HTTP request body for PUT /applications/{id}/decision.
type DecisionRequest struct {
	Decision string `json:"decision"`
	Review   string `json:"review"`
}

func (r *DecisionRequest) Validate() error {
	if strings.TrimSpace(r.Decision) == "" {
		return dErrors.New(dErrors.CodeValidation, "decision is required")
	}
	if strings.TrimSpace(r.Review) == "" {
		return dErrors.New(dErrors.CodeValidation, "review is required")
	}
	return nil
}
