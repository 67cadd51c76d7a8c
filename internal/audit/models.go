package audit

import (
	"time"

	id "admissio/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose. This
// enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance:
	// registrations, admission decisions.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring:
	// auth failures, lockouts, ownership violations.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine lifecycle visibility:
	// submissions, document uploads, payments.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
//
// The ReviewRecord written during a decision is NOT an audit event: it is
// part of the application aggregate and commits with the transition. Audit is
// best-effort observability on top.
type Event struct {
	Category    EventCategory  `json:"category"`
	Timestamp   time.Time      `json:"timestamp"`
	PrincipalID id.PrincipalID `json:"principal_id"`
	Action      Action         `json:"action"`
	Subject     string         `json:"subject,omitempty"`
	Reason      string         `json:"reason,omitempty"`
	RequestID   string         `json:"request_id,omitempty"`
}

type Action string

const (
	// Auth events
	ActionPrincipalRegistered Action = "principal_registered"
	ActionLoginSucceeded      Action = "login_succeeded"
	ActionLoginFailed         Action = "login_failed"
	ActionLoginLocked         Action = "login_locked"
	ActionPasswordChanged     Action = "password_changed"

	// Admission lifecycle events
	ActionApplicationSubmitted Action = "application_submitted"
	ActionDocumentUploaded     Action = "document_uploaded"
	ActionDocumentsComplete    Action = "documents_complete"
	ActionPaymentRecorded      Action = "payment_recorded"
	ActionPaymentConfirmed     Action = "payment_confirmed"
	ActionPaymentFailed        Action = "payment_failed"
	ActionApplicationDecided   Action = "application_decided"

	// Authorization events
	ActionOwnershipDenied Action = "ownership_denied"
)
