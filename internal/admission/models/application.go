package models

import (
	"strings"
	"time"

	id "admissio/pkg/domain"
	dErrors "admissio/pkg/domain-errors"
)

// Application is the admission aggregate. Documents, the payment and the
// decision records live inside the same consistency boundary: every accepted
// event commits the whole aggregate at one version.
//
// Invariants:
//   - Version increments by exactly one per committed transition
//   - At most one active payment; at most one decision
//   - A rejected event leaves the aggregate untouched
type Application struct {
	ID         id.ApplicationID `json:"id"`
	StudentID  id.PrincipalID   `json:"student_id"`
	CourseID   id.CourseID      `json:"course_id"`
	Address    string           `json:"address"`
	Percentage float64          `json:"percentage"`
	State      State            `json:"state"`
	Version    int64            `json:"version"`

	Documents []Document    `json:"documents"`
	Payment   *Payment      `json:"payment,omitempty"`
	Review    *ReviewRecord `json:"review,omitempty"`
	Status    *AppStatus    `json:"status,omitempty"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Document is an uploaded admission document. One per type per application.
type Document struct {
	ID            id.DocumentID    `json:"id"`
	ApplicationID id.ApplicationID `json:"application_id"`
	Type          string           `json:"type"`
	BlobReference string           `json:"blob_reference"`
	UploadedAt    time.Time        `json:"uploaded_at"`
}

// PaymentStatus tracks settlement with the external gateway.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentConfirmed PaymentStatus = "Confirmed"
	PaymentFailed    PaymentStatus = "Failed"
)

// Payment is the admission fee record. One per application.
type Payment struct {
	ID            id.PaymentID     `json:"id"`
	ApplicationID id.ApplicationID `json:"application_id"`
	Method        string           `json:"method"`
	FeeCents      int64            `json:"fee_cents"`
	TransactionID string           `json:"transaction_id,omitempty"`
	Status        PaymentStatus    `json:"status"`
	RecordedAt    time.Time        `json:"recorded_at"`
	SettledAt     *time.Time       `json:"settled_at,omitempty"`
}

// ReviewRecord marks that an officer reviewed the application.
type ReviewRecord struct {
	ID            id.ReviewID      `json:"id"`
	ApplicationID id.ApplicationID `json:"application_id"`
	OfficerID     id.PrincipalID   `json:"officer_id"`
	RecordedAt    time.Time        `json:"recorded_at"`
}

// AppStatus is the decision outcome written alongside the review record.
type AppStatus struct {
	ID            id.StatusID      `json:"id"`
	ApplicationID id.ApplicationID `json:"application_id"`
	OfficerID     id.PrincipalID   `json:"officer_id"`
	Review        string           `json:"review,omitempty"`
	Status        State            `json:"status"`
	RecordedAt    time.Time        `json:"recorded_at"`
}

// NewApplication builds a draft application.
func NewApplication(applicationID id.ApplicationID, studentID id.PrincipalID, courseID id.CourseID, address string, percentage float64, now time.Time) (*Application, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "address is required")
	}
	if percentage < 0 || percentage > 100 {
		return nil, dErrors.New(dErrors.CodeValidation, "percentage must be between 0 and 100")
	}
	if courseID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "course_id is required")
	}

	return &Application{
		ID:         applicationID,
		StudentID:  studentID,
		CourseID:   courseID,
		Address:    address,
		Percentage: percentage,
		State:      StateDraft,
		Version:    0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// OwnerID satisfies the ownership check.
func (a *Application) OwnerID() id.PrincipalID {
	return a.StudentID
}

// Clone returns a deep copy so stores never hand out aliased aggregates.
func (a *Application) Clone() *Application {
	copied := *a
	copied.Documents = append([]Document(nil), a.Documents...)
	if a.Payment != nil {
		payment := *a.Payment
		copied.Payment = &payment
	}
	if a.Review != nil {
		review := *a.Review
		copied.Review = &review
	}
	if a.Status != nil {
		status := *a.Status
		copied.Status = &status
	}
	return &copied
}

func (a *Application) invalidTransition(event string) error {
	return dErrors.Newf(dErrors.CodeInvalidTransition, "cannot %s in state %s", event, a.State)
}

// commit advances the aggregate version by one committed transition.
func (a *Application) commit(now time.Time) {
	a.Version++
	a.UpdatedAt = now
}

// CanSubmit checks the draft-to-submitted transition.
func (a *Application) CanSubmit() error {
	if a.State != StateDraft {
		return a.invalidTransition("submit")
	}
	return nil
}

// ApplySubmit transitions to Submitted. Must only be called after CanSubmit
// returns nil.
func (a *Application) ApplySubmit(now time.Time) {
	a.State = StateSubmitted
	a.SubmittedAt = &now
	a.commit(now)
}

// Submit validates and applies submission in one call.
func (a *Application) Submit(now time.Time) error {
	if err := a.CanSubmit(); err != nil {
		return err
	}
	a.ApplySubmit(now)
	return nil
}

// HasDocument reports whether a document of the given type is attached.
func (a *Application) HasDocument(docType string) bool {
	for _, doc := range a.Documents {
		if doc.Type == docType {
			return true
		}
	}
	return false
}

// CanAttachDocument checks document upload against the course checklist.
func (a *Application) CanAttachDocument(docType string, requiredTypes []string) error {
	if a.State != StateSubmitted {
		return a.invalidTransition("upload document")
	}
	allowed := false
	for _, required := range requiredTypes {
		if required == docType {
			allowed = true
			break
		}
	}
	if !allowed {
		return dErrors.Newf(dErrors.CodeValidation, "document type %q is not required for this course", docType)
	}
	if a.HasDocument(docType) {
		return dErrors.Newf(dErrors.CodeConflict, "document of type %q already uploaded", docType)
	}
	return nil
}

// ApplyAttachDocument appends the document; when the checklist is complete
// the same commit advances to DocumentsComplete. Must only be called after
// CanAttachDocument returns nil.
func (a *Application) ApplyAttachDocument(doc Document, requiredTypes []string, now time.Time) {
	a.Documents = append(a.Documents, doc)

	complete := true
	for _, required := range requiredTypes {
		if !a.HasDocument(required) {
			complete = false
			break
		}
	}
	if complete {
		a.State = StateDocumentsComplete
	}
	a.commit(now)
}

// AttachDocument validates and applies a document upload in one call.
func (a *Application) AttachDocument(doc Document, requiredTypes []string, now time.Time) error {
	if err := a.CanAttachDocument(doc.Type, requiredTypes); err != nil {
		return err
	}
	a.ApplyAttachDocument(doc, requiredTypes, now)
	return nil
}

// CanRecordPayment checks the payment recording transition. A failed
// settlement may be re-recorded from PaymentPending.
func (a *Application) CanRecordPayment() error {
	switch {
	case a.State == StateDocumentsComplete && a.Payment == nil:
		return nil
	case a.State == StatePaymentPending && a.Payment != nil && a.Payment.Status == PaymentFailed:
		return nil
	case a.Payment != nil && a.Payment.Status != PaymentFailed:
		return dErrors.New(dErrors.CodeConflict, "payment already recorded")
	default:
		return a.invalidTransition("record payment")
	}
}

// ApplyRecordPayment replaces the payment and moves to PaymentPending. Must
// only be called after CanRecordPayment returns nil.
func (a *Application) ApplyRecordPayment(payment Payment, now time.Time) {
	payment.Status = PaymentPending
	a.Payment = &payment
	a.State = StatePaymentPending
	a.commit(now)
}

// RecordPayment validates and applies payment recording in one call.
func (a *Application) RecordPayment(payment Payment, now time.Time) error {
	if err := a.CanRecordPayment(); err != nil {
		return err
	}
	a.ApplyRecordPayment(payment, now)
	return nil
}

// CanSettlePayment checks the gateway settlement transition.
func (a *Application) CanSettlePayment() error {
	if a.State != StatePaymentPending || a.Payment == nil || a.Payment.Status != PaymentPending {
		return a.invalidTransition("settle payment")
	}
	return nil
}

// ApplyConfirmPayment marks the payment confirmed and moves to UnderReview.
// Must only be called after CanSettlePayment returns nil.
func (a *Application) ApplyConfirmPayment(transactionID string, now time.Time) {
	a.Payment.Status = PaymentConfirmed
	a.Payment.TransactionID = transactionID
	a.Payment.SettledAt = &now
	a.State = StateUnderReview
	a.commit(now)
}

// ApplyFailPayment marks the payment failed. The state stays PaymentPending
// so a fresh payment can be recorded. Must only be called after
// CanSettlePayment returns nil.
func (a *Application) ApplyFailPayment(transactionID string, now time.Time) {
	a.Payment.Status = PaymentFailed
	a.Payment.TransactionID = transactionID
	a.Payment.SettledAt = &now
	a.commit(now)
}

// CanDecide checks the terminal decision transition.
func (a *Application) CanDecide(decision State) error {
	if decision != StateApproved && decision != StateRejected {
		return dErrors.New(dErrors.CodeValidation, "decision must be Approved or Rejected")
	}
	if a.State != StateUnderReview {
		return a.invalidTransition("decide")
	}
	return nil
}

// ApplyDecide writes the review record, the decision status and the terminal
// state together. Must only be called after CanDecide returns nil.
func (a *Application) ApplyDecide(officerID id.PrincipalID, decision State, review string, now time.Time) {
	a.Review = &ReviewRecord{
		ID:            id.NewReviewID(),
		ApplicationID: a.ID,
		OfficerID:     officerID,
		RecordedAt:    now,
	}
	a.Status = &AppStatus{
		ID:            id.NewStatusID(),
		ApplicationID: a.ID,
		OfficerID:     officerID,
		Review:        review,
		Status:        decision,
		RecordedAt:    now,
	}
	a.State = decision
	a.DecidedAt = &now
	a.commit(now)
}

// Decide validates and applies the decision in one call.
func (a *Application) Decide(officerID id.PrincipalID, decision State, review string, now time.Time) error {
	if err := a.CanDecide(decision); err != nil {
		return err
	}
	a.ApplyDecide(officerID, decision, review, now)
	return nil
}
