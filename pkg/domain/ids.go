package domain

import (
	"github.com/google/uuid"

	dErrors "admissio/pkg/domain-errors"
)

// Typed UUID wrappers for every entity. The distinct types make it a compile
// error to hand an ApplicationID where a PrincipalID is expected, which is the
// cheapest ownership bug we never have to debug.
type (
	PrincipalID   uuid.UUID
	ApplicationID uuid.UUID
	CourseID      uuid.UUID
	DocumentID    uuid.UUID
	PaymentID     uuid.UUID
	ReviewID      uuid.UUID
	StatusID      uuid.UUID
	RecordID      uuid.UUID
)

// NewPrincipalID and friends mint fresh IDs at creation sites.
func NewPrincipalID() PrincipalID     { return PrincipalID(uuid.New()) }
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }
func NewCourseID() CourseID           { return CourseID(uuid.New()) }
func NewDocumentID() DocumentID       { return DocumentID(uuid.New()) }
func NewPaymentID() PaymentID         { return PaymentID(uuid.New()) }
func NewReviewID() ReviewID           { return ReviewID(uuid.New()) }
func NewStatusID() StatusID           { return StatusID(uuid.New()) }
func NewRecordID() RecordID           { return RecordID(uuid.New()) }

func (id PrincipalID) String() string   { return uuid.UUID(id).String() }
func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id CourseID) String() string      { return uuid.UUID(id).String() }
func (id DocumentID) String() string    { return uuid.UUID(id).String() }
func (id PaymentID) String() string     { return uuid.UUID(id).String() }
func (id ReviewID) String() string      { return uuid.UUID(id).String() }
func (id StatusID) String() string      { return uuid.UUID(id).String() }
func (id RecordID) String() string      { return uuid.UUID(id).String() }

func (id PrincipalID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id CourseID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id PaymentID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id RecordID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

// IDs travel as canonical UUID strings on the wire. Without these, encoding/json
// would fall back to the underlying [16]byte array.
func (id PrincipalID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id ApplicationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id CourseID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id DocumentID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id PaymentID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id ReviewID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id StatusID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id RecordID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }

func (id *PrincipalID) UnmarshalText(b []byte) error {
	u, err := parse(string(b), "principal id")
	*id = PrincipalID(u)
	return err
}

func (id *ApplicationID) UnmarshalText(b []byte) error {
	u, err := parse(string(b), "application id")
	*id = ApplicationID(u)
	return err
}

func (id *CourseID) UnmarshalText(b []byte) error {
	u, err := parse(string(b), "course id")
	*id = CourseID(u)
	return err
}

func (id *DocumentID) UnmarshalText(b []byte) error {
	u, err := parse(string(b), "document id")
	*id = DocumentID(u)
	return err
}

func (id *PaymentID) UnmarshalText(b []byte) error {
	u, err := parse(string(b), "payment id")
	*id = PaymentID(u)
	return err
}

func (id *ReviewID) UnmarshalText(b []byte) error {
	u, err := parse(string(b), "review id")
	*id = ReviewID(u)
	return err
}

func (id *StatusID) UnmarshalText(b []byte) error {
	u, err := parse(string(b), "status id")
	*id = StatusID(u)
	return err
}

func (id *RecordID) UnmarshalText(b []byte) error {
	u, err := parse(string(b), "record id")
	*id = RecordID(u)
	return err
}

// parse enforces the trust-boundary invariant: IDs must be valid, non-nil
// UUIDs. Everything else is rejected before it reaches a store.
func parse(raw, what string) (uuid.UUID, error) {
	if len(raw) > 64 {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, what+" is not a valid id")
	}
	u, err := uuid.Parse(raw)
	if err != nil || u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, what+" is not a valid id")
	}
	return u, nil
}

func ParsePrincipalID(raw string) (PrincipalID, error) {
	u, err := parse(raw, "principal id")
	return PrincipalID(u), err
}

func ParseApplicationID(raw string) (ApplicationID, error) {
	u, err := parse(raw, "application id")
	return ApplicationID(u), err
}

func ParseCourseID(raw string) (CourseID, error) {
	u, err := parse(raw, "course id")
	return CourseID(u), err
}

func ParsePaymentID(raw string) (PaymentID, error) {
	u, err := parse(raw, "payment id")
	return PaymentID(u), err
}

func ParseRecordID(raw string) (RecordID, error) {
	u, err := parse(raw, "record id")
	return RecordID(u), err
}
