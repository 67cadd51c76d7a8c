package models

// State is the lifecycle position of an application. Transitions move
// strictly forward; Approved and Rejected are terminal.
type State string

const (
	StateDraft             State = "Draft"
	StateSubmitted         State = "Submitted"
	StateDocumentsComplete State = "DocumentsComplete"
	StatePaymentPending    State = "PaymentPending"
	StateUnderReview       State = "UnderReview"
	StateApproved          State = "Approved"
	StateRejected          State = "Rejected"
)

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateApproved || s == StateRejected
}

var transitions = map[State][]State{
	StateDraft:             {StateSubmitted},
	StateSubmitted:         {StateDocumentsComplete},
	StateDocumentsComplete: {StatePaymentPending},
	StatePaymentPending:    {StateUnderReview},
	StateUnderReview:       {StateApproved, StateRejected},
}

// CanTransitionTo reports whether the lifecycle permits moving to next.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
