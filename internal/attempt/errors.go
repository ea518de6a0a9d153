package attempt

import "errors"

// Hard failures. Denials are not errors; see Decision.
var (
	ErrNotFound     = errors.New("attempt not found")
	ErrInvalidState = errors.New("attempt is not in progress")
	ErrNotOwner     = errors.New("attempt belongs to another learner")
)

// DenyReason identifies which eligibility rule blocked a start. The order of
// these checks is observable behavior: already-passed and already-certified
// take precedence over the attempt limit.
type DenyReason string

const (
	DenyTestInactive            DenyReason = "test_inactive"
	DenyNotEnrolled             DenyReason = "not_enrolled"
	DenyPrerequisitesIncomplete DenyReason = "prerequisites_incomplete"
	DenyAlreadyCertified        DenyReason = "already_certified"
	DenyAlreadyPassed           DenyReason = "already_passed"
	DenyAttemptLimitReached     DenyReason = "attempt_limit_reached"
)

// Decision is the typed outcome of the eligibility gate.
type Decision struct {
	Allowed bool       `json:"allowed"`
	Reason  DenyReason `json:"reason,omitempty"`
	Message string     `json:"message,omitempty"`
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason DenyReason, msg string) Decision {
	return Decision{Reason: reason, Message: msg}
}
