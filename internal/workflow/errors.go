package workflow

import "errors"

// Error kinds returned by the engine. All are recovered at the ProcessAction
// boundary and mapped to structured failure results by the caller; none is
// fatal to the engine.
var (
	// ErrNotFound means no workflow exists for the transaction id.
	ErrNotFound = errors.New("workflow not found")

	// ErrUnauthorized means the acting user is not the current approver.
	ErrUnauthorized = errors.New("unauthorized action")

	// ErrValidation covers precondition failures: missing signature on
	// approve, empty approval chain at init, malformed transaction fields.
	ErrValidation = errors.New("validation error")

	// ErrInvalidAction means the action token is not a known action.
	ErrInvalidAction = errors.New("invalid action")

	// ErrNoHigherApprover means escalation found no director or vice manager
	// after the current pointer.
	ErrNoHigherApprover = errors.New("no higher level approver available")

	// ErrWorkflowClosed means the workflow already reached a terminal status.
	ErrWorkflowClosed = errors.New("workflow already closed")

	// ErrAlreadyInitialized means a workflow for the transaction id exists.
	ErrAlreadyInitialized = errors.New("workflow already initialized")
)
