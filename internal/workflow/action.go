package workflow

import "fmt"

// Action is the closed set of workflow actions. The zero value is invalid;
// unknown tokens are rejected by ParseAction at the boundary so the engine
// only ever dispatches over the three real variants.
type Action uint8

const (
	actionUnknown Action = iota
	ActionApprove
	ActionReject
	ActionEscalate
)

func (a Action) String() string {
	switch a {
	case ActionApprove:
		return "approve"
	case ActionReject:
		return "reject"
	case ActionEscalate:
		return "escalate"
	}
	return "unknown"
}

// ParseAction converts an action token into an Action.
func ParseAction(s string) (Action, error) {
	switch s {
	case "approve":
		return ActionApprove, nil
	case "reject":
		return ActionReject, nil
	case "escalate":
		return ActionEscalate, nil
	}
	return actionUnknown, fmt.Errorf("%w: %q", ErrInvalidAction, s)
}
