package workflow

// Action represents an event that can cause a status transition
type Action string

const (
	ActionApprove  Action = "APPROVE"
	ActionReject   Action = "REJECT"
	ActionResubmit Action = "RESUBMIT"
)

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}

// IsValid returns true if the action is a known workflow action
func (a Action) IsValid() bool {
	switch a {
	case ActionApprove, ActionReject, ActionResubmit:
		return true
	}
	return false
}
