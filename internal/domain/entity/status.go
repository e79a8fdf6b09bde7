package entity

// Status represents the lifecycle status of an expense report
type Status string

const (
	// StatusDraft exists for UI-side staging only; the workflow core
	// never produces or consumes it.
	StatusDraft    Status = "DRAFT"
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

var validStatuses = map[Status]bool{
	StatusDraft:    true,
	StatusPending:  true,
	StatusApproved: true,
	StatusRejected: true,
}

// IsValid returns true if the status is a known report status
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// IsTerminal returns true if no further approval actions apply.
// Rejected reports are terminal as instances but can be resubmitted
// under a new identity.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// Role represents a user's workflow role
type Role string

const (
	RoleEmployee Role = "Employee"
	RoleManager  Role = "Manager"
	RoleFinance  Role = "Finance"
	RoleAdmin    Role = "Admin"
)

var validRoles = map[Role]bool{
	RoleEmployee: true,
	RoleManager:  true,
	RoleFinance:  true,
	RoleAdmin:    true,
}

// IsValid returns true if the role is a known workflow role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanSign returns true if users holding this role may sign reports.
// Admins administer the system but are barred from signing.
func (r Role) CanSign() bool {
	return r.IsValid() && r != RoleAdmin
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// SignatureAction is the action recorded in a signature log entry
type SignatureAction string

const (
	SignatureApproved SignatureAction = "Approved"
	SignatureRejected SignatureAction = "Rejected"
)
