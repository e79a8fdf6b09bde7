package entity

// User is a directory entry referenced by reports and signatures.
// Only the role matters to the workflow; the rest drives the UI.
type User struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	Role              Role     `json:"role"`
	AccessibleModules []string `json:"accessible_modules"`
	IsActive          bool     `json:"is_active"`
}

// HasModule returns true if the user may access the named UI module
func (u *User) HasModule(module string) bool {
	for _, m := range u.AccessibleModules {
		if m == module {
			return true
		}
	}
	return false
}

// ExpenseCategory maps a claim item to a general-ledger code for export
type ExpenseCategory struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	GLCode string `json:"gl_code"`
}
