package domain

// RoleManager is the administrative role allowed to bypass ownership checks.
const RoleManager = "MANAGER"

// RoleCustomer is the default role of a registered customer.
const RoleCustomer = "CUSTOMER"

// Requester identifies the caller of an operation.
type Requester struct {
	ID    string
	Roles []string
}

// IsAdmin reports whether the requester holds the administrative role.
func (r Requester) IsAdmin() bool {
	for _, role := range r.Roles {
		if role == RoleManager {
			return true
		}
	}
	return false
}
