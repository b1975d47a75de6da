package entities

import "fmt"

// Role is a closed set of capabilities. Guest only exists for unauthenticated
// live-update subscribers and is never stored on a user.
type Role int

const (
	RoleGuest Role = iota
	RoleChef
	RoleManager
	RoleAdmin
)

// String method for Role enum
func (r Role) String() string {
	switch r {
	case RoleGuest:
		return "guest"
	case RoleChef:
		return "chef"
	case RoleManager:
		return "manager"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// ParseRole parses a stored user role; guest is not a valid user role
func ParseRole(s string) (Role, error) {
	switch s {
	case "chef":
		return RoleChef, nil
	case "manager":
		return RoleManager, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return RoleGuest, NewValidationError(fmt.Sprintf("unknown role: %q", s))
	}
}

// CanRead reports whether the role may use the read API
func (r Role) CanRead() bool {
	switch r {
	case RoleChef, RoleManager, RoleAdmin:
		return true
	case RoleGuest:
		return false
	default:
		return false
	}
}

// CanManageCatalog reports whether the role may change recipes, ingredients and deliveries
func (r Role) CanManageCatalog() bool {
	switch r {
	case RoleManager, RoleAdmin:
		return true
	case RoleGuest, RoleChef:
		return false
	default:
		return false
	}
}

// CanAdministerUsers reports whether the role may manage other users
func (r Role) CanAdministerUsers() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleGuest, RoleChef, RoleManager:
		return false
	default:
		return false
	}
}

// CanSubscribe reports whether the role may open the live-update channel
func (r Role) CanSubscribe() bool {
	switch r {
	case RoleGuest, RoleChef, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}
