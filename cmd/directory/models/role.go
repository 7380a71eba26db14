package models

import (
	"github.com/dialwise/directory/common/apperr"
)

// Role is the closed set of session roles: admin or one network
// representative. There is no per-entry ACL; role alone determines
// write authority.
type Role string

const RoleAdmin Role = "admin"

// ParseRole normalizes and validates a role identifier
func ParseRole(s string) (Role, error) {
	normalized := NormalizeID(s)
	if normalized == string(RoleAdmin) {
		return RoleAdmin, nil
	}
	if n, err := ParseNetwork(normalized); err == nil {
		return Role(n), nil
	}
	return "", apperr.InvalidArgument("unknown role: %s", s)
}

// IsAdmin reports whether the role is the admin role
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Network returns the network a representative role owns
func (r Role) Network() (Network, bool) {
	if r.IsAdmin() {
		return "", false
	}
	n, err := ParseNetwork(string(r))
	if err != nil {
		return "", false
	}
	return n, true
}

// Actor is the acting session identity: a display name plus a role
type Actor struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}
