package domain

import "fmt"

// Role decides which experience a user is routed to.
type Role string

const (
	RoleResident Role = "resident"
	RolePartner  Role = "partner"
)

// ParseRole accepts "resident" or "partner"; empty means resident.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "", RoleResident:
		return RoleResident, nil
	case RolePartner:
		return RolePartner, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User is the authenticated principal. For partners Name is the organization
// name grants are issued to.
type User struct {
	Email string
	Name  string
	Role  Role
}

// Handle is the alias handle of a resident.
func (u User) Handle() string { return HandleFromEmail(u.Email) }

// FirstName is the greeting name.
func (u User) FirstName() string {
	for i, r := range u.Name {
		if r == ' ' {
			return u.Name[:i]
		}
	}
	return u.Name
}
