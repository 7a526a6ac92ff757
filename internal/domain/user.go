package domain

import "time"

// Role enumerates who a user is within the help desk.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
	RoleAdmin    Role = "admin"
)

// KnownRole reports whether the role is one the service recognizes.
func KnownRole(r Role) bool {
	switch r {
	case RoleCustomer, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// User is the domain model for anyone who can sign in: customers who
// submit tickets, agents who resolve them, and administrators.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRef carries the display fields of a related user when tickets are
// returned with their customer and assigned agent resolved.
type UserRef struct {
	ID    string
	Name  string
	Email string
}
