package domain

import "time"

// Role determines what an account may do.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is a known value.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account is the domain model for a registered campus member.
type Account struct {
	ID                string
	Username          string
	Email             string
	PasswordHash      string
	Role              Role
	PhoneNumber       *string
	EmployeeStudentID *string
	ResetToken        *string
	ResetTokenExpiry  *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
