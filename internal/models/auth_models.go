package models

import "time"

// Role is the access level of a staff account.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// IsValidRole checks if the provided string names a known role.
func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleAdmin, RoleEmployee:
		return true
	default:
		return false
	}
}

// User represents a staff account that can log in.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // '-' means don't send in JSON response
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// IsAdmin reports whether the account has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Identity is the authenticated caller as seen by services: role plus email.
// Handlers build it from token claims and pass it down explicitly.
type Identity struct {
	UserID int64
	Email  string
	Role   Role
}

// IsAdmin reports whether the caller has the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
