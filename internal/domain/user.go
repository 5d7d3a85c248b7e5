package domain

import "time"

// Role is the capability class of a user.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleAdmin
}

// User is an account that opens tickets or administers them.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
