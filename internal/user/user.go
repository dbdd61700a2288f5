package user

import (
	"time"
)

// User is the account view returned by the API: identity plus the effective
// permission set resolved from active role assignments.
type User struct {
	ID          int64     `json:"id" db:"id"`
	Username    string    `json:"username" db:"username"`
	Email       string    `json:"email" db:"email"`
	Status      string    `json:"status" db:"status"`
	Permissions []string  `json:"permissions,omitempty" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Role is a named bundle of permissions.
type Role struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// RoleAssignment links a user to a role. Deactivating the assignment removes
// the role's permissions from the user on their next request; tokens are not
// revoked.
type RoleAssignment struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	RoleID     int64     `json:"role_id" db:"role_id"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	AssignedBy *int64    `json:"assigned_by,omitempty" db:"assigned_by"`
	AssignedAt time.Time `json:"assigned_at" db:"assigned_at"`
}
