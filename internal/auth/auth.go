package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User statuses as stored in the credential store. Only Active users may
// authenticate or hold a valid session.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

type User struct {
	ID           int64         `json:"id"`
	Username     string        `json:"username"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	Status       string        `json:"status"`
	Permissions  PermissionSet `json:"permissions,omitempty"`
}

func (u *User) IsActiveUser() bool {
	return u.Status == StatusActive
}

// RoleAssignment is a user↔role join row. Only active rows contribute to the
// effective permission set.
type RoleAssignment struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	RoleID     int64  `json:"role_id"`
	IsActive   bool   `json:"is_active"`
	AssignedBy *int64 `json:"assigned_by,omitempty"`
}

type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims carried by session tokens. LastActivity is a unix timestamp advanced
// on every token issuance (login and refresh), never on validation; the
// inactivity timeout is computed from it.
type Claims struct {
	UserID       int64  `json:"userId"`
	TokenType    string `json:"tokenType"`
	LastActivity int64  `json:"lastActivity,omitempty"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and verifies session tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID int64, lastActivity time.Time) (string, error)
	GenerateRefreshToken(userID int64, lastActivity time.Time) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserRepository is the slice of the credential store the auth service reads.
type UserRepository interface {
	GetCredentialsByUsername(username string) (userID int64, passwordHash string, err error)
	GetUserByID(id int64) (*User, error)
}

// RoleRepository feeds the permission resolver.
type RoleRepository interface {
	ActiveRoleAssignments(userID int64) ([]RoleAssignment, error)
	RolePermissions(roleID int64) ([]Permission, error)
}
