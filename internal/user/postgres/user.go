package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/prasetyadi/hr-platform/internal"
	"github.com/prasetyadi/hr-platform/internal/user"
)

// UserRepository implements user.Repository over sqlx.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(userID int64) (*user.User, error) {
	var u user.User
	query := `SELECT id, username, email, status, created_at, updated_at FROM users WHERE id = $1`

	if err := r.db.Get(&u, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user query: %w", err)
	}
	return &u, nil
}

// GetPermissions returns the distinct permission names granted through the
// user's active role assignments to active roles.
func (r *UserRepository) GetPermissions(userID int64) ([]string, error) {
	query := `SELECT DISTINCT rp.permission
	          FROM user_roles ur
	          JOIN roles ro ON ro.id = ur.role_id
	          JOIN role_permissions rp ON rp.role_id = ur.role_id
	          WHERE ur.user_id = $1 AND ur.is_active = true AND ro.is_active = true
	          ORDER BY rp.permission`

	permissions := []string{}
	if err := r.db.Select(&permissions, query, userID); err != nil {
		return nil, fmt.Errorf("get permissions query: %w", err)
	}
	return permissions, nil
}

func (r *UserRepository) ListRoles() ([]user.Role, error) {
	var roles []user.Role
	query := `SELECT id, name, description, is_active, created_at FROM roles ORDER BY name`

	if err := r.db.Select(&roles, query); err != nil {
		return nil, fmt.Errorf("list roles query: %w", err)
	}
	return roles, nil
}

func (r *UserRepository) RolesForUser(userID int64) ([]user.RoleAssignment, error) {
	var assignments []user.RoleAssignment
	query := `SELECT id, user_id, role_id, is_active, assigned_by, assigned_at
	          FROM user_roles WHERE user_id = $1`

	if err := r.db.Select(&assignments, query, userID); err != nil {
		return nil, fmt.Errorf("roles for user query: %w", err)
	}
	return assignments, nil
}

// AssignRole reactivates an existing assignment row or inserts a fresh one.
func (r *UserRepository) AssignRole(userID, roleID int64, assignedBy *int64) error {
	query := `INSERT INTO user_roles (user_id, role_id, is_active, assigned_by, assigned_at)
	          VALUES ($1, $2, true, $3, now())
	          ON CONFLICT (user_id, role_id)
	          DO UPDATE SET is_active = true, assigned_by = $3, assigned_at = now()`

	if _, err := r.db.Exec(query, userID, roleID, assignedBy); err != nil {
		return fmt.Errorf("assign role exec: %w", err)
	}
	return nil
}

func (r *UserRepository) RevokeRole(userID, roleID int64) error {
	query := `UPDATE user_roles SET is_active = false WHERE user_id = $1 AND role_id = $2`

	res, err := r.db.Exec(query, userID, roleID)
	if err != nil {
		return fmt.Errorf("revoke role exec: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}
