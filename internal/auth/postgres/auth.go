package postgres

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/prasetyadi/hr-platform/internal"
	"github.com/prasetyadi/hr-platform/internal/auth"
)

// Repository implements auth.UserRepository and auth.RoleRepository over the
// credential store tables.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetCredentialsByUsername(username string) (int64, string, error) {
	var userID int64
	var passwordHash string
	query := `SELECT id, password_hash FROM users WHERE username = ?`

	row := r.db.Raw(query, username).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", internal.ErrUserNotFound
		}
		return 0, "", err
	}
	return userID, passwordHash, nil
}

func (r *Repository) GetUserByID(id int64) (*auth.User, error) {
	var user auth.User
	query := `SELECT id, username, email, status FROM users WHERE id = ?`

	row := r.db.Raw(query, id).Row()
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) ActiveRoleAssignments(userID int64) ([]auth.RoleAssignment, error) {
	// Joined against roles so an assignment to a deactivated role drops out
	// of resolution the same way a deactivated assignment does.
	query := `SELECT ur.id, ur.user_id, ur.role_id, ur.is_active, ur.assigned_by
	          FROM user_roles ur
	          JOIN roles r ON r.id = ur.role_id
	          WHERE ur.user_id = ? AND ur.is_active = true AND r.is_active = true`

	rows, err := r.db.Raw(query, userID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []auth.RoleAssignment
	for rows.Next() {
		var a auth.RoleAssignment
		var assignedBy sql.NullInt64
		if err := rows.Scan(&a.ID, &a.UserID, &a.RoleID, &a.IsActive, &assignedBy); err != nil {
			return nil, err
		}
		if assignedBy.Valid {
			a.AssignedBy = &assignedBy.Int64
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *Repository) RolePermissions(roleID int64) ([]auth.Permission, error) {
	query := `SELECT permission FROM role_permissions WHERE role_id = ?`

	rows, err := r.db.Raw(query, roleID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []auth.Permission
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		p, err := auth.ParsePermission(name)
		if err != nil {
			// A row that fails enum validation is a data fault; skip it
			// rather than grant an unknown capability.
			continue
		}
		permissions = append(permissions, p)
	}
	return permissions, rows.Err()
}
