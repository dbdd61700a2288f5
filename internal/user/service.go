package user

import (
	"fmt"
	"log/slog"
)

type Repository interface {
	GetByID(userID int64) (*User, error)
	GetPermissions(userID int64) ([]string, error)
	ListRoles() ([]Role, error)
	RolesForUser(userID int64) ([]RoleAssignment, error)
	AssignRole(userID, roleID int64, assignedBy *int64) error
	RevokeRole(userID, roleID int64) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetByID(userID int64) (*User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	perms, err := s.repo.GetPermissions(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user permissions: %w", err)
	}
	u.Permissions = perms

	return u, nil
}

func (s *Service) ListRoles() ([]Role, error) {
	return s.repo.ListRoles()
}

func (s *Service) RolesForUser(userID int64) ([]RoleAssignment, error) {
	return s.repo.RolesForUser(userID)
}

// AssignRole grants a role. The grant takes effect on the user's next
// request; no token is reissued.
func (s *Service) AssignRole(dto AssignRoleDTO, assignedBy *int64) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	if err := s.repo.AssignRole(dto.UserID, dto.RoleID, assignedBy); err != nil {
		s.logger.Error("failed to assign role",
			"user_id", dto.UserID, "role_id", dto.RoleID, "error", err)
		return fmt.Errorf("failed to assign role: %w", err)
	}

	s.logger.Info("role assigned", "user_id", dto.UserID, "role_id", dto.RoleID)
	return nil
}

// RevokeRole deactivates an assignment; the role's permissions drop out of
// the user's effective set on their next request.
func (s *Service) RevokeRole(userID, roleID int64) error {
	if err := s.repo.RevokeRole(userID, roleID); err != nil {
		s.logger.Error("failed to revoke role",
			"user_id", userID, "role_id", roleID, "error", err)
		return fmt.Errorf("failed to revoke role: %w", err)
	}

	s.logger.Info("role revoked", "user_id", userID, "role_id", roleID)
	return nil
}
